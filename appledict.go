// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package appledict

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/transform"

	"github.com/ianlewis/go-appledict/body"
	"github.com/ianlewis/go-appledict/info"
	"github.com/ianlewis/go-appledict/internal/folding"
	"github.com/ianlewis/go-appledict/internal/index"
)

const (
	// Ext is the extension of dictionary bundles.
	Ext = ".dictionary"

	infoPath = "Contents/Info.plist"
	bodyPath = "Contents/Resources/Body.data"
)

// ErrNotDictionary indicates that a path is not a dictionary bundle.
var ErrNotDictionary = errors.New("not a dictionary bundle")

// Options are options for a Dictionary.
type Options struct {
	// Folder returns a [transform.Transformer] that performs folding (e.g.
	// case folding, whitespace folding, etc.) on words and queries.
	Folder func() transform.Transformer

	// Logger receives warnings about skipped definitions.
	Logger *zap.Logger
}

// DefaultOptions are the default options for a Dictionary. Words are matched
// ignoring case and surrounding or repeated whitespace.
var DefaultOptions = &Options{
	Folder: func() transform.Transformer {
		return transform.Chain(&folding.WhitespaceFolder{}, cases.Fold())
	},
}

type foldedWord struct {
	folded string
	entry  *WordEntry
}

func foldedKey(w *foldedWord) string {
	return w.folded
}

// Dictionary is an Apple dictionary bundle.
type Dictionary struct {
	path string
	info *info.Info

	folder func() transform.Transformer
	log    *zap.Logger

	// words are loaded lazily by Words.
	loaded bool
	words  []*WordEntry
	index  *index.Index[*foldedWord]
}

// Open opens the dictionary bundle at path. Only the metadata is read;
// definitions are read by Words.
func Open(path string, options *Options) (*Dictionary, error) {
	if options == nil {
		options = DefaultOptions
	}

	if filepath.Ext(path) != Ext {
		return nil, fmt.Errorf("%w: %q", ErrNotDictionary, path)
	}
	if _, err := os.Stat(filepath.Join(path, bodyPath)); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrNotDictionary, path, err)
	}

	i, err := info.Open(filepath.Join(path, infoPath))
	if err != nil {
		return nil, err
	}

	d := &Dictionary{
		path:   path,
		info:   i,
		folder: DefaultOptions.Folder,
		log:    options.Logger,
	}
	if options.Folder != nil {
		d.folder = options.Folder
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	return d, nil
}

// OpenAll opens all dictionaries under the given directories. Directories
// that do not exist are skipped. This function will return all successfully
// opened dictionaries along with any errors that occurred.
func OpenAll(options *Options, dirs ...string) ([]*Dictionary, []error) {
	var dicts []*Dictionary
	var errs []error
	for _, dir := range dirs {
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			// Walking the file path will ignore errors.
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			if !entry.IsDir() || filepath.Ext(entry.Name()) != Ext {
				return nil
			}
			// Bundles without definitions are not dictionaries that can be
			// imported.
			if _, err := os.Stat(filepath.Join(path, bodyPath)); err != nil {
				return fs.SkipDir
			}
			d, err := Open(path, options)
			if err != nil {
				errs = append(errs, err)
			} else {
				dicts = append(dicts, d)
			}
			return fs.SkipDir
		}); err != nil {
			errs = append(errs, err)
		}
	}
	return dicts, errs
}

// Path returns the path to the dictionary bundle.
func (d *Dictionary) Path() string {
	return d.path
}

// BodyPath returns the path to the Body.data file.
func (d *Dictionary) BodyPath() string {
	return filepath.Join(d.path, bodyPath)
}

// Info returns the dictionary metadata.
func (d *Dictionary) Info() *info.Info {
	return d.info
}

// Name returns the dictionary display name.
func (d *Dictionary) Name() string {
	return d.info.DisplayName
}

// ID returns the dictionary's identifier with periods replaced so that it
// can be used as an index uid.
func (d *Dictionary) ID() string {
	return d.info.ID()
}

// Definitions opens the Body.data file for reading raw definitions. The
// caller should close the returned scanner.
func (d *Dictionary) Definitions() (*body.Scanner, error) {
	s, err := body.Open(d.BodyPath())
	if err != nil {
		return nil, err
	}
	if d.info.HeapDataCompressionType == 2 && s.Layout() != body.LayoutPadded {
		d.log.Debug("Unexpected body layout",
			zap.String("dictionary", d.ID()),
			zap.Stringer("layout", s.Layout()))
	}
	return s, nil
}

// Words reads and groups all definitions in the dictionary. The result is
// cached after the first call.
func (d *Dictionary) Words() (words []*WordEntry, err error) {
	if d.loaded {
		return d.words, nil
	}

	s, err := d.Definitions()
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	words, err = Group(s, d.log.With(zap.String("dictionary", d.ID())))
	if err != nil {
		return nil, fmt.Errorf("%q: %w", d.BodyPath(), err)
	}

	folded := make([]*foldedWord, 0, len(words))
	for _, w := range words {
		f, _, err := transform.String(d.folder(), w.Word)
		if err != nil {
			return nil, fmt.Errorf("folding word %q: %w", w.Word, err)
		}
		folded = append(folded, &foldedWord{
			folded: f,
			entry:  w,
		})
	}

	// The index is sorted by the folded word.
	d.index = index.New(folded, foldedKey, strings.Compare)
	d.words = words
	d.loaded = true
	return words, nil
}

// Search returns the entries whose headword matches the query after
// folding.
func (d *Dictionary) Search(query string) ([]*WordEntry, error) {
	return d.lookup(query, (*index.Index[*foldedWord]).Search)
}

// Prefix returns the entries whose folded headword starts with the folded
// prefix, ordered by folded headword.
func (d *Dictionary) Prefix(prefix string) ([]*WordEntry, error) {
	return d.lookup(prefix, (*index.Index[*foldedWord]).Prefix)
}

func (d *Dictionary) lookup(query string, find func(*index.Index[*foldedWord], string) []*foldedWord) ([]*WordEntry, error) {
	if _, err := d.Words(); err != nil {
		return nil, err
	}

	foldedQuery, _, err := transform.String(d.folder(), query)
	if err != nil {
		return nil, fmt.Errorf("folding query %q: %w", query, err)
	}

	var entries []*WordEntry
	for _, w := range find(d.index, foldedQuery) {
		entries = append(entries, w.entry)
	}
	return entries, nil
}
