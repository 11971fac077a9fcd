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

// Package importer imports dictionaries into an HTML directory and a search
// index.
//
// An import writes the following layout under the base directory:
//
//	<base>/<id>/html/*.html   one page per definition
//	<base>/db                 search engine database
//	<base>/db.log             search engine log
//	<base>/imported.json      registry of imported dictionaries
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ianlewis/go-appledict"
	"github.com/ianlewis/go-appledict/alfred"
	"github.com/ianlewis/go-appledict/document"
	"github.com/ianlewis/go-appledict/internal/progress"
	"github.com/ianlewis/go-appledict/pipeline"
	"github.com/ianlewis/go-appledict/search"
)

const (
	htmlTitle  = "Creating HTML files for quick look..."
	indexTitle = "Building index for instant search..."
	waitTitle  = "Waiting for index to be ready..."
)

// Indexer accepts index documents.
type Indexer interface {
	// Submit submits documents in one batch.
	Submit(ctx context.Context, docs any) (*search.Task, error)

	// WaitUntilSettled waits for a submitted task.
	WaitUntilSettled(ctx context.Context, task *search.Task, opts *search.WaitOptions) error
}

// IndexOpener returns the index with the given uid, creating it if needed.
type IndexOpener func(ctx context.Context, uid string) (Indexer, error)

// EngineIndexOpener returns an IndexOpener that starts the engine if it is
// not running and creates indexes with search.DefaultSettings.
func EngineIndexOpener(opts *search.EngineOptions) IndexOpener {
	return func(ctx context.Context, uid string) (Indexer, error) {
		e, err := search.EnsureRunning(ctx, opts)
		if err != nil {
			return nil, err
		}
		idx, err := e.Client().CreateIndex(ctx, uid, search.DefaultSettings)
		if err != nil {
			return nil, err
		}
		return idx, nil
	}
}

// DBPath returns the engine database path for the base directory.
func DBPath(baseDir string) string {
	return filepath.Join(baseDir, "db")
}

// Options are import options.
type Options struct {
	// BaseDir is the import base directory.
	BaseDir string

	// Stylesheet is the path of the stylesheet copied next to the HTML
	// pages. No stylesheet is copied if empty.
	Stylesheet string

	// OpenIndex opens the search index. Required.
	OpenIndex IndexOpener

	// Concurrency is the number of workers per pipeline.
	Concurrency int

	// Policy is the worker error policy.
	Policy pipeline.Policy

	// Wait are the options for waiting on the index task.
	Wait *search.WaitOptions

	// Progress shows progress. Nothing is shown if nil.
	Progress *progress.Display

	// Dictionary are the options used to open the dictionary.
	Dictionary *appledict.Options

	// Logger is the logger. Nothing is logged if nil.
	Logger *zap.Logger
}

// Result is a summary of an import.
type Result struct {
	// Name is the dictionary name.
	Name string

	// ID is the dictionary id and index uid.
	ID string

	// HTMLDir is the directory holding the HTML pages.
	HTMLDir string

	// Words is the number of distinct words.
	Words int

	// Files is the number of HTML pages written.
	Files int

	// Documents is the number of documents submitted to the index.
	Documents int
}

// Import imports the dictionary at path. HTML pages are written first, then
// all index documents are submitted as one batch and the dictionary is
// recorded in the registry.
func Import(ctx context.Context, path string, opts *Options) (*Result, error) {
	if opts == nil || opts.OpenIndex == nil {
		return nil, fmt.Errorf("importing %q: no index opener", path)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	dictOpts := opts.Dictionary
	if dictOpts == nil {
		dictOpts = &appledict.Options{}
	}
	if dictOpts.Logger == nil {
		o := *dictOpts
		o.Logger = log
		dictOpts = &o
	}

	d, err := appledict.Open(path, dictOpts)
	if err != nil {
		return nil, err
	}

	baseDir, err := filepath.Abs(opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}
	res := &Result{
		Name:    d.Name(),
		ID:      d.ID(),
		HTMLDir: filepath.Join(baseDir, d.ID(), "html"),
	}
	log = log.With(zap.String("dictionary", res.ID))

	words, err := d.Words()
	if err != nil {
		return nil, err
	}
	res.Words = len(words)
	log.Info("Read dictionary", zap.String("name", res.Name), zap.Int("words", res.Words))

	// Nothing is written until the whole body has decoded.
	if err := os.MkdirAll(res.HTMLDir, 0o755); err != nil { //nolint:gosec // read by the browser.
		return nil, fmt.Errorf("creating HTML directory: %w", err)
	}

	res.Files, err = writeHTML(ctx, res.HTMLDir, words, opts, log)
	if err != nil {
		return nil, err
	}
	if opts.Stylesheet != "" {
		if err := copyStylesheet(res.HTMLDir, opts.Stylesheet); err != nil {
			return nil, err
		}
	}
	log.Info("Wrote HTML files", zap.String("dir", res.HTMLDir), zap.Int("files", res.Files))

	idx, err := opts.OpenIndex(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	res.Documents, err = buildIndex(ctx, idx, res.HTMLDir, words, opts, log)
	if err != nil {
		return nil, err
	}
	log.Info("Built index", zap.Int("documents", res.Documents))

	reg, err := alfred.LoadRegistry(baseDir)
	if err != nil {
		return nil, err
	}
	reg.Add(res.Name, res.ID)
	if err := reg.Save(); err != nil {
		return nil, err
	}
	return res, nil
}

// writeHTML writes the HTML pages for all words and returns the number of
// pages written.
func writeHTML(ctx context.Context, dir string, words []*appledict.WordEntry, opts *Options, log *zap.Logger) (int, error) {
	bar, err := opts.Progress.Bar(htmlTitle)
	if err != nil {
		return 0, err
	}
	defer closeBar(bar, log)

	acc := &counter{}
	p := &pipeline.Pipeline[*appledict.WordEntry, int]{
		Work: func(_ context.Context, w *appledict.WordEntry) (int, error) {
			if err := document.WriteAll(dir, w.Word, w.Definitions); err != nil {
				return 0, err
			}
			return len(w.Definitions), nil
		},
		Label:       wordLabel,
		Accumulator: acc,
		Progress:    bar,
		Concurrency: opts.Concurrency,
		Policy:      opts.Policy,
		Logger:      log,
	}
	if err := p.Run(ctx, words); err != nil {
		return 0, fmt.Errorf("writing HTML files: %w", err)
	}
	return acc.n, nil
}

// buildIndex builds index documents for all words, submits them in one
// batch and waits for the engine to index them.
func buildIndex(ctx context.Context, idx Indexer, dir string, words []*appledict.WordEntry, opts *Options, log *zap.Logger) (int, error) {
	bar, err := opts.Progress.Bar(indexTitle)
	if err != nil {
		return 0, err
	}
	defer closeBar(bar, log)

	var n int
	acc := &pipeline.SliceAccumulator[*document.Document]{
		OnFinish: func(ctx context.Context, docs []*document.Document) error {
			n = len(docs)
			return submit(ctx, idx, docs, opts, log)
		},
	}
	p := &pipeline.Pipeline[*appledict.WordEntry, []*document.Document]{
		Work: func(_ context.Context, w *appledict.WordEntry) ([]*document.Document, error) {
			return document.BuildAll(w.Word, w.Definitions, dir)
		},
		Label:       wordLabel,
		Accumulator: acc,
		Progress:    bar,
		Concurrency: opts.Concurrency,
		Policy:      opts.Policy,
		Logger:      log,
	}
	if err := p.Run(ctx, words); err != nil {
		return 0, fmt.Errorf("building index: %w", err)
	}
	return n, nil
}

func submit(ctx context.Context, idx Indexer, docs []*document.Document, opts *Options, log *zap.Logger) error {
	if docs == nil {
		docs = []*document.Document{}
	}
	task, err := idx.Submit(ctx, docs)
	if err != nil {
		return err
	}

	bar, err := opts.Progress.Indefinite(waitTitle)
	if err != nil {
		return err
	}
	defer closeBar(bar, log)

	wait := *search.DefaultWaitOptions
	if opts.Wait != nil {
		wait = *opts.Wait
	}
	wait.Progress = bar
	return idx.WaitUntilSettled(ctx, task, &wait)
}

func copyStylesheet(dir, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening stylesheet: %w", err)
	}
	defer f.Close()
	return document.CopyStylesheet(dir, f)
}

func closeBar(c interface{ Close() error }, log *zap.Logger) {
	if err := c.Close(); err != nil {
		log.Debug("Closing progress", zap.Error(err))
	}
}

func wordLabel(w *appledict.WordEntry) string {
	return w.Word
}

// counter sums integer results.
type counter struct {
	n int
}

func (c *counter) Add(n int) error {
	c.n += n
	return nil
}

func (*counter) Finish(context.Context) error {
	return nil
}
