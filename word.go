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
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrNoTitle indicates that a definition has no d:title attribute.
var ErrNoTitle = errors.New("definition has no title")

// titleRE matches the first d:title attribute. Definitions are not parsed
// as XML here since only the title is needed.
var titleRE = regexp.MustCompile(`d:title="(.*?)"`)

// DefinitionScanner is a source of raw definitions such as
// [github.com/ianlewis/go-appledict/body.Scanner].
type DefinitionScanner interface {
	Scan() bool
	Definition() []byte
	Err() error
}

// WordEntry is a headword and all of its definitions.
type WordEntry struct {
	// Word is the headword.
	Word string

	// Definitions are the XML definition fragments in the order they
	// appear in Body.data.
	Definitions []string
}

// String returns the headword.
func (e *WordEntry) String() string {
	return e.Word
}

// Title returns the headword of the definition.
func Title(defn []byte) (string, error) {
	m := titleRE.FindSubmatch(defn)
	if m == nil {
		return "", ErrNoTitle
	}
	return html.UnescapeString(string(m[1])), nil
}

// Group reads all definitions from s and groups them by headword. Words are
// returned in the order they were first seen. Definitions without a title
// are logged and skipped. Errors returned by s abort grouping.
func Group(s DefinitionScanner, log *zap.Logger) ([]*WordEntry, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var words []*WordEntry
	byWord := map[string]*WordEntry{}
	n := 0
	for s.Scan() {
		defn := s.Definition()
		n++

		word, err := Title(defn)
		if err != nil {
			log.Warn("Skipping definition",
				zap.Int("definition", n),
				zap.String("prefix", prefix(defn, 64)),
				zap.Error(err))
			continue
		}

		e, ok := byWord[word]
		if !ok {
			e = &WordEntry{Word: word}
			byWord[word] = e
			words = append(words, e)
		}
		e.Definitions = append(e.Definitions, string(defn))
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading definitions: %w", err)
	}

	log.Debug("Grouped definitions",
		zap.Int("definitions", n),
		zap.Int("words", len(words)))
	return words, nil
}

// prefix returns up to n bytes of b for logging.
func prefix(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return strings.ToValidUTF8(string(b), "")
}
