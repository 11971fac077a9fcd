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

// Package document converts dictionary definitions into HTML files and
// search index documents.
package document

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/ianlewis/go-appledict/alfred"
	"github.com/ianlewis/go-appledict/internal/folding"
)

// ErrParse indicates that a definition could not be parsed.
var ErrParse = errors.New("parsing definition")

const (
	// Ext is the extension of rendered definition files.
	Ext = ".html"

	// Stylesheet is the name of the stylesheet linked from rendered files.
	// It is expected to be in the same directory.
	Stylesheet = "dict-entry.css"

	// speakerPrefix marks subtitles of documents with a pronunciation.
	speakerPrefix = "[⌘: 🗣] "

	// speaker prefixes the pronunciation subtitle.
	speaker = "🗣 "
)

// Document is a search index document for one definition.
type Document struct {
	// ID is the primary key. It is the filename without extension.
	ID string `json:"id"`

	// Title is the headword.
	Title string `json:"title"`

	// Subtitle is the first sense of the definition if it has one and the
	// full text otherwise.
	Subtitle string `json:"subtitle"`

	// Fulltext is all text of the definition.
	Fulltext string `json:"fulltext"`

	// Forms are the inflected forms of the headword.
	Forms string `json:"forms"`

	// Arg is the path to the rendered HTML file.
	Arg string `json:"arg"`

	// QuickLookURL is the path to the rendered HTML file.
	QuickLookURL string `json:"quicklookurl"`

	// Mods holds the pronunciation action if the definition has one.
	Mods *alfred.Mods `json:"mods,omitempty"`
}

// Filename returns the name of the HTML file for the i-th definition of
// word. The word is hex encoded so that names are safe on any filesystem,
// including case-insensitive ones, and the index follows a separator that
// cannot appear in hex so that distinct pairs never share a name.
func Filename(word string, i int) string {
	return strings.ToUpper(hex.EncodeToString([]byte(word))) + "_" + strconv.Itoa(i) + Ext
}

// ID returns the document id for a filename.
func ID(filename string) string {
	return strings.TrimSuffix(filename, Ext)
}

// Build builds the index document for a definition. The definition is
// parsed leniently and malformed markup does not cause an error.
func Build(word, filename, definition, htmlDir string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(definition))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrParse, filename, err)
	}

	path := filepath.Join(htmlDir, filename)
	doc := &Document{
		ID:           ID(filename),
		Title:        word,
		Fulltext:     folding.Whitespace(text(root)),
		Arg:          path,
		QuickLookURL: path,
	}

	doc.Subtitle = doc.Fulltext
	if n := find(root, attrEquals("d:def", "1")); n != nil {
		doc.Subtitle = folding.Whitespace(text(n))
	}

	if n := find(root, hasClass("fg")); n != nil {
		doc.Forms = folding.Whitespace(text(n))
	}

	if ipa := pronunciation(root); ipa != "" {
		doc.Subtitle = speakerPrefix + doc.Subtitle
		doc.Mods = &alfred.Mods{
			Cmd: &alfred.Mod{
				Arg:      ipa,
				Subtitle: speaker + ipa,
			},
		}
	}

	return doc, nil
}

// BuildAll builds index documents for all definitions of word. No documents
// are built for the empty word.
func BuildAll(word string, defs []string, htmlDir string) ([]*Document, error) {
	if word == "" {
		return nil, nil
	}

	docs := make([]*Document, 0, len(defs))
	for i, def := range defs {
		doc, err := Build(word, Filename(word, i), def, htmlDir)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// pronunciation returns the IPA pronunciation up to the first comma. A
// solitary pronunciation is preferred.
func pronunciation(root *html.Node) string {
	n := find(root, attrEquals("d:prn", "IPA solitary"))
	if n == nil {
		n = find(root, attrEquals("d:prn", "IPA"))
	}
	if n == nil {
		return ""
	}
	ipa, _, _ := strings.Cut(text(n), ",")
	return strings.TrimSpace(ipa)
}

// find returns the first node in document order that matches.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attrEquals(key, val string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, a := range n.Attr {
			if a.Key == key && a.Val == val {
				return true
			}
		}
		return false
	}
}

func hasClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, a := range n.Attr {
			if a.Key != "class" {
				continue
			}
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
		return false
	}
}

// text returns the concatenated text of all text nodes under n.
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
