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

package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	pageHeader = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta http-equiv="Content-Type" content="text/html; charset=utf-8"/>
    <link rel="stylesheet" href="` + Stylesheet + `">
  </head>
  <body> `

	pageFooter = ` </body>
</html>
`
)

// File is a rendered definition.
type File struct {
	// Name is the file name. See [Filename].
	Name string

	// Data is the HTML page.
	Data []byte
}

// Render renders each definition of word into an HTML page. Definitions are
// embedded as-is and are not validated.
func Render(word string, defs []string) []*File {
	files := make([]*File, 0, len(defs))
	for i, def := range defs {
		data := make([]byte, 0, len(pageHeader)+len(def)+len(pageFooter))
		data = append(data, pageHeader...)
		data = append(data, def...)
		data = append(data, pageFooter...)
		files = append(files, &File{
			Name: Filename(word, i),
			Data: data,
		})
	}
	return files
}

// WriteAll renders the definitions of word and writes them to dir.
func WriteAll(dir, word string, defs []string) error {
	for _, f := range Render(word, defs) {
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0o644); err != nil { //nolint:gosec // pages are public.
			return fmt.Errorf("writing %q: %w", word, err)
		}
	}
	return nil
}

// CopyStylesheet copies the stylesheet from r into dir.
func CopyStylesheet(dir string, r io.Reader) error {
	f, err := os.Create(filepath.Join(dir, Stylesheet))
	if err != nil {
		return fmt.Errorf("creating stylesheet: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing stylesheet: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing stylesheet: %w", err)
	}
	return nil
}
