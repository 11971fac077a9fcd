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

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"howett.net/plist"
)

// Info is test dictionary metadata written to Info.plist.
type Info struct {
	Identifier  string `plist:"CFBundleIdentifier"`
	DisplayName string `plist:"CFBundleDisplayName,omitempty"`
	Name        string `plist:"CFBundleName,omitempty"`

	HeapDataCompressionType int `plist:"HeapDataCompressionType,omitempty"`
}

// MakeDictionary writes a test dictionary bundle named name under dir and
// returns the bundle path. The name should include the .dictionary
// extension.
func MakeDictionary(t *testing.T, dir, name string, info *Info, sections []*Section, opts *MakeBodyOptions) string {
	t.Helper()

	path := filepath.Join(dir, name)
	resources := filepath.Join(path, "Contents", "Resources")
	if err := os.MkdirAll(resources, 0o700); err != nil {
		t.Fatal(err)
	}

	b, err := plist.MarshalIndent(info, plist.XMLFormat, "\t")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "Contents", "Info.plist"), b, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(resources, "Body.data"), MakeBody(t, sections, opts), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
