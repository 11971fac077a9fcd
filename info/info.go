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

// Package info implements reading the Info.plist file of a dictionary bundle.
package info

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"howett.net/plist"
)

var (
	errMissingIdentifier = errors.New("missing CFBundleIdentifier")
	errMissingName       = errors.New("missing CFBundleDisplayName")
)

// Info is the dictionary bundle metadata.
type Info struct {
	// Identifier is the bundle identifier, e.g. com.apple.dictionary.NOAD.
	Identifier string `plist:"CFBundleIdentifier"`

	// DisplayName is the user visible dictionary name.
	DisplayName string `plist:"CFBundleDisplayName"`

	// Name is the bundle name. It is used when DisplayName is missing.
	Name string `plist:"CFBundleName"`

	// HeapDataCompressionType is the Body.data compression type. Type 2
	// dictionaries are expected to have a padded Body.data header.
	HeapDataCompressionType int `plist:"HeapDataCompressionType"`
}

// New reads dictionary metadata from r.
func New(r io.ReadSeeker) (*Info, error) {
	var i Info
	if err := plist.NewDecoder(r).Decode(&i); err != nil {
		return nil, fmt.Errorf("decoding plist: %w", err)
	}

	if i.Identifier == "" {
		return nil, errMissingIdentifier
	}
	if i.DisplayName == "" {
		i.DisplayName = i.Name
	}
	if i.DisplayName == "" {
		return nil, errMissingName
	}
	return &i, nil
}

// Open reads the Info.plist file at path.
func Open(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening info: %w", err)
	}
	defer f.Close()

	i, err := New(f)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return i, nil
}

// ID returns an identifier usable as a search index uid. Index uids may not
// contain periods.
func (i *Info) ID() string {
	return strings.ReplaceAll(i.Identifier, ".", "-")
}
