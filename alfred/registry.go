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

package alfred

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// RegistryFile is the name of the imported dictionary registry.
const RegistryFile = "imported.json"

// Registry is the list of imported dictionaries. Each item's title is the
// dictionary name and its arg is the dictionary id.
type Registry struct {
	path  string
	items Items
}

// LoadRegistry loads the registry in dir. A missing registry is empty.
func LoadRegistry(dir string) (*Registry, error) {
	r := &Registry{
		path: filepath.Join(dir, RegistryFile),
	}

	b, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	if err := json.Unmarshal(b, &r.items); err != nil {
		return nil, fmt.Errorf("decoding registry %q: %w", r.path, err)
	}
	return r, nil
}

// Path returns the path of the registry file.
func (r *Registry) Path() string {
	return r.path
}

// Items returns the imported dictionaries.
func (r *Registry) Items() []*Item {
	return r.items.Items
}

// Contains returns true if a dictionary with the given name was imported.
func (r *Registry) Contains(name string) bool {
	for _, i := range r.items.Items {
		if i.Title == name {
			return true
		}
	}
	return false
}

// Add records an imported dictionary. Adding an id that is already
// present replaces its name.
func (r *Registry) Add(name, id string) {
	for _, i := range r.items.Items {
		if i.Arg == id {
			i.Title = name
			return
		}
	}
	r.items.Items = append(r.items.Items, &Item{
		Title: name,
		Arg:   id,
	})
}

// Save writes the registry.
func (r *Registry) Save() error {
	var buf bytes.Buffer
	if err := r.items.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(r.path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // read by Alfred.
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}
