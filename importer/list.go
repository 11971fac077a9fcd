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

package importer

import (
	"github.com/ianlewis/go-appledict"
	"github.com/ianlewis/go-appledict/alfred"
)

// Unimported returns the dictionaries whose names are not in the registry.
// Each item's title is the dictionary name and its arg is the bundle path.
func Unimported(dicts []*appledict.Dictionary, reg *alfred.Registry) *alfred.Items {
	items := &alfred.Items{}
	for _, d := range dicts {
		if reg != nil && reg.Contains(d.Name()) {
			continue
		}
		items.Items = append(items.Items, &alfred.Item{
			Title: d.Name(),
			Arg:   d.Path(),
		})
	}
	return items
}
