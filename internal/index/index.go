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

// Package index implements an in-memory index of values sorted by a string
// key.
package index

import (
	"slices"
	"sort"
	"strings"
)

// Index is a sorted array of values. Values with equal keys keep the order
// they were given in.
type Index[V any] struct {
	values []V
	keys   []string
	cmp    func(string, string) int
}

// New creates an index over values. key returns the key of a value and
// cmp(a, b) should return a negative number when a < b, a positive number
// when a > b and zero when a == b.
func New[V any](values []V, key func(V) string, cmp func(string, string) int) *Index[V] {
	type keyed struct {
		key   string
		value V
	}
	entries := make([]keyed, len(values))
	for i, v := range values {
		entries[i] = keyed{key: key(v), value: v}
	}
	slices.SortStableFunc(entries, func(a, b keyed) int {
		return cmp(a.key, b.key)
	})

	idx := &Index[V]{
		values: make([]V, len(entries)),
		keys:   make([]string, len(entries)),
		cmp:    cmp,
	}
	for i, e := range entries {
		idx.values[i] = e.value
		idx.keys[i] = e.key
	}
	return idx
}

// Len returns the number of values in the index.
func (idx *Index[V]) Len() int {
	return len(idx.values)
}

// Search returns the values whose key equals query.
func (idx *Index[V]) Search(query string) []V {
	i, found := sort.Find(len(idx.keys), func(i int) int {
		return idx.cmp(query, idx.keys[i])
	})
	if !found {
		return nil
	}

	j := i + 1
	for j < len(idx.keys) && idx.cmp(query, idx.keys[j]) == 0 {
		j++
	}
	return idx.values[i:j]
}

// Prefix returns the values whose key starts with prefix. It requires that
// cmp orders keys bytewise like [strings.Compare].
func (idx *Index[V]) Prefix(prefix string) []V {
	i := sort.Search(len(idx.keys), func(i int) bool {
		return idx.cmp(idx.keys[i], prefix) >= 0
	})

	j := i
	for j < len(idx.keys) && strings.HasPrefix(idx.keys[j], prefix) {
		j++
	}
	if i == j {
		return nil
	}
	return idx.values[i:j]
}
