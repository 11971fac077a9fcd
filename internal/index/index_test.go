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

package index

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type entry struct {
	Key string
	N   int
}

func entryKey(e entry) string {
	return e.Key
}

var testEntries = []entry{
	{"bar", 1},
	{"apple", 2},
	{"bar", 3},
	{"banana", 4},
	{"bar", 5},
	{"applet", 6},
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		query    string
		expected []entry
	}{
		"single result": {
			query:    "apple",
			expected: []entry{{"apple", 2}},
		},
		"equal keys keep order": {
			query:    "bar",
			expected: []entry{{"bar", 1}, {"bar", 3}, {"bar", 5}},
		},
		"no results": {
			query:    "cherry",
			expected: nil,
		},
		"prefix is not a match": {
			query:    "app",
			expected: nil,
		},
	}

	index := New(testEntries, entryKey, strings.Compare)
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tc.expected, index.Search(tc.query)); diff != "" {
				t.Fatalf("Search (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestIndex_Prefix(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		prefix   string
		expected []entry
	}{
		"several keys": {
			prefix:   "app",
			expected: []entry{{"apple", 2}, {"applet", 6}},
		},
		"whole key": {
			prefix:   "banana",
			expected: []entry{{"banana", 4}},
		},
		"shared prefix": {
			prefix:   "ba",
			expected: []entry{{"banana", 4}, {"bar", 1}, {"bar", 3}, {"bar", 5}},
		},
		"empty prefix": {
			prefix: "",
			expected: []entry{
				{"apple", 2}, {"applet", 6}, {"banana", 4},
				{"bar", 1}, {"bar", 3}, {"bar", 5},
			},
		},
		"no results": {
			prefix:   "c",
			expected: nil,
		},
	}

	index := New(testEntries, entryKey, strings.Compare)
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tc.expected, index.Prefix(tc.prefix)); diff != "" {
				t.Fatalf("Prefix (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestIndex_empty(t *testing.T) {
	t.Parallel()

	index := New[entry](nil, entryKey, strings.Compare)
	if got := index.Len(); got != 0 {
		t.Errorf("Len: want: 0, got: %d", got)
	}
	if got := index.Search("a"); got != nil {
		t.Errorf("Search: want: nil, got: %v", got)
	}
	if got := index.Prefix(""); got != nil {
		t.Errorf("Prefix: want: nil, got: %v", got)
	}
}
