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

package body

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetectLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		marker   [8]byte
		expected Layout
	}{
		{
			name:     "padded",
			marker:   [8]byte{0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF},
			expected: LayoutPadded,
		},
		{
			name:     "section size",
			marker:   [8]byte{0x20, 0, 0, 0, 0, 0, 0, 0},
			expected: LayoutCompact,
		},
		{
			name:     "zero without marker",
			marker:   [8]byte{0, 0, 0, 0, 0, 0, 0, 0},
			expected: LayoutCompact,
		},
		{
			name:     "marker first",
			marker:   [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0},
			expected: LayoutCompact,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if got := DetectLayout(test.marker); got != test.expected {
				t.Fatalf("DetectLayout: want: %v, got: %v", test.expected, got)
			}
		})
	}
}

func TestLayout_BodyOffset(t *testing.T) {
	t.Parallel()

	if want, got := int64(0x60), LayoutPadded.BodyOffset(); want != got {
		t.Errorf("padded: want: %#x, got: %#x", want, got)
	}
	if want, got := int64(0x44), LayoutCompact.BodyOffset(); want != got {
		t.Errorf("compact: want: %#x, got: %#x", want, got)
	}
}

func TestSplitSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  []byte
		expected [][]byte
		err      error
	}{
		{
			name:     "empty",
			payload:  []byte{},
			expected: nil,
		},
		{
			name:     "single entry",
			payload:  []byte(`<d:entry d:title="a">a</d:entry>`),
			expected: [][]byte{[]byte(`<d:entry d:title="a">a</d:entry>`)},
		},
		{
			name:    "frames",
			payload: []byte("\x02\x00\x00\x00ab\x03\x00\x00\x00cde"),
			expected: [][]byte{
				[]byte("ab"),
				[]byte("cde"),
			},
		},
		{
			name:     "zero length frame",
			payload:  []byte("\x00\x00\x00\x00"),
			expected: [][]byte{{}},
		},
		{
			name:    "frame overruns payload",
			payload: []byte("\x05\x00\x00\x00ab"),
			err:     ErrDecode,
		},
		{
			name:    "truncated size",
			payload: []byte("\x02\x00\x00\x00ab\x01\x00"),
			err:     ErrDecode,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := SplitSection(test.payload)
			if !errors.Is(err, test.err) {
				t.Fatalf("SplitSection: want error: %v, got: %v", test.err, err)
			}
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Fatalf("SplitSection (-want, +got):\n%s", diff)
			}
		})
	}
}
