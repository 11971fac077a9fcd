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
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ianlewis/go-appledict/body"
)

// Section is a test Body.data section.
type Section struct {
	// Definitions are written as length prefixed frames.
	Definitions []string

	// Entry, when set, is written as the whole section payload without a
	// length prefix. It should start with "<d:entry".
	Entry string

	// Payload, when set, is compressed as-is instead of Definitions or Entry.
	Payload []byte

	// DecompressedSize overrides the decompressed size field when non-zero.
	DecompressedSize uint32
}

// MakeBodyOptions are options for MakeBody.
type MakeBodyOptions struct {
	// Layout is the header variant. Defaults to body.LayoutPadded.
	Layout body.Layout

	// ExtraLimit is added to the remaining length field. A positive value
	// declares more data than the file holds.
	ExtraLimit int
}

func (o *MakeBodyOptions) getLayout() body.Layout {
	if o == nil {
		return body.LayoutPadded
	}
	return o.Layout
}

func (o *MakeBodyOptions) getExtraLimit() int {
	if o == nil {
		return 0
	}
	return o.ExtraLimit
}

// DefaultBodyOptions are the options used when nil is given to MakeBody.
var DefaultBodyOptions = &MakeBodyOptions{
	Layout: body.LayoutPadded,
}

// MakeBody creates a test Body.data file.
func MakeBody(t *testing.T, sections []*Section, opts *MakeBodyOptions) []byte {
	t.Helper()

	b := make([]byte, 0x44)
	if opts.getLayout() == body.LayoutPadded {
		b = binary.LittleEndian.AppendUint32(b, 0)
		b = binary.LittleEndian.AppendUint32(b, 0xFFFFFFFF)
		b = append(b, make([]byte, 0x60-len(b))...)
	}

	for _, s := range sections {
		b = append(b, MakeSection(t, s)...)
	}

	remaining := len(b) - 0x40 + opts.getExtraLimit()
	if remaining < 0 || remaining > math.MaxUint32 {
		t.Fatalf("body too large: %d", remaining)
	}
	//nolint:gosec // bounds checked above.
	binary.LittleEndian.PutUint32(b[0x40:], uint32(remaining))
	return b
}

// MakeSection creates a single compressed section including its header.
func MakeSection(t *testing.T, s *Section) []byte {
	t.Helper()

	payload := s.Payload
	if payload == nil {
		if s.Entry != "" {
			payload = []byte(s.Entry)
		} else {
			payload = Frame(t, s.Definitions...)
		}
	}

	var compressed bytes.Buffer
	z := zlib.NewWriter(&compressed)
	if _, err := z.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := z.Close(); err != nil {
		t.Fatal(err)
	}

	decompressedSize := s.DecompressedSize
	if decompressedSize == 0 {
		//nolint:gosec // test payloads are small.
		decompressedSize = uint32(len(payload))
	}

	var b []byte
	//nolint:gosec // test payloads are small.
	b = binary.LittleEndian.AppendUint32(b, uint32(compressed.Len()+8))
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = binary.LittleEndian.AppendUint32(b, decompressedSize)
	return append(b, compressed.Bytes()...)
}

// Frame writes definitions as length prefixed frames.
func Frame(t *testing.T, defns ...string) []byte {
	t.Helper()

	var b []byte
	for _, d := range defns {
		if len(d) > math.MaxUint32 {
			t.Fatalf("definition too long: %d", len(d))
		}
		//nolint:gosec // bounds checked above.
		b = binary.LittleEndian.AppendUint32(b, uint32(len(d)))
		b = append(b, d...)
	}
	return b
}

// MakeTempBody writes a test Body.data file to a temporary directory and
// returns its path.
func MakeTempBody(t *testing.T, sections []*Section, opts *MakeBodyOptions) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "Body.data")
	if err := os.WriteFile(path, MakeBody(t, sections, opts), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
