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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrDecode indicates that the Body.data file is malformed. Decode errors are
// fatal; no definitions should be trusted after one is returned.
var ErrDecode = errors.New("decoding body")

const (
	// limitOffset is the offset of the remaining length field.
	limitOffset = 0x40

	// probeOffset is the offset of the header variant marker.
	probeOffset = 0x44

	// paddedBodyOffset is where sections start after the padded header.
	paddedBodyOffset = 0x60

	// sectionHeaderSize is the size field, the unknown field and the
	// decompressed size field.
	sectionHeaderSize = 12

	// entryTag starts a section that is a single definition.
	entryTag = "<d:entry"
)

// Layout is the header variant of a Body.data file.
type Layout int

const (
	// LayoutCompact is a header where sections start at 0x44.
	LayoutCompact Layout = iota

	// LayoutPadded is a header that is padded up to 0x60.
	LayoutPadded
)

// String implements [fmt.Stringer.String].
func (l Layout) String() string {
	switch l {
	case LayoutCompact:
		return "compact"
	case LayoutPadded:
		return "padded"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// BodyOffset returns the offset of the first section.
func (l Layout) BodyOffset() int64 {
	if l == LayoutPadded {
		return paddedBodyOffset
	}
	return probeOffset
}

// DetectLayout returns the header variant given the eight bytes at 0x44.
func DetectLayout(probe [8]byte) Layout {
	if binary.LittleEndian.Uint32(probe[:4]) == 0 &&
		binary.LittleEndian.Uint32(probe[4:]) == 0xFFFFFFFF {
		return LayoutPadded
	}
	return LayoutCompact
}

// header is the decoded file header.
type header struct {
	layout Layout
	limit  int64
}

func readHeader(r io.ReaderAt) (*header, error) {
	var b [4]byte
	if _, err := r.ReadAt(b[:], limitOffset); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrDecode, shortRead(err))
	}
	h := &header{
		layout: LayoutCompact,
		limit:  limitOffset + int64(binary.LittleEndian.Uint32(b[:])),
	}

	// A file too short for the padded header can only be compact. It
	// may have no sections at all, so there is nothing to probe.
	if h.limit >= paddedBodyOffset {
		var probe [8]byte
		if _, err := r.ReadAt(probe[:], probeOffset); err != nil {
			return nil, fmt.Errorf("%w: reading header: %w", ErrDecode, shortRead(err))
		}
		h.layout = DetectLayout(probe)
	}
	if h.limit < h.layout.BodyOffset() {
		return nil, fmt.Errorf("%w: limit %#x before body offset %#x", ErrDecode, h.limit, h.layout.BodyOffset())
	}
	return h, nil
}

// SplitSection splits a decompressed section into definitions.
func SplitSection(payload []byte) ([][]byte, error) {
	if bytes.HasPrefix(payload, []byte(entryTag)) {
		return [][]byte{payload}, nil
	}

	var defns [][]byte
	for pos := 0; pos < len(payload); {
		if len(payload)-pos < 4 {
			return nil, fmt.Errorf("%w: truncated definition size at %d", ErrDecode, pos)
		}
		size := binary.LittleEndian.Uint32(payload[pos:])
		pos += 4
		if uint64(size) > uint64(len(payload)-pos) {
			return nil, fmt.Errorf("%w: definition at %d declares %d bytes, %d remain", ErrDecode, pos-4, size, len(payload)-pos)
		}
		defns = append(defns, payload[pos:pos+int(size)])
		pos += int(size)
	}
	return defns, nil
}

// shortRead converts io.EOF into io.ErrUnexpectedEOF. Running out of file
// before the header or section is complete is never a clean end.
func shortRead(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
