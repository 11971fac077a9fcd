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
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// Scanner scans the definitions of a Body.data file from start to end. Each
// section is decompressed when the scanner reaches it. A Scanner cannot be
// restarted.
type Scanner struct {
	r      io.ReaderAt
	closer io.Closer
	hdr    *header

	// off is the offset of the next section.
	off int64

	// pending are the definitions of the current section not yet returned.
	pending [][]byte
	defn    []byte
	err     error
}

// NewScanner returns a new Scanner reading from r. The file header is read
// immediately and a malformed header is returned as an error.
func NewScanner(r io.ReaderAt) (*Scanner, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		r:   r,
		hdr: hdr,
		off: hdr.layout.BodyOffset(),
	}, nil
}

// Open opens the Body.data file at path. The Scanner owns the file and it
// should be closed with the Close method.
func Open(path string) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening body: %w", err)
	}
	s, err := NewScanner(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	s.closer = f
	return s, nil
}

// Layout returns the header variant of the file.
func (s *Scanner) Layout() Layout {
	return s.hdr.layout
}

// Limit returns the offset where section data ends.
func (s *Scanner) Limit() int64 {
	return s.hdr.limit
}

// Scan advances the scanner to the next definition. It returns false when
// the end of the section data is reached or an error occurs.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for len(s.pending) == 0 {
		if s.off >= s.hdr.limit {
			s.defn = nil
			return false
		}
		payload, err := s.nextSection()
		if err != nil {
			s.err = err
			s.defn = nil
			return false
		}
		if s.pending, err = SplitSection(payload); err != nil {
			s.err = fmt.Errorf("section ending at %#x: %w", s.off, err)
			s.defn = nil
			return false
		}
	}

	s.defn, s.pending = s.pending[0], s.pending[1:]
	if !utf8.Valid(s.defn) {
		s.err = fmt.Errorf("%w: definition in section ending at %#x is not valid utf-8", ErrDecode, s.off)
		s.defn = nil
		return false
	}
	return true
}

// Definition returns the current definition XML.
func (s *Scanner) Definition() []byte {
	return s.defn
}

// Err returns the first error encountered.
func (s *Scanner) Err() error {
	return s.err
}

// Close closes the underlying file if the Scanner owns one.
func (s *Scanner) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("closing body: %w", err)
	}
	return nil
}

// nextSection reads and decompresses the section at s.off.
func (s *Scanner) nextSection() ([]byte, error) {
	start := s.off
	if start+sectionHeaderSize > s.hdr.limit {
		return nil, fmt.Errorf("%w: section header at %#x runs past limit %#x", ErrDecode, start, s.hdr.limit)
	}

	var h [sectionHeaderSize]byte
	if _, err := s.r.ReadAt(h[:], start); err != nil {
		return nil, fmt.Errorf("%w: reading section header at %#x: %w", ErrDecode, start, shortRead(err))
	}
	size := int64(binary.LittleEndian.Uint32(h[0:4]))
	// h[4:8] is unknown.
	decompressedSize := int64(binary.LittleEndian.Uint32(h[8:12]))

	if size < 8 {
		return nil, fmt.Errorf("%w: section at %#x has size %d", ErrDecode, start, size)
	}
	end := start + 4 + size
	if end > s.hdr.limit {
		return nil, fmt.Errorf("%w: section at %#x ends at %#x past limit %#x", ErrDecode, start, end, s.hdr.limit)
	}

	compressed := make([]byte, size-8)
	if _, err := s.r.ReadAt(compressed, start+sectionHeaderSize); err != nil {
		return nil, fmt.Errorf("%w: reading section at %#x: %w", ErrDecode, start, shortRead(err))
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: inflating section at %#x: %w", ErrDecode, start, err)
	}
	defer zr.Close()
	// Data past the declared size is never inflated.
	payload := make([]byte, decompressedSize)
	if n, err := io.ReadFull(zr, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: section at %#x inflated to %d bytes, want %d", ErrDecode, start, n, decompressedSize)
		}
		return nil, fmt.Errorf("%w: inflating section at %#x: %w", ErrDecode, start, err)
	}

	s.off = end
	return payload, nil
}
