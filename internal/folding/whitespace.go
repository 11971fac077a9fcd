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

// Package folding implements text folding transformers used to normalize
// headwords and text extracted from definitions.
package folding

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// ignorable are invisible format runes found in dictionary markup. They are
// dropped without breaking words.
var ignorable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00ad, Hi: 0x00ad, Stride: 1}, // soft hyphen
		{Lo: 0x200b, Hi: 0x200d, Stride: 1}, // zero width space, (non-)joiner
		{Lo: 0x2060, Hi: 0x2060, Stride: 1}, // word joiner
		{Lo: 0xfeff, Hi: 0xfeff, Stride: 1}, // zero width no-break space
	},
}

// WhitespaceFolder folds whitespace. Leading and trailing whitespace is
// removed, each internal whitespace span becomes a single ASCII space, and
// invisible format runes such as soft hyphens and zero width spaces are
// removed.
type WhitespaceFolder struct {
	// started is true once a visible rune has been written.
	started bool

	// pending is true if a space should be written before the next visible
	// rune.
	pending bool
}

// Transform implements [transform.Transformer.Transform].
func (w *WhitespaceFolder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	var nDst, nSrc int
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size <= 1 && !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}

		switch {
		case unicode.Is(ignorable, r):
		case unicode.IsSpace(r):
			w.pending = w.started
		default:
			// r may be utf8.RuneError for invalid input, which encodes
			// to more bytes than it was decoded from.
			need := utf8.RuneLen(r)
			if w.pending {
				need++
			}
			if nDst+need > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			if w.pending {
				dst[nDst] = ' '
				nDst++
				w.pending = false
			}
			nDst += utf8.EncodeRune(dst[nDst:], r)
			w.started = true
		}
		nSrc += size
	}
	return nDst, nSrc, nil
}

// Reset implements [transform.Transformer.Reset].
func (w *WhitespaceFolder) Reset() {
	*w = WhitespaceFolder{}
}

// Whitespace returns s folded by a [WhitespaceFolder].
func Whitespace(s string) string {
	// Short buffer errors are handled by transform.String and the folder
	// returns no others.
	folded, _, _ := transform.String(&WhitespaceFolder{}, s)
	return folded
}
