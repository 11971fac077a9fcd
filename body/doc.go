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

// Package body implements reading Body.data files.
//
// The Body.data file holds the definitions of an Apple dictionary bundle. All
// integers are 32-bit little-endian.
//
//  1. 0x00-0x3F: zero padding.
//  2. 0x40: the number of bytes remaining in the file after this offset. The
//     end of the section data is 0x40 plus this value.
//  3. 0x44: either the first section or, when the two integers at 0x44 are
//     0 and 0xFFFFFFFF, header padding that ends at 0x60.
//  4. A sequence of sections. Each section is the section size (not including
//     the size field itself), four unknown bytes, the decompressed size, and
//     section size - 8 bytes of zlib compressed data.
//
// A decompressed section is either a single definition starting with
// "<d:entry", or a sequence of definitions each prefixed with its 32-bit
// length.
package body
