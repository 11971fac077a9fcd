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

// Package appledict implements a library for reading Apple Dictionary.app
// dictionaries in pure Go.
//
// An Apple dictionary is a bundle directory with a .dictionary extension.
// The bundle contains several files:
//  1. Contents/Info.plist holds metadata about the dictionary such as its
//     bundle identifier and display name.
//  2. Contents/Resources/Body.data holds the definitions as a sequence of
//     zlib compressed sections. Each section contains one or more XML
//     definition fragments. See the [body] package.
//
// Each definition carries its headword in the d:title attribute of its
// d:entry element. Definitions are grouped by headword in the order they
// appear in Body.data.
package appledict
