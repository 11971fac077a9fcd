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

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/go-appledict/alfred"
	"github.com/ianlewis/go-appledict/internal/testutil"
)

var testSections = []*testutil.Section{
	{
		Definitions: []string{
			`<d:entry d:title="apple"><span d:def="1">a round fruit</span></d:entry>`,
			`<d:entry d:title="pear"><span d:def="1">a sweet fruit</span></d:entry>`,
		},
	},
}

// run runs the app with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("LOG_LEVEL", "none")

	var out, errOut bytes.Buffer
	app := newAppleDictApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"appledict"}, args...))
	return out.String(), err
}

func makeDicts(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	testutil.MakeDictionary(t, dir, "A.dictionary", &testutil.Info{
		Identifier:  "com.example.a",
		DisplayName: "A",
	}, testSections, nil)
	bPath := testutil.MakeDictionary(t, dir, "B.dictionary", &testutil.Info{
		Identifier:  "com.example.b",
		DisplayName: "B",
	}, testSections, nil)
	return dir, bPath
}

func TestList(t *testing.T) {
	dictDir, bPath := makeDicts(t)
	base := t.TempDir()

	reg, err := alfred.LoadRegistry(base)
	if err != nil {
		t.Fatal(err)
	}
	reg.Add("A", "com-example-a")
	if err := reg.Save(); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--dict-dir", dictDir, "--base-dir", base, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var got alfred.Items
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if diff := cmp.Diff(alfred.Items{
		Items: []*alfred.Item{{Title: "B", Arg: bPath}},
	}, got); diff != "" {
		t.Errorf("list (-want, +got):\n%s", diff)
	}
}

func TestList_table(t *testing.T) {
	dictDir, _ := makeDicts(t)

	out, err := run(t, "--dict-dir", dictDir, "--base-dir", t.TempDir(), "list", "--format", "table", "--all")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if want, got := 3, len(lines); want != got {
		t.Fatalf("lines: want: %d, got: %d\n%s", want, got, out)
	}
	if !strings.HasPrefix(lines[0], "Name") {
		t.Errorf("header: want prefix %q, got: %q", "Name", lines[0])
	}
	if !strings.Contains(lines[2], filepath.Join(dictDir, "B.dictionary")) {
		t.Errorf("row: want path of B, got: %q", lines[2])
	}
}

func TestList_badFormat(t *testing.T) {
	dictDir, _ := makeDicts(t)

	_, err := run(t, "--dict-dir", dictDir, "--base-dir", t.TempDir(), "list", "--format", "xml")
	if !errors.Is(err, ErrFlagParse) {
		t.Fatalf("list: want: %v, got: %v", ErrFlagParse, err)
	}
}

func TestShow(t *testing.T) {
	dictDir, _ := makeDicts(t)

	out, err := run(t, "--dict-dir", dictDir, "show", "--dict", "B", "APPLE")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.HasPrefix(out, "B\n") {
		t.Errorf("show: want dictionary name, got: %q", out)
	}
	if !strings.Contains(out, "a round fruit") || strings.Contains(out, "<span") {
		t.Errorf("show: want plain text definition, got: %q", out)
	}
	if strings.Contains(out, "a sweet fruit") {
		t.Errorf("show: unexpected definition of pear: %q", out)
	}
}

func TestShow_prefix(t *testing.T) {
	dictDir, _ := makeDicts(t)

	out, err := run(t, "--dict-dir", dictDir, "show", "--dict", "A", "--prefix", "P")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if want := "A\n\npear\n\n"; out != want {
		t.Errorf("show: want: %q, got: %q", want, out)
	}
}

func TestImport_args(t *testing.T) {
	_, err := run(t, "--base-dir", t.TempDir(), "import")
	if !errors.Is(err, ErrFlagParse) {
		t.Fatalf("import: want: %v, got: %v", ErrFlagParse, err)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "GitVersion") {
		t.Errorf("version: want GitVersion, got:\n%s", out)
	}
}
