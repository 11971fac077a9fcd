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

package alfred

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestItems_Write(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		items    *Items
		expected string
	}{
		{
			name:  "empty",
			items: &Items{},
			expected: `{
  "items": []
}
`,
		},
		{
			name: "item with mods",
			items: &Items{
				Items: []*Item{
					{
						Title:        "apple",
						Arg:          "/tmp/6170706C65_0.html",
						Subtitle:     "[⌘: 🗣] the fruit",
						QuickLookURL: "/tmp/6170706C65_0.html",
						Mods: &Mods{
							Cmd: &Mod{
								Arg:      "ˈapəl",
								Subtitle: "🗣 ˈapəl",
							},
						},
					},
					{
						Title: "Oxford",
						Arg:   "com-apple-dictionary-Oxford",
					},
				},
			},
			expected: `{
  "items": [
    {
      "title": "apple",
      "arg": "/tmp/6170706C65_0.html",
      "subtitle": "[⌘: 🗣] the fruit",
      "quicklookurl": "/tmp/6170706C65_0.html",
      "mods": {
        "cmd": {
          "arg": "ˈapəl",
          "subtitle": "🗣 ˈapəl"
        }
      }
    },
    {
      "title": "Oxford",
      "arg": "com-apple-dictionary-Oxford"
    }
  ]
}
`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := test.items.Write(&buf); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if diff := cmp.Diff(test.expected, buf.String()); diff != "" {
				t.Fatalf("Write (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	r, err := LoadRegistry(dir)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := r.Items(); len(got) != 0 {
		t.Fatalf("Items: want: empty, got: %v", got)
	}

	r.Add("Oxford", "com-apple-dictionary-Oxford")
	r.Add("Thesaurus", "com-apple-dictionary-Thesaurus")
	r.Add("Oxford Dictionary", "com-apple-dictionary-Oxford")
	if err := r.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r, err = LoadRegistry(dir)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	expected := []*Item{
		{Title: "Oxford Dictionary", Arg: "com-apple-dictionary-Oxford"},
		{Title: "Thesaurus", Arg: "com-apple-dictionary-Thesaurus"},
	}
	if diff := cmp.Diff(expected, r.Items()); diff != "" {
		t.Fatalf("Items (-want, +got):\n%s", diff)
	}
	if !r.Contains("Thesaurus") {
		t.Errorf("Contains(%q): want: true", "Thesaurus")
	}
	if r.Contains("Oxford") {
		t.Errorf("Contains(%q): want: false", "Oxford")
	}
}

func TestLoadRegistry_invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, RegistryFile), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRegistry(dir); err == nil {
		t.Fatal("LoadRegistry: expected failure")
	}
}

func TestInferWorkflowDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dir      string
		expected string
	}{
		{
			name:     "workflow dir",
			dir:      "/prefs/workflows/user.workflow.1234",
			expected: "/prefs/workflows/user.workflow.1234",
		},
		{
			name:     "nested",
			dir:      "/prefs/workflows/user.workflow.1234/bin/x",
			expected: "/prefs/workflows/user.workflow.1234",
		},
		{
			name:     "not found",
			dir:      "/usr/local/bin",
			expected: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if got := inferWorkflowDir(filepath.FromSlash(test.dir)); got != filepath.FromSlash(test.expected) {
				t.Fatalf("inferWorkflowDir: want: %q, got: %q", test.expected, got)
			}
		})
	}
}

//nolint:paralleltest // modifies the environment.
func TestWorkflowDir_env(t *testing.T) {
	t.Setenv("alfred_preferences", "/prefs")
	t.Setenv("alfred_workflow_uid", "user.workflow.ABCD")

	if want, got := filepath.Join("/prefs", "workflows", "user.workflow.ABCD"), WorkflowDir(); want != got {
		t.Fatalf("WorkflowDir: want: %q, got: %q", want, got)
	}
}
