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

// Package alfred implements the Alfred script filter item format and the
// files kept in the workflow directory.
package alfred

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Mod is an alternative action shown when a modifier key is held.
type Mod struct {
	Arg      string `json:"arg"`
	Subtitle string `json:"subtitle"`
}

// Mods are the modifier key actions of an item.
type Mods struct {
	Cmd *Mod `json:"cmd,omitempty"`
}

// Item is a script filter result.
type Item struct {
	Title        string `json:"title"`
	Arg          string `json:"arg"`
	Subtitle     string `json:"subtitle,omitempty"`
	QuickLookURL string `json:"quicklookurl,omitempty"`
	Mods         *Mods  `json:"mods,omitempty"`
}

// Items is a script filter result list.
type Items struct {
	Items []*Item `json:"items"`
}

// Write writes the items as indented JSON.
func (i *Items) Write(w io.Writer) error {
	items := i
	if items.Items == nil {
		// Alfred expects a list even when there are no results.
		items = &Items{Items: []*Item{}}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}
	return nil
}

// WorkflowDir returns the workflow directory. It is derived from the
// alfred_preferences and alfred_workflow_uid environment variables set by
// Alfred. Otherwise the closest ancestor of the working directory named
// like a workflow directory is returned. The empty string is returned if no
// directory is found.
func WorkflowDir() string {
	prefs := os.Getenv("alfred_preferences")
	uid := os.Getenv("alfred_workflow_uid")
	if prefs != "" && uid != "" {
		return filepath.Join(prefs, "workflows", uid)
	}

	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return inferWorkflowDir(wd)
}

func inferWorkflowDir(dir string) string {
	for {
		if strings.HasPrefix(filepath.Base(dir), "user.workflow.") {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
