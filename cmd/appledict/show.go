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
	"fmt"
	"strings"

	"github.com/k3a/html2text"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var showCommand = &cli.Command{
	Name:      "show",
	Usage:     "show definitions of a word",
	ArgsUsage: "WORD",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "dict",
			Usage:   "only search the dictionary named `NAME`",
			Aliases: []string{"n"},
		},
		&cli.BoolFlag{
			Name:    "prefix",
			Usage:   "list headwords starting with WORD instead",
			Aliases: []string{"p"},
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return fmt.Errorf("%w: missing word", ErrFlagParse)
		}
		query := strings.Join(c.Args().Slice(), " ")

		e, err := loadEnv(c)
		if err != nil {
			return err
		}
		defer e.close()

		w := c.App.Writer
		name := c.String("dict")
		for _, d := range e.openDicts(c) {
			if name != "" && d.Name() != name {
				continue
			}

			search := d.Search
			if c.Bool("prefix") {
				search = d.Prefix
			}
			entries, err := search(query)
			if err != nil {
				e.log.Warn("Searching dictionary", zap.String("dictionary", d.Name()), zap.Error(err))
				continue
			}
			if len(entries) == 0 {
				continue
			}

			fmt.Fprintln(w, d.Name())
			fmt.Fprintln(w)
			if c.Bool("prefix") {
				for _, entry := range entries {
					fmt.Fprintln(w, entry.Word)
				}
				fmt.Fprintln(w)
				continue
			}
			for _, entry := range entries {
				for _, def := range entry.Definitions {
					fmt.Fprintln(w, html2text.HTML2Text(def))
					fmt.Fprintln(w)
				}
			}
		}
		return nil
	},
}
