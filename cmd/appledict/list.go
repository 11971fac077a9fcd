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

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-appledict/alfred"
	"github.com/ianlewis/go-appledict/importer"
)

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "list dictionaries that have not been imported",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Usage:   "output `FORMAT` (alfred or table)",
			Aliases: []string{"f"},
			Value:   "alfred",
		},
		&cli.BoolFlag{
			Name:    "all",
			Usage:   "include imported dictionaries",
			Aliases: []string{"a"},
		},
	},
	Action: func(c *cli.Context) error {
		e, err := loadEnv(c)
		if err != nil {
			return err
		}
		defer e.close()

		dir, err := e.baseDir(c)
		if err != nil {
			return err
		}
		reg, err := alfred.LoadRegistry(dir)
		if err != nil {
			return err
		}

		exclude := reg
		if c.Bool("all") {
			exclude = nil
		}
		items := importer.Unimported(e.openDicts(c), exclude)

		switch f := c.String("format"); f {
		case "alfred":
			return items.Write(c.App.Writer)
		case "table":
			tbl := table.New("Name", "Imported", "Path").WithWriter(c.App.Writer)
			for _, i := range items.Items {
				imported := ""
				if reg.Contains(i.Title) {
					imported = "yes"
				}
				tbl.AddRow(i.Title, imported, i.Arg)
			}
			tbl.Print()
			return nil
		default:
			return fmt.Errorf("%w: unknown format %q", ErrFlagParse, f)
		}
	},
}
