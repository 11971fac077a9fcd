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

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-appledict/importer"
	"github.com/ianlewis/go-appledict/internal/progress"
	"github.com/ianlewis/go-appledict/pipeline"
)

var importCommand = &cli.Command{
	Name:      "import",
	Usage:     "import a dictionary for instant search",
	ArgsUsage: "DICTIONARY",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "concurrency",
			Usage:   "use `N` workers (default from configuration)",
			Aliases: []string{"j"},
		},
		&cli.BoolFlag{
			Name:  "keep-going",
			Usage: "process every word even if some fail",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("%w: expected one dictionary, got %d arguments", ErrFlagParse, c.NArg())
		}

		e, err := loadEnv(c)
		if err != nil {
			return err
		}
		defer e.close()

		base, err := e.baseDir(c)
		if err != nil {
			return err
		}

		concurrency := e.cfg.Import.Concurrency
		if n := c.Int("concurrency"); n > 0 {
			concurrency = n
		}
		policy := pipeline.FailFast
		if c.Bool("keep-going") {
			policy = pipeline.CollectAll
		}

		res, err := importer.Import(c.Context, c.Args().First(), &importer.Options{
			BaseDir:     base,
			Stylesheet:  e.cfg.Import.Stylesheet,
			OpenIndex:   importer.EngineIndexOpener(e.cfg.Search.EngineOptions(importer.DBPath(base), e.log)),
			Concurrency: concurrency,
			Policy:      policy,
			Wait:        e.cfg.Search.WaitOptions(),
			Progress: &progress.Display{
				DialogPath: e.cfg.Import.DialogPath,
				Out:        c.App.ErrWriter,
				Logger:     e.log,
			},
			Logger: e.log,
		})
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(c.App.Writer, "Imported %s (%s): %d words, %d definitions\n",
			res.Name, res.ID, res.Words, res.Documents)
		return err
	},
}
