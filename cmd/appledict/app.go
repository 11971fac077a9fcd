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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ianlewis/go-appledict"
	"github.com/ianlewis/go-appledict/alfred"
	"github.com/ianlewis/go-appledict/internal/config"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrAppleDict is a parent error for all command errors.
var ErrAppleDict = errors.New("appledict")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrAppleDict)

// ErrNoBaseDir indicates that no import base directory could be found.
var ErrNoBaseDir = fmt.Errorf("%w: no base directory; set --base-dir or run inside a workflow", ErrAppleDict)

var copyrightNames = []string{
	"2025 Ian Lewis",
}

//nolint:gochecknoinits // init needed for global variable.
func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli` handles
	// the flag with the root command such that it takes a command name argument
	// but we don't use commands.
	//
	// This is done because `appledict --help foo` will display a
	// "command foo not found" error instead of the help.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		// NOTE: Use a random name no one would guess.
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// env is the configuration shared by commands.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error
	errw     io.Writer
}

// loadEnv loads the configuration and logger for a command.
func loadEnv(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	log, closeLog, err := cfg.Log.Prepare(c.App.ErrWriter)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:      cfg,
		log:      log.Named(c.App.Name),
		closeLog: closeLog,
		errw:     c.App.ErrWriter,
	}, nil
}

// close flushes the logger and closes the log file.
func (e *env) close() {
	if err := e.closeLog(); err != nil {
		fmt.Fprintf(e.errw, "closing log: %v\n", err)
	}
}

// baseDir returns the import base directory.
func (e *env) baseDir(c *cli.Context) (string, error) {
	if dir := c.String("base-dir"); dir != "" {
		return dir, nil
	}
	if e.cfg.Import.BaseDir != "" {
		return e.cfg.Import.BaseDir, nil
	}
	if dir := alfred.WorkflowDir(); dir != "" {
		return dir, nil
	}
	return "", ErrNoBaseDir
}

// openDicts opens the dictionaries in the dictionary directories. Errors
// for individual dictionaries are logged.
func (e *env) openDicts(c *cli.Context) []*appledict.Dictionary {
	dicts, errs := appledict.OpenAll(&appledict.Options{Logger: e.log}, c.StringSlice("dict-dir")...)
	for _, err := range errs {
		e.log.Warn("Opening dictionary", zap.Error(err))
	}
	return dicts
}

func newAppleDictApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Import Apple dictionaries for instant search.",
		Description: strings.Join([]string{
			"Apple dictionary importer written in Go.",
			"http://github.com/ianlewis/go-appledict",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "dict-dir",
				Usage:   "include dictionaries in `DIR`",
				Aliases: []string{"d"},
				Value:   cli.NewStringSlice(dictLocations()...),
			},
			&cli.StringFlag{
				Name:    "base-dir",
				Usage:   "import dictionaries into `DIR`",
				Aliases: []string{"b"},
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "read configuration from `FILE`",
				Aliases: []string{"c"},
				EnvVars: []string{"APPLEDICT_CONFIG"},
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		HideHelp:        true,
		HideHelpCommand: true,
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return fmt.Errorf("%w: %w", ErrFlagParse, err)
		},
		Action: func(c *cli.Context) error {
			if c.Bool("version") {
				return printVersion(c)
			}

			check(cli.ShowAppHelp(c))
			return nil
		},
		Commands: []*cli.Command{
			listCommand,
			importCommand,
			showCommand,
		},
	}
}
