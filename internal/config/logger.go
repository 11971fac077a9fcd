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

package config

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Prepare returns the program logger and a function that flushes it and
// closes the log file. Console output goes to w, which should not be stdout
// as stdout carries Alfred results.
func (c *LogConfig) Prepare(w io.Writer) (*zap.Logger, func() error, error) {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(ec)

	out := zapcore.Lock(zapcore.AddSync(w))

	var consoleCore zapcore.Core
	switch c.Level {
	case "normal":
		consoleCore = zapcore.NewCore(consoleEncoder, out, zapcore.InfoLevel)
	case "debug":
		consoleCore = zapcore.NewCore(consoleEncoder, out, zapcore.DebugLevel)
	default:
		consoleCore = zapcore.NewNopCore()
	}

	fileCore := zapcore.NewNopCore()
	var f *os.File
	if c.File != "" {
		var err error
		f, err = os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // log file.
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %q: %w", c.File, err)
		}
		fileCore = zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(f),
			zapcore.DebugLevel,
		)
	}

	log := zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller())
	closeLog := func() error {
		// Syncing a terminal fails on some platforms.
		_ = log.Sync()
		if f == nil {
			return nil
		}
		return f.Close()
	}
	return log, closeLog, nil
}
