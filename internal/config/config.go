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

// Package config loads the appledict configuration from an optional YAML
// file and the environment.
package config

import (
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ianlewis/go-appledict/search"
)

// Config is the root configuration.
type Config struct {
	Search SearchConfig `yaml:"search"`
	Import ImportConfig `yaml:"import"`
	Log    LogConfig    `yaml:"log"`
}

// SearchConfig holds search engine settings.
type SearchConfig struct {
	IP            string        `yaml:"ip"             env:"SEARCH_IP"                  env-default:"127.0.0.1"`
	Port          int           `yaml:"port"           env:"SEARCH_PORT"                env-default:"6789"`
	EnginePath    string        `yaml:"engine_path"    env:"APPLEDICT_ENGINE_PATH"`
	PayloadLimit  int64         `yaml:"payload_limit"  env:"APPLEDICT_PAYLOAD_LIMIT"    env-default:"1000000000"`
	ProbeInterval time.Duration `yaml:"probe_interval" env:"APPLEDICT_PROBE_INTERVAL"   env-default:"10ms"`
	StartTimeout  time.Duration `yaml:"start_timeout"  env:"APPLEDICT_START_TIMEOUT"    env-default:"30s"`
	PollInterval  time.Duration `yaml:"poll_interval"  env:"APPLEDICT_POLL_INTERVAL"    env-default:"2s"`
	TaskTimeout   time.Duration `yaml:"task_timeout"   env:"APPLEDICT_TASK_TIMEOUT"     env-default:"1h"`
}

// ImportConfig holds import settings.
type ImportConfig struct {
	// BaseDir is the import base directory. The workflow directory is used
	// when empty.
	BaseDir     string `yaml:"base_dir"    env:"APPLEDICT_BASE_DIR"`
	Concurrency int    `yaml:"concurrency" env:"APPLEDICT_CONCURRENCY" env-default:"5"`
	Stylesheet  string `yaml:"stylesheet"  env:"APPLEDICT_STYLESHEET"`

	// DialogPath is the cocoaDialog binary. Progress is written to stderr
	// when empty.
	DialogPath string `yaml:"dialog_path" env:"APPLEDICT_DIALOG_PATH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of none, normal or debug.
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"normal"`

	// File is an optional log file. It always logs at debug level.
	File string `yaml:"file" env:"LOG_FILE"`
}

// Addr returns the engine listen address.
func (s *SearchConfig) Addr() string {
	return net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// EngineOptions returns the options for starting the engine with its
// database at dbPath.
func (s *SearchConfig) EngineOptions(dbPath string, log *zap.Logger) *search.EngineOptions {
	return &search.EngineOptions{
		Binary:        s.EnginePath,
		DBPath:        dbPath,
		Addr:          s.Addr(),
		PayloadLimit:  s.PayloadLimit,
		ProbeInterval: s.ProbeInterval,
		StartTimeout:  s.StartTimeout,
		Logger:        log,
	}
}

// WaitOptions returns the options for waiting on indexing tasks.
func (s *SearchConfig) WaitOptions() *search.WaitOptions {
	return &search.WaitOptions{
		Interval: s.PollInterval,
		Timeout:  s.TaskTimeout,
	}
}
