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
	"errors"
	"fmt"
	"slices"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrInvalid indicates an invalid configuration value.
var ErrInvalid = errors.New("invalid configuration")

var logLevels = []string{"none", "normal", "debug"}

// Load reads the configuration. Values are taken from the environment, then
// the YAML file at path if path is not empty, then defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be expressed by struct tags.
func (c *Config) Validate() error {
	if c.Search.Port <= 0 || c.Search.Port > 65535 {
		return fmt.Errorf("%w: search port %d", ErrInvalid, c.Search.Port)
	}
	if c.Search.PayloadLimit <= 0 {
		return fmt.Errorf("%w: payload limit %d", ErrInvalid, c.Search.PayloadLimit)
	}
	if c.Import.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency %d", ErrInvalid, c.Import.Concurrency)
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("%w: log level %q, want one of %v", ErrInvalid, c.Log.Level, logLevels)
	}
	return nil
}
