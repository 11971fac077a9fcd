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

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// EngineOptions are options for starting a local engine.
type EngineOptions struct {
	// Binary is the path to the engine executable.
	Binary string

	// DBPath is the engine database directory. The engine log is written
	// to DBPath + ".log".
	DBPath string

	// Addr is the host:port the engine listens on.
	Addr string

	// PayloadLimit is the maximum request size in bytes.
	PayloadLimit int64

	// ProbeInterval is the time between liveness checks while starting.
	ProbeInterval time.Duration

	// StartTimeout is the maximum time to wait for the engine to start. It
	// also bounds the check for an already running engine. A started engine
	// that is not live in time is killed.
	StartTimeout time.Duration

	// HTTPClient is used for engine requests.
	HTTPClient *http.Client

	// Logger logs engine lifecycle events.
	Logger *zap.Logger
}

// DefaultEngineOptions holds the defaults for unset EngineOptions fields.
var DefaultEngineOptions = &EngineOptions{
	Addr:          "127.0.0.1:6789",
	PayloadLimit:  1_000_000_000,
	ProbeInterval: 10 * time.Millisecond,
	StartTimeout:  30 * time.Second,
}

// errExitedEarly is returned when the engine exits cleanly before it is
// live.
var errExitedEarly = errors.New("exit status 0")

// Engine is a running local engine.
type Engine struct {
	client *Client

	// started is true if this process started the engine.
	started bool
	pid     int
}

// EnsureRunning returns the engine at opts.Addr, starting it if it is not
// already running. The started engine is detached and keeps running after
// this process exits.
func EnsureRunning(ctx context.Context, opts *EngineOptions) (*Engine, error) {
	o := withDefaults(opts)
	client := NewClient("http://"+o.Addr, o.HTTPClient, o.Logger)

	if err := probe(ctx, client, o.StartTimeout); err == nil {
		o.Logger.Debug("Engine already running", zap.String("addr", o.Addr))
		return &Engine{client: client}, nil
	}

	if o.Binary == "" {
		return nil, fmt.Errorf("%w: engine binary not set", ErrEngineUnavailable)
	}
	if o.DBPath == "" {
		return nil, fmt.Errorf("%w: engine database path not set", ErrEngineUnavailable)
	}

	cmd, exited, err := start(o)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	o.Logger.Info("Started engine",
		zap.String("binary", o.Binary),
		zap.String("db", o.DBPath),
		zap.String("addr", o.Addr),
		zap.Int("pid", cmd.Process.Pid))

	ctx, cancel := context.WithTimeout(ctx, o.StartTimeout)
	defer cancel()

	ticker := time.NewTicker(o.ProbeInterval)
	defer ticker.Stop()
	for {
		if err := client.Healthy(ctx); err == nil {
			return &Engine{
				client:  client,
				started: true,
				pid:     cmd.Process.Pid,
			}, nil
		}

		select {
		case err := <-exited:
			return nil, fmt.Errorf("%w: engine exited: %w; see %s", ErrEngineUnavailable, err, logPath(o.DBPath))
		case <-ctx.Done():
			if err := cmd.Process.Kill(); err != nil {
				o.Logger.Debug("Stopping engine", zap.Error(err))
			}
			return nil, fmt.Errorf("%w: engine not live after %s: %w", ErrEngineUnavailable, o.StartTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// probe checks engine health, giving up after timeout.
func probe(ctx context.Context, client *Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Healthy(ctx)
}

// Client returns a client for the engine.
func (e *Engine) Client() *Client {
	return e.client
}

// Started returns true if the engine was started by EnsureRunning.
func (e *Engine) Started() bool {
	return e.started
}

// PID returns the process id of a started engine or zero.
func (e *Engine) PID() int {
	return e.pid
}

func withDefaults(opts *EngineOptions) *EngineOptions {
	o := EngineOptions{}
	if opts != nil {
		o = *opts
	}
	if o.Addr == "" {
		o.Addr = DefaultEngineOptions.Addr
	}
	if o.PayloadLimit <= 0 {
		o.PayloadLimit = DefaultEngineOptions.PayloadLimit
	}
	if o.ProbeInterval <= 0 {
		o.ProbeInterval = DefaultEngineOptions.ProbeInterval
	}
	if o.StartTimeout <= 0 {
		o.StartTimeout = DefaultEngineOptions.StartTimeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return &o
}

func logPath(dbPath string) string {
	return dbPath + ".log"
}

// start starts the engine process. The returned channel receives the
// result of waiting on the process if it exits.
func start(o *EngineOptions) (*exec.Cmd, <-chan error, error) {
	if err := os.MkdirAll(filepath.Dir(o.DBPath), 0o755); err != nil { //nolint:gosec // shared with the engine.
		return nil, nil, fmt.Errorf("creating database directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath(o.DBPath), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // engine log.
	if err != nil {
		return nil, nil, fmt.Errorf("opening engine log: %w", err)
	}
	// The child has its own copy of the descriptor.
	defer logFile.Close()

	//nolint:gosec // the binary is configured by the user.
	cmd := exec.Command(o.Binary,
		"--db-path", o.DBPath,
		"--http-addr", o.Addr,
		"--http-payload-size-limit", strconv.FormatInt(o.PayloadLimit, 10),
	)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = detached()

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting engine: %w", err)
	}

	exited := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		if err == nil {
			err = errExitedEarly
		}
		exited <- err
	}()
	return cmd, exited, nil
}
