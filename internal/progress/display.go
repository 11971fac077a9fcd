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

package progress

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Display creates progress bars. A nil Display creates bars that show
// nothing.
type Display struct {
	// DialogPath is the path to the cocoaDialog binary. When empty progress
	// lines are written to Out instead.
	DialogPath string

	// Out receives progress lines when DialogPath is empty. Nothing is shown
	// when Out is nil.
	Out io.Writer

	// Logger logs progress bar lifecycle events.
	Logger *zap.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Bar returns a new progress bar with the given title.
func (d *Display) Bar(title string) (Bar, error) {
	if d == nil || (d.DialogPath == "" && d.Out == nil) {
		return Nop{}, nil
	}
	if d.DialogPath == "" {
		fmt.Fprintln(d.Out, title)
		return NewLineBar(d.Out, d.Now), nil
	}

	p, err := d.start(title, "--percent", "0.01")
	if err != nil {
		return nil, err
	}
	b := NewLineBar(p.stdin, d.Now)
	b.c = p
	return b, nil
}

// Indefinite returns a new indefinite progress bar with the given title.
func (d *Display) Indefinite(title string) (Indefinite, error) {
	if d == nil || (d.DialogPath == "" && d.Out == nil) {
		return Nop{}, nil
	}
	if d.DialogPath == "" {
		fmt.Fprintln(d.Out, title)
		return NewLineIndefinite(d.Out, d.Now), nil
	}

	p, err := d.start(title, "--indeterminate")
	if err != nil {
		return nil, err
	}
	b := NewLineIndefinite(p.stdin, d.Now)
	b.c = p
	return b, nil
}

// dialog is a running cocoaDialog progressbar process.
type dialog struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	log   *zap.Logger
}

func (d *Display) start(title string, args ...string) (*dialog, error) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	args = append([]string{"progressbar", "--title", title, "--text", ""}, args...)
	cmd := exec.Command(d.DialogPath, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("starting progress dialog: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting progress dialog: %w", err)
	}
	log.Debug("Started progress dialog",
		zap.String("title", title),
		zap.Int("pid", cmd.Process.Pid))

	return &dialog{
		cmd:   cmd,
		stdin: stdin,
		log:   log,
	}, nil
}

// Close kills the dialog. The dialog does not exit on its own.
func (p *dialog) Close() error {
	err := p.stdin.Close()
	if kerr := p.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
		err = multierr.Append(err, kerr)
	}
	// Wait reports the kill signal as an error.
	_ = p.cmd.Wait()
	p.log.Debug("Stopped progress dialog", zap.Int("pid", p.cmd.Process.Pid))
	if err != nil {
		return fmt.Errorf("closing progress dialog: %w", err)
	}
	return nil
}
