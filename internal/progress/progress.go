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

// Package progress implements progress bars using the cocoaDialog progressbar
// line protocol. Each update is a line of the form "<percent> <message>".
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Bar is a progress bar with a known end.
type Bar interface {
	// Update sets the completed percentage and message.
	Update(percent float64, message string) error

	// Close removes the progress bar.
	Close() error
}

// Indefinite is a progress bar with an unknown end.
type Indefinite interface {
	// Tick shows that work is still ongoing.
	Tick(message string) error

	// Close removes the progress bar.
	Close() error
}

// LineBar writes determinate progress lines with an estimated time
// remaining.
type LineBar struct {
	mu    sync.Mutex
	w     io.Writer
	c     io.Closer
	now   func() time.Time
	start time.Time
}

// NewLineBar returns a new LineBar writing to w. If now is nil time.Now is
// used.
func NewLineBar(w io.Writer, now func() time.Time) *LineBar {
	if now == nil {
		now = time.Now
	}
	return &LineBar{
		w:     w,
		now:   now,
		start: now(),
	}
}

// Update implements [Bar.Update].
func (b *LineBar) Update(percent float64, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := b.now().Sub(b.start)
	var remaining time.Duration
	if percent > 0 {
		remaining = time.Duration(float64(elapsed)*100/percent) - elapsed
	}
	if _, err := fmt.Fprintf(b.w, "%d [ETA %s] %s\n", int(percent), clock(remaining), message); err != nil {
		return fmt.Errorf("updating progress: %w", err)
	}
	return nil
}

// Close implements [Bar.Close].
func (b *LineBar) Close() error {
	if b.c == nil {
		return nil
	}
	return b.c.Close()
}

// LineIndefinite writes indefinite progress lines with the elapsed time.
type LineIndefinite struct {
	mu    sync.Mutex
	w     io.Writer
	c     io.Closer
	now   func() time.Time
	start time.Time
}

// NewLineIndefinite returns a new LineIndefinite writing to w. If now is nil
// time.Now is used.
func NewLineIndefinite(w io.Writer, now func() time.Time) *LineIndefinite {
	if now == nil {
		now = time.Now
	}
	return &LineIndefinite{
		w:     w,
		now:   now,
		start: now(),
	}
}

// Tick implements [Indefinite.Tick].
func (b *LineIndefinite) Tick(message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := fmt.Fprintf(b.w, "0 [Elapsed %s] %s\n", clock(b.now().Sub(b.start)), message); err != nil {
		return fmt.Errorf("updating progress: %w", err)
	}
	return nil
}

// Close implements [Indefinite.Close].
func (b *LineIndefinite) Close() error {
	if b.c == nil {
		return nil
	}
	return b.c.Close()
}

// Nop is a progress bar that shows nothing.
type Nop struct{}

// Update implements [Bar.Update].
func (Nop) Update(float64, string) error { return nil }

// Tick implements [Indefinite.Tick].
func (Nop) Tick(string) error { return nil }

// Close implements [Bar.Close] and [Indefinite.Close].
func (Nop) Close() error { return nil }

// clock formats d as mm:ss. Minutes are not wrapped.
func clock(d time.Duration) string {
	s := int(d / time.Second)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
