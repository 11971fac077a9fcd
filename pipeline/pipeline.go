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

// Package pipeline implements a bounded worker pool that reports progress as
// results arrive and hands every result to an accumulator.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of workers used when none is given.
const DefaultConcurrency = 5

// ErrWorker indicates that a worker failed to process an item.
var ErrWorker = errors.New("pipeline worker")

// Policy determines what happens when a worker fails.
type Policy int

const (
	// FailFast stops the run at the first worker error. Items not yet
	// started are not processed and the accumulator is not finished.
	FailFast Policy = iota

	// CollectAll processes every item. Failed items are not added to the
	// accumulator and all errors are returned together. The accumulator is
	// only finished if no item failed.
	CollectAll
)

// Progress receives progress updates. It is satisfied by progress bars.
type Progress interface {
	Update(percent float64, message string) error
}

// Pipeline processes items of type T into results of type R.
type Pipeline[T, R any] struct {
	// Work processes a single item. It is called concurrently.
	Work func(ctx context.Context, item T) (R, error)

	// Label returns the progress message for an item.
	Label func(item T) string

	// Accumulator receives results in the order they complete. Defaults to
	// NoopAccumulator.
	Accumulator Accumulator[R]

	// Progress receives an update for each completed item.
	Progress Progress

	// Concurrency is the number of workers. Defaults to DefaultConcurrency.
	Concurrency int

	// Policy is the worker error policy.
	Policy Policy

	// Logger logs failed items and progress errors.
	Logger *zap.Logger
}

// result is a completed item.
type result[R any] struct {
	label string
	value R
	err   error
}

// Run processes all items and blocks until every result has been handled.
// Add is called once for each successful item from a single goroutine and
// Finish is called once after all results are in.
func (p *Pipeline[T, R]) Run(ctx context.Context, items []T) error {
	acc := p.Accumulator
	if acc == nil {
		acc = NoopAccumulator[R]{}
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	label := p.Label
	if label == nil {
		label = func(T) string { return "" }
	}
	n := p.Concurrency
	if n <= 0 {
		n = DefaultConcurrency
	}

	if len(items) == 0 {
		return acc.Finish(ctx)
	}
	n = min(n, len(items))

	g, gctx := errgroup.WithContext(ctx)
	work := make(chan T)
	results := make(chan *result[R])

	// Feed items to the workers.
	g.Go(func() error {
		defer close(work)
		for _, item := range items {
			select {
			case work <- item:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	// Each worker processes items until the work channel is closed.
	for range n {
		g.Go(func() error {
			for item := range work {
				v, err := p.Work(gctx, item)
				r := &result[R]{label: label(item), value: v}
				if err != nil {
					r.err = fmt.Errorf("%w: %q: %w", ErrWorker, r.label, err)
					if p.Policy == FailFast {
						// Cancels the other workers and the aggregator.
						return r.err
					}
				}
				select {
				case results <- r:
				case <-gctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	// Aggregate results in arrival order.
	var errs error
	g.Go(func() error {
		for i := range items {
			var r *result[R]
			select {
			case r = <-results:
			case <-gctx.Done():
				return nil
			}

			if r.err != nil {
				log.Warn("Item failed", zap.String("item", r.label), zap.Error(r.err))
				errs = multierr.Append(errs, r.err)
			} else if err := acc.Add(r.value); err != nil {
				return fmt.Errorf("adding %q: %w", r.label, err)
			}

			if p.Progress != nil {
				percent := float64(i+1) * 100 / float64(len(items))
				if err := p.Progress.Update(percent, r.label); err != nil {
					log.Debug("Updating progress", zap.Error(err))
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	// A canceled parent context stops the run without a worker error.
	if err := ctx.Err(); err != nil {
		return err
	}
	if errs != nil {
		return errs
	}
	return acc.Finish(ctx)
}
