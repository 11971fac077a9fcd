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

package pipeline

import "context"

// Accumulator collects pipeline results. Add and Finish are never called
// concurrently.
type Accumulator[R any] interface {
	// Add is called for each successful result.
	Add(result R) error

	// Finish is called once after all results have been added.
	Finish(ctx context.Context) error
}

// NoopAccumulator discards results.
type NoopAccumulator[R any] struct{}

// Add implements [Accumulator.Add].
func (NoopAccumulator[R]) Add(R) error { return nil }

// Finish implements [Accumulator.Finish].
func (NoopAccumulator[R]) Finish(context.Context) error { return nil }

// SliceAccumulator flattens slice results into one slice and passes it to
// OnFinish.
type SliceAccumulator[E any] struct {
	// Items are the accumulated items.
	Items []E

	// OnFinish, if set, is called with all items by Finish.
	OnFinish func(ctx context.Context, items []E) error
}

// Add implements [Accumulator.Add].
func (a *SliceAccumulator[E]) Add(items []E) error {
	a.Items = append(a.Items, items...)
	return nil
}

// Finish implements [Accumulator.Finish].
func (a *SliceAccumulator[E]) Finish(ctx context.Context) error {
	if a.OnFinish == nil {
		return nil
	}
	return a.OnFinish(ctx, a.Items)
}
