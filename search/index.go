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
	"time"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

// Index is a search index.
type Index struct {
	client *Client
	im     meilisearch.IndexManager
	uid    string
}

// UID returns the index uid.
func (i *Index) UID() string {
	return i.uid
}

// Configure applies settings to the index and waits for them to take effect.
func (i *Index) Configure(ctx context.Context, settings *Settings) error {
	info, err := i.im.UpdateSettingsWithContext(ctx, settings.engineSettings())
	if err != nil {
		return fmt.Errorf("configuring index %q: %w", i.uid, apiError(err))
	}
	if err := i.client.settle(ctx, info.TaskUID); err != nil {
		return fmt.Errorf("configuring index %q: %w", i.uid, err)
	}
	return nil
}

// Submit adds or replaces documents in one batch. The documents are indexed
// asynchronously; use WaitUntilSettled to wait for the returned task.
func (i *Index) Submit(ctx context.Context, docs any) (*Task, error) {
	info, err := i.im.AddDocumentsWithContext(ctx, docs, "id")
	if err != nil {
		return nil, fmt.Errorf("submitting documents to %q: %w", i.uid, apiError(err))
	}
	task := newTask(info)
	i.client.log.Debug("Submitted documents",
		zap.String("index", i.uid),
		zap.Int64("task", task.UID))
	return task, nil
}

// WaitUntilSettled polls the task until it succeeds, fails or the timeout
// expires. A failed or canceled task returns ErrTaskFailed wrapping the
// engine's error.
func (i *Index) WaitUntilSettled(ctx context.Context, task *Task, opts *WaitOptions) error {
	if opts == nil {
		opts = DefaultWaitOptions
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultWaitOptions.Interval
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	for {
		t, err := i.client.task(ctx, task.UID)
		if err != nil {
			if ctx.Err() != nil {
				return i.waitErr(ctx, task, start)
			}
			return err
		}

		switch TaskStatus(t.Status) {
		case TaskSucceeded:
			i.client.log.Debug("Task succeeded",
				zap.Int64("task", task.UID),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		case TaskFailed, TaskCanceled:
			return settled(t, task.UID)
		}

		if opts.Progress != nil {
			if err := opts.Progress.Tick(""); err != nil {
				i.client.log.Debug("Updating progress", zap.Error(err))
			}
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return i.waitErr(ctx, task, start)
		}
	}
}

// waitErr returns the error for a wait that ended because ctx is done.
func (i *Index) waitErr(ctx context.Context, task *Task, start time.Time) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: task %d after %s", ErrTaskTimeout, task.UID, time.Since(start).Round(time.Second))
	}
	return ctx.Err()
}
