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

// Package search implements a client for a Meilisearch compatible search
// engine and starting a local engine process.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

var (
	// ErrEngineUnavailable indicates that the search engine could not be
	// reached or started.
	ErrEngineUnavailable = errors.New("search engine unavailable")

	// ErrTaskFailed indicates that an engine task ended in failure.
	ErrTaskFailed = errors.New("task failed")

	// ErrTaskTimeout indicates that an engine task did not settle in time.
	ErrTaskTimeout = errors.New("timed out waiting for task")
)

// codeIndexAlreadyExists is the engine error code for duplicate indexes.
const codeIndexAlreadyExists = "index_already_exists"

// APIError is an error response from the engine.
type APIError struct {
	// StatusCode is the HTTP status code. It is zero for task errors.
	StatusCode int `json:"-"`

	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}

// Error implements [error.Error].
func (e *APIError) Error() string {
	var b strings.Builder
	if e.StatusCode != 0 {
		b.WriteString(strconv.Itoa(e.StatusCode))
		b.WriteString(" ")
	}
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Settings are index settings.
type Settings struct {
	// SearchableAttributes are the fields searched in order of importance.
	SearchableAttributes []string `json:"searchableAttributes,omitempty"`

	// DisplayedAttributes are the fields returned in results.
	DisplayedAttributes []string `json:"displayedAttributes,omitempty"`

	// RankingRules are the ranking tie breakers in order.
	RankingRules []string `json:"rankingRules,omitempty"`
}

// DefaultSettings are the settings for dictionary indexes. Every field
// except id and fulltext is displayed.
var DefaultSettings = &Settings{
	SearchableAttributes: []string{"title", "forms", "subtitle", "fulltext"},
	DisplayedAttributes:  []string{"arg", "mods", "title", "subtitle", "quicklookurl"},
	RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
}

func (s *Settings) engineSettings() *meilisearch.Settings {
	return &meilisearch.Settings{
		SearchableAttributes: s.SearchableAttributes,
		DisplayedAttributes:  s.DisplayedAttributes,
		RankingRules:         s.RankingRules,
	}
}

// TaskStatus is the state of an engine task.
type TaskStatus string

// Task states. Succeeded, failed and canceled are terminal.
const (
	TaskEnqueued   TaskStatus = "enqueued"
	TaskProcessing TaskStatus = "processing"
	TaskSucceeded  TaskStatus = "succeeded"
	TaskFailed     TaskStatus = "failed"
	TaskCanceled   TaskStatus = "canceled"
)

// Task is an asynchronous engine task.
type Task struct {
	UID      int64      `json:"taskUid"`
	IndexUID string     `json:"indexUid"`
	Status   TaskStatus `json:"status"`
	Type     string     `json:"type"`
}

func newTask(info *meilisearch.TaskInfo) *Task {
	return &Task{
		UID:      info.TaskUID,
		IndexUID: info.IndexUID,
		Status:   TaskStatus(info.Status),
		Type:     string(info.Type),
	}
}

// taskError returns the engine error of a settled task or nil.
func taskError(t *meilisearch.Task) *APIError {
	if t.Error.Code == "" && t.Error.Message == "" {
		return nil
	}
	return &APIError{
		Message: t.Error.Message,
		Code:    t.Error.Code,
		Type:    t.Error.Type,
		Link:    t.Error.Link,
	}
}

// Ticker shows that a wait is ongoing.
type Ticker interface {
	Tick(message string) error
}

// WaitOptions are options for waiting on a task.
type WaitOptions struct {
	// Interval is the time between status checks.
	Interval time.Duration

	// Timeout is the maximum time to wait. Zero means no limit.
	Timeout time.Duration

	// Progress is ticked after each status check.
	Progress Ticker
}

// DefaultWaitOptions are used when nil WaitOptions are given.
var DefaultWaitOptions = &WaitOptions{
	Interval: 2 * time.Second,
	Timeout:  time.Hour,
}

// settingsWait is used for short administrative tasks.
var settingsWait = &WaitOptions{
	Interval: 50 * time.Millisecond,
	Timeout:  time.Minute,
}

// Client is a search engine client.
type Client struct {
	baseURL string
	sm      meilisearch.ServiceManager
	log     *zap.Logger
}

// NewClient returns a client for the engine at baseURL. If httpClient is nil
// the engine library's default client is used.
func NewClient(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	var opts []meilisearch.Option
	if httpClient != nil {
		opts = append(opts, meilisearch.WithCustomClient(httpClient))
	}
	return &Client{
		baseURL: baseURL,
		sm:      meilisearch.New(baseURL, opts...),
		log:     log,
	}
}

// URL returns the engine base URL.
func (c *Client) URL() string {
	return c.baseURL
}

// Healthy returns nil if the engine responds to health checks.
func (c *Client) Healthy(ctx context.Context) error {
	h, err := c.sm.HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngineUnavailable, apiError(err))
	}
	if h.Status != "available" {
		return fmt.Errorf("%w: status %q", ErrEngineUnavailable, h.Status)
	}
	return nil
}

// Index returns a handle for an existing index.
func (c *Client) Index(uid string) *Index {
	return &Index{
		client: c,
		im:     c.sm.Index(uid),
		uid:    uid,
	}
}

// CreateIndex creates the index uid with the primary key "id". Settings
// are applied only if the index is created. An existing index is returned
// as-is.
func (c *Client) CreateIndex(ctx context.Context, uid string, settings *Settings) (*Index, error) {
	info, err := c.sm.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
		Uid:        uid,
		PrimaryKey: "id",
	})
	if err != nil {
		err = apiError(err)
	} else {
		err = c.settle(ctx, info.TaskUID)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == codeIndexAlreadyExists {
		c.log.Debug("Index exists", zap.String("index", uid))
		return c.Index(uid), nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating index %q: %w", uid, err)
	}

	c.log.Debug("Created index", zap.String("index", uid))
	idx := c.Index(uid)
	if settings != nil {
		if err := idx.Configure(ctx, settings); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// settle waits for a short administrative task. A failed task returns
// ErrTaskFailed wrapping the engine's error.
func (c *Client) settle(ctx context.Context, taskUID int64) error {
	ctx, cancel := context.WithTimeout(ctx, settingsWait.Timeout)
	defer cancel()

	t, err := c.sm.WaitForTaskWithContext(ctx, taskUID, settingsWait.Interval)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: task %d", ErrTaskTimeout, taskUID)
		}
		return fmt.Errorf("waiting for task %d: %w", taskUID, apiError(err))
	}
	return settled(t, taskUID)
}

// task returns the current state of a task.
func (c *Client) task(ctx context.Context, taskUID int64) (*meilisearch.Task, error) {
	t, err := c.sm.GetTaskWithContext(ctx, taskUID)
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", taskUID, apiError(err))
	}
	return t, nil
}

// settled returns nil for a succeeded task and ErrTaskFailed for a failed or
// canceled one.
func settled(t *meilisearch.Task, taskUID int64) error {
	status := TaskStatus(t.Status)
	switch status {
	case TaskSucceeded:
		return nil
	case TaskFailed, TaskCanceled:
		if apiErr := taskError(t); apiErr != nil {
			return fmt.Errorf("%w: task %d %s: %w", ErrTaskFailed, taskUID, status, apiErr)
		}
		return fmt.Errorf("%w: task %d %s", ErrTaskFailed, taskUID, status)
	default:
		return fmt.Errorf("task %d not settled: %s", taskUID, status)
	}
}

// apiError converts an engine library error response into an *APIError.
// Other errors are returned as-is.
func apiError(err error) error {
	var me *meilisearch.Error
	if !errors.As(err, &me) || me.MeilisearchApiError.Code == "" && me.MeilisearchApiError.Message == "" {
		return err
	}
	return &APIError{
		StatusCode: me.StatusCode,
		Message:    me.MeilisearchApiError.Message,
		Code:       me.MeilisearchApiError.Code,
		Type:       me.MeilisearchApiError.Type,
		Link:       me.MeilisearchApiError.Link,
	}
}
