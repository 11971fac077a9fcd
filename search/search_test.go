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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine is an in-memory engine implementing the endpoints used by
// Client.
type fakeEngine struct {
	mu sync.Mutex

	// polls is the number of status checks before a task settles.
	polls int
	// fail makes document tasks fail.
	fail bool

	indexes  map[string]*Settings
	docs     map[string][]map[string]any
	tasks    map[int64]*fakeTask
	nextTask int64

	// requests counts requests by "METHOD path".
	requests map[string]int
}

type fakeTask struct {
	status TaskStatus
	polls  int
	err    *APIError
}

func newFakeEngine(t *testing.T) (*fakeEngine, *httptest.Server) {
	t.Helper()

	e := &fakeEngine{
		indexes:  map[string]*Settings{},
		docs:     map[string][]map[string]any{},
		tasks:    map[int64]*fakeTask{},
		requests: map[string]int{},
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return e, srv
}

func (e *fakeEngine) count(key string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requests[key]
}

func (e *fakeEngine) settings(uid string) *Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexes[uid]
}

func (e *fakeEngine) documents(uid string) []map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.docs[uid]
}

func (e *fakeEngine) enqueue(w http.ResponseWriter, uid string, task *fakeTask) {
	e.nextTask++
	e.tasks[e.nextTask] = task
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"taskUid":  e.nextTask,
		"indexUid": uid,
		"status":   TaskEnqueued,
	})
}

func (e *fakeEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests[r.Method+" "+r.URL.Path]++

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		_, _ = w.Write([]byte(`{"status":"available"}`))

	case r.Method == http.MethodPost && r.URL.Path == "/indexes":
		var req struct {
			UID        string `json:"uid"`
			PrimaryKey string `json:"primaryKey"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PrimaryKey != "id" {
			http.Error(w, `{"message":"bad request","code":"bad_request"}`, http.StatusBadRequest)
			return
		}
		task := &fakeTask{status: TaskSucceeded}
		if _, ok := e.indexes[req.UID]; ok {
			task = &fakeTask{
				status: TaskFailed,
				err: &APIError{
					Message: "Index `" + req.UID + "` already exists.",
					Code:    codeIndexAlreadyExists,
				},
			}
		} else {
			e.indexes[req.UID] = &Settings{}
		}
		e.enqueue(w, req.UID, task)

	case r.Method == http.MethodPatch && len(parts) == 3 && parts[0] == "indexes" && parts[2] == "settings":
		var s Settings
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		e.indexes[parts[1]] = &s
		e.enqueue(w, parts[1], &fakeTask{status: TaskSucceeded})

	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "indexes" && parts[2] == "documents":
		if _, ok := e.indexes[parts[1]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Index not found.","code":"index_not_found"}`))
			return
		}
		var docs []map[string]any
		if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		task := &fakeTask{status: TaskSucceeded, polls: e.polls}
		if e.fail {
			task.status = TaskFailed
			task.err = &APIError{Message: "document too large", Code: "payload_too_large"}
		} else {
			e.docs[parts[1]] = append(e.docs[parts[1]], docs...)
		}
		e.enqueue(w, parts[1], task)

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "tasks":
		uid, _ := strconv.ParseInt(parts[1], 10, 64)
		task, ok := e.tasks[uid]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Task not found.","code":"task_not_found"}`))
			return
		}
		status := task.status
		var taskErr *APIError
		if task.polls > 0 {
			task.polls--
			status = TaskProcessing
		} else {
			taskErr = task.err
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"uid":    uid,
			"status": status,
			"error":  taskErr,
		})

	default:
		http.NotFound(w, r)
	}
}

type countingTicker struct {
	ticks int
}

func (c *countingTicker) Tick(string) error {
	c.ticks++
	return nil
}

func TestClient_Healthy(t *testing.T) {
	t.Parallel()

	_, srv := newFakeEngine(t)
	require.NoError(t, NewClient(srv.URL, nil, nil).Healthy(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	require.ErrorIs(t, NewClient(down.URL, nil, nil).Healthy(context.Background()), ErrEngineUnavailable)
}

func TestClient_CreateIndex(t *testing.T) {
	t.Parallel()

	e, srv := newFakeEngine(t)
	c := NewClient(srv.URL, nil, nil)
	ctx := context.Background()

	idx, err := c.CreateIndex(ctx, "com-example-dict", DefaultSettings)
	require.NoError(t, err)
	assert.Equal(t, "com-example-dict", idx.UID())
	assert.Equal(t, DefaultSettings, e.settings("com-example-dict"))
	assert.Equal(t, 1, e.count("PATCH /indexes/com-example-dict/settings"))

	// Creating the index again succeeds and does not reconfigure it.
	idx, err = c.CreateIndex(ctx, "com-example-dict", &Settings{
		SearchableAttributes: []string{"title"},
	})
	require.NoError(t, err)
	assert.Equal(t, "com-example-dict", idx.UID())
	assert.Equal(t, DefaultSettings, e.settings("com-example-dict"))
	assert.Equal(t, 1, e.count("PATCH /indexes/com-example-dict/settings"))
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	// Word forms are searched right after the headword.
	assert.Equal(t, []string{"title", "forms", "subtitle", "fulltext"}, DefaultSettings.SearchableAttributes)
	assert.NotContains(t, DefaultSettings.DisplayedAttributes, "fulltext")
}

func TestIndex_SubmitAndWait(t *testing.T) {
	t.Parallel()

	e, srv := newFakeEngine(t)
	e.polls = 3
	c := NewClient(srv.URL, nil, nil)
	ctx := context.Background()

	idx, err := c.CreateIndex(ctx, "dict", DefaultSettings)
	require.NoError(t, err)

	docs := []map[string]any{
		{"id": "61_0", "title": "a"},
		{"id": "62_0", "title": "b"},
	}
	task, err := idx.Submit(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 1, e.count("POST /indexes/dict/documents"))

	ticker := &countingTicker{}
	err = idx.WaitUntilSettled(ctx, task, &WaitOptions{
		Interval: time.Millisecond,
		Timeout:  10 * time.Second,
		Progress: ticker,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ticker.ticks)
	assert.Len(t, e.documents("dict"), 2)
}

func TestIndex_WaitUntilSettled_failed(t *testing.T) {
	t.Parallel()

	e, srv := newFakeEngine(t)
	e.fail = true
	c := NewClient(srv.URL, nil, nil)
	ctx := context.Background()

	idx, err := c.CreateIndex(ctx, "dict", nil)
	require.NoError(t, err)
	task, err := idx.Submit(ctx, []map[string]any{{"id": "x"}})
	require.NoError(t, err)

	err = idx.WaitUntilSettled(ctx, task, &WaitOptions{Interval: time.Millisecond})
	require.ErrorIs(t, err, ErrTaskFailed)
	assert.Contains(t, err.Error(), "payload_too_large")
}

func TestIndex_WaitUntilSettled_timeout(t *testing.T) {
	t.Parallel()

	e, srv := newFakeEngine(t)
	e.polls = 1 << 30
	c := NewClient(srv.URL, nil, nil)
	ctx := context.Background()

	idx, err := c.CreateIndex(ctx, "dict", nil)
	require.NoError(t, err)
	task, err := idx.Submit(ctx, []map[string]any{{"id": "x"}})
	require.NoError(t, err)

	err = idx.WaitUntilSettled(ctx, task, &WaitOptions{
		Interval: time.Millisecond,
		Timeout:  50 * time.Millisecond,
	})
	require.ErrorIs(t, err, ErrTaskTimeout)
}

func TestIndex_Submit_apiError(t *testing.T) {
	t.Parallel()

	_, srv := newFakeEngine(t)
	c := NewClient(srv.URL, nil, nil)

	_, err := c.Index("missing").Submit(context.Background(), []map[string]any{{"id": "x"}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "index_not_found", apiErr.Code)
}
