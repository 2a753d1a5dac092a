// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// TaskClient provides access to background tasks.
//
// Access this client through [Client.Tasks].
type TaskClient struct {
	c *Client
}

// List returns tracked tasks, newest first. kind filters by task kind
// ("clone" or "replace"); empty means all.
func (t *TaskClient) List(ctx context.Context, kind string) ([]Task, error) {
	path := "/api/v1/tasks"
	if kind != "" {
		path += "?kind=" + url.QueryEscape(kind)
	}

	data, err := t.c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// Get returns a task with its output. A positive wait makes the server
// hold the request until the task finishes or wait elapses.
func (t *TaskClient) Get(ctx context.Context, id string, wait time.Duration) (*Task, error) {
	path := "/api/v1/tasks/" + url.PathEscape(id)
	if wait > 0 {
		path += "?wait=" + url.QueryEscape(wait.String())
	}

	data, err := t.c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	return &task, nil
}

// Wait polls until the task finishes or ctx is done.
func (t *TaskClient) Wait(ctx context.Context, id string) (*Task, error) {
	for {
		task, err := t.Get(ctx, id, 30*time.Second)
		if err != nil {
			return nil, err
		}
		if task.Done() {
			return task, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// Cancel cancels a running task.
func (t *TaskClient) Cancel(ctx context.Context, id string) error {
	_, err := t.c.post(ctx, "/api/v1/tasks/"+url.PathEscape(id)+"/cancel")
	return err
}
