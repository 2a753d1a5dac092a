// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"encoding/json"
	"time"
)

// Task kinds.
const (
	KindClone   = "clone"
	KindReplace = "replace"
)

// Task states.
const (
	StateRunning  = "running"
	StateSuccess  = "success"
	StateFailed   = "failed"
	StateCanceled = "canceled"
)

// Task is a background clone or replace operation tracked by the server.
type Task struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Subject string `json:"subject"` // Repo URL for clones, search text for replaces
	State   string `json:"state"`

	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
	Duration   time.Duration `json:"duration"`

	// Command is the command line launched in a terminal, if any.
	Command      string `json:"command,omitempty"`
	Pid          int    `json:"pid,omitempty"`
	ProcessAlive bool   `json:"process_alive"`

	Error string `json:"error,omitempty"`

	// Result holds engine-specific output: the clone destination for native
	// clones, a replace summary for native replaces.
	Result json.RawMessage `json:"result,omitempty"`

	Output    []string `json:"output,omitempty"`
	Truncated bool     `json:"truncated,omitempty"`
}

// Done reports whether the task has finished.
func (t *Task) Done() bool {
	return t.State == StateSuccess || t.State == StateFailed || t.State == StateCanceled
}

// ReplaceResult is the Result of a task run by the native replace engine.
type ReplaceResult struct {
	FilesScanned int `json:"files_scanned"`
	FilesSkipped int `json:"files_skipped"`
	FilesChanged int `json:"files_changed"`
	Replacements int `json:"replacements"`
	Changed      []struct {
		Path         string `json:"path"`
		Replacements int    `json:"replacements"`
	} `json:"changed,omitempty"`
}

// ReplaceResult decodes the task result as a native replace summary.
func (t *Task) ReplaceResult() (*ReplaceResult, error) {
	var res ReplaceResult
	if len(t.Result) == 0 {
		return &res, nil
	}
	if err := json.Unmarshal(t.Result, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// StatusResponse is the reply of the clone and replace form endpoints.
type StatusResponse struct {
	Status   string   `json:"status"` // "success" or "error"
	Message  string   `json:"message,omitempty"`
	TaskID   string   `json:"task_id,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ClonePath describes the most recently cloned repository.
type ClonePath struct {
	Path string `json:"path"`
	File string `json:"file"`
}

// Event is an entry from the server's event history.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Repo      string                 `json:"repo,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
