// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package task tracks background operations so callers can poll or stream
// their outcome instead of firing and forgetting.
package task

import (
	"context"
	"errors"
	"time"
)

// Kind identifies what a task does.
type Kind string

const (
	KindClone   Kind = "clone"
	KindReplace Kind = "replace"
)

// State represents the lifecycle state of a task.
type State string

const (
	StateRunning  State = "running"
	StateSuccess  State = "success"
	StateFailed   State = "failed"
	StateCanceled State = "canceled"
)

// Done reports whether the state is terminal.
func (s State) Done() bool {
	return s == StateSuccess || s == StateFailed || s == StateCanceled
}

// Errors returned by the manager.
var (
	ErrNotFound = errors.New("task not found")
	ErrClosed   = errors.New("task manager is closed")
)

// Status is a point-in-time snapshot of a task.
type Status struct {
	ID           string        `json:"id"`
	Kind         Kind          `json:"kind"`
	Subject      string        `json:"subject"` // Repo URL for clones, search text for replaces
	State        State         `json:"state"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at,omitempty"`
	Duration     time.Duration `json:"duration"`
	Command      string        `json:"command,omitempty"`
	Pid          int           `json:"pid,omitempty"`
	ProcessAlive bool          `json:"process_alive"`
	Error        string        `json:"error,omitempty"`
	Result       interface{}   `json:"result,omitempty"`
	Output       []string      `json:"output,omitempty"`
	Truncated    bool          `json:"truncated,omitempty"` // Older output lines were dropped
}

// Update is delivered to subscribers as a task produces output or finishes.
type Update struct {
	TaskID string  `json:"task_id"`
	Line   string  `json:"line,omitempty"`
	Done   bool    `json:"done"`
	Status *Status `json:"status,omitempty"` // Final status, only set when Done
}

// Func is the work a task performs. Output written to h shows up in the
// task's output; a returned error marks the task failed.
type Func func(ctx context.Context, h *Handle) error

// Config configures a Manager.
type Config struct {
	Retention      time.Duration // How long finished tasks stay queryable
	MaxOutputLines int           // Output lines kept per task
}
