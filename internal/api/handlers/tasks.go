// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/wingedpig/repoedit/internal/task"
)

// maxWait caps how long GET /tasks/{id}?wait= blocks.
const maxWait = 60 * time.Second

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	tasks *task.Manager
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks *task.Manager) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List returns all tracked tasks, newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	list := h.tasks.List()

	if kind := r.URL.Query().Get("kind"); kind != "" {
		filtered := list[:0]
		for _, s := range list {
			if string(s.Kind) == kind {
				filtered = append(filtered, s)
			}
		}
		list = filtered
	}

	WriteJSON(w, http.StatusOK, list)
}

// Get returns a single task with its output. With ?wait=<duration> it
// blocks until the task finishes or the duration passes.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if waitStr := r.URL.Query().Get("wait"); waitStr != "" {
		d, err := time.ParseDuration(waitStr)
		if err != nil {
			if secs, convErr := strconv.Atoi(waitStr); convErr == nil {
				d = time.Duration(secs) * time.Second
			} else {
				WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid wait duration")
				return
			}
		}
		if d > maxWait {
			d = maxWait
		}

		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		if _, err := h.tasks.Wait(ctx, id); errors.Is(err, task.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrNotFound, "task not found")
			return
		}
	}

	status, ok := h.tasks.Get(id)
	if !ok {
		WriteError(w, http.StatusNotFound, ErrNotFound, "task not found")
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// Cancel cancels a running task.
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	status, ok := h.tasks.Get(id)
	if !ok {
		WriteError(w, http.StatusNotFound, ErrNotFound, "task not found")
		return
	}
	if status.State.Done() {
		WriteError(w, http.StatusConflict, ErrConflict, "task already finished")
		return
	}
	if err := h.tasks.Cancel(id); err != nil {
		WriteError(w, http.StatusInternalServerError, ErrTaskError, err.Error())
		return
	}

	status, _ = h.tasks.Get(id)
	WriteJSON(w, http.StatusAccepted, status)
}

// Stream handles WebSocket connections for streaming task output.
func (h *TaskHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	status, ok := h.tasks.Get(id)
	if !ok {
		WriteError(w, http.StatusNotFound, ErrNotFound, "task not found")
		return
	}

	stream, err := openStream(w, r)
	if err != nil {
		log.Warn().Err(err).Msg("task stream: upgrade failed")
		return
	}
	defer stream.Close()

	// Replay what has been produced so far.
	for _, line := range status.Output {
		if err := stream.send(map[string]interface{}{"type": "output", "line": line}); err != nil {
			return
		}
	}

	updates := make(chan task.Update, 100)
	if err := h.tasks.Subscribe(id, updates); err != nil {
		stream.send(map[string]interface{}{"type": "error", "error": err.Error()})
		return
	}
	defer h.tasks.Unsubscribe(id, updates)

	// Lines emitted between the snapshot and Subscribe are skipped; the
	// final status carries the full output.
	for {
		select {
		case update := <-updates:
			msg := map[string]interface{}{"type": "output", "line": update.Line}
			if update.Done {
				msg = map[string]interface{}{"type": "done", "status": update.Status}
			}
			if err := stream.send(msg); err != nil {
				log.Debug().Err(err).Msg("task stream: write failed")
				return
			}
			if update.Done {
				stream.finish()
				return
			}
		case <-stream.Done():
			return
		}
	}
}
