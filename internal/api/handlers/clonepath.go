// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
)

// ClonePathHandler exposes the current clone path.
type ClonePathHandler struct {
	paths ClonePathSource
	file  string
}

// NewClonePathHandler creates a clone path handler. file is the backing
// file reported alongside the path.
func NewClonePathHandler(paths ClonePathSource, file string) *ClonePathHandler {
	return &ClonePathHandler{paths: paths, file: file}
}

// ClonePathInfo describes the current clone.
type ClonePathInfo struct {
	Path string `json:"path"`
	File string `json:"file"`
}

// Get returns the current clone path, or 404 when none is recorded.
func (h *ClonePathHandler) Get(w http.ResponseWriter, r *http.Request) {
	path, ok := h.paths.Get()
	if !ok {
		WriteErrorWithDetails(w, http.StatusNotFound, ErrNotFound, MsgClonePathNotFound, map[string]interface{}{
			"file": h.file,
		})
		return
	}
	WriteJSON(w, http.StatusOK, ClonePathInfo{Path: path, File: h.file})
}
