// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/wingedpig/repoedit/internal/task"
	"github.com/wingedpig/repoedit/views"
)

// recentTasks is how many tasks the landing page lists.
const recentTasks = 10

// PageHandler handles UI page requests.
type PageHandler struct {
	tasks   *task.Manager
	paths   ClonePathSource
	opts    ReplaceOptions
	version string
}

// NewPageHandler creates a new page handler.
func NewPageHandler(tasks *task.Manager, paths ClonePathSource, opts ReplaceOptions, version string) *PageHandler {
	return &PageHandler{
		tasks:   tasks,
		paths:   paths,
		opts:    opts,
		version: version,
	}
}

// Index renders the landing page.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	page := &views.IndexPage{
		BasePage: views.BasePage{
			Title:   "Repository search and replace",
			Version: h.version,
		},
		ReplaceEngine: h.opts.Engine,
		ReplaceMode:   h.opts.Mode,
	}
	if p, ok := h.paths.Get(); ok {
		page.ClonePath = p
	}
	if h.tasks != nil {
		list := h.tasks.List()
		if len(list) > recentTasks {
			list = list[:recentTasks]
		}
		page.Tasks = list
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page.WriteRender(w)
}
