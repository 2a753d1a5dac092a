// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wingedpig/repoedit/internal/clone"
	"github.com/wingedpig/repoedit/internal/config"
	"github.com/wingedpig/repoedit/internal/task"
	"github.com/wingedpig/repoedit/internal/terminal"
)

// Cloner clones a repository and returns where it was placed.
type Cloner interface {
	Clone(ctx context.Context, url string, progress io.Writer) (string, error)
}

// CloneHandler handles POST /clone.
type CloneHandler struct {
	tasks    *task.Manager
	launcher terminal.Launcher
	script   string
	engine   string
	cloner   Cloner
}

// NewCloneHandler creates a clone handler. script is the clone script
// run by the script engine; cloner backs the native engine and may be nil.
func NewCloneHandler(tasks *task.Manager, launcher terminal.Launcher, script, engine string, cloner Cloner) *CloneHandler {
	if engine == "" {
		engine = config.EngineScript
	}
	return &CloneHandler{
		tasks:    tasks,
		launcher: launcher,
		script:   script,
		engine:   engine,
		cloner:   cloner,
	}
}

// Clone starts cloning the submitted repository in the background.
func (h *CloneHandler) Clone(w http.ResponseWriter, r *http.Request) {
	repoURL := strings.TrimSpace(r.PostFormValue("repo_url"))
	if repoURL == "" {
		writeStatusError(w, http.StatusBadRequest, "repo_url is required")
		return
	}

	engine := r.PostFormValue("engine")
	if engine == "" {
		engine = h.engine
	}
	log.Debug().Str("repo_url", repoURL).Str("engine", engine).Msg("received repo URL")

	var fn task.Func
	switch engine {
	case config.EngineScript:
		cmd, err := clone.ScriptCommand(h.script, repoURL)
		if err != nil {
			writeStatusError(w, http.StatusInternalServerError, err.Error())
			return
		}
		log.Debug().Str("script", cmd.Args[1]).Msg("clone script path")
		fn = launchTask(h.launcher, cmd)

	case config.EngineNative:
		if h.cloner == nil {
			writeStatusError(w, http.StatusBadRequest, "native clone engine is not available")
			return
		}
		fn = func(ctx context.Context, th *task.Handle) error {
			dest, err := h.cloner.Clone(ctx, repoURL, th)
			if err != nil {
				return err
			}
			th.SetResult(map[string]string{"path": dest})
			return nil
		}

	default:
		writeStatusError(w, http.StatusBadRequest, "unknown engine "+engine)
		return
	}

	status, err := h.tasks.Start(r.Context(), task.KindClone, repoURL, fn)
	if err != nil {
		log.Error().Err(err).Msg("error opening new terminal")
		writeStatusError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteStatus(w, http.StatusOK, StatusResponse{Status: StatusSuccess, TaskID: status.ID})
}
