// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"net/http"
	"regexp"

	"github.com/rs/zerolog/log"
	"github.com/wingedpig/repoedit/internal/config"
	"github.com/wingedpig/repoedit/internal/replace"
	"github.com/wingedpig/repoedit/internal/task"
	"github.com/wingedpig/repoedit/internal/terminal"
)

// MsgClonePathNotFound is returned when no clone has been recorded.
const MsgClonePathNotFound = "Cloned repository path not found."

// Success messages per engine.
const (
	MsgScriptStarted = "Replacement script started in a new terminal."
	MsgNativeStarted = "Replacement started."
)

// ClonePathSource reports the current clone path.
type ClonePathSource interface {
	Get() (string, bool)
}

// ReplaceOptions configure a ReplaceHandler.
type ReplaceOptions struct {
	Engine string // default engine
	Mode   string // default mode for the native engine
}

// ReplaceHandler handles POST /replace.
type ReplaceHandler struct {
	tasks     *task.Manager
	launcher  terminal.Launcher
	paths     ClonePathSource
	generator *replace.Generator
	engine    *replace.Engine
	opts      ReplaceOptions
}

// NewReplaceHandler creates a replace handler. engine may be nil when the
// native engine is not wanted.
func NewReplaceHandler(tasks *task.Manager, launcher terminal.Launcher, paths ClonePathSource, generator *replace.Generator, engine *replace.Engine, opts ReplaceOptions) *ReplaceHandler {
	if opts.Engine == "" {
		opts.Engine = config.EngineScript
	}
	if opts.Mode == "" {
		opts.Mode = config.ModeLiteral
	}
	return &ReplaceHandler{
		tasks:     tasks,
		launcher:  launcher,
		paths:     paths,
		generator: generator,
		engine:    engine,
		opts:      opts,
	}
}

// Replace applies the submitted search and replace to the cloned repository.
func (h *ReplaceHandler) Replace(w http.ResponseWriter, r *http.Request) {
	searchText := r.PostFormValue("search_text")
	replaceText := r.PostFormValue("replace_text")
	if searchText == "" {
		writeStatusError(w, http.StatusBadRequest, "search_text is required")
		return
	}

	engine := r.PostFormValue("engine")
	if engine == "" {
		engine = h.opts.Engine
	}
	mode := r.PostFormValue("mode")
	if mode == "" {
		mode = h.opts.Mode
	}
	if mode != config.ModeLiteral && mode != config.ModeRegex {
		writeStatusError(w, http.StatusBadRequest, "unknown mode "+mode)
		return
	}

	repoPath, ok := h.paths.Get()
	if !ok {
		writeStatusError(w, http.StatusNotFound, MsgClonePathNotFound)
		return
	}

	log.Debug().
		Str("search_text", searchText).
		Str("replace_text", replaceText).
		Str("repo_path", repoPath).
		Str("engine", engine).
		Msg("creating replacement")

	switch engine {
	case config.EngineScript:
		h.replaceWithScript(w, r, repoPath, searchText, replaceText)
	case config.EngineNative:
		h.replaceNatively(w, r, repoPath, searchText, replaceText, mode)
	default:
		writeStatusError(w, http.StatusBadRequest, "unknown engine "+engine)
	}
}

func (h *ReplaceHandler) replaceWithScript(w http.ResponseWriter, r *http.Request, repoPath, searchText, replaceText string) {
	scriptPath, err := h.generator.Write(repoPath, searchText, replaceText)
	if err != nil {
		log.Error().Err(err).Msg("error creating replacement script")
		writeStatusError(w, http.StatusInternalServerError, err.Error())
		return
	}

	warnings := replace.ScriptWarnings(searchText, replaceText)
	for _, warning := range warnings {
		log.Warn().Str("script", scriptPath).Msg(warning)
	}

	status, err := h.tasks.Start(r.Context(), task.KindReplace, searchText, launchTask(h.launcher, replace.Command(scriptPath)))
	if err != nil {
		log.Error().Err(err).Msg("error running replacement script")
		writeStatusError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteStatus(w, http.StatusOK, StatusResponse{
		Status:   StatusSuccess,
		Message:  MsgScriptStarted,
		TaskID:   status.ID,
		Warnings: warnings,
	})
}

func (h *ReplaceHandler) replaceNatively(w http.ResponseWriter, r *http.Request, repoPath, searchText, replaceText, mode string) {
	if h.engine == nil {
		writeStatusError(w, http.StatusBadRequest, "native replace engine is not available")
		return
	}

	if mode == config.ModeRegex {
		if _, err := regexp.Compile(searchText); err != nil {
			writeStatusError(w, http.StatusBadRequest, "invalid pattern: "+err.Error())
			return
		}
	}

	req := replace.Request{Root: repoPath, Search: searchText, Replace: replaceText, Mode: mode}
	status, err := h.tasks.Start(r.Context(), task.KindReplace, searchText, func(ctx context.Context, th *task.Handle) error {
		th.Printf("Replacing %q with %q in %s (%s)", searchText, replaceText, repoPath, mode)
		res, err := h.engine.Run(ctx, req, th)
		if err != nil {
			return err
		}
		th.SetResult(res)
		return nil
	})
	if err != nil {
		writeStatusError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteStatus(w, http.StatusOK, StatusResponse{Status: StatusSuccess, Message: MsgNativeStarted, TaskID: status.ID})
}
