// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/tailscale/tscert"
	"github.com/wingedpig/repoedit/internal/api/handlers"
	"github.com/wingedpig/repoedit/internal/api/middleware"
	"github.com/wingedpig/repoedit/internal/api/version"
	"github.com/wingedpig/repoedit/internal/events"
	"github.com/wingedpig/repoedit/internal/replace"
	"github.com/wingedpig/repoedit/internal/task"
	"github.com/wingedpig/repoedit/internal/terminal"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Host         string
	Port         int
	TLSCert      string // Path to TLS certificate file
	TLSKey       string // Path to TLS private key file
	TailscaleTLS bool   // Get certificates from the local tailscaled
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	Tasks         *task.Manager
	EventBus      events.EventBus
	Launcher      terminal.Launcher
	ClonePaths    handlers.ClonePathSource
	ClonePathFile string
	CloneScript   string
	CloneEngine   string
	Cloner        handlers.Cloner // nil disables the native clone engine
	Generator     *replace.Generator
	Engine        *replace.Engine // nil disables the native replace engine
	Replace       handlers.ReplaceOptions
	Version       string
}

// NewRouter creates a new API router.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS)

	// Form endpoints and pages
	pageHandler := handlers.NewPageHandler(deps.Tasks, deps.ClonePaths, deps.Replace, deps.Version)
	cloneHandler := handlers.NewCloneHandler(deps.Tasks, deps.Launcher, deps.CloneScript, deps.CloneEngine, deps.Cloner)
	replaceHandler := handlers.NewReplaceHandler(deps.Tasks, deps.Launcher, deps.ClonePaths, deps.Generator, deps.Engine, deps.Replace)
	r.HandleFunc("/", pageHandler.Index).Methods("GET")
	r.HandleFunc("/clone", cloneHandler.Clone).Methods("POST")
	r.HandleFunc("/replace", replaceHandler.Replace).Methods("POST")

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(version.Middleware)

	api.HandleFunc("/clone", cloneHandler.Clone).Methods("POST")
	api.HandleFunc("/replace", replaceHandler.Replace).Methods("POST")

	// Task handlers
	taskHandler := handlers.NewTaskHandler(deps.Tasks)
	api.HandleFunc("/tasks", taskHandler.List).Methods("GET")
	api.HandleFunc("/tasks/{id}", taskHandler.Get).Methods("GET")
	api.HandleFunc("/tasks/{id}/cancel", taskHandler.Cancel).Methods("POST")
	api.HandleFunc("/tasks/{id}/stream", taskHandler.Stream).Methods("GET")

	clonePathHandler := handlers.NewClonePathHandler(deps.ClonePaths, deps.ClonePathFile)
	api.HandleFunc("/clone-path", clonePathHandler.Get).Methods("GET")

	// Event handlers
	if deps.EventBus != nil {
		eventHandler := handlers.NewEventHandler(deps.EventBus)
		api.HandleFunc("/events", eventHandler.History).Methods("GET")
		api.HandleFunc("/events/ws", eventHandler.WebSocket).Methods("GET")
	}

	return r
}

// Server represents the API server.
type Server struct {
	router *mux.Router
	cfg    ServerConfig
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	return &Server{
		router: NewRouter(deps),
		cfg:    cfg,
	}
}

// Router returns the underlying router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// ListenAndServe starts the server. HTTPS is used when a cert/key pair
// is configured or when tailscale TLS is enabled.
func (s *Server) ListenAndServe() error {
	addr := s.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var err error
	if s.cfg.TailscaleTLS {
		s.server.TLSConfig = &tls.Config{GetCertificate: tscert.GetCertificate}
		log.Info().Str("addr", addr).Msg("API server listening on https (tailscale certificates)")
		err = s.server.ListenAndServeTLS("", "")
	} else {
		tlsEnabled, cerr := CheckTLSConfig(s.cfg.TLSCert, s.cfg.TLSKey)
		if cerr != nil {
			return fmt.Errorf("TLS configuration error: %w", cerr)
		}
		if tlsEnabled {
			log.Info().Str("addr", addr).Msg("API server listening on https")
			err = s.server.ListenAndServeTLS(expandPath(s.cfg.TLSCert), expandPath(s.cfg.TLSKey))
		} else {
			log.Info().Str("addr", addr).Msg("API server listening on http")
			err = s.server.ListenAndServe()
		}
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	log.Info().Msg("shutting down API server")

	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	return s.server.Shutdown(shutdownCtx)
}
