// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wingedpig/repoedit/internal/config"
)

// Setup installs the global logger described by cfg and routes the
// standard library logger through it. Output goes to w (os.Stderr if nil).
func Setup(cfg config.LoggingConfig, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	out := w
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger

	// http.Server and friends log through the standard library.
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger.With().Str("source", "stdlib").Logger())

	return nil
}
