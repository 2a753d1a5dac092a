// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Validator validates configuration against schema rules.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateServer(cfg, errs)
	v.validateClone(cfg, errs)
	v.validateReplace(cfg, errs)
	v.validateTerminal(cfg, errs)
	v.validateLogging(cfg, errs)
	v.validateDurations(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateServer(cfg *Config, errs *ValidationError) {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs.Add("server.port", "must be between 0 and 65535")
	}
	if (cfg.Server.TLSCert == "") != (cfg.Server.TLSKey == "") {
		errs.Add("server.tls_cert", "tls_cert and tls_key must be set together")
	}
	if cfg.Server.TailscaleTLS && cfg.Server.TLSCert != "" {
		errs.Add("server.tailscale_tls", "cannot be combined with tls_cert/tls_key")
	}
}

func (v *Validator) validateClone(cfg *Config, errs *ValidationError) {
	switch cfg.Clone.Engine {
	case EngineScript, EngineNative:
	default:
		errs.Add("clone.engine", fmt.Sprintf("must be %q or %q", EngineScript, EngineNative))
	}
	if cfg.Clone.PathFile == "" {
		errs.Add("clone.path_file", "is required")
	}
}

func (v *Validator) validateReplace(cfg *Config, errs *ValidationError) {
	switch cfg.Replace.Engine {
	case EngineScript, EngineNative:
	default:
		errs.Add("replace.engine", fmt.Sprintf("must be %q or %q", EngineScript, EngineNative))
	}
	switch cfg.Replace.Mode {
	case ModeLiteral, ModeRegex:
	default:
		errs.Add("replace.mode", fmt.Sprintf("must be %q or %q", ModeLiteral, ModeRegex))
	}
	if cfg.Replace.Workers < 1 {
		errs.Add("replace.workers", "must be at least 1")
	}
	for i, pattern := range cfg.Replace.Include {
		if !doublestar.ValidatePattern(pattern) {
			errs.Add(fmt.Sprintf("replace.include[%d]", i), fmt.Sprintf("invalid glob %q", pattern))
		}
	}
	for i, pattern := range cfg.Replace.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs.Add(fmt.Sprintf("replace.exclude[%d]", i), fmt.Sprintf("invalid glob %q", pattern))
		}
	}
}

func (v *Validator) validateTerminal(cfg *Config, errs *ValidationError) {
	switch cfg.Terminal.Backend {
	case BackendWindow, BackendPTY:
	default:
		errs.Add("terminal.backend", fmt.Sprintf("must be %q or %q", BackendWindow, BackendPTY))
	}
}

func (v *Validator) validateLogging(cfg *Config, errs *ValidationError) {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs.Add("logging.level", "must be one of debug, info, warn, error")
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		errs.Add("logging.format", "must be json or console")
	}
}

func (v *Validator) validateDurations(cfg *Config, errs *ValidationError) {
	durations := map[string]string{
		"tasks.retention":        cfg.Tasks.Retention,
		"events.history.max_age": cfg.Events.History.MaxAge,
	}
	for field, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			errs.Add(field, fmt.Sprintf("invalid duration %q", value))
		}
	}
}
