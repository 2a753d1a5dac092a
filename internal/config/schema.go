// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading and validation.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Engine names shared by the clone and replace sections.
const (
	EngineScript = "script"
	EngineNative = "native"
)

// Replace modes for the native engine.
const (
	ModeLiteral = "literal"
	ModeRegex   = "regex"
)

// Terminal backends.
const (
	BackendWindow = "window"
	BackendPTY    = "pty"
)

// Config is the root configuration structure for repoedit.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Clone    CloneConfig    `json:"clone" yaml:"clone"`
	Replace  ReplaceConfig  `json:"replace" yaml:"replace"`
	Terminal TerminalConfig `json:"terminal" yaml:"terminal"`
	Tasks    TasksConfig    `json:"tasks" yaml:"tasks"`
	Events   EventsConfig   `json:"events" yaml:"events"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         int    `json:"port" yaml:"port"`
	Host         string `json:"host" yaml:"host"`
	TLSCert      string `json:"tls_cert" yaml:"tls_cert"`           // Path to TLS certificate file (enables HTTPS if both cert and key set)
	TLSKey       string `json:"tls_key" yaml:"tls_key"`             // Path to TLS private key file
	TailscaleTLS bool   `json:"tailscale_tls" yaml:"tailscale_tls"` // Fetch certificates from the local tailscaled
}

// CloneConfig configures how repositories are cloned.
type CloneConfig struct {
	Engine   string `json:"engine" yaml:"engine"`       // "script" or "native"
	Script   string `json:"script" yaml:"script"`       // External clone script, invoked as bash <script> <url>
	PathFile string `json:"path_file" yaml:"path_file"` // File holding the path of the last clone
	Dir      string `json:"dir" yaml:"dir"`             // Destination parent directory for native clones
}

// ReplaceConfig configures search and replace.
type ReplaceConfig struct {
	Engine      string   `json:"engine" yaml:"engine"`           // "script" or "native"
	Mode        string   `json:"mode" yaml:"mode"`               // "literal" or "regex" (native engine only)
	ScriptPath  string   `json:"script_path" yaml:"script_path"` // Where the generated script is written
	Include     []string `json:"include" yaml:"include"`         // doublestar globs, relative to the repo root
	Exclude     []string `json:"exclude" yaml:"exclude"`
	Workers     int      `json:"workers" yaml:"workers"`
	MaxFileSize int64    `json:"max_file_size" yaml:"max_file_size"` // Bytes; larger files are skipped
}

// TerminalConfig configures how commands are launched.
type TerminalConfig struct {
	Backend string `json:"backend" yaml:"backend"` // "window" or "pty"
	Program string `json:"program" yaml:"program"` // Terminal emulator used on Unix-like systems
}

// TasksConfig configures background task tracking.
type TasksConfig struct {
	Retention      string `json:"retention" yaml:"retention"`               // How long finished tasks stay queryable
	MaxOutputLines int    `json:"max_output_lines" yaml:"max_output_lines"` // Output lines kept per task
}

// EventsConfig configures the event system.
type EventsConfig struct {
	History EventHistoryConfig `json:"history" yaml:"history"`
}

// EventHistoryConfig configures event history retention.
type EventHistoryConfig struct {
	MaxEvents int    `json:"max_events" yaml:"max_events"`
	MaxAge    string `json:"max_age" yaml:"max_age"`
}

// LoggingConfig configures repoedit's own logging.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // "debug", "info", "warn", "error"
	Format string `json:"format" yaml:"format"` // "json" or "console"
}

// ParseDuration parses a duration string, returning a default if empty.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
