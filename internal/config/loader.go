// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v3"
)

// ConfigNames are the file names FindConfig looks for, in order.
var ConfigNames = []string{
	"repoedit.hjson",
	"repoedit.json",
	"repoedit.yaml",
	"repoedit.yml",
}

// Loader handles configuration file loading.
type Loader struct{}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the configuration from the given path.
// Files ending in .yaml or .yml are parsed as YAML, everything else as HJSON.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return parseHJSON(data)
	}
}

func parseHJSON(data []byte) (*Config, error) {
	// Parse HJSON to intermediate map
	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}

	// Convert to JSON and unmarshal to struct (for type safety)
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func parseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &cfg, nil
}

// LoadWithDefaults loads config with default values applied.
// An empty path yields the defaults alone.
func (l *Loader) LoadWithDefaults(ctx context.Context, path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := l.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyDefaults(cfg)
	return cfg, nil
}

// FindConfig searches for a config file in dir.
// It returns an empty path (and no error) when none exists.
func (l *Loader) FindConfig(dir string) (string, error) {
	for _, name := range ConfigNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			if err != nil {
				return path, nil
			}
			return abs, nil
		}
	}

	return "", nil
}

// Defaults returns a config with every default applied.
func Defaults() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing config fields.
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}

	// Clone defaults
	if cfg.Clone.Engine == "" {
		cfg.Clone.Engine = EngineScript
	}
	if cfg.Clone.Script == "" {
		cfg.Clone.Script = "process_repo.sh"
	}
	if cfg.Clone.PathFile == "" {
		cfg.Clone.PathFile = "~/clone_store/clone_path.txt"
	}
	if cfg.Clone.Dir == "" {
		cfg.Clone.Dir = "~/clone_store"
	}
	cfg.Clone.PathFile = ExpandPath(cfg.Clone.PathFile)
	cfg.Clone.Dir = ExpandPath(cfg.Clone.Dir)

	// Replace defaults
	if cfg.Replace.Engine == "" {
		cfg.Replace.Engine = EngineScript
	}
	if cfg.Replace.Mode == "" {
		cfg.Replace.Mode = ModeLiteral
	}
	if cfg.Replace.ScriptPath == "" {
		cfg.Replace.ScriptPath = defaultScriptPath()
	}
	cfg.Replace.ScriptPath = ExpandPath(cfg.Replace.ScriptPath)
	if cfg.Replace.Workers == 0 {
		cfg.Replace.Workers = 8
	}
	if cfg.Replace.MaxFileSize == 0 {
		cfg.Replace.MaxFileSize = 10 << 20
	}

	// Terminal defaults
	if cfg.Terminal.Backend == "" {
		cfg.Terminal.Backend = BackendWindow
	}
	if cfg.Terminal.Program == "" {
		cfg.Terminal.Program = "xterm"
	}

	// Task defaults
	if cfg.Tasks.Retention == "" {
		cfg.Tasks.Retention = "10m"
	}
	if cfg.Tasks.MaxOutputLines == 0 {
		cfg.Tasks.MaxOutputLines = 2000
	}

	// Events defaults
	if cfg.Events.History.MaxEvents == 0 {
		cfg.Events.History.MaxEvents = 1000
	}
	if cfg.Events.History.MaxAge == "" {
		cfg.Events.History.MaxAge = "1h"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// defaultScriptPath places the generated script beside the running binary.
func defaultScriptPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "replace_words.sh"
	}
	return filepath.Join(filepath.Dir(exe), "replace_words.sh")
}
