// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load_HJSONFeatures(t *testing.T) {
	// Comments, unquoted values and trailing commas
	configContent := `{
		// Listen address
		server: {
			port: 8080,
			host: 0.0.0.0,
		}

		# Clone with go-git instead of the shell script
		clone: {
			engine: native
			dir: /srv/clones
		}

		replace: {
			engine: native
			mode: regex
			include: ["**/*.go", "**/*.md"]
			exclude: ["vendor/**"]
		}
	}`

	cfg := loadFromString(t, "repoedit.hjson", configContent)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, EngineNative, cfg.Clone.Engine)
	assert.Equal(t, "/srv/clones", cfg.Clone.Dir)
	assert.Equal(t, EngineNative, cfg.Replace.Engine)
	assert.Equal(t, ModeRegex, cfg.Replace.Mode)
	assert.Equal(t, []string{"**/*.go", "**/*.md"}, cfg.Replace.Include)
	assert.Equal(t, []string{"vendor/**"}, cfg.Replace.Exclude)
}

func TestLoader_Load_YAML(t *testing.T) {
	configContent := `
server:
  port: 9090
terminal:
  backend: pty
  program: gnome-terminal
logging:
  level: debug
  format: json
`
	cfg := loadFromString(t, "repoedit.yaml", configContent)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, BackendPTY, cfg.Terminal.Backend)
	assert.Equal(t, "gnome-terminal", cfg.Terminal.Program)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoader_Load_InvalidHJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoedit.hjson")
	require.NoError(t, os.WriteFile(path, []byte(`{ server: { port: [ }`), 0644))

	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse hjson")
}

func TestLoader_Load_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hjson"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoader_LoadWithDefaults_EmptyPath(t *testing.T) {
	cfg, err := NewLoader().LoadWithDefaults(context.Background(), "")
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, EngineScript, cfg.Clone.Engine)
	assert.Equal(t, "process_repo.sh", cfg.Clone.Script)
	assert.Equal(t, filepath.Join(home, "clone_store", "clone_path.txt"), cfg.Clone.PathFile)
	assert.Equal(t, EngineScript, cfg.Replace.Engine)
	assert.Equal(t, ModeLiteral, cfg.Replace.Mode)
	assert.Equal(t, "replace_words.sh", filepath.Base(cfg.Replace.ScriptPath))
	assert.Equal(t, 8, cfg.Replace.Workers)
	assert.Equal(t, BackendWindow, cfg.Terminal.Backend)
	assert.Equal(t, "xterm", cfg.Terminal.Program)
	assert.Equal(t, "10m", cfg.Tasks.Retention)
	assert.Equal(t, 1000, cfg.Events.History.MaxEvents)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoader_LoadWithDefaults_KeepsExplicitValues(t *testing.T) {
	configContent := `{
		clone: { script: /opt/scripts/clone.sh, path_file: /tmp/clone_path.txt }
		replace: { script_path: /tmp/replace.sh, workers: 2 }
	}`
	dir := t.TempDir()
	path := filepath.Join(dir, "repoedit.hjson")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0644))

	cfg, err := NewLoader().LoadWithDefaults(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/scripts/clone.sh", cfg.Clone.Script)
	assert.Equal(t, "/tmp/clone_path.txt", cfg.Clone.PathFile)
	assert.Equal(t, "/tmp/replace.sh", cfg.Replace.ScriptPath)
	assert.Equal(t, 2, cfg.Replace.Workers)
}

func TestLoader_FindConfig(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader()

	found, err := loader.FindConfig(dir)
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "repoedit.yaml"), []byte("server: {}\n"), 0644))
	found, err = loader.FindConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "repoedit.yaml", filepath.Base(found))

	// hjson wins over yaml
	require.NoError(t, os.WriteFile(filepath.Join(dir, "repoedit.hjson"), []byte("{}"), 0644))
	found, err = loader.FindConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "repoedit.hjson", filepath.Base(found))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "clone_store"), ExpandPath("~/clone_store"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.Equal(t, "~user/x", ExpandPath("~user/x"))
}

func loadFromString(t *testing.T, name, content string) *Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	return cfg
}
