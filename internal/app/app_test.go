// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "repoedit.hjson")
	body := `{
  server: {
    port: 5999
  }
  clone: {
    path_file: "` + filepath.Join(dir, "store", "clone_path.txt") + `"
    dir: "` + filepath.Join(dir, "store") + `"
  }
  replace: {
    script_path: "` + filepath.Join(dir, "replace_words.sh") + `"
  }
  terminal: {
    backend: pty
  }
  logging: {
    level: warn
    format: json
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNew_Overrides(t *testing.T) {
	path := writeConfig(t, t.TempDir())

	a, err := New(Options{ConfigPath: path, Host: "0.0.0.0", Port: 6000, Version: "test"})
	require.NoError(t, err)
	defer a.Shutdown(context.Background())

	assert.Equal(t, "0.0.0.0", a.Config().Server.Host)
	assert.Equal(t, 6000, a.Config().Server.Port)
	assert.Equal(t, "pty", a.Config().Terminal.Backend)
}

func TestNew_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoedit.hjson")
	require.NoError(t, os.WriteFile(path, []byte("{\n  replace: {\n    mode: fuzzy\n  }\n}\n"), 0644))

	_, err := New(Options{ConfigPath: path})
	assert.Error(t, err)
}

func TestNew_MissingConfig(t *testing.T) {
	_, err := New(Options{ConfigPath: filepath.Join(t.TempDir(), "nope.hjson")})
	assert.Error(t, err)
}

func TestInitialize_PicksUpExistingClonePath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "store"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "store", "clone_path.txt"), []byte("/tmp/repo\n"), 0644))

	a, err := New(Options{ConfigPath: path, Version: "test"})
	require.NoError(t, err)
	require.NoError(t, a.Initialize(context.Background()))
	defer a.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/clone-path", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/tmp/repo")

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/tmp/repo")
}

func TestStop_Idempotent(t *testing.T) {
	a, err := New(Options{ConfigPath: writeConfig(t, t.TempDir())})
	require.NoError(t, err)
	a.Stop()
	a.Stop()
	assert.NoError(t, a.Shutdown(context.Background()))
}
