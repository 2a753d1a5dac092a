// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package e2e

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/repoedit/internal/app"
	"github.com/wingedpig/repoedit/pkg/client"
)

type env struct {
	dir      string
	pathFile string
	server   *httptest.Server
	client   *client.Client
}

// newEnv starts a full app on a test server. Commands run headless under a
// PTY so the clone script and the generated replace script really execute.
func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		dir:      dir,
		pathFile: filepath.Join(dir, "clone_store", "clone_path.txt"),
	}

	// Stands in for process_repo.sh: "clones" by creating a file, then
	// records the destination where the server expects it.
	script := filepath.Join(dir, "process_repo.sh")
	body := fmt.Sprintf(`#!/bin/bash
set -e
dest=%q/clones/$(basename "$1" .git)
mkdir -p "$dest"
printf 'hello foo\n' > "$dest/a.txt"
mkdir -p "$(dirname %q)"
printf '%%s\n' "$dest" > %q
echo "cloned $1"
`, dir, e.pathFile, e.pathFile)
	require.NoError(t, os.WriteFile(script, []byte(body), 0755))

	cfgPath := filepath.Join(dir, "repoedit.hjson")
	cfg := fmt.Sprintf(`{
  clone: {
    script: %q
    path_file: %q
    dir: %q
  }
  replace: {
    script_path: %q
  }
  terminal: {
    backend: pty
  }
  logging: {
    level: warn
    format: json
  }
}
`, script, e.pathFile, filepath.Join(dir, "native"), filepath.Join(dir, "replace_words.sh"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	a, err := app.New(app.Options{ConfigPath: cfgPath, Version: "e2e"})
	require.NoError(t, err)
	require.NoError(t, a.Initialize(context.Background()))
	t.Cleanup(func() { a.Shutdown(context.Background()) })

	e.server = httptest.NewServer(a.Handler())
	t.Cleanup(e.server.Close)
	e.client = client.New(e.server.URL, client.WithTimeout(30*time.Second))
	return e
}

func requireTools(t *testing.T, tools ...string) {
	t.Helper()
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available", tool)
		}
	}
}

func waitTask(t *testing.T, c *client.Client, id string) *client.Task {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	task, err := c.Tasks.Wait(ctx, id)
	require.NoError(t, err)
	return task
}

func TestScriptCloneThenReplace(t *testing.T) {
	requireTools(t, "bash", "perl", "find", "sed")
	e := newEnv(t)
	ctx := context.Background()

	resp, err := e.client.Clone(ctx, "https://example.com/widgets.git")
	require.NoError(t, err)
	task := waitTask(t, e.client, resp.TaskID)
	require.Equal(t, client.StateSuccess, task.State, task.Error)
	assert.Contains(t, task.Command, "process_repo.sh https://example.com/widgets.git")

	repo := filepath.Join(e.dir, "clones", "widgets")
	cp, err := e.client.ClonePath(ctx)
	require.NoError(t, err)
	assert.Equal(t, repo, cp.Path)

	resp, err = e.client.Replace(ctx, "foo", "bar", nil)
	require.NoError(t, err)
	assert.Equal(t, "Replacement script started in a new terminal.", resp.Message)
	task = waitTask(t, e.client, resp.TaskID)
	require.Equal(t, client.StateSuccess, task.State, task.Error)

	data, err := os.ReadFile(filepath.Join(repo, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello bar\n", string(data))

	info, err := os.Stat(filepath.Join(e.dir, "replace_words.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0100)

	events, err := e.client.Events.List(ctx, &client.ListOptions{Types: []string{"task.finished"}})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestNativeCloneThenReplace(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	src := newSourceRepo(t)

	resp, err := e.client.CloneWith(ctx, src, "native")
	require.NoError(t, err)
	task := waitTask(t, e.client, resp.TaskID)
	require.Equal(t, client.StateSuccess, task.State, task.Error)

	repo := filepath.Join(e.dir, "native", filepath.Base(src))
	cp, err := e.client.ClonePath(ctx)
	require.NoError(t, err)
	assert.Equal(t, repo, cp.Path)

	// The path file is kept in step for the script engine.
	data, err := os.ReadFile(e.pathFile)
	require.NoError(t, err)
	assert.Equal(t, repo, strings.TrimSpace(string(data)))

	resp, err = e.client.Replace(ctx, `wor(ld)`, `WOR${1}`, &client.ReplaceOptions{Engine: "native", Mode: "regex"})
	require.NoError(t, err)
	assert.Equal(t, "Replacement started.", resp.Message)
	task = waitTask(t, e.client, resp.TaskID)
	require.Equal(t, client.StateSuccess, task.State, task.Error)

	res, err := task.ReplaceResult()
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesChanged)
	assert.Equal(t, 2, res.Replacements)

	data, err = os.ReadFile(filepath.Join(repo, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello WORld\nworry WORld\n", string(data))
}

func TestReplaceBeforeClone(t *testing.T) {
	e := newEnv(t)

	_, err := e.client.Replace(context.Background(), "foo", "bar", nil)
	apiErr, ok := err.(*client.APIError)
	require.True(t, ok, "expected *client.APIError, got %v", err)
	assert.Equal(t, "Cloned repository path not found.", apiErr.Message)

	_, err = os.Stat(filepath.Join(e.dir, "replace_words.sh"))
	assert.True(t, os.IsNotExist(err))

	tasks, err := e.client.Tasks.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestAPIErrorResponses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.Tasks.Get(ctx, "does-not-exist", 0)
	apiErr, ok := err.(*client.APIError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)

	_, err = e.client.ClonePath(ctx)
	apiErr, ok = err.(*client.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = e.client.Clone(ctx, "")
	apiErr, ok = err.(*client.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestUIPage(t *testing.T) {
	e := newEnv(t)

	resp, err := http.Get(e.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), `id="clone-form"`)
	assert.Contains(t, string(body), `id="replace-form"`)
}

func TestCORS(t *testing.T) {
	e := newEnv(t)

	req, err := http.NewRequest(http.MethodGet, e.server.URL+"/api/v1/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func newSourceRepo(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "source")
	repo, err := git.PlainInit(src, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(src, "README.md"), []byte("hello world\nworry world\n"), 0644))
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add("README.md")
	require.NoError(t, err)
	_, err = w.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return src
}
