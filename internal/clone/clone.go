// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package clone fetches repositories, either through the external clone
// script or natively with go-git.
package clone

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/wingedpig/repoedit/internal/terminal"
)

// ScriptCommand builds the command that runs the clone script for url.
// A relative script path is resolved against the working directory.
func ScriptCommand(script, url string) (terminal.Command, error) {
	abs, err := filepath.Abs(script)
	if err != nil {
		return terminal.Command{}, fmt.Errorf("resolve clone script: %w", err)
	}
	return terminal.NewCommand("bash", abs, url), nil
}

// RepoName derives a directory name from a repository URL, e.g.
// "https://github.com/org/app.git" and "git@github.com:org/app" both
// yield "app".
func RepoName(url string) (string, error) {
	u := strings.TrimSpace(url)
	u = strings.TrimRight(u, "/")
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	} else if i := strings.Index(u, ":"); i >= 0 && !strings.HasPrefix(u, "/") {
		// scp-like syntax: user@host:path
		u = u[i+1:]
	}
	name := strings.TrimSuffix(path.Base(filepath.ToSlash(u)), ".git")
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("cannot derive repository name from %q", url)
	}
	return name, nil
}
