// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package clone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog/log"
)

// PathRecorder records where the latest clone lives.
type PathRecorder interface {
	Set(ctx context.Context, path string) error
}

// GoGitCloner clones repositories in-process with go-git.
type GoGitCloner struct {
	dir      string
	recorder PathRecorder
}

// NewGoGitCloner creates a cloner placing repositories under dir.
// recorder may be nil.
func NewGoGitCloner(dir string, recorder PathRecorder) *GoGitCloner {
	return &GoGitCloner{dir: dir, recorder: recorder}
}

// Clone clones url below the cloner's directory and returns the checkout
// path. Progress output is written to progress when non-nil. If the
// natural destination is taken, a numeric suffix is added.
func (c *GoGitCloner) Clone(ctx context.Context, url string, progress io.Writer) (string, error) {
	name, err := RepoName(url)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("create clone dir: %w", err)
	}

	dest, err := freeDir(c.dir, name)
	if err != nil {
		return "", err
	}

	if progress != nil {
		fmt.Fprintf(progress, "Cloning %s into %s\n", url, dest)
	}
	log.Info().Str("url", url).Str("dest", dest).Msg("cloning repository")

	opts := &git.CloneOptions{
		URL:      url,
		Progress: progress,
	}
	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		os.RemoveAll(dest)
		return "", fmt.Errorf("go-git clone: %w", err)
	}

	if c.recorder != nil {
		if err := c.recorder.Set(ctx, dest); err != nil {
			return dest, fmt.Errorf("record clone path: %w", err)
		}
	}
	if progress != nil {
		fmt.Fprintf(progress, "Cloned into %s\n", dest)
	}
	return dest, nil
}

// freeDir returns dir/name, or dir/name-N for the first N not in use.
func freeDir(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	for i := 2; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		if i > 1000 {
			return "", fmt.Errorf("no free directory for %s in %s", name, dir)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d", name, i))
	}
}
