// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package replace applies a search and replace across every file of a
// cloned repository, either through a generated bash script or natively.
package replace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wingedpig/repoedit/internal/terminal"
	"gitlab.com/tozd/go/errors"
)

// scriptTemplate is filled with the search text, the replacement text and
// the repository path, each placed verbatim inside double quotes.
const scriptTemplate = `#!/bin/bash
search_text="%s"
replace_text="%s"
repo_path="%s"

# Escape special characters in search and replace texts for use in Perl
search_text=$(printf '%%s\n' "$search_text" | sed -e 's/[\/&]/\\&/g')
replace_text=$(printf '%%s\n' "$replace_text" | sed -e 's/[\/&]/\\&/g')

# Use Perl to replace text in all files in the repo_path
find "$repo_path" -type f -exec perl -pi -e "s/$search_text/$replace_text/g" {} +

echo "Words and sentences replaced successfully."
`

// RenderScript returns the replacement script for the given inputs.
// Values are interpolated without shell quoting; callers that need safe
// handling of arbitrary text should use the native Engine.
func RenderScript(repoPath, search, replacement string) string {
	return fmt.Sprintf(scriptTemplate, search, replacement, repoPath)
}

// Generator writes the replacement script to a fixed location.
type Generator struct {
	mu   sync.Mutex
	path string
}

// NewGenerator creates a generator writing to path.
func NewGenerator(path string) *Generator {
	return &Generator{path: path}
}

// Path returns where the script is written.
func (g *Generator) Path() string {
	return g.path
}

// Write renders the script and installs it at the generator's path with
// mode 0755. Concurrent writers are serialized and the file is replaced
// atomically, so a launched script never sees a partial write.
func (g *Generator) Write(repoPath, search, replacement string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Errorf("create script dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".replace_words-*.sh")
	if err != nil {
		return "", errors.Errorf("create temp script: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(RenderScript(repoPath, search, replacement)); err != nil {
		tmp.Close()
		return "", errors.Errorf("write script: %w", err)
	}
	if err := tmp.Chmod(0755); err != nil {
		tmp.Close()
		return "", errors.Errorf("chmod script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Errorf("close script: %w", err)
	}
	if err := os.Rename(tmp.Name(), g.path); err != nil {
		return "", errors.Errorf("install script: %w", err)
	}

	return g.path, nil
}

// Command returns the command that runs a generated script.
func Command(scriptPath string) terminal.Command {
	return terminal.NewCommand("bash", scriptPath)
}

// quoteBreaking reports whether s contains characters that break out of
// the script's double-quoted assignments.
func quoteBreaking(s string) bool {
	return strings.ContainsAny(s, "\"$`\\")
}

// ScriptWarnings lists inputs the generated script will not treat literally.
func ScriptWarnings(search, replacement string) []string {
	var warnings []string
	if quoteBreaking(search) {
		warnings = append(warnings, "search_text contains shell metacharacters and is not quoted")
	}
	if quoteBreaking(replacement) {
		warnings = append(warnings, "replace_text contains shell metacharacters and is not quoted")
	}
	if strings.ContainsAny(search, `.*+?()[]{}|^`) {
		warnings = append(warnings, "search_text is interpreted as a Perl regular expression")
	}
	return warnings
}
