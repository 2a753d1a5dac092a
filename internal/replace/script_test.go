// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package replace

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderScript(t *testing.T) {
	script := RenderScript("/tmp/repo", "foo", "bar")
	lines := strings.Split(script, "\n")

	assert.Equal(t, "#!/bin/bash", lines[0])
	assert.Equal(t, `search_text="foo"`, lines[1])
	assert.Equal(t, `replace_text="bar"`, lines[2])
	assert.Equal(t, `repo_path="/tmp/repo"`, lines[3])
	assert.Contains(t, script, `search_text=$(printf '%s\n' "$search_text" | sed -e 's/[\/&]/\\&/g')`)
	assert.Contains(t, script, `replace_text=$(printf '%s\n' "$replace_text" | sed -e 's/[\/&]/\\&/g')`)
	assert.Contains(t, script, `find "$repo_path" -type f -exec perl -pi -e "s/$search_text/$replace_text/g" {} +`)
	assert.True(t, strings.HasSuffix(script, "echo \"Words and sentences replaced successfully.\"\n"))
}

func TestRenderScript_InterpolatesVerbatim(t *testing.T) {
	// Values are not quoted; a double quote ends the assignment early.
	script := RenderScript(`/tmp/my "repo"`, `100%`, `a$b`)

	assert.Contains(t, script, `search_text="100%"`)
	assert.Contains(t, script, `replace_text="a$b"`)
	assert.Contains(t, script, `repo_path="/tmp/my "repo""`)
}

func TestGenerator_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin", "replace_words.sh")
	g := NewGenerator(path)

	got, err := g.Write("/tmp/repo", "foo", "bar")
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, path, g.Path())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, RenderScript("/tmp/repo", "foo", "bar"), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerator_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replace_words.sh")
	g := NewGenerator(path)

	_, err := g.Write("/tmp/repo", "one", "two")
	require.NoError(t, err)
	_, err = g.Write("/tmp/repo", "three", "four")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `search_text="three"`)
	assert.NotContains(t, string(data), `search_text="one"`)
}

func TestGenerator_ConcurrentWritesAreWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replace_words.sh")
	g := NewGenerator(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := g.Write("/tmp/repo", strings.Repeat("s", i+1), "r")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	valid := false
	for i := 0; i < 20; i++ {
		if string(data) == RenderScript("/tmp/repo", strings.Repeat("s", i+1), "r") {
			valid = true
			break
		}
	}
	assert.True(t, valid, "script content must match one complete render")
}

func TestGenerator_WriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	g := NewGenerator(filepath.Join(blocker, "replace_words.sh"))
	_, err := g.Write("/tmp/repo", "a", "b")
	assert.Error(t, err)
}

func TestCommand(t *testing.T) {
	cmd := Command("/opt/repoedit/replace_words.sh")
	assert.Equal(t, []string{"bash", "/opt/repoedit/replace_words.sh"}, cmd.Args)
	assert.Equal(t, "bash /opt/repoedit/replace_words.sh", cmd.String())
}

func TestScriptWarnings(t *testing.T) {
	assert.Empty(t, ScriptWarnings("foo", "bar"))
	assert.Len(t, ScriptWarnings(`say "hi"`, "bar"), 1)
	assert.Len(t, ScriptWarnings("a.b", "$HOME"), 2)
}

// The script only escapes slashes, ampersands and backslashes before handing
// the text to perl; run the escaping prefix through bash to pin that down.
func TestRenderScript_SedEscaping(t *testing.T) {
	for _, bin := range []string{"bash", "sed"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available", bin)
		}
	}

	script := RenderScript("/nonexistent", `a/b&c\d`, "x&y")
	prefix, _, found := strings.Cut(script, "# Use Perl")
	require.True(t, found)

	out, err := exec.Command("bash", "-c", prefix+`printf '%s|%s\n' "$search_text" "$replace_text"`).Output()
	require.NoError(t, err)
	assert.Equal(t, `a\/b\&c\\d|x\&y`+"\n", string(out))
}
