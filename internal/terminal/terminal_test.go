// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package terminal

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_String(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"program only", NewCommand("bash"), "bash"},
		{"with args", NewCommand("bash", "/opt/process_repo.sh", "https://example.com/repo.git"), "bash /opt/process_repo.sh https://example.com/repo.git"},
		// Metacharacters are passed through untouched.
		{"metacharacters", NewCommand("bash", "/opt/process_repo.sh", "x; rm -rf ~ && $(id)"), "bash /opt/process_repo.sh x; rm -rf ~ && $(id)"},
		{"empty", Command{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestCommand_Empty(t *testing.T) {
	assert.True(t, Command{}.Empty())
	assert.True(t, Command{Args: []string{""}}.Empty())
	assert.False(t, NewCommand("bash").Empty())
}

func TestWindowLauncher_Argv(t *testing.T) {
	cmd := NewCommand("bash", "/opt/process_repo.sh", "https://example.com/repo.git")

	tests := []struct {
		goos    string
		program string
		want    []string
	}{
		{
			goos: "windows",
			want: []string{"cmd", "/c", "start", "cmd", "/c", "bash /opt/process_repo.sh https://example.com/repo.git"},
		},
		{
			goos: "darwin",
			want: []string{"osascript", "-e", `tell application "Terminal" to do script "bash /opt/process_repo.sh https://example.com/repo.git"`},
		},
		{
			goos: "linux",
			want: []string{"xterm", "-e", "bash", "/opt/process_repo.sh", "https://example.com/repo.git"},
		},
		{
			goos:    "freebsd",
			program: "gnome-terminal",
			want:    []string{"gnome-terminal", "-e", "bash", "/opt/process_repo.sh", "https://example.com/repo.git"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			l := NewWindowLauncherFor(tt.goos, tt.program)
			assert.Equal(t, tt.want, l.Argv(cmd))
		})
	}
}

func TestWindowLauncher_Argv_DarwinEscapesQuotes(t *testing.T) {
	l := NewWindowLauncherFor("darwin", "")
	argv := l.Argv(NewCommand("bash", `/tmp/a "b"\c`))
	assert.Equal(t, `tell application "Terminal" to do script "bash /tmp/a \"b\"\\c"`, argv[2])
}

func TestWindowLauncher_Launch_Empty(t *testing.T) {
	_, err := NewWindowLauncher("xterm").Launch(context.Background(), Command{}, nil)
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestWindowLauncher_Launch_MissingProgram(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("program override only applies to Unix-like systems")
	}
	l := NewWindowLauncher("definitely-not-a-terminal-emulator")
	_, err := l.Launch(context.Background(), NewCommand("true"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitely-not-a-terminal-emulator")
}

func TestWindowLauncher_Launch_UsesProgram(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("program override only applies to Unix-like systems")
	}
	// echo stands in for the terminal emulator: it prints the argv it gets.
	l := NewWindowLauncher("echo")
	var out syncBuffer
	p, err := l.Launch(context.Background(), NewCommand("bash", "/opt/process_repo.sh", "url"), &out)
	require.NoError(t, err)
	assert.Greater(t, p.Pid(), 0)
	require.NoError(t, p.Wait())
	assert.Contains(t, out.String(), "bash /opt/process_repo.sh url")
}

func TestPTYLauncher_Launch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no pty on windows")
	}
	if _, err := os.Stat("/dev/ptmx"); err != nil {
		t.Skip("no /dev/ptmx available")
	}

	var out syncBuffer
	p, err := NewPTYLauncher().Launch(context.Background(), NewCommand("echo", "hello from pty"), &out)
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	require.NoError(t, p.Wait())
	assert.Contains(t, out.String(), "hello from pty")
}

func TestPTYLauncher_Launch_Empty(t *testing.T) {
	_, err := NewPTYLauncher().Launch(context.Background(), Command{}, nil)
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestProcessAlive(t *testing.T) {
	assert.True(t, ProcessAlive(os.Getpid()))
	assert.NotEmpty(t, ProcessName(os.Getpid()))
	assert.False(t, ProcessAlive(0))
	assert.False(t, ProcessAlive(-1))
	assert.Equal(t, "", ProcessName(0))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
