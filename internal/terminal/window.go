// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrEmptyCommand is returned when launching a command with no program.
var ErrEmptyCommand = errors.New("empty command")

// WindowLauncher opens a new terminal window per command.
type WindowLauncher struct {
	goos    string
	program string
}

// NewWindowLauncher creates a launcher for the current OS. program is the
// terminal emulator used on Unix-like systems (e.g. "xterm").
func NewWindowLauncher(program string) *WindowLauncher {
	return NewWindowLauncherFor(runtime.GOOS, program)
}

// NewWindowLauncherFor creates a launcher for the given GOOS.
func NewWindowLauncherFor(goos, program string) *WindowLauncher {
	if program == "" {
		program = "xterm"
	}
	return &WindowLauncher{goos: goos, program: program}
}

// Argv returns the argument vector that opens a window running cmd.
func (l *WindowLauncher) Argv(cmd Command) []string {
	switch l.goos {
	case "windows":
		return []string{"cmd", "/c", "start", "cmd", "/c", cmd.String()}
	case "darwin":
		script := fmt.Sprintf(`tell application "Terminal" to do script "%s"`, escapeAppleScript(cmd.String()))
		return []string{"osascript", "-e", script}
	default:
		return append([]string{l.program, "-e"}, cmd.Args...)
	}
}

// Launch opens the window. On Unix-like systems the returned process is the
// terminal emulator itself, so Wait returns when the window closes.
func (l *WindowLauncher) Launch(ctx context.Context, cmd Command, out io.Writer) (Process, error) {
	if cmd.Empty() {
		return nil, ErrEmptyCommand
	}

	argv := l.Argv(cmd)
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Stdout = out
	c.Stderr = out

	log.Debug().Strs("argv", argv).Str("command", cmd.String()).Msg("opening terminal window")

	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	return &execProcess{cmd: c}, nil
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}
