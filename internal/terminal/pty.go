// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"github.com/rs/zerolog/log"
)

// PTYLauncher runs commands headless under a pseudo terminal and copies
// their output to the caller. Used where no desktop terminal is available.
type PTYLauncher struct {
	Env []string // Extra environment, appended to os.Environ()
}

// NewPTYLauncher creates a PTY launcher.
func NewPTYLauncher() *PTYLauncher {
	return &PTYLauncher{}
}

// Launch starts cmd under a PTY.
func (l *PTYLauncher) Launch(ctx context.Context, cmd Command, out io.Writer) (Process, error) {
	if cmd.Empty() {
		return nil, ErrEmptyCommand
	}
	if out == nil {
		out = io.Discard
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Env = append(os.Environ(), "TERM=xterm-256color")
	c.Env = append(c.Env, l.Env...)

	ptmx, err := pty.Start(c)
	if err != nil {
		return nil, fmt.Errorf("start pty: %w", err)
	}

	log.Debug().Str("command", cmd.String()).Int("pid", c.Process.Pid).Msg("started pty command")

	p := &ptyProcess{cmd: c, ptmx: ptmx, copied: make(chan struct{})}
	go func() {
		defer close(p.copied)
		// Returns EIO once the child side closes.
		io.Copy(out, ptmx)
	}()
	return p, nil
}

type ptyProcess struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	copied chan struct{}
}

func (p *ptyProcess) Pid() int {
	return p.cmd.Process.Pid
}

// Wait waits for the program and for its output to drain.
func (p *ptyProcess) Wait() error {
	err := p.cmd.Wait()
	<-p.copied
	p.ptmx.Close()
	return err
}
