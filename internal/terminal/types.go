// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package terminal launches commands in OS terminal windows or headless PTYs.
package terminal

import (
	"context"
	"io"
	"strings"
)

// Command is a program and its arguments.
type Command struct {
	Args []string
}

// NewCommand builds a command from a program and its arguments.
func NewCommand(program string, args ...string) Command {
	return Command{Args: append([]string{program}, args...)}
}

// String returns the arguments joined by single spaces. No quoting is
// applied; this is the literal command line shown to users.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Empty reports whether the command has no program.
func (c Command) Empty() bool {
	return len(c.Args) == 0 || c.Args[0] == ""
}

// Process is a handle to a launched command.
type Process interface {
	// Pid returns the OS process id of the launched program.
	Pid() int
	// Wait blocks until the program exits.
	Wait() error
}

// Launcher starts commands without waiting for them.
type Launcher interface {
	// Launch starts cmd. Output the launcher can observe is copied to out.
	// Cancelling ctx kills the launched program.
	Launch(ctx context.Context, cmd Command, out io.Writer) (Process, error)
}
