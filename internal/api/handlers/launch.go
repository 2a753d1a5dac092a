// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wingedpig/repoedit/internal/task"
	"github.com/wingedpig/repoedit/internal/terminal"
)

// launchTask returns a task body that runs cmd through l and waits for
// the launched program to exit.
func launchTask(l terminal.Launcher, cmd terminal.Command) task.Func {
	return func(ctx context.Context, h *task.Handle) error {
		h.SetCommand(cmd.String())
		log.Debug().Str("command", cmd.String()).Msg("executing command")

		proc, err := l.Launch(ctx, cmd, h)
		if err != nil {
			return fmt.Errorf("launch terminal: %w", err)
		}
		h.SetPid(proc.Pid())
		log.Debug().Int("pid", proc.Pid()).Str("process", terminal.ProcessName(proc.Pid())).Msg("command launched")

		if err := proc.Wait(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("command exited: %w", err)
		}
		return nil
	}
}
