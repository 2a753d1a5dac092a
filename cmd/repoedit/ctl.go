// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wingedpig/repoedit/pkg/client"
)

func newCloneCmd() *cobra.Command {
	var (
		engine string
		wait   bool
	)

	cmd := &cobra.Command{
		Use:   "clone <repo-url>",
		Short: "Clone a repository on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			resp, err := c.CloneWith(cmd.Context(), args[0], engine)
			if err != nil {
				return err
			}
			return reportStarted(cmd.Context(), cmd.OutOrStdout(), c, resp, wait)
		},
	}
	cmd.Flags().StringVar(&engine, "engine", "", `"script" or "native" (default: server config)`)
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the task to finish and print its output")

	return cmd
}

func newReplaceCmd() *cobra.Command {
	var (
		opts client.ReplaceOptions
		wait bool
	)

	cmd := &cobra.Command{
		Use:   "replace <search> <replacement>",
		Short: "Replace text across the most recently cloned repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			resp, err := c.Replace(cmd.Context(), args[0], args[1], &opts)
			if err != nil {
				return err
			}
			return reportStarted(cmd.Context(), cmd.OutOrStdout(), c, resp, wait)
		},
	}
	cmd.Flags().StringVar(&opts.Engine, "engine", "", `"script" or "native" (default: server config)`)
	cmd.Flags().StringVar(&opts.Mode, "mode", "", `"literal" or "regex" (default: server config)`)
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the task to finish and print its output")

	return cmd
}

func newTasksCmd() *cobra.Command {
	var (
		kind string
		wait bool
	)

	cmd := &cobra.Command{
		Use:   "tasks [id]",
		Short: "List tasks, or show one task with its output",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				tasks, err := c.Tasks.List(cmd.Context(), kind)
				if err != nil {
					return err
				}
				printTasks(out, tasks)
				return nil
			}

			var t *client.Task
			if wait {
				t, err = c.Tasks.Wait(cmd.Context(), args[0])
			} else {
				t, err = c.Tasks.Get(cmd.Context(), args[0], 0)
			}
			if err != nil {
				return err
			}
			printTask(out, t)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", `only list tasks of this kind ("clone" or "replace")`)
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the task to finish")

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a running task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			if err := c.Tasks.Cancel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.YellowString("Canceled"), args[0])
			return nil
		},
	})

	return cmd
}

func newClonePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone-path",
		Short: "Show the most recently cloned repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			cp, err := c.ClonePath(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cp.Path)
			return nil
		},
	}
}

// reportStarted prints the server's reply and, with wait, follows the task
// to completion. A task that does not succeed is returned as an error.
func reportStarted(ctx context.Context, out io.Writer, c *client.Client, resp *client.StatusResponse, wait bool) error {
	msg := resp.Message
	if msg == "" {
		msg = "Started."
	}
	fmt.Fprintf(out, "%s %s\n", color.GreenString(msg), color.New(color.Faint).Sprint(resp.TaskID))
	for _, w := range resp.Warnings {
		fmt.Fprintf(out, "%s %s\n", color.YellowString("warning:"), w)
	}

	if !wait || resp.TaskID == "" {
		return nil
	}

	t, err := c.Tasks.Wait(ctx, resp.TaskID)
	if err != nil {
		return err
	}
	printTask(out, t)
	if t.State != client.StateSuccess {
		return fmt.Errorf("task %s %s", t.ID, t.State)
	}
	return nil
}

func stateColor(state string) func(format string, a ...interface{}) string {
	switch state {
	case client.StateSuccess:
		return color.GreenString
	case client.StateFailed:
		return color.RedString
	case client.StateCanceled:
		return color.YellowString
	default:
		return color.CyanString
	}
}

func printTasks(out io.Writer, tasks []client.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATE\tSTARTED\tSUBJECT")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Kind, stateColor(t.State)("%s", t.State),
			t.StartedAt.Local().Format(time.Kitchen), t.Subject)
	}
	tw.Flush()
}

func printTask(out io.Writer, t *client.Task) {
	fmt.Fprintf(out, "%s %s (%s)\n", t.Kind, t.ID, stateColor(t.State)("%s", t.State))
	fmt.Fprintf(out, "  subject: %s\n", t.Subject)
	if t.Command != "" {
		fmt.Fprintf(out, "  command: %s\n", t.Command)
	}
	if t.Pid != 0 {
		fmt.Fprintf(out, "  pid:     %d (alive: %t)\n", t.Pid, t.ProcessAlive)
	}
	if t.Done() {
		fmt.Fprintf(out, "  took:    %s\n", t.Duration.Round(time.Millisecond))
	}
	if t.Error != "" {
		fmt.Fprintf(out, "  error:   %s\n", color.RedString(t.Error))
	}
	if len(t.Output) > 0 {
		fmt.Fprintln(out)
		if t.Truncated {
			fmt.Fprintln(out, color.New(color.Faint).Sprint("  (earlier output dropped)"))
		}
		for _, line := range t.Output {
			fmt.Fprintln(out, "  "+line)
		}
	}
}
