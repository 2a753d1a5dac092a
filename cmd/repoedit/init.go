// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wingedpig/repoedit/internal/config"
)

const configFile = "repoedit.hjson"

func newInitCmd() *cobra.Command {
	var accept bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a repoedit.hjson in the current directory",
		Long: `Create a new repoedit.hjson configuration file in the current directory.

You are asked for the server port, the clone script and the default engines.
Press Enter to accept the defaults shown in [brackets], or pass --yes to
accept them all.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configFile); err == nil {
				return fmt.Errorf("%s already exists; remove it first or use a different directory", configFile)
			}

			in := cmd.InOrStdin()
			if accept {
				in = strings.NewReader("")
			}
			answers := askInit(bufio.NewReader(in), cmd.OutOrStdout())

			if err := os.WriteFile(configFile, []byte(generateConfig(answers)), 0644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%s %s\n", color.GreenString("Created"), configFile)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Review and edit "+configFile+" as needed")
			fmt.Fprintln(out, "  2. Run: repoedit")
			fmt.Fprintln(out, "  3. Open: http://localhost:"+strconv.Itoa(answers.Port))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&accept, "yes", "y", false, "accept all defaults without prompting")

	return cmd
}

type initAnswers struct {
	Port          int
	CloneScript   string
	CloneEngine   string
	ReplaceEngine string
	Backend       string
}

func askInit(reader *bufio.Reader, out io.Writer) initAnswers {
	defaults := config.Defaults()

	a := initAnswers{
		CloneScript:   prompt(reader, out, "Clone script", defaults.Clone.Script),
		CloneEngine:   choose(reader, out, "Clone engine", defaults.Clone.Engine, config.EngineScript, config.EngineNative),
		ReplaceEngine: choose(reader, out, "Replace engine", defaults.Replace.Engine, config.EngineScript, config.EngineNative),
		Backend:       choose(reader, out, "Terminal backend", defaults.Terminal.Backend, config.BackendWindow, config.BackendPTY),
	}
	portStr := prompt(reader, out, "Server port", strconv.Itoa(defaults.Server.Port))
	p, err := strconv.Atoi(portStr)
	if err != nil || p <= 0 || p > 65535 {
		p = defaults.Server.Port
	}
	a.Port = p
	return a
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

// choose prompts until the answer is one of options.
func choose(reader *bufio.Reader, out io.Writer, question, defaultVal string, options ...string) string {
	q := fmt.Sprintf("%s (%s)", question, strings.Join(options, "/"))
	for {
		answer := prompt(reader, out, q, defaultVal)
		for _, o := range options {
			if answer == o {
				return answer
			}
		}
		fmt.Fprintln(out, color.YellowString("  please answer one of: %s", strings.Join(options, ", ")))
	}
}

// escapeHJSONValue escapes a string for safe inclusion in an HJSON double-quoted value.
func escapeHJSONValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

func generateConfig(a initAnswers) string {
	var sb strings.Builder

	sb.WriteString(`{
  // repoedit configuration (HJSON: JSON with comments and relaxed syntax)

  server: {
    // Host to bind to (use "0.0.0.0" to allow remote access)
    host: "127.0.0.1"
    port: `)
	sb.WriteString(strconv.Itoa(a.Port))
	sb.WriteString(`

    // For HTTPS, set a certificate pair or use tailscale:
    // tls_cert: "~/.repoedit/cert.pem"
    // tls_key: "~/.repoedit/key.pem"
    // tailscale_tls: true
  }

  clone: {
    // "script" runs: bash <script> <repo_url> in a terminal
    // "native" clones in-process into dir
    engine: "`)
	sb.WriteString(a.CloneEngine)
	sb.WriteString(`"
    script: "`)
	sb.WriteString(escapeHJSONValue(a.CloneScript))
	sb.WriteString(`"

    // The clone script writes the path of the new clone here
    path_file: "~/clone_store/clone_path.txt"
    dir: "~/clone_store"
  }

  replace: {
    // "script" generates and runs a bash/perl script in a terminal
    // "native" rewrites files in-process
    engine: "`)
	sb.WriteString(a.ReplaceEngine)
	sb.WriteString(`"

    // "literal" or "regex"
    mode: "literal"

    // Globs relative to the repository root (native engine only)
    // include: ["**/*.go", "**/*.md"]
    // exclude: ["vendor/**"]
    workers: 8
  }

  terminal: {
    // "window" opens an OS terminal window, "pty" runs headless
    backend: "`)
	sb.WriteString(a.Backend)
	sb.WriteString(`"
    program: "xterm"
  }

  tasks: {
    retention: "10m"
  }

  logging: {
    level: "info"
    format: "console"
  }
}
`)

	return sb.String()
}
