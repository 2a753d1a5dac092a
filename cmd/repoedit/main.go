// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wingedpig/repoedit/internal/app"
	"github.com/wingedpig/repoedit/internal/config"
	"github.com/wingedpig/repoedit/pkg/client"
)

var (
	version = "0.1"
)

// Flags shared by every command.
var (
	configPath string
	host       string
	port       int
	serverURL  string
	debug      bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "repoedit",
		Short: "Clone a repository and search and replace across it",
		Long: `repoedit serves a small web page for cloning a git repository and then
replacing text across every file of the most recent clone.

Run without a subcommand to start the server. The clone, replace and tasks
subcommands talk to a running server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: auto-detect)")
	root.PersistentFlags().StringVar(&host, "host", "", "HTTP server host (overrides config)")
	root.PersistentFlags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "server URL for client commands (default: from config)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the web server (default)",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newInitCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "repoedit %s\n", version)
			},
		},
		newCloneCmd(),
		newReplaceCmd(),
		newTasksCmd(),
		newClonePathCmd(),
	)

	return root
}

// resolveConfig returns the config file to use: the --config flag, or the
// first repoedit.* file in the working directory, or "" for defaults.
func resolveConfig() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return config.NewLoader().FindConfig(cwd)
}

func runServe(cmd *cobra.Command, args []string) error {
	path, err := resolveConfig()
	if err != nil {
		return err
	}

	application, err := app.New(app.Options{
		ConfigPath: path,
		Host:       host,
		Port:       port,
		Debug:      debug,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	return application.Run(cmd.Context())
}

// newClient builds an API client for the server named by --server, or by
// the configured host and port.
func newClient(cmd *cobra.Command) (*client.Client, error) {
	if serverURL != "" {
		return client.New(serverURL), nil
	}

	path, err := resolveConfig()
	if err != nil {
		return nil, err
	}
	cfg, err := config.NewLoader().LoadWithDefaults(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	return client.New(baseURL(cfg.Server)), nil
}

func baseURL(s config.ServerConfig) string {
	scheme := "http"
	if s.TLSCert != "" || s.TailscaleTLS {
		scheme = "https"
	}
	h := s.Host
	if h == "" || h == "0.0.0.0" || h == "::" {
		h = "localhost"
	}
	return scheme + "://" + net.JoinHostPort(h, strconv.Itoa(s.Port))
}
