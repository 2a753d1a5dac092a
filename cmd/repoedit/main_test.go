// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/repoedit/internal/config"
)

func TestGenerateConfig_Loads(t *testing.T) {
	a := initAnswers{
		Port:          5050,
		CloneScript:   `scripts/"odd".sh`,
		CloneEngine:   config.EngineNative,
		ReplaceEngine: config.EngineScript,
		Backend:       config.BackendPTY,
	}

	path := filepath.Join(t.TempDir(), configFile)
	require.NoError(t, os.WriteFile(path, []byte(generateConfig(a)), 0644))

	cfg, err := config.NewLoader().LoadWithDefaults(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, config.NewValidator().Validate(cfg))

	assert.Equal(t, 5050, cfg.Server.Port)
	assert.Equal(t, `scripts/"odd".sh`, cfg.Clone.Script)
	assert.Equal(t, config.EngineNative, cfg.Clone.Engine)
	assert.Equal(t, config.BackendPTY, cfg.Terminal.Backend)
	assert.Equal(t, config.ModeLiteral, cfg.Replace.Mode)
}

func TestAskInit(t *testing.T) {
	// Empty answers take defaults; an invalid choice is asked again.
	in := bufio.NewReader(strings.NewReader("\nbogus\nnative\n\npty\n7000\n"))
	var out bytes.Buffer

	a := askInit(in, &out)

	assert.Equal(t, "process_repo.sh", a.CloneScript)
	assert.Equal(t, config.EngineNative, a.CloneEngine)
	assert.Equal(t, config.EngineScript, a.ReplaceEngine)
	assert.Equal(t, config.BackendPTY, a.Backend)
	assert.Equal(t, 7000, a.Port)
	assert.Contains(t, out.String(), "please answer one of")
}

func TestAskInit_BadPort(t *testing.T) {
	a := askInit(bufio.NewReader(strings.NewReader("\n\n\n\nhttp\n")), &bytes.Buffer{})
	assert.Equal(t, 5000, a.Port)
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServerConfig
		want string
	}{
		{"loopback", config.ServerConfig{Host: "127.0.0.1", Port: 5000}, "http://127.0.0.1:5000"},
		{"wildcard", config.ServerConfig{Host: "0.0.0.0", Port: 80}, "http://localhost:80"},
		{"tls", config.ServerConfig{Host: "box", Port: 443, TLSCert: "c", TLSKey: "k"}, "https://box:443"},
		{"tailscale", config.ServerConfig{Host: "box", Port: 443, TailscaleTLS: true}, "https://box:443"},
		{"ipv6", config.ServerConfig{Host: "::1", Port: 5000}, "http://[::1]:5000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, baseURL(tt.cfg))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "repoedit "+version+"\n", out.String())
}
