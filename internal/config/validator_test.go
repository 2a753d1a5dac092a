// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Defaults(t *testing.T) {
	assert.NoError(t, NewValidator().Validate(Defaults()))
}

func TestValidator_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		field  string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"cert without key", func(c *Config) { c.Server.TLSCert = "cert.pem" }, "server.tls_cert"},
		{"tailscale with files", func(c *Config) {
			c.Server.TLSCert = "cert.pem"
			c.Server.TLSKey = "key.pem"
			c.Server.TailscaleTLS = true
		}, "server.tailscale_tls"},
		{"unknown clone engine", func(c *Config) { c.Clone.Engine = "svn" }, "clone.engine"},
		{"unknown replace engine", func(c *Config) { c.Replace.Engine = "sed" }, "replace.engine"},
		{"unknown mode", func(c *Config) { c.Replace.Mode = "fuzzy" }, "replace.mode"},
		{"no workers", func(c *Config) { c.Replace.Workers = -1 }, "replace.workers"},
		{"bad include glob", func(c *Config) { c.Replace.Include = []string{"src/[a-"} }, "replace.include[0]"},
		{"bad exclude glob", func(c *Config) { c.Replace.Exclude = []string{"{a,b"} }, "replace.exclude[0]"},
		{"unknown backend", func(c *Config) { c.Terminal.Backend = "tmux" }, "terminal.backend"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad retention", func(c *Config) { c.Tasks.Retention = "soon" }, "tasks.retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := NewValidator().Validate(cfg)
			require.Error(t, err)

			verr, ok := err.(*ValidationError)
			require.True(t, ok)
			var fields []string
			for _, fe := range verr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	errs := &ValidationError{}
	assert.True(t, errs.IsEmpty())

	errs.Add("a", "first")
	errs.Add("b", "second")
	assert.False(t, errs.IsEmpty())
	assert.Equal(t, "a: first; b: second", errs.Error())
}
