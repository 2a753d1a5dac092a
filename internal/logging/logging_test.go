// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"encoding/json"
	stdlog "log"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/repoedit/internal/config"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(config.LoggingConfig{Level: "info", Format: "json"}, &buf))

	log.Debug().Msg("hidden")
	log.Info().Str("task", "abc").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "abc", entry["task"])
	assert.Equal(t, "info", entry["level"])
}

func TestSetup_RedirectsStdlib(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(config.LoggingConfig{Level: "debug", Format: "json"}, &buf))

	stdlog.Print("from stdlib")

	assert.Contains(t, buf.String(), "from stdlib")
	assert.Contains(t, buf.String(), `"source":"stdlib"`)
}

func TestSetup_BadLevel(t *testing.T) {
	err := Setup(config.LoggingConfig{Level: "loud", Format: "json"}, &bytes.Buffer{})
	assert.Error(t, err)
}
