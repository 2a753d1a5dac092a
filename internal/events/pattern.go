// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"errors"
	"strings"
)

// ErrEmptyPattern is returned when subscribing with an empty pattern.
var ErrEmptyPattern = errors.New("empty pattern")

// Match reports whether an event type matches a subscription pattern.
// Supported forms:
//   - "*" matches everything
//   - "task.*" matches "task.started", "task.finished"
//   - "*.finished" matches "task.finished"
//   - anything else must match exactly
func Match(eventType, pattern string) bool {
	if pattern == "" || eventType == "" {
		return false
	}

	switch {
	case pattern == "*":
		return true
	case pattern == eventType:
		return true
	case strings.HasSuffix(pattern, ".*"):
		return strings.HasPrefix(eventType, strings.TrimSuffix(pattern, "*"))
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(eventType, strings.TrimPrefix(pattern, "*"))
	}
	return false
}

// MatchAny reports whether eventType matches at least one pattern.
func MatchAny(eventType string, patterns []string) bool {
	for _, p := range patterns {
		if Match(eventType, p) {
			return true
		}
	}
	return false
}
