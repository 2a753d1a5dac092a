// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package terminal

import (
	ps "github.com/mitchellh/go-ps"
)

// ProcessAlive reports whether a process with the given pid exists.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := ps.FindProcess(pid)
	return err == nil && p != nil
}

// ProcessName returns the executable name of pid, or "" if it is gone.
func ProcessName(pid int) string {
	if pid <= 0 {
		return ""
	}
	p, err := ps.FindProcess(pid)
	if err != nil || p == nil {
		return ""
	}
	return p.Executable()
}
