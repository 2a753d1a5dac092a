// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"bytes"
	"fmt"
	"strings"
)

// Handle is passed to a running Func. It is an io.Writer that splits what
// it receives into output lines.
type Handle struct {
	t       *task
	partial bytes.Buffer // guarded by t.mu
}

// Write appends output, emitting one line per newline seen.
func (h *Handle) Write(p []byte) (int, error) {
	h.t.mu.Lock()
	h.partial.Write(p)
	var lines []string
	for {
		data := h.partial.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, strings.TrimRight(string(data[:i]), "\r"))
		h.partial.Next(i + 1)
	}
	h.t.mu.Unlock()

	for _, line := range lines {
		h.t.appendLine(line)
	}
	return len(p), nil
}

// Printf writes a formatted line.
func (h *Handle) Printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	h.Write([]byte(line))
}

// SetCommand records the command line the task launched.
func (h *Handle) SetCommand(cmd string) {
	h.t.mu.Lock()
	h.t.status.Command = cmd
	h.t.mu.Unlock()
}

// SetPid records the pid of the process the task launched.
func (h *Handle) SetPid(pid int) {
	h.t.mu.Lock()
	h.t.status.Pid = pid
	h.t.mu.Unlock()
}

// SetResult attaches a structured result to the task.
func (h *Handle) SetResult(result interface{}) {
	h.t.mu.Lock()
	h.t.status.Result = result
	h.t.mu.Unlock()
}

// flush emits any trailing output that did not end in a newline.
func (h *Handle) flush() {
	h.t.mu.Lock()
	rest := strings.TrimRight(h.partial.String(), "\r")
	h.partial.Reset()
	h.t.mu.Unlock()

	if rest != "" {
		h.t.appendLine(rest)
	}
}
