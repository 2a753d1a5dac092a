// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package clonepath tracks the filesystem path of the most recently cloned
// repository.
package clonepath

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wingedpig/repoedit/internal/events"
)

// ReadFile returns the trimmed content of the clone path file.
// A missing, unreadable or blank file reports ok=false.
func ReadFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	p := strings.TrimSpace(string(data))
	if p == "" {
		return "", false
	}
	return p, true
}

// Store holds the current clone path. The backing file written by the
// clone script is authoritative; the cached value is used when the file
// cannot be read.
type Store struct {
	mu       sync.RWMutex
	file     string
	current  string
	bus      events.EventBus
	onChange []func(string)
}

// NewStore creates a store backed by file. bus may be nil.
func NewStore(file string, bus events.EventBus) *Store {
	return &Store{file: file, bus: bus}
}

// File returns the backing file path.
func (s *Store) File() string {
	return s.file
}

// Get returns the current clone path.
func (s *Store) Get() (string, bool) {
	if p, ok := ReadFile(s.file); ok {
		s.update(p, "file")
		return p, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != ""
}

// Set records path as the current clone and rewrites the backing file so
// the script engine and other readers agree.
func (s *Store) Set(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("clone path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(s.file), 0755); err != nil {
		return fmt.Errorf("create clone store: %w", err)
	}
	if err := os.WriteFile(s.file, []byte(path+"\n"), 0644); err != nil {
		return fmt.Errorf("write clone path: %w", err)
	}

	s.update(path, "set")
	return nil
}

// Refresh re-reads the backing file and updates the cached value.
func (s *Store) Refresh() (string, bool) {
	p, ok := ReadFile(s.file)
	if ok {
		s.update(p, "file")
	}
	return p, ok
}

// OnChange registers fn to be called with the new path whenever it changes.
func (s *Store) OnChange(fn func(string)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

func (s *Store) update(path, source string) {
	s.mu.Lock()
	if s.current == path {
		s.mu.Unlock()
		return
	}
	previous := s.current
	s.current = path
	callbacks := append([]func(string){}, s.onChange...)
	s.mu.Unlock()

	log.Info().Str("path", path).Str("source", source).Msg("clone path changed")

	if s.bus != nil {
		s.bus.Publish(context.Background(), events.Event{
			Type: events.EventClonePathChanged,
			Repo: path,
			Payload: map[string]interface{}{
				"path":     path,
				"previous": previous,
				"source":   source,
			},
		})
	}
	for _, fn := range callbacks {
		fn(path)
	}
}
