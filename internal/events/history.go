// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"sync"
	"time"
)

const (
	defaultHistoryMaxEvents = 1000
	defaultHistoryMaxAge    = time.Hour
)

// History is a bounded, time-ordered event log.
type History struct {
	mu        sync.RWMutex
	events    []Event
	maxEvents int
	maxAge    time.Duration
	now       func() time.Time
}

// NewHistory creates an event history. Zero limits fall back to defaults.
func NewHistory(maxEvents int, maxAge time.Duration) *History {
	if maxEvents <= 0 {
		maxEvents = defaultHistoryMaxEvents
	}
	if maxAge <= 0 {
		maxAge = defaultHistoryMaxAge
	}
	return &History{
		maxEvents: maxEvents,
		maxAge:    maxAge,
		now:       time.Now,
	}
}

// Add appends an event, dropping the oldest once maxEvents is exceeded.
// Events are published in timestamp order so the slice stays sorted.
func (h *History) Add(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, event)
	if len(h.events) > h.maxEvents {
		h.events = append([]Event(nil), h.events[len(h.events)-h.maxEvents:]...)
	}
}

// Query returns events matching filter, oldest first.
func (h *History) Query(filter EventFilter) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Event, 0)
	for _, event := range h.events {
		if len(filter.Types) > 0 && !MatchAny(event.Type, filter.Types) {
			continue
		}
		if filter.Repo != "" && event.Repo != filter.Repo {
			continue
		}
		if !filter.Since.IsZero() && event.Timestamp.Before(filter.Since) {
			continue
		}
		result = append(result, event)
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result
}

// Prune drops events older than maxAge.
func (h *History) Prune() {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-h.maxAge)
	i := 0
	for i < len(h.events) && h.events[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		h.events = append([]Event(nil), h.events[i:]...)
	}
}

// Len returns the number of retained events.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}
