// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events provides the in-process event bus for repoedit.
package events

import (
	"context"
	"time"
)

// Event represents an immutable event record.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Repo      string                 `json:"repo,omitempty"` // Clone path the event relates to
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventHandler processes received events.
type EventHandler func(ctx context.Context, event Event) error

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID string

// EventFilter for querying event history.
type EventFilter struct {
	Types []string  // Event types to match (supports wildcards)
	Repo  string    // Filter by repository path
	Since time.Time // Events after this time
	Limit int       // Maximum events to return (newest kept)
}

// EventBus is the pub/sub interface used by the task manager and handlers.
type EventBus interface {
	// Publish emits an event to all matching subscribers.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a synchronous handler for events matching pattern.
	Subscribe(pattern string, handler EventHandler) (SubscriptionID, error)

	// SubscribeAsync registers a handler fed through a buffered channel.
	SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History retrieves past events matching filter.
	History(filter EventFilter) ([]Event, error)

	// SetDefaultRepo sets the repo recorded on events that don't name one.
	SetDefaultRepo(repo string)

	// Close shuts down the event bus.
	Close() error
}

// Event types
const (
	EventTaskStarted  = "task.started"
	EventTaskFinished = "task.finished"

	EventClonePathChanged = "clone.path_changed"
)
