// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrBusClosed is returned when operating on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// ErrSubscriptionNotFound is returned when unsubscribing with an unknown ID.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// MemoryBusConfig configures the memory event bus.
type MemoryBusConfig struct {
	HistoryMaxEvents int
	HistoryMaxAge    time.Duration
}

// MemoryEventBus is an in-memory EventBus.
type MemoryEventBus struct {
	mu            sync.RWMutex
	subscriptions map[SubscriptionID]*subscription
	history       *History
	defaultRepo   string
	closed        atomic.Bool
	wg            sync.WaitGroup
	stopPruner    chan struct{}
}

type subscription struct {
	pattern string
	handler EventHandler
	ch      chan Event    // nil for synchronous subscribers
	stopCh  chan struct{} // closed to stop an async subscriber
}

// NewMemoryEventBus creates a new in-memory event bus.
func NewMemoryEventBus(cfg MemoryBusConfig) *MemoryEventBus {
	bus := &MemoryEventBus{
		subscriptions: make(map[SubscriptionID]*subscription),
		history:       NewHistory(cfg.HistoryMaxEvents, cfg.HistoryMaxAge),
		stopPruner:    make(chan struct{}),
	}

	pruneInterval := bus.history.maxAge / 10
	if pruneInterval < time.Minute {
		pruneInterval = time.Minute
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-bus.stopPruner:
				return
			case <-ticker.C:
				bus.history.Prune()
			}
		}
	}()

	return bus
}

// SetDefaultRepo sets the repo recorded on events that don't name one.
func (bus *MemoryEventBus) SetDefaultRepo(repo string) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.defaultRepo = repo
}

// Publish records the event and delivers it to every matching subscriber.
// Synchronous handlers run on the caller's goroutine; async subscribers
// whose buffer is full miss the event.
func (bus *MemoryEventBus) Publish(ctx context.Context, event Event) error {
	if bus.closed.Load() {
		return ErrBusClosed
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.mu.RLock()
	if event.Repo == "" {
		event.Repo = bus.defaultRepo
	}
	subs := make([]*subscription, 0, len(bus.subscriptions))
	for _, sub := range bus.subscriptions {
		if Match(event.Type, sub.pattern) {
			subs = append(subs, sub)
		}
	}
	bus.mu.RUnlock()

	bus.history.Add(event)

	for _, sub := range subs {
		if sub.ch != nil {
			select {
			case sub.ch <- event:
			default:
				log.Warn().Str("type", event.Type).Msg("event dropped: async subscriber buffer full")
			}
			continue
		}
		callHandler(ctx, sub.handler, event)
	}

	return nil
}

func callHandler(ctx context.Context, handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("type", event.Type).Interface("panic", r).Msg("event handler panic")
		}
	}()
	if err := handler(ctx, event); err != nil {
		log.Debug().Err(err).Str("type", event.Type).Msg("event handler returned error")
	}
}

// Subscribe registers a synchronous handler for events matching pattern.
func (bus *MemoryEventBus) Subscribe(pattern string, handler EventHandler) (SubscriptionID, error) {
	return bus.add(pattern, &subscription{pattern: pattern, handler: handler})
}

// SubscribeAsync registers a handler fed through a buffered channel.
func (bus *MemoryEventBus) SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error) {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	sub := &subscription{
		pattern: pattern,
		handler: handler,
		ch:      make(chan Event, bufferSize),
		stopCh:  make(chan struct{}),
	}
	id, err := bus.add(pattern, sub)
	if err != nil {
		return "", err
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for {
			select {
			case <-sub.stopCh:
				return
			case event := <-sub.ch:
				callHandler(context.Background(), handler, event)
			}
		}
	}()

	return id, nil
}

func (bus *MemoryEventBus) add(pattern string, sub *subscription) (SubscriptionID, error) {
	if bus.closed.Load() {
		return "", ErrBusClosed
	}
	if pattern == "" {
		return "", ErrEmptyPattern
	}

	id := SubscriptionID(uuid.NewString())
	bus.mu.Lock()
	bus.subscriptions[id] = sub
	bus.mu.Unlock()
	return id, nil
}

// Unsubscribe removes a subscription.
func (bus *MemoryEventBus) Unsubscribe(id SubscriptionID) error {
	bus.mu.Lock()
	sub, ok := bus.subscriptions[id]
	if !ok {
		bus.mu.Unlock()
		return ErrSubscriptionNotFound
	}
	delete(bus.subscriptions, id)
	bus.mu.Unlock()

	if sub.stopCh != nil {
		close(sub.stopCh)
	}
	return nil
}

// History retrieves past events matching filter.
func (bus *MemoryEventBus) History(filter EventFilter) ([]Event, error) {
	return bus.history.Query(filter), nil
}

// Close stops the pruner and all async subscribers.
func (bus *MemoryEventBus) Close() error {
	if bus.closed.Swap(true) {
		return nil
	}

	close(bus.stopPruner)

	bus.mu.Lock()
	for id, sub := range bus.subscriptions {
		if sub.stopCh != nil {
			close(sub.stopCh)
		}
		delete(bus.subscriptions, id)
	}
	bus.mu.Unlock()

	bus.wg.Wait()
	return nil
}
