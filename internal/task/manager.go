// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wingedpig/repoedit/internal/events"
	"github.com/wingedpig/repoedit/internal/terminal"
)

const (
	defaultRetention      = 10 * time.Minute
	defaultMaxOutputLines = 2000
	pruneInterval         = 10 * time.Second
)

// Manager runs and tracks tasks.
type Manager struct {
	mu        sync.RWMutex
	tasks     map[string]*task
	bus       events.EventBus
	retention time.Duration
	maxLines  int
	closed    bool
	done      chan struct{}
	wg        sync.WaitGroup
	now       func() time.Time
}

type task struct {
	mu          sync.RWMutex
	status      Status
	cancel      context.CancelFunc
	finished    chan struct{}
	subscribers map[chan<- Update]struct{}
	maxLines    int
}

// NewManager creates a task manager. bus may be nil.
func NewManager(cfg Config, bus events.EventBus) *Manager {
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	if cfg.MaxOutputLines <= 0 {
		cfg.MaxOutputLines = defaultMaxOutputLines
	}

	m := &Manager{
		tasks:     make(map[string]*task),
		bus:       bus,
		retention: cfg.Retention,
		maxLines:  cfg.MaxOutputLines,
		done:      make(chan struct{}),
		now:       time.Now,
	}

	m.wg.Add(1)
	go m.pruneLoop()

	return m
}

// Start runs fn in the background and returns the initial status.
// The task context is detached from ctx so the task outlives the request
// that started it; it is cancelled by Cancel or Close.
func (m *Manager) Start(ctx context.Context, kind Kind, subject string, fn Func) (*Status, error) {
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	t := &task{
		status: Status{
			ID:        uuid.NewString(),
			Kind:      kind,
			Subject:   subject,
			State:     StateRunning,
			StartedAt: m.now(),
		},
		cancel:      cancel,
		finished:    make(chan struct{}),
		subscribers: make(map[chan<- Update]struct{}),
		maxLines:    m.maxLines,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	m.tasks[t.status.ID] = t
	m.wg.Add(1)
	m.mu.Unlock()

	initial := t.snapshot(false)

	log.Info().Str("task", initial.ID).Str("kind", string(kind)).Str("subject", subject).Msg("task started")
	m.publish(events.EventTaskStarted, initial)

	go func() {
		defer m.wg.Done()
		defer cancel()
		m.run(taskCtx, t, fn)
	}()

	return &initial, nil
}

func (m *Manager) run(ctx context.Context, t *task, fn Func) {
	h := &Handle{t: t}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		return fn(ctx, h)
	}()
	h.flush()

	t.mu.Lock()
	t.status.FinishedAt = m.now()
	t.status.Duration = t.status.FinishedAt.Sub(t.status.StartedAt)
	switch {
	case err == nil:
		t.status.State = StateSuccess
	case errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled:
		t.status.State = StateCanceled
		t.status.Error = "canceled"
	default:
		t.status.State = StateFailed
		t.status.Error = err.Error()
	}
	t.mu.Unlock()

	final := t.snapshot(true)
	if err != nil {
		log.Warn().Str("task", final.ID).Str("state", string(final.State)).Err(err).Msg("task finished")
	} else {
		log.Info().Str("task", final.ID).Dur("duration", final.Duration).Msg("task finished")
	}
	m.publish(events.EventTaskFinished, final)

	t.notifyDone(&final)
	close(t.finished)
}

func (m *Manager) publish(eventType string, s Status) {
	if m.bus == nil {
		return
	}
	payload := map[string]interface{}{
		"task_id": s.ID,
		"kind":    string(s.Kind),
		"subject": s.Subject,
		"state":   string(s.State),
	}
	if s.Error != "" {
		payload["error"] = s.Error
	}
	if err := m.bus.Publish(context.Background(), events.Event{Type: eventType, Payload: payload}); err != nil {
		log.Debug().Err(err).Str("type", eventType).Msg("publish task event")
	}
}

// Get returns a snapshot of a task, including its output.
func (m *Manager) Get(id string) (*Status, bool) {
	t, ok := m.lookup(id)
	if !ok {
		return nil, false
	}
	s := t.snapshot(true)
	return &s, true
}

// List returns every tracked task, newest first, without output.
func (m *Manager) List() []Status {
	m.mu.RLock()
	tasks := make([]*task, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, t)
	}
	m.mu.RUnlock()

	result := make([]Status, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, t.snapshot(false))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	return result
}

// Cancel cancels a running task.
func (m *Manager) Cancel(id string) error {
	t, ok := m.lookup(id)
	if !ok {
		return ErrNotFound
	}
	t.cancel()
	return nil
}

// Wait blocks until the task finishes or ctx is done.
func (m *Manager) Wait(ctx context.Context, id string) (*Status, error) {
	t, ok := m.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	select {
	case <-t.finished:
		s := t.snapshot(true)
		return &s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Subscribe registers ch for output updates. If the task already finished,
// ch immediately receives the final update.
func (m *Manager) Subscribe(id string, ch chan<- Update) error {
	t, ok := m.lookup(id)
	if !ok {
		return ErrNotFound
	}

	t.mu.Lock()
	if t.status.State.Done() {
		t.mu.Unlock()
		final := t.snapshot(true)
		select {
		case ch <- Update{TaskID: id, Done: true, Status: &final}:
		default:
		}
		return nil
	}
	t.subscribers[ch] = struct{}{}
	t.mu.Unlock()
	return nil
}

// Unsubscribe removes ch from a task's subscribers.
func (m *Manager) Unsubscribe(id string, ch chan<- Update) {
	t, ok := m.lookup(id)
	if !ok {
		return
	}
	t.mu.Lock()
	delete(t.subscribers, ch)
	t.mu.Unlock()
}

// Close cancels all running tasks and waits for them to return.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.done)
	for _, t := range m.tasks {
		t.cancel()
	}
	m.mu.Unlock()

	m.wg.Wait()
	return nil
}

// Prune drops finished tasks older than the retention period.
func (m *Manager) Prune() {
	cutoff := m.now().Add(-m.retention)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tasks {
		t.mu.RLock()
		expired := t.status.State.Done() && t.status.FinishedAt.Before(cutoff)
		t.mu.RUnlock()
		if expired {
			delete(m.tasks, id)
		}
	}
}

func (m *Manager) pruneLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}

func (m *Manager) lookup(id string) (*task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	return t, ok
}

func (t *task) snapshot(withOutput bool) Status {
	t.mu.RLock()
	s := t.status
	if withOutput {
		s.Output = append([]string(nil), t.status.Output...)
	} else {
		s.Output = nil
	}
	t.mu.RUnlock()

	if s.State == StateRunning && s.Pid > 0 {
		s.ProcessAlive = terminal.ProcessAlive(s.Pid)
	}
	return s
}

func (t *task) appendLine(line string) {
	t.mu.Lock()
	t.status.Output = append(t.status.Output, line)
	if over := len(t.status.Output) - t.maxLines; over > 0 {
		t.status.Output = append([]string(nil), t.status.Output[over:]...)
		t.status.Truncated = true
	}
	subs := make([]chan<- Update, 0, len(t.subscribers))
	for ch := range t.subscribers {
		subs = append(subs, ch)
	}
	id := t.status.ID
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- Update{TaskID: id, Line: line}:
		default:
			// Slow subscriber; the full output stays available via Get.
		}
	}
}

func (t *task) notifyDone(final *Status) {
	t.mu.Lock()
	subs := make([]chan<- Update, 0, len(t.subscribers))
	for ch := range t.subscribers {
		subs = append(subs, ch)
	}
	t.subscribers = make(map[chan<- Update]struct{})
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- Update{TaskID: final.ID, Done: true, Status: final}:
		case <-time.After(time.Second):
			log.Warn().Str("task", final.ID).Msg("subscriber did not take final update")
		}
	}
}
