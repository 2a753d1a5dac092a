// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wingedpig/repoedit/internal/events"
)

// eventBuffer is how many events a slow websocket client may lag behind
// before newer ones are dropped.
const eventBuffer = 100

// EventHandler serves the task and clone-path event history.
type EventHandler struct {
	bus events.EventBus
}

// NewEventHandler creates a new event handler.
func NewEventHandler(bus events.EventBus) *EventHandler {
	return &EventHandler{bus: bus}
}

// parseEventFilter reads type (repeatable), repo, limit and since.
func parseEventFilter(q url.Values) (events.EventFilter, error) {
	filter := events.EventFilter{
		Types: q["type"],
		Repo:  q.Get("repo"),
	}
	for _, p := range filter.Types {
		if p == "" {
			return filter, fmt.Errorf("empty type pattern")
		}
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid limit %q", s)
		}
		filter.Limit = n
	}
	if s := q.Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, fmt.Errorf("invalid since %q: want RFC 3339", s)
		}
		filter.Since = t
	}
	return filter, nil
}

// History returns recorded events, oldest first.
func (h *EventHandler) History(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r.URL.Query())
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}

	list, err := h.bus.History(filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// WebSocket pushes live events matching ?type= (default all), narrowed to
// ?repo= when given.
func (h *EventHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r.URL.Query())
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}
	pattern := "*"
	if len(filter.Types) == 1 {
		pattern = filter.Types[0]
	}

	stream, err := openStream(w, r)
	if err != nil {
		log.Warn().Err(err).Msg("event stream: upgrade failed")
		return
	}
	defer stream.Close()

	eventCh := make(chan events.Event, eventBuffer)
	subID, err := h.bus.SubscribeAsync(pattern, func(_ context.Context, ev events.Event) error {
		if len(filter.Types) > 1 && !events.MatchAny(ev.Type, filter.Types) {
			return nil
		}
		if filter.Repo != "" && ev.Repo != filter.Repo {
			return nil
		}
		select {
		case eventCh <- ev:
		case <-stream.Done():
		default:
		}
		return nil
	}, eventBuffer)
	if err != nil {
		stream.send(map[string]string{"error": err.Error()})
		return
	}
	defer h.bus.Unsubscribe(subID)

	for {
		select {
		case ev := <-eventCh:
			if err := stream.send(ev); err != nil {
				return
			}
		case <-stream.Done():
			return
		}
	}
}
