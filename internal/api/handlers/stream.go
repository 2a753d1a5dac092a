// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamConn is a server-push websocket. Clients only ever read; anything
// they send is discarded and a read error ends the stream.
type streamConn struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla/websocket allows one concurrent writer
	done chan struct{}
}

func openStream(w http.ResponseWriter, r *http.Request) (*streamConn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	s := &streamConn{conn: conn, done: make(chan struct{})}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go s.readLoop()
	go s.pingLoop()
	return s, nil
}

func (s *streamConn) readLoop() {
	defer close(s.done)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *streamConn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second))
			s.mu.Unlock()
			if err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// Done is closed once the client goes away.
func (s *streamConn) Done() <-chan struct{} {
	return s.done
}

func (s *streamConn) send(msg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

// finish sends a normal close frame before the connection is dropped.
func (s *streamConn) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (s *streamConn) Close() error {
	return s.conn.Close()
}
