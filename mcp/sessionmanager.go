// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"fmt"
	"sync"
)

// SessionManager tracks every Session registered with an MCPServer, keyed
// by session ID. MCPServer.NewSession registers sessions into it (subject
// to the capacity), and MCPServer.Broadcast uses it to fan out a
// notification to every session. The streamable HTTP handler does not look
// sessions up here: it resolves the Mcp-Session-Id header through its own
// map of session transports.
type SessionManager struct {
	capacity int // 0 means unlimited

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ErrSessionCapacityExceeded is returned by register when the manager is
// already at capacity.
var ErrSessionCapacityExceeded = fmt.Errorf("mcp: session capacity exceeded")

// NewSessionManager returns a SessionManager admitting at most capacity
// concurrent sessions, or an unlimited number if capacity is 0.
func NewSessionManager(capacity int) *SessionManager {
	return &SessionManager{
		capacity: capacity,
		sessions: make(map[string]*Session),
	}
}

func (m *SessionManager) register(sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capacity > 0 && len(m.sessions) >= m.capacity {
		return ErrSessionCapacityExceeded
	}
	m.sessions[sess.id] = sess
	return nil
}

// Get returns the session registered under id, if any.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Unregister removes the session registered under id and closes it,
// failing any pending server->client calls on it. It is a no-op if id is
// not registered.
func (m *SessionManager) Unregister(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		sess.Close()
	}
}

// List returns a snapshot of every currently registered session.
func (m *SessionManager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Len returns the number of currently registered sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
