// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package eventstore provides the resumable-event buffer the Streamable
// HTTP transport uses to replay missed SSE messages after a client
// reconnects with a Last-Event-Id header.
package eventstore

import (
	"errors"
	"time"
)

// ErrEventNotFound is returned by ReplayEventsAfter when the given event
// ID is unknown to the store (evicted, never stored, or malformed).
var ErrEventNotFound = errors.New("eventstore: event not found")

// StoredEvent is a single buffered SSE payload. A zero-length Payload
// marks a priming event: it exists only to seed a resumable ID at stream
// open and is never replayed as a message.
type StoredEvent struct {
	ID        string
	StreamID  string
	Payload   []byte
	Timestamp time.Time
}

// IsPriming reports whether e is a priming event.
func (e StoredEvent) IsPriming() bool { return len(e.Payload) == 0 }

// Store is the resumable-event contract §4.1 describes. Implementations
// own their own locking; callers never reach into a Store's internals.
type Store interface {
	// StoreEvent assigns a fresh event ID, appends payload to streamID,
	// and returns the new ID. When the stream already holds the
	// configured per-stream cap, the oldest event on that stream is
	// evicted first.
	StoreEvent(streamID string, payload []byte) (eventID string, err error)

	// StreamIDForEventID resolves the stream an event belongs to. It
	// reports ok=false if the event is unknown.
	StreamIDForEventID(eventID string) (streamID string, ok bool)

	// ReplayEventsAfter locates eventID, then invokes emit, in
	// store-insertion order, for every later event on the same stream,
	// skipping priming events. It returns the stream ID the event
	// belonged to, or ErrEventNotFound if eventID is unknown.
	ReplayEventsAfter(eventID string, emit func(StoredEvent)) (streamID string, err error)

	// RemoveEvents discards every event buffered for streamID.
	RemoveEvents(streamID string)

	// CleanUp discards every event older than olderThan.
	CleanUp(olderThan time.Duration)

	// Clear discards every event in the store.
	Clear()
}
