// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eventstore

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store bounded by maxEventsPerStream events
// per stream. It is safe for concurrent use.
type MemoryStore struct {
	maxEventsPerStream int

	mu      sync.RWMutex
	streams map[string]*list.List    // streamID -> *list.List of *StoredEvent, oldest first
	index   map[string]*list.Element // eventID -> element within its stream's list
}

// NewMemoryStore returns a MemoryStore that retains at most
// maxEventsPerStream events per stream, as required by §4.1's invariant
// that the cap is always positive.
func NewMemoryStore(maxEventsPerStream int) *MemoryStore {
	if maxEventsPerStream <= 0 {
		maxEventsPerStream = 1
	}
	return &MemoryStore{
		maxEventsPerStream: maxEventsPerStream,
		streams:            make(map[string]*list.List),
		index:              make(map[string]*list.Element),
	}
}

// StoreEvent implements Store.
func (s *MemoryStore) StoreEvent(streamID string, payload []byte) (string, error) {
	if streamID == "" {
		return "", fmt.Errorf("eventstore: streamID must not be empty")
	}
	id := newEventID(streamID)

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.streams[streamID]
	if !ok {
		l = list.New()
		s.streams[streamID] = l
	}
	ev := &StoredEvent{ID: id, StreamID: streamID, Payload: payload, Timestamp: timeNow()}
	elem := l.PushBack(ev)
	s.index[id] = elem

	if l.Len() > s.maxEventsPerStream {
		oldest := l.Front()
		s.evictElement(l, oldest)
	}
	return id, nil
}

// evictElement removes elem from l and from both indexes. Callers must
// hold s.mu for writing.
func (s *MemoryStore) evictElement(l *list.List, elem *list.Element) {
	ev := elem.Value.(*StoredEvent)
	delete(s.index, ev.ID)
	l.Remove(elem)
}

// StreamIDForEventID implements Store.
func (s *MemoryStore) StreamIDForEventID(eventID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	elem, ok := s.index[eventID]
	if !ok {
		return "", false
	}
	return elem.Value.(*StoredEvent).StreamID, true
}

// ReplayEventsAfter implements Store.
func (s *MemoryStore) ReplayEventsAfter(eventID string, emit func(StoredEvent)) (string, error) {
	s.mu.RLock()
	elem, ok := s.index[eventID]
	if !ok {
		s.mu.RUnlock()
		return "", ErrEventNotFound
	}
	streamID := elem.Value.(*StoredEvent).StreamID

	// Collect the tail under the lock, then emit outside it: emit may be
	// a slow SSE write and must never block StoreEvent on another
	// goroutine.
	var tail []StoredEvent
	for cur := elem.Next(); cur != nil; cur = cur.Next() {
		ev := *cur.Value.(*StoredEvent)
		if ev.IsPriming() {
			continue
		}
		tail = append(tail, ev)
	}
	s.mu.RUnlock()

	for _, ev := range tail {
		emit(ev)
	}
	return streamID, nil
}

// RemoveEvents implements Store.
func (s *MemoryStore) RemoveEvents(streamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.streams[streamID]
	if !ok {
		return
	}
	for elem := l.Front(); elem != nil; {
		next := elem.Next()
		ev := elem.Value.(*StoredEvent)
		delete(s.index, ev.ID)
		elem = next
	}
	delete(s.streams, streamID)
}

// CleanUp implements Store.
func (s *MemoryStore) CleanUp(olderThan time.Duration) {
	cutoff := timeNow().Add(-olderThan)
	s.mu.Lock()
	defer s.mu.Unlock()
	for streamID, l := range s.streams {
		for elem := l.Front(); elem != nil; {
			next := elem.Next()
			ev := elem.Value.(*StoredEvent)
			if ev.Timestamp.Before(cutoff) {
				s.evictElement(l, elem)
			}
			elem = next
		}
		if l.Len() == 0 {
			delete(s.streams, streamID)
		}
	}
}

// Clear implements Store.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams = make(map[string]*list.List)
	s.index = make(map[string]*list.Element)
}

// newEventID mints an opaque event ID of the shape
// "{streamID}_{timestampMs}_{randomHex}" suggested by §4.1: the stream ID
// is embedded so a store could recover it by parsing alone, though
// MemoryStore always resolves it through the index instead.
func newEventID(streamID string) string {
	return fmt.Sprintf("%s_%d_%s", streamID, timeNow().UnixMilli(), uuid.NewString()[:8])
}

// timeNow is a var so tests can fake the clock for CleanUp.
var timeNow = time.Now
