// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package streamablehttp implements the server side of MCP's Streamable
// HTTP transport: a single HTTP endpoint accepting POST (client
// messages), GET (an optional standalone SSE stream for server-initiated
// traffic), and DELETE (explicit session termination), with resumable
// replay of missed SSE messages via Last-Event-Id.
package streamablehttp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/promptping-ai/swift-mcp-sub003/eventstore"
	internaljson "github.com/promptping-ai/swift-mcp-sub003/internal/json"
	"github.com/promptping-ai/swift-mcp-sub003/jsonrpc"
	"github.com/promptping-ai/swift-mcp-sub003/mcp"
)

// defaultStreamID is the logical stream server-initiated traffic rides on
// when it isn't a reply within some client POST's own stream: the
// standalone GET stream, or a notification/request sent outside the
// handling of any particular client request (a broadcast, for instance).
const defaultStreamID = "_GET_stream"

// sessionTransport implements mcp.Transport for a single Streamable HTTP
// session. It owns an eventstore.Store recording every frame the server
// sends, keyed by logical stream, so that a reconnecting GET with
// Last-Event-Id can replay exactly what it missed; and it tracks which
// stream an in-flight client request's reply belongs to, so a captured
// POST connection receives its own response (and any progress
// notifications sent while it's handled) without the session engine
// needing to know anything about HTTP or SSE.
type sessionTransport struct {
	id      string
	session *mcp.Session
	store   eventstore.Store

	nextPostStream atomic.Int64

	mu             sync.Mutex
	closed         bool
	streamForReq   map[string]string              // requestIDKey -> streamID
	pendingByState map[string]map[string]bool     // streamID -> set of requestIDKey awaiting a response
	waiters        map[string]chan struct{}       // streamID -> signal, present while an HTTP response is tailing it
	doneWaiting    map[string]chan struct{}       // streamID -> closed once every pending request on it is answered
	activeReaders  map[string]bool                // streamID -> an HTTP response is currently tailing it (§4.2.3's 409 conflict)
	jsonResponses  map[string][]*jsonrpc.Response // streamID -> collected JSON-mode responses, only set for streams opened in JSON mode
}

func newSessionTransport(id string, eventsPerStream int) *sessionTransport {
	return &sessionTransport{
		id:             id,
		store:          eventstore.NewMemoryStore(eventsPerStream),
		streamForReq:   make(map[string]string),
		pendingByState: make(map[string]map[string]bool),
		waiters:        make(map[string]chan struct{}),
		doneWaiting:    make(map[string]chan struct{}),
		activeReaders:  make(map[string]bool),
		jsonResponses:  make(map[string][]*jsonrpc.Response),
	}
}

// registerStream records that the requests in reqIDs (a client POST body)
// will be answered on streamID, and returns a channel closed once every
// one of them has been. A POST with no requests (pure notifications or
// responses) gets an already-closed channel. When jsonMode is true, every
// response sent on streamID is buffered for drainJSONResponses instead of
// being written to the event store.
func (t *sessionTransport) registerStream(streamID string, reqIDs []jsonrpc.RequestID, jsonMode bool) <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	done := make(chan struct{})
	if len(reqIDs) == 0 {
		close(done)
		return done
	}
	pending := make(map[string]bool, len(reqIDs))
	for _, id := range reqIDs {
		key := requestIDKey(id)
		pending[key] = true
		t.streamForReq[key] = streamID
	}
	t.pendingByState[streamID] = pending
	t.doneWaiting[streamID] = done
	if jsonMode {
		t.jsonResponses[streamID] = make([]*jsonrpc.Response, 0, len(reqIDs))
	}
	return done
}

// drainJSONResponses returns and clears every response collected so far
// for a JSON-mode stream.
func (t *sessionTransport) drainJSONResponses(streamID string) []*jsonrpc.Response {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.jsonResponses[streamID]
	delete(t.jsonResponses, streamID)
	return out
}

// isClosed reports whether the transport has been closed (session
// terminated, or the server shutting down), which distinguishes a
// done-channel closing because every response arrived from one closing
// because the transport was torn down mid-flight.
func (t *sessionTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// waitFor registers the caller as streamID's active reader and returns a
// channel signaled (non-blocking best effort) whenever a new event is
// stored for streamID while the reader is registered, so an HTTP response
// loop can block on it instead of polling. ok is false if streamID
// already has an active reader (§4.2.3's stream-conflict 409). Callers
// must call the returned cancel func when they stop reading.
func (t *sessionTransport) waitFor(streamID string) (signal <-chan struct{}, cancel func(), ok bool) {
	t.mu.Lock()
	if t.activeReaders[streamID] {
		t.mu.Unlock()
		return nil, nil, false
	}
	ch := make(chan struct{}, 1)
	t.activeReaders[streamID] = true
	t.waiters[streamID] = ch
	t.mu.Unlock()
	return ch, func() {
		t.mu.Lock()
		delete(t.waiters, streamID)
		delete(t.activeReaders, streamID)
		t.mu.Unlock()
	}, true
}

func (t *sessionTransport) signal(streamID string) {
	t.mu.Lock()
	ch, ok := t.waiters[streamID]
	t.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Send implements mcp.Transport.
func (t *sessionTransport) Send(ctx context.Context, sessionID string, relatedRequestID jsonrpc.RequestID, frame any) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("streamablehttp: session %s closed", t.id)
	}
	streamID := defaultStreamID
	if relatedRequestID.IsValid() {
		if sid, ok := t.streamForReq[requestIDKey(relatedRequestID)]; ok {
			streamID = sid
		}
	}
	_, jsonMode := t.jsonResponses[streamID]
	t.mu.Unlock()

	resp, isResponse := frame.(*jsonrpc.Response)
	if isResponse && jsonMode {
		t.mu.Lock()
		t.jsonResponses[streamID] = append(t.jsonResponses[streamID], resp)
		t.mu.Unlock()
		t.markAnswered(streamID, resp.ID)
		return nil
	}

	data, err := internaljson.Marshal(frame)
	if err != nil {
		return fmt.Errorf("streamablehttp: marshal frame: %w", err)
	}
	if _, err := t.store.StoreEvent(streamID, data); err != nil {
		return err
	}

	if isResponse {
		t.markAnswered(streamID, resp.ID)
	}
	t.signal(streamID)
	return nil
}

// markAnswered removes id from streamID's pending set, closing that
// stream's done channel once it's empty.
func (t *sessionTransport) markAnswered(streamID string, id jsonrpc.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pending, ok := t.pendingByState[streamID]
	if !ok {
		return
	}
	delete(pending, requestIDKey(id))
	delete(t.streamForReq, requestIDKey(id))
	if len(pending) == 0 {
		delete(t.pendingByState, streamID)
		if done, ok := t.doneWaiting[streamID]; ok {
			close(done)
			delete(t.doneWaiting, streamID)
		}
	}
}

func (t *sessionTransport) newPostStreamID() string {
	return fmt.Sprintf("post-%d", t.nextPostStream.Add(1))
}

// close marks the transport closed and fails any stream still waiting for
// outstanding responses, so an in-progress HTTP response loop unblocks.
func (t *sessionTransport) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for streamID, done := range t.doneWaiting {
		close(done)
		delete(t.doneWaiting, streamID)
	}
}

// requestIDKey builds a lookup key distinguishing string ids from numeric
// ids with the same text, mirroring the session engine's own normalization
// (mcp.Session keeps its equivalent unexported, so this package has its
// own copy rather than reaching into mcp's internals).
func requestIDKey(id jsonrpc.RequestID) string {
	if id.IsString() {
		return "s:" + id.String()
	}
	return fmt.Sprintf("n:%d", id.Int())
}
