// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	internaljson "github.com/promptping-ai/swift-mcp-sub003/internal/json"
	"github.com/promptping-ai/swift-mcp-sub003/jsonrpc"
)

// sessionState tracks how far a Session has progressed through the
// initialize handshake. Traffic other than initialize/ping is rejected
// until the session reaches sessionReady.
type sessionState int32

const (
	sessionUninitialized sessionState = iota
	sessionInitializing               // initialize request answered, awaiting notifications/initialized
	sessionReady
)

// Session is the protocol engine for a single client connection: it owns
// the initialize handshake, dispatches inbound requests and notifications
// to registered handlers on their own goroutines, tracks in-flight
// requests for cancellation, keeps a pending-request table for requests
// the server issues to the client, and routes every outbound frame
// through the Transport captured when the session was created.
//
// A Session is owned exclusively by itself: every field below is only
// ever touched while holding mu, except state (atomic) and the
// effectively-immutable id/server/transport set at construction.
// protocolVersion is written by the initialize handler and, like the
// fields below mu, is only accessed while holding mu.
type Session struct {
	id              string
	server          *MCPServer
	transport       Transport
	protocolVersion ProtocolVersion

	state atomic.Int32 // sessionState

	mu                 sync.Mutex
	clientCapabilities *ClientCapabilities
	clientInfo         *Implementation
	logLevel           LoggingLevel
	hasLogLevel        bool
	cancelFuncs        map[string]context.CancelFunc
	pending            map[int64]chan *jsonrpc.Response
	nextCallID         int64
	closed             bool
}

// ID returns the session's opaque identifier (the Mcp-Session-Id header
// value, for the streamable transport).
func (s *Session) ID() string { return s.id }

// ClientInfo returns the client's self-reported identity, or nil before
// initialize completes.
func (s *Session) ClientInfo() *Implementation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientInfo
}

// ProtocolVersion returns the version negotiated during initialize.
func (s *Session) ProtocolVersion() ProtocolVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocolVersion
}

func (s *Session) ready() bool { return sessionState(s.state.Load()) == sessionReady }

// HandleFrame dispatches a single decoded JSON-RPC frame arriving from the
// client: a *jsonrpc.Request, a *jsonrpc.Notification, or a
// *jsonrpc.Response (the reply to a request the server previously sent via
// CreateMessage, Elicit or ListRoots). It never blocks on handler execution: requests and notifications
// are dispatched to their own goroutine so that a slow handler cannot
// stall the rest of the session's traffic.
func (s *Session) HandleFrame(ctx context.Context, frame any) {
	switch f := frame.(type) {
	case *jsonrpc.Request:
		s.dispatchRequest(ctx, f)
	case *jsonrpc.Notification:
		s.dispatchNotification(ctx, f)
	case *jsonrpc.Response:
		s.handleResponse(ctx, f)
	}
}

// strictModeAllows reports whether method may be processed before the
// handshake completes: only initialize and ping are exempt (§4.3.2).
func strictModeAllows(method string) bool {
	return method == methodInitialize || method == methodPing
}

func (s *Session) dispatchRequest(ctx context.Context, req *jsonrpc.Request) {
	if !s.ready() && !strictModeAllows(req.Method) {
		s.sendResponse(ctx, req.ID, jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewInvalidRequest(
			fmt.Sprintf("session not initialized: method %q not allowed before initialize completes", req.Method))))
		return
	}
	handler, ok := s.server.methodHandler(req.Method)
	if !ok {
		s.sendResponse(ctx, req.ID, jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewMethodNotFound(req.Method)))
		return
	}

	hctx, cancel := context.WithCancel(ctx)
	hctx = contextWithRequestID(hctx, req.ID)
	key := requestIDKey(req.ID)
	s.mu.Lock()
	s.cancelFuncs[key] = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.cancelFuncs, key)
			s.mu.Unlock()
			cancel()
			if r := recover(); r != nil {
				s.sendResponse(ctx, req.ID, jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewInternalError()))
			}
		}()

		hc := &HandlerContext{Session: s, Method: req.Method, RequestID: req.ID}
		result, err := handler(hctx, hc, req.Params)
		if req.Method == methodInitialize && err == nil {
			s.state.Store(int32(sessionInitializing))
		}
		if hctx.Err() != nil {
			// The request was cancelled via notifications/cancelled: per
			// §4.3.3/§4.3.4 a cancelled request never produces a response,
			// on either the success or error path.
			return
		}
		if err != nil {
			s.sendResponse(ctx, req.ID, jsonrpc.NewErrorResponse(req.ID, toJSONRPCError(err)))
			return
		}
		resp, merr := jsonrpc.NewResultResponse(req.ID, result)
		if merr != nil {
			s.sendResponse(ctx, req.ID, jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewInternalError()))
			return
		}
		s.sendResponse(ctx, req.ID, resp)
	}()
}

func (s *Session) dispatchNotification(ctx context.Context, note *jsonrpc.Notification) {
	switch note.Method {
	case notificationCancelled:
		s.handleCancelled(note.Params)
		return
	case notificationInitialized:
		s.state.Store(int32(sessionReady))
		return
	}
	if !s.ready() {
		return
	}
	handler, ok := s.server.methodHandler(note.Method)
	if !ok {
		return
	}
	hc := &HandlerContext{Session: s, Method: note.Method}
	go func() {
		defer func() { recover() }()
		handler(ctx, hc, note.Params)
	}()
}

func (s *Session) handleCancelled(rawParams []byte) {
	var params CancelledParams
	if len(rawParams) == 0 {
		return
	}
	if err := remarshal(rawParams, &params); err != nil {
		return
	}
	key := requestIDKeyFromAny(params.RequestID)
	s.mu.Lock()
	cancel, ok := s.cancelFuncs[key]
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

func (s *Session) handleResponse(ctx context.Context, resp *jsonrpc.Response) {
	for _, router := range s.server.routers() {
		if router.RouteResponse(ctx, s, resp) {
			return
		}
	}
	s.mu.Lock()
	ch, ok := s.pending[resp.ID.Int()]
	if ok {
		delete(s.pending, resp.ID.Int())
	}
	s.mu.Unlock()
	if ok {
		ch <- resp
	}
}

func (s *Session) sendResponse(ctx context.Context, id jsonrpc.RequestID, resp *jsonrpc.Response) {
	_ = s.transport.Send(ctx, s.id, id, resp)
}

// call issues method to the client with params and blocks for the typed
// JSON response payload, honoring ctx cancellation. This is the primitive
// behind the typed CreateMessage/Elicit/ListRoots helpers below.
func (s *Session) call(ctx context.Context, method string, params Params) ([]byte, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, jsonrpc.NewConnectionClosed("session closed")
	}
	s.nextCallID++
	id := s.nextCallID
	ch := make(chan *jsonrpc.Response, 1)
	s.pending[id] = ch
	s.mu.Unlock()

	req, err := jsonrpc.NewRequest(jsonrpc.NewIntID(id), method, params)
	if err != nil {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return nil, err
	}
	if err := s.transport.Send(ctx, s.id, requestIDFromContext(ctx), req); err != nil {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return nil, err
	}

	select {
	case <-ctx.Done():
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return nil, ctx.Err()
	case resp := <-ch:
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	}
}

// CreateMessage asks the client to sample an LLM on the server's behalf.
func (s *Session) CreateMessage(ctx context.Context, params *CreateMessageParams) (*CreateMessageResult, error) {
	raw, err := s.call(ctx, methodCreateMessage, params)
	if err != nil {
		return nil, err
	}
	var result CreateMessageResult
	if err := internaljson.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Elicit asks the client to collect additional information from the user.
func (s *Session) Elicit(ctx context.Context, params *ElicitParams) (*ElicitResult, error) {
	raw, err := s.call(ctx, methodElicit, params)
	if err != nil {
		return nil, err
	}
	var result ElicitResult
	if err := internaljson.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRoots asks the client for its configured filesystem roots.
func (s *Session) ListRoots(ctx context.Context, params *ListRootsParams) (*ListRootsResult, error) {
	raw, err := s.call(ctx, methodListRoots, params)
	if err != nil {
		return nil, err
	}
	var result ListRootsResult
	if err := internaljson.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NotifyProgress sends a notifications/progress to the client.
func (s *Session) NotifyProgress(ctx context.Context, params *ProgressNotificationParams) error {
	note, err := jsonrpc.NewNotification(notificationProgress, params)
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, s.id, requestIDFromContext(ctx), note)
}

// SetLogLevel records the minimum severity the client wants to receive, in
// response to a logging/setLevel request.
func (s *Session) SetLogLevel(level LoggingLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLevel = level
	s.hasLogLevel = true
}

// LogMessage sends a notifications/message to the client, gated on the
// server's advertised logging capability and the client's negotiated
// minimum level. Before the client calls logging/setLevel, every level is
// emitted (§4.3.7's default is to emit all when no level is set); once a
// level is set, only messages at or above it go out.
func (s *Session) LogMessage(ctx context.Context, params *LoggingMessageParams) error {
	if !s.server.logging() {
		return nil
	}
	s.mu.Lock()
	min, has := s.logLevel, s.hasLogLevel
	s.mu.Unlock()
	if has && !params.Level.atLeastAsSevereAs(min) {
		return nil
	}
	note, err := jsonrpc.NewNotification(notificationLoggingMessage, params)
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, s.id, requestIDFromContext(ctx), note)
}

// Close marks the session closed: pending server -> client calls are
// failed with CodeConnectionClosed and no further calls can be issued.
// It does not touch the transport; callers are responsible for closing
// the underlying connection.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	closedErr := jsonrpc.NewConnectionClosed("session closed")
	for _, ch := range pending {
		ch <- &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Error: closedErr}
	}
}

// requestIDContextKey carries the RequestID of the inbound request whose
// handler goroutine is running, so that a notification or nested call sent
// from inside that handler (Progress, LogMessage, CreateMessage, ...) is
// attributed to the same logical connection the request arrived on -- the
// streamable HTTP transport uses this to deliver it on the same SSE
// response rather than the session's default stream.
type requestIDContextKey struct{}

func contextWithRequestID(ctx context.Context, id jsonrpc.RequestID) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func requestIDFromContext(ctx context.Context) jsonrpc.RequestID {
	id, _ := ctx.Value(requestIDContextKey{}).(jsonrpc.RequestID)
	return id
}

// requestIDKey builds a map key for a jsonrpc.RequestID that distinguishes
// string ids from numeric ids with the same text (e.g. "1" vs 1).
func requestIDKey(id jsonrpc.RequestID) string {
	if id.IsString() {
		return "s:" + id.String()
	}
	return fmt.Sprintf("n:%d", id.Int())
}

// requestIDKeyFromAny builds the same key from a loosely-typed value as
// decoded from a CancelledParams.RequestID field (a string or a float64,
// since JSON numbers unmarshal to float64 into an `any`).
func requestIDKeyFromAny(v any) string {
	switch x := v.(type) {
	case string:
		return "s:" + x
	case float64:
		return fmt.Sprintf("n:%d", int64(x))
	case int64:
		return fmt.Sprintf("n:%d", x)
	default:
		return fmt.Sprintf("n:%v", x)
	}
}

// toJSONRPCError converts a handler error into a JSON-RPC error object. A
// *jsonrpc.Error passes through unchanged so handlers can return precise
// error codes; anything else is written to jsonrpc.DefaultLogger and
// flattened to a generic internal error so handler-internal detail never
// leaks to the client (§7).
func toJSONRPCError(err error) *jsonrpc.Error {
	if jerr, ok := err.(*jsonrpc.Error); ok {
		return jerr
	}
	jsonrpc.DefaultLogger.Errorf("mcp: handler error: %v", err)
	return jsonrpc.NewInternalError()
}
