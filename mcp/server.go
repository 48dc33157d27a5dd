// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/promptping-ai/swift-mcp-sub003/jsonrpc"
	"golang.org/x/sync/errgroup"
)

// MCPServer is the long-lived, transport-agnostic half of an MCP server: it
// holds the server's identity and capabilities, the shared method-handler
// registry every Session dispatches through, and the SessionManager
// tracking which sessions are currently connected. A single MCPServer
// typically backs one streamablehttp.Handler, but nothing here depends on
// HTTP.
type MCPServer struct {
	impl         *Implementation
	capabilities *ServerCapabilities
	instructions string

	mu              sync.RWMutex
	handlers        map[string]MethodHandler
	responseRouters []ResponseRouter

	sessions   *SessionManager
	stateStore ServerSessionStateStore
}

// ServerOptions configures a new MCPServer.
type ServerOptions struct {
	// Instructions are returned to the client in InitializeResult, as a hint
	// for how to use the server.
	Instructions string
	// StateStore, if non-nil, receives each session's ServerSessionState at
	// initialize and again on logging/setLevel. Nothing in this package
	// restores a Session from the saved state, so sessions do not survive a
	// process restart whether or not a store is set.
	StateStore ServerSessionStateStore
	// SessionCapacity caps the number of concurrently connected sessions; 0
	// means unlimited. See SessionManager.
	SessionCapacity int
}

// NewServer creates an MCPServer identifying itself with impl and
// advertising capabilities. Both initialize and ping are registered
// automatically; all other methods are registered with AddMethodHandler.
func NewServer(impl *Implementation, capabilities *ServerCapabilities, opts *ServerOptions) *MCPServer {
	if capabilities == nil {
		capabilities = &ServerCapabilities{}
	}
	if opts == nil {
		opts = &ServerOptions{}
	}
	s := &MCPServer{
		impl:         impl,
		capabilities: capabilities,
		instructions: opts.Instructions,
		handlers:     make(map[string]MethodHandler),
		stateStore:   opts.StateStore,
	}
	s.sessions = NewSessionManager(opts.SessionCapacity)
	s.AddMethodHandler(methodInitialize, HandlerFor(s.handleInitialize))
	s.AddMethodHandler(methodPing, HandlerFor(s.handlePing))
	if capabilities.Logging != nil {
		s.AddMethodHandler(methodSetLevel, HandlerFor(s.handleSetLevel))
	}
	return s
}

// logging reports whether this server advertises the logging capability;
// LogMessage drops every send when it does not (§4.3.7).
func (s *MCPServer) logging() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capabilities.Logging != nil
}

// AddMethodHandler registers handler for method, overwriting any existing
// registration. It is safe to call concurrently with running sessions;
// newly dispatched requests see the new handler, requests already
// dispatched keep running with whichever handler they looked up.
func (s *MCPServer) AddMethodHandler(method string, handler MethodHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = handler
}

// AddResponseRouter appends a ResponseRouter consulted, in registration
// order, before a Session's default pending-call table on every client
// response.
func (s *MCPServer) AddResponseRouter(router ResponseRouter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responseRouters = append(s.responseRouters, router)
}

func (s *MCPServer) methodHandler(method string) (MethodHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[method]
	return h, ok
}

func (s *MCPServer) routers() []ResponseRouter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responseRouters
}

// Sessions returns the SessionManager tracking this server's connections.
func (s *MCPServer) Sessions() *SessionManager { return s.sessions }

// NewSession creates and registers a Session bound to transport under
// sessionID, ready to receive the initialize request. Callers that
// generated sessionID themselves (the streamable HTTP handler, assigning
// an Mcp-Session-Id on the initialize response) are responsible for
// ensuring it is unique.
func (s *MCPServer) NewSession(transport Transport, sessionID string) (*Session, error) {
	assert(sessionID != "", "NewSession requires a non-empty sessionID")
	sess := &Session{
		id:          sessionID,
		server:      s,
		transport:   transport,
		cancelFuncs: make(map[string]context.CancelFunc),
		pending:     make(map[int64]chan *jsonrpc.Response),
	}
	if err := s.sessions.register(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *MCPServer) handleInitialize(ctx context.Context, req *ServerRequest[*InitializeParams]) (Result, error) {
	sess := req.Session
	clientVersion := ProtocolVersion(req.Params.ProtocolVersion)
	negotiated := LatestProtocolVersion
	if clientVersion == "" {
		negotiated = ProtocolVersion20241105
	} else if clientVersion.Valid() {
		negotiated = clientVersion
	}

	sess.mu.Lock()
	sess.clientInfo = req.Params.ClientInfo
	sess.clientCapabilities = req.Params.Capabilities
	sess.protocolVersion = negotiated
	sess.mu.Unlock()

	s.mu.RLock()
	caps := s.capabilities.clone()
	impl := *s.impl
	instructions := s.instructions
	s.mu.RUnlock()

	if store := s.stateStore; store != nil {
		state := &ServerSessionState{
			ProtocolVersion:    negotiated,
			ClientInfo:         sess.clientInfo,
			ClientCapabilities: sess.clientCapabilities,
		}
		_ = store.Save(ctx, sess.id, state)
	}

	return &InitializeResult{
		Capabilities:    caps,
		Instructions:    instructions,
		ProtocolVersion: string(negotiated),
		ServerInfo:      &impl,
	}, nil
}

func (s *MCPServer) handlePing(ctx context.Context, req *ServerRequest[*PingParams]) (Result, error) {
	return &EmptyResult{}, nil
}

func (s *MCPServer) handleSetLevel(ctx context.Context, req *ServerRequest[*SetLevelParams]) (Result, error) {
	if !req.Params.Level.Valid() {
		return nil, fmt.Errorf("invalid logging level %q", req.Params.Level)
	}
	req.Session.SetLogLevel(req.Params.Level)
	if store := s.stateStore; store != nil {
		if state, err := store.Load(ctx, req.Session.id); err == nil && state != nil {
			state.LogLevel = req.Params.Level
			state.HasLogLevel = true
			_ = store.Save(ctx, req.Session.id, state)
		}
	}
	return &EmptyResult{}, nil
}

// Broadcast sends a notification with the given method and params to
// every currently connected session, in parallel, and returns the first
// error encountered (after every send has been attempted). Any session
// whose send fails is pruned from the SessionManager (§4.3.8): a failed
// send means its transport is gone, so there is nothing left to retry.
func (s *MCPServer) Broadcast(ctx context.Context, method string, params Params) error {
	sessions := s.sessions.List()
	var mu sync.Mutex
	var failed []*Session
	g, gctx := errgroup.WithContext(ctx)
	for _, sess := range sessions {
		sess := sess
		g.Go(func() error {
			note, err := jsonrpc.NewNotification(method, params)
			if err != nil {
				return err
			}
			if err := sess.transport.Send(gctx, sess.id, jsonrpc.RequestID{}, note); err != nil {
				mu.Lock()
				failed = append(failed, sess)
				mu.Unlock()
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	for _, sess := range failed {
		s.sessions.Unregister(sess.id)
	}
	return err
}
