// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// This file holds the request types.

package mcp

// ServerRequest wraps a request the server handles: one the client sent
// us, carrying the Session it arrived on and its already-decoded params.
// Handler functions for server-bound methods receive one of these (via
// their generic instantiation), giving them access back to the session
// that owns the connection, e.g. to report progress or check the
// negotiated protocol version.
type ServerRequest[P Params] struct {
	Session *Session
	Params  P
}

// ClientRequest wraps a request the server sends to the client: the
// inverse direction of ServerRequest. The Session's CreateMessage, Elicit
// and ListRoots methods take their params directly and do not use it.
type ClientRequest[P Params] struct {
	Session *Session
	Params  P
}

// Requests and notifications the server handles (client -> server).
type (
	InitializeRequest       = ServerRequest[*InitializeParams]
	InitializedRequest      = ServerRequest[*InitializedParams]
	PingRequest              = ServerRequest[*PingParams]
	CancelledRequest         = ServerRequest[*CancelledParams]
	SetLevelRequest          = ServerRequest[*SetLevelParams]
	RootsListChangedRequest  = ServerRequest[*RootsListChangedParams]
)

// Requests and notifications the server issues to the client
// (server -> client).
type (
	CreateMessageRequest              = ClientRequest[*CreateMessageParams]
	ElicitRequest                     = ClientRequest[*ElicitParams]
	ElicitationCompleteRequest        = ClientRequest[*ElicitationCompleteParams]
	ListRootsRequest                  = ClientRequest[*ListRootsParams]
	LoggingMessageRequest             = ClientRequest[*LoggingMessageParams]
	ProgressNotificationClientRequest = ClientRequest[*ProgressNotificationParams]
)
