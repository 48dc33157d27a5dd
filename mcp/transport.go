// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"

	"github.com/promptping-ai/swift-mcp-sub003/jsonrpc"
)

// Transport is the per-session delivery channel a Session uses to get
// JSON-RPC frames back to the connected client. A Transport owns the wire
// format (Streamable HTTP's POST responses and SSE streams, in this
// module's only implementation); the session engine only ever deals in
// decoded JSON-RPC frames and the session ID they belong to.
//
// This is the "captured connection" seam: whatever captured a client
// request (the HTTP handler, for the streamable transport) implements
// Transport and is handed to the Session at construction time, so that
// every later Send call -- a response, a server-initiated request, a
// notification -- routes back through the same connection without the
// session needing to know anything about HTTP, SSE framing, or
// reconnection.
type Transport interface {
	// Send delivers frame (a *jsonrpc.Response, *jsonrpc.Request, or
	// *jsonrpc.Notification) to the client of the given session.
	// relatedRequestID identifies the client request frame answers or
	// was produced while handling; it is the zero RequestID for a
	// notification or server-initiated request issued outside any
	// request's handling (e.g. a broadcast). Implementations use it to
	// choose which open stream, if any, should carry the frame.
	Send(ctx context.Context, sessionID string, relatedRequestID jsonrpc.RequestID, frame any) error
}
