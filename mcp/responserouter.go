// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"

	"github.com/promptping-ai/swift-mcp-sub003/jsonrpc"
)

// ResponseRouter is a pluggable hook consulted before a Session's default
// pending-request table when a client response arrives. It lets a larger
// server (one that queues work and answers it out of band, for instance)
// claim a response for itself instead of letting it resolve an in-flight
// CreateMessage, Elicit or ListRoots call.
//
// RouteResponse returns handled=true if it fully took ownership of resp;
// the Session then does not attempt to resolve any pending call with it.
// Routers are consulted in registration order and stop at the first one
// that claims the response.
type ResponseRouter interface {
	RouteResponse(ctx context.Context, session *Session, resp *jsonrpc.Response) (handled bool)
}

// ResponseRouterFunc adapts a plain function to a ResponseRouter.
type ResponseRouterFunc func(ctx context.Context, session *Session, resp *jsonrpc.Response) bool

func (f ResponseRouterFunc) RouteResponse(ctx context.Context, session *Session, resp *jsonrpc.Response) bool {
	return f(ctx, session, resp)
}
