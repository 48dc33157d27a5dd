// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"reflect"

	"github.com/promptping-ai/swift-mcp-sub003/jsonrpc"
)

// HandlerContext is the per-request capability object passed alongside a
// decoded params value to a MethodHandler. It gives a handler the means
// to act on the session that owns its connection -- reporting progress,
// sending a log message at the session's negotiated level, or issuing a
// nested server -> client request -- without the handler needing direct
// access to the transport or the session's internal bookkeeping.
type HandlerContext struct {
	Session   *Session
	Method    string
	RequestID jsonrpc.RequestID // zero value for a notification
}

// IsNotification reports whether the inbound message being handled was a
// notification (no response is expected, and RequestID is not valid).
func (hc *HandlerContext) IsNotification() bool {
	return !hc.RequestID.IsValid()
}

// Log sends a notifications/message to the client through the session's
// LogMessage (§4.3.7). Nothing is sent when the server does not advertise
// the logging capability; otherwise every level is sent until the client
// calls logging/setLevel, and afterwards only levels at or above the one it
// set. A message that is not sent returns nil.
func (hc *HandlerContext) Log(ctx context.Context, level LoggingLevel, logger string, data any) error {
	return hc.Session.LogMessage(ctx, &LoggingMessageParams{
		Level:  level,
		Logger: logger,
		Data:   data,
	})
}

// MethodHandler is the signature every registered method or notification
// handler implements. rawParams is the request's params field, not yet
// unmarshaled into a concrete Params type; handlers that need a typed
// params value call remarshal themselves, or use HandlerFor to get one
// automatically. The returned result is marshaled into the JSON-RPC
// response; it is ignored for notifications.
type MethodHandler func(ctx context.Context, hc *HandlerContext, rawParams []byte) (result any, err error)

// HandlerFor adapts a typed handler function taking P to a MethodHandler,
// decoding rawParams into a fresh P before calling fn. Use this to
// register handlers without repeating the remarshal boilerplate.
func HandlerFor[P Params](fn func(ctx context.Context, req *ServerRequest[P]) (Result, error)) MethodHandler {
	return func(ctx context.Context, hc *HandlerContext, rawParams []byte) (any, error) {
		params := newParams[P]()
		if len(rawParams) > 0 {
			if err := remarshal(rawParams, params); err != nil {
				return nil, err
			}
		}
		return fn(ctx, &ServerRequest[P]{Session: hc.Session, Params: params})
	}
}

// newParams allocates a fresh, non-nil instance of the concrete type P
// points to, via reflection: P is always a pointer-to-struct type
// (*InitializeParams, *PingParams, ...), and a generic function has no
// other way to instantiate one without its caller passing a constructor.
func newParams[P Params]() P {
	var zero P
	elem := reflect.TypeOf(zero).Elem()
	return reflect.New(elem).Interface().(P)
}
