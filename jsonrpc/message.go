// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Request is a JSON-RPC request: it carries both a method and an id.
type Request struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      RequestID       `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Notification is a JSON-RPC notification: a method with no id.
type Notification struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC response: an id paired with exactly one of
// Result or Error.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      RequestID       `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewRequest builds a Request with the JSON-RPC version already set.
func NewRequest(id RequestID, method string, params any) (*Request, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: marshal params for %q: %w", method, err)
	}
	return &Request{Jsonrpc: Version, ID: id, Method: method, Params: raw}, nil
}

// NewNotification builds a Notification with the JSON-RPC version already set.
func NewNotification(method string, params any) (*Notification, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: marshal params for %q: %w", method, err)
	}
	return &Notification{Jsonrpc: Version, Method: method, Params: raw}, nil
}

// NewResultResponse builds a successful Response.
func NewResultResponse(id RequestID, result any) (*Response, error) {
	raw, err := marshalParams(result)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: marshal result: %w", err)
	}
	return &Response{Jsonrpc: Version, ID: id, Result: raw}, nil
}

// NewErrorResponse builds a failed Response.
func NewErrorResponse(id RequestID, err *Error) *Response {
	return &Response{Jsonrpc: Version, ID: id, Error: err}
}

func marshalParams(v any) (json.RawMessage, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	case []byte:
		return p, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}

// frameKind is used to peek at a raw JSON object and decide whether it is
// a request, a notification, or a response, per §4.3.1's decode order.
type frameKind struct {
	Method *string          `json:"method"`
	ID     *json.RawMessage `json:"id"`
	Result *json.RawMessage `json:"result"`
	Error  *json.RawMessage `json:"error"`
}

// ErrNotAFrame is returned by DecodeFrame when data is not a JSON object
// recognizable as a request, notification, or response.
var ErrNotAFrame = errors.New("jsonrpc: not a request, notification, or response")

// DecodeFrame classifies and decodes a single JSON-RPC object. The decode
// order mirrors §4.3.1: response first (has result/error), then request
// (method+id), then notification (method, no id).
func DecodeFrame(data []byte) (any, error) {
	var peek frameKind
	if err := json.Unmarshal(data, &peek); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAFrame, err)
	}
	switch {
	case peek.Result != nil || peek.Error != nil:
		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	case peek.Method != nil && peek.ID != nil:
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, err
		}
		return &req, nil
	case peek.Method != nil:
		var note Notification
		if err := json.Unmarshal(data, &note); err != nil {
			return nil, err
		}
		return &note, nil
	default:
		return nil, ErrNotAFrame
	}
}

// IsRequest reports whether msg (as returned by DecodeFrame) is a Request.
func IsRequest(msg any) (*Request, bool) {
	r, ok := msg.(*Request)
	return r, ok
}

// IsNotification reports whether msg is a Notification.
func IsNotification(msg any) (*Notification, bool) {
	n, ok := msg.(*Notification)
	return n, ok
}

// IsResponse reports whether msg is a Response.
func IsResponse(msg any) (*Response, bool) {
	r, ok := msg.(*Response)
	return r, ok
}
