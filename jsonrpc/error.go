// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonrpc

import "fmt"

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewParseError builds a parse-error object (§6, code -32700).
func NewParseError(err error) *Error {
	return &Error{Code: CodeParseError, Message: err.Error()}
}

// NewInvalidRequest builds an invalid-request error object (code -32600).
func NewInvalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msg}
}

// NewMethodNotFound builds a method-not-found error object (code -32601).
func NewMethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method not found: %q", method)}
}

// NewInvalidParams builds an invalid-params error object (code -32602).
func NewInvalidParams(err error) *Error {
	return &Error{Code: CodeInvalidParams, Message: err.Error()}
}

// NewInternalError builds a generic internal-error object (code -32603)
// that never leaks the underlying error's detail, per §7's HandlerInternal
// propagation policy.
func NewInternalError() *Error {
	return &Error{Code: CodeInternalError, Message: "internal error"}
}

// NewConnectionClosed builds a lifecycle-refusal error object.
func NewConnectionClosed(msg string) *Error {
	return &Error{Code: CodeConnectionClosed, Message: msg}
}

// ErrorEnvelope builds the HTTP-level error envelope described in §6: a
// response with a null id.
func ErrorEnvelope(err *Error) *Response {
	return &Response{Jsonrpc: Version, Error: err}
}
