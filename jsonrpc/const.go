// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonrpc

// Standard JSON-RPC 2.0 error codes, plus the transport's reserved
// connection-lifecycle code (§6, §7).
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// CodeConnectionClosed is used for lifecycle-related refusals: a
	// pending server->client request whose session terminated before the
	// client answered, or a pending JSON response channel abandoned on
	// shutdown (§7, "Lifecycle").
	CodeConnectionClosed = -32000
)
