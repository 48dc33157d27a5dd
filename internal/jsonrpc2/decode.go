// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonrpc2

import (
	"encoding/json"
	"fmt"

	"github.com/promptping-ai/swift-mcp-sub003/jsonrpc"
)

// DecodeMessage classifies and strictly decodes a single JSON-RPC frame.
// Unlike jsonrpc.DecodeFrame, it routes the frame through StrictUnmarshal
// first so that a case-variant or unknown field never reaches the decoded
// struct, closing the request-smuggling hole a permissive decoder would
// otherwise leave open.
func DecodeMessage(data []byte) (any, error) {
	// The peek step only classifies the frame shape, so it uses a plain
	// decode: a peek struct narrow enough to reject unknown fields would
	// reject every legitimate frame, since real frames also carry
	// "jsonrpc" and "params". Field-name strictness is enforced below,
	// once the concrete destination type is known.
	var peek struct {
		Method *string          `json:"method"`
		ID     *json.RawMessage `json:"id"`
		Result *json.RawMessage `json:"result"`
		Error  *json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return nil, fmt.Errorf("jsonrpc2: %w", err)
	}
	switch {
	case peek.Result != nil || peek.Error != nil:
		var resp jsonrpc.Response
		if err := StrictUnmarshal(data, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	case peek.Method != nil && peek.ID != nil:
		var req jsonrpc.Request
		if err := StrictUnmarshal(data, &req); err != nil {
			return nil, err
		}
		return &req, nil
	case peek.Method != nil:
		var note jsonrpc.Notification
		if err := StrictUnmarshal(data, &note); err != nil {
			return nil, err
		}
		return &note, nil
	default:
		return nil, fmt.Errorf("jsonrpc2: not a request, notification, or response")
	}
}
