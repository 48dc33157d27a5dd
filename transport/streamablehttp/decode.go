// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package streamablehttp

import (
	"encoding/json"
	"fmt"

	"github.com/promptping-ai/swift-mcp-sub003/internal/jsonrpc2"
	"github.com/promptping-ai/swift-mcp-sub003/internal/mcpgodebug"
	"github.com/promptping-ai/swift-mcp-sub003/jsonrpc"
)

// decodeBody decodes an HTTP POST body the same way jsonrpc.DecodeBody does
// (single object or a non-empty batch array), except that each frame is
// additionally run through jsonrpc2.StrictUnmarshal's case/unknown-field
// checks -- closing the request-smuggling hole a permissive decoder would
// otherwise leave open -- unless MCPGODEBUG=nostrict=1 asks for the
// permissive decoder, for interop with a client sending a technically
// malformed frame.
func decodeBody(body []byte) (frames []any, isBatch bool, err error) {
	if mcpgodebug.Value("nostrict") == "1" {
		return jsonrpc.DecodeBody(body)
	}

	trimmed := trimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("jsonrpc: empty body")
	}
	if trimmed[0] != '[' {
		frame, err := decodeStrictFrame(trimmed)
		if err != nil {
			return nil, false, err
		}
		return []any{frame}, false, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, true, fmt.Errorf("jsonrpc: malformed batch: %w", err)
	}
	if len(raws) == 0 {
		return nil, true, jsonrpc.ErrEmptyBatch
	}
	out := make([]any, 0, len(raws))
	for _, raw := range raws {
		frame, err := decodeStrictFrame(raw)
		if err != nil {
			return nil, true, err
		}
		out = append(out, frame)
	}
	return out, true, nil
}

// decodeStrictFrame wraps jsonrpc2.DecodeMessage with the same
// "jsonrpc":"2.0" version check jsonrpc.DecodeBody applies, since
// DecodeMessage's StrictUnmarshal pass rejects unknown/miscased fields but
// never inspects the decoded version string's value.
func decodeStrictFrame(raw json.RawMessage) (any, error) {
	frame, err := jsonrpc2.DecodeMessage(raw)
	if err != nil {
		return nil, err
	}
	var version string
	switch f := frame.(type) {
	case *jsonrpc.Request:
		version = f.Jsonrpc
	case *jsonrpc.Notification:
		version = f.Jsonrpc
	case *jsonrpc.Response:
		version = f.Jsonrpc
	}
	if version != jsonrpc.Version {
		return nil, fmt.Errorf(`jsonrpc: element missing "jsonrpc":"2.0"`)
	}
	return frame, nil
}

func trimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isJSONSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isJSONSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isJSONSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
