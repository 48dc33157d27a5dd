// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when a batch array is present but contains no
// elements, which §8's boundary behaviors require rejecting outright.
var ErrEmptyBatch = errors.New("jsonrpc: batch must not be empty")

// Batch is a decoded JSON-RPC batch: each element is a *Request, a
// *Notification or a *Response, as DecodeFrame returns them.
type Batch []any

// DecodeBody parses an HTTP POST body as either a single JSON-RPC object or
// a JSON array of objects, per §4.2.2 step 3. It returns the decoded frames
// (length 1 for a single object) and reports whether the body was a batch
// array at all (needed by callers that reject batches by protocol version).
func DecodeBody(body []byte) (frames []any, isBatch bool, err error) {
	trimmed := trimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, errors.New("jsonrpc: empty body")
	}
	if trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, true, fmt.Errorf("jsonrpc: malformed batch: %w", err)
		}
		if len(raws) == 0 {
			return nil, true, ErrEmptyBatch
		}
		out := make([]any, 0, len(raws))
		for _, raw := range raws {
			if err := requireVersion(raw); err != nil {
				return nil, true, err
			}
			frame, err := DecodeFrame(raw)
			if err != nil {
				return nil, true, err
			}
			out = append(out, frame)
		}
		return out, true, nil
	}
	if err := requireVersion(trimmed); err != nil {
		return nil, false, err
	}
	frame, err := DecodeFrame(trimmed)
	if err != nil {
		return nil, false, err
	}
	return []any{frame}, false, nil
}

func requireVersion(raw json.RawMessage) error {
	var v struct {
		Jsonrpc string `json:"jsonrpc"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("jsonrpc: malformed element: %w", err)
	}
	if v.Jsonrpc != Version {
		return fmt.Errorf(`jsonrpc: element missing "jsonrpc":"2.0"`)
	}
	return nil
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
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// EncodeResponses marshals a set of responses per §4.2.7: a single object
// when there is exactly one, a JSON array otherwise.
func EncodeResponses(responses []*Response) ([]byte, error) {
	if len(responses) == 1 {
		return json.Marshal(responses[0])
	}
	return json.Marshal(responses)
}
