// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package json provides the internal JSON codec used throughout this
// module. It wraps segmentio/encoding/json rather than the standard
// library: besides being faster on the hot decode path that every inbound
// frame and stored event payload travels, segmentio's parser can be told
// to require an exact field-name match. Unmarshal passes that flag, so it
// never falls back to a case-insensitive match, in keeping with this
// package's long-standing case-sensitivity contract.
package json

import (
	"bytes"
	"fmt"

	"github.com/segmentio/encoding/json"
)

// RawMessage re-exports the codec's raw-message type so callers only ever
// need to import this package, not encoding/json directly.
type RawMessage = json.RawMessage

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	rest, err := json.Parse(data, v, json.DontMatchCaseInsensitiveStructFields)
	if err != nil {
		return err
	}
	if rest = bytes.TrimSpace(rest); len(rest) != 0 {
		return fmt.Errorf("json: invalid character %q after top-level value", rest[0])
	}
	return nil
}
