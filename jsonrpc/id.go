// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package jsonrpc defines the JSON-RPC 2.0 wire types used by the MCP
// streamable transport. It has no knowledge of MCP methods or parameters:
// it is a transport-agnostic encoding of requests, notifications,
// responses, and batches.
package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version string carried on every frame.
const Version = "2.0"

// RequestID identifies a request within a session. Per the JSON-RPC 2.0
// spec it is either a string or a number; this package represents numbers
// as int64 and never silently widens them to float64.
type RequestID struct {
	str     string
	num     int64
	isStr   bool
	isValid bool
}

// NewStringID returns a RequestID holding a string value.
func NewStringID(s string) RequestID {
	return RequestID{str: s, isStr: true, isValid: true}
}

// NewIntID returns a RequestID holding an integer value.
func NewIntID(n int64) RequestID {
	return RequestID{num: n, isValid: true}
}

// IsValid reports whether the id was actually set (as opposed to the zero
// value, which arises for notifications that have no id at all).
func (id RequestID) IsValid() bool { return id.isValid }

// IsString reports whether the id holds a string value.
func (id RequestID) IsString() bool { return id.isStr }

// String returns the string value, or "" if the id is numeric or invalid.
func (id RequestID) String() string { return id.str }

// Int returns the integer value, or 0 if the id is a string or invalid.
func (id RequestID) Int() int64 { return id.num }

// Raw returns the id as a string or int64, matching its underlying kind,
// or nil if the id is invalid.
func (id RequestID) Raw() any {
	if !id.isValid {
		return nil
	}
	if id.isStr {
		return id.str
	}
	return id.num
}

// Equal reports whether two ids represent the same JSON-RPC identifier.
func (id RequestID) Equal(other RequestID) bool {
	if id.isValid != other.isValid {
		return false
	}
	if !id.isValid {
		return true
	}
	if id.isStr != other.isStr {
		return false
	}
	if id.isStr {
		return id.str == other.str
	}
	return id.num == other.num
}

func (id RequestID) MarshalJSON() ([]byte, error) {
	if !id.isValid {
		return []byte("null"), nil
	}
	if id.isStr {
		return json.Marshal(id.str)
	}
	return json.Marshal(id.num)
}

func (id *RequestID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = RequestID{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = NewStringID(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = NewIntID(n)
		return nil
	}
	return fmt.Errorf("jsonrpc: id must be a string or integer, got %s", data)
}
