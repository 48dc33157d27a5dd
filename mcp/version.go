// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

// ProtocolVersion identifies a revision of the Model Context Protocol. The
// set of recognized versions is closed and ordered. An Mcp-Protocol-Version
// header naming a version outside this list is rejected; an initialize
// request naming one is answered with LatestProtocolVersion.
type ProtocolVersion string

const (
	ProtocolVersion20241105 ProtocolVersion = "2024-11-05"
	ProtocolVersion20250326 ProtocolVersion = "2025-03-26"
	ProtocolVersion20250618 ProtocolVersion = "2025-06-18"
	ProtocolVersion20251125 ProtocolVersion = "2025-11-25"

	// LatestProtocolVersion is offered by the server when a client's
	// InitializeParams.ProtocolVersion is set but unrecognized; a missing
	// version is treated as ProtocolVersion20241105.
	LatestProtocolVersion = ProtocolVersion20251125
)

// protocolVersionOrder ranks every recognized version for comparison.
// Higher is newer.
var protocolVersionOrder = map[ProtocolVersion]int{
	ProtocolVersion20241105: 0,
	ProtocolVersion20250326: 1,
	ProtocolVersion20250618: 2,
	ProtocolVersion20251125: 3,
}

// Valid reports whether v is one of the recognized protocol versions.
func (v ProtocolVersion) Valid() bool {
	_, ok := protocolVersionOrder[v]
	return ok
}

// Less reports whether v predates other. Both must be Valid; an unknown
// version compares as less than every known one.
func (v ProtocolVersion) Less(other ProtocolVersion) bool {
	vi, ok := protocolVersionOrder[v]
	if !ok {
		vi = -1
	}
	oi, ok := protocolVersionOrder[other]
	if !ok {
		oi = -1
	}
	return vi < oi
}

// AtLeast reports whether v is the same as, or newer than, other.
func (v ProtocolVersion) AtLeast(other ProtocolVersion) bool {
	return !v.Less(other)
}

// BatchingAllowed reports whether this protocol version permits
// JSON-RPC batch arrays. Batching was removed as of 2025-06-18.
func (v ProtocolVersion) BatchingAllowed() bool {
	return v.Less(ProtocolVersion20250618)
}

// SupportsResumability reports whether this version's SSE streams are
// primed with an id-only event at open, enabling Last-Event-Id resumption
// from the very first byte of the stream.
func (v ProtocolVersion) SupportsResumability() bool {
	return v.AtLeast(ProtocolVersion20251125)
}
