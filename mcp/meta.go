// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import "github.com/promptping-ai/swift-mcp-sub003/internal/json"

// progressTokenKey is the well-known _meta key carrying a request's
// progress token, mirrored back on ProgressNotificationParams.
const progressTokenKey = "progressToken"

// Meta is the reserved "_meta" object every params/result type embeds. It
// is a plain string-keyed map rather than a typed struct because the
// protocol treats it as an open bag of server/client-defined entries.
type Meta map[string]any

// GetMeta returns m itself so that embedding Meta in a params struct
// satisfies the metaGetter interface below without extra boilerplate.
func (m Meta) GetMeta() Meta { return m }

// SetMeta replaces the receiver's entries with those of other.
func (m *Meta) SetMeta(other Meta) { *m = other }

// metaGetter is implemented by every params/result type, via embedding
// Meta, so that generic request plumbing (progress tokens, handler
// bookkeeping) can reach into "_meta" without a type switch.
type metaGetter interface {
	GetMeta() Meta
}

// Params is implemented by every request/notification parameter type.
// isParams is unexported so the set of params types is closed to this
// package; GetProgressToken/SetProgressToken let the session engine
// thread a progress token through an arbitrary params type without
// knowing its concrete shape.
type Params interface {
	isParams()
	GetProgressToken() any
	SetProgressToken(any)
}

// Result is implemented by every response result type.
type Result interface {
	isResult()
}

// metaAccessor is satisfied by any *XParams that embeds Meta: the
// promoted GetMeta/SetMeta methods let these helpers read and write the
// progress token without knowing the concrete params type.
type metaAccessor interface {
	GetMeta() Meta
	SetMeta(Meta)
}

func getProgressToken(p metaAccessor) any {
	return p.GetMeta()[progressTokenKey]
}

func setProgressToken(p metaAccessor, token any) {
	meta := p.GetMeta()
	if meta == nil {
		meta = Meta{}
	}
	meta[progressTokenKey] = token
	p.SetMeta(meta)
}

// remarshal round-trips from through JSON into to, which must be a
// pointer. It is used to adapt loosely-typed params (json.RawMessage,
// map[string]any) into a concrete params struct.
func remarshal(from, to any) error {
	if raw, ok := from.([]byte); ok {
		return json.Unmarshal(raw, to)
	}
	data, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, to)
}
