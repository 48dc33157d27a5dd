// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonrpc

import (
	"fmt"
	"io"
	"os"
)

// Logger is the minimal diagnostic-logging seam used internally by this
// module. Protocol-level logging (the MCP logging/* capability, §4.3.7) is
// a domain feature with its own level-gated path and does not use this
// interface; Logger exists only for HandlerInternal-class detail (§7) that
// must be recorded somewhere but never sent to the client.
type Logger interface {
	Errorf(format string, args ...any)
}

// StdLogger writes to an io.Writer.
type StdLogger struct {
	w io.Writer
}

// NewStdLogger returns a Logger that writes to w, or os.Stderr if w is nil.
func NewStdLogger(w io.Writer) *StdLogger {
	if w == nil {
		w = os.Stderr
	}
	return &StdLogger{w: w}
}

func (l *StdLogger) Errorf(format string, args ...any) {
	fmt.Fprintf(l.w, format+"\n", args...)
}

// DefaultLogger is used wherever a caller does not supply one.
var DefaultLogger Logger = NewStdLogger(os.Stderr)
