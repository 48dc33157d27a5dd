// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"testing"
)

func TestHandlerForDecodesParams(t *testing.T) {
	var got *SetLevelParams
	h := HandlerFor(func(ctx context.Context, req *ServerRequest[*SetLevelParams]) (Result, error) {
		got = req.Params
		return &EmptyResult{}, nil
	})

	_, err := h(context.Background(), &HandlerContext{}, []byte(`{"level":"warning"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got == nil || got.Level != LoggingLevelWarning {
		t.Fatalf("decoded params = %+v, want level warning", got)
	}
}

func TestHandlerForEmptyParams(t *testing.T) {
	var called bool
	h := HandlerFor(func(ctx context.Context, req *ServerRequest[*PingParams]) (Result, error) {
		called = true
		if req.Params == nil {
			t.Fatal("params should never be nil, even with no input bytes")
		}
		return &EmptyResult{}, nil
	})

	if _, err := h(context.Background(), &HandlerContext{}, nil); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Fatal("handler was not invoked")
	}
}

func TestHandlerContextIsNotification(t *testing.T) {
	hc := &HandlerContext{}
	if !hc.IsNotification() {
		t.Error("zero-value RequestID should report as a notification")
	}
}
