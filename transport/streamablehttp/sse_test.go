// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package streamablehttp

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteSSEEventWithID(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := writeSSEEvent(rec, "evt-1", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("writeSSEEvent: %v", err)
	}
	body := rec.Body.String()
	want := "id: evt-1\nevent: message\ndata: {\"a\":1}\n\n"
	if body != want {
		t.Fatalf("body = %q, want %q", body, want)
	}
}

func TestWriteSSEEventWithoutID(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := writeSSEEvent(rec, "", []byte(`{}`)); err != nil {
		t.Fatalf("writeSSEEvent: %v", err)
	}
	body := rec.Body.String()
	if strings.HasPrefix(body, "id:") {
		t.Fatalf("body should not carry an id line: %q", body)
	}
	if !strings.HasPrefix(body, "event: message\n") {
		t.Fatalf("body = %q, want event: message prefix", body)
	}
}

func TestWriteSSEPrimingWithRetry(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := writeSSEPriming(rec, "evt-1", 2000); err != nil {
		t.Fatalf("writeSSEPriming: %v", err)
	}
	body := rec.Body.String()
	want := "id: evt-1\nretry: 2000\ndata: \n\n"
	if body != want {
		t.Fatalf("body = %q, want %q", body, want)
	}
}

func TestWriteSSEPrimingWithoutRetry(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := writeSSEPriming(rec, "evt-1", 0); err != nil {
		t.Fatalf("writeSSEPriming: %v", err)
	}
	body := rec.Body.String()
	want := "id: evt-1\ndata: \n\n"
	if body != want {
		t.Fatalf("body = %q, want %q", body, want)
	}
	if strings.Contains(body, "event:") {
		t.Fatalf("priming frame must not carry an event: line: %q", body)
	}
}
