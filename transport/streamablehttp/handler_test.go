// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package streamablehttp

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/promptping-ai/swift-mcp-sub003/mcp"
)

const acceptBoth = "application/json, text/event-stream"

func newTestHandler() (*Handler, *mcp.MCPServer) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil, nil)
	h := NewHandler(func(*http.Request) *mcp.MCPServer { return server }, nil)
	return h, server
}

// readSSEEvents reads n "data:" lines off body, blocking until each
// arrives or the deadline passes.
func readSSEEvents(t *testing.T, body *bufio.Reader, n int) []string {
	t.Helper()
	var events []string
	for len(events) < n {
		line, err := body.ReadString('\n')
		if err != nil {
			t.Fatalf("reading SSE body: %v", err)
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			events = append(events, strings.TrimRight(data, "\n"))
		}
	}
	return events
}

func TestInitializeOverSSE(t *testing.T) {
	h, _ := newTestHandler()

	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-11-25","capabilities":{},"clientInfo":{"name":"c","version":"1"}}}`)
	req := httptest.NewRequest(http.MethodPost, "http://localhost/", body)
	req.Header.Set("Accept", acceptBoth)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ServeHTTP did not return")
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	sessionID := rec.Header().Get(headerSessionID)
	if sessionID == "" {
		t.Fatal("missing Mcp-Session-Id in response")
	}
	if !strings.Contains(rec.Body.String(), `"serverInfo"`) {
		t.Fatalf("response body missing InitializeResult: %s", rec.Body.String())
	}

	h.mu.Lock()
	_, ok := h.transports[sessionID]
	h.mu.Unlock()
	if !ok {
		t.Fatal("session not registered")
	}
}

func TestUnknownSessionIDReturns404(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "http://localhost/", strings.NewReader(`{}`))
	req.Header.Set("Accept", acceptBoth)
	req.Header.Set(headerSessionID, "does-not-exist")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPostRequiresBothAcceptOffers(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "http://localhost/", strings.NewReader(`{}`))
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotAcceptable {
		t.Fatalf("status = %d, want 406", rec.Code)
	}
}

func TestGetRequiresEstablishedSession(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	req.Header.Set("Accept", "text/event-stream")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostRequiresJSONContentType(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "http://localhost/", strings.NewReader(`{}`))
	req.Header.Set("Accept", acceptBoth)
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rec.Code)
	}
}

func TestPostWithoutSessionRequiresInitialize(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "http://localhost/", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	req.Header.Set("Accept", acceptBoth)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostBatchedInitializeRejected(t *testing.T) {
	h, _ := newTestHandler()
	body := `[{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-11-25","capabilities":{},"clientInfo":{"name":"c","version":"1"}}},{"jsonrpc":"2.0","method":"notifications/initialized"}]`
	req := httptest.NewRequest(http.MethodPost, "http://localhost/", strings.NewReader(body))
	req.Header.Set("Accept", acceptBoth)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostInitializeOnExistingSessionRejected(t *testing.T) {
	h, server := newTestHandler()
	id := "sess-init"
	st := newSessionTransport(id, 8)
	sess, err := server.NewSession(st, id)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	st.session = sess
	h.mu.Lock()
	h.transports[id] = st
	h.mu.Unlock()

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-11-25","capabilities":{},"clientInfo":{"name":"c","version":"1"}}}`
	req := httptest.NewRequest(http.MethodPost, "http://localhost/", strings.NewReader(body))
	req.Header.Set("Accept", acceptBoth)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerSessionID, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetConflictsWithExistingReader(t *testing.T) {
	h, server := newTestHandler()
	id := "sess-conflict"
	st := newSessionTransport(id, 8)
	sess, err := server.NewSession(st, id)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	st.session = sess
	h.mu.Lock()
	h.transports[id] = st
	h.mu.Unlock()

	_, cancel, ok := st.waitFor(defaultStreamID)
	if !ok {
		t.Fatal("failed to pre-register a reader")
	}
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(headerSessionID, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestGetUnknownLastEventIDRejected(t *testing.T) {
	h, server := newTestHandler()
	id := "sess-lei"
	st := newSessionTransport(id, 8)
	sess, err := server.NewSession(st, id)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	st.session = sess
	h.mu.Lock()
	h.transports[id] = st
	h.mu.Unlock()

	req := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(headerSessionID, id)
	req.Header.Set(headerLastEventID, "does-not-exist")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostJSONResponseMode(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil, nil)
	h := NewHandler(func(*http.Request) *mcp.MCPServer { return server }, &Options{EnableJSONResponse: true})

	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-11-25","capabilities":{},"clientInfo":{"name":"c","version":"1"}}}`)
	req := httptest.NewRequest(http.MethodPost, "http://localhost/", body)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ServeHTTP did not return")
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), `"serverInfo"`) {
		t.Fatalf("response body missing InitializeResult: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "text/event-stream") {
		t.Fatalf("JSON response mode must not carry SSE framing: %s", rec.Body.String())
	}
}

func TestDeleteClosesSession(t *testing.T) {
	h, server := newTestHandler()
	id := "sess-1"
	st := newSessionTransport(id, 8)
	sess, err := server.NewSession(st, id)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	st.session = sess
	h.mu.Lock()
	h.transports[id] = st
	h.mu.Unlock()

	req := httptest.NewRequest(http.MethodDelete, "http://localhost/", nil)
	req.Header.Set(headerSessionID, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	h.mu.Lock()
	_, ok := h.transports[id]
	h.mu.Unlock()
	if ok {
		t.Fatal("session still registered after DELETE")
	}
}

func TestNonLoopbackHostRejected(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "http://evil.example.com/", strings.NewReader(`{}`))
	req.Host = "evil.example.com"
	req.Header.Set("Accept", acceptBoth)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMisdirectedRequest {
		t.Fatalf("status = %d, want 421", rec.Code)
	}
}

func TestNonLoopbackOriginRejected(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "http://localhost/", strings.NewReader(`{}`))
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Accept", acceptBoth)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestDNSRebindingProtectionCanBeDisabled(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil, nil)
	disabled := false
	h := NewHandler(func(*http.Request) *mcp.MCPServer { return server }, &Options{DNSRebindingProtection: &disabled})
	req := httptest.NewRequest(http.MethodPost, "http://evil.example.com/", strings.NewReader(`{}`))
	req.Host = "evil.example.com"
	req.Header.Set("Accept", acceptBoth)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code == http.StatusMisdirectedRequest || rec.Code == http.StatusForbidden {
		t.Fatalf("status = %d, want the DNS guard to be bypassed", rec.Code)
	}
}

func TestAcceptOffers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://localhost/", nil)
	req.Header.Set("Accept", "application/json, text/event-stream")
	jsonOK, streamOK := acceptOffers(req)
	if !jsonOK || !streamOK {
		t.Fatalf("jsonOK=%v streamOK=%v, want both true", jsonOK, streamOK)
	}
}
