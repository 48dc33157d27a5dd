// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package streamablehttp

import (
	"context"
	"testing"
	"time"

	"github.com/promptping-ai/swift-mcp-sub003/eventstore"
	"github.com/promptping-ai/swift-mcp-sub003/jsonrpc"
)

func TestRegisterStreamClosesDoneWhenAllAnswered(t *testing.T) {
	tr := newSessionTransport("s1", 8)
	id1 := jsonrpc.NewIntID(1)
	id2 := jsonrpc.NewIntID(2)
	done := tr.registerStream("post-1", []jsonrpc.RequestID{id1, id2}, false)

	select {
	case <-done:
		t.Fatal("done closed before any response sent")
	default:
	}

	resp1, _ := jsonrpc.NewResultResponse(id1, []byte(`{}`))
	if err := tr.Send(context.Background(), "s1", id1, resp1); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case <-done:
		t.Fatal("done closed after only one of two responses sent")
	default:
	}

	resp2, _ := jsonrpc.NewResultResponse(id2, []byte(`{}`))
	if err := tr.Send(context.Background(), "s1", id2, resp2); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done did not close after both responses sent")
	}
}

func TestRegisterStreamEmptyReqIDsIsPreClosed(t *testing.T) {
	tr := newSessionTransport("s1", 8)
	done := tr.registerStream("post-1", nil, false)
	select {
	case <-done:
	default:
		t.Fatal("done should already be closed for a request-less stream")
	}
}

func TestSendRoutesToRegisteredStream(t *testing.T) {
	tr := newSessionTransport("s1", 8)
	id1 := jsonrpc.NewIntID(1)
	tr.registerStream("post-1", []jsonrpc.RequestID{id1}, false)

	// Prime the stream first so we have an anchor event ID to replay after.
	anchor, err := tr.store.StoreEvent("post-1", nil)
	if err != nil {
		t.Fatalf("StoreEvent: %v", err)
	}

	note, _ := jsonrpc.NewNotification("notifications/progress", map[string]any{"progressToken": "t"})
	if err := tr.Send(context.Background(), "s1", id1, note); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var n int
	streamID, err := tr.store.ReplayEventsAfter(anchor, func(eventstore.StoredEvent) { n++ })
	if err != nil {
		t.Fatalf("ReplayEventsAfter: %v", err)
	}
	if streamID != "post-1" {
		t.Fatalf("streamID = %q, want post-1", streamID)
	}
	if n != 1 {
		t.Fatalf("replayed %d events, want 1", n)
	}
}

func TestSendWithUnrelatedRequestIDUsesDefaultStream(t *testing.T) {
	tr := newSessionTransport("s1", 8)
	anchor, err := tr.store.StoreEvent(defaultStreamID, nil)
	if err != nil {
		t.Fatalf("StoreEvent: %v", err)
	}
	note, _ := jsonrpc.NewNotification("notifications/progress", map[string]any{})
	if err := tr.Send(context.Background(), "s1", jsonrpc.RequestID{}, note); err != nil {
		t.Fatalf("Send: %v", err)
	}
	var n int
	if _, err := tr.store.ReplayEventsAfter(anchor, func(eventstore.StoredEvent) { n++ }); err != nil {
		t.Fatalf("ReplayEventsAfter: %v", err)
	}
	if n != 1 {
		t.Fatalf("default stream replayed %d events, want 1", n)
	}
}

func TestCloseUnblocksWaitingStreams(t *testing.T) {
	tr := newSessionTransport("s1", 8)
	done := tr.registerStream("post-1", []jsonrpc.RequestID{jsonrpc.NewIntID(1)}, false)
	tr.close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("close did not unblock a pending stream")
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	tr := newSessionTransport("s1", 8)
	tr.close()
	note, _ := jsonrpc.NewNotification("notifications/progress", map[string]any{})
	if err := tr.Send(context.Background(), "s1", jsonrpc.RequestID{}, note); err == nil {
		t.Fatal("Send after close should fail")
	}
}

func TestWaitForSignalsOnSend(t *testing.T) {
	tr := newSessionTransport("s1", 8)
	signal, cancel, ok := tr.waitFor(defaultStreamID)
	if !ok {
		t.Fatal("waitFor failed to register the only reader")
	}
	defer cancel()

	note, _ := jsonrpc.NewNotification("notifications/progress", map[string]any{})
	if err := tr.Send(context.Background(), "s1", jsonrpc.RequestID{}, note); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case <-signal:
	case <-time.After(time.Second):
		t.Fatal("waitFor did not observe the Send")
	}
}

func TestWaitForRejectsSecondReader(t *testing.T) {
	tr := newSessionTransport("s1", 8)
	_, cancel, ok := tr.waitFor(defaultStreamID)
	if !ok {
		t.Fatal("first waitFor should succeed")
	}
	defer cancel()

	_, _, ok = tr.waitFor(defaultStreamID)
	if ok {
		t.Fatal("second waitFor on the same stream should be rejected")
	}
}

func TestWaitForAllowsReaderAfterCancel(t *testing.T) {
	tr := newSessionTransport("s1", 8)
	_, cancel, ok := tr.waitFor(defaultStreamID)
	if !ok {
		t.Fatal("first waitFor should succeed")
	}
	cancel()

	if _, _, ok := tr.waitFor(defaultStreamID); !ok {
		t.Fatal("waitFor should succeed again once the prior reader cancelled")
	}
}

func TestJSONModeCollectsResponses(t *testing.T) {
	tr := newSessionTransport("s1", 8)
	id1 := jsonrpc.NewIntID(1)
	id2 := jsonrpc.NewIntID(2)
	done := tr.registerStream("post-1", []jsonrpc.RequestID{id1, id2}, true)

	resp1, _ := jsonrpc.NewResultResponse(id1, []byte(`{}`))
	resp2, _ := jsonrpc.NewResultResponse(id2, []byte(`{}`))
	if err := tr.Send(context.Background(), "s1", id1, resp1); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := tr.Send(context.Background(), "s1", id2, resp2); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done did not close after both responses sent")
	}

	got := tr.drainJSONResponses("post-1")
	if len(got) != 2 {
		t.Fatalf("drainJSONResponses returned %d responses, want 2", len(got))
	}
	if again := tr.drainJSONResponses("post-1"); len(again) != 0 {
		t.Fatal("drainJSONResponses should clear the buffer")
	}
}
