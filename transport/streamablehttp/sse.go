// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package streamablehttp

import (
	"bufio"
	"fmt"
	"net/http"
)

// writeSSEEvent writes a single server-sent event carrying data as the
// "message" event's payload, with id as its event ID (used by the client
// for Last-Event-Id resumption). An empty id writes an id-less event.
func writeSSEEvent(w http.ResponseWriter, id string, data []byte) error {
	bw := bufio.NewWriter(w)
	if id != "" {
		if _, err := fmt.Fprintf(bw, "id: %s\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "event: message\ndata: %s\n\n", data); err != nil {
		return err
	}
	return flush(w, bw)
}

// writeSSEPriming writes the id-only priming frame §4.2.8 specifies: no
// event: line, an id: line, an optional retry: line (retryMs <= 0 omits
// it) and an empty data: line carrying no payload, so a client can anchor Last-Event-Id resumption
// from the very first byte of a stream that hasn't carried a real event
// yet.
func writeSSEPriming(w http.ResponseWriter, id string, retryMs int) error {
	bw := bufio.NewWriter(w)
	if id != "" {
		if _, err := fmt.Fprintf(bw, "id: %s\n", id); err != nil {
			return err
		}
	}
	if retryMs > 0 {
		if _, err := fmt.Fprintf(bw, "retry: %d\n", retryMs); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "data: \n\n"); err != nil {
		return err
	}
	return flush(w, bw)
}

func flush(w http.ResponseWriter, bw *bufio.Writer) error {
	if err := bw.Flush(); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
