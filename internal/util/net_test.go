// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.
package util

import "testing"

// TestIsLoopback tests the IsLoopback helper function.
func TestIsLoopback(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"localhost", true},
		{"localhost:3000", true},
		{"127.0.0.1", true},
		{"127.0.0.1:3000", true},
		{"[::1]", true},
		{"[::1]:3000", true},
		{"::1", true},
		{"", false},
		{"evil.com", false},
		{"evil.com:80", false},
		{"localhost.evil.com", false},
		{"127.0.0.1.evil.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := IsLoopback(tt.addr); got != tt.want {
				t.Errorf("IsLoopback(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestHostPatternMatch(t *testing.T) {
	tests := []struct {
		pattern HostPattern
		value   string
		want    bool
	}{
		{"localhost:8080", "localhost:8080", true},
		{"localhost:8080", "localhost:8081", false},
		{"localhost:*", "localhost:8080", true},
		{"localhost:*", "localhost:1", true},
		{"localhost:*", "localhost", false},
		{"localhost:*", "localhost:abc", false},
		{"https://example.com:*", "https://example.com:443", true},
		{"https://example.com:*", "http://example.com:443", false},
		{"evil.example:80", "evil.example:80", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.pattern)+"/"+tt.value, func(t *testing.T) {
			if got := tt.pattern.Match(tt.value); got != tt.want {
				t.Errorf("%q.Match(%q) = %v, want %v", tt.pattern, tt.value, got, tt.want)
			}
		})
	}
}

func TestMatchAnyEmptyRejectsEverything(t *testing.T) {
	if MatchAny(nil, "localhost:8080") {
		t.Error("MatchAny(nil, ...) = true, want false")
	}
}
