// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package streamablehttp

import (
	"net/http/httptest"
	"testing"

	"github.com/promptping-ai/swift-mcp-sub003/internal/util"
)

func TestDNSRebindingGuardDefaultLoopbackOnly(t *testing.T) {
	g := dnsRebindingGuard{enabled: true}

	req := httptest.NewRequest("GET", "http://localhost:8080/", nil)
	req.Host = "localhost:8080"
	if err := g.check(req); err != nil {
		t.Fatalf("loopback host rejected: %v", err)
	}

	req2 := httptest.NewRequest("GET", "http://evil.example.com/", nil)
	req2.Host = "evil.example.com"
	if err := g.check(req2); err == nil {
		t.Fatal("non-loopback host accepted with no allow-list configured")
	}
}

func TestDNSRebindingGuardAllowedHosts(t *testing.T) {
	g := dnsRebindingGuard{enabled: true, allowedHosts: []util.HostPattern{"api.example.com:*"}}
	req := httptest.NewRequest("GET", "http://api.example.com:443/", nil)
	req.Host = "api.example.com:443"
	if err := g.check(req); err != nil {
		t.Fatalf("allow-listed host rejected: %v", err)
	}

	req2 := httptest.NewRequest("GET", "http://other.example.com/", nil)
	req2.Host = "other.example.com"
	if err := g.check(req2); err == nil {
		t.Fatal("non-allow-listed host accepted")
	}
}

func TestDNSRebindingGuardOriginChecked(t *testing.T) {
	g := dnsRebindingGuard{enabled: true}
	req := httptest.NewRequest("GET", "http://localhost/", nil)
	req.Host = "localhost"
	req.Header.Set("Origin", "https://evil.example.com")
	if err := g.check(req); err == nil {
		t.Fatal("non-loopback origin accepted with no allow-list configured")
	}
}

func TestDNSRebindingGuardMissingOriginAllowed(t *testing.T) {
	g := dnsRebindingGuard{enabled: true}
	req := httptest.NewRequest("GET", "http://localhost/", nil)
	req.Host = "localhost"
	if err := g.check(req); err != nil {
		t.Fatalf("request with no Origin header rejected: %v", err)
	}
}

func TestStripScheme(t *testing.T) {
	cases := map[string]string{
		"https://example.com:8080": "example.com:8080",
		"http://localhost":         "localhost",
		"localhost:8080":           "localhost:8080",
	}
	for in, want := range cases {
		if got := stripScheme(in); got != want {
			t.Errorf("stripScheme(%q) = %q, want %q", in, got, want)
		}
	}
}
