// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package streamablehttp

import (
	"fmt"
	"net/http"

	"github.com/promptping-ai/swift-mcp-sub003/internal/util"
)

// hostRejected and originRejected distinguish the two ways a request can
// fail dnsRebindingGuard.check, since §4.2.1 maps them to different status
// codes (421 for Host, 403 for Origin).
type hostRejected struct{ reason string }

func (e *hostRejected) Error() string { return e.reason }

type originRejected struct{ reason string }

func (e *originRejected) Error() string { return e.reason }

// dnsRebindingGuard validates the Host and Origin headers of an incoming
// request against the configured allow-lists, per §4.2.1. A browser-based
// client always sends Origin; a non-browser client (a CLI, another
// service) typically does not, so a missing Origin is not itself
// rejected -- only a present-and-disallowed one is.
//
// With no allowed hosts configured, only loopback Host headers are
// accepted: this is the safe default for a server that was not
// explicitly told it's reachable from elsewhere.
type dnsRebindingGuard struct {
	enabled        bool
	allowedHosts   []util.HostPattern
	allowedOrigins []util.HostPattern
}

func (g dnsRebindingGuard) check(req *http.Request) error {
	if !g.enabled {
		return nil
	}
	host := req.Host
	if len(g.allowedHosts) > 0 {
		if !util.MatchAny(g.allowedHosts, host) {
			return &hostRejected{fmt.Sprintf("host %q is not in the allowed list", host)}
		}
	} else if !util.IsLoopback(host) {
		return &hostRejected{fmt.Sprintf("host %q is not loopback and no allowed hosts are configured", host)}
	}

	if origin := req.Header.Get("Origin"); origin != "" {
		if len(g.allowedOrigins) > 0 {
			if !util.MatchAny(g.allowedOrigins, origin) {
				return &originRejected{fmt.Sprintf("origin %q is not in the allowed list", origin)}
			}
		} else if !util.IsLoopback(stripScheme(origin)) {
			return &originRejected{fmt.Sprintf("origin %q is not loopback and no allowed origins are configured", origin)}
		}
	}
	return nil
}

// stripScheme removes a leading "scheme://" from an Origin header value so
// it can be checked with the same loopback-host logic as a Host header.
func stripScheme(origin string) string {
	for i := 0; i+2 < len(origin); i++ {
		if origin[i] == ':' && origin[i+1] == '/' && origin[i+2] == '/' {
			return origin[i+3:]
		}
	}
	return origin
}
