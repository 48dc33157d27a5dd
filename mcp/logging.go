// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

// LoggingLevel is the severity of a logging/message notification. These
// map to RFC-5424 syslog severities:
// https://datatracker.ietf.org/doc/html/rfc5424#section-6.2.1
type LoggingLevel string

const (
	LoggingLevelDebug     LoggingLevel = "debug"
	LoggingLevelInfo      LoggingLevel = "info"
	LoggingLevelNotice    LoggingLevel = "notice"
	LoggingLevelWarning   LoggingLevel = "warning"
	LoggingLevelError     LoggingLevel = "error"
	LoggingLevelCritical  LoggingLevel = "critical"
	LoggingLevelAlert     LoggingLevel = "alert"
	LoggingLevelEmergency LoggingLevel = "emergency"
)

var loggingLevelOrder = map[LoggingLevel]int{
	LoggingLevelDebug:     0,
	LoggingLevelInfo:      1,
	LoggingLevelNotice:    2,
	LoggingLevelWarning:   3,
	LoggingLevelError:     4,
	LoggingLevelCritical:  5,
	LoggingLevelAlert:     6,
	LoggingLevelEmergency: 7,
}

// Valid reports whether l is one of the eight recognized severities.
func (l LoggingLevel) Valid() bool {
	_, ok := loggingLevelOrder[l]
	return ok
}

// atLeastAsSevereAs reports whether l should be delivered to a client
// that requested logs at minLevel or more severe.
func (l LoggingLevel) atLeastAsSevereAs(minLevel LoggingLevel) bool {
	return loggingLevelOrder[l] >= loggingLevelOrder[minLevel]
}
