// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

// Protocol types for the core request/response and streaming engine: the
// initialize handshake, cancellation, progress, logging, sampling,
// elicitation, and roots messages. Wire types for the tool/resource/prompt
// registries live outside this module; handlers for those methods receive
// opaque json.RawMessage params instead.

import (
	"maps"

	internaljson "github.com/promptping-ai/swift-mcp-sub003/internal/json"
)

const (
	methodInitialize                = "initialize"
	notificationInitialized         = "notifications/initialized"
	methodPing                      = "ping"
	notificationCancelled           = "notifications/cancelled"
	methodSetLevel                  = "logging/setLevel"
	notificationLoggingMessage      = "notifications/message"
	notificationProgress            = "notifications/progress"
	methodCreateMessage             = "sampling/createMessage"
	methodElicit                    = "elicitation/create"
	notificationElicitationComplete = "notifications/elicitation/complete"
	methodListRoots                 = "roots/list"
	notificationRootsListChanged    = "notifications/roots/list_changed"
)

// Annotations are optional annotations for the client, used to inform how
// content is used or displayed.
type Annotations struct {
	// Audience describes who the intended customer of this content is. It
	// can include multiple entries for content useful to multiple
	// audiences (e.g. []Role{"user", "assistant"}).
	Audience []Role `json:"audience,omitempty"`
	// LastModified is an ISO 8601 formatted timestamp, e.g. when sampling
	// context was attached.
	LastModified string `json:"lastModified,omitempty"`
	// Priority describes how important this data is: 1 means effectively
	// required, 0 means entirely optional.
	Priority float64 `json:"priority,omitempty"`
}

// shallowClone returns a shallow clone of *p, or nil if p is nil.
func shallowClone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	x := *p
	return &x
}

// CancelledParams is the body of a notifications/cancelled notification.
type CancelledParams struct {
	Meta `json:"_meta,omitempty"`
	// Reason optionally describes why the request was cancelled. This may be
	// logged or presented to the user.
	Reason string `json:"reason,omitempty"`
	// RequestID is the ID of the request to cancel. It must correspond to
	// the ID of a request previously issued in the same direction.
	RequestID any `json:"requestId"`
}

func (x *CancelledParams) isParams()              {}
func (x *CancelledParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *CancelledParams) SetProgressToken(t any) { setProgressToken(x, t) }

// RootCapabilities describes a client's support for roots.
type RootCapabilities struct {
	// ListChanged reports whether the client supports notifications for
	// changes to the roots list.
	ListChanged bool `json:"listChanged,omitempty"`
}

// SamplingCapabilities describes the client's support for sampling. Known
// capabilities are defined here, but this is not a closed set: any client
// can define its own additional capabilities via Experimental.
type SamplingCapabilities struct{}

// ElicitationCapabilities describes the client's support for elicitation.
// If neither Form nor URL is set, the "form" capability is assumed.
type ElicitationCapabilities struct {
	Form *FormElicitationCapabilities `json:"form,omitempty"`
	URL  *URLElicitationCapabilities  `json:"url,omitempty"`
}

type FormElicitationCapabilities struct{}
type URLElicitationCapabilities struct{}

// ClientCapabilities are capabilities a client may support. Known
// capabilities are defined here, but this is not a closed set: any client
// can define its own additional capabilities.
type ClientCapabilities struct {
	// NOTE: any addition here must also be reflected in [ClientCapabilities.clone].

	// Experimental reports non-standard capabilities that the client
	// supports. The caller should not modify the map after assigning it.
	Experimental map[string]any `json:"experimental,omitempty"`
	// Extensions reports extensions that the client supports. Keys are
	// extension identifiers in "{vendor-prefix}/{extension-name}" format.
	// Use [ClientCapabilities.AddExtension] to ensure nil settings are
	// normalized to empty objects.
	Extensions map[string]any `json:"extensions,omitempty"`
	// Roots is present if the client supports listing root directories.
	Roots *RootCapabilities `json:"roots,omitempty"`
	// Sampling is present if the client supports sampling from an LLM.
	Sampling *SamplingCapabilities `json:"sampling,omitempty"`
	// Elicitation is present if the client supports elicitation from the
	// server.
	Elicitation *ElicitationCapabilities `json:"elicitation,omitempty"`
}

// AddExtension adds an extension with the given name and settings. If
// settings is nil, an empty map is used, since the spec requires an object,
// not null. The settings map should not be modified after the call.
func (c *ClientCapabilities) AddExtension(name string, settings map[string]any) {
	if c.Extensions == nil {
		c.Extensions = make(map[string]any)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	c.Extensions[name] = settings
}

func (c *ClientCapabilities) clone() *ClientCapabilities {
	cp := *c
	cp.Experimental = maps.Clone(c.Experimental)
	cp.Extensions = maps.Clone(c.Extensions)
	cp.Roots = shallowClone(c.Roots)
	cp.Sampling = shallowClone(c.Sampling)
	cp.Elicitation = shallowClone(c.Elicitation)
	return &cp
}

// LoggingCapabilities describes the server's support for sending log
// messages to the client.
type LoggingCapabilities struct{}

// ServerCapabilities describes capabilities that a server supports. Known
// capabilities are defined here, but this is not a closed set.
type ServerCapabilities struct {
	// NOTE: any addition here must also be reflected in [ServerCapabilities.clone].

	Experimental map[string]any       `json:"experimental,omitempty"`
	Extensions   map[string]any       `json:"extensions,omitempty"`
	Logging      *LoggingCapabilities `json:"logging,omitempty"`
}

func (c *ServerCapabilities) AddExtension(name string, settings map[string]any) {
	if c.Extensions == nil {
		c.Extensions = make(map[string]any)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	c.Extensions[name] = settings
}

func (c *ServerCapabilities) clone() *ServerCapabilities {
	cp := *c
	cp.Experimental = maps.Clone(c.Experimental)
	cp.Extensions = maps.Clone(c.Extensions)
	cp.Logging = shallowClone(c.Logging)
	return &cp
}

// An Implementation describes the name and version of an MCP
// implementation, with an optional title for UI representation.
type Implementation struct {
	// Name is intended for programmatic or logical use.
	Name string `json:"name"`
	// Title is intended for UI and end-user contexts.
	Title   string `json:"title,omitempty"`
	Version string `json:"version"`
	// WebsiteURL for the implementation, if any.
	WebsiteURL string `json:"websiteUrl,omitempty"`
}

// InitializeParams is sent by the client to initialize the session.
type InitializeParams struct {
	Meta `json:"_meta,omitempty"`
	// Capabilities describes the client's capabilities.
	Capabilities *ClientCapabilities `json:"capabilities"`
	// ClientInfo provides information about the client.
	ClientInfo *Implementation `json:"clientInfo"`
	// ProtocolVersion is the latest version of the Model Context Protocol
	// that the client supports.
	ProtocolVersion string `json:"protocolVersion"`
}

func (x *InitializeParams) isParams()              {}
func (x *InitializeParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *InitializeParams) SetProgressToken(t any) { setProgressToken(x, t) }

// InitializeResult is sent by the server in response to an initialize
// request from the client.
type InitializeResult struct {
	Meta `json:"_meta,omitempty"`
	// Capabilities describes the server's capabilities.
	Capabilities *ServerCapabilities `json:"capabilities"`
	// Instructions describing how to use the server and its features. This
	// can be thought of like a "hint" to the model, e.g. added to the
	// system prompt.
	Instructions string `json:"instructions,omitempty"`
	// ProtocolVersion is the version of the Model Context Protocol that
	// the server wants to use. This may not match the version the client
	// requested; if the client cannot support it, it must disconnect.
	ProtocolVersion string          `json:"protocolVersion"`
	ServerInfo      *Implementation `json:"serverInfo"`
}

func (*InitializeResult) isResult() {}

// InitializedParams is the body of a notifications/initialized notification.
type InitializedParams struct {
	Meta `json:"_meta,omitempty"`
}

func (x *InitializedParams) isParams()              {}
func (x *InitializedParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *InitializedParams) SetProgressToken(t any) { setProgressToken(x, t) }

// PingParams is the (empty) body of a ping request.
type PingParams struct {
	Meta `json:"_meta,omitempty"`
}

func (x *PingParams) isParams()              {}
func (x *PingParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *PingParams) SetProgressToken(t any) { setProgressToken(x, t) }

// EmptyResult is returned by handlers that have nothing to report, such as
// ping.
type EmptyResult struct {
	Meta `json:"_meta,omitempty"`
}

func (*EmptyResult) isResult() {}

// SetLevelParams is the body of a logging/setLevel request.
type SetLevelParams struct {
	Meta `json:"_meta,omitempty"`
	// Level is the minimum severity the client wants to receive from the
	// server. The server sends all logs at this level and higher (i.e.
	// more severe) as notifications/message.
	Level LoggingLevel `json:"level"`
}

func (x *SetLevelParams) isParams()              {}
func (x *SetLevelParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *SetLevelParams) SetProgressToken(t any) { setProgressToken(x, t) }

// LoggingMessageParams is the body of a notifications/message notification.
type LoggingMessageParams struct {
	Meta `json:"_meta,omitempty"`
	// Data is the payload to log, such as a string message or an object.
	// Any JSON-serializable type is allowed.
	Data any `json:"data"`
	// Level is the severity of this log message.
	Level LoggingLevel `json:"level"`
	// Logger optionally names the logger issuing this message.
	Logger string `json:"logger,omitempty"`
}

func (x *LoggingMessageParams) isParams()              {}
func (x *LoggingMessageParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *LoggingMessageParams) SetProgressToken(t any) { setProgressToken(x, t) }

// ProgressNotificationParams is the body of a notifications/progress
// notification.
type ProgressNotificationParams struct {
	Meta `json:"_meta,omitempty"`
	// ProgressToken is the token given in the initial request, used to
	// associate this notification with the request that is proceeding.
	ProgressToken any `json:"progressToken"`
	// Message optionally describes the current progress.
	Message string `json:"message,omitempty"`
	// Progress is the progress thus far. It should increase every time
	// progress is made, even if Total is unknown.
	Progress float64 `json:"progress"`
	// Total is the total number of items to process, if known. Zero means
	// unknown.
	Total float64 `json:"total,omitempty"`
}

func (x *ProgressNotificationParams) isParams()              {}
func (x *ProgressNotificationParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *ProgressNotificationParams) SetProgressToken(t any) { setProgressToken(x, t) }

// The sender or recipient of messages and data in a conversation.
type Role string

// Hints to use for model selection. Keys not declared here are currently
// left unspecified by the spec and are up to the client to interpret.
type ModelHint struct {
	// Name is a hint for a model name. The client should treat this as a
	// substring of a model name, and may map it to a different provider's
	// model as long as it fills a similar niche.
	Name string `json:"name,omitempty"`
}

// ModelPreferences are the server's preferences for model selection,
// requested of the client during sampling. These preferences are always
// advisory: the client may ignore them.
type ModelPreferences struct {
	// CostPriority: 0 means cost is not important, 1 means it is the most
	// important factor.
	CostPriority float64 `json:"costPriority,omitempty"`
	// Hints are evaluated in order; the client should prioritize them over
	// the numeric priorities, but may still use the priorities to select
	// among ambiguous matches.
	Hints []*ModelHint `json:"hints,omitempty"`
	// IntelligencePriority: 0 means intelligence is not important, 1 means
	// it is the most important factor.
	IntelligencePriority float64 `json:"intelligencePriority,omitempty"`
	// SpeedPriority: 0 means latency is not important, 1 means it is the
	// most important factor.
	SpeedPriority float64 `json:"speedPriority,omitempty"`
}

// SamplingMessage describes a message issued to or received from an LLM
// API.
type SamplingMessage struct {
	Content Content `json:"content"`
	Role    Role    `json:"role"`
}

// UnmarshalJSON handles unmarshalling of Content into the Content interface.
func (m *SamplingMessage) UnmarshalJSON(data []byte) error {
	type msg SamplingMessage // avoid recursion
	var wire struct {
		msg
		Content *wireContent `json:"content"`
	}
	if err := internaljson.Unmarshal(data, &wire); err != nil {
		return err
	}
	var err error
	if wire.msg.Content, err = contentFromWire(wire.Content, map[string]bool{"text": true, "image": true, "audio": true}); err != nil {
		return err
	}
	*m = SamplingMessage(wire.msg)
	return nil
}

// CreateMessageParams is a request from the server to sample an LLM via the
// client. This request is often, but not always, sent on behalf of a human
// reviewing the server's request.
type CreateMessageParams struct {
	Meta `json:"_meta,omitempty"`
	// IncludeContext requests that context from one or more MCP servers
	// (including the caller) be attached to the prompt. The client may
	// ignore this request. Default is "none".
	IncludeContext string `json:"includeContext,omitempty"`
	// MaxTokens is the maximum number of tokens to sample, as requested by
	// the server. The client may choose to sample fewer.
	MaxTokens int64              `json:"maxTokens"`
	Messages  []*SamplingMessage `json:"messages"`
	// Metadata is optional, provider-specific metadata to pass through to
	// the LLM.
	Metadata any `json:"metadata,omitempty"`
	// ModelPreferences are the server's preferences for model selection.
	// The client may ignore them.
	ModelPreferences *ModelPreferences `json:"modelPreferences,omitempty"`
	StopSequences    []string          `json:"stopSequences,omitempty"`
	// SystemPrompt is an optional system prompt the server wants to use.
	// The client may modify or omit it.
	SystemPrompt string  `json:"systemPrompt,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

func (x *CreateMessageParams) isParams()              {}
func (x *CreateMessageParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *CreateMessageParams) SetProgressToken(t any) { setProgressToken(x, t) }

// CreateMessageResult is the client's response to a sampling/createMessage
// request from the server. The client should inform the user before
// returning the sampled message, to allow them to inspect it (human in the
// loop) and decide whether to let the server see it.
type CreateMessageResult struct {
	Meta    `json:"_meta,omitempty"`
	Content Content `json:"content"`
	// Model is the name of the model that generated the message.
	Model string `json:"model"`
	Role  Role   `json:"role"`
	// StopReason is why sampling stopped, if known. Standard values:
	// "endTurn", "stopSequence", "maxTokens".
	StopReason string `json:"stopReason,omitempty"`
}

func (*CreateMessageResult) isResult() {}

func (r *CreateMessageResult) UnmarshalJSON(data []byte) error {
	type result CreateMessageResult // avoid recursion
	var wire struct {
		result
		Content *wireContent `json:"content"`
	}
	if err := internaljson.Unmarshal(data, &wire); err != nil {
		return err
	}
	var err error
	if wire.result.Content, err = contentFromWire(wire.Content, map[string]bool{"text": true, "image": true, "audio": true}); err != nil {
		return err
	}
	*r = CreateMessageResult(wire.result)
	return nil
}

// ElicitParams is a request from the server to elicit additional
// information from the user via the client.
type ElicitParams struct {
	Meta `json:"_meta,omitempty"`
	// Mode is the mode of elicitation to use. If unset, it is inferred
	// from the other fields.
	Mode string `json:"mode"`
	// Message is presented to the user.
	Message string `json:"message"`
	// RequestedSchema is a JSON schema object defining the requested
	// elicitation schema. Only top-level properties are allowed, without
	// nesting. Used only for "form" elicitation.
	RequestedSchema any `json:"requestedSchema,omitempty"`
	// URL is presented to the user. Used only for "url" elicitation.
	URL string `json:"url,omitempty"`
	// ElicitationID identifies the elicitation. Used only for "url"
	// elicitation.
	ElicitationID string `json:"elicitationId,omitempty"`
}

func (x *ElicitParams) isParams()              {}
func (x *ElicitParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *ElicitParams) SetProgressToken(t any) { setProgressToken(x, t) }

// ElicitResult is the client's response to an elicitation/create request
// from the server.
type ElicitResult struct {
	Meta `json:"_meta,omitempty"`
	// Action is the user's action in response to the elicitation:
	// "accept", "decline", or "cancel".
	Action string `json:"action"`
	// Content is the submitted form data, present only when Action is
	// "accept".
	Content map[string]any `json:"content,omitempty"`
}

func (*ElicitResult) isResult() {}

// ElicitationCompleteParams is sent from the server to the client,
// informing it that an out-of-band (url-mode) elicitation has completed.
type ElicitationCompleteParams struct {
	Meta `json:"_meta,omitempty"`
	// ElicitationID must correspond to the elicitationId from the original
	// elicitation/create request.
	ElicitationID string `json:"elicitationId"`
}

func (x *ElicitationCompleteParams) isParams()              {}
func (x *ElicitationCompleteParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *ElicitationCompleteParams) SetProgressToken(t any) { setProgressToken(x, t) }

// ListRootsParams is the (empty) body of a roots/list request.
type ListRootsParams struct {
	Meta `json:"_meta,omitempty"`
}

func (x *ListRootsParams) isParams()              {}
func (x *ListRootsParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *ListRootsParams) SetProgressToken(t any) { setProgressToken(x, t) }

// Root represents a root directory or file that the server can operate on.
type Root struct {
	Meta `json:"_meta,omitempty"`
	// Name optionally provides a human-readable identifier for the root.
	Name string `json:"name,omitempty"`
	// URI identifies the root. It must start with file:// for now.
	URI string `json:"uri"`
}

// ListRootsResult is the client's response to a roots/list request from the
// server.
type ListRootsResult struct {
	Meta  `json:"_meta,omitempty"`
	Roots []*Root `json:"roots"`
}

func (*ListRootsResult) isResult() {}

// RootsListChangedParams is the body of a notifications/roots/list_changed
// notification.
type RootsListChangedParams struct {
	Meta `json:"_meta,omitempty"`
}

func (x *RootsListChangedParams) isParams()              {}
func (x *RootsListChangedParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *RootsListChangedParams) SetProgressToken(t any) { setProgressToken(x, t) }
