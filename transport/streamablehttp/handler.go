// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package streamablehttp

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/promptping-ai/swift-mcp-sub003/eventstore"
	internaljson "github.com/promptping-ai/swift-mcp-sub003/internal/json"
	"github.com/promptping-ai/swift-mcp-sub003/internal/util"
	"github.com/promptping-ai/swift-mcp-sub003/jsonrpc"
	"github.com/promptping-ai/swift-mcp-sub003/mcp"
)

const (
	headerSessionID      = "Mcp-Session-Id"
	headerProtocolVer    = "Mcp-Protocol-Version"
	headerLastEventID    = "Last-Event-Id"
	defaultEventsPerConn = 256

	// methodInitialize mirrors mcp's unexported method-name constant of
	// the same value: this package only needs the wire string to detect
	// an initialize request, not anything else mcp knows about it.
	methodInitialize = "initialize"
)

// Options configures a Handler.
type Options struct {
	// AllowedHosts and AllowedOrigins are the DNS-rebinding guard's
	// allow-lists (§4.2.1). With both empty, only loopback Host/Origin
	// values are accepted.
	AllowedHosts   []util.HostPattern
	AllowedOrigins []util.HostPattern
	// DNSRebindingProtection toggles the Host/Origin allow-list check of
	// §4.2.1 on or off. Defaults to enabled (nil); set to a false value
	// to disable the guard entirely, matching dnsRebindingSettings.enabled.
	DNSRebindingProtection *bool
	// EventsPerStream bounds how many past events are retained per logical
	// stream for Last-Event-Id replay. Defaults to 256.
	EventsPerStream int
	// NewSessionID generates the Mcp-Session-Id for a freshly created
	// session. Defaults to a random UUID with its hyphens stripped.
	NewSessionID func() string
	// EnableJSONResponse selects JSON response mode (§4.2.2 step 7,
	// §4.2.7): a request-bearing POST is answered with a single JSON
	// body instead of an SSE stream. Defaults to false (SSE mode).
	EnableJSONResponse bool
	// RetryIntervalMs is echoed as the retry: field of every SSE priming
	// frame (§4.2.8), suggesting a client reconnect cadence. 0 omits it.
	RetryIntervalMs int
	// Stateless selects stateless mode (§4.2, §6): no session persists
	// across requests, every POST is handled without an Mcp-Session-Id,
	// and GET/DELETE are not served.
	Stateless bool
	// OnSessionInitialized and OnSessionClosed are lifecycle hooks fired
	// synchronously as a stateful session is created and terminated.
	OnSessionInitialized func(sessionID string)
	OnSessionClosed      func(sessionID string)
}

// Handler is an http.Handler serving one or more MCP sessions over the
// Streamable HTTP transport described by §4.2.
type Handler struct {
	getServer    func(*http.Request) *mcp.MCPServer
	guard        dnsRebindingGuard
	eventsCap    int
	newID        func() string
	jsonResponse bool
	retryMs      int
	stateless    bool
	onInit       func(string)
	onClosed     func(string)

	mu         sync.Mutex
	transports map[string]*sessionTransport
}

// NewHandler returns a Handler that looks up or creates an *mcp.MCPServer
// via getServer for each new session. getServer may return the same
// server for every request, or a distinct one per request; it is called
// exactly once per new session, at initialize time.
func NewHandler(getServer func(*http.Request) *mcp.MCPServer, opts *Options) *Handler {
	if opts == nil {
		opts = &Options{}
	}
	eventsCap := opts.EventsPerStream
	if eventsCap <= 0 {
		eventsCap = defaultEventsPerConn
	}
	newID := opts.NewSessionID
	if newID == nil {
		newID = randomSessionID
	}
	dnsEnabled := true
	if opts.DNSRebindingProtection != nil {
		dnsEnabled = *opts.DNSRebindingProtection
	}
	return &Handler{
		getServer: getServer,
		guard: dnsRebindingGuard{
			enabled:        dnsEnabled,
			allowedHosts:   opts.AllowedHosts,
			allowedOrigins: opts.AllowedOrigins,
		},
		eventsCap:    eventsCap,
		newID:        newID,
		jsonResponse: opts.EnableJSONResponse,
		retryMs:      opts.RetryIntervalMs,
		stateless:    opts.Stateless,
		onInit:       opts.OnSessionInitialized,
		onClosed:     opts.OnSessionClosed,
		transports:   make(map[string]*sessionTransport),
	}
}

// CloseAll closes every session the handler currently owns.
func (h *Handler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, t := range h.transports {
		t.session.Close()
		t.close()
		delete(h.transports, id)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if err := h.guard.check(req); err != nil {
		status := http.StatusForbidden
		if _, ok := err.(*hostRejected); ok {
			status = http.StatusMisdirectedRequest
		}
		writeJSONRPCError(w, status, jsonrpc.NewInvalidRequest(err.Error()))
		return
	}

	switch req.Method {
	case http.MethodPost, http.MethodGet, http.MethodDelete:
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeJSONRPCError(w, http.StatusMethodNotAllowed, jsonrpc.NewInvalidRequest("unsupported method"))
		return
	}

	if h.stateless {
		h.serveStateless(w, req)
		return
	}

	jsonOK, streamOK := acceptOffers(req)
	switch req.Method {
	case http.MethodGet:
		if !streamOK {
			writeJSONRPCError(w, http.StatusNotAcceptable, jsonrpc.NewInvalidRequest("Accept must contain 'text/event-stream' for GET requests"))
			return
		}
	case http.MethodPost:
		if h.jsonResponse {
			if !jsonOK {
				writeJSONRPCError(w, http.StatusNotAcceptable, jsonrpc.NewInvalidRequest("Accept must contain 'application/json'"))
				return
			}
		} else if !jsonOK || !streamOK {
			writeJSONRPCError(w, http.StatusNotAcceptable, jsonrpc.NewInvalidRequest("Accept must contain both 'application/json' and 'text/event-stream'"))
			return
		}
	}

	var st *sessionTransport
	sessionHeader := req.Header.Get(headerSessionID)
	if sessionHeader != "" {
		h.mu.Lock()
		st = h.transports[sessionHeader]
		h.mu.Unlock()
		if st == nil {
			writeJSONRPCError(w, http.StatusNotFound, jsonrpc.NewInvalidRequest("session not found"))
			return
		}
	}

	switch req.Method {
	case http.MethodDelete:
		if st != nil && !validProtocolHeader(req) {
			writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("unsupported Mcp-Protocol-Version"))
			return
		}
		h.serveDELETE(w, st)
	case http.MethodGet:
		if st == nil {
			writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("GET requires an Mcp-Session-Id header"))
			return
		}
		if !validProtocolHeader(req) {
			writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("unsupported Mcp-Protocol-Version"))
			return
		}
		h.serveGET(w, req, st)
	case http.MethodPost:
		if st != nil && !validProtocolHeader(req) {
			writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("unsupported Mcp-Protocol-Version"))
			return
		}
		h.servePOST(w, req, st)
	}
}

// serveDELETE terminates an established session per §4.2.4. st is nil only
// when the request carried no Mcp-Session-Id header at all, since an
// unknown header is rejected with 404 earlier in ServeHTTP.
func (h *Handler) serveDELETE(w http.ResponseWriter, st *sessionTransport) {
	if st == nil {
		writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("DELETE requires an Mcp-Session-Id header"))
		return
	}
	h.mu.Lock()
	delete(h.transports, st.id)
	h.mu.Unlock()
	st.session.Close()
	st.close()
	if h.onClosed != nil {
		h.onClosed(st.id)
	}
	w.Header().Set(headerSessionID, st.id)
	w.WriteHeader(http.StatusOK)
}

// validProtocolHeader reports whether req's Mcp-Protocol-Version header,
// if present, names a recognized version (§4.2.6). An absent header is
// always valid: the negotiated version falls back to whatever initialize
// already settled on.
func validProtocolHeader(req *http.Request) bool {
	v := req.Header.Get(headerProtocolVer)
	if v == "" {
		return true
	}
	return mcp.ProtocolVersion(v).Valid()
}

func (h *Handler) createSession(req *http.Request) (*sessionTransport, error) {
	server := h.getServer(req)
	id := h.newID()
	if !isVisibleASCII(id) {
		return nil, errNonVisibleSessionID
	}
	st := newSessionTransport(id, h.eventsCap)
	sess, err := server.NewSession(st, id)
	if err != nil {
		return nil, err
	}
	st.session = sess
	h.mu.Lock()
	h.transports[id] = st
	h.mu.Unlock()
	if h.onInit != nil {
		h.onInit(id)
	}
	return st, nil
}

// servePOST handles a client POST per §4.2.2. st is nil when the request
// carried no Mcp-Session-Id header; the only frame that may legally arrive
// this way is a lone initialize request, which creates the session.
func (h *Handler) servePOST(w http.ResponseWriter, req *http.Request, st *sessionTransport) {
	ct := req.Header.Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		writeJSONRPCError(w, http.StatusUnsupportedMediaType, jsonrpc.NewInvalidRequest("Content-Type must be application/json"))
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewParseError(err))
		return
	}
	if len(body) == 0 {
		writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewParseError(errors.New("POST requires a non-empty body")))
		return
	}

	frames, isBatch, err := decodeBody(body)
	if err != nil {
		writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewParseError(err))
		return
	}

	var reqIDs []jsonrpc.RequestID
	hasInit := false
	for _, frame := range frames {
		if r, ok := jsonrpc.IsRequest(frame); ok {
			reqIDs = append(reqIDs, r.ID)
			if r.Method == methodInitialize {
				hasInit = true
			}
		}
	}

	// A batch is only a batch when it has more than one element; §4.2.2.4
	// only removes the ability to send *multiple* frames per POST, not the
	// ability to wrap a single frame in an array.
	multiFrame := isBatch && len(frames) > 1

	switch {
	case hasInit:
		if multiFrame {
			writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("initialize must not be sent as part of a batch"))
			return
		}
		if st != nil {
			writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("session already initialized"))
			return
		}
	case st == nil:
		writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("Mcp-Session-Id header is required"))
		return
	case multiFrame && !st.session.ProtocolVersion().BatchingAllowed():
		writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("batching is not permitted at the negotiated protocol version"))
		return
	}

	if st == nil {
		var err error
		st, err = h.createSession(req)
		if err != nil {
			writeJSONRPCError(w, http.StatusInternalServerError, jsonrpc.NewInternalError())
			return
		}
	}

	w.Header().Set(headerSessionID, st.id)

	streamID := st.newPostStreamID()
	done := st.registerStream(streamID, reqIDs, h.jsonResponse)
	dispatch := func() {
		for _, frame := range frames {
			st.session.HandleFrame(req.Context(), frame)
		}
	}

	if h.jsonResponse {
		dispatch()
		if len(reqIDs) == 0 {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		h.serveJSONResponse(w, req, st, streamID, done)
		return
	}

	if len(reqIDs) == 0 {
		dispatch()
		w.WriteHeader(http.StatusAccepted)
		return
	}

	signal, cancel, ok := st.waitFor(streamID)
	if !ok {
		// A freshly minted streamID can never already have a reader; this
		// only guards against a future refactor reusing streamIDs.
		writeJSONRPCError(w, http.StatusInternalServerError, jsonrpc.NewInternalError())
		return
	}
	defer cancel()
	// streamResponse opens the stream (headers, then a priming event if
	// applicable) before dispatch runs, so a response generated the
	// instant a handler goroutine starts can never be stored ahead of the
	// anchor a client will resume from.
	streamResponse(w, req, st, streamID, "", dispatch, done, h.retryMs, signal)
}

// serveJSONResponse implements JSON response mode (§4.2.2 step 7, §4.2.7):
// it blocks until every request on streamID has been answered, then
// returns the collected responses as a single JSON body instead of
// opening an SSE stream.
func (h *Handler) serveJSONResponse(w http.ResponseWriter, req *http.Request, st *sessionTransport, streamID string, done <-chan struct{}) {
	select {
	case <-done:
	case <-req.Context().Done():
		return
	}

	if st.isClosed() {
		writeJSONRPCError(w, http.StatusServiceUnavailable, jsonrpc.NewConnectionClosed("session closed before every response was ready"))
		return
	}

	body, err := jsonrpc.EncodeResponses(st.drainJSONResponses(streamID))
	if err != nil {
		writeJSONRPCError(w, http.StatusInternalServerError, jsonrpc.NewInternalError())
		return
	}
	w.Header().Set(headerSessionID, st.id)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// serveGET handles a standalone SSE stream or a Last-Event-Id resumption
// per §4.2.3.
func (h *Handler) serveGET(w http.ResponseWriter, req *http.Request, st *sessionTransport) {
	lastEventID := req.Header.Get(headerLastEventID)
	streamID := defaultStreamID
	resumeFrom := ""
	if lastEventID != "" {
		resolved, ok := st.store.StreamIDForEventID(lastEventID)
		if !ok {
			writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("unknown Last-Event-Id"))
			return
		}
		streamID = resolved
		resumeFrom = lastEventID
	}

	signal, cancel, ok := st.waitFor(streamID)
	if !ok {
		writeJSONRPCError(w, http.StatusConflict, jsonrpc.NewInvalidRequest("a stream is already open for this session"))
		return
	}
	defer cancel()

	streamResponse(w, req, st, streamID, resumeFrom, nil, nil, h.retryMs, signal)
}

// serveStateless handles every request when the handler has no persistent
// sessions (§4.2, §6): each POST gets its own ephemeral session that is
// torn down once its responses are delivered, and GET/DELETE are refused
// since there is nothing to resume or terminate.
func (h *Handler) serveStateless(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeJSONRPCError(w, http.StatusMethodNotAllowed, jsonrpc.NewInvalidRequest("stateless mode only serves POST"))
		return
	}

	jsonOK, streamOK := acceptOffers(req)
	if h.jsonResponse {
		if !jsonOK {
			writeJSONRPCError(w, http.StatusNotAcceptable, jsonrpc.NewInvalidRequest("Accept must contain 'application/json'"))
			return
		}
	} else if !jsonOK || !streamOK {
		writeJSONRPCError(w, http.StatusNotAcceptable, jsonrpc.NewInvalidRequest("Accept must contain both 'application/json' and 'text/event-stream'"))
		return
	}

	ct := req.Header.Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		writeJSONRPCError(w, http.StatusUnsupportedMediaType, jsonrpc.NewInvalidRequest("Content-Type must be application/json"))
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewParseError(err))
		return
	}

	frames, isBatch, err := decodeBody(body)
	if err != nil {
		writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewParseError(err))
		return
	}
	if isBatch && len(frames) > 1 {
		// There is no established session to consult a negotiated
		// protocol version from, so stateless mode conservatively never
		// accepts multi-frame batches.
		writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("batching is not permitted in stateless mode"))
		return
	}

	id := h.newID()
	st := newSessionTransport(id, h.eventsCap)
	server := h.getServer(req)
	sess, err := server.NewSession(st, id)
	if err != nil {
		writeJSONRPCError(w, http.StatusInternalServerError, jsonrpc.NewInternalError())
		return
	}
	st.session = sess
	defer func() {
		server.Sessions().Unregister(id)
		sess.Close()
		st.close()
	}()

	var reqIDs []jsonrpc.RequestID
	for _, frame := range frames {
		if r, ok := jsonrpc.IsRequest(frame); ok {
			reqIDs = append(reqIDs, r.ID)
		}
	}

	streamID := st.newPostStreamID()
	done := st.registerStream(streamID, reqIDs, h.jsonResponse)
	dispatch := func() {
		for _, frame := range frames {
			sess.HandleFrame(req.Context(), frame)
		}
	}

	if h.jsonResponse {
		dispatch()
		if len(reqIDs) == 0 {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		h.serveJSONResponse(w, req, st, streamID, done)
		return
	}

	if len(reqIDs) == 0 {
		dispatch()
		w.WriteHeader(http.StatusAccepted)
		return
	}

	signal, cancel, ok := st.waitFor(streamID)
	if !ok {
		writeJSONRPCError(w, http.StatusInternalServerError, jsonrpc.NewInternalError())
		return
	}
	defer cancel()
	streamResponse(w, req, st, streamID, "", dispatch, done, h.retryMs, signal)
}

// streamResponse writes w as an SSE stream carrying streamID's events. It
// writes the response headers, replays anything after resumeFrom, and (for
// a fresh stream) stores an anchor event, written as a priming frame on a
// version that supports resumability -- all before dispatch runs, so that a
// response generated the instant dispatch starts can never be appended to
// the store ahead of the anchor a client would resume from. dispatch may
// be nil (GET has nothing to dispatch). The loop then runs until done
// fires (if non-nil), the client disconnects, or the session is closed.
// signal must already be acquired via sessionTransport.waitFor; the caller
// owns releasing it.
func streamResponse(w http.ResponseWriter, req *http.Request, st *sessionTransport, streamID, resumeFrom string, dispatch func(), done <-chan struct{}, retryMs int, signal <-chan struct{}) {
	w.Header().Set(headerSessionID, st.id)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	lastID := resumeFrom
	writeTail := func() (wrote bool) {
		if lastID == "" {
			return false
		}
		_, err := st.store.ReplayEventsAfter(lastID, func(ev eventstore.StoredEvent) {
			if werr := writeSSEEvent(w, ev.ID, ev.Payload); werr == nil {
				lastID = ev.ID
				wrote = true
			}
		})
		return wrote && err == nil
	}

	if lastID != "" {
		writeTail()
	} else if id, err := st.store.StoreEvent(streamID, nil); err == nil {
		// Every fresh stream gets a stored anchor for writeTail to replay
		// from; it goes on the wire as a priming frame only on a version
		// that supports resumability.
		lastID = id
		if st.session.ProtocolVersion().SupportsResumability() {
			writeSSEPriming(w, id, retryMs)
		}
	}

	if dispatch != nil {
		dispatch()
	}

	for {
		writeTail()
		select {
		case <-done:
			// The response that satisfied done was stored immediately
			// before it closed; one last drain ensures it's flushed even
			// if this case fired before the matching signal.
			writeTail()
			return
		case <-req.Context().Done():
			return
		case <-signal:
			continue
		}
	}
}

func acceptOffers(req *http.Request) (jsonOK, streamOK bool) {
	for _, c := range strings.Split(strings.Join(req.Header.Values("Accept"), ","), ",") {
		switch strings.TrimSpace(c) {
		case "application/json":
			jsonOK = true
		case "text/event-stream":
			streamOK = true
		}
	}
	return jsonOK, streamOK
}

// randomSessionID generates an opaque, visible-ASCII session ID, matching
// the event store's own ID scheme (eventstore.newEventID) in using
// google/uuid's random bits rather than the teacher's rand.Text() helper.
func randomSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// isVisibleASCII reports whether s is non-empty and contains only the
// visible ASCII range (0x21-0x7E), the set §4.2.2.4 requires of a
// generated session ID.
func isVisibleASCII(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7E {
			return false
		}
	}
	return true
}

var errNonVisibleSessionID = errors.New("streamablehttp: generated session ID is not visible ASCII")

// writeJSONRPCError writes a JSON-RPC error envelope (§6: a response
// object with a null id) as the HTTP body, with status as the HTTP status
// line.
func writeJSONRPCError(w http.ResponseWriter, status int, jerr *jsonrpc.Error) {
	resp := jsonrpc.ErrorEnvelope(jerr)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data, err := internaljson.Marshal(resp); err == nil {
		w.Write(data)
	}
}
