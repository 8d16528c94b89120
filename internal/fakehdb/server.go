// Package fakehdb provides a fake HarperDB operations server for testing
// purposes. It keeps schemas, tables and records in memory and answers the
// operations the SDK's handle layer relies on with the same bodies a real
// server produces.
//
// To flexibly inject failures, you can configure stub responses that match
// specific operations and request fields, along with failure configurations
// that specify how it fails (e.g., delays, invalid responses, dropped
// connections).
package fakehdb

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/harperdb/harperdb-sdk-go/internal/codec"
	"github.com/harperdb/harperdb-sdk-go/pkg/logger"
)

// cryptoRandInt64 generates a cryptographically secure random int64 in [0, max)
func cryptoRandInt64(rMax int64) int64 {
	if rMax <= 0 {
		return 0
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(rMax))
	return n.Int64()
}

// cryptoRandFloat64 generates a cryptographically secure random float64 in [0.0, 1.0)
func cryptoRandFloat64() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1<<53))
	return float64(n.Int64()) / float64(1<<53)
}

// FailureType represents the type of failure to inject during request processing
type FailureType string

const (
	// FailureRequestDelay delays before processing the request
	FailureRequestDelay FailureType = "request_delay"
	// FailureInvalidResponse sends random bytes with status 200 instead of JSON
	FailureInvalidResponse FailureType = "invalid_response"
	// FailureDropConnection closes the underlying network connection without responding
	FailureDropConnection FailureType = "drop_connection"
)

// Request is a decoded operation body.
type Request map[string]any

// Operation returns the operation name, or "" if it is missing.
func (r Request) Operation() string {
	op, _ := r["operation"].(string)
	return op
}

// RequestMatcher defines criteria for matching incoming operations.
type RequestMatcher struct {
	// Operation is the operation name to match
	Operation string
	// Matcher is an optional function to match on the other request fields.
	// If nil, only the operation name is used for matching.
	Matcher func(req Request) bool
}

// StubError is an error response: the status code and the body's "error" field.
type StubError struct {
	StatusCode int
	Message    string
}

// StubResponse defines a pre-configured response for matching requests.
type StubResponse struct {
	// Matcher determines which requests this stub should handle
	Matcher RequestMatcher
	// Result is the successful response body (mutually exclusive with Error)
	Result any
	// Error is the error to return (mutually exclusive with Result)
	Error *StubError
	// Failures defines failure injection configurations for this response
	Failures []FailureConfig
}

// SimpleStubResponse returns a stub answering every request for operation
// with result.
func SimpleStubResponse(operation string, result any) StubResponse {
	return StubResponse{
		Matcher: RequestMatcher{Operation: operation},
		Result:  result,
	}
}

// FailureConfig defines how and when to inject a specific failure type
type FailureConfig struct {
	// Type specifies the type of failure to inject
	Type FailureType
	// Probability of triggering this failure (0.0 to 1.0)
	Probability float64
	// MinDelay is the minimum delay for FailureRequestDelay
	MinDelay time.Duration
	// MaxDelay is the maximum delay for FailureRequestDelay
	MaxDelay time.Duration
}

// Server is a fake HarperDB operations API.
type Server struct {
	// Username and Password, when both set, are required on every request
	// either as Basic credentials or through an operation token.
	Username string
	Password string
	// LegacyDescribeSchema makes describe_schema answer with an array of
	// table descriptions instead of an object keyed by table name.
	LegacyDescribeSchema bool
	// TokenTTL is the lifetime of issued operation tokens. Zero means one hour.
	TokenTTL time.Duration

	addr           string
	listener       net.Listener
	server         *http.Server
	mu             sync.RWMutex
	stubResponses  []StubResponse
	globalFailures []FailureConfig
	requests       []Request
	store          *store
	tokens         *tokenIssuer
	marshaler      codec.Marshaler
	unmarshaler    codec.Unmarshaler
	log            logger.Logger
}

// NewServer creates a new fake HarperDB server.
// Use "127.0.0.1:0" to bind to a random available port.
func NewServer(addr string) *Server {
	c := codec.NewJSON()

	s := &Server{
		addr:        addr,
		store:       newStore(),
		tokens:      newTokenIssuer(),
		marshaler:   c,
		unmarshaler: c,
		log:         logger.Nop(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handle).Methods(http.MethodPost)
	s.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// SetLogger replaces the server's logger, which discards everything by default.
func (s *Server) SetLogger(l logger.Logger) {
	s.log = l
}

// AddStubResponse adds a stub response configuration to the server.
// Stub responses are matched in the order they were added and take
// precedence over the built-in operations.
func (s *Server) AddStubResponse(stub StubResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubResponses = append(s.stubResponses, stub)
}

// SetGlobalFailures sets failure configurations that apply to all requests.
// These are checked before stub-specific failures.
func (s *Server) SetGlobalFailures(failures []FailureConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalFailures = failures
}

// Requests returns every request received so far, in order.
func (s *Server) Requests() []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Request(nil), s.requests...)
}

// Operations returns the operation name of every request received so far.
func (s *Server) Operations() []string {
	reqs := s.Requests()
	ops := make([]string, len(reqs))
	for i, r := range reqs {
		ops[i] = r.Operation()
	}
	return ops
}

// ResetRequests forgets the requests received so far.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Start starts the server and begins accepting connections.
// Returns an error if the server cannot bind to the specified address.
func (s *Server) Start() error {
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", "error", err)
		}
	}()

	return nil
}

// Stop shuts down the server and closes all connections
func (s *Server) Stop() error {
	return s.server.Close()
}

// Address returns the actual address the server is listening on.
// This is useful when using "127.0.0.1:0" to get the assigned port.
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// URL returns the operations endpoint of the running server.
func (s *Server) URL() string {
	return "http://" + s.Address()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	globalFailures := s.globalFailures
	s.mu.RUnlock()

	for _, failure := range globalFailures {
		if shouldTriggerFailure(failure.Probability) {
			if err := s.applyFailure(w, failure); err != nil {
				return
			}
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req Request
	if err := s.unmarshaler.Unmarshal(body, &req); err != nil || req == nil {
		s.sendError(w, http.StatusBadRequest, "Invalid JSON.")
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	op := req.Operation()
	s.log.Debug("Received operation", "operation", op)

	if op == "" {
		s.sendError(w, http.StatusBadRequest, "operation is required")
		return
	}

	if status, msg := s.authenticate(r, req); status != http.StatusOK {
		s.sendError(w, status, msg)
		return
	}

	if stub := s.matchStub(req); stub != nil {
		for _, failure := range stub.Failures {
			if shouldTriggerFailure(failure.Probability) {
				if err := s.applyFailure(w, failure); err != nil {
					return
				}
			}
		}
		if stub.Error != nil {
			s.sendError(w, stub.Error.StatusCode, stub.Error.Message)
		} else {
			s.sendResponse(w, stub.Result)
		}
		return
	}

	res, err := s.dispatch(req)
	if err != nil {
		var opErr *operationError
		if errors.As(err, &opErr) {
			s.sendError(w, opErr.status, opErr.message)
			return
		}
		s.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.sendResponse(w, res)
}

func (s *Server) matchStub(req Request) *StubResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.stubResponses {
		stub := &s.stubResponses[i]
		if stub.Matcher.Operation != req.Operation() {
			continue
		}
		if stub.Matcher.Matcher == nil || stub.Matcher.Matcher(req) {
			return stub
		}
	}
	return nil
}

func (s *Server) dispatch(req Request) (any, error) {
	switch op := req.Operation(); op {
	case "create_authentication_tokens":
		return s.createTokens(req)
	case "refresh_operation_token":
		return s.refreshToken(req)
	case "describe_schema":
		return describeSchema(s.store, req, s.LegacyDescribeSchema)
	default:
		handler, ok := operations[op]
		if !ok {
			// unknown operations echo the request, like a server that accepted it
			return map[string]any{
				"default":   "response",
				"operation": op,
				"request":   map[string]any(req),
			}, nil
		}
		return handler(s.store, req)
	}
}

func (s *Server) applyFailure(w http.ResponseWriter, failure FailureConfig) error {
	switch failure.Type {
	case FailureRequestDelay:
		time.Sleep(randomDuration(failure.MinDelay, failure.MaxDelay))

	case FailureInvalidResponse:
		data := make([]byte, 100)
		if _, err := rand.Read(data); err != nil {
			s.log.Warn("Error generating invalid response", "error", err)
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			s.log.Warn("Error writing invalid response", "error", err)
		}
		return fmt.Errorf("invalid response sent")

	case FailureDropConnection:
		hj, ok := w.(http.Hijacker)
		if !ok {
			return fmt.Errorf("connection cannot be hijacked")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return err
		}
		conn.Close()
		return fmt.Errorf("connection dropped")
	}

	return nil
}

func (s *Server) sendResponse(w http.ResponseWriter, result any) {
	s.write(w, http.StatusOK, result)
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.write(w, status, map[string]any{"error": message})
}

func (s *Server) write(w http.ResponseWriter, status int, body any) {
	data, err := s.marshaler.Marshal(body)
	if err != nil {
		s.log.Error("Error marshaling response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.log.Warn("Error writing response", "error", err)
	}
}

func shouldTriggerFailure(probability float64) bool {
	if probability <= 0 {
		return false
	}
	if probability >= 1 {
		return true
	}
	return cryptoRandFloat64() < probability
}

func randomDuration(minDelay, maxDelay time.Duration) time.Duration {
	if maxDelay <= minDelay {
		return minDelay
	}
	return minDelay + time.Duration(cryptoRandInt64(int64(maxDelay-minDelay)))
}
