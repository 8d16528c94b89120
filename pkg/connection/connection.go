// Package connection carries operation requests to a HarperDB instance.
//
// HarperDB exposes every operation through a single endpoint: a POST whose
// JSON body names the operation in its "operation" field. A Connection sends
// one such Request and decodes the response body into a destination value.
package connection

import (
	"context"
	"fmt"
)

type Connection interface {
	// Send posts req and decodes the response into dst. dst may be nil when
	// the caller does not need the body.
	Send(ctx context.Context, req Request, dst any) error
	Close(ctx context.Context) error
}

// RawSender sends a request with an explicit Authorization header value,
// bypassing the configured Authenticator. An empty value sends no header.
type RawSender interface {
	SendWithAuthorization(ctx context.Context, authorization string, req Request, dst any) error
}

// Request is the JSON object sent for one operation.
type Request map[string]any

// NewRequest returns a request for the named operation.
func NewRequest(operation string) Request {
	return Request{"operation": operation}
}

// Operation returns the operation name, or "" if it is missing.
func (r Request) Operation() string {
	op, _ := r["operation"].(string)
	return op
}

// With sets a field and returns the request for chaining.
func (r Request) With(field string, value any) Request {
	r[field] = value
	return r
}

// Send sends req on c and decodes the response into a new T.
func Send[T any](ctx context.Context, c Connection, req Request) (*T, error) {
	var res T
	if err := c.Send(ctx, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Validate checks that a request can be sent at all.
func (r Request) Validate() error {
	if r.Operation() == "" {
		return fmt.Errorf("request has no operation: %v", map[string]any(r))
	}
	return nil
}
