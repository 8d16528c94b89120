// Package http implements connection.Connection over HTTP POST with JSON bodies.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buger/jsonparser"

	"github.com/harperdb/harperdb-sdk-go/internal/codec"
	"github.com/harperdb/harperdb-sdk-go/internal/rand"
	"github.com/harperdb/harperdb-sdk-go/pkg/connection"
	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
	"github.com/harperdb/harperdb-sdk-go/pkg/logger"
)

type Connection struct {
	URL         string
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler

	auth       connection.Authenticator
	logger     logger.Logger
	httpClient *http.Client
}

var (
	_ connection.Connection = (*Connection)(nil)
	_ connection.RawSender  = (*Connection)(nil)
)

func New(p *connection.Config) *Connection {
	con := Connection{
		URL:         p.URL.String(),
		Marshaler:   p.Marshaler,
		Unmarshaler: p.Unmarshaler,
		auth:        p.Auth,
		logger:      p.Logger,
		httpClient:  p.HTTPClient,
	}

	if con.httpClient == nil {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = constants.DefaultHTTPTimeout
		}
		con.httpClient = &http.Client{
			Timeout: timeout,
		}
	}
	if con.logger == nil {
		con.logger = logger.Nop()
	}

	return &con
}

func (c *Connection) Close(ctx context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Connection) Send(ctx context.Context, req connection.Request, dst any) error {
	authorization := ""
	if c.auth != nil {
		var err error
		authorization, err = c.auth.Authorization(ctx, c)
		if err != nil {
			return err
		}
	}
	return c.SendWithAuthorization(ctx, authorization, req, dst)
}

func (c *Connection) SendWithAuthorization(ctx context.Context, authorization string, req connection.Request, dst any) error {
	if c.URL == "" {
		return constants.ErrNoURL
	}
	if err := req.Validate(); err != nil {
		return err
	}

	reqBody, err := c.Marshaler.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if authorization != "" {
		httpReq.Header.Set("Authorization", authorization)
	}

	id := rand.NewRequestID(constants.RequestIDLength)
	op := req.Operation()
	c.logger.Debug("sending operation", "operation", op, "request_id", id)
	start := time.Now()

	respData, err := c.MakeRequest(httpReq)
	if err != nil {
		var serverErr *connection.ServerError
		if errors.As(err, &serverErr) {
			c.logger.Warn("operation failed",
				"operation", op,
				"request_id", id,
				"status", serverErr.StatusCode,
				"error", serverErr.Message)
		}
		return err
	}
	c.logger.Debug("operation completed", "operation", op, "request_id", id, "duration", time.Since(start).String())

	if dst == nil {
		return nil
	}
	if err := c.Unmarshaler.Unmarshal(respData, dst); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", constants.ErrUnexpectedResponse, op, err)
	}

	return nil
}

// MakeRequest performs req and returns the body of a successful response.
// A status of 400 or above becomes a *connection.ServerError whose message
// is the body's "error" field.
func (c *Connection) MakeRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusBadRequest {
		return respBytes, nil
	}

	return nil, &connection.ServerError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(respBytes),
	}
}

func errorMessage(body []byte) string {
	value, dataType, _, err := jsonparser.Get(body, "error")
	if err != nil {
		return constants.UnknownErrorMessage
	}

	switch dataType {
	case jsonparser.String:
		msg, err := jsonparser.ParseString(value)
		if err != nil || msg == "" {
			return constants.UnknownErrorMessage
		}
		return msg
	case jsonparser.Null, jsonparser.NotExist:
		return constants.UnknownErrorMessage
	default:
		return string(value)
	}
}
