// Package mock provides an in-memory connection.Connection that answers
// operations from handlers instead of the network.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/harperdb/harperdb-sdk-go/internal/codec"
	"github.com/harperdb/harperdb-sdk-go/pkg/connection"
)

// Handler answers one request. The result is encoded to JSON and decoded
// into the caller's destination, as if it had come over the wire.
type Handler func(req connection.Request) (any, error)

type Conn struct {
	codec    *codec.JSON
	mu       sync.Mutex
	handlers map[string]Handler
	sent     []string
	closed   bool
}

// Create returns a connection where insert and update report every record
// as written under the "id" hash attribute.
func Create() *Conn {
	c := &Conn{
		codec:    codec.NewJSON(),
		handlers: map[string]Handler{},
	}
	c.Handle("insert", func(req connection.Request) (any, error) {
		return map[string]any{"inserted_hashes": ids(req), "skipped_hashes": []any{}}, nil
	})
	c.Handle("update", func(req connection.Request) (any, error) {
		return map[string]any{"update_hashes": ids(req), "skipped_hashes": []any{}}, nil
	})
	c.Handle("describe_table", func(req connection.Request) (any, error) {
		return map[string]any{"name": req["table"], "schema": req["schema"], "hash_attribute": "id"}, nil
	})
	return c
}

// Handle sets the handler for operation, replacing any previous one.
func (c *Conn) Handle(operation string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[operation] = h
}

// Operations returns the operation of every request sent so far.
func (c *Conn) Operations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func (c *Conn) Send(ctx context.Context, req connection.Request, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.sent = append(c.sent, req.Operation())
	h, ok := c.handlers[req.Operation()]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("mock: no handler for operation %q", req.Operation())
	}

	res, err := h(req)
	if err != nil || dst == nil {
		return err
	}
	data, err := c.codec.Marshal(res)
	if err != nil {
		return err
	}
	return c.codec.Unmarshal(data, dst)
}

func (c *Conn) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func ids(req connection.Request) []any {
	records, _ := req["records"].([]map[string]any)
	out := make([]any, 0, len(records))
	for _, r := range records {
		out = append(out, r["id"])
	}
	return out
}
