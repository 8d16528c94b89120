// Package ops is the low-level Operation Client: one method per HarperDB
// operation, each building the operation's JSON object and sending it on a
// connection.Connection.
//
// Responses the object layer interprets are decoded into typed results.
// Everything else is returned decoded verbatim, with numbers as json.Number.
package ops

import (
	"context"
	"os"

	"github.com/goccy/go-json"

	"github.com/harperdb/harperdb-sdk-go/pkg/connection"
	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
)

type Client struct {
	conn connection.Connection
}

func New(conn connection.Connection) *Client {
	return &Client{conn: conn}
}

// Connection returns the connection requests are sent on.
func (c *Client) Connection() connection.Connection {
	return c.conn
}

// Do sends an arbitrary operation and returns the decoded body.
func (c *Client) Do(ctx context.Context, req connection.Request) (any, error) {
	var res any
	if err := c.conn.Send(ctx, req, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) message(ctx context.Context, req connection.Request) (*connection.MessageResult, error) {
	return connection.Send[connection.MessageResult](ctx, c.conn, req)
}

func (c *Client) raw(ctx context.Context, req connection.Request) (json.RawMessage, error) {
	var res json.RawMessage
	if err := c.conn.Send(ctx, req, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// attributesOrAll builds a new slice on every call so callers never share
// the default.
func attributesOrAll(attrs []string) []string {
	if len(attrs) == 0 {
		return []string{"*"}
	}
	return attrs
}

func tableRequest(op, schema, table string) connection.Request {
	return connection.NewRequest(op).
		With("schema", schema).
		With("table", table)
}

// Schemas and tables

func (c *Client) CreateSchema(ctx context.Context, schema string) (*connection.MessageResult, error) {
	return c.message(ctx, connection.NewRequest(constants.OpCreateSchema).With("schema", schema))
}

func (c *Client) DropSchema(ctx context.Context, schema string) (*connection.MessageResult, error) {
	return c.message(ctx, connection.NewRequest(constants.OpDropSchema).With("schema", schema))
}

// DescribeSchema returns the body undecoded. Depending on the server version
// it is either an object keyed by table name or an array of table
// descriptions.
func (c *Client) DescribeSchema(ctx context.Context, schema string) (json.RawMessage, error) {
	return c.raw(ctx, connection.NewRequest(constants.OpDescribeSchema).With("schema", schema))
}

func (c *Client) CreateTable(ctx context.Context, schema, table, hashAttribute string) (*connection.MessageResult, error) {
	return c.message(ctx, tableRequest(constants.OpCreateTable, schema, table).With("hash_attribute", hashAttribute))
}

func (c *Client) DescribeTable(ctx context.Context, schema, table string) (*TableDescription, error) {
	return connection.Send[TableDescription](ctx, c.conn, tableRequest(constants.OpDescribeTable, schema, table))
}

// DescribeAll returns the body undecoded: an object of schema name to an
// object of table name to TableDescription.
func (c *Client) DescribeAll(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, connection.NewRequest(constants.OpDescribeAll))
}

func (c *Client) DropTable(ctx context.Context, schema, table string) (*connection.MessageResult, error) {
	return c.message(ctx, tableRequest(constants.OpDropTable, schema, table))
}

func (c *Client) DropAttribute(ctx context.Context, schema, table, attribute string) (*connection.MessageResult, error) {
	return c.message(ctx, tableRequest(constants.OpDropAttribute, schema, table).With("attribute", attribute))
}

// NoSQL operations

func (c *Client) Insert(ctx context.Context, schema, table string, records []Row) (*InsertResult, error) {
	return connection.Send[InsertResult](ctx, c.conn, tableRequest(constants.OpInsert, schema, table).With("records", records))
}

func (c *Client) Update(ctx context.Context, schema, table string, records []Row) (*UpdateResult, error) {
	return connection.Send[UpdateResult](ctx, c.conn, tableRequest(constants.OpUpdate, schema, table).With("records", records))
}

func (c *Client) Delete(ctx context.Context, schema, table string, hashValues []any) (*DeleteResult, error) {
	return connection.Send[DeleteResult](ctx, c.conn, tableRequest(constants.OpDelete, schema, table).With("hash_values", hashValues))
}

// SearchByHash returns the rows whose primary key is in hashValues. Missing
// keys are simply absent from the result. Without getAttributes every
// attribute is returned.
func (c *Client) SearchByHash(ctx context.Context, schema, table string, hashValues []any, getAttributes ...string) ([]Row, error) {
	req := tableRequest(constants.OpSearchByHash, schema, table).
		With("hash_values", hashValues).
		With("get_attributes", attributesOrAll(getAttributes))

	var rows []Row
	if err := c.conn.Send(ctx, req, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchByValue returns the rows whose attribute matches value. The server
// treats * in value as a wildcard.
func (c *Client) SearchByValue(ctx context.Context, schema, table, attribute string, value any, getAttributes ...string) ([]Row, error) {
	req := tableRequest(constants.OpSearchByValue, schema, table).
		With("search_attribute", attribute).
		With("search_value", value).
		With("get_attributes", attributesOrAll(getAttributes))

	var rows []Row
	if err := c.conn.Send(ctx, req, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SQL

func (c *Client) SQL(ctx context.Context, sql string) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpSQL).With("sql", sql))
}

// CSV loads. An empty action means constants.ActionInsert.

func csvRequest(op, schema, table, action string) connection.Request {
	if action == "" {
		action = constants.ActionInsert
	}
	return tableRequest(op, schema, table).With("action", action)
}

// CSVDataLoad reads the file at path and sends its contents.
func (c *Client) CSVDataLoad(ctx context.Context, schema, table, path, action string) (*JobResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	req := csvRequest(constants.OpCSVDataLoad, schema, table, action).With("data", string(data))
	return connection.Send[JobResult](ctx, c.conn, req)
}

// CSVFileLoad asks the server to load a file from its own filesystem.
func (c *Client) CSVFileLoad(ctx context.Context, schema, table, filePath, action string) (*JobResult, error) {
	req := csvRequest(constants.OpCSVFileLoad, schema, table, action).With("file_path", filePath)
	return connection.Send[JobResult](ctx, c.conn, req)
}

func (c *Client) CSVURLLoad(ctx context.Context, schema, table, csvURL, action string) (*JobResult, error) {
	req := csvRequest(constants.OpCSVURLLoad, schema, table, action).With("csv_url", csvURL)
	return connection.Send[JobResult](ctx, c.conn, req)
}
