package harperdb

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"time"

	"github.com/buger/jsonparser"

	"github.com/harperdb/harperdb-sdk-go/pkg/connection"
	hdbhttp "github.com/harperdb/harperdb-sdk-go/pkg/connection/http"
	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
	"github.com/harperdb/harperdb-sdk-go/pkg/logger"
	"github.com/harperdb/harperdb-sdk-go/pkg/ops"
)

// DB is bound to one HarperDB endpoint and its credentials. It holds no
// schema state; listings are fetched on every call.
type DB struct {
	conn connection.Connection
	ops  *ops.Client
	log  logger.Logger
}

// Option adjusts the connection settings used by New and FromEnv.
type Option func(*connection.Config)

// WithBasicAuth sends HTTP Basic credentials with every request.
func WithBasicAuth(username, password string) Option {
	return func(c *connection.Config) {
		c.Auth = connection.BasicAuth{Username: username, Password: password}
	}
}

// WithTokenAuth authenticates with operation tokens obtained from username
// and password, refreshing them as they expire.
func WithTokenAuth(username, password string) Option {
	return func(c *connection.Config) {
		c.Auth = connection.NewTokenAuth(username, password)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *connection.Config) {
		c.Timeout = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *connection.Config) {
		c.HTTPClient = hc
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *connection.Config) {
		c.Logger = l
	}
}

// New connects to the operations API at rawURL, e.g. "http://localhost:9925".
func New(rawURL string, opts ...Option) (*DB, error) {
	cfg, err := connection.ParseConfig(rawURL)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return FromConfig(cfg)
}

// FromConfig creates a DB over the HTTP connection described by cfg.
func FromConfig(cfg *connection.Config) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db := FromConnection(hdbhttp.New(cfg))
	if cfg.Logger != nil {
		db.log = cfg.Logger
	}
	return db, nil
}

// FromConnection creates a DB over an existing connection.
func FromConnection(conn connection.Connection) *DB {
	return &DB{
		conn: conn,
		ops:  ops.New(conn),
		log:  logger.Nop(),
	}
}

// FromEnv creates a DB from HARPERDB_URL, HARPERDB_USERNAME,
// HARPERDB_PASSWORD and HARPERDB_TIMEOUT. Credentials are sent as Basic auth
// when both are set. opts are applied after the environment.
func FromEnv(opts ...Option) (*DB, error) {
	timeout, err := GetEnvDurationOrDefault(constants.EnvTimeout, constants.DefaultHTTPTimeout)
	if err != nil {
		return nil, err
	}

	envOpts := []Option{WithTimeout(timeout)}
	username := GetEnvOrDefault(constants.EnvUsername, "")
	password := GetEnvOrDefault(constants.EnvPassword, "")
	if username != "" && password != "" {
		envOpts = append(envOpts, WithBasicAuth(username, password))
	}

	return New(GetEnvOrDefault(constants.EnvURL, constants.DefaultURL), append(envOpts, opts...)...)
}

// Close releases idle connections. The DB remains usable.
func (db *DB) Close(ctx context.Context) error {
	return db.conn.Close(ctx)
}

// Ops returns the low-level Operation Client.
func (db *DB) Ops() *ops.Client {
	return db.ops
}

// Schema returns a handle for the named schema without checking that it exists.
func (db *DB) Schema(name string) *Schema {
	return &Schema{db: db, name: name}
}

// CreateSchema creates the schema. Creating one that already exists is a
// server error.
func (db *DB) CreateSchema(ctx context.Context, name string) (*Schema, error) {
	if _, err := db.ops.CreateSchema(ctx, name); err != nil {
		return nil, err
	}
	return db.Schema(name), nil
}

// DropSchema drops the schema and every table in it. Dropping a schema that
// does not exist is a server error.
func (db *DB) DropSchema(ctx context.Context, name string) error {
	_, err := db.ops.DropSchema(ctx, name)
	return err
}

// Delete is DropSchema.
func (db *DB) Delete(ctx context.Context, name string) error {
	return db.DropSchema(ctx, name)
}

// Schemas yields a handle per schema in the order the server lists them.
// Each range over the sequence issues a new describe_all.
func (db *DB) Schemas(ctx context.Context) iter.Seq2[*Schema, error] {
	return func(yield func(*Schema, error) bool) {
		names, err := db.schemaNames(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, name := range names {
			if !yield(db.Schema(name), nil) {
				return
			}
		}
	}
}

// Count returns the number of schemas currently on the server.
func (db *DB) Count(ctx context.Context) (int, error) {
	names, err := db.schemaNames(ctx)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

func (db *DB) schemaNames(ctx context.Context) ([]string, error) {
	raw, err := db.ops.DescribeAll(ctx)
	if err != nil {
		return nil, err
	}
	names, err := objectKeys(raw)
	if err != nil {
		return nil, fmt.Errorf("describe_all: %w", err)
	}
	return names, nil
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(data []byte) ([]string, error) {
	_, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrUnexpectedResponse, err)
	}
	if dataType != jsonparser.Object {
		return nil, fmt.Errorf("%w: expected an object, got %s", constants.ErrUnexpectedResponse, dataType)
	}

	names := []string{}
	err = jsonparser.ObjectEach(data, func(key []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrUnexpectedResponse, err)
	}
	return names, nil
}
