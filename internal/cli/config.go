package cli

import (
	"fmt"
	"net/url"
	"time"

	harperdb "github.com/harperdb/harperdb-sdk-go"
	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
	"github.com/harperdb/harperdb-sdk-go/pkg/logger"
)

// Config holds the connection options shared by every command.
type Config struct {
	// Operations API endpoint (e.g., "http://localhost:9925")
	Endpoint string
	// Authentication username
	Username string
	// Authentication password
	Password string
	// Authenticate with operation tokens instead of Basic credentials
	Tokens bool
	// Per-request timeout
	Timeout time.Duration
	// Minimum log level written to stderr
	LogLevel string
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Endpoint: constants.DefaultURL,
		Timeout:  constants.DefaultHTTPTimeout,
		LogLevel: "warn",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint must be an http or https url: %q", c.Endpoint)
	}
	if (c.Username == "") != (c.Password == "") {
		return fmt.Errorf("username and password must be given together")
	}
	if c.Tokens && c.Username == "" {
		return fmt.Errorf("tokens require a username and password")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func (c *Config) options(log logger.Logger) []harperdb.Option {
	opts := []harperdb.Option{
		harperdb.WithTimeout(c.Timeout),
		harperdb.WithLogger(log),
	}
	switch {
	case c.Tokens:
		opts = append(opts, harperdb.WithTokenAuth(c.Username, c.Password))
	case c.Username != "":
		opts = append(opts, harperdb.WithBasicAuth(c.Username, c.Password))
	}
	return opts
}

// Open validates the configuration and connects.
func (c *Config) Open(log logger.Logger) (*harperdb.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return harperdb.New(c.Endpoint, c.options(log)...)
}
