package connection

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/harperdb/harperdb-sdk-go/internal/codec"
	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
	"github.com/harperdb/harperdb-sdk-go/pkg/logger"
)

// Config holds everything a Connection needs.
type Config struct {
	// URL is the full address of the operations API endpoint.
	URL url.URL
	// Timeout bounds each request.
	Timeout time.Duration
	// HTTPClient, when set, replaces the client built from Timeout.
	HTTPClient *http.Client
	// Auth produces the Authorization header. Nil sends requests without one.
	Auth        Authenticator
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler
	Logger      logger.Logger
}

// NewConfig creates a new Config for the HarperDB endpoint at u.
// It is not absolutely necessary to create a Config using this function,
// but it fills in the codec, timeout and logger defaults.
func NewConfig(u *url.URL) *Config {
	c := codec.NewJSON()
	return &Config{
		URL:         *u,
		Timeout:     constants.DefaultHTTPTimeout,
		Marshaler:   c,
		Unmarshaler: c,
		Logger:      logger.New().MustMake(),
	}
}

// ParseConfig is NewConfig for a URL string.
func ParseConfig(rawURL string) (*Config, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid HarperDB url %q: scheme must be http or https", rawURL)
	}
	return NewConfig(u), nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.URL.Host == "" {
		return constants.ErrNoURL
	}
	if c.Marshaler == nil {
		return constants.ErrNoMarshaler
	}
	if c.Unmarshaler == nil {
		return constants.ErrNoUnmarshaler
	}
	return nil
}
