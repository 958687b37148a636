package truelist

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/truelist/truelist-go/internal/api"
)

// Schema selects the response contract spoken with the API.
type Schema = api.Schema

const (
	// SchemaStandard posts JSON bodies to /api/v1/verify and reads flat
	// records. It is the default.
	SchemaStandard = api.SchemaStandard
	// SchemaInline passes the address as a query parameter to
	// /api/v1/verify_inline and reads the nested "emails" form.
	SchemaInline = api.SchemaInline
)

// ParseSchema converts a configuration string such as "inline" to a Schema.
func ParseSchema(s string) (Schema, error) {
	return api.ParseSchema(s)
}

const (
	defaultBaseURL    = api.DefaultBaseURL
	defaultTimeout    = api.DefaultTimeout
	defaultMaxRetries = api.DefaultMaxRetries
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	schema     Schema
	logger     *zap.Logger
	sleeper    api.Sleeper
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		baseURL:    defaultBaseURL,
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
		schema:     SchemaStandard,
	}
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxRetries sets how many times a failed request is retried after the
// first attempt. Negative values are ignored.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithHTTPClient sets a custom HTTP client. Requests go through a copy
// whose Timeout is the configured request timeout; client is not modified.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithSchema selects the response contract.
func WithSchema(schema Schema) Option {
	return func(c *clientConfig) {
		c.schema = schema
	}
}

// WithLogger sets the logger used for retry and failure diagnostics.
// The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// withSleeper replaces the wait between retries. Tests use it to observe
// backoff without sleeping.
func withSleeper(s api.Sleeper) Option {
	return func(c *clientConfig) {
		c.sleeper = s
	}
}
