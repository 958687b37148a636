package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/truelist/truelist-go/internal/apierrors"
)

// Client defaults.
const (
	DefaultBaseURL   = "https://api.truelist.io"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "truelist-go"
)

// Response is a received HTTP response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is the HTTP API client.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	userAgent  string
	schema     Schema
	httpClient *http.Client
	retry      *RetryConfig
	sleeper    Sleeper
	logger     *zap.Logger
	rc         *resty.Client
}

// Option configures the API client.
type Option func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetries sets the number of retries after the first attempt.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.retry.MaxRetries = retries
	}
}

// WithHTTPClient sets the underlying HTTP client. Requests use a copy whose
// Timeout is the configured request timeout; hc itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSchema selects the response contract.
func WithSchema(schema Schema) Option {
	return func(c *Client) {
		c.schema = schema
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSleeper replaces the wait between retries.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleeper = s
	}
}

// New creates a new API client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, apierrors.ErrMissingAPIKey
	}

	c := &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		schema:    SchemaStandard,
		retry:     DefaultRetryConfig(),
		sleeper:   TimerSleeper{},
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if !c.schema.Valid() {
		return nil, fmt.Errorf("unknown schema %q", c.schema)
	}
	if c.retry.MaxRetries < 0 {
		c.retry.MaxRetries = 0
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.sleeper == nil {
		c.sleeper = TimerSleeper{}
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}

	// resty sets Timeout on the client it is given; keep the caller's intact.
	hc := *c.httpClient
	c.rc = resty.NewWithClient(&hc).
		SetBaseURL(strings.TrimRight(c.baseURL, "/")).
		SetTimeout(c.timeout).
		SetAuthToken(c.apiKey).
		SetHeaders(map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"User-Agent":   c.userAgent,
		}).
		SetRetryCount(0).
		SetLogger(c.logger.Sugar())

	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// MaxRetries returns the retry budget.
func (c *Client) MaxRetries() int { return c.retry.MaxRetries }

// Schema returns the response contract in use.
func (c *Client) Schema() Schema { return c.schema }

// Do sends a request with retries and returns the first response below 400.
// query and body may be nil; body is encoded as JSON.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	attempt := func(ctx context.Context) (*Response, error) {
		req := c.rc.R().SetContext(ctx)
		if len(query) > 0 {
			req.SetQueryParamsFromValues(query)
		}
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return nil, err
		}
		return &Response{
			StatusCode: resp.StatusCode(),
			Header:     resp.Header(),
			Body:       resp.Body(),
		}, nil
	}

	logger := c.logger.With(zap.String("method", method), zap.String("path", path))
	return c.retry.Execute(ctx, attempt, c.sleeper, logger)
}

// Close releases idle connections held by the transport.
func (c *Client) Close() {
	c.rc.GetClient().CloseIdleConnections()
}
