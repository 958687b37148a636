package truelist

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/truelist/truelist-go/internal/api"
)

// Client is the blocking Truelist client. Every method runs on the calling
// goroutine and returns once the request, including any retries, finishes.
//
// A Client is safe for concurrent use. Call Close when it is no longer
// needed, or run work inside Use.
type Client struct {
	apiClient *api.Client
	logger    *zap.Logger

	emailOnce   sync.Once
	email       *EmailService
	accountOnce sync.Once
	account     *AccountService
	asyncOnce   sync.Once
	async       *AsyncClient

	mu     sync.RWMutex
	closed bool
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(apiKey string, cfg *clientConfig) (*api.Client, error) {
	apiOpts := []api.Option{
		api.WithBaseURL(cfg.baseURL),
		api.WithTimeout(cfg.timeout),
		api.WithRetries(cfg.maxRetries),
		api.WithSchema(cfg.schema),
		api.WithUserAgent(userAgentPrefix + Version),
	}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(cfg.httpClient))
	}
	if cfg.logger != nil {
		apiOpts = append(apiOpts, api.WithLogger(cfg.logger))
	}
	if cfg.sleeper != nil {
		apiOpts = append(apiOpts, api.WithSleeper(cfg.sleeper))
	}

	return api.New(apiKey, apiOpts...)
}

// New creates a new Truelist client with the given API key. No request is
// made until the first operation.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	apiClient, err := buildAPIClient(apiKey, cfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiClient: apiClient,
		logger:    logger,
	}, nil
}

// Email returns the email validation service. The same instance is
// returned on every call.
func (c *Client) Email() *EmailService {
	c.emailOnce.Do(func() {
		c.email = &EmailService{client: c}
	})
	return c.email
}

// Account returns the account service. The same instance is returned on
// every call.
func (c *Client) Account() *AccountService {
	c.accountOnce.Do(func() {
		c.account = &AccountService{client: c}
	})
	return c.account
}

// Async returns a non-blocking view of this client. It shares the
// client's transport, retry policy and closed state.
func (c *Client) Async() *AsyncClient {
	c.asyncOnce.Do(func() {
		c.async = &AsyncClient{client: c}
	})
	return c.async
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.apiClient.BaseURL() }

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration { return c.apiClient.Timeout() }

// MaxRetries returns how many times a failed request is retried.
func (c *Client) MaxRetries() int { return c.apiClient.MaxRetries() }

// Schema returns the response contract in use.
func (c *Client) Schema() Schema { return c.apiClient.Schema() }

// checkClosed returns ErrClientClosed if the client has been closed.
func (c *Client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Close releases the client's idle connections. Subsequent operations
// fail with ErrClientClosed. Calling Close more than once is safe.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.apiClient.Close()
	c.logger.Debug("client closed")

	return nil
}

// Use calls fn with the client and closes the client afterwards, whether
// fn returns normally, returns an error, or panics.
func (c *Client) Use(fn func(*Client) error) error {
	defer c.Close()
	return fn(c)
}
