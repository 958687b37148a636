package api

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/truelist/truelist-go/internal/apierrors"
)

// Retry defaults.
const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = 500 * time.Millisecond
	DefaultMaxDelay   = 8 * time.Second
	DefaultMultiplier = 2.0
)

// RetryConfig configures retry behavior for failed HTTP requests.
type RetryConfig struct {
	// MaxRetries is the number of attempts made after the first one.
	MaxRetries int
	// BaseDelay is the delay after the first failed attempt.
	BaseDelay time.Duration
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
	// Multiplier is the factor by which the delay increases after each attempt.
	Multiplier float64
	// RetryableOn determines if a status code should trigger a retry.
	RetryableOn func(statusCode int) bool
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:  DefaultMaxRetries,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		Multiplier:  DefaultMultiplier,
		RetryableOn: IsRetryableStatus,
	}
}

// IsRetryableStatus reports whether a response status is worth retrying.
func IsRetryableStatus(statusCode int) bool {
	switch statusCode {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ShouldRetry determines if a request should be retried.
func (r *RetryConfig) ShouldRetry(attempt int, statusCode int) bool {
	if attempt >= r.MaxRetries {
		return false
	}
	return r.RetryableOn(statusCode)
}

// Delay returns the backoff after the zero-based attempt that just failed:
// BaseDelay * Multiplier^attempt, capped at MaxDelay.
func (r *RetryConfig) Delay(attempt int) time.Duration {
	delay := float64(r.BaseDelay) * math.Pow(r.Multiplier, float64(attempt))
	if delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}
	return time.Duration(delay)
}

// retryDelay picks the wait before retrying a response. A 429 with a usable
// Retry-After header waits for the header value.
func (r *RetryConfig) retryDelay(attempt int, resp *Response) time.Duration {
	if resp.StatusCode == http.StatusTooManyRequests {
		if d, ok := apierrors.ParseRetryAfter(resp.Header.Get("Retry-After")); ok {
			return d
		}
	}
	return r.Delay(attempt)
}

// Sleeper waits between attempts. Sleep must return early with ctx.Err()
// when ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d).
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper sleeps on a timer and wakes early on context cancellation.
type TimerSleeper struct{}

// Sleep waits for d or until ctx is done.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Attempt performs one HTTP round trip. A nil error means a response was
// received, whatever its status.
type Attempt func(ctx context.Context) (*Response, error)

// Execute runs attempt until it succeeds, fails terminally, or the retry
// budget is spent. Connection failures, timeouts and retryable statuses are
// retried; any other status >= 400 is classified and returned at once.
// Context cancellation stops the loop and is returned unwrapped.
func (r *RetryConfig) Execute(ctx context.Context, attempt Attempt, sleeper Sleeper, logger *zap.Logger) (*Response, error) {
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := attempt(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			terminal := classifyTransportError(err)
			if n < r.MaxRetries {
				delay := r.Delay(n)
				logger.Debug("retrying after transport error",
					zap.Int("attempt", n),
					zap.Stringer("kind", terminal.Kind),
					zap.Duration("delay", delay),
					zap.Error(err),
				)
				if err := sleeper.Sleep(ctx, delay); err != nil {
					return nil, err
				}
				continue
			}

			logger.Warn("request failed", zap.Int("attempts", n+1), zap.Error(terminal))
			return nil, terminal
		}

		if r.ShouldRetry(n, resp.StatusCode) {
			delay := r.retryDelay(n, resp)
			logger.Debug("retrying after error response",
				zap.Int("attempt", n),
				zap.Int("status", resp.StatusCode),
				zap.Duration("delay", delay),
			)
			if err := sleeper.Sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		if err := apierrors.Classify(resp.StatusCode, resp.Body, resp.Header); err != nil {
			logger.Warn("request failed", zap.Int("attempts", n+1), zap.Int("status", resp.StatusCode))
			return nil, err
		}

		return resp, nil
	}
}

// classifyTransportError tags a failure that produced no response.
func classifyTransportError(err error) *apierrors.Error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierrors.NewTimeoutError(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apierrors.NewTimeoutError(err)
	}
	return apierrors.NewConnectionError(err)
}
