// Package apierrors provides the shared error type for the Truelist client.
//
// Every failure the client surfaces is an [*Error] tagged with a [Kind].
// [Classify] turns an HTTP response into the matching kind; transport
// failures are tagged by the request executor.
package apierrors

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingAPIKey is returned when no API key is provided.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrConnection matches errors where no connection to the API could be made.
	ErrConnection = errors.New("connection to the Truelist API failed")

	// ErrTimeout matches errors where a request to the API timed out.
	ErrTimeout = errors.New("request to the Truelist API timed out")

	// ErrAPI matches every error built from an HTTP error response,
	// including authentication and rate-limit errors.
	ErrAPI = errors.New("Truelist API returned an error")

	// ErrUnauthorized matches 401 and 403 responses.
	ErrUnauthorized = errors.New("invalid or missing API key")

	// ErrRateLimited matches 429 responses.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrDecode matches successful responses whose body does not fit the
	// expected shape.
	ErrDecode = errors.New("unexpected response body")
)

// Kind identifies which variant of [Error] a value is.
type Kind int

const (
	// KindConnection is a network-level failure with no response.
	KindConnection Kind = iota + 1
	// KindTimeout is a request that timed out with no response.
	KindTimeout
	// KindAPI is an HTTP error response not covered by a narrower kind.
	KindAPI
	// KindAuthentication is a 401 or 403 response.
	KindAuthentication
	// KindRateLimit is a 429 response.
	KindRateLimit
	// KindDecode is a success response that could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindAPI:
		return "api"
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type returned by the client.
//
// StatusCode and Body are set for every kind derived from a response
// (KindAPI, KindAuthentication, KindRateLimit, KindDecode) and are zero for
// KindConnection and KindTimeout. RetryAfter is only set for KindRateLimit
// when the response carried a usable Retry-After header.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Body       string
	RetryAfter *time.Duration
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConnection, KindTimeout:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	case KindDecode:
		return fmt.Sprintf("decode response (HTTP %d): %s", e.StatusCode, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindConnection:
		return target == ErrConnection
	case KindTimeout:
		return target == ErrTimeout
	case KindAPI:
		return target == ErrAPI
	case KindAuthentication:
		return target == ErrAPI || target == ErrUnauthorized
	case KindRateLimit:
		return target == ErrAPI || target == ErrRateLimited
	case KindDecode:
		return target == ErrDecode
	}
	return false
}

// RetryAfterSeconds returns the Retry-After hint in seconds, if one was sent.
func (e *Error) RetryAfterSeconds() (float64, bool) {
	if e.RetryAfter == nil {
		return 0, false
	}
	return e.RetryAfter.Seconds(), true
}

// Classify maps an HTTP response to an error. It returns nil for statuses
// below 400.
func Classify(statusCode int, body []byte, header http.Header) error {
	if statusCode < 400 {
		return nil
	}

	e := &Error{
		StatusCode: statusCode,
		Body:       string(body),
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = KindAuthentication
		e.Message = "authentication failed"
	case http.StatusTooManyRequests:
		e.Kind = KindRateLimit
		e.Message = "rate limit exceeded"
		if header != nil {
			if d, ok := ParseRetryAfter(header.Get("Retry-After")); ok {
				e.RetryAfter = &d
			}
		}
	default:
		e.Kind = KindAPI
		e.Message = strings.ToLower(http.StatusText(statusCode))
	}

	return e
}

// ParseRetryAfter parses a Retry-After value given in seconds. Integer and
// fractional values are accepted; anything else, including negative values,
// reports false. Values beyond the range of time.Duration are clamped to
// MaxRetryAfter.
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return 0, false
	}
	nanos := secs * float64(time.Second)
	if nanos >= float64(math.MaxInt64) {
		return MaxRetryAfter, true
	}
	return time.Duration(nanos), true
}

// MaxRetryAfter is the largest Retry-After hint ParseRetryAfter reports.
const MaxRetryAfter = time.Duration(math.MaxInt64)

// NewDecodeError returns a KindDecode error for a response body that did not
// match the expected shape.
func NewDecodeError(statusCode int, body []byte, format string, args ...any) *Error {
	return &Error{
		Kind:       KindDecode,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
		Body:       string(body),
	}
}

// NewConnectionError wraps a transport failure that produced no response.
func NewConnectionError(err error) *Error {
	return &Error{
		Kind:    KindConnection,
		Message: "failed to connect to the Truelist API",
		Err:     err,
	}
}

// NewTimeoutError wraps a transport timeout that produced no response.
func NewTimeoutError(err error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: "request to the Truelist API timed out",
		Err:     err,
	}
}
