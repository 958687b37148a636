package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestSentinelErrors(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrMissingAPIKey", ErrMissingAPIKey},
		{"ErrClientClosed", ErrClientClosed},
		{"ErrConnection", ErrConnection},
		{"ErrTimeout", ErrTimeout},
		{"ErrAPI", ErrAPI},
		{"ErrUnauthorized", ErrUnauthorized},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrDecode", ErrDecode},
	}

	for _, s := range sentinels {
		t.Run(s.name, func(t *testing.T) {
			if s.err == nil {
				t.Fatal("sentinel error is nil")
			}
			if s.err.Error() == "" {
				t.Error("sentinel error has empty message")
			}
		})
	}
}

func TestClassify_Success(t *testing.T) {
	for _, status := range []int{200, 201, 204, 301, 399} {
		if err := Classify(status, []byte("ok"), nil); err != nil {
			t.Errorf("Classify(%d) = %v, want nil", status, err)
		}
	}
}

func TestClassify_Kinds(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{400, KindAPI},
		{401, KindAuthentication},
		{403, KindAuthentication},
		{404, KindAPI},
		{422, KindAPI},
		{429, KindRateLimit},
		{500, KindAPI},
		{502, KindAPI},
		{503, KindAPI},
		{504, KindAPI},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := Classify(tt.status, []byte("body text"), http.Header{})

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("Classify(%d) = %T, want *Error", tt.status, err)
			}
			if apiErr.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", apiErr.Kind, tt.kind)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Body != "body text" {
				t.Errorf("Body = %q, want %q", apiErr.Body, "body text")
			}
			if !errors.Is(err, ErrAPI) {
				t.Error("errors.Is(err, ErrAPI) = false, want true")
			}
		})
	}
}

func TestClassify_RateLimitRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   *time.Duration
	}{
		{"integer", "5", durationPtr(5 * time.Second)},
		{"float", "1.5", durationPtr(1500 * time.Millisecond)},
		{"zero", "0", durationPtr(0)},
		{"absent", "", nil},
		{"http date", "Wed, 21 Oct 2015 07:28:00 GMT", nil},
		{"negative", "-3", nil},
		{"garbage", "soon", nil},
		{"beyond duration range", "1e12", durationPtr(MaxRetryAfter)},
		{"huge integer", "9999999999999", durationPtr(MaxRetryAfter)},
		{"huge exponent", "1e300", durationPtr(MaxRetryAfter)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("Retry-After", tt.header)
			}

			err := Classify(429, []byte("Too Many Requests"), header)

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("Classify(429) = %T, want *Error", err)
			}
			if !errors.Is(err, ErrRateLimited) {
				t.Error("errors.Is(err, ErrRateLimited) = false, want true")
			}
			switch {
			case tt.want == nil && apiErr.RetryAfter != nil:
				t.Errorf("RetryAfter = %v, want nil", *apiErr.RetryAfter)
			case tt.want != nil && apiErr.RetryAfter == nil:
				t.Errorf("RetryAfter = nil, want %v", *tt.want)
			case tt.want != nil && *apiErr.RetryAfter != *tt.want:
				t.Errorf("RetryAfter = %v, want %v", *apiErr.RetryAfter, *tt.want)
			}
			if secs, ok := apiErr.RetryAfterSeconds(); ok && secs < 0 {
				t.Errorf("RetryAfterSeconds() = %v, want non-negative", secs)
			}
		})
	}
}

func TestClassify_RetryAfterIgnoredOutside429(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "5")

	err := Classify(503, nil, header)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Classify(503) = %T, want *Error", err)
	}
	if apiErr.RetryAfter != nil {
		t.Errorf("RetryAfter = %v, want nil", *apiErr.RetryAfter)
	}
}

func TestError_Is(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		target   error
		expected bool
	}{
		{"connection matches ErrConnection", KindConnection, ErrConnection, true},
		{"connection does not match ErrAPI", KindConnection, ErrAPI, false},
		{"timeout matches ErrTimeout", KindTimeout, ErrTimeout, true},
		{"timeout does not match ErrConnection", KindTimeout, ErrConnection, false},
		{"api matches ErrAPI", KindAPI, ErrAPI, true},
		{"api does not match ErrUnauthorized", KindAPI, ErrUnauthorized, false},
		{"authentication matches ErrUnauthorized", KindAuthentication, ErrUnauthorized, true},
		{"authentication matches ErrAPI", KindAuthentication, ErrAPI, true},
		{"rate limit matches ErrRateLimited", KindRateLimit, ErrRateLimited, true},
		{"rate limit matches ErrAPI", KindRateLimit, ErrAPI, true},
		{"rate limit does not match ErrUnauthorized", KindRateLimit, ErrUnauthorized, false},
		{"decode matches ErrDecode", KindDecode, ErrDecode, true},
		{"decode does not match ErrAPI", KindDecode, ErrAPI, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &Error{Kind: tt.kind}
			if got := errors.Is(err, tt.target); got != tt.expected {
				t.Errorf("errors.Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "api with message",
			err:      &Error{Kind: KindAPI, StatusCode: 422, Message: "unprocessable entity"},
			expected: "API error 422: unprocessable entity",
		},
		{
			name:     "api without message",
			err:      &Error{Kind: KindAPI, StatusCode: 599},
			expected: "API error 599",
		},
		{
			name:     "connection",
			err:      NewConnectionError(cause),
			expected: "failed to connect to the Truelist API: connection refused",
		},
		{
			name:     "decode",
			err:      NewDecodeError(200, nil, "missing required field %q", "email"),
			expected: `decode response (HTTP 200): missing required field "email"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := NewTimeoutError(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if err.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", err.StatusCode)
	}
}

func TestError_RetryAfterSeconds(t *testing.T) {
	d := 5 * time.Second
	err := &Error{Kind: KindRateLimit, RetryAfter: &d}

	secs, ok := err.RetryAfterSeconds()
	if !ok || secs != 5.0 {
		t.Errorf("RetryAfterSeconds() = (%v, %v), want (5, true)", secs, ok)
	}

	_, ok = (&Error{Kind: KindRateLimit}).RetryAfterSeconds()
	if ok {
		t.Error("RetryAfterSeconds() ok = true for missing hint, want false")
	}
}

func TestKind_String(t *testing.T) {
	if KindRateLimit.String() != "rate_limit" {
		t.Errorf("KindRateLimit.String() = %s, want rate_limit", KindRateLimit.String())
	}
	if Kind(99).String() != "kind(99)" {
		t.Errorf("Kind(99).String() = %s, want kind(99)", Kind(99).String())
	}
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
