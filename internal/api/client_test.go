package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/truelist/truelist-go/internal/apierrors"
)

// roundTripFunc fails every request without touching the network.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("")
	if !errors.Is(err, apierrors.ErrMissingAPIKey) {
		t.Errorf("New(\"\") error = %v, want ErrMissingAPIKey", err)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("test-key", WithBaseURL(""))
	if err == nil {
		t.Error("expected error for empty base URL")
	}
}

func TestNew_RejectsUnknownSchema(t *testing.T) {
	_, err := New("test-key", WithSchema(Schema("legacy")))
	if err == nil {
		t.Error("expected error for unknown schema")
	}
}

func TestNew_DefaultValues(t *testing.T) {
	client, err := New("test-key")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %s, want %s", client.BaseURL(), DefaultBaseURL)
	}
	if client.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", client.Timeout(), DefaultTimeout)
	}
	if client.MaxRetries() != DefaultMaxRetries {
		t.Errorf("MaxRetries() = %d, want %d", client.MaxRetries(), DefaultMaxRetries)
	}
	if client.Schema() != SchemaStandard {
		t.Errorf("Schema() = %s, want %s", client.Schema(), SchemaStandard)
	}
	if client.httpClient == nil {
		t.Error("httpClient is nil")
	}
}

func TestNew_WithOptions(t *testing.T) {
	custom := &http.Client{Timeout: time.Hour}

	client, err := New("test-key",
		WithBaseURL("https://example.com"),
		WithRetries(5),
		WithTimeout(60*time.Second),
		WithHTTPClient(custom),
		WithSchema(SchemaInline),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.BaseURL() != "https://example.com" {
		t.Errorf("BaseURL() = %s, want https://example.com", client.BaseURL())
	}
	if client.MaxRetries() != 5 {
		t.Errorf("MaxRetries() = %d, want 5", client.MaxRetries())
	}
	if client.httpClient != custom {
		t.Error("httpClient not set correctly")
	}
	if got := client.rc.GetClient().Timeout; got != 60*time.Second {
		t.Errorf("request timeout = %v, want 60s", got)
	}
	if custom.Timeout != time.Hour {
		t.Errorf("caller's http client timeout = %v, want 1h (unchanged)", custom.Timeout)
	}
	if client.Schema() != SchemaInline {
		t.Errorf("Schema() = %s, want inline", client.Schema())
	}
}

func TestNew_NegativeRetriesClamped(t *testing.T) {
	client, err := New("test-key", WithRetries(-3))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.MaxRetries() != 0 {
		t.Errorf("MaxRetries() = %d, want 0", client.MaxRetries())
	}
}

func TestClient_Do_Headers(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer test-key")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		if got := r.Header.Get("User-Agent"); got != "truelist-go/9.9.9" {
			t.Errorf("User-Agent = %q, want truelist-go/9.9.9", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := New("test-key", WithBaseURL(server.URL), WithUserAgent("truelist-go/9.9.9"))
	resp, err := client.Do(context.Background(), http.MethodPost, "/api/v1/verify", nil, map[string]string{"email": "a@b.co"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}

func TestClient_Do_TrailingSlashBaseURL(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/account" {
			t.Errorf("path = %s, want /api/v1/account", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := New("test-key", WithBaseURL(server.URL+"/"))
	if _, err := client.Do(context.Background(), http.MethodGet, "/api/v1/account", nil, nil); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}

func TestClient_Do_RetryThenSuccess(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	sleeper := &recordingSleeper{}
	client, _ := New("test-key", WithBaseURL(server.URL), WithRetries(1), WithSleeper(sleeper))

	resp, err := client.Do(context.Background(), http.MethodGet, "/api/v1/account", nil, nil)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("Body = %s", resp.Body)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
	if d := sleeper.Delays(); len(d) != 1 || d[0] != 500*time.Millisecond {
		t.Errorf("delays = %v, want [500ms]", d)
	}
}

func TestClient_Do_NoRetryOn4xx(t *testing.T) {
	t.Parallel()
	for _, status := range []int{400, 401, 403, 404, 422} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			t.Parallel()
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(status)
				w.Write([]byte("denied"))
			}))
			defer server.Close()

			client, _ := New("test-key", WithBaseURL(server.URL), WithRetries(3), WithSleeper(&recordingSleeper{}))
			_, err := client.Do(context.Background(), http.MethodGet, "/me", nil, nil)
			if !errors.Is(err, apierrors.ErrAPI) {
				t.Fatalf("Do() error = %v, want ErrAPI", err)
			}
			if got := attempts.Load(); got != 1 {
				t.Errorf("attempts = %d, want 1", got)
			}
		})
	}
}

func TestClient_Do_RateLimitRetryAfter(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("Too Many Requests"))
	}))
	defer server.Close()

	client, _ := New("test-key", WithBaseURL(server.URL), WithRetries(0))
	_, err := client.Do(context.Background(), http.MethodGet, "/api/v1/account", nil, nil)

	var apiErr *apierrors.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Do() error = %v, want *apierrors.Error", err)
	}
	if apiErr.Kind != apierrors.KindRateLimit {
		t.Errorf("Kind = %v, want rate_limit", apiErr.Kind)
	}
	if secs, ok := apiErr.RetryAfterSeconds(); !ok || secs != 5 {
		t.Errorf("RetryAfterSeconds() = (%v, %v), want (5, true)", secs, ok)
	}
	if apiErr.Body != "Too Many Requests" {
		t.Errorf("Body = %q", apiErr.Body)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestClient_Do_TransportErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"connection", errRefused, apierrors.ErrConnection},
		{"timeout", timeoutError{}, apierrors.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
				attempts.Add(1)
				return nil, tt.err
			})}
			sleeper := &recordingSleeper{}

			client, _ := New("test-key", WithHTTPClient(hc), WithRetries(2), WithSleeper(sleeper))
			_, err := client.Do(context.Background(), http.MethodGet, "/api/v1/account", nil, nil)

			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("Do() error = %v, want %v", err, tt.sentinel)
			}
			if got := attempts.Load(); got != 3 {
				t.Errorf("attempts = %d, want 3", got)
			}
			if got := len(sleeper.Delays()); got != 2 {
				t.Errorf("sleeps = %d, want 2", got)
			}
		})
	}
}

func TestClient_Do_RequestTimeout(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client, _ := New("test-key",
		WithBaseURL(server.URL),
		WithTimeout(50*time.Millisecond),
		WithRetries(1),
		WithSleeper(&recordingSleeper{}),
	)
	_, err := client.Do(context.Background(), http.MethodGet, "/api/v1/account", nil, nil)

	if !errors.Is(err, apierrors.ErrTimeout) {
		t.Fatalf("Do() error = %v, want ErrTimeout", err)
	}
	if errors.Is(err, apierrors.ErrConnection) {
		t.Error("timeout reported as ErrConnection")
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestClient_Do_ContextCancellation(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := New("test-key", WithBaseURL(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Do(ctx, http.MethodGet, "/api/v1/account", nil, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() error = %v, want context.DeadlineExceeded", err)
	}
	if errors.Is(err, apierrors.ErrTimeout) {
		t.Error("caller cancellation reported as ErrTimeout")
	}
}

func TestClient_Do_QueryAndBody(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("email"); got != "a+b@example.com" {
			t.Errorf("query email = %q, want a+b@example.com", got)
		}
		data, _ := io.ReadAll(r.Body)
		var body map[string]string
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("body %q is not JSON: %v", data, err)
		}
		if body["note"] != "x" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := New("test-key", WithBaseURL(server.URL))
	query := map[string][]string{"email": {"a+b@example.com"}}
	if _, err := client.Do(context.Background(), http.MethodPost, "/x", query, map[string]string{"note": "x"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}

func TestClient_Close(t *testing.T) {
	client, _ := New("test-key")
	client.Close()
	client.Close()
}
