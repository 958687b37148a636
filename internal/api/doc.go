// Package api provides HTTP client functionality for communicating with the
// Truelist API. It handles authentication, request/response serialization,
// and automatic retry logic with exponential backoff for transient failures.
//
// # Client Creation
//
// [New] takes the API key and functional options. The key is sent as a
// bearer token on every request, together with JSON Content-Type/Accept
// headers and a User-Agent identifying the SDK. Requests are issued through
// a resty client whose own retry support is disabled; retries are driven by
// [RetryConfig.Execute].
//
// # Retry Behavior
//
// By default a request is attempted once and then retried up to 2 times for
// connection failures, timeouts, and these HTTP status codes:
//
//   - 429 Too Many Requests
//   - 500 Internal Server Error
//   - 502 Bad Gateway
//   - 503 Service Unavailable
//   - 504 Gateway Timeout
//
// The delay is min(0.5s * 2^attempt, 8s) with no jitter. A 429 carrying a
// Retry-After header in seconds waits for that value instead. Other error
// statuses fail on the first attempt.
//
// # Schemas
//
// Two response contracts exist for the verification API. [SchemaStandard]
// decodes flat records; [SchemaInline] decodes the nested "emails" form and
// normalizes its state spellings.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. Each call runs its own retry
// loop; only the HTTP connection pool is shared.
package api
