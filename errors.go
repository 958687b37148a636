package truelist

import (
	"github.com/truelist/truelist-go/internal/apierrors"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingAPIKey is returned when no API key is provided.
	ErrMissingAPIKey = apierrors.ErrMissingAPIKey

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = apierrors.ErrClientClosed

	// ErrConnection matches failures to reach the API.
	ErrConnection = apierrors.ErrConnection

	// ErrTimeout matches requests that timed out without a response.
	ErrTimeout = apierrors.ErrTimeout

	// ErrAPI matches every HTTP error response, including authentication
	// and rate-limit errors.
	ErrAPI = apierrors.ErrAPI

	// ErrUnauthorized matches 401 and 403 responses.
	ErrUnauthorized = apierrors.ErrUnauthorized

	// ErrRateLimited matches 429 responses.
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrDecode matches success responses that could not be decoded.
	ErrDecode = apierrors.ErrDecode
)

// Error is the error type returned by every client operation. Use Kind to
// tell the variants apart.
type Error = apierrors.Error

// Kind identifies the variant of an [Error].
type Kind = apierrors.Kind

// Error kinds.
const (
	// KindConnection is a network failure with no response.
	KindConnection = apierrors.KindConnection
	// KindTimeout is a request that timed out with no response.
	KindTimeout = apierrors.KindTimeout
	// KindAPI is an HTTP error response not covered by a narrower kind.
	KindAPI = apierrors.KindAPI
	// KindAuthentication is a 401 or 403 response.
	KindAuthentication = apierrors.KindAuthentication
	// KindRateLimit is a 429 response.
	KindRateLimit = apierrors.KindRateLimit
	// KindDecode is a success response whose body could not be decoded.
	KindDecode = apierrors.KindDecode
)
