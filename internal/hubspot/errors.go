package hubspot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingToken is returned before any network call when the client was
// constructed without a private-app token.
var ErrMissingToken = errors.New("hubspot: access token is required")

// ErrBatchTooLarge is returned before any network call when a batch create
// is attempted with more than MaxBatchSize inputs.
var ErrBatchTooLarge = errors.New("hubspot: batch size must not exceed 100 items")

// Kind classifies an API failure for callers that branch on failure class
// rather than raw status codes.
type Kind int

const (
	// KindAPI is any non-2xx response that fits no more specific class.
	KindAPI Kind = iota
	// KindValidation covers 400/422 responses, typically rejected properties.
	KindValidation
	// KindAuth covers 401/403 responses (missing, expired, or under-scoped token).
	KindAuth
	// KindRateLimit covers 429 responses.
	KindRateLimit
	// KindNetwork covers transport-level failures with no HTTP response.
	KindNetwork
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate-limit"
	case KindNetwork:
		return "network"
	default:
		return "api"
	}
}

// APIError is a failed HubSpot call. Body holds the raw response so callers
// can inspect validation details (the bulk importer extracts the offending
// property name from it).
type APIError struct {
	StatusCode int
	Kind       Kind
	Message    string
	Body       []byte
}

// Error includes the HubSpot-provided message, which for validation errors
// embeds the JSON array naming the rejected property.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("hubspot: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("hubspot: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

// ResponseBody returns the raw response body, nil when the failure happened
// below the HTTP layer.
func (e *APIError) ResponseBody() []byte { return e.Body }

// newAPIError classifies a non-2xx response and pulls the human-readable
// message out of the JSON body when present.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body}
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		e.Kind = KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = KindAuth
	case http.StatusTooManyRequests:
		e.Kind = KindRateLimit
	default:
		e.Kind = KindAPI
	}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		e.Message = parsed.Message
	} else {
		e.Message = string(body)
	}
	return e
}
