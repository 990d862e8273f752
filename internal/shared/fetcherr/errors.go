// Package fetcherr defines the error taxonomy shared by the upstream fetchers.
package fetcherr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingCredential is returned when a required API key was not supplied.
	ErrMissingCredential = errors.New("api key is missing")

	// ErrInvalidCredential is returned when the upstream rejected the API key.
	ErrInvalidCredential = errors.New("invalid api key")

	// ErrRateLimited is returned on HTTP 429 from any upstream.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUpstream matches every *UpstreamError.
	ErrUpstream = errors.New("upstream error")

	// ErrNetwork matches every *NetworkError.
	ErrNetwork = errors.New("network error")

	// ErrDestinationNotAllowed is returned when the target resolves to a
	// loopback, private or link-local address and such targets are disabled.
	ErrDestinationNotAllowed = errors.New("destination address is not allowed")
)

// UpstreamError is a non-success HTTP status or a provider error envelope.
// Status is 0 when the error came from a 2xx body.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("upstream %d: %s", e.Status, e.Message)
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("upstream %d", e.Status)
	}
}

// Is reports ErrUpstream as a match so callers can use errors.Is.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// CredentialError is an HTTP 401/403 from an upstream. It matches
// ErrInvalidCredential and keeps the status for StatusOf.
type CredentialError struct {
	Status  int
	Message string
}

func (e *CredentialError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: upstream %d", ErrInvalidCredential, e.Status)
	}
	return fmt.Sprintf("%s: upstream %d: %s", ErrInvalidCredential, e.Status, e.Message)
}

func (e *CredentialError) Is(target error) bool {
	return target == ErrInvalidCredential
}

// NetworkError wraps a transport-level failure. The underlying error stays
// reachable through errors.Is / errors.As (e.g. context.DeadlineExceeded).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// NewUpstream builds an *UpstreamError.
func NewUpstream(status int, message string) error {
	return &UpstreamError{Status: status, Message: message}
}

// InvalidCredential wraps ErrInvalidCredential with the upstream message.
func InvalidCredential(message string) error {
	if message == "" {
		return ErrInvalidCredential
	}
	return fmt.Errorf("%w: %s", ErrInvalidCredential, message)
}

// Kind is the coarse class of a fetch failure.
type Kind string

const (
	KindNone              Kind = ""
	KindMissingCredential Kind = "missing_credential"
	KindInvalidCredential Kind = "invalid_credential"
	KindRateLimited       Kind = "rate_limited"
	KindUpstream          Kind = "upstream"
	KindNetwork           Kind = "network"
	KindDestination       Kind = "destination_not_allowed"
	KindUnknown           Kind = "unknown"
)

// KindOf classifies err. Credential and rate-limit classes take precedence
// over the generic upstream class.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, ErrInvalidCredential):
		return KindInvalidCredential
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrDestinationNotAllowed):
		return KindDestination
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status
	}
	var ce *CredentialError
	if errors.As(err, &ce) {
		return ce.Status
	}
	return 0
}

// FromStatus maps a non-2xx upstream status to the taxonomy.
// 401/403 are treated as credential rejections.
func FromStatus(status int, text string) error {
	switch status {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return &CredentialError{Status: status, Message: text}
	default:
		return NewUpstream(status, text)
	}
}

// HTTPStatus is the status a handler should answer with for err.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindMissingCredential:
		return http.StatusBadRequest
	case KindInvalidCredential:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindDestination:
		return http.StatusForbidden
	case KindUpstream:
		return http.StatusBadGateway
	case KindNetwork:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
