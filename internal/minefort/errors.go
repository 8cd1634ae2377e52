package minefort

import (
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies an APIError into the categories callers act on.
type ErrorKind int

const (
	// KindAuthenticationFailed means the login was rejected, or a session
	// expiry could not be recovered by the single re-login retry.
	KindAuthenticationFailed ErrorKind = iota
	// KindTimeout means the request exceeded the transport deadline.
	KindTimeout
	// KindConnectionFailed covers DNS failures and refused connections.
	KindConnectionFailed
	// KindBadRequest is a 4xx the provider rejected, with a classified
	// human-readable message where the body matched a known pattern.
	KindBadRequest
	// KindServerError is any 5xx from the provider.
	KindServerError
	// KindUnexpected is everything else (malformed bodies, surprise codes).
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindTimeout:
		return "timeout"
	case KindConnectionFailed:
		return "connection_failed"
	case KindBadRequest:
		return "bad_request"
	case KindServerError:
		return "server_error"
	default:
		return "unexpected"
	}
}

// APIError represents a failure from the Minefort API or the transport
// beneath it. Every public client operation returns either a result or one
// of these; raw transport errors never cross the package boundary.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

// Error implements the error interface. The message is short and suitable
// for direct display to an end user.
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError.
func NewAPIError(kind ErrorKind, statusCode int, message string) *APIError {
	return &APIError{Kind: kind, StatusCode: statusCode, Message: message}
}

// IsAuthFailure reports whether err is an APIError with
// KindAuthenticationFailed.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuthenticationFailed
}

// classifyTransportError converts an error returned by http.Client.Do into
// the APIError taxonomy.
func classifyTransportError(err error) *APIError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewAPIError(KindTimeout, 0, "Minefort API request timed out.")
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NewAPIError(KindConnectionFailed, 0, "Could not connect to the Minefort API.")
	}

	// url.Error wraps dial errors; treat anything network-shaped that is
	// not a timeout as a connection failure.
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewAPIError(KindConnectionFailed, 0, "Could not connect to the Minefort API.")
	}

	return NewAPIError(KindUnexpected, 0, fmt.Sprintf("Unexpected error talking to the Minefort API: %v", err))
}
