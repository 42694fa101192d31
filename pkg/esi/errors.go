package esi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/esi-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrUnknownRoute         = errors.New("unknown route")
	ErrMissingPathParameter = errors.New("missing path parameter")
	ErrInvalidParams        = errors.New("parameters cannot be serialized")
	ErrAgentClosed          = errors.New("agent is closed")
	ErrInvalidRoute         = errors.New("invalid route")
	ErrDuplicateRoute       = errors.New("duplicate route id")
	ErrInvalidConfig        = errors.New("invalid configuration")
)

// UnknownRouteError is returned when a route id is not in the agent's table.
// It is never cached and never reaches the network.
type UnknownRouteError struct {
	RouteID string
}

// Error implements the error interface.
func (e *UnknownRouteError) Error() string {
	return fmt.Sprintf("esi: unknown route %q", e.RouteID)
}

// Is reports ErrUnknownRoute as a match.
func (e *UnknownRouteError) Is(target error) bool {
	return target == ErrUnknownRoute
}

// TransportError is a failure before any HTTP response was received.
type TransportError struct {
	RouteID string
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("esi: %s: transport error: %v", e.RouteID, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is a response with a non-2xx status.
type HTTPStatusError struct {
	RouteID    string
	StatusCode int
	Header     http.Header
	Body       []byte
	// Message is the "error" field of the ESI error body, or the status text.
	Message string
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("esi: %s: status %d: %s", e.RouteID, e.StatusCode, e.Message)
}

// DecodeError is a 2xx response whose body is not valid JSON.
type DecodeError struct {
	RouteID string
	Body    []byte
	Err     error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("esi: %s: decoding response: %v", e.RouteID, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// esiErrorBody is the error payload ESI and SSO return.
type esiErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func newHTTPStatusError(routeID string, statusCode int, header http.Header, body []byte) *HTTPStatusError {
	message := http.StatusText(statusCode)
	if statusCode == constants.HTTPStatusErrorLimited {
		message = "Error Limited"
	}

	var payload esiErrorBody
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		message = payload.Error
		if payload.ErrorDescription != "" {
			message += ": " + payload.ErrorDescription
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") && len(text) < 200 {
		message = text
	}

	return &HTTPStatusError{
		RouteID:    routeID,
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
		Message:    message,
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	statusErr := &HTTPStatusError{}
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403, usually a missing scope.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsErrorLimited checks if ESI has cut the client off for exceeding its error budget.
func IsErrorLimited(err error) bool {
	return StatusCode(err) == constants.HTTPStatusErrorLimited
}

// IsTransport checks if the error happened before a response was received.
func IsTransport(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}
