// Package errors defines the single error shape every directory request
// failure is normalized to, and classifies it for retry policies.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCategory determines how errors should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable errors should be retried with exponential backoff.
	// Examples: 500 Internal Server Error, network timeouts, connection failures.
	Recoverable ErrorCategory = iota

	// Irrecoverable errors should fail immediately without retry.
	// Examples: 401 Unauthorized, 403 Forbidden, 400 Bad Request.
	Irrecoverable
)

// String returns a human-readable representation of the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Kind is the user-facing taxonomy of a failure.
type Kind int

const (
	// KindServer is any other non-2xx response.
	KindServer Kind = iota
	// KindValidation is raised client-side before a request is sent.
	KindValidation
	// KindAuthentication means the login was rejected.
	KindAuthentication
	// KindAuthorization means an authenticated request returned 401.
	KindAuthorization
	// KindNetwork means no response was received.
	KindNetwork
	// KindServerValidation carries field-level errors reported by the server.
	KindServerValidation
	// KindNotFound is a 404 on a resource lookup.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNetwork:
		return "network"
	case KindServerValidation:
		return "server_validation"
	case KindNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FieldError is a single field:message pair.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the normalized shape of every failure surfaced by the client.
type APIError struct {
	Kind       Kind
	Category   ErrorCategory
	Op         string       // operation name, e.g. "list profiles"
	StatusCode int          // HTTP status code (0 when no response was received)
	Message    string       // human-readable message, server-supplied when available
	RawBody    []byte       // response body as received
	Fields     []FieldError // field-level details for validation kinds
	Underlying error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, "HTTP %d: ", e.StatusCode)
	}
	b.WriteString(e.Message)
	return b.String()
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *APIError) Unwrap() error {
	return e.Underlying
}

// IsIrrecoverable returns true if the error should not be retried.
func IsIrrecoverable(err error) bool {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Category == Irrecoverable
	}
	return false
}

// KindOf returns the Kind of err and whether err carries one.
func KindOf(err error) (Kind, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// NewValidationError builds a client-side validation failure.
func NewValidationError(op string, fields ...FieldError) *APIError {
	return &APIError{
		Kind:     KindValidation,
		Category: Irrecoverable,
		Op:       op,
		Message:  JoinFields(fields),
		Fields:   fields,
	}
}

// JoinFields renders field errors as "field: message | field: message".
func JoinFields(fields []FieldError) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, " | ")
}
