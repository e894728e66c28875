package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// GenericNetworkMessage is used when a request produced no response at all.
const GenericNetworkMessage = "network error"

// errorBody is the subset of server error payloads the client understands.
type errorBody struct {
	Message any          `json:"message"`
	Error   any          `json:"error"`
	Errors  []FieldError `json:"errors"`
}

// ClassifyHTTPError determines whether an HTTP error should be retried.
// This implements best practices for HTTP error handling:
// - 4xx client errors (except 408 and 429) are irrecoverable
// - 5xx server errors are recoverable
func ClassifyHTTPError(statusCode int) ErrorCategory {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		// Unexpected status codes - be conservative and retry
		return Recoverable
	}
}

// NewHTTPError normalizes a non-2xx response. The message prefers the
// server's "message" field, then its "error" field, then a generic
// status-code message.
func NewHTTPError(op string, statusCode int, body []byte) *APIError {
	e := &APIError{
		Kind:       kindForStatus(statusCode),
		Category:   ClassifyHTTPError(statusCode),
		Op:         op,
		StatusCode: statusCode,
		RawBody:    body,
	}

	var parsed errorBody
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		if s, ok := parsed.Message.(string); ok && s != "" {
			e.Message = s
		} else if s, ok := parsed.Error.(string); ok && s != "" {
			e.Message = s
		}
		e.Fields = parsed.Errors
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("request failed with status code %d", statusCode)
	}
	e.Underlying = fmt.Errorf("%s failed: HTTP %d", op, statusCode)
	return e
}

// NewLoginError normalizes a rejected login. Field-level errors from the
// server are joined into one message; anything else is an authentication
// failure.
func NewLoginError(op string, statusCode int, body []byte) *APIError {
	e := NewHTTPError(op, statusCode, body)
	if len(e.Fields) > 0 {
		e.Kind = KindServerValidation
		e.Message = JoinFields(e.Fields)
		return e
	}
	if statusCode >= 400 && statusCode < 500 {
		e.Kind = KindAuthentication
	}
	return e
}

// NewNetworkError creates a classified error for network-level failures.
// Network errors are always recoverable as they may be transient.
func NewNetworkError(op string, err error) *APIError {
	return &APIError{
		Kind:       KindNetwork,
		Category:   Recoverable,
		Op:         op,
		Message:    GenericNetworkMessage,
		Underlying: fmt.Errorf("%s network error: %w", op, err),
	}
}

func kindForStatus(statusCode int) Kind {
	switch statusCode {
	case http.StatusUnauthorized:
		return KindAuthorization
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnprocessableEntity:
		return KindServerValidation
	default:
		return KindServer
	}
}
