package client

import (
	"errors"

	apierrors "github.com/Graziano10/referral-admin/client/internal/errors"
)

// ErrBackPressure is returned when the client's internal shard queue is full.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// ErrClosed is returned for bulk work submitted after Close.
var ErrClosed = errors.New("client closed")

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// Re-export the error shape so callers only import this package.
type (
	APIError      = apierrors.APIError
	FieldError    = apierrors.FieldError
	Kind          = apierrors.Kind
	ErrorCategory = apierrors.ErrorCategory
)

const (
	KindServer           = apierrors.KindServer
	KindValidation       = apierrors.KindValidation
	KindAuthentication   = apierrors.KindAuthentication
	KindAuthorization    = apierrors.KindAuthorization
	KindNetwork          = apierrors.KindNetwork
	KindServerValidation = apierrors.KindServerValidation
	KindNotFound         = apierrors.KindNotFound

	Recoverable   = apierrors.Recoverable
	Irrecoverable = apierrors.Irrecoverable
)

// GenericNetworkMessage is the message of every transport failure.
const GenericNetworkMessage = apierrors.GenericNetworkMessage

// KindOf returns the Kind of err and whether err carries one.
func KindOf(err error) (Kind, bool) { return apierrors.KindOf(err) }

// IsIrrecoverable reports whether retrying err is pointless.
func IsIrrecoverable(err error) bool { return apierrors.IsIrrecoverable(err) }

// IsUnauthorized reports whether the server rejected the session.
func IsUnauthorized(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindAuthorization
}

// IsNotFound reports whether the target no longer exists.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}

// Message returns the text to show a person for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
