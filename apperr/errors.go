package apperr

import (
	"context"
	"errors"
	"net/http"
)

// Error kinds surfaced by the menu administration services.
var (
	ErrConnectionFailure  = errors.New("external database connection failed")
	ErrConnectionTimeout  = errors.New("external database connection timed out")
	ErrItemNotFound       = errors.New("menu item not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrValidation         = errors.New("validation failed")
	ErrAuthorization      = errors.New("admin authorization required")
	ErrForbidden          = errors.New("access denied")
	ErrConflict           = errors.New("resource already exists")
	ErrAllTiersFailed     = errors.New("all storage tiers failed")
)

// Validation wraps ErrValidation with a caller-facing message.
func Validation(msg string) error {
	return &messageError{msg: msg, kind: ErrValidation}
}

type messageError struct {
	msg  string
	kind error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.kind }

// Status maps an error to the HTTP status the handlers reply with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthorization):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrConnectionTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrConnectionFailure), errors.Is(err, ErrAllTiersFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrRestaurantNotFound) ||
		errors.Is(err, ErrAdminNotFound)
}
