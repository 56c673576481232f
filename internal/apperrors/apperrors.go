// README: Shared error taxonomy mapped to HTTP status codes.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized covers credential mismatch or a missing credential on a
	// gated operation. Terminal; callers must not retry with the same credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers identities that do not resolve to a stored record,
	// including malformed identifier strings.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers malformed input rejected before it reaches any engine.
	ErrValidation = errors.New("invalid input")

	// ErrConflict covers illegal state transitions and lost concurrent-update races.
	ErrConflict = errors.New("conflict")
)

// Validationf wraps ErrValidation with a caller-facing detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// HTTPStatus maps a domain error to a response code. Anything outside the
// taxonomy is an infrastructure failure.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
