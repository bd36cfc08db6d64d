package types

import (
	"errors"
	"fmt"
)

var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrListingNotAvailable  = errors.New("listing not available")
	ErrClaimConflict        = errors.New("listing already claimed")
	ErrRequestNotFound      = errors.New("request not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrSelfRequest          = errors.New("cannot request your own listing")
	ErrGenUnavailable       = errors.New("recipe provider unavailable")
)

// ValidationError carries a caller-facing message for a rejected input.
// It is always returned before any write happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
