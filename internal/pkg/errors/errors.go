package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")

	ErrCodeInvalid = errors.New("invalid verification code")
	ErrCodeUsed    = errors.New("verification code no longer active")
	ErrCodeExpired = errors.New("verification code expired")

	ErrNotVerified  = errors.New("email not verified")
	ErrBanned       = errors.New("account banned")
	ErrNeedsUpgrade = errors.New("insufficient credits")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsCodeFailure reports whether err is any verification-code rejection.
func IsCodeFailure(err error) bool {
	return errors.Is(err, ErrCodeInvalid) || errors.Is(err, ErrCodeUsed) || errors.Is(err, ErrCodeExpired)
}
