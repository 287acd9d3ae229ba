package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrTooMany
	ErrInternal
	ErrCodeInvalid
	ErrNotVerified
	ErrBanned
	ErrNeedsUpgrade
	ErrInvalidFile
	ErrUploadFailed
	ErrAIUnavailable
)
