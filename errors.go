package contentd

import "errors"

var (
	// ErrNotFound is returned when a path does not exist or cannot be reached
	ErrNotFound = errors.New("not found")
	// ErrPermission is returned when a path exists but access is denied
	ErrPermission = errors.New("permission denied")
	// ErrRead is returned when an opened file cannot be read to completion
	ErrRead = errors.New("read failure")
	// ErrDecode is returned when file content is not valid UTF-8
	ErrDecode = errors.New("invalid utf-8")
	// ErrOutsideRoot is returned when a resolved path leaves the configured root
	ErrOutsideRoot = errors.New("path outside root")
	// ErrInvalidInput is returned when request input cannot be accepted
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when a request verifier rejects a request
	ErrUnauthorized = errors.New("unauthorized")
)

// Reason returns a short label for the failure category of err, suitable
// for structured logging. Unknown errors are labelled "internal".
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOutsideRoot):
		return "outside_root"
	case errors.Is(err, ErrPermission):
		return "permission"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRead):
		return "read"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "internal"
	}
}
