package domain

import "errors"

var (
	ErrInvalidIdentity = errors.New("invalid identity")
	ErrInvalidGroup    = errors.New("invalid group")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
)

// ErrorKind возвращает wire-код ошибки для validation_error
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidIdentity):
		return "invalid_identity"
	case errors.Is(err, ErrInvalidGroup):
		return "invalid_group"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
