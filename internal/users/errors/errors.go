package errors

import "errors"

var (
	ErrNotFound = errors.New("user not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrDuplicateUser = errors.New("username or email already registered")

	ErrCredentialsNotFound = errors.New("credentials not found")
)
