package errors

import "errors"

var (
	ErrNotFound = errors.New("listing not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrReviewNotFound = errors.New("review not found")
)
