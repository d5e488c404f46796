package errors

import (
	"errors"
	"net/http"

	apperrors "wanderlust/pkg/errors"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrInvalidDates = errors.New("invalid booking dates")

	ErrDoubleBooking = errors.New("dates already booked for this listing")

	ErrUnauthorized = errors.New("booking belongs to another user")

	ErrPersistence = errors.New("booking store failure")

	ErrConstraintViolation = errors.New("booking violates store constraints")

	// ErrLockHeld means another admission currently holds the listing lock.
	ErrLockHeld = errors.New("listing booking lock is held")
)

const (
	CodeInvalidDates        = "INVALID_DATES"
	CodeDoubleBooking       = "DOUBLE_BOOKING"
	CodeNotFound            = apperrors.CodeNotFound
	CodeUnauthorized        = "UNAUTHORIZED"
	CodePersistence         = "PERSISTENCE_ERROR"
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
)

func InvalidDates(message string) *apperrors.AppError {
	return apperrors.Wrap(ErrInvalidDates, CodeInvalidDates, message, http.StatusUnprocessableEntity)
}

func DoubleBooking() *apperrors.AppError {
	return apperrors.Wrap(ErrDoubleBooking, CodeDoubleBooking, "Selected dates are already booked.", http.StatusConflict)
}

func NotFound(message string) *apperrors.AppError {
	return apperrors.Wrap(ErrNotFound, CodeNotFound, message, http.StatusNotFound)
}

func Unauthorized(message string) *apperrors.AppError {
	return apperrors.Wrap(ErrUnauthorized, CodeUnauthorized, message, http.StatusForbidden)
}

func Persistence(message string) *apperrors.AppError {
	return apperrors.Wrap(ErrPersistence, CodePersistence, message, http.StatusInternalServerError)
}

func ConstraintViolation(message string) *apperrors.AppError {
	return apperrors.Wrap(ErrConstraintViolation, CodeConstraintViolation, message, http.StatusUnprocessableEntity)
}
