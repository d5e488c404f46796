package validator

import (
	"errors"
	"time"

	bookingserrors "wanderlust/internal/bookings/errors"
	"wanderlust/pkg/daterange"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/model"
	"wanderlust/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize booking validator", "error", err)
	}
	return &BookingValidator{validate: v}
}

// Validate checks the payload shape and parses both dates. Range and
// pastness checks belong to the admission engine.
func (v *BookingValidator) Validate(req *model.BookingRequest) (time.Time, time.Time, error) {
	if err := validation.Struct(v.validate, req); err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			return time.Time{}, time.Time{}, errs.AppError("Invalid booking request")
		}
		return time.Time{}, time.Time{}, err
	}

	checkIn, err := daterange.ParseDay(req.CheckIn)
	if err != nil {
		return time.Time{}, time.Time{}, bookingserrors.InvalidDates("Please select valid dates.")
	}
	checkOut, err := daterange.ParseDay(req.CheckOut)
	if err != nil {
		return time.Time{}, time.Time{}, bookingserrors.InvalidDates("Please select valid dates.")
	}
	return checkIn, checkOut, nil
}
