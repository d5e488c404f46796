package validator

import (
	"errors"

	"wanderlust/pkg/logger"
	"wanderlust/pkg/model"
	"wanderlust/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ListingValidator struct {
	validate *validator.Validate
}

func NewListingValidator(log *logger.Logger) *ListingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize listing validator", "error", err)
	}
	log.Info("Listing validator initialized successfully")
	return &ListingValidator{validate: v}
}

func (v *ListingValidator) ValidateListing(req *model.ListingRequest) error {
	return v.check(req, "Invalid listing")
}

func (v *ListingValidator) ValidateUpdate(update *model.ListingUpdate) error {
	return v.check(update, "Invalid listing update")
}

func (v *ListingValidator) ValidateReview(req *model.ReviewRequest) error {
	return v.check(req, "Invalid review")
}

func (v *ListingValidator) check(s any, message string) error {
	err := validation.Struct(v.validate, s)
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return errs.AppError(message)
	}
	return err
}
