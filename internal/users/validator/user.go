package validator

import (
	"errors"

	"wanderlust/pkg/logger"
	"wanderlust/pkg/model"
	"wanderlust/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type UserValidator struct {
	validate *validator.Validate
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize user validator", "error", err)
	}
	log.Info("User validator initialized successfully")
	return &UserValidator{validate: v}
}

func (v *UserValidator) ValidateSignup(req *model.SignupRequest) error {
	return v.check(req, "Invalid signup")
}

func (v *UserValidator) ValidateLogin(req *model.LoginRequest) error {
	return v.check(req, "Invalid login")
}

func (v *UserValidator) check(s any, message string) error {
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
