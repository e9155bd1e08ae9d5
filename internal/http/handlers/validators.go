package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/festoofficial/festo/domain"
)

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

// RegisterValidators adds the otp, role and payment_status tags to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	if err := v.RegisterValidation("otp", validateOTP); err != nil {
		return err
	}
	if err := v.RegisterValidation("role", validateRole); err != nil {
		return err
	}
	return v.RegisterValidation("payment_status", validatePaymentStatus)
}

func validateOTP(fl validator.FieldLevel) bool {
	return otpPattern.MatchString(fl.Field().String())
}

func validateRole(fl validator.FieldLevel) bool {
	_, err := domain.ParseRole(fl.Field().String())
	return err == nil
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	_, err := domain.ParsePaymentStatus(fl.Field().String())
	return err == nil
}
