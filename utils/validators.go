package utils

import (
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func InitValidator() {
	Validate = validator.New()
	Validate.RegisterValidation("password", ValidatePasswordRule)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("password", ValidatePasswordRule)
	}
}

func ValidatePasswordRule(fl validator.FieldLevel) bool {
	return ValidatePassword(fl.Field().String())
}

// ValidatePassword requires at least 6 characters, one number and one
// special character. The auth provider applies its own policy on top.
func ValidatePassword(password string) bool {
	hasNumber := false
	hasSpecial := false

	if len(password) < 6 {
		return false
	}

	for _, char := range password {
		switch {
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasNumber && hasSpecial
}
