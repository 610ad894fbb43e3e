package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("mobile", validateMobile)
	validate.RegisterValidation("strong_password", validateStrongPassword)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// FormatValidationErrors flattens validator errors into a field->reason
// map suitable for the details block of an error response.
func FormatValidationErrors(err error) map[string]string {
	details := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		details["error"] = err.Error()
		return details
	}

	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			details[field] = "this field is required"
		case "email":
			details[field] = "must be a valid email address"
		case "username":
			details[field] = "must be 3-30 characters of letters, digits or underscores"
		case "mobile":
			details[field] = "must be a valid mobile number"
		case "strong_password":
			details[field] = "must contain at least 8 characters with letters and digits"
		case "min":
			details[field] = fmt.Sprintf("must be at least %s", fieldErr.Param())
		case "max":
			details[field] = fmt.Sprintf("must be at most %s", fieldErr.Param())
		case "gt":
			details[field] = fmt.Sprintf("must be greater than %s", fieldErr.Param())
		case "oneof":
			details[field] = fmt.Sprintf("must be one of: %s", fieldErr.Param())
		default:
			details[field] = fmt.Sprintf("failed %s validation", fieldErr.Tag())
		}
	}

	return details
}

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	mobileRegex   = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validateUsername(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

func validateMobile(fl validator.FieldLevel) bool {
	return mobileRegex.MatchString(fl.Field().String())
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	return ValidatePasswordStrength(fl.Field().String()) == nil
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
