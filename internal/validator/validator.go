// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// e164Regex matches international phone numbers in E.164 form.
var e164Regex = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("frequency", validateFrequency)
		_ = v.RegisterValidation("e164", validateE164)
	}
}

func validateFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "monthly", "weekly", "biweekly":
		return true
	}
	return false
}

func validateE164(fl validator.FieldLevel) bool {
	return e164Regex.MatchString(fl.Field().String())
}
