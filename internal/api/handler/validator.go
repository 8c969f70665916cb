package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/authkit/auth-api/internal/core/domain"
)

// passwordSymbols are the special characters a strong password must include.
const passwordSymbols = "!@#$%^&*"

// fieldLabels maps JSON field names to the wording used in messages.
var fieldLabels = map[string]string{
	"email":     "Email",
	"password":  "Password",
	"firstName": "First name",
	"lastName":  "Last name",
}

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Errors name fields by their JSON tag and every failing field is reported.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strongpwd", strongPassword)
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Field failures come back as
// *domain.ValidationError.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := &domain.ValidationError{Errors: make([]domain.FieldError, 0, len(ve))}
			for _, fe := range ve {
				out.Errors = append(out.Errors, domain.FieldError{
					Field:   fe.Field(),
					Message: fieldError(fe),
				})
			}
			return out
		}
		return err
	}
	return nil
}

// strongPassword requires an ASCII lowercase letter, an ASCII uppercase letter,
// an ASCII digit and one of passwordSymbols.
func strongPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please provide a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
	case "strongpwd":
		return label + " must contain at least one lowercase letter, one uppercase letter, one number, and one special character"
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, fe.Tag())
	}
}
