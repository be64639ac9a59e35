package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding tags on gin's validator and
// makes field errors report json names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v.RegisterValidation("notfuture", notFuture)
}

// notFuture accepts blank values and YYYY-MM-DD dates no later than today.
func notFuture(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	t, err := ParseDate(value)
	if err != nil {
		return false
	}
	return !t.After(Today())
}

var tagMessages = map[string]string{
	"required":  "This field is required",
	"email":     "Enter a valid email address",
	"notfuture": "Enter a valid date (YYYY-MM-DD) that is not in the future",
}

// FromBindingError turns the first validator failure into a ValidationError
// naming the field. Other bind errors (bad JSON) become ErrInvalidInput.
func FromBindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ErrInvalidInput
	}
	fe := verrs[0]
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		msg = "Invalid value"
		switch fe.Tag() {
		case "max":
			msg = "Must be at most " + fe.Param() + " characters"
		case "min":
			msg = "Must be at least " + fe.Param() + " characters"
		}
	}
	return NewValidationError(fe.Field(), msg)
}
