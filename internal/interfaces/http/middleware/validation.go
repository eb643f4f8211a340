package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pawnfin/console/internal/domain/shared"
)

// MsgInvalidForm is the form-level message for submissions that could not
// be decoded at all.
const MsgInvalidForm = "The form could not be read. Please try again."

// SetupValidator makes validation errors report form field names and
// registers the console's custom tags:
//
//	decimal  the value parses as a number ("1,500.50" included)
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, ok := shared.ParseNumber(fl.Field().String())
		return ok
	})
}

// FieldErrors converts a binding error into field messages for the form.
// Errors that are not validation failures become one form-level message.
func FieldErrors(err error) shared.ValidationErrors {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.NewValidationError("", MsgInvalidForm)
	}
	out := make(shared.ValidationErrors, 0, len(verrs))
	for _, e := range verrs {
		out.Add(e.Field(), getValidationMessage(e))
	}
	return out
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "datetime":
		return "Enter a valid date"
	case "decimal", "numeric":
		return "Enter a number"
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "uuid":
		return "Invalid id"
	default:
		return "Invalid value"
	}
}
