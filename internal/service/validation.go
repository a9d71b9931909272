package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		return hexColor.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs the struct tags of s and collects failures into verr.
func validateStruct(verr *ValidationError, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe.Field(), fe.Tag(), fe.Param()))
	}
	return nil
}

// validateVar checks a single value, as used for partial updates.
func validateVar(verr *ValidationError, field string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		verr.Add(field, fieldMessage(field, fe.Tag(), fe.Param()))
	}
	return nil
}

func fieldMessage(field, tag, param string) string {
	name := strings.ReplaceAll(field, "_", " ")
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", name, param)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", name, param)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	case "rgbhex":
		return fmt.Sprintf("The %s field must be a hex color such as #3B82F6.", name)
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}

// trimmed returns nil for a nil or blank string, else the trimmed value.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
