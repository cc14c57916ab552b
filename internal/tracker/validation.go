package tracker

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nhle/project-tracker/internal/apperr"
	"github.com/nhle/project-tracker/internal/model"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their API names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("projectstatus", oneOf(model.ProjectStatuses))
	_ = v.RegisterValidation("taskstatus", oneOf(model.TaskStatuses))
	return v
}

// oneOf accepts exactly the values in allowed.
func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

// check validates in when validation is enabled and returns an
// apperr.List with one InvalidField failure per rejected field.
func (s *Service) check(in any) error {
	if s.validate == nil {
		return nil
	}
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Unexpectedf(err, "validating input: %v", err)
	}
	list := make(apperr.List, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		list = append(list, apperr.Invalid(fe.Field(), fieldMessage(fe)))
	}
	return list
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must not be empty", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "projectstatus":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(model.ProjectStatuses, ", "))
	case "taskstatus":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(model.TaskStatuses, ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
