package security

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ayurwell/portal/internal/domain/patient"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Validator validates request commands and AI outputs
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their JSON names
func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	// Register custom validation rules
	_ = validate.RegisterValidation("prakriti", validatePrakriti)
	_ = validate.RegisterValidation("dosha", validateDosha)

	return &Validator{validate: validate}
}

// Struct runs the raw validator
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Validate validates s and returns a VALIDATION_FAILED AppError listing every field
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	fields := make([]apperrors.ValidationError, 0, len(validationErrs))
	for _, e := range validationErrs {
		fields = append(fields, apperrors.ValidationError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: message(e),
		})
	}
	return apperrors.NewValidationErrors(fields)
}

func message(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s entries", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters long", field, e.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s form", field, e.Param())
	case "prakriti":
		return fmt.Sprintf("%s is not a recognised prakriti", field)
	case "dosha":
		return fmt.Sprintf("%s must be vata, pitta or kapha", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func validatePrakriti(fl validator.FieldLevel) bool {
	return patient.Prakriti(fl.Field().String()).Valid()
}

func validateDosha(fl validator.FieldLevel) bool {
	return patient.Dosha(fl.Field().String()).Valid()
}
