package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// Register custom validation for UUID
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errs []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errs = append(errs, &element)
		}
	}
	return errs
}

// First validates the struct and returns the first failure as a plain error,
// or nil when the struct is valid.
func First(data interface{}) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return fmt.Errorf("Validation failed: Field '%s' failed on tag '%s'", first.FailedField, first.Tag)
}
