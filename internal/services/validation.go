package services

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct tag validation and maps failures to ErrValidation
func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}
