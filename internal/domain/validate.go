package domain

import "hotelcore/internal/pkg/validator"

func validateStruct(v any) error {
	if fields := validator.Validate(v); fields != nil {
		return &ValidationError{Message: "invalid fields", Fields: fields}
	}
	return nil
}
