// ABOUTME: Domain input validation for create operations using validator/v10
// ABOUTME: Maps validator failures into the store's ValidationError type

package store

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkStruct validates an entity before it is written. The first failing
// field is reported; callers correct input and retry.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return &ValidationError{
			Field:  first.Field(),
			Reason: "failed " + first.Tag() + " rule",
		}
	}
	return &ValidationError{Field: "input", Reason: err.Error()}
}
