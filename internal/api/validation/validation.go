// Package validation wraps go-playground/validator so handlers reject
// malformed payloads with VALIDATION_FAILED before any authority runs.
package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a DTO against its struct tags and maps failures to the
// domain validation error with per-field detail.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]any, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
		return apperrors.NewValidationError("invalid payload", details)
	}
	return apperrors.NewValidationError("invalid payload", nil)
}
