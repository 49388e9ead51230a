package core

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"brandgate/internal/types"
)

// Validator wraps go-playground/validator so request DTO validation failures
// surface as AppErrors with the right validation codes.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		validate: validator.New(),
		logger:   logger,
	}
}

// ValidateStruct validates the given DTO against its `validate` tags.
// The first failing field determines the returned AppError: email-tagged
// fields map to validation_invalid_email, everything else to
// validation_missing_required_field.
func (v *Validator) ValidateStruct(dst interface{}) error {
	err := v.validate.Struct(dst)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "request validation failed", err)
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())

	if fe.Tag() == "email" {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidEmail,
			field+" must be a valid email address",
			nil,
			map[string]any{"field": field},
		)
	}

	return types.NewAppErrorWithDetails(
		types.ErrCodeValidationMissingField,
		field+" is required",
		nil,
		map[string]any{"field": field, "rule": fe.Tag()},
	)
}
