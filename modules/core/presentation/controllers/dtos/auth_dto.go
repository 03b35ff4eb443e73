package dtos

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/partsdesk/partsdesk/pkg/constants"
)

// APIError mirrors the envelope in pkg/httpapi for the response types
// controllers document.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func validationErrors(d interface{}) (map[string]string, bool) {
	errorMessages := map[string]string{}
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return errorMessages, true
	}
	for _, err := range errs.(validator.ValidationErrors) {
		errorMessages[err.Field()] = fmt.Sprintf("failed on %q", err.Tag())
	}
	return errorMessages, len(errorMessages) == 0
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (d *LoginDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}

type AdminAuthDTO struct {
	Password string `json:"password" validate:"required"`
}

func (d *AdminAuthDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}
