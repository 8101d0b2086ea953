package dto

import (
	"slices"

	"fritakagp.app/backend/internal/http/validation"
	"fritakagp.app/backend/internal/model"
)

const otherCategory = "ANNET"

// Request is implemented by the submission request bodies.
type Request[T model.Record] interface {
	// Check runs the rules binding tags cannot express.
	Check() []validation.FieldError
	ToRecord() T
	Attachment() string
}

type ValidationResponse struct {
	Status           string                  `json:"status"`
	ValidationErrors []validation.FieldError `json:"validationErrors"`
}

func NewValidationResponse(errs []validation.FieldError) ValidationResponse {
	return ValidationResponse{Status: "VALIDATION_ERRORS", ValidationErrors: errs}
}

func fieldError(path, message string) validation.FieldError {
	return validation.FieldError{PropertyPath: path, Message: message}
}

func requireDescription(categories []string, description *string, path string) []validation.FieldError {
	if slices.Contains(categories, otherCategory) && (description == nil || *description == "") {
		return []validation.FieldError{fieldError(path, "Beskrivelse må fylles ut når ANNET er valgt.")}
	}
	return nil
}
