package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookblog/bookblog-server/internal/errors"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Location string `json:"location,omitempty" doc:"Where the error occurred, e.g. body.title"`
	Message  string `json:"message" doc:"What is wrong with the value"`
	Value    any    `json:"value,omitempty" doc:"The offending value"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = newAPIError
}

func newAPIError(status int, message string, errs ...error) huma.StatusError {
	var fields []FieldError
	for _, err := range errs {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return fromDomainError(domainErr)
		}

		var detail *huma.ErrorDetail
		if errors.As(err, &detail) {
			fields = append(fields, FieldError{
				Location: detail.Location,
				Message:  detail.Message,
				Value:    detail.Value,
			})
		}
	}

	apiErr := &APIError{
		status:  status,
		Code:    statusToCode(status),
		Message: message,
	}
	if len(fields) > 0 {
		apiErr.Details = fields
	}
	return apiErr
}

func fromDomainError(err *domainerrors.Error) *APIError {
	return &APIError{
		status:  err.HTTPStatus(),
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeAlreadyExists)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeTooManyRequests)
	default:
		return string(domainerrors.CodeInternal)
	}
}
