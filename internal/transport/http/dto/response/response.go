package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Stack   string       `json:"stack,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func Error(message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Message: message,
	}
}

// ValidationError converts validator failures into per-field messages.
// Any other error collapses into a single generic message.
func ValidationError(err error) ErrorResponse {
	resp := ErrorResponse{
		Success: false,
		Message: "Validation failed",
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		resp.Errors = append(resp.Errors, FieldError{Field: "request", Message: err.Error()})
		return resp
	}

	for _, fe := range verrs {
		resp.Errors = append(resp.Errors, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fieldMessage(fe),
		})
	}

	return resp
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
