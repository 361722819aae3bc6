package http

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Envelope is the uniform response shape: {success, message?, data?}.
type Envelope[T any] struct {
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Message string `json:"message,omitempty" doc:"Human-readable message"`
	Data    T      `json:"data" doc:"Response payload"`
}

func ok[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// ErrorResponse is the error shape matching the success envelope:
// {success: false, message}. It replaces huma's default RFC 7807 model.
type ErrorResponse struct {
	status  int
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

func (e *ErrorResponse) GetStatus() int {
	return e.status
}

// Replace huma's error model so every error, including request validation
// failures, uses the envelope shape.
func init() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		if len(errs) > 0 {
			details := make([]string, 0, len(errs))
			for _, err := range errs {
				details = append(details, err.Error())
			}
			message = message + ": " + strings.Join(details, "; ")
		}
		return &ErrorResponse{status: status, Success: false, Message: message}
	}
}
