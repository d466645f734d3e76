package services

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

func (a *APIError) Error() string {
	return a.Message
}

func UnauthorizedError() *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Message: "Unauthorized: sign in required",
	}
}

func ForbiddenError(action string) *APIError {
	return &APIError{
		Status:  http.StatusForbidden,
		Message: fmt.Sprintf("Forbidden: you are not allowed to %s", action),
	}
}

func AdminForbiddenError(action string) *APIError {
	return &APIError{
		Status:  http.StatusForbidden,
		Message: fmt.Sprintf("Forbidden: only administrators can %s", action),
	}
}

func NotFoundError(resource string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func BadRequestError(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: message,
	}
}
