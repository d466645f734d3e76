package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Jidetireni/sanctuary-access/internal/repository"
	svc "github.com/Jidetireni/sanctuary-access/internal/services"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handlers) logError(r *http.Request, err error) {
	h.factory.Logger.Error().
		Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("server error")
}

// toAPIError maps service and storage errors onto the API error taxonomy.
func toAPIError(err error) *svc.APIError {
	var apiErr *svc.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, sql.ErrNoRows):
		return svc.NotFoundError("Resource")
	case errors.Is(err, repository.ErrInvalidCursor), errors.Is(err, repository.ErrInvalidSort):
		return svc.BadRequestError(err.Error())
	case repository.IsUniqueViolation(err):
		return &svc.APIError{
			Status:  http.StatusConflict,
			Message: "a record with these details already exists",
		}
	}

	return &svc.APIError{
		Status:  http.StatusInternalServerError,
		Message: "the server encountered a problem and could not process your request",
	}
}

func (h *Handlers) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		h.logError(r, err)
	}

	body := map[string]any{
		"message": apiErr.Message,
		"status":  apiErr.Status,
	}
	if apiErr.Errors != nil {
		body["errors"] = apiErr.Errors
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logError(r, fmt.Errorf("failed to write error response: %w", err))
	}
}
