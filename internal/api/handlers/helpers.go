package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Jidetireni/sanctuary-access/internal/dto"
	"github.com/Jidetireni/sanctuary-access/internal/repository"
	svc "github.com/Jidetireni/sanctuary-access/internal/services"
	"github.com/Jidetireni/sanctuary-access/internal/services/users"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type envelope map[string]any

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"data":   data,
		"status": status,
	}); err != nil {
		return err
	}

	return nil
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := h.writeJSON(w, status, data, nil); err != nil {
		h.logError(r, err)
	}
}

func (h *Handlers) getPaginationParams(r *http.Request) dto.QueryOptions {
	q := dto.QueryOptions{Limit: repository.DefaultLimit}

	// Parse & clamp limit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			q.Limit = repository.ClampLimit(uint32(n))
		}
	}

	// Directly assign cursor & sort if present
	if v := r.URL.Query().Get("cursor"); v != "" {
		q.Cursor = &v
	}
	if v := r.URL.Query().Get("sort"); v != "" {
		q.Sort = &v
	}

	return q
}

func (h *Handlers) idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, svc.BadRequestError("invalid access request id")
	}
	return id, nil
}

// currentUser returns the session, or nil on public routes.
func currentUser(r *http.Request) *users.UserContextValue {
	user, ok := users.FromContext(r.Context())
	if !ok {
		return nil
	}
	return user
}
