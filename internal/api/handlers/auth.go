package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Jidetireni/sanctuary-access/internal/dto"
	svc "github.com/Jidetireni/sanctuary-access/internal/services"
	"github.com/Jidetireni/sanctuary-access/pkg/token"
)

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var input dto.LoginInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	authResponse, err := h.factory.Services.User.Login(r.Context(), w, &input)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, authResponse)
}

func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.factory.Services.User.GoogleAuthURL(r.Context())
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback finishes the Google flow and sends the browser back to the frontend
// with the session cookies set.
func (h *Handlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		h.errorResponse(w, r, &svc.APIError{
			Status:  http.StatusUnauthorized,
			Message: "Google sign-in was cancelled: " + reason,
		})
		return
	}

	if _, err := h.factory.Services.User.GoogleCallback(r.Context(), w, q.Get("state"), q.Get("code")); err != nil {
		h.errorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, h.config.Server.FEURL, http.StatusFound)
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := h.refreshTokenFrom(w, r)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	authResponse, err := h.factory.Services.User.Refresh(r.Context(), w, refreshToken)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, authResponse)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := h.refreshTokenFrom(w, r)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	if err := h.factory.Services.User.Logout(r.Context(), w, refreshToken); err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, envelope{"logged_out": true})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.factory.Services.User.Me(r.Context())
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, me)
}

// refreshTokenFrom reads the refresh token from its cookie, or from an optional
// JSON body.
func (h *Handlers) refreshTokenFrom(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(token.RefreshTokenName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	var input dto.RefreshInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		return "", svc.BadRequestError("invalid request body")
	}
	return strings.TrimSpace(input.RefreshToken), nil
}
