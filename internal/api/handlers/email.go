package handlers

import (
	"net/http"

	"github.com/Jidetireni/sanctuary-access/internal/dto"
)

func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	member, err := h.factory.Services.Member.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, member)
}

func (h *Handlers) SendEmail(w http.ResponseWriter, r *http.Request) {
	var input dto.SendEmailInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	if err := h.factory.Services.Mailer.Send(r.Context(), &input, currentUser(r)); err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusAccepted, envelope{"sent": true, "to": input.To})
}
