package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Jidetireni/sanctuary-access/internal/constants"
	"github.com/Jidetireni/sanctuary-access/internal/dto"
	svc "github.com/Jidetireni/sanctuary-access/internal/services"
	"github.com/Jidetireni/sanctuary-access/pkg/images"
)

const pictureField = "picture"

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	result, err := h.factory.Services.Member.List(r.Context(), h.getPaginationParams(r), currentUser(r))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, result)
}

func (h *Handlers) SearchMembers(w http.ResponseWriter, r *http.Request) {
	input := dto.SearchInput{
		LastName: r.URL.Query().Get("last_name"),
		Email:    r.URL.Query().Get("email"),
	}

	result, err := h.factory.Services.Member.Search(r.Context(), input, h.getPaginationParams(r), currentUser(r))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, result)
}

func (h *Handlers) SubmitMember(w http.ResponseWriter, r *http.Request) {
	var input dto.SubmitMemberInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	h.submit(w, r, &input)
}

func (h *Handlers) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	var input dto.SubmitMemberInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	if input.ID != nil && *input.ID != id {
		h.errorResponse(w, r, svc.BadRequestError("id in the body does not match the url"))
		return
	}
	input.ID = &id

	h.submit(w, r, &input)
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request, input *dto.SubmitMemberInput) {
	if strings.TrimSpace(input.DeviceID) == "" {
		input.DeviceID = r.Header.Get(constants.DeviceIDHeader)
	}

	member, created, err := h.factory.Services.Member.Submit(r.Context(), input, currentUser(r))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.respond(w, r, status, member)
}

func (h *Handlers) GetMember(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	member, err := h.factory.Services.Member.Get(r.Context(), id, currentUser(r))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, member)
}

func (h *Handlers) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	if err := h.factory.Services.Member.Delete(r.Context(), id, currentUser(r)); err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, envelope{"id": id, "deleted": true})
}

func (h *Handlers) UploadPicture(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	// multipart framing on top of the image itself
	r.Body = http.MaxBytesReader(w, r.Body, images.MaxUploadSize+maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorResponse(w, r, svc.BadRequestError("picture exceeds the 10 MiB limit"))
			return
		}
		h.errorResponse(w, r, svc.BadRequestError("expected a multipart form with a picture field"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile(pictureField)
	if err != nil {
		h.errorResponse(w, r, svc.BadRequestError("picture file is required"))
		return
	}
	defer file.Close()

	member, err := h.factory.Services.Member.UploadPicture(r.Context(), id, file, currentUser(r))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, member)
}

func (h *Handlers) RequestEmailVerification(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	resp, err := h.factory.Services.Member.RequestEmailVerification(r.Context(), id, currentUser(r))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusAccepted, resp)
}
