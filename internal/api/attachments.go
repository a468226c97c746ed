package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 50 << 20 // 50 MB

// ListAttachments handles GET /api/cases/{id}/attachments.
func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	list, err := h.svc.ListAttachments(r.Context(), id)
	if err != nil {
		writeError(w, "list attachments", err)
		return
	}
	writeJSON(w, http.StatusOK, success("attachments retrieved").with("attachments", list))
}

// UploadAttachment handles POST /api/cases/{id}/attachments (multipart/form-data, field "file").
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	att, err := h.svc.UploadAttachment(r.Context(), id, header.Filename, file)
	if err != nil {
		writeError(w, "upload attachment", err)
		return
	}
	writeJSON(w, http.StatusCreated, success("attachment uploaded").with("attachment", att))
}

// ServeAttachment handles GET /api/cases/{id}/attachments/{name}.
func (h *Handler) ServeAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	data, err := h.svc.ReadAttachment(r.Context(), id, name)
	if err != nil {
		writeError(w, "read attachment", err)
		return
	}
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
}
