package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/casedesk/internal/caseservice"
	"github.com/starford/casedesk/internal/checksum"
	"github.com/starford/casedesk/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *caseservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *caseservice.Service) *Handler {
	return &Handler{svc: svc}
}

// idParam parses the {id} URL parameter. It writes a 404 and returns false
// for anything that is not a positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return 0, false
	}
	return id, true
}

// pageRequest reads page and per_page from the query string.
func pageRequest(r *http.Request) models.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return models.NewPageRequest(page, perPage)
}

// ifMatch returns the If-Match header without surrounding quotes.
func ifMatch(r *http.Request) string {
	return strings.Trim(r.Header.Get("If-Match"), `"`)
}

// setETag sets the ETag header for v.
func setETag(w http.ResponseWriter, v any) {
	tag, err := checksum.ETag(v)
	if err != nil {
		slog.Warn("etag failed", slog.String("error", err.Error()))
		return
	}
	w.Header().Set("ETag", `"`+tag+`"`)
}

// ListCases handles GET /api/cases.
//
//	@Summary		List cases
//	@Tags			cases
//	@Produce		json
//	@Param			page		query		int	false	"Page number"
//	@Param			per_page	query		int	false	"Page size (max 100)"
//	@Success		200			{object}	CaseListResponse
//	@Security		BearerAuth
//	@Router			/cases [get]
func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListCases(r.Context(), pageRequest(r))
	if err != nil {
		writeError(w, "list cases", err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("cases retrieved", "cases", page))
}

// GetCase handles GET /api/cases/{id}.
//
//	@Summary		Get a case with its child counts
//	@Tags			cases
//	@Produce		json
//	@Param			id	path		int	true	"Case ID"
//	@Success		200	{object}	CaseResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cases/{id} [get]
func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetCase(r.Context(), id)
	if err != nil {
		writeError(w, "get case", err)
		return
	}
	setETag(w, c)
	writeJSON(w, http.StatusOK, success("case retrieved").with("case", c))
}

// CreateCase handles POST /api/cases.
//
//	@Summary		Create a case
//	@Tags			cases
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.CaseInput	true	"Case to create"
//	@Success		201		{object}	CaseResponse
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cases [post]
func (h *Handler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var in models.CaseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.svc.CreateCase(r.Context(), in)
	if err != nil {
		writeError(w, "create case", err)
		return
	}
	setETag(w, c)
	writeJSON(w, http.StatusCreated, success("case created").with("case", c))
}

// UpdateCase handles PUT /api/cases/{id}. Only keys present in the body change.
//
//	@Summary		Partially update a case
//	@Tags			cases
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int					true	"Case ID"
//	@Param			If-Match	header		string				false	"ETag for optimistic concurrency"
//	@Param			body		body		models.CasePatch	true	"Fields to change"
//	@Success		200			{object}	CaseResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cases/{id} [put]
func (h *Handler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var patch models.CasePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	c, err := h.svc.UpdateCase(r.Context(), id, patch, ifMatch(r))
	if err != nil {
		writeError(w, "update case", err)
		return
	}
	setETag(w, c)
	writeJSON(w, http.StatusOK, success("case updated").with("case", c))
}

// DeleteCase handles DELETE /api/cases/{id}.
//
//	@Summary		Delete a case with its customers, investigations and attachments
//	@Tags			cases
//	@Param			id	path		int	true	"Case ID"
//	@Success		200	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cases/{id} [delete]
func (h *Handler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCase(r.Context(), id); err != nil {
		writeError(w, "delete case", err)
		return
	}
	writeJSON(w, http.StatusOK, success("case deleted"))
}
