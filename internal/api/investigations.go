package api

import (
	"net/http"

	"github.com/starford/casedesk/internal/models"
)

// ListInvestigations handles GET /api/investigations.
func (h *Handler) ListInvestigations(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListInvestigations(r.Context(), pageRequest(r))
	if err != nil {
		writeError(w, "list investigations", err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("investigations retrieved", "investigations", page))
}

// ListInvestigationsByCase handles GET /api/investigations/case/{id}.
func (h *Handler) ListInvestigationsByCase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	page, err := h.svc.ListInvestigationsByCase(r.Context(), id, pageRequest(r))
	if err != nil {
		writeError(w, "list investigations by case", err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("case investigations retrieved", "investigations", page))
}

// GetInvestigation handles GET /api/investigations/{id}.
func (h *Handler) GetInvestigation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.GetInvestigation(r.Context(), id)
	if err != nil {
		writeError(w, "get investigation", err)
		return
	}
	setETag(w, inv)
	writeJSON(w, http.StatusOK, success("investigation retrieved").with("investigation", inv))
}

// CreateInvestigation handles POST /api/investigations.
func (h *Handler) CreateInvestigation(w http.ResponseWriter, r *http.Request) {
	var in models.InvestigationInput
	if !decodeJSON(w, r, &in) {
		return
	}
	inv, err := h.svc.CreateInvestigation(r.Context(), in)
	if err != nil {
		writeError(w, "create investigation", err)
		return
	}
	setETag(w, inv)
	writeJSON(w, http.StatusCreated, success("investigation created").with("investigation", inv))
}

// UpdateInvestigation handles PUT /api/investigations/{id}.
func (h *Handler) UpdateInvestigation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var patch models.InvestigationPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	inv, err := h.svc.UpdateInvestigation(r.Context(), id, patch, ifMatch(r))
	if err != nil {
		writeError(w, "update investigation", err)
		return
	}
	setETag(w, inv)
	writeJSON(w, http.StatusOK, success("investigation updated").with("investigation", inv))
}

// DeleteInvestigation handles DELETE /api/investigations/{id}.
func (h *Handler) DeleteInvestigation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteInvestigation(r.Context(), id); err != nil {
		writeError(w, "delete investigation", err)
		return
	}
	writeJSON(w, http.StatusOK, success("investigation deleted"))
}
