package api

import (
	"net/http"

	"github.com/starford/casedesk/internal/models"
)

// ListTargets handles GET /api/targets.
func (h *Handler) ListTargets(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListTargets(r.Context(), pageRequest(r))
	if err != nil {
		writeError(w, "list targets", err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("targets retrieved", "targets", page))
}

// ListTargetsByInvestigation handles GET /api/targets/investigation/{id}.
func (h *Handler) ListTargetsByInvestigation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	page, err := h.svc.ListTargetsByInvestigation(r.Context(), id, pageRequest(r))
	if err != nil {
		writeError(w, "list targets by investigation", err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("investigation targets retrieved", "targets", page))
}

// GetTarget handles GET /api/targets/{id}.
func (h *Handler) GetTarget(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	t, err := h.svc.GetTarget(r.Context(), id)
	if err != nil {
		writeError(w, "get target", err)
		return
	}
	setETag(w, t)
	writeJSON(w, http.StatusOK, success("target retrieved").with("target", t))
}

// CreateTarget handles POST /api/targets.
func (h *Handler) CreateTarget(w http.ResponseWriter, r *http.Request) {
	var in models.TargetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.svc.CreateTarget(r.Context(), in)
	if err != nil {
		writeError(w, "create target", err)
		return
	}
	setETag(w, t)
	writeJSON(w, http.StatusCreated, success("target created").with("target", t))
}

// UpdateTarget handles PUT /api/targets/{id}.
func (h *Handler) UpdateTarget(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var patch models.TargetPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	t, err := h.svc.UpdateTarget(r.Context(), id, patch, ifMatch(r))
	if err != nil {
		writeError(w, "update target", err)
		return
	}
	setETag(w, t)
	writeJSON(w, http.StatusOK, success("target updated").with("target", t))
}

// DeleteTarget handles DELETE /api/targets/{id}.
func (h *Handler) DeleteTarget(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTarget(r.Context(), id); err != nil {
		writeError(w, "delete target", err)
		return
	}
	writeJSON(w, http.StatusOK, success("target deleted"))
}
