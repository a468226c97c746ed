package api

import (
	"net/http"

	"github.com/starford/casedesk/internal/models"
)

// Search handles POST /api/search.
//
//	@Summary		Advanced search across cases, customers, investigations and targets
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			page		query		int						false	"Page number"
//	@Param			per_page	query		int						false	"Page size per entity"
//	@Param			body		body		models.SearchParams		true	"Filters and entity selection"
//	@Success		200			{object}	SearchResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var params *models.SearchParams
	if !decodeJSON(w, r, &params) {
		return
	}
	if params == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("search criteria are required"))
		return
	}
	res, err := h.svc.Search(r.Context(), *params, pageRequest(r))
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, success("search results retrieved").with("results", res))
}

// Dashboard handles GET /api/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeError(w, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, success("dashboard retrieved").with("summary", sum))
}
