package api

import (
	"net/http"

	"github.com/starford/casedesk/internal/models"
)

// ListCustomers handles GET /api/customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListCustomers(r.Context(), pageRequest(r))
	if err != nil {
		writeError(w, "list customers", err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("customers retrieved", "customers", page))
}

// ListCustomersByCase handles GET /api/customers/case/{id}.
func (h *Handler) ListCustomersByCase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	page, err := h.svc.ListCustomersByCase(r.Context(), id, pageRequest(r))
	if err != nil {
		writeError(w, "list customers by case", err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("case customers retrieved", "customers", page))
}

// GetCustomer handles GET /api/customers/{id}.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, "get customer", err)
		return
	}
	setETag(w, c)
	writeJSON(w, http.StatusOK, success("customer retrieved").with("customer", c))
}

// CreateCustomer handles POST /api/customers.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in models.CustomerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.svc.CreateCustomer(r.Context(), in)
	if err != nil {
		writeError(w, "create customer", err)
		return
	}
	setETag(w, c)
	writeJSON(w, http.StatusCreated, success("customer created").with("customer", c))
}

// UpdateCustomer handles PUT /api/customers/{id}.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var patch models.CustomerPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	c, err := h.svc.UpdateCustomer(r.Context(), id, patch, ifMatch(r))
	if err != nil {
		writeError(w, "update customer", err)
		return
	}
	setETag(w, c)
	writeJSON(w, http.StatusOK, success("customer updated").with("customer", c))
}

// DeleteCustomer handles DELETE /api/customers/{id}.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		writeError(w, "delete customer", err)
		return
	}
	writeJSON(w, http.StatusOK, success("customer deleted"))
}
