package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/casedesk/internal/caseservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *caseservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(svc))
		admin := RequireAdmin(svc)

		r.Get("/auth/user", h.CurrentUser)
		r.Post("/auth/logout", h.Logout)
		r.With(admin).Post("/auth/register", h.Register)

		r.Route("/cases", func(r chi.Router) {
			r.Get("/", h.ListCases)
			r.With(admin).Post("/", h.CreateCase)
			r.Get("/{id}", h.GetCase)
			r.With(admin).Put("/{id}", h.UpdateCase)
			r.With(admin).Delete("/{id}", h.DeleteCase)

			r.Get("/{id}/attachments", h.ListAttachments)
			r.With(admin).Post("/{id}/attachments", h.UploadAttachment)
			r.Get("/{id}/attachments/{name}", h.ServeAttachment)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.With(admin).Post("/", h.CreateCustomer)
			r.Get("/case/{id}", h.ListCustomersByCase)
			r.Get("/{id}", h.GetCustomer)
			r.With(admin).Put("/{id}", h.UpdateCustomer)
			r.With(admin).Delete("/{id}", h.DeleteCustomer)
		})

		r.Route("/investigations", func(r chi.Router) {
			r.Get("/", h.ListInvestigations)
			r.With(admin).Post("/", h.CreateInvestigation)
			r.Get("/case/{id}", h.ListInvestigationsByCase)
			r.Get("/{id}", h.GetInvestigation)
			r.With(admin).Put("/{id}", h.UpdateInvestigation)
			r.With(admin).Delete("/{id}", h.DeleteInvestigation)
		})

		r.Route("/targets", func(r chi.Router) {
			r.Get("/", h.ListTargets)
			r.With(admin).Post("/", h.CreateTarget)
			r.Get("/investigation/{id}", h.ListTargetsByInvestigation)
			r.Get("/{id}", h.GetTarget)
			r.With(admin).Put("/{id}", h.UpdateTarget)
			r.With(admin).Delete("/{id}", h.DeleteTarget)
		})

		r.Post("/search", h.Search)
		r.Get("/dashboard", h.Dashboard)

		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
