// Package api implements the casedesk REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/casedesk/internal/auth"
	"github.com/starford/casedesk/internal/caseservice"
)

type claimsKey struct{}

// ClaimsFrom returns the verified token claims stored by AuthMiddleware.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header and
// stores the token claims in the request context.
func AuthMiddleware(svc *caseservice.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("missing authorization token"))
				return
			}
			claims, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, "authenticate", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// RequireAdmin rejects callers whose account is not an admin. It must run
// after AuthMiddleware.
func RequireAdmin(svc *caseservice.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorBody("missing authorization token"))
				return
			}
			if err := svc.RequireAdmin(r.Context(), claims.UserID); err != nil {
				writeError(w, "require admin", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
