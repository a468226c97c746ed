package api

import (
	"net/http"

	"github.com/starford/casedesk/internal/models"
)

// Login handles POST /api/auth/login.
//
//	@Summary		Exchange credentials for an access token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Credentials	true	"Username and password"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	res, err := h.svc.Login(r.Context(), creds)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, success("login successful").
		with("access_token", res.AccessToken).
		with("user", res.User))
}

// CurrentUser handles GET /api/auth/user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	u, err := h.svc.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, "current user", err)
		return
	}
	writeJSON(w, http.StatusOK, success("user retrieved").with("user", u))
}

// Register handles POST /api/auth/register. Admin only.
//
//	@Summary		Create a user account
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.UserInput	true	"Account to create"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.svc.Register(r.Context(), in)
	if err != nil {
		writeError(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, success("user registered").with("user", u))
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	if err := h.svc.Logout(r.Context(), claims); err != nil {
		writeError(w, "logout", err)
		return
	}
	writeJSON(w, http.StatusOK, success("logged out"))
}
