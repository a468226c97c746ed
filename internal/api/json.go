package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/models"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// envelope is the success body: message and status plus payload keys.
type envelope map[string]any

func success(msg string) envelope {
	return envelope{"message": msg, "status": "success"}
}

func (e envelope) with(key string, v any) envelope {
	e[key] = v
	return e
}

func pageBody[T any](msg, key string, page models.Page[T]) envelope {
	return success(msg).with(key, page.Items).with("pagination", page.Pagination)
}

type errResponse struct {
	Message string `json:"message" validate:"required"`
	Status  string `json:"status" example:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Message: msg, Status: "error"}
}

// writeError maps a service error to its status code. Unclassified errors
// are logged and reported as "internal error".
func writeError(w http.ResponseWriter, op string, err error) {
	var status int
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrAlreadyExists):
		status = http.StatusConflict
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, status, errorBody(apperr.Message(err, http.StatusText(status))))
}

// decodeJSON reads a JSON body into v. A missing or malformed body yields a
// 400 response and false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}
