package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"journal/internal/domain"
	"journal/internal/httputil"

	"github.com/go-chi/chi/v5"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var (
		conflictErr *domain.ConflictError
		tooLarge    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStorage):
		slog.Error("storage failure", "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "storage unavailable, try again")
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HandleCreateConflict answers a create conflict with the existing resource
// and 409. Other errors are handled normally.
func HandleCreateConflict[T any](w http.ResponseWriter, err error, fetchFn func(id string) (*T, error)) {
	var conflictErr *domain.ConflictError
	if !errors.As(err, &conflictErr) {
		handleError(w, err)
		return
	}

	existing, fetchErr := fetchFn(conflictErr.ResourceID)
	if fetchErr != nil {
		handleError(w, fetchErr)
		return
	}
	httputil.RespondJSON(w, http.StatusConflict, existing)
}

// documentID reads the {id} path parameter.
func documentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return "", false
	}
	return id, true
}
