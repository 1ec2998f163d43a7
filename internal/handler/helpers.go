package handler

import (
	"errors"
	"net/http"

	"inkwell/internal/domain"
	"inkwell/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var staleErr *domain.StaleSpanError
	var httpErr domain.HTTPError

	switch {
	case errors.As(err, &staleErr):
		// The caller must re-select; include the stale offset so the UI
		// can highlight it.
		httputil.RespondErrorWithExtras(w, http.StatusConflict, staleErr.Error(), map[string]interface{}{
			"span_start": staleErr.Start,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAwaitingPrimary):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrSessionClosed):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrGeneration):
		httputil.RespondError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathScope extracts the project and document IDs from the route pattern.
// Returns false after writing a 400 when either is missing.
func pathScope(w http.ResponseWriter, r *http.Request) (projectID, documentID string, ok bool) {
	projectID = r.PathValue("projectID")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Project ID is required")
		return "", "", false
	}
	documentID = r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Document ID is required")
		return "", "", false
	}
	return projectID, documentID, true
}
