package handler

import (
	"log/slog"
	"net/http"

	models "inkwell/internal/domain/models/editor"
	"inkwell/internal/httputil"
	"inkwell/internal/service/editor"
)

// SuggestionHandler exposes the suggestion staging flow: propose against a
// selected span, then accept or discard. Generated text never reaches the
// live draft except through an explicit accept.
type SuggestionHandler struct {
	manager *editor.Manager
	logger  *slog.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(manager *editor.Manager, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		manager: manager,
		logger:  logger,
	}
}

func (h *SuggestionHandler) getEditor(w http.ResponseWriter, projectID, documentID string) *editor.Editor {
	e, ok := h.manager.Get(documentID)
	if !ok || e.Session().ProjectID() != projectID {
		httputil.RespondError(w, http.StatusNotFound, "no open draft session for document")
		return nil
	}
	return e
}

// proposeRequest selects a span of the live content and prompts generation.
type proposeRequest struct {
	Span   models.Span `json:"span"`
	Prompt string      `json:"prompt"`
}

// Propose generates and stages a suggestion for the selected span
// POST /api/projects/{projectID}/documents/{id}/session/suggestions
func (h *SuggestionHandler) Propose(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	e := h.getEditor(w, projectID, id)
	if e == nil {
		return
	}

	var req proposeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	suggestion, err := e.Suggestions().Propose(r.Context(), req.Span, req.Prompt)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, suggestion)
}

// acceptRequest picks how the staged text is folded in.
type acceptRequest struct {
	Mode models.AcceptMode `json:"mode"`
}

// Accept folds the staged suggestion into the live draft
// POST /api/projects/{projectID}/documents/{id}/session/suggestions/accept
func (h *SuggestionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	e := h.getEditor(w, projectID, id)
	if e == nil {
		return
	}

	var req acceptRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := e.Suggestions().Accept(req.Mode); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stateOf(e))
}

// Discard drops the pending suggestion without touching the draft
// DELETE /api/projects/{projectID}/documents/{id}/session/suggestions
func (h *SuggestionHandler) Discard(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	e := h.getEditor(w, projectID, id)
	if e == nil {
		return
	}

	e.Suggestions().Discard()
	w.WriteHeader(http.StatusNoContent)
}
