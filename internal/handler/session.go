package handler

import (
	"log/slog"
	"net/http"

	models "inkwell/internal/domain/models/editor"
	"inkwell/internal/httputil"
	"inkwell/internal/service/editor"
)

// SessionHandler exposes draft sessions over HTTP: open/close, edits, manual
// save, restore, the navigation guard, and primary-version selection.
type SessionHandler struct {
	manager *editor.Manager
	logger  *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *editor.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		logger:  logger,
	}
}

// sessionState is the session snapshot returned to the hosting UI.
type sessionState struct {
	DocumentID string                    `json:"document_id"`
	Kind       models.Kind               `json:"kind"`
	Dirty      bool                      `json:"dirty"`
	Guard      editor.GuardState         `json:"guard"`
	Fields     map[string]string         `json:"fields"`
	Suggestion *models.PendingSuggestion `json:"suggestion,omitempty"`
}

func stateOf(e *editor.Editor) sessionState {
	s := e.Session()
	return sessionState{
		DocumentID: s.DocumentID(),
		Kind:       s.Kind(),
		Dirty:      s.IsDirty(),
		Guard:      e.Guard().State(),
		Fields:     s.LiveFields(),
		Suggestion: e.Suggestions().Pending(),
	}
}

// getEditor looks up the open editor for a document, enforcing the project
// scope from the route. Writes a 404 and returns nil when nothing is open.
func (h *SessionHandler) getEditor(w http.ResponseWriter, projectID, documentID string) *editor.Editor {
	e, ok := h.manager.Get(documentID)
	if !ok || e.Session().ProjectID() != projectID {
		httputil.RespondError(w, http.StatusNotFound, "no open draft session for document")
		return nil
	}
	return e
}

// OpenSession opens a draft session for a document
// POST /api/projects/{projectID}/documents/{id}/session
func (h *SessionHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	e, err := h.manager.Open(r.Context(), id, projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, stateOf(e))
}

// GetSession returns the current session state
// GET /api/projects/{projectID}/documents/{id}/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	e := h.getEditor(w, projectID, id)
	if e == nil {
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stateOf(e))
}

// CloseSession destroys the draft session, abandoning unsaved edits
// DELETE /api/projects/{projectID}/documents/{id}/session
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	if e := h.getEditor(w, projectID, id); e == nil {
		return
	}
	h.manager.Close(id)

	w.WriteHeader(http.StatusNoContent)
}

// editRequest applies a single field edit to the live draft.
type editRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Edit applies a field edit through the session
// POST /api/projects/{projectID}/documents/{id}/session/edits
func (h *SessionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	e := h.getEditor(w, projectID, id)
	if e == nil {
		return
	}

	var req editRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := e.Edit(req.Field, req.Value); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stateOf(e))
}

// saveRequest carries the optional operator-facing save description.
type saveRequest struct {
	Description string `json:"description"`
}

// Save runs a manual save
// POST /api/projects/{projectID}/documents/{id}/session/save
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	e := h.getEditor(w, projectID, id)
	if e == nil {
		return
	}

	var req saveRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	snap, err := e.Save(r.Context(), models.ChangeManual, req.Description)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, snap)
}

// restoreRequest names the snapshot to restore.
type restoreRequest struct {
	SnapshotID string `json:"snapshot_id"`
}

// Restore restores a prior snapshot, returning the pre-restore backup
// POST /api/projects/{projectID}/documents/{id}/session/restore
func (h *SessionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	e := h.getEditor(w, projectID, id)
	if e == nil {
		return
	}

	var req restoreRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SnapshotID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Snapshot ID is required")
		return
	}

	backup, err := e.Restore(r.Context(), req.SnapshotID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, backup)
}

// choosePrimaryRequest names the winning initial snapshot.
type choosePrimaryRequest struct {
	SnapshotID string `json:"snapshot_id"`
}

// ChoosePrimary resolves awaiting-primary documents and opens a session
// POST /api/projects/{projectID}/documents/{id}/session/primary
func (h *SessionHandler) ChoosePrimary(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	var req choosePrimaryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SnapshotID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Snapshot ID is required")
		return
	}

	e, err := h.manager.ChoosePrimary(r.Context(), id, projectID, req.SnapshotID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, stateOf(e))
}

// leaveRequest carries the user's answer to the navigation guard prompt.
type leaveRequest struct {
	Resolution editor.Resolution `json:"resolution"`
}

// leaveResponse reports whether the navigation may proceed.
type leaveResponse struct {
	Proceed bool `json:"proceed"`
}

// TryLeave is the pre-navigation hook. A clean session proceeds immediately;
// a dirty one is resolved by the supplied three-way resolution.
// POST /api/projects/{projectID}/documents/{id}/session/leave
func (h *SessionHandler) TryLeave(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	// Project-scope check only when a session is actually open; leaving an
	// unopened document always proceeds.
	if e, open := h.manager.Get(id); open && e.Session().ProjectID() != projectID {
		httputil.RespondError(w, http.StatusNotFound, "no open draft session for document")
		return
	}

	var req leaveRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	proceed, err := h.manager.TryLeave(r.Context(), id, req.Resolution)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, leaveResponse{Proceed: proceed})
}
