package handler

import (
	"log/slog"
	"net/http"
	"time"

	"inkwell/internal/domain/services/content"
	"inkwell/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService content.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService content.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// CreateDocument creates a new document with its initial snapshot(s)
// POST /api/projects/{projectID}/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Project ID is required")
		return
	}

	var req content.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ProjectID = projectID

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document by ID
// GET /api/projects/{projectID}/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), id, projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ListDocuments lists a project's documents
// GET /api/projects/{projectID}/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Project ID is required")
		return
	}

	docs, err := h.docService.ListDocuments(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// DeleteDocument deletes a document
// DELETE /api/projects/{projectID}/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), id, projectID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSnapshots lists a document's version history, most recent first
// GET /api/projects/{projectID}/documents/{id}/snapshots
func (h *DocumentHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	projectID, id, ok := pathScope(w, r)
	if !ok {
		return
	}

	snaps, err := h.docService.ListSnapshots(r.Context(), id, projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snaps)
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
