package content

import (
	"context"

	models "inkwell/internal/domain/models/editor"
)

// CreateDocumentRequest creates a document. When more than one draft is
// provided (several AI-generated first drafts), each becomes a competing
// initial snapshot and the document stays in awaiting_primary_selection
// until one is chosen.
type CreateDocumentRequest struct {
	ProjectID string            `json:"-"`
	Kind      models.Kind       `json:"kind"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata"`
	Drafts    []string          `json:"drafts,omitempty"`
}

// DocumentService defines document CRUD above the persistence collaborator.
type DocumentService interface {
	// CreateDocument creates a document and its initial snapshot(s)
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id, projectID string) (*models.Document, error)

	// ListDocuments lists a project's documents
	ListDocuments(ctx context.Context, projectID string) ([]models.Document, error)

	// DeleteDocument deletes a document
	DeleteDocument(ctx context.Context, id, projectID string) error

	// ListSnapshots lists a document's version history, most recent first
	ListSnapshots(ctx context.Context, id, projectID string) ([]models.Snapshot, error)
}
