package editor

import (
	"context"

	"inkwell/internal/domain/models/editor"
)

// DocumentRepository defines data access operations for documents.
// This is the persistence collaborator the draft editor writes through; the
// editor core never touches the database directly.
type DocumentRepository interface {
	// Create creates a new document
	Create(ctx context.Context, doc *editor.Document) error

	// GetByID retrieves a document by ID, scoped to a project
	GetByID(ctx context.Context, id, projectID string) (*editor.Document, error)

	// Update persists the full editable state of a document
	Update(ctx context.Context, doc *editor.Document) error

	// UpdateFields persists a partial field map onto a document. Used by the
	// full save path (all tracked fields) and the debounced best-effort path
	// (a single field, no snapshot).
	UpdateFields(ctx context.Context, id string, fields map[string]string) error

	// Delete deletes a document
	Delete(ctx context.Context, id, projectID string) error

	// ListByProject lists document metadata in a project (no content)
	ListByProject(ctx context.Context, projectID string) ([]editor.Document, error)
}
