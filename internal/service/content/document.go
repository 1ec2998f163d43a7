package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
	"inkwell/internal/domain/repositories"
	editorRepo "inkwell/internal/domain/repositories/editor"
	contentSvc "inkwell/internal/domain/services/content"
)

// MaxTitleLength bounds document titles.
const MaxTitleLength = 200

// documentService implements the DocumentService interface
type documentService struct {
	docs   editorRepo.DocumentRepository
	snaps  editorRepo.SnapshotRepository
	tx     repositories.TransactionManager
	logger *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docs editorRepo.DocumentRepository,
	snaps editorRepo.SnapshotRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) contentSvc.DocumentService {
	return &documentService{
		docs:   docs,
		snaps:  snaps,
		tx:     tx,
		logger: logger,
	}
}

// CreateDocument creates a document together with its initial snapshot(s).
// A single draft (or plain content) yields one primary initial snapshot and
// an immediately editable document. Multiple drafts yield competing
// non-primary initial snapshots; the document stays awaiting primary
// selection and holds no content of its own yet.
func (s *documentService) CreateDocument(ctx context.Context, req *contentSvc.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	content := req.Content
	if content == "" && len(req.Drafts) == 1 {
		content = req.Drafts[0]
	}
	awaiting := len(req.Drafts) > 1

	doc := &models.Document{
		ProjectID: req.ProjectID,
		Kind:      req.Kind,
		Title:     req.Title,
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if !awaiting {
		doc.Content = content
	}

	err := s.tx.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docs.Create(txCtx, doc); err != nil {
			return err
		}

		if awaiting {
			for _, draft := range req.Drafts {
				snap := &models.Snapshot{
					DocumentID: doc.ID,
					Title:      doc.Title,
					Content:    draft,
					Metadata:   doc.Metadata,
					ChangeType: models.ChangeInitial,
				}
				if err := s.snaps.Append(txCtx, snap); err != nil {
					return err
				}
			}
			return nil
		}

		snap := &models.Snapshot{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Content:    doc.Content,
			Metadata:   doc.Metadata,
			ChangeType: models.ChangeInitial,
			IsPrimary:  true,
		}
		return s.snaps.Append(txCtx, snap)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"kind", doc.Kind,
		"project_id", req.ProjectID,
		"initial_drafts", max(len(req.Drafts), 1),
		"awaiting_primary", awaiting,
	)

	return doc, nil
}

// GetDocument retrieves a document
func (s *documentService) GetDocument(ctx context.Context, id, projectID string) (*models.Document, error) {
	return s.docs.GetByID(ctx, id, projectID)
}

// ListDocuments lists a project's documents
func (s *documentService) ListDocuments(ctx context.Context, projectID string) ([]models.Document, error) {
	return s.docs.ListByProject(ctx, projectID)
}

// DeleteDocument deletes a document
func (s *documentService) DeleteDocument(ctx context.Context, id, projectID string) error {
	if err := s.docs.Delete(ctx, id, projectID); err != nil {
		return err
	}

	s.logger.Info("document deleted",
		"id", id,
		"project_id", projectID,
	)

	return nil
}

// ListSnapshots lists a document's version history, most recent first.
// The project scope is enforced through the document lookup.
func (s *documentService) ListSnapshots(ctx context.Context, id, projectID string) ([]models.Snapshot, error) {
	if _, err := s.docs.GetByID(ctx, id, projectID); err != nil {
		return nil, err
	}
	return s.snaps.ListByDocument(ctx, id)
}

// validateCreateRequest validates a document creation request
func (s *documentService) validateCreateRequest(req *contentSvc.CreateDocumentRequest) error {
	if req.Content == "" && len(req.Drafts) == 0 {
		return fmt.Errorf("either content or drafts must be provided")
	}
	if req.Content != "" && len(req.Drafts) > 0 {
		return fmt.Errorf("content and drafts are mutually exclusive")
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Kind, validation.Required, validation.In(models.KindCanvas, models.KindScript)),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, MaxTitleLength),
		),
	)
}
