package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
	editorRepo "inkwell/internal/domain/repositories/editor"
	"inkwell/internal/repository/postgres"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) editorRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, kind, title, content, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ProjectID,
		doc.Kind,
		doc.Title,
		doc.Content,
		doc.Metadata,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document '%s' already exists", doc.Title),
				ResourceType: "document",
			}
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID, scoped to a project when projectID is
// non-empty.
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id, projectID string) (*models.Document, error) {
	var query string
	var args []interface{}

	if projectID != "" {
		query = fmt.Sprintf(`
			SELECT id, project_id, kind, title, content, metadata, created_at, updated_at
			FROM %s
			WHERE id = $1 AND project_id = $2 AND deleted_at IS NULL
		`, r.tables.Documents)
		args = []interface{}{id, projectID}
	} else {
		query = fmt.Sprintf(`
			SELECT id, project_id, kind, title, content, metadata, created_at, updated_at
			FROM %s
			WHERE id = $1 AND deleted_at IS NULL
		`, r.tables.Documents)
		args = []interface{}{id}
	}

	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, args...).Scan(
		&doc.ID,
		&doc.ProjectID,
		&doc.Kind,
		&doc.Title,
		&doc.Content,
		&doc.Metadata,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// Update persists the full editable state of a document
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, content = $3, metadata = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, doc.ID, doc.Title, doc.Content, doc.Metadata).Scan(&doc.UpdatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update document: %w", err)
	}

	return nil
}

// UpdateFields persists a partial field map. Title and content map to their
// columns; everything else merges into the metadata JSONB so single-field
// best-effort saves never clobber sibling metadata keys.
func (r *PostgresDocumentRepository) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	set := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	meta := map[string]string{}

	for k, v := range fields {
		switch k {
		case models.FieldTitle:
			args = append(args, v)
			set = append(set, fmt.Sprintf("title = $%d", len(args)))
		case models.FieldContent:
			args = append(args, v)
			set = append(set, fmt.Sprintf("content = $%d", len(args)))
		default:
			meta[k] = v
		}
	}
	if len(meta) > 0 {
		args = append(args, meta)
		set = append(set, fmt.Sprintf("metadata = metadata || $%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Documents, strings.Join(set, ", "))

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update document fields: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete soft-deletes a document
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, projectID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW()
		WHERE id = $1 AND project_id = $2 AND deleted_at IS NULL
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, projectID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByProject lists document metadata in a project (no content)
func (r *PostgresDocumentRepository) ListByProject(ctx context.Context, projectID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, kind, title, '', metadata, created_at, updated_at
		FROM %s
		WHERE project_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.ProjectID,
			&doc.Kind,
			&doc.Title,
			&doc.Content,
			&doc.Metadata,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
