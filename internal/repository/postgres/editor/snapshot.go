package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
	editorRepo "inkwell/internal/domain/repositories/editor"
	"inkwell/internal/repository/postgres"
)

// PostgresSnapshotRepository implements the SnapshotRepository interface over
// the append-only snapshot log.
type PostgresSnapshotRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(config *postgres.RepositoryConfig) editorRepo.SnapshotRepository {
	return &PostgresSnapshotRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Append inserts a snapshot with the next per-document sequence. The sequence
// subquery runs in the same statement, so with saves serialized per session
// the assignment is gapless and monotonic.
func (r *PostgresSnapshotRepository) Append(ctx context.Context, snap *models.Snapshot) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, sequence, title, content, metadata, change_type, description, is_primary, created_at)
		VALUES ($1, (SELECT COALESCE(MAX(sequence), 0) + 1 FROM %s WHERE document_id = $1), $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, sequence, created_at
	`, r.tables.Snapshots, r.tables.Snapshots)

	if snap.Metadata == nil {
		snap.Metadata = map[string]string{}
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		snap.DocumentID,
		snap.Title,
		snap.Content,
		snap.Metadata,
		snap.ChangeType,
		snap.Description,
		snap.IsPrimary,
	).Scan(&snap.ID, &snap.Sequence, &snap.CreatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", snap.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("append snapshot: %w", err)
	}

	return nil
}

// GetByID retrieves a snapshot by ID, scoped to a document
func (r *PostgresSnapshotRepository) GetByID(ctx context.Context, id, documentID string) (*models.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, sequence, title, content, metadata, change_type, description, is_primary, created_at
		FROM %s
		WHERE id = $1 AND document_id = $2
	`, r.tables.Snapshots)

	var snap models.Snapshot
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, documentID).Scan(
		&snap.ID,
		&snap.DocumentID,
		&snap.Sequence,
		&snap.Title,
		&snap.Content,
		&snap.Metadata,
		&snap.ChangeType,
		&snap.Description,
		&snap.IsPrimary,
		&snap.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("snapshot %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	return &snap, nil
}

// ListByDocument lists snapshots ordered by sequence descending, ties broken
// by creation time. The highest sequence is most recent.
func (r *PostgresSnapshotRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, sequence, title, content, metadata, change_type, description, is_primary, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY sequence DESC, created_at DESC
	`, r.tables.Snapshots)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		if err := rows.Scan(
			&snap.ID,
			&snap.DocumentID,
			&snap.Sequence,
			&snap.Title,
			&snap.Content,
			&snap.Metadata,
			&snap.ChangeType,
			&snap.Description,
			&snap.IsPrimary,
			&snap.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// MaxSequence returns the highest assigned sequence for a document, zero when
// no snapshots exist.
func (r *PostgresSnapshotRepository) MaxSequence(ctx context.Context, documentID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(sequence), 0) FROM %s WHERE document_id = $1
	`, r.tables.Snapshots)

	var max int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, documentID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max snapshot sequence: %w", err)
	}

	return max, nil
}

// SetPrimary marks an initial snapshot as the chosen primary version. Only
// initial snapshots may be flipped; the flag is otherwise immutable.
func (r *PostgresSnapshotRepository) SetPrimary(ctx context.Context, id, documentID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_primary = TRUE
		WHERE id = $1 AND document_id = $2 AND change_type = 'initial'
	`, r.tables.Snapshots)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, documentID)
	if err != nil {
		return fmt.Errorf("set primary snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("initial snapshot %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
