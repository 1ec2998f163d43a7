package editor

import (
	"context"

	"inkwell/internal/domain/models/editor"
)

// SnapshotRepository defines data access operations for the append-only
// snapshot log. Snapshots are never mutated or deleted by normal operation;
// the only writes are Append and the one-time SetPrimary flip on initial
// snapshots.
type SnapshotRepository interface {
	// Append inserts a snapshot with sequence = max(existing)+1 for the
	// document and fills in ID, Sequence and CreatedAt on the passed value.
	Append(ctx context.Context, snap *editor.Snapshot) error

	// GetByID retrieves a snapshot by ID, scoped to a document
	GetByID(ctx context.Context, id, documentID string) (*editor.Snapshot, error)

	// ListByDocument lists a document's snapshots ordered by sequence
	// descending (most recent first, ties broken by created_at).
	ListByDocument(ctx context.Context, documentID string) ([]editor.Snapshot, error)

	// MaxSequence returns the highest assigned sequence for a document,
	// zero when no snapshots exist.
	MaxSequence(ctx context.Context, documentID string) (int, error)

	// SetPrimary marks an initial snapshot as the chosen primary version.
	// Sibling initial snapshots stay false and immutable.
	SetPrimary(ctx context.Context, id, documentID string) error
}
