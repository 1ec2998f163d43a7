package editor

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
	"inkwell/internal/domain/repositories"
	editorRepo "inkwell/internal/domain/repositories/editor"
)

// PrimarySelector handles the document-creation special case: a document
// created with multiple competing initial snapshots (several AI-generated
// first drafts) stays in awaiting_primary_selection until the user chooses
// one. Until then the document cannot be opened for editing.
type PrimarySelector struct {
	docs   editorRepo.DocumentRepository
	snaps  editorRepo.SnapshotRepository
	tx     repositories.TransactionManager
	logger *slog.Logger
}

// NewPrimarySelector creates a primary version selector.
func NewPrimarySelector(
	docs editorRepo.DocumentRepository,
	snaps editorRepo.SnapshotRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) *PrimarySelector {
	return &PrimarySelector{
		docs:   docs,
		snaps:  snaps,
		tx:     tx,
		logger: logger,
	}
}

// awaitingPrimary reports whether a snapshot list represents a document still
// awaiting its primary-version choice: two or more competing initial
// snapshots and none marked primary.
func awaitingPrimary(snaps []models.Snapshot) bool {
	initials := 0
	for i := range snaps {
		if snaps[i].ChangeType != models.ChangeInitial {
			continue
		}
		if snaps[i].IsPrimary {
			return false
		}
		initials++
	}
	return initials > 1
}

// Awaiting reports whether the document is still awaiting primary selection.
func (p *PrimarySelector) Awaiting(ctx context.Context, documentID string) (bool, error) {
	snaps, err := p.snaps.ListByDocument(ctx, documentID)
	if err != nil {
		return false, err
	}
	return awaitingPrimary(snaps), nil
}

// ChoosePrimary marks the chosen initial snapshot as primary and persists its
// content as the document's current state, transitioning the document to
// editable. Sibling initial snapshots remain non-primary and immutable; once
// editable, is_primary plays no further role.
func (p *PrimarySelector) ChoosePrimary(ctx context.Context, documentID, snapshotID string) (*models.Snapshot, error) {
	snaps, err := p.snaps.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !awaitingPrimary(snaps) {
		return nil, fmt.Errorf("%w: document %s is not awaiting primary selection", domain.ErrConflict, documentID)
	}

	var chosen *models.Snapshot
	for i := range snaps {
		if snaps[i].ID == snapshotID {
			chosen = &snaps[i]
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("snapshot %s: %w", snapshotID, domain.ErrNotFound)
	}
	if chosen.ChangeType != models.ChangeInitial {
		return nil, fmt.Errorf("%w: only initial snapshots can be chosen as primary", domain.ErrValidation)
	}

	err = p.tx.ExecTx(ctx, func(txCtx context.Context) error {
		if err := p.snaps.SetPrimary(txCtx, chosen.ID, documentID); err != nil {
			return err
		}
		return p.docs.UpdateFields(txCtx, documentID, chosen.Fields())
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	chosen.IsPrimary = true

	p.logger.Info("primary version chosen",
		"document_id", documentID,
		"snapshot_id", chosen.ID,
		"sequence", chosen.Sequence,
	)

	return chosen, nil
}
