package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
	"inkwell/internal/domain/repositories"
	editorRepo "inkwell/internal/domain/repositories/editor"
)

// Controller is the save/restore controller: the only path that appends to a
// document's snapshot log and rebases the draft session baseline. Full saves
// are serialized per session; a second save started while one is in flight
// waits for and returns the in-flight result instead of starting another.
type Controller struct {
	session *Session
	docs    editorRepo.DocumentRepository
	snaps   editorRepo.SnapshotRepository
	tx      repositories.TransactionManager
	logger  *slog.Logger

	mu      sync.Mutex
	pending *pendingSave
}

// pendingSave carries the result of the save currently in flight so that
// concurrent callers can share it.
type pendingSave struct {
	done chan struct{}
	snap *models.Snapshot
	err  error
}

// NewController creates a save/restore controller for one draft session.
func NewController(
	session *Session,
	docs editorRepo.DocumentRepository,
	snaps editorRepo.SnapshotRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		session: session,
		docs:    docs,
		snaps:   snaps,
		tx:      tx,
		logger:  logger,
	}
}

// InFlight reports whether a full save or restore is currently running.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// acquire claims the in-flight slot. It returns the new pending entry, or the
// currently running one with acquired=false.
func (c *Controller) acquire() (p *pendingSave, acquired bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return c.pending, false
	}
	c.pending = &pendingSave{done: make(chan struct{})}
	return c.pending, true
}

// release publishes the result and frees the in-flight slot.
func (c *Controller) release(p *pendingSave, snap *models.Snapshot, err error) {
	p.snap = snap
	p.err = err
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	close(p.done)
}

// Save persists the live fields, appends a snapshot with the next sequence,
// and rebases the session. On failure live and baseline are left untouched so
// the dirty state is preserved and the caller can retry. If a save is already
// in flight, Save waits for it and returns its result.
func (c *Controller) Save(ctx context.Context, changeType models.ChangeType, description string) (*models.Snapshot, error) {
	p, acquired := c.acquire()
	if !acquired {
		select {
		case <-p.done:
			return p.snap, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	snap, err := c.doSave(ctx, changeType, description)
	c.release(p, snap, err)
	return snap, err
}

// TrySave is the scheduler's entry point: when a save is already in flight
// the tick is a no-op signaled by ErrSaveInFlight, never a queued retry.
func (c *Controller) TrySave(ctx context.Context, changeType models.ChangeType, description string) (*models.Snapshot, error) {
	p, acquired := c.acquire()
	if !acquired {
		return nil, domain.ErrSaveInFlight
	}

	snap, err := c.doSave(ctx, changeType, description)
	c.release(p, snap, err)
	return snap, err
}

func (c *Controller) doSave(ctx context.Context, changeType models.ChangeType, description string) (*models.Snapshot, error) {
	live := c.session.LiveFields()
	snap := snapshotFromFields(c.session.DocumentID(), live, changeType, description)

	// Document update and snapshot append commit together; serialization of
	// full saves guarantees no other save interleaves for this session.
	err := c.tx.ExecTx(ctx, func(txCtx context.Context) error {
		if err := c.docs.UpdateFields(txCtx, c.session.DocumentID(), live); err != nil {
			return err
		}
		return c.snaps.Append(txCtx, snap)
	})
	if err != nil {
		c.logger.Warn("save failed",
			"document_id", c.session.DocumentID(),
			"change_type", changeType,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	// No-op when the session was closed while the save was in flight.
	c.session.Rebase(live)

	c.logger.Info("snapshot saved",
		"document_id", c.session.DocumentID(),
		"snapshot_id", snap.ID,
		"sequence", snap.Sequence,
		"change_type", changeType,
	)

	return snap, nil
}

// Restore appends a backup snapshot of the current live fields, then persists
// the target snapshot's content as the new document state and rebases the
// session to it. The backup is taken before anything is overwritten so a bad
// restore is itself recoverable. Restore leaves the session clean: it
// represents an already-committed state change.
func (c *Controller) Restore(ctx context.Context, snapshotID string) (*models.Snapshot, error) {
	// Restores share the save serialization slot: wait out any in-flight
	// save, then claim the slot.
	var p *pendingSave
	for {
		cur, acquired := c.acquire()
		if acquired {
			p = cur
			break
		}
		select {
		case <-cur.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	backup, err := c.doRestore(ctx, snapshotID)
	c.release(p, backup, err)
	return backup, err
}

func (c *Controller) doRestore(ctx context.Context, snapshotID string) (*models.Snapshot, error) {
	target, err := c.snaps.GetByID(ctx, snapshotID, c.session.DocumentID())
	if err != nil {
		return nil, err
	}

	live := c.session.LiveFields()
	backup := snapshotFromFields(c.session.DocumentID(), live, models.ChangeRestore, "pre-restore backup")
	restored := target.Fields()

	err = c.tx.ExecTx(ctx, func(txCtx context.Context) error {
		// Backup append precedes the overwrite.
		if err := c.snaps.Append(txCtx, backup); err != nil {
			return err
		}
		return c.docs.UpdateFields(txCtx, c.session.DocumentID(), restored)
	})
	if err != nil {
		c.logger.Warn("restore failed",
			"document_id", c.session.DocumentID(),
			"target_snapshot", snapshotID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	c.session.Rebase(restored)

	c.logger.Info("snapshot restored",
		"document_id", c.session.DocumentID(),
		"target_snapshot", snapshotID,
		"target_sequence", target.Sequence,
		"backup_snapshot", backup.ID,
		"backup_sequence", backup.Sequence,
	)

	return backup, nil
}

// snapshotFromFields builds an unsequenced snapshot value from a field map.
// Sequence, ID and CreatedAt are assigned by the repository on append.
func snapshotFromFields(docID string, fields map[string]string, changeType models.ChangeType, description string) *models.Snapshot {
	meta := make(map[string]string)
	for k, v := range fields {
		if k == models.FieldTitle || k == models.FieldContent {
			continue
		}
		meta[k] = v
	}
	return &models.Snapshot{
		DocumentID:  docID,
		Title:       fields[models.FieldTitle],
		Content:     fields[models.FieldContent],
		Metadata:    meta,
		ChangeType:  changeType,
		Description: description,
	}
}
