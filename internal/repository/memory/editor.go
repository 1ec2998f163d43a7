// Package memory provides in-memory implementations of the persistence
// collaborator interfaces. They back the editor core tests and the dev-mode
// server when no database is configured, and expose small failure-injection
// hooks the tests use to exercise the error paths.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
	"inkwell/internal/domain/repositories"
)

// FieldUpdate records one UpdateFields call for assertions.
type FieldUpdate struct {
	DocumentID string
	Fields     map[string]string
}

// DocumentRepository is an in-memory DocumentRepository.
type DocumentRepository struct {
	mu      sync.Mutex
	docs    map[string]*models.Document
	updates []FieldUpdate

	// UpdateErr, when set, fails Update and UpdateFields.
	UpdateErr error
	// BlockUpdates, when non-nil, makes UpdateFields wait until the channel
	// is closed. Used to hold a save in flight.
	BlockUpdates chan struct{}
}

// NewDocumentRepository creates an empty in-memory document repository.
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{docs: make(map[string]*models.Document)}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	copied := cloneDocument(doc)
	r.docs[doc.ID] = copied
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id, projectID string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok || (projectID != "" && doc.ProjectID != projectID) {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return cloneDocument(doc), nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	doc.UpdatedAt = time.Now()
	r.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *DocumentRepository) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	if r.BlockUpdates != nil {
		select {
		case <-r.BlockUpdates:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.UpdateErr != nil {
		return r.UpdateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc.ApplyFields(fields)
	doc.UpdatedAt = time.Now()

	recorded := make(map[string]string, len(fields))
	for k, v := range fields {
		recorded[k] = v
	}
	r.updates = append(r.updates, FieldUpdate{DocumentID: id, Fields: recorded})
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok || doc.ProjectID != projectID {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(r.docs, id)
	return nil
}

func (r *DocumentRepository) ListByProject(ctx context.Context, projectID string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var docs []models.Document
	for _, doc := range r.docs {
		if doc.ProjectID == projectID {
			docs = append(docs, *cloneDocument(doc))
		}
	}
	return docs, nil
}

// FieldUpdates returns the recorded UpdateFields calls.
func (r *DocumentRepository) FieldUpdates() []FieldUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FieldUpdate, len(r.updates))
	copy(out, r.updates)
	return out
}

// FieldUpdateCount returns how many UpdateFields calls happened.
func (r *DocumentRepository) FieldUpdateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

// SnapshotRepository is an in-memory append-only SnapshotRepository.
type SnapshotRepository struct {
	mu    sync.Mutex
	snaps map[string][]*models.Snapshot // by document ID, append order

	// AppendErr, when set, fails Append.
	AppendErr error
}

// NewSnapshotRepository creates an empty in-memory snapshot repository.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{snaps: make(map[string][]*models.Snapshot)}
}

func (r *SnapshotRepository) Append(ctx context.Context, snap *models.Snapshot) error {
	if r.AppendErr != nil {
		return r.AppendErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.snaps[snap.DocumentID]
	max := 0
	for _, s := range log {
		if s.Sequence > max {
			max = s.Sequence
		}
	}

	snap.ID = uuid.NewString()
	snap.Sequence = max + 1
	snap.CreatedAt = time.Now()
	if snap.Metadata == nil {
		snap.Metadata = map[string]string{}
	}

	r.snaps[snap.DocumentID] = append(log, cloneSnapshot(snap))
	return nil
}

func (r *SnapshotRepository) GetByID(ctx context.Context, id, documentID string) (*models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.snaps[documentID] {
		if s.ID == id {
			return cloneSnapshot(s), nil
		}
	}
	return nil, fmt.Errorf("snapshot %s: %w", id, domain.ErrNotFound)
}

func (r *SnapshotRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.snaps[documentID]
	out := make([]models.Snapshot, 0, len(log))
	// Highest sequence first.
	for i := len(log) - 1; i >= 0; i-- {
		out = append(out, *cloneSnapshot(log[i]))
	}
	return out, nil
}

func (r *SnapshotRepository) MaxSequence(ctx context.Context, documentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	max := 0
	for _, s := range r.snaps[documentID] {
		if s.Sequence > max {
			max = s.Sequence
		}
	}
	return max, nil
}

func (r *SnapshotRepository) SetPrimary(ctx context.Context, id, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.snaps[documentID] {
		if s.ID == id && s.ChangeType == models.ChangeInitial {
			s.IsPrimary = true
			return nil
		}
	}
	return fmt.Errorf("initial snapshot %s: %w", id, domain.ErrNotFound)
}

// TxManager satisfies TransactionManager without transactional semantics:
// the function runs directly against the in-memory stores.
type TxManager struct{}

// NewTxManager creates a pass-through transaction manager.
func NewTxManager() *TxManager { return &TxManager{} }

func (TxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func cloneDocument(doc *models.Document) *models.Document {
	copied := *doc
	copied.Metadata = make(map[string]string, len(doc.Metadata))
	for k, v := range doc.Metadata {
		copied.Metadata[k] = v
	}
	return &copied
}

func cloneSnapshot(snap *models.Snapshot) *models.Snapshot {
	copied := *snap
	copied.Metadata = make(map[string]string, len(snap.Metadata))
	for k, v := range snap.Metadata {
		copied.Metadata[k] = v
	}
	return &copied
}
