package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
	"inkwell/internal/domain/repositories"
	editorRepo "inkwell/internal/domain/repositories/editor"
)

// Config carries the scheduler timing policy.
type Config struct {
	AutosaveInterval time.Duration
	DebounceDelay    time.Duration
}

// Editor bundles everything an open document's editing session needs:
// the draft session itself, the save/restore controller, the navigation
// guard, the suggestion staging flow, and the autosave scheduler handles.
type Editor struct {
	session     *Session
	controller  *Controller
	guard       *Guard
	suggestions *SuggestionFlow
	scheduler   *Scheduler
}

// Session exposes the draft session.
func (e *Editor) Session() *Session { return e.session }

// Guard exposes the navigation guard.
func (e *Editor) Guard() *Guard { return e.guard }

// Suggestions exposes the suggestion staging flow.
func (e *Editor) Suggestions() *SuggestionFlow { return e.suggestions }

// Edit applies an edit through the session and nudges the debounce policy
// when the edited field is the debounced one.
func (e *Editor) Edit(field, value string) error {
	if err := e.session.Edit(field, value); err != nil {
		return err
	}
	e.scheduler.FieldEdited(field)
	return nil
}

// Save runs a full save through the controller.
func (e *Editor) Save(ctx context.Context, changeType models.ChangeType, description string) (*models.Snapshot, error) {
	return e.controller.Save(ctx, changeType, description)
}

// Restore restores a prior snapshot, backing up the current state first.
func (e *Editor) Restore(ctx context.Context, snapshotID string) (*models.Snapshot, error) {
	return e.controller.Restore(ctx, snapshotID)
}

// Manager owns the open editors, one per document. Timer handles belong to
// the editor instance, not the process, so concurrently open documents never
// interfere with each other's autosave.
type Manager struct {
	docs      editorRepo.DocumentRepository
	snaps     editorRepo.SnapshotRepository
	tx        repositories.TransactionManager
	generator SuggestionGenerator
	selector  *PrimarySelector
	clock     clockwork.Clock
	cfg       Config
	logger    *slog.Logger

	mu      sync.Mutex
	editors map[string]*Editor // keyed by document ID
}

// NewManager creates the editor session manager.
func NewManager(
	docs editorRepo.DocumentRepository,
	snaps editorRepo.SnapshotRepository,
	tx repositories.TransactionManager,
	generator SuggestionGenerator,
	clock clockwork.Clock,
	cfg Config,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		docs:      docs,
		snaps:     snaps,
		tx:        tx,
		generator: generator,
		selector:  NewPrimarySelector(docs, snaps, tx, logger),
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
		editors:   make(map[string]*Editor),
	}
}

// Open loads the document and opens a draft session for it, starting the
// autosave timers. Opening an already-open document returns the existing
// editor: this system assumes a single active editor per document. Documents
// still awaiting primary-version selection cannot be opened; callers must go
// through ChoosePrimary first.
func (m *Manager) Open(ctx context.Context, documentID, projectID string) (*Editor, error) {
	m.mu.Lock()
	if e, ok := m.editors[documentID]; ok {
		m.mu.Unlock()
		return e, nil
	}
	m.mu.Unlock()

	doc, err := m.docs.GetByID(ctx, documentID, projectID)
	if err != nil {
		return nil, err
	}

	awaiting, err := m.selector.Awaiting(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if awaiting {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrAwaitingPrimary)
	}

	return m.open(ctx, doc)
}

// ChoosePrimary resolves the awaiting_primary_selection state by marking the
// chosen initial snapshot primary, then opens a draft session rebased to its
// content.
func (m *Manager) ChoosePrimary(ctx context.Context, documentID, projectID, snapshotID string) (*Editor, error) {
	m.mu.Lock()
	if _, ok := m.editors[documentID]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: document %s is already open", domain.ErrConflict, documentID)
	}
	m.mu.Unlock()

	if _, err := m.selector.ChoosePrimary(ctx, documentID, snapshotID); err != nil {
		return nil, err
	}

	doc, err := m.docs.GetByID(ctx, documentID, projectID)
	if err != nil {
		return nil, err
	}

	return m.open(ctx, doc)
}

func (m *Manager) open(ctx context.Context, doc *models.Document) (*Editor, error) {
	session := OpenSession(doc, m.logger)
	controller := NewController(session, m.docs, m.snaps, m.tx, m.logger)
	scheduler := NewScheduler(session, controller, m.docs, m.clock, m.cfg.AutosaveInterval, m.cfg.DebounceDelay, m.logger)

	e := &Editor{
		session:     session,
		controller:  controller,
		guard:       NewGuard(session, controller, m.logger),
		suggestions: NewSuggestionFlow(session, m.generator, m.logger),
		scheduler:   scheduler,
	}

	m.mu.Lock()
	if existing, ok := m.editors[doc.ID]; ok {
		// Lost the race to another open; keep the first session.
		m.mu.Unlock()
		return existing, nil
	}
	m.editors[doc.ID] = e
	m.mu.Unlock()

	// Timers outlive the opening request but die with the session.
	scheduler.Start(context.WithoutCancel(ctx))

	m.logger.Info("draft session opened",
		"document_id", doc.ID,
		"kind", doc.Kind,
	)

	return e, nil
}

// Get returns the open editor for a document, if any.
func (m *Manager) Get(documentID string) (*Editor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.editors[documentID]
	return e, ok
}

// Close destroys a document's draft session: both autosave timers are
// canceled and any in-flight save completion becomes a no-op against the
// closed session. Closing an unknown document is a no-op.
func (m *Manager) Close(documentID string) {
	m.mu.Lock()
	e, ok := m.editors[documentID]
	delete(m.editors, documentID)
	m.mu.Unlock()
	if !ok {
		return
	}

	e.scheduler.Stop()
	e.suggestions.Discard()
	e.session.Close()

	m.logger.Info("draft session closed", "document_id", documentID)
}

// TryLeave is the host environment's pre-navigation callback. The resolution
// comes from the user; on proceed the session is closed (for discard the
// unsaved edits are abandoned, for save-and-leave they were just saved).
func (m *Manager) TryLeave(ctx context.Context, documentID string, resolution Resolution) (bool, error) {
	e, ok := m.Get(documentID)
	if !ok {
		// Nothing open, nothing to guard.
		return true, nil
	}

	proceed, err := e.guard.TryLeave(ctx, func() Resolution { return resolution })
	if err != nil || !proceed {
		return proceed, err
	}

	m.Close(documentID)
	return true, nil
}
