package editor

import (
	"fmt"
	"log/slog"
	"sync"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
)

// Session is the live, in-memory editing state for one open document. It
// holds the last-persisted baseline and the fields currently being edited;
// a field is dirty when live differs from baseline. Sessions are ephemeral
// and never persisted themselves.
//
// Only explicitly registered fields participate in dirty tracking. The
// registered set comes from the document kind, so canvas notes and scripts
// share one contract instead of duplicating per-screen behavior.
type Session struct {
	mu       sync.Mutex
	docID    string
	project  string
	kind     models.Kind
	tracked  map[string]struct{}
	baseline map[string]string
	live     map[string]string
	closed   bool
	logger   *slog.Logger
}

// OpenSession creates a session with baseline = live = the document's current
// fields, restricted to the kind's tracked field set.
func OpenSession(doc *models.Document, logger *slog.Logger) *Session {
	tracked := make(map[string]struct{})
	baseline := make(map[string]string)
	fields := doc.Fields()
	for _, name := range models.TrackedFields(doc.Kind) {
		tracked[name] = struct{}{}
		baseline[name] = fields[name]
	}

	live := make(map[string]string, len(baseline))
	for k, v := range baseline {
		live[k] = v
	}

	return &Session{
		docID:    doc.ID,
		project:  doc.ProjectID,
		kind:     doc.Kind,
		tracked:  tracked,
		baseline: baseline,
		live:     live,
		logger:   logger,
	}
}

// DocumentID returns the owning document's ID.
func (s *Session) DocumentID() string { return s.docID }

// ProjectID returns the owning document's project scope.
func (s *Session) ProjectID() string { return s.project }

// Kind returns the document kind the session was opened for.
func (s *Session) Kind() models.Kind { return s.kind }

// Edit sets a live field value. It never touches the baseline, so dirty
// detection stays derived. Editing an unregistered field is a validation
// error rather than silently creating untracked state.
func (s *Session) Edit(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSessionClosed
	}
	if _, ok := s.tracked[field]; !ok {
		return fmt.Errorf("%w: field %q is not tracked for %s documents", domain.ErrValidation, field, s.kind)
	}

	s.live[field] = value
	return nil
}

// Field returns the current live value of a tracked field.
func (s *Session) Field(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live[name]
}

// IsDirty reports whether any tracked field differs between live and baseline.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name := range s.tracked {
		if s.live[name] != s.baseline[name] {
			return true
		}
	}
	return false
}

// LiveFields returns a copy of the tracked live fields.
func (s *Session) LiveFields() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := make(map[string]string, len(s.live))
	for k, v := range s.live {
		fields[k] = v
	}
	return fields
}

// Rebase sets baseline = live = fields after a successful save or restore.
// Rebasing a closed session is a no-op: an in-flight save that completes
// after close must not resurrect disposed state.
func (s *Session) Rebase(fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Debug("rebase skipped on closed session", "document_id", s.docID)
		return
	}

	for name := range s.tracked {
		if v, ok := fields[name]; ok {
			s.baseline[name] = v
			s.live[name] = v
		}
	}
}

// Close marks the session destroyed. Subsequent edits fail and rebases no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
