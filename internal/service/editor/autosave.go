package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
	editorRepo "inkwell/internal/domain/repositories/editor"
)

// Default timing policies. Both are per-session handles, owned by the open
// session and stopped on close, so concurrently open sessions never share
// timers.
const (
	DefaultAutosaveInterval = 2 * time.Minute
	DefaultDebounceDelay    = 1500 * time.Millisecond
)

// Scheduler runs the two independent autosave policies for one draft session:
//
//   - Debounced field autosave: a fixed delay restarted on every edit of one
//     low-risk field (the script transcript). On fire it persists only that
//     field directly through the document repository. Best effort, lossy, no
//     snapshot.
//   - Periodic full autosave: every interval, if the session is dirty and no
//     full save is in flight, a save with change_type=auto goes through the
//     controller. A tick that finds a save running is a no-op.
//
// The clock is injected so tests can drive both policies with simulated time.
type Scheduler struct {
	session    *Session
	controller *Controller
	docs       editorRepo.DocumentRepository
	clock      clockwork.Clock
	interval   time.Duration
	debounce   time.Duration
	field      string // debounced field name, empty when the kind has none
	logger     *slog.Logger

	mu            sync.Mutex
	ctx           context.Context // bounds background persistence calls, set by Start
	debounceTimer clockwork.Timer
	stop          chan struct{}
	stopped       bool
}

// NewScheduler creates a scheduler for one session. Zero durations fall back
// to the defaults.
func NewScheduler(
	session *Session,
	controller *Controller,
	docs editorRepo.DocumentRepository,
	clock clockwork.Clock,
	interval, debounce time.Duration,
	logger *slog.Logger,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	if debounce <= 0 {
		debounce = DefaultDebounceDelay
	}
	field, _ := models.DebouncedField(session.Kind())

	return &Scheduler{
		session:    session,
		controller: controller,
		docs:       docs,
		clock:      clock,
		interval:   interval,
		debounce:   debounce,
		field:      field,
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

// Start launches the periodic full-autosave loop. ctx bounds the persistence
// calls made on behalf of background timers.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	go s.runPeriodic(ctx)
}

func (s *Scheduler) runPeriodic(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.autosaveTick(ctx)
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// autosaveTick performs one periodic autosave attempt under the guard
// conditions: session open, dirty, no save in flight. Failures are logged and
// retried on the next tick; the user is never interrupted by background
// failures.
func (s *Scheduler) autosaveTick(ctx context.Context) {
	if s.session.Closed() {
		return
	}
	if !s.session.IsDirty() {
		return
	}

	_, err := s.controller.TrySave(ctx, models.ChangeAuto, "")
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSaveInFlight):
		s.logger.Debug("autosave tick skipped, save in flight",
			"document_id", s.session.DocumentID(),
		)
	default:
		s.logger.Warn("autosave failed, will retry on next tick",
			"document_id", s.session.DocumentID(),
			"error", err,
		)
	}
}

// FieldEdited restarts the debounce timer after an edit to the debounced
// field. Edits to other fields are ignored here; they only count toward the
// periodic policy.
func (s *Scheduler) FieldEdited(field string) {
	if s.field == "" || field != s.field {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.ctx == nil {
		return
	}

	if s.debounceTimer == nil {
		ctx := s.ctx
		s.debounceTimer = s.clock.AfterFunc(s.debounce, func() {
			s.flushDebouncedField(ctx)
		})
		return
	}
	s.debounceTimer.Reset(s.debounce)
}

// flushDebouncedField persists the debounced field's live value directly.
// No snapshot is created and the baseline is untouched: this path is a lossy
// best-effort save, not a version.
func (s *Scheduler) flushDebouncedField(ctx context.Context) {
	if s.session.Closed() {
		return
	}

	value := s.session.Field(s.field)
	fields := map[string]string{s.field: value}
	if err := s.docs.UpdateFields(ctx, s.session.DocumentID(), fields); err != nil {
		s.logger.Warn("debounced field autosave failed",
			"document_id", s.session.DocumentID(),
			"field", s.field,
			"error", err,
		)
		return
	}

	s.logger.Debug("debounced field autosaved",
		"document_id", s.session.DocumentID(),
		"field", s.field,
	)
}

// Stop cancels both timers. Safe to call more than once; timers never fire
// against a destroyed session after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stop)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
}
