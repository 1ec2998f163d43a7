package editor

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
)

// GuardState is the navigation guard's two-state machine over the session's
// dirty predicate.
type GuardState string

const (
	GuardClean   GuardState = "clean"
	GuardGuarded GuardState = "guarded"
)

// Resolution is the three-way answer the host must provide when an exit is
// intercepted while the session is dirty.
type Resolution string

const (
	// ResolutionDiscard proceeds with the pending navigation; the draft
	// session is abandoned unsaved.
	ResolutionDiscard Resolution = "discard"
	// ResolutionSaveAndLeave runs a manual save and proceeds only on success.
	ResolutionSaveAndLeave Resolution = "save_and_leave"
	// ResolutionCancel keeps the editor open; no navigation happens.
	ResolutionCancel Resolution = "cancel"
)

// Guard intercepts exit attempts while the draft session is dirty. It is a
// pure state machine over IsDirty: no timers, no I/O of its own beyond
// delegating save-and-leave to the controller. The host environment must call
// TryLeave before actually navigating away.
type Guard struct {
	session    *Session
	controller *Controller
	logger     *slog.Logger
}

// NewGuard creates a navigation guard for one session.
func NewGuard(session *Session, controller *Controller, logger *slog.Logger) *Guard {
	return &Guard{
		session:    session,
		controller: controller,
		logger:     logger,
	}
}

// State reports clean or guarded. The guard is guarded exactly while the
// session is dirty.
func (g *Guard) State() GuardState {
	if g.session.IsDirty() {
		return GuardGuarded
	}
	return GuardClean
}

// TryLeave asks whether a pending navigation may proceed. A clean session
// passes through untouched. A guarded session invokes resolve for the
// three-way choice. Every call re-evaluates the dirty predicate, so the guard
// re-arms itself after being bypassed once: repeating the navigation gesture
// against a still-dirty session prompts again.
func (g *Guard) TryLeave(ctx context.Context, resolve func() Resolution) (proceed bool, err error) {
	if !g.session.IsDirty() {
		return true, nil
	}

	switch res := resolve(); res {
	case ResolutionDiscard:
		g.logger.Info("navigation guard bypassed, unsaved edits discarded",
			"document_id", g.session.DocumentID(),
		)
		return true, nil

	case ResolutionSaveAndLeave:
		if _, err := g.controller.Save(ctx, models.ChangeManual, ""); err != nil {
			// Navigation stays blocked; the session remains dirty for retry.
			return false, err
		}
		return true, nil

	case ResolutionCancel:
		return false, nil

	default:
		return false, fmt.Errorf("%w: unknown guard resolution %q", domain.ErrValidation, res)
	}
}
