package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
)

// SuggestionRequest is what the staging flow hands to the generation
// collaborator: the selected span, the user prompt, and the surrounding
// document for context.
type SuggestionRequest struct {
	Kind     models.Kind
	Prompt   string
	Span     models.Span
	Document string // full live content the span was selected from
}

// SuggestionGenerator is the generation collaborator consumed by the staging
// flow. A single request/response call returning generated text; failures and
// empty content surface as domain.ErrGeneration.
type SuggestionGenerator interface {
	GenerateSuggestion(ctx context.Context, req SuggestionRequest) (string, error)
}

// SuggestionFlow stages AI-generated text against a user-selected span of the
// draft. Generated text never touches the live content until an explicit
// accept, which goes through the session's normal Edit path so dirty tracking
// is never bypassed. At most one pending suggestion exists at a time; a new
// propose implicitly discards any unresolved one.
type SuggestionFlow struct {
	session   *Session
	generator SuggestionGenerator
	logger    *slog.Logger

	mu      sync.Mutex
	pending *models.PendingSuggestion
}

// NewSuggestionFlow creates a suggestion staging flow for one session.
func NewSuggestionFlow(session *Session, generator SuggestionGenerator, logger *slog.Logger) *SuggestionFlow {
	return &SuggestionFlow{
		session:   session,
		generator: generator,
		logger:    logger,
	}
}

// Propose sends the span plus surrounding document context to the generation
// collaborator and stages the result. The live content is not mutated.
func (f *SuggestionFlow) Propose(ctx context.Context, span models.Span, prompt string) (*models.PendingSuggestion, error) {
	content := f.session.Field(models.FieldContent)
	if err := validateSpan(span, content); err != nil {
		return nil, err
	}

	// A new propose discards any unresolved suggestion, even if generation
	// then fails.
	f.mu.Lock()
	if f.pending != nil {
		f.pending.State = models.SuggestionDiscarded
		f.pending = nil
	}
	f.mu.Unlock()

	text, err := f.generator.GenerateSuggestion(ctx, SuggestionRequest{
		Kind:     f.session.Kind(),
		Prompt:   prompt,
		Span:     span,
		Document: content,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: provider returned empty content", domain.ErrGeneration)
	}

	suggestion := &models.PendingSuggestion{
		ID:            uuid.NewString(),
		SourceSpan:    span,
		GeneratedText: text,
		State:         models.SuggestionProposed,
	}

	f.mu.Lock()
	f.pending = suggestion
	f.mu.Unlock()

	f.logger.Debug("suggestion proposed",
		"document_id", f.session.DocumentID(),
		"suggestion_id", suggestion.ID,
		"span_start", span.Start,
		"span_len", len(span.Text),
	)

	copied := *suggestion
	return &copied, nil
}

// Accept folds the staged text into the live content. Replace substitutes the
// span at its exact original offset; insert_below appends after the span's
// end without removing it. If the live content no longer matches the span
// verbatim the accept is refused with a StaleSpanError and the caller must
// re-select; it never silently applies at the wrong offset.
func (f *SuggestionFlow) Accept(mode models.AcceptMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending == nil || f.pending.State != models.SuggestionProposed {
		return fmt.Errorf("%w: no pending suggestion to accept", domain.ErrValidation)
	}

	span := f.pending.SourceSpan
	content := f.session.Field(models.FieldContent)
	if err := validateSpan(span, content); err != nil {
		// Stale selections force a re-select; the stale suggestion is dead.
		f.pending.State = models.SuggestionDiscarded
		f.pending = nil
		return err
	}

	var updated string
	switch mode {
	case models.AcceptReplace:
		updated = content[:span.Start] + f.pending.GeneratedText + content[span.End():]
	case models.AcceptInsertBelow:
		updated = content[:span.End()] + "\n\n" + f.pending.GeneratedText + content[span.End():]
	default:
		return fmt.Errorf("%w: unknown accept mode %q", domain.ErrValidation, mode)
	}

	// The normal edit path marks the session dirty; generation never calls
	// save directly.
	if err := f.session.Edit(models.FieldContent, updated); err != nil {
		return err
	}

	f.logger.Info("suggestion accepted",
		"document_id", f.session.DocumentID(),
		"suggestion_id", f.pending.ID,
		"mode", mode,
	)

	f.pending.State = models.SuggestionAccepted
	f.pending = nil
	return nil
}

// Discard clears the pending suggestion with no effect on the live content.
func (f *SuggestionFlow) Discard() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != nil {
		f.pending.State = models.SuggestionDiscarded
		f.pending = nil
	}
}

// Pending returns a copy of the active suggestion, or nil.
func (f *SuggestionFlow) Pending() *models.PendingSuggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return nil
	}
	copied := *f.pending
	return &copied
}

// validateSpan checks bounds and that the span text still matches the content
// verbatim at its offset.
func validateSpan(span models.Span, content string) error {
	if span.Start < 0 || span.End() > len(content) {
		return fmt.Errorf("%w: span [%d,%d) out of bounds for content of length %d",
			domain.ErrValidation, span.Start, span.End(), len(content))
	}
	if content[span.Start:span.End()] != span.Text {
		return &domain.StaleSpanError{Start: span.Start, Span: span.Text}
	}
	return nil
}
