package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
)

// stubGenerator returns canned text and records the requests it saw.
type stubGenerator struct {
	text     string
	err      error
	requests []SuggestionRequest
}

func (g *stubGenerator) GenerateSuggestion(ctx context.Context, req SuggestionRequest) (string, error) {
	g.requests = append(g.requests, req)
	return g.text, g.err
}

func newSuggestionFixture(t *testing.T, content, generated string) (*fixture, *SuggestionFlow, *stubGenerator) {
	t.Helper()

	f := newFixture(t, models.KindCanvas)
	require.NoError(t, f.session.Edit(models.FieldContent, content))
	f.session.Rebase(f.session.LiveFields()) // start clean at the given content

	gen := &stubGenerator{text: generated}
	return f, NewSuggestionFlow(f.session, gen, testLogger()), gen
}

func TestProposeStagesWithoutTouchingContent(t *testing.T) {
	f, flow, gen := newSuggestionFixture(t, "the quick brown fox", "the speedy brown fox")

	span := models.Span{Start: 0, Text: "the quick"}
	suggestion, err := flow.Propose(t.Context(), span, "make it punchier")
	require.NoError(t, err)

	assert.Equal(t, models.SuggestionProposed, suggestion.State)
	assert.Equal(t, "the speedy brown fox", suggestion.GeneratedText)
	assert.NotEmpty(t, suggestion.ID)

	// The live draft is untouched and the session stays clean.
	assert.Equal(t, "the quick brown fox", f.session.Field(models.FieldContent))
	assert.False(t, f.session.IsDirty())

	// The generator saw the span plus the surrounding document.
	require.Len(t, gen.requests, 1)
	assert.Equal(t, span, gen.requests[0].Span)
	assert.Equal(t, "the quick brown fox", gen.requests[0].Document)
	assert.Equal(t, "make it punchier", gen.requests[0].Prompt)
}

func TestProposeRejectsOutOfBoundsSpan(t *testing.T) {
	_, flow, gen := newSuggestionFixture(t, "short", "whatever")

	_, err := flow.Propose(t.Context(), models.Span{Start: 2, Text: "ort and more"}, "x")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gen.requests, "generation never runs for invalid spans")
}

func TestProposeDiscardsPriorPending(t *testing.T) {
	_, flow, _ := newSuggestionFixture(t, "one two three", "replacement")

	first, err := flow.Propose(t.Context(), models.Span{Start: 0, Text: "one"}, "x")
	require.NoError(t, err)

	second, err := flow.Propose(t.Context(), models.Span{Start: 4, Text: "two"}, "y")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	pending := flow.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, second.ID, pending.ID)
}

func TestProposeGenerationFailure(t *testing.T) {
	_, flow, gen := newSuggestionFixture(t, "content", "")
	gen.err = assert.AnError

	_, err := flow.Propose(t.Context(), models.Span{Start: 0, Text: "content"}, "x")
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Nil(t, flow.Pending())
}

func TestProposeEmptyGeneration(t *testing.T) {
	_, flow, _ := newSuggestionFixture(t, "content", "")

	_, err := flow.Propose(t.Context(), models.Span{Start: 0, Text: "content"}, "x")
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestAcceptReplaceSubstitutesSpan(t *testing.T) {
	f, flow, _ := newSuggestionFixture(t, "the quick brown fox", "speedy")

	_, err := flow.Propose(t.Context(), models.Span{Start: 4, Text: "quick"}, "x")
	require.NoError(t, err)

	require.NoError(t, flow.Accept(models.AcceptReplace))

	assert.Equal(t, "the speedy brown fox", f.session.Field(models.FieldContent))
	assert.True(t, f.session.IsDirty(), "accepting goes through the normal edit path")
	assert.Nil(t, flow.Pending())
}

func TestAcceptInsertBelowKeepsSpan(t *testing.T) {
	f, flow, _ := newSuggestionFixture(t, "intro paragraph", "second paragraph")

	_, err := flow.Propose(t.Context(), models.Span{Start: 0, Text: "intro paragraph"}, "x")
	require.NoError(t, err)

	require.NoError(t, flow.Accept(models.AcceptInsertBelow))

	assert.Equal(t, "intro paragraph\n\nsecond paragraph", f.session.Field(models.FieldContent))
}

func TestAcceptStaleSpanRefused(t *testing.T) {
	f, flow, _ := newSuggestionFixture(t, "the quick brown fox", "speedy")

	_, err := flow.Propose(t.Context(), models.Span{Start: 4, Text: "quick"}, "x")
	require.NoError(t, err)

	// The user keeps typing while the suggestion is pending and the span
	// drifts out from under it.
	require.NoError(t, f.session.Edit(models.FieldContent, "the very quick brown fox"))

	err = flow.Accept(models.AcceptReplace)
	var staleErr *domain.StaleSpanError
	require.ErrorAs(t, err, &staleErr)
	assert.Equal(t, 4, staleErr.Start)

	// It never applies at the wrong offset, and the stale suggestion is dead.
	assert.Equal(t, "the very quick brown fox", f.session.Field(models.FieldContent))
	assert.Nil(t, flow.Pending())
}

func TestAcceptWithoutPending(t *testing.T) {
	_, flow, _ := newSuggestionFixture(t, "content", "text")

	err := flow.Accept(models.AcceptReplace)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAcceptUnknownMode(t *testing.T) {
	_, flow, _ := newSuggestionFixture(t, "content", "text")

	_, err := flow.Propose(t.Context(), models.Span{Start: 0, Text: "content"}, "x")
	require.NoError(t, err)

	err = flow.Accept(models.AcceptMode("prepend"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDiscardLeavesContentAlone(t *testing.T) {
	f, flow, _ := newSuggestionFixture(t, "content", "generated")

	_, err := flow.Propose(t.Context(), models.Span{Start: 0, Text: "content"}, "x")
	require.NoError(t, err)

	flow.Discard()
	assert.Nil(t, flow.Pending())
	assert.Equal(t, "content", f.session.Field(models.FieldContent))
	assert.False(t, f.session.IsDirty())

	flow.Discard() // discarding nothing is a no-op
}
