package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
)

func TestGuardCleanSessionPassesThrough(t *testing.T) {
	f := newFixture(t, models.KindCanvas)
	g := NewGuard(f.session, f.controller, testLogger())

	assert.Equal(t, GuardClean, g.State())

	resolveCalled := false
	proceed, err := g.TryLeave(t.Context(), func() Resolution {
		resolveCalled = true
		return ResolutionCancel
	})
	require.NoError(t, err)
	assert.True(t, proceed)
	assert.False(t, resolveCalled, "clean sessions never prompt")
}

func TestGuardDiscardProceedsUnsaved(t *testing.T) {
	f := newFixture(t, models.KindCanvas)
	g := NewGuard(f.session, f.controller, testLogger())

	require.NoError(t, f.session.Edit(models.FieldContent, "unsaved"))
	assert.Equal(t, GuardGuarded, g.State())

	proceed, err := g.TryLeave(t.Context(), func() Resolution { return ResolutionDiscard })
	require.NoError(t, err)
	assert.True(t, proceed)

	// Nothing was persisted on the way out.
	assert.Zero(t, f.docs.FieldUpdateCount())
}

func TestGuardSaveAndLeave(t *testing.T) {
	f := newFixture(t, models.KindCanvas)
	g := NewGuard(f.session, f.controller, testLogger())

	require.NoError(t, f.session.Edit(models.FieldContent, "keep this"))

	proceed, err := g.TryLeave(t.Context(), func() Resolution { return ResolutionSaveAndLeave })
	require.NoError(t, err)
	assert.True(t, proceed)

	snaps, err := f.snaps.ListByDocument(t.Context(), f.doc.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, models.ChangeManual, snaps[0].ChangeType)
	assert.Equal(t, "keep this", snaps[0].Content)
}

func TestGuardSaveAndLeaveBlockedOnFailure(t *testing.T) {
	f := newFixture(t, models.KindCanvas)
	g := NewGuard(f.session, f.controller, testLogger())

	require.NoError(t, f.session.Edit(models.FieldContent, "keep this"))
	f.docs.UpdateErr = assert.AnError

	proceed, err := g.TryLeave(t.Context(), func() Resolution { return ResolutionSaveAndLeave })
	require.Error(t, err)
	assert.False(t, proceed, "navigation stays blocked when the save fails")

	// The session stays dirty so the user can retry.
	assert.True(t, f.session.IsDirty())
	assert.Equal(t, GuardGuarded, g.State())
}

func TestGuardCancelKeepsEditorOpen(t *testing.T) {
	f := newFixture(t, models.KindCanvas)
	g := NewGuard(f.session, f.controller, testLogger())

	require.NoError(t, f.session.Edit(models.FieldContent, "unsaved"))

	proceed, err := g.TryLeave(t.Context(), func() Resolution { return ResolutionCancel })
	require.NoError(t, err)
	assert.False(t, proceed)
	assert.True(t, f.session.IsDirty())
}

func TestGuardRearmsAfterCancel(t *testing.T) {
	f := newFixture(t, models.KindCanvas)
	g := NewGuard(f.session, f.controller, testLogger())

	require.NoError(t, f.session.Edit(models.FieldContent, "unsaved"))

	prompts := 0
	resolve := func() Resolution {
		prompts++
		return ResolutionCancel
	}

	// Repeating the navigation gesture against a still-dirty session prompts
	// every time.
	for i := 0; i < 3; i++ {
		proceed, err := g.TryLeave(t.Context(), resolve)
		require.NoError(t, err)
		assert.False(t, proceed)
	}
	assert.Equal(t, 3, prompts)
}

func TestGuardUnknownResolution(t *testing.T) {
	f := newFixture(t, models.KindCanvas)
	g := NewGuard(f.session, f.controller, testLogger())

	require.NoError(t, f.session.Edit(models.FieldContent, "unsaved"))

	proceed, err := g.TryLeave(t.Context(), func() Resolution { return Resolution("maybe") })
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, proceed)
}
