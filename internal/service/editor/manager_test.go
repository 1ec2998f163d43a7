package editor

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
	"inkwell/internal/repository/memory"
)

func newManagerFixture(t *testing.T) (*memory.DocumentRepository, *memory.SnapshotRepository, *Manager) {
	t.Helper()

	docs := memory.NewDocumentRepository()
	snaps := memory.NewSnapshotRepository()
	m := NewManager(docs, snaps, memory.NewTxManager(), &stubGenerator{text: "generated"},
		clockwork.NewFakeClock(), Config{}, testLogger())
	return docs, snaps, m
}

func TestManagerOpenReturnsExistingEditor(t *testing.T) {
	docs, _, m := newManagerFixture(t)
	doc := seedDocument(t, docs, models.KindCanvas)

	e1, err := m.Open(t.Context(), doc.ID, "proj-1")
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(doc.ID) })

	e2, err := m.Open(t.Context(), doc.ID, "proj-1")
	require.NoError(t, err)
	assert.Same(t, e1, e2, "a single active editor per document")
}

func TestManagerOpenUnknownDocument(t *testing.T) {
	_, _, m := newManagerFixture(t)

	_, err := m.Open(t.Context(), "missing", "proj-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManagerOpenEnforcesProjectScope(t *testing.T) {
	docs, _, m := newManagerFixture(t)
	doc := seedDocument(t, docs, models.KindCanvas)

	_, err := m.Open(t.Context(), doc.ID, "someone-elses-project")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManagerOpenBlockedWhileAwaitingPrimary(t *testing.T) {
	docs, snaps, m := newManagerFixture(t)
	doc := seedCompetingDrafts(t, docs, snaps, "draft a", "draft b")

	_, err := m.Open(t.Context(), doc.ID, "proj-1")
	assert.ErrorIs(t, err, domain.ErrAwaitingPrimary)

	_, open := m.Get(doc.ID)
	assert.False(t, open)
}

func TestManagerChoosePrimaryOpensSession(t *testing.T) {
	docs, snaps, m := newManagerFixture(t)
	doc := seedCompetingDrafts(t, docs, snaps, "draft a", "draft b")

	list, err := snaps.ListByDocument(t.Context(), doc.ID)
	require.NoError(t, err)
	var target models.Snapshot
	for _, s := range list {
		if s.Content == "draft a" {
			target = s
		}
	}

	e, err := m.ChoosePrimary(t.Context(), doc.ID, "proj-1", target.ID)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(doc.ID) })

	// The session opened rebased to the chosen draft.
	assert.Equal(t, "draft a", e.Session().Field(models.FieldContent))
	assert.False(t, e.Session().IsDirty())

	// Opening again now succeeds and reuses the editor.
	e2, err := m.Open(t.Context(), doc.ID, "proj-1")
	require.NoError(t, err)
	assert.Same(t, e, e2)
}

func TestManagerChoosePrimaryWhileOpen(t *testing.T) {
	docs, _, m := newManagerFixture(t)
	doc := seedDocument(t, docs, models.KindCanvas)

	_, err := m.Open(t.Context(), doc.ID, "proj-1")
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(doc.ID) })

	_, err = m.ChoosePrimary(t.Context(), doc.ID, "proj-1", "any")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestManagerCloseDestroysSession(t *testing.T) {
	docs, _, m := newManagerFixture(t)
	doc := seedDocument(t, docs, models.KindCanvas)

	e, err := m.Open(t.Context(), doc.ID, "proj-1")
	require.NoError(t, err)

	m.Close(doc.ID)

	assert.True(t, e.Session().Closed())
	_, open := m.Get(doc.ID)
	assert.False(t, open)

	m.Close(doc.ID) // closing again is a no-op
}

func TestManagerTryLeaveNothingOpen(t *testing.T) {
	_, _, m := newManagerFixture(t)

	proceed, err := m.TryLeave(t.Context(), "never-opened", ResolutionCancel)
	require.NoError(t, err)
	assert.True(t, proceed)
}

func TestManagerTryLeaveDirtySession(t *testing.T) {
	docs, snaps, m := newManagerFixture(t)
	doc := seedDocument(t, docs, models.KindCanvas)

	e, err := m.Open(t.Context(), doc.ID, "proj-1")
	require.NoError(t, err)
	require.NoError(t, e.Edit(models.FieldContent, "unsaved"))

	// Cancel keeps the editor open.
	proceed, err := m.TryLeave(t.Context(), doc.ID, ResolutionCancel)
	require.NoError(t, err)
	assert.False(t, proceed)
	_, open := m.Get(doc.ID)
	assert.True(t, open)

	// Save-and-leave persists, then closes the session.
	proceed, err = m.TryLeave(t.Context(), doc.ID, ResolutionSaveAndLeave)
	require.NoError(t, err)
	assert.True(t, proceed)
	_, open = m.Get(doc.ID)
	assert.False(t, open)
	assert.True(t, e.Session().Closed())

	list, err := snaps.ListByDocument(t.Context(), doc.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "unsaved", list[0].Content)
}

func TestManagerTryLeaveDiscard(t *testing.T) {
	docs, snaps, m := newManagerFixture(t)
	doc := seedDocument(t, docs, models.KindCanvas)

	e, err := m.Open(t.Context(), doc.ID, "proj-1")
	require.NoError(t, err)
	require.NoError(t, e.Edit(models.FieldContent, "unsaved"))

	proceed, err := m.TryLeave(t.Context(), doc.ID, ResolutionDiscard)
	require.NoError(t, err)
	assert.True(t, proceed)

	list, err := snaps.ListByDocument(t.Context(), doc.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "discarded edits are never persisted")
}

func TestManagerConcurrentDocumentsAreIndependent(t *testing.T) {
	docs, _, m := newManagerFixture(t)
	docA := seedDocument(t, docs, models.KindCanvas)
	docB := seedDocument(t, docs, models.KindScript)

	eA, err := m.Open(t.Context(), docA.ID, "proj-1")
	require.NoError(t, err)
	eB, err := m.Open(t.Context(), docB.ID, "proj-1")
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(docB.ID) })

	require.NoError(t, eA.Edit(models.FieldContent, "a-edit"))
	m.Close(docA.ID)

	// Closing one session leaves the other fully live.
	assert.True(t, eA.Session().Closed())
	assert.False(t, eB.Session().Closed())
	require.NoError(t, eB.Edit(models.FieldContent, "b-edit"))
	assert.True(t, eB.Session().IsDirty())
}
