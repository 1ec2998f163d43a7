package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/editor"
	"inkwell/internal/repository/memory"
)

// seedCompetingDrafts creates a document with competing non-primary initial
// snapshots, the state a multi-draft creation leaves behind.
func seedCompetingDrafts(t *testing.T, docs *memory.DocumentRepository, snaps *memory.SnapshotRepository, drafts ...string) *models.Document {
	t.Helper()

	doc := &models.Document{
		ProjectID: "proj-1",
		Kind:      models.KindCanvas,
		Title:     "Pick One",
		Metadata:  map[string]string{},
	}
	require.NoError(t, docs.Create(t.Context(), doc))

	for _, draft := range drafts {
		require.NoError(t, snaps.Append(t.Context(), &models.Snapshot{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Content:    draft,
			ChangeType: models.ChangeInitial,
		}))
	}
	return doc
}

func TestAwaitingWithCompetingInitials(t *testing.T) {
	docs := memory.NewDocumentRepository()
	snaps := memory.NewSnapshotRepository()
	doc := seedCompetingDrafts(t, docs, snaps, "draft a", "draft b", "draft c")

	p := NewPrimarySelector(docs, snaps, memory.NewTxManager(), testLogger())

	awaiting, err := p.Awaiting(t.Context(), doc.ID)
	require.NoError(t, err)
	assert.True(t, awaiting)
}

func TestSingleInitialIsNotAwaiting(t *testing.T) {
	docs := memory.NewDocumentRepository()
	snaps := memory.NewSnapshotRepository()
	doc := seedCompetingDrafts(t, docs, snaps, "only draft")

	p := NewPrimarySelector(docs, snaps, memory.NewTxManager(), testLogger())

	awaiting, err := p.Awaiting(t.Context(), doc.ID)
	require.NoError(t, err)
	assert.False(t, awaiting)
}

func TestChoosePrimaryMakesDocumentEditable(t *testing.T) {
	docs := memory.NewDocumentRepository()
	snaps := memory.NewSnapshotRepository()
	doc := seedCompetingDrafts(t, docs, snaps, "draft a", "draft b")

	list, err := snaps.ListByDocument(t.Context(), doc.ID)
	require.NoError(t, err)
	var target models.Snapshot
	for _, s := range list {
		if s.Content == "draft b" {
			target = s
		}
	}

	p := NewPrimarySelector(docs, snaps, memory.NewTxManager(), testLogger())

	chosen, err := p.ChoosePrimary(t.Context(), doc.ID, target.ID)
	require.NoError(t, err)
	assert.True(t, chosen.IsPrimary)

	// The chosen draft became the document's current state.
	saved, err := docs.GetByID(t.Context(), doc.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "draft b", saved.Content)

	// No longer awaiting; the losing drafts remain in the log, non-primary.
	awaiting, err := p.Awaiting(t.Context(), doc.ID)
	require.NoError(t, err)
	assert.False(t, awaiting)

	list, err = snaps.ListByDocument(t.Context(), doc.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, s := range list {
		if s.ID != target.ID {
			assert.False(t, s.IsPrimary)
		}
	}
}

func TestChoosePrimaryWhenNotAwaiting(t *testing.T) {
	docs := memory.NewDocumentRepository()
	snaps := memory.NewSnapshotRepository()
	doc := seedCompetingDrafts(t, docs, snaps, "only draft")

	list, err := snaps.ListByDocument(t.Context(), doc.ID)
	require.NoError(t, err)

	p := NewPrimarySelector(docs, snaps, memory.NewTxManager(), testLogger())

	_, err = p.ChoosePrimary(t.Context(), doc.ID, list[0].ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestChoosePrimaryUnknownSnapshot(t *testing.T) {
	docs := memory.NewDocumentRepository()
	snaps := memory.NewSnapshotRepository()
	doc := seedCompetingDrafts(t, docs, snaps, "draft a", "draft b")

	p := NewPrimarySelector(docs, snaps, memory.NewTxManager(), testLogger())

	_, err := p.ChoosePrimary(t.Context(), doc.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChoosePrimaryRejectsNonInitialSnapshot(t *testing.T) {
	docs := memory.NewDocumentRepository()
	snaps := memory.NewSnapshotRepository()
	doc := seedCompetingDrafts(t, docs, snaps, "draft a", "draft b")

	manual := &models.Snapshot{
		DocumentID: doc.ID,
		Content:    "later edit",
		ChangeType: models.ChangeManual,
	}
	require.NoError(t, snaps.Append(t.Context(), manual))

	p := NewPrimarySelector(docs, snaps, memory.NewTxManager(), testLogger())

	_, err := p.ChoosePrimary(t.Context(), doc.ID, manual.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
