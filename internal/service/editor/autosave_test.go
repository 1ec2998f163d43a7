package editor

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "inkwell/internal/domain/models/editor"
)

func newScheduledFixture(t *testing.T, kind models.Kind, clock clockwork.Clock) (*fixture, *Scheduler) {
	t.Helper()

	f := newFixture(t, kind)
	s := NewScheduler(f.session, f.controller, f.docs, clock, DefaultAutosaveInterval, DefaultDebounceDelay, testLogger())
	s.Start(t.Context())
	t.Cleanup(s.Stop)
	return f, s
}

// snapshotCount polls the snapshot log length for Eventually assertions.
func snapshotCount(t *testing.T, f *fixture) func() int {
	return func() int {
		snaps, err := f.snaps.ListByDocument(t.Context(), f.doc.ID)
		require.NoError(t, err)
		return len(snaps)
	}
}

func TestPeriodicAutosaveSkipsCleanSession(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f, _ := newScheduledFixture(t, models.KindCanvas, clock)

	clock.BlockUntil(1) // ticker armed
	clock.Advance(DefaultAutosaveInterval)
	clock.BlockUntil(1) // tick consumed

	assert.Zero(t, f.docs.FieldUpdateCount())
	assert.Zero(t, snapshotCount(t, f)())
}

func TestPeriodicAutosaveSavesDirtySession(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f, _ := newScheduledFixture(t, models.KindCanvas, clock)

	require.NoError(t, f.session.Edit(models.FieldContent, "v2"))

	clock.BlockUntil(1)
	clock.Advance(DefaultAutosaveInterval)

	require.Eventually(t, func() bool { return snapshotCount(t, f)() == 1 },
		time.Second, time.Millisecond)

	snaps, err := f.snaps.ListByDocument(t.Context(), f.doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChangeAuto, snaps[0].ChangeType)
	assert.Equal(t, "v2", snaps[0].Content)

	require.Eventually(t, func() bool { return !f.session.IsDirty() },
		time.Second, time.Millisecond)

	// The next tick finds a clean session and does nothing.
	clock.BlockUntil(1)
	clock.Advance(DefaultAutosaveInterval)
	clock.BlockUntil(1)
	assert.Equal(t, 1, snapshotCount(t, f)())
}

func TestPeriodicAutosaveFailureRetriesNextTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f, _ := newScheduledFixture(t, models.KindCanvas, clock)

	require.NoError(t, f.session.Edit(models.FieldContent, "v2"))
	f.docs.UpdateErr = assert.AnError

	clock.BlockUntil(1)
	clock.Advance(DefaultAutosaveInterval)

	// The failed tick leaves the session dirty; no snapshot appears.
	require.Eventually(t, f.session.IsDirty, time.Second, time.Millisecond)
	assert.Zero(t, snapshotCount(t, f)())

	f.docs.UpdateErr = nil
	clock.BlockUntil(1)
	clock.Advance(DefaultAutosaveInterval)

	require.Eventually(t, func() bool { return snapshotCount(t, f)() == 1 },
		time.Second, time.Millisecond)
}

func TestDebouncedFieldFlushesWithoutSnapshot(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f, s := newScheduledFixture(t, models.KindScript, clock)

	require.NoError(t, f.session.Edit(models.FieldTranscript, "INT. OFFICE"))
	s.FieldEdited(models.FieldTranscript)

	clock.BlockUntil(2) // ticker + debounce timer
	clock.Advance(DefaultDebounceDelay)

	require.Eventually(t, func() bool { return f.docs.FieldUpdateCount() == 1 },
		time.Second, time.Millisecond)

	updates := f.docs.FieldUpdates()
	assert.Equal(t, map[string]string{models.FieldTranscript: "INT. OFFICE"}, updates[0].Fields)

	// Lossy best-effort path: no snapshot, baseline untouched, still dirty.
	assert.Zero(t, snapshotCount(t, f)())
	assert.True(t, f.session.IsDirty())
}

func TestDebounceRestartsOnEveryEdit(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f, s := newScheduledFixture(t, models.KindScript, clock)

	require.NoError(t, f.session.Edit(models.FieldTranscript, "a"))
	s.FieldEdited(models.FieldTranscript)
	clock.BlockUntil(2)

	// A second edit inside the window restarts the delay.
	clock.Advance(DefaultDebounceDelay / 2)
	require.NoError(t, f.session.Edit(models.FieldTranscript, "ab"))
	s.FieldEdited(models.FieldTranscript)

	clock.Advance(DefaultDebounceDelay / 2)
	assert.Zero(t, f.docs.FieldUpdateCount(), "timer was restarted, not fired")

	clock.Advance(DefaultDebounceDelay / 2)
	require.Eventually(t, func() bool { return f.docs.FieldUpdateCount() == 1 },
		time.Second, time.Millisecond)

	updates := f.docs.FieldUpdates()
	assert.Equal(t, "ab", updates[0].Fields[models.FieldTranscript],
		"flush persists the latest value only")
}

func TestDebounceIgnoresOtherFields(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f, s := newScheduledFixture(t, models.KindScript, clock)

	require.NoError(t, f.session.Edit(models.FieldTitle, "New Title"))
	s.FieldEdited(models.FieldTitle)

	clock.BlockUntil(1) // only the periodic ticker is armed
	clock.Advance(DefaultDebounceDelay)
	assert.Zero(t, f.docs.FieldUpdateCount())
}

func TestCanvasKindHasNoDebouncedField(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f, s := newScheduledFixture(t, models.KindCanvas, clock)

	require.NoError(t, f.session.Edit(models.FieldContent, "v2"))
	s.FieldEdited(models.FieldContent)

	clock.BlockUntil(1)
	clock.Advance(DefaultDebounceDelay)
	assert.Zero(t, f.docs.FieldUpdateCount())
}

func TestStopCancelsPendingTimers(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f, s := newScheduledFixture(t, models.KindScript, clock)

	require.NoError(t, f.session.Edit(models.FieldTranscript, "draft"))
	s.FieldEdited(models.FieldTranscript)
	clock.BlockUntil(2)

	s.Stop()
	f.session.Close()

	clock.Advance(DefaultDebounceDelay)
	clock.Advance(DefaultAutosaveInterval)

	// Neither policy touches persistence after teardown.
	assert.Zero(t, f.docs.FieldUpdateCount())
	assert.Zero(t, snapshotCount(t, f)())

	s.Stop() // idempotent
}
