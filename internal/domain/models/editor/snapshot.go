package editor

import (
	"time"
)

// ChangeType records what produced a snapshot.
type ChangeType string

const (
	// ChangeInitial marks a first-draft snapshot created with the document.
	ChangeInitial ChangeType = "initial"
	// ChangeManual marks an explicit user save.
	ChangeManual ChangeType = "manual"
	// ChangeAuto marks a periodic full autosave.
	ChangeAuto ChangeType = "auto"
	// ChangeRestore marks the backup of pre-restore state taken before a
	// prior snapshot is restored.
	ChangeRestore ChangeType = "restore"
)

// Snapshot is an immutable point-in-time copy of a document's editable
// fields. Snapshots are only ever appended: restore does not delete history,
// it appends a backup of the pre-restore state.
type Snapshot struct {
	ID         string            `json:"id" db:"id"`
	DocumentID string            `json:"document_id" db:"document_id"`
	// Sequence is monotonically increasing per document and defines the total
	// order; the highest sequence is most recent. Ties break on CreatedAt.
	Sequence    int               `json:"sequence" db:"sequence"`
	Title       string            `json:"title" db:"title"`
	Content     string            `json:"content" db:"content"`
	Metadata    map[string]string `json:"metadata" db:"metadata"`
	ChangeType  ChangeType        `json:"change_type" db:"change_type"`
	Description string            `json:"description,omitempty" db:"description"`
	// IsPrimary is meaningful only for initial snapshots: the user-chosen
	// authoritative draft among several competing first drafts.
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Fields flattens the snapshot's versioned fields into the uniform field map.
func (s *Snapshot) Fields() map[string]string {
	fields := map[string]string{
		FieldTitle:   s.Title,
		FieldContent: s.Content,
	}
	for k, v := range s.Metadata {
		fields[k] = v
	}
	return fields
}
