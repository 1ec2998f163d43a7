package editor

import (
	"time"
)

// Kind identifies the editable artifact type. Both kinds share the same draft
// session contract; they differ only in which fields are dirty-tracked and
// which field (if any) gets the debounced autosave.
type Kind string

const (
	KindCanvas Kind = "canvas"
	KindScript Kind = "script"
)

// Document is the editable artifact with a single current state. Historical
// states live in the snapshot log, never here.
type Document struct {
	ID        string            `json:"id" db:"id"`
	ProjectID string            `json:"project_id" db:"project_id"`
	Kind      Kind              `json:"kind" db:"kind"`
	Title     string            `json:"title" db:"title"`
	Content   string            `json:"content" db:"content"`
	Metadata  map[string]string `json:"metadata" db:"metadata"` // status, category, transcript, ...
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// Well-known field names. Title and content are top-level document columns;
// everything else lives in the metadata map but is dirty-tracked uniformly.
const (
	FieldTitle      = "title"
	FieldContent    = "content"
	FieldStatus     = "status"
	FieldCategory   = "category"
	FieldTranscript = "transcript"
)

// TrackedFields returns the dirty-tracked field set for a document kind.
func TrackedFields(kind Kind) []string {
	switch kind {
	case KindScript:
		return []string{FieldTitle, FieldContent, FieldStatus, FieldTranscript}
	default:
		return []string{FieldTitle, FieldContent, FieldStatus, FieldCategory}
	}
}

// DebouncedField returns the field saved through the debounced best-effort
// path for a document kind, if any. Scripts debounce the transcript area.
func DebouncedField(kind Kind) (string, bool) {
	if kind == KindScript {
		return FieldTranscript, true
	}
	return "", false
}

// Fields flattens a document's editable fields into the uniform field map the
// draft session tracks.
func (d *Document) Fields() map[string]string {
	fields := map[string]string{
		FieldTitle:   d.Title,
		FieldContent: d.Content,
	}
	for k, v := range d.Metadata {
		fields[k] = v
	}
	return fields
}

// ApplyFields writes a field map back onto the document's editable fields.
// Unknown keys land in metadata.
func (d *Document) ApplyFields(fields map[string]string) {
	for k, v := range fields {
		switch k {
		case FieldTitle:
			d.Title = v
		case FieldContent:
			d.Content = v
		default:
			if d.Metadata == nil {
				d.Metadata = make(map[string]string)
			}
			d.Metadata[k] = v
		}
	}
}
