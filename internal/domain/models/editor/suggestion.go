package editor

// SuggestionState tracks a pending suggestion's lifecycle.
type SuggestionState string

const (
	SuggestionProposed  SuggestionState = "proposed"
	SuggestionAccepted  SuggestionState = "accepted"
	SuggestionDiscarded SuggestionState = "discarded"
)

// AcceptMode selects how accepted text is folded into the live content.
type AcceptMode string

const (
	// AcceptReplace substitutes the source span with the generated text at
	// the exact original offset.
	AcceptReplace AcceptMode = "replace"
	// AcceptInsertBelow appends the generated text after the span's end
	// without removing the span.
	AcceptInsertBelow AcceptMode = "insert_below"
)

// Span is the exact substring of the live content a suggestion targets.
// Text must match the live content verbatim at Start or the span is stale.
type Span struct {
	Start int    `json:"start"`
	Text  string `json:"text"`
}

// End returns the offset one past the span's last byte.
func (s Span) End() int { return s.Start + len(s.Text) }

// PendingSuggestion stages externally generated text against a selected span
// of the draft. It never touches the live content until an explicit accept.
type PendingSuggestion struct {
	ID            string          `json:"id"`
	SourceSpan    Span            `json:"source_span"`
	GeneratedText string          `json:"generated_text"`
	State         SuggestionState `json:"state"`
}
