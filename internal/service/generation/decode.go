package generation

import (
	"encoding/json"
	"strings"
)

// structuredReply is the strict schema some models answer with when they wrap
// the suggestion in JSON despite instructions.
type structuredReply struct {
	Text string `json:"text"`
}

// DecodeReply normalizes a model reply into plain suggestion text. Replies
// are a tagged variant: first a strict JSON schema decode is attempted, and
// anything that fails it is treated as the raw-text variant. Field presence
// is never trusted without validation: a decoded object with an empty text
// field falls back to the raw reply.
func DecodeReply(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var reply structuredReply
	if err := dec.Decode(&reply); err != nil {
		return trimmed
	}
	if strings.TrimSpace(reply.Text) == "" {
		return trimmed
	}
	return strings.TrimSpace(reply.Text)
}
