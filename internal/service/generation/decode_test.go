package generation

import "testing"

func TestDecodeReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain text passes through",
			raw:  "The quick brown fox.",
			want: "The quick brown fox.",
		},
		{
			name: "plain text is trimmed",
			raw:  "  A suggestion.\n",
			want: "A suggestion.",
		},
		{
			name: "structured reply unwrapped",
			raw:  `{"text": "Rewritten passage."}`,
			want: "Rewritten passage.",
		},
		{
			name: "structured reply with surrounding whitespace",
			raw:  "\n  {\"text\": \"Rewritten.\"}  ",
			want: "Rewritten.",
		},
		{
			name: "unknown fields fall back to raw",
			raw:  `{"text": "x", "confidence": 0.9}`,
			want: `{"text": "x", "confidence": 0.9}`,
		},
		{
			name: "empty text field falls back to raw",
			raw:  `{"text": ""}`,
			want: `{"text": ""}`,
		},
		{
			name: "malformed JSON falls back to raw",
			raw:  `{"text": "unterminated`,
			want: `{"text": "unterminated`,
		},
		{
			name: "JSON-looking prose falls back to raw",
			raw:  `{not actually json}`,
			want: `{not actually json}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeReply(tt.raw); got != tt.want {
				t.Errorf("DecodeReply(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
