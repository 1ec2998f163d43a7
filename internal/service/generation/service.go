package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domaingen "inkwell/internal/domain/services/generation"
	"inkwell/internal/service/editor"
)

// Context window sent around the selected span so the model sees where the
// passage sits in the document.
const contextWindow = 2000

// Service builds suggestion prompts from the staged span and routes them to
// the configured provider. It implements the editor's SuggestionGenerator
// contract.
type Service struct {
	registry     *ProviderRegistry
	presets      *PresetRegistry
	defaultModel string
	logger       *slog.Logger
}

// NewService creates the generation service. defaultModel overrides the
// preset models when non-empty (used to force lorem in dev).
func NewService(registry *ProviderRegistry, presets *PresetRegistry, defaultModel string, logger *slog.Logger) *Service {
	return &Service{
		registry:     registry,
		presets:      presets,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// GenerateSuggestion performs one request/response generation call for a
// staged span and returns the candidate replacement text.
func (s *Service) GenerateSuggestion(ctx context.Context, req editor.SuggestionRequest) (string, error) {
	preset, err := s.presets.ForKind(req.Kind)
	if err != nil {
		return "", err
	}

	model := preset.Model
	if s.defaultModel != "" {
		model = s.defaultModel
	}

	provider, err := s.registry.ForModel(model)
	if err != nil {
		return "", err
	}

	resp, err := provider.Generate(ctx, &domaingen.Request{
		System:    preset.System,
		Messages:  []domaingen.Message{{Role: "user", Text: buildPrompt(req)}},
		Model:     model,
		MaxTokens: preset.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	text := DecodeReply(resp.Text)

	s.logger.Debug("suggestion generated",
		"kind", req.Kind,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
	)

	return text, nil
}

// buildPrompt frames the selected passage with surrounding document context
// and the user's instruction.
func buildPrompt(req editor.SuggestionRequest) string {
	before, after := surrounding(req.Document, req.Span.Start, req.Span.End())

	var sb strings.Builder
	if before != "" {
		fmt.Fprintf(&sb, "Text before the passage:\n%s\n\n", before)
	}
	fmt.Fprintf(&sb, "Selected passage:\n%s\n\n", req.Span.Text)
	if after != "" {
		fmt.Fprintf(&sb, "Text after the passage:\n%s\n\n", after)
	}
	fmt.Fprintf(&sb, "Instruction: %s", req.Prompt)
	return sb.String()
}

// surrounding returns up to contextWindow bytes of document text on each
// side of the span.
func surrounding(document string, start, end int) (before, after string) {
	if start < 0 || end > len(document) || start > end {
		return "", ""
	}

	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(document) {
		hi = len(document)
	}

	return document[lo:start], document[end:hi]
}
