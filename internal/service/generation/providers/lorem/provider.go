package lorem

import (
	"context"
	"fmt"
	"strings"

	loremgen "github.com/bozaro/golorem"

	domaingen "inkwell/internal/domain/services/generation"
)

// Provider is a mock generation provider that produces lorem ipsum text.
// Used for testing and development without requiring real API keys.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-test"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// Generate produces a lorem ipsum completion sized roughly to MaxTokens.
func (p *Provider) Generate(ctx context.Context, req *domaingen.Request) (*domaingen.Response, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	var sb strings.Builder
	words := 0
	for words < maxTokens {
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		words += len(strings.Fields(sentence))
	}
	text := strings.TrimSpace(sb.String())

	inputWords := 0
	for _, msg := range req.Messages {
		inputWords += len(strings.Fields(msg.Text))
	}

	return &domaingen.Response{
		Text:         text,
		Model:        req.Model,
		InputTokens:  inputWords,
		OutputTokens: words,
	}, nil
}
