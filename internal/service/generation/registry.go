package generation

import (
	"fmt"
	"log/slog"
	"sync"

	domaingen "inkwell/internal/domain/services/generation"
	"inkwell/internal/service/generation/providers/anthropic"
	"inkwell/internal/service/generation/providers/lorem"
)

// ProviderRegistry routes model identifiers to the generation provider that
// supports them.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]domaingen.Provider
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]domaingen.Provider),
	}
}

// Register adds a provider under its own name.
func (r *ProviderRegistry) Register(p domaingen.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// GetProvider returns a registered provider by name.
func (r *ProviderRegistry) GetProvider(name string) (domaingen.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	return p, nil
}

// ForModel returns the provider that supports the given model.
func (r *ProviderRegistry) ForModel(model string) (domaingen.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.SupportsModel(model) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no provider supports model '%s'", model)
}

// SetupProviders initializes the registry from configuration. The lorem
// provider is always available so dev and test environments work without API
// keys; Anthropic is registered when a key is configured.
func SetupProviders(anthropicAPIKey string, logger *slog.Logger) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()
	registry.Register(lorem.NewProvider())

	if anthropicAPIKey != "" {
		provider, err := anthropic.NewProvider(anthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("setup anthropic provider: %w", err)
		}
		registry.Register(provider)
		logger.Info("provider available", "name", "anthropic", "models", "claude-*")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set - Anthropic provider not available")
	}

	return registry, nil
}
