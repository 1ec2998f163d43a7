package generation

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	models "inkwell/internal/domain/models/editor"
)

//go:embed presets/*.yaml
var presetFiles embed.FS

// Preset is the generation profile for one document kind: which model to
// use, how much to generate, and the system prompt framing the rewrite.
type Preset struct {
	Kind      string `yaml:"kind"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	System    string `yaml:"system"`
}

// PresetRegistry holds the per-kind generation presets loaded from embedded
// YAML files.
type PresetRegistry struct {
	presets map[models.Kind]*Preset
	mu      sync.RWMutex
}

// NewPresetRegistry creates a preset registry and loads the embedded files.
func NewPresetRegistry() (*PresetRegistry, error) {
	r := &PresetRegistry{
		presets: make(map[models.Kind]*Preset),
	}

	for _, kind := range []models.Kind{models.KindCanvas, models.KindScript} {
		if err := r.loadPresetFile(kind); err != nil {
			return nil, fmt.Errorf("failed to load %s preset: %w", kind, err)
		}
	}

	return r, nil
}

func (r *PresetRegistry) loadPresetFile(kind models.Kind) error {
	filename := fmt.Sprintf("presets/%s.yaml", kind)
	data, err := presetFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var preset Preset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	if preset.System == "" {
		return fmt.Errorf("%s: preset is missing a system prompt", filename)
	}

	r.mu.Lock()
	r.presets[kind] = &preset
	r.mu.Unlock()

	return nil
}

// ForKind returns the preset for a document kind.
func (r *PresetRegistry) ForKind(kind models.Kind) (*Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	preset, ok := r.presets[kind]
	if !ok {
		return nil, fmt.Errorf("no generation preset for kind %q", kind)
	}
	return preset, nil
}
