package llm

import (
	"fmt"
	"sort"

	"medchron/internal/config"
	"medchron/internal/port"
)

// ProviderFactory is a function that creates a TextGenerator from a provider config.
type ProviderFactory func(cfg *config.GenerationProviderConfig) (port.TextGenerator, error)

// registry of provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a generation provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// Providers returns the registered provider names in sorted order.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewGenerator creates a TextGenerator from a provider config using the registered factory.
func NewGenerator(cfg *config.GenerationProviderConfig) (port.TextGenerator, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown generation provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the primary generator and, when a fallback provider is
// configured, wraps both in a FallbackGenerator.
func NewFromConfig(cfg *config.GenerationConfig) (port.TextGenerator, error) {
	primary, err := NewGenerator(&cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("primary provider: %w", err)
	}
	fb := cfg.FallbackConfig()
	if fb == nil {
		return primary, nil
	}
	secondary, err := NewGenerator(fb)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}
	return NewFallbackGenerator(
		[]port.TextGenerator{primary, secondary},
		[]string{cfg.Primary.Provider, fb.Provider},
	), nil
}
