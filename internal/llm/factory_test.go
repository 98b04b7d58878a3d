package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchron/internal/config"
	"medchron/internal/llm"
	"medchron/internal/port"
	"medchron/mocks"
)

func registerStub(name string) *mocks.MockTextGenerator {
	gen := new(mocks.MockTextGenerator)
	llm.RegisterProvider(name, func(_ *config.GenerationProviderConfig) (port.TextGenerator, error) {
		return gen, nil
	})
	return gen
}

func TestNewGenerator_UnknownProvider(t *testing.T) {
	_, err := llm.NewGenerator(&config.GenerationProviderConfig{Provider: "nope"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown generation provider")
}

func TestNewFromConfig_PrimaryOnly(t *testing.T) {
	gen := registerStub("stub-primary")

	got, err := llm.NewFromConfig(&config.GenerationConfig{
		Primary: config.GenerationProviderConfig{Provider: "stub-primary"},
	})

	require.NoError(t, err)
	assert.Same(t, gen, got)
}

func TestNewFromConfig_WithFallback(t *testing.T) {
	registerStub("stub-a")
	registerStub("stub-b")

	got, err := llm.NewFromConfig(&config.GenerationConfig{
		Primary:  config.GenerationProviderConfig{Provider: "stub-a"},
		Fallback: config.GenerationProviderConfig{Provider: "stub-b"},
	})

	require.NoError(t, err)
	_, ok := got.(*llm.FallbackGenerator)
	assert.True(t, ok)
	assert.Contains(t, llm.Providers(), "stub-a")
}
