package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGenerationClient is a mock implementation of port.GenerationClient.
type MockGenerationClient struct {
	mock.Mock
}

func (m *MockGenerationClient) Call(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	args := m.Called(ctx, prompt, maxOutputTokens)
	return args.String(0), args.Error(1)
}
