package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"medchron/internal/domain"
	"medchron/internal/service"
)

// MockChronologyService is a mock implementation of service.ChronologyService.
type MockChronologyService struct {
	mock.Mock
}

func (m *MockChronologyService) Generate(ctx context.Context, input *service.GenerateInput, progress service.ProgressFunc) (*service.GenerateResult, error) {
	args := m.Called(ctx, input, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerateResult), args.Error(1)
}

func (m *MockChronologyService) StartRun(ctx context.Context, input *service.GenerateInput) (*domain.Run, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockChronologyService) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockChronologyService) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Run), args.Error(1)
}

func (m *MockChronologyService) Wait() {
	m.Called()
}
