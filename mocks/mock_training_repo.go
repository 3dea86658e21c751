package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"siteledger/internal/domain"
)

// MockTrainingRepo is a mock implementation of port.TrainingRepository.
type MockTrainingRepo struct {
	mock.Mock
}

func (m *MockTrainingRepo) Create(ctx context.Context, sample *domain.TrainingSample) error {
	args := m.Called(ctx, sample)
	return args.Error(0)
}
