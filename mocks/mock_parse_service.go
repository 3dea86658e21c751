package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"siteledger/internal/parsing"
	"siteledger/internal/service"
)

// MockParseService is a mock implementation of service.ParseService.
type MockParseService struct {
	mock.Mock
}

func (m *MockParseService) Parse(ctx context.Context, userID uuid.UUID, req *service.ParseRequest) (*parsing.Outcome, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*parsing.Outcome), args.Error(1)
}

func (m *MockParseService) Strategies() []string {
	args := m.Called()
	return args.Get(0).([]string)
}
