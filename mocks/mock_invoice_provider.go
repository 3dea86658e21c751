package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"siteledger/internal/port"
)

// MockInvoiceProvider is a mock implementation of port.InvoiceProvider.
type MockInvoiceProvider struct {
	mock.Mock
}

func (m *MockInvoiceProvider) Parse(ctx context.Context, in port.ParseInput) (*port.AttemptResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.AttemptResult), args.Error(1)
}

func (m *MockInvoiceProvider) EstimateCost(in port.ParseInput) float64 {
	args := m.Called(in)
	return args.Get(0).(float64)
}
