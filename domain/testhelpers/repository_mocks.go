package testhelpers

import (
	"context"

	"ledgerbot/domain/entities"
	"ledgerbot/events"

	"github.com/stretchr/testify/mock"
)

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) ListRows(ctx context.Context) ([]*entities.LedgerRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerRow), args.Error(1)
}

func (m *MockLedgerRepository) Append(ctx context.Context, row *entities.LedgerRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockLedgerRepository) AppendBatch(ctx context.Context, rows []*entities.LedgerRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByAccountsAndMonth(ctx context.Context, accountIDs []string, month string) ([]*entities.LedgerRow, error) {
	args := m.Called(ctx, accountIDs, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerRow), args.Error(1)
}

// MockPrizeNotificationRepository is a mock implementation of PrizeNotificationRepository
type MockPrizeNotificationRepository struct {
	mock.Mock
}

func (m *MockPrizeNotificationRepository) HasNotified(ctx context.Context, invoiceNumber string, period entities.Period) (bool, error) {
	args := m.Called(ctx, invoiceNumber, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockPrizeNotificationRepository) Record(ctx context.Context, notification *entities.PrizeNotification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
