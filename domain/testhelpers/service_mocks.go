package testhelpers

import (
	"context"
	"time"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockAnnouncementFetcher is a mock implementation of AnnouncementFetcher
type MockAnnouncementFetcher struct {
	mock.Mock
}

func (m *MockAnnouncementFetcher) Fetch(ctx context.Context) ([]*entities.WinningSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WinningSet), args.Error(1)
}

// MockWinningNumberStore is a mock implementation of WinningNumberStore
type MockWinningNumberStore struct {
	mock.Mock
}

func (m *MockWinningNumberStore) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWinningNumberStore) EnsureLoaded(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWinningNumberStore) Get(period entities.Period) (*entities.WinningSet, bool) {
	args := m.Called(period)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*entities.WinningSet), args.Bool(1)
}

func (m *MockWinningNumberStore) Sets() []*entities.WinningSet {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*entities.WinningSet)
}

func (m *MockWinningNumberStore) IsEmpty() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockWinningNumberStore) LastRefreshed() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

// MockPrizeMatcher is a mock implementation of PrizeMatcher
type MockPrizeMatcher struct {
	mock.Mock
}

func (m *MockPrizeMatcher) Match(ctx context.Context, invoiceNumber string, period *entities.Period) (*entities.MatchResult, error) {
	args := m.Called(ctx, invoiceNumber, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MatchResult), args.Error(1)
}

// MockMessagingGateway is a mock implementation of MessagingGateway
type MockMessagingGateway struct {
	mock.Mock
}

func (m *MockMessagingGateway) Push(ctx context.Context, accountID, text string) error {
	args := m.Called(ctx, accountID, text)
	return args.Error(0)
}

// MockContentParser is a mock implementation of ContentParser
type MockContentParser struct {
	mock.Mock
}

func (m *MockContentParser) Parse(ctx context.Context, input entities.ParseInput) ([]*entities.ParsedRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ParsedRecord), args.Error(1)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Record(ctx context.Context, accountID string, records []*entities.ParsedRecord) ([]*entities.LedgerRow, error) {
	args := m.Called(ctx, accountID, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerRow), args.Error(1)
}

func (m *MockLedgerService) Summary(ctx context.Context, accountIDs []string, month string, family bool) (*entities.LedgerSummary, error) {
	args := m.Called(ctx, accountIDs, month, family)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerSummary), args.Error(1)
}

// MockReconciliationService is a mock implementation of ReconciliationService
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) Sweep(ctx context.Context) (*interfaces.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.SweepResult), args.Error(1)
}
