package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/testhelpers"
	"ledgerbot/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testAccountID      = "123456789012345678"
	testOtherAccountID = "876543210987654321"
)

func newTestRow(date, invoice, accountID string) *entities.LedgerRow {
	return &entities.LedgerRow{
		Date:          date,
		Category:      "晚餐",
		Amount:        decimal.NewFromInt(120),
		AccountID:     accountID,
		InvoiceNumber: invoice,
	}
}

func TestReconciliationService_Sweep(t *testing.T) {
	t.Parallel()

	t.Run("notifies winners and skips ineligible rows", func(t *testing.T) {
		t.Parallel()

		ledgerRepo := new(testhelpers.MockLedgerRepository)
		gateway := new(testhelpers.MockMessagingGateway)
		publisher := new(testhelpers.MockEventPublisher)

		ledgerRepo.On("ListRows", mock.Anything).Return([]*entities.LedgerRow{
			newTestRow("2025-07-10 12:00:00", "99999222", testAccountID),
			newTestRow("2025-08-02", "00000000", testAccountID),
			newTestRow("2025-07-11", "123456", testAccountID),
			newTestRow("2025-07-11", "12345678", ""),
			newTestRow("someday", "12345678", testAccountID),
			newTestRow("2025-09-01", "12345678", testOtherAccountID),
		}, nil)

		gateway.On("Push", mock.Anything, testAccountID, mock.MatchedBy(func(text string) bool {
			return strings.Contains(text, "99999222") &&
				strings.Contains(text, "2025-07-10 12:00:00") &&
				strings.Contains(text, "🧧 200元 (六獎)！")
		})).Return(nil).Once()

		publisher.On("Publish", mock.MatchedBy(func(e events.PrizeWonEvent) bool {
			return e.InvoiceNumber == "99999222" && e.Tier == "sixth" && e.PrizeAmount == 200
		})).Return(nil).Once()

		store := newLoadedStore(t, newTestWinningSet(testPeriod))
		service := NewReconciliationService(ledgerRepo, nil, NewPrizeMatcher(store), gateway, publisher, time.UTC)

		result, err := service.Sweep(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 6, result.Scanned)
		assert.Equal(t, 3, result.Skipped)
		assert.Equal(t, 3, result.Eligible)
		assert.Equal(t, 1, result.Winners)
		assert.Equal(t, 1, result.Notified)
		assert.Equal(t, 0, result.Failed)

		gateway.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("period without results is never notified", func(t *testing.T) {
		t.Parallel()

		ledgerRepo := new(testhelpers.MockLedgerRepository)
		gateway := new(testhelpers.MockMessagingGateway)
		ledgerRepo.On("ListRows", mock.Anything).Return([]*entities.LedgerRow{
			newTestRow("2025-09-15", "12345678", testAccountID),
		}, nil)

		store := newLoadedStore(t, newTestWinningSet(testPeriod))
		service := NewReconciliationService(ledgerRepo, nil, NewPrizeMatcher(store), gateway, nil, time.UTC)

		result, err := service.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, result.Winners)
		gateway.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("push failure does not stop the sweep", func(t *testing.T) {
		t.Parallel()

		ledgerRepo := new(testhelpers.MockLedgerRepository)
		gateway := new(testhelpers.MockMessagingGateway)
		ledgerRepo.On("ListRows", mock.Anything).Return([]*entities.LedgerRow{
			newTestRow("2025-07-01", "12345678", testAccountID),
			newTestRow("2025-07-02", "87654321", testOtherAccountID),
		}, nil)
		gateway.On("Push", mock.Anything, testAccountID, mock.Anything).Return(errors.New("cannot send messages to this user"))
		gateway.On("Push", mock.Anything, testOtherAccountID, mock.Anything).Return(nil)

		store := newLoadedStore(t, newTestWinningSet(testPeriod))
		service := NewReconciliationService(ledgerRepo, nil, NewPrizeMatcher(store), gateway, nil, time.UTC)

		result, err := service.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, result.Winners)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 1, result.Notified)
		gateway.AssertNumberOfCalls(t, "Push", 2)
	})

	t.Run("match failure is counted", func(t *testing.T) {
		t.Parallel()

		ledgerRepo := new(testhelpers.MockLedgerRepository)
		gateway := new(testhelpers.MockMessagingGateway)
		matcher := new(testhelpers.MockPrizeMatcher)
		ledgerRepo.On("ListRows", mock.Anything).Return([]*entities.LedgerRow{
			newTestRow("2025-07-01", "12345678", testAccountID),
		}, nil)
		matcher.On("Match", mock.Anything, "12345678", &testPeriod).Return(nil, entities.ErrEmptyCache)

		service := NewReconciliationService(ledgerRepo, nil, matcher, gateway, nil, time.UTC)

		result, err := service.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		gateway.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ledger failure aborts", func(t *testing.T) {
		t.Parallel()

		ledgerRepo := new(testhelpers.MockLedgerRepository)
		ledgerRepo.On("ListRows", mock.Anything).Return(nil, errors.New("quota exceeded"))

		service := NewReconciliationService(ledgerRepo, nil, new(testhelpers.MockPrizeMatcher), new(testhelpers.MockMessagingGateway), nil, time.UTC)

		result, err := service.Sweep(context.Background())
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestReconciliationService_Dedupe(t *testing.T) {
	t.Parallel()

	t.Run("skips invoices already notified", func(t *testing.T) {
		t.Parallel()

		ledgerRepo := new(testhelpers.MockLedgerRepository)
		gateway := new(testhelpers.MockMessagingGateway)
		notificationRepo := new(testhelpers.MockPrizeNotificationRepository)

		ledgerRepo.On("ListRows", mock.Anything).Return([]*entities.LedgerRow{
			newTestRow("2025-07-01", "12345678", testAccountID),
		}, nil)
		notificationRepo.On("HasNotified", mock.Anything, "12345678", testPeriod).Return(true, nil)

		store := newLoadedStore(t, newTestWinningSet(testPeriod))
		service := NewReconciliationService(ledgerRepo, notificationRepo, NewPrizeMatcher(store), gateway, nil, time.UTC)

		result, err := service.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Winners)
		assert.Equal(t, 1, result.AlreadyNotified)
		assert.Equal(t, 0, result.Notified)
		gateway.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
		notificationRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("records delivered notifications", func(t *testing.T) {
		t.Parallel()

		ledgerRepo := new(testhelpers.MockLedgerRepository)
		gateway := new(testhelpers.MockMessagingGateway)
		notificationRepo := new(testhelpers.MockPrizeNotificationRepository)

		ledgerRepo.On("ListRows", mock.Anything).Return([]*entities.LedgerRow{
			newTestRow("2025-08-31", "87654321", testAccountID),
		}, nil)
		notificationRepo.On("HasNotified", mock.Anything, "87654321", testPeriod).Return(false, nil)
		gateway.On("Push", mock.Anything, testAccountID, mock.Anything).Return(nil)
		notificationRepo.On("Record", mock.Anything, mock.MatchedBy(func(n *entities.PrizeNotification) bool {
			return n.InvoiceNumber == "87654321" &&
				n.Period == testPeriod &&
				n.AccountID == testAccountID &&
				n.Tier == entities.PrizeTierGrand
		})).Return(nil)

		store := newLoadedStore(t, newTestWinningSet(testPeriod))
		service := NewReconciliationService(ledgerRepo, notificationRepo, NewPrizeMatcher(store), gateway, nil, time.UTC)

		result, err := service.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Notified)
		notificationRepo.AssertExpectations(t)
	})

	t.Run("history lookup failure still notifies", func(t *testing.T) {
		t.Parallel()

		ledgerRepo := new(testhelpers.MockLedgerRepository)
		gateway := new(testhelpers.MockMessagingGateway)
		notificationRepo := new(testhelpers.MockPrizeNotificationRepository)

		ledgerRepo.On("ListRows", mock.Anything).Return([]*entities.LedgerRow{
			newTestRow("2025-07-01", "12345678", testAccountID),
		}, nil)
		notificationRepo.On("HasNotified", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("connection reset"))
		notificationRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
		gateway.On("Push", mock.Anything, testAccountID, mock.Anything).Return(nil)

		store := newLoadedStore(t, newTestWinningSet(testPeriod))
		service := NewReconciliationService(ledgerRepo, notificationRepo, NewPrizeMatcher(store), gateway, nil, time.UTC)

		result, err := service.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Notified)
	})
}

func TestFormatWinnerNotification(t *testing.T) {
	t.Parallel()

	row := newTestRow("2025-07-10", "12345678", testAccountID)
	match := entities.NewWinningResult(entities.PrizeTierSpecial, testPeriod)

	text := FormatWinnerNotification(row, match)
	assert.Contains(t, text, "12345678")
	assert.Contains(t, text, "2025-07-10")
	assert.Contains(t, text, "114年07-08月")
	assert.Contains(t, text, "🎉 1000萬 (特別獎)！太強了！")
}
