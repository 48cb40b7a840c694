package services

import (
	"context"
	"testing"
	"time"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"
	"ledgerbot/domain/testhelpers"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	// testPeriod is 114年07-08月
	testPeriod = entities.Period{RepublicYear: 114, StartMonth: 7}
	// testPreviousPeriod is 114年05-06月
	testPreviousPeriod = entities.Period{RepublicYear: 114, StartMonth: 5}
	testFetchTime      = time.Date(2025, 9, 26, 9, 0, 0, 0, time.UTC)
)

// newTestWinningSet creates the sample set used across matcher tests
func newTestWinningSet(period entities.Period, opts ...func(*entities.WinningSet)) *entities.WinningSet {
	set := &entities.WinningSet{
		Period:            period,
		Special:           "12345678",
		Grand:             "87654321",
		FirstPrizeNumbers: []string{"11112222"},
	}
	for _, opt := range opts {
		opt(set)
	}
	return set
}

// newLoadedStore creates a store already populated with sets
func newLoadedStore(t *testing.T, sets ...*entities.WinningSet) interfaces.WinningNumberStore {
	t.Helper()

	fetcher := new(testhelpers.MockAnnouncementFetcher)
	fetcher.On("Fetch", mock.Anything).Return(sets, nil).Once()

	store := NewWinningNumberStore(fetcher, WithClock(func() time.Time { return testFetchTime }))
	require.NoError(t, store.Refresh(context.Background()))
	return store
}
