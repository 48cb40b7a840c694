package repository

import (
	"context"
	"testing"
	"time"

	"ledgerbot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPrizeNotificationRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryPrizeNotificationRepository()
	period := entities.Period{RepublicYear: 114, StartMonth: 7}
	other := entities.Period{RepublicYear: 114, StartMonth: 9}

	notified, err := repo.HasNotified(ctx, "12345678", period)
	require.NoError(t, err)
	assert.False(t, notified)

	notification := &entities.PrizeNotification{
		InvoiceNumber: "12345678",
		Period:        period,
		AccountID:     "111",
		Tier:          entities.PrizeTierSpecial,
		NotifiedAt:    time.Now(),
	}
	require.NoError(t, repo.Record(ctx, notification))
	require.NoError(t, repo.Record(ctx, notification))

	notified, err = repo.HasNotified(ctx, "12345678", period)
	require.NoError(t, err)
	assert.True(t, notified)

	notified, err = repo.HasNotified(ctx, "12345678", other)
	require.NoError(t, err)
	assert.False(t, notified)
}
