package database_test

import (
	"context"
	"errors"
	"testing"

	"ledgerbot/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countNotifications(t *testing.T, ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}) int {
	t.Helper()
	var n int
	require.NoError(t, q.QueryRow(ctx, `SELECT COUNT(*) FROM prize_notifications`).Scan(&n))
	return n
}

func TestWithTransaction(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	db := testDB.DB
	ctx := context.Background()

	insert := func(tx pgx.Tx, invoice string) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO prize_notifications (invoice_number, period_year, period_start_month, account_id, tier)
			VALUES ($1, 114, 7, '111', 'sixth')`, invoice)
		return err
	}

	t.Run("commits on success", func(t *testing.T) {
		err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
			return insert(tx, "12345678")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countNotifications(t, ctx, db))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		sentinel := errors.New("stop")
		err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
			if err := insert(tx, "87654321"); err != nil {
				return err
			}
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, countNotifications(t, ctx, db))
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		assert.PanicsWithValue(t, "boom", func() {
			_ = db.WithTransaction(ctx, func(tx pgx.Tx) error {
				require.NoError(t, insert(tx, "11112222"))
				panic("boom")
			})
		})
		assert.Equal(t, 1, countNotifications(t, ctx, db))
	})
}
