package repository

import (
	"context"
	"errors"
	"testing"

	"ledgerbot/domain/entities"
	"ledgerbot/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("append fills id and created at", func(t *testing.T) {
		row := testutil.CreateTestLedgerRowWithInvoice("111", "2025-07-01 12:00:00", "12345678")
		row.Amount = decimal.RequireFromString("85.50")

		require.NoError(t, repo.Append(ctx, row))
		assert.NotZero(t, row.ID)
		assert.False(t, row.CreatedAt.IsZero())
	})

	t.Run("append batch", func(t *testing.T) {
		rows := []*entities.LedgerRow{
			testutil.CreateTestLedgerRow("111", "2025-07-02 08:00:00", 60),
			testutil.CreateTestLedgerRow("222", "2025-07-03 09:00:00", 40),
			testutil.CreateTestLedgerRow("111", "2025-08-01 10:00:00", 300),
		}
		require.NoError(t, repo.AppendBatch(ctx, rows))
		for _, row := range rows {
			assert.NotZero(t, row.ID)
		}
	})

	t.Run("list rows in insertion order", func(t *testing.T) {
		rows, err := repo.ListRows(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 4)

		assert.Equal(t, "12345678", rows[0].InvoiceNumber)
		assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("85.5")))
		assert.Equal(t, "111", rows[0].AccountID)
		assert.Equal(t, "", rows[1].InvoiceNumber)
	})

	t.Run("list by accounts and month", func(t *testing.T) {
		personal, err := repo.ListByAccountsAndMonth(ctx, []string{"111"}, "2025-07")
		require.NoError(t, err)
		assert.Len(t, personal, 2)

		family, err := repo.ListByAccountsAndMonth(ctx, []string{"111", "222"}, "2025-07")
		require.NoError(t, err)
		assert.Len(t, family, 3)

		august, err := repo.ListByAccountsAndMonth(ctx, []string{"222"}, "2025-08")
		require.NoError(t, err)
		assert.Empty(t, august)
	})
}

func TestLedgerRepository_AppendBatchIsAtomic(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	rows := []*entities.LedgerRow{
		testutil.CreateTestLedgerRow("111", "2025-07-02 08:00:00", 60),
		testutil.CreateTestLedgerRow("111", "2025-07-02 09:00:00", 0),
		testutil.CreateTestLedgerRow("111", "2025-07-02 10:00:00", 40),
	}
	err := repo.AppendBatch(ctx, rows)
	require.Error(t, err)

	for _, row := range rows {
		assert.Zero(t, row.ID)
	}

	stored, err := repo.ListRows(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored, "a failed batch must not leave partial rows")

	t.Run("transaction bound repository joins the caller", func(t *testing.T) {
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			txRepo := NewLedgerRepositoryWithTx(tx)
			if err := txRepo.AppendBatch(ctx, []*entities.LedgerRow{
				testutil.CreateTestLedgerRow("222", "2025-07-05 12:00:00", 120),
			}); err != nil {
				return err
			}
			return errors.New("abort")
		})
		require.Error(t, err)

		stored, err := repo.ListRows(ctx)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}
