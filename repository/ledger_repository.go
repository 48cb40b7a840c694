package repository

import (
	"context"
	"fmt"
	"time"

	"ledgerbot/database"
	"ledgerbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `id, entry_date, category, amount, note, account_id, invoice_number, created_at`

// LedgerRepository implements ledger row data access on postgres
type LedgerRepository struct {
	q  Queryable
	db *database.DB // nil when bound to a caller's transaction
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool, db: db}
}

// NewLedgerRepositoryWithTx creates a ledger repository bound to tx; the caller commits
func NewLedgerRepositoryWithTx(tx Queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// ListRows returns every ledger row in insertion order
func (r *LedgerRepository) ListRows(ctx context.Context) ([]*entities.LedgerRow, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries ORDER BY id ASC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger rows: %w", err)
	}
	return scanLedgerRows(rows)
}

// Append stores a single row and fills in its id and creation time
func (r *LedgerRepository) Append(ctx context.Context, row *entities.LedgerRow) error {
	query := `
		INSERT INTO ledger_entries (entry_date, category, amount, note, account_id, invoice_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		row.Date,
		row.Category,
		row.Amount,
		row.Note,
		row.AccountID,
		row.InvoiceNumber,
	).Scan(&row.ID, &row.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append ledger row for account %s: %w", row.AccountID, err)
	}

	return nil
}

// AppendBatch stores several rows all or nothing. A pool backed repository opens its own
// transaction; a transaction bound one joins the caller's.
func (r *LedgerRepository) AppendBatch(ctx context.Context, rows []*entities.LedgerRow) error {
	if len(rows) == 0 {
		return nil
	}
	if r.db == nil {
		return r.appendRows(ctx, rows)
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return NewLedgerRepositoryWithTx(tx).appendRows(ctx, rows)
	})
	if err != nil {
		for _, row := range rows {
			row.ID = 0
			row.CreatedAt = time.Time{}
		}
		return err
	}
	return nil
}

func (r *LedgerRepository) appendRows(ctx context.Context, rows []*entities.LedgerRow) error {
	query := `
		INSERT INTO ledger_entries (entry_date, category, amount, note, account_id, invoice_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, row.Date, row.Category, row.Amount, row.Note, row.AccountID, row.InvoiceNumber)
	}

	results := r.q.SendBatch(ctx, batch)
	defer results.Close()

	for i, row := range rows {
		if err := results.QueryRow().Scan(&row.ID, &row.CreatedAt); err != nil {
			return fmt.Errorf("failed to append ledger row %d of %d: %w", i+1, len(rows), err)
		}
	}

	return nil
}

// ListByAccountsAndMonth returns the rows of the given accounts whose date starts with month
func (r *LedgerRepository) ListByAccountsAndMonth(ctx context.Context, accountIDs []string, month string) ([]*entities.LedgerRow, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE account_id = ANY($1) AND entry_date LIKE $2 || '%'
		ORDER BY entry_date ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, accountIDs, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger rows for %s: %w", month, err)
	}
	return scanLedgerRows(rows)
}

func scanLedgerRows(rows pgx.Rows) ([]*entities.LedgerRow, error) {
	defer rows.Close()

	var result []*entities.LedgerRow
	for rows.Next() {
		var row entities.LedgerRow
		err := rows.Scan(
			&row.ID,
			&row.Date,
			&row.Category,
			&row.Amount,
			&row.Note,
			&row.AccountID,
			&row.InvoiceNumber,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		result = append(result, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}

	return result, nil
}
