package interfaces

import (
	"context"

	"ledgerbot/domain/entities"
)

// LedgerRepository defines the interface for ledger row data access
type LedgerRepository interface {
	// ListRows returns every row in storage order
	ListRows(ctx context.Context) ([]*entities.LedgerRow, error)

	// Append stores a single row
	Append(ctx context.Context, row *entities.LedgerRow) error

	// AppendBatch stores several rows at once
	AppendBatch(ctx context.Context, rows []*entities.LedgerRow) error

	// ListByAccountsAndMonth returns the rows of the given accounts whose date starts with month (YYYY-MM)
	ListByAccountsAndMonth(ctx context.Context, accountIDs []string, month string) ([]*entities.LedgerRow, error)
}

// PrizeNotificationRepository remembers which winning invoices were already announced
type PrizeNotificationRepository interface {
	// HasNotified reports whether the invoice was already announced for the period
	HasNotified(ctx context.Context, invoiceNumber string, period entities.Period) (bool, error)

	// Record stores a delivered notification; recording the same pair twice is not an error
	Record(ctx context.Context, notification *entities.PrizeNotification) error
}
