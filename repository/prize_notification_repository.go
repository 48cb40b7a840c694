package repository

import (
	"context"
	"fmt"

	"ledgerbot/database"
	"ledgerbot/domain/entities"
)

// PrizeNotificationRepository remembers delivered prize notifications on postgres
type PrizeNotificationRepository struct {
	q Queryable
}

// NewPrizeNotificationRepository creates a new prize notification repository
func NewPrizeNotificationRepository(db *database.DB) *PrizeNotificationRepository {
	return &PrizeNotificationRepository{q: db.Pool}
}

// HasNotified reports whether the invoice was already announced for the period
func (r *PrizeNotificationRepository) HasNotified(ctx context.Context, invoiceNumber string, period entities.Period) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM prize_notifications
			WHERE invoice_number = $1 AND period_year = $2 AND period_start_month = $3
		)
	`

	var exists bool
	err := r.q.QueryRow(ctx, query, invoiceNumber, period.RepublicYear, period.StartMonth).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check prize notification for %s in %s: %w", invoiceNumber, period.Label(), err)
	}

	return exists, nil
}

// Record stores a delivered notification; an existing record for the same pair is kept
func (r *PrizeNotificationRepository) Record(ctx context.Context, notification *entities.PrizeNotification) error {
	query := `
		INSERT INTO prize_notifications (invoice_number, period_year, period_start_month, account_id, tier, notified_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (invoice_number, period_year, period_start_month) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		notification.InvoiceNumber,
		notification.Period.RepublicYear,
		notification.Period.StartMonth,
		notification.AccountID,
		notification.Tier.String(),
		notification.NotifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record prize notification for %s: %w", notification.InvoiceNumber, err)
	}

	return nil
}

// ListByPeriod returns the notifications delivered for one period
func (r *PrizeNotificationRepository) ListByPeriod(ctx context.Context, period entities.Period) ([]*entities.PrizeNotification, error) {
	query := `
		SELECT id, invoice_number, account_id, tier, notified_at
		FROM prize_notifications
		WHERE period_year = $1 AND period_start_month = $2
		ORDER BY notified_at ASC
	`

	rows, err := r.q.Query(ctx, query, period.RepublicYear, period.StartMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to list prize notifications for %s: %w", period.Label(), err)
	}
	defer rows.Close()

	var notifications []*entities.PrizeNotification
	for rows.Next() {
		var n entities.PrizeNotification
		var tier string
		if err := rows.Scan(&n.ID, &n.InvoiceNumber, &n.AccountID, &tier, &n.NotifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prize notification: %w", err)
		}
		n.Period = period
		n.Tier = entities.ParsePrizeTier(tier)
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prize notifications: %w", err)
	}

	return notifications, nil
}
