package entities

import "time"

// PrizeNotification records that a winner was already told about an invoice in a period
type PrizeNotification struct {
	ID            int64     `db:"id"`
	InvoiceNumber string    `db:"invoice_number"`
	Period        Period    `db:"-"`
	AccountID     string    `db:"account_id"`
	Tier          PrizeTier `db:"tier"`
	NotifiedAt    time.Time `db:"notified_at"`
}
