package interfaces

import (
	"context"
	"time"

	"ledgerbot/domain/entities"
	"ledgerbot/events"
)

// AnnouncementFetcher retrieves the winning numbers of the most recent periods
type AnnouncementFetcher interface {
	// Fetch returns at most the current and previous period.
	// Failures are *entities.FetchError values.
	Fetch(ctx context.Context) ([]*entities.WinningSet, error)
}

// WinningNumberStore caches winning sets by period
type WinningNumberStore interface {
	Refresh(ctx context.Context) error
	EnsureLoaded(ctx context.Context) error
	Get(period entities.Period) (*entities.WinningSet, bool)
	Sets() []*entities.WinningSet
	IsEmpty() bool
	LastRefreshed() time.Time
}

// PrizeMatcher checks an invoice number against cached winning sets
type PrizeMatcher interface {
	// Match checks one invoice. A nil period checks every cached period, most recent first.
	Match(ctx context.Context, invoiceNumber string, period *entities.Period) (*entities.MatchResult, error)
}

// MessagingGateway delivers text to a chat account
type MessagingGateway interface {
	Push(ctx context.Context, accountID, text string) error
}

// ContentParser turns free-form text or media into candidate ledger records
type ContentParser interface {
	Parse(ctx context.Context, input entities.ParseInput) ([]*entities.ParsedRecord, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// LedgerService defines the bookkeeping operations used by the chat layer
type LedgerService interface {
	Record(ctx context.Context, accountID string, records []*entities.ParsedRecord) ([]*entities.LedgerRow, error)
	Summary(ctx context.Context, accountIDs []string, month string, family bool) (*entities.LedgerSummary, error)
}

// SweepResult counts the outcome of one reconciliation sweep
type SweepResult struct {
	Scanned         int
	Eligible        int
	Skipped         int
	Winners         int
	Notified        int
	AlreadyNotified int
	Failed          int
}

// ReconciliationService scans the ledger and notifies winners
type ReconciliationService interface {
	Sweep(ctx context.Context) (*SweepResult, error)
}
