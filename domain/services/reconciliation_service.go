package services

import (
	"context"
	"fmt"
	"time"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"
	"ledgerbot/events"

	log "github.com/sirupsen/logrus"
)

// reconciliationService scans ledger rows for winning invoices and notifies their owners
type reconciliationService struct {
	ledgerRepo       interfaces.LedgerRepository
	notificationRepo interfaces.PrizeNotificationRepository
	matcher          interfaces.PrizeMatcher
	gateway          interfaces.MessagingGateway
	eventPublisher   interfaces.EventPublisher
	location         *time.Location
	now              func() time.Time
}

// NewReconciliationService creates a new reconciliation service.
// A nil notificationRepo disables dedupe, so winners are reminded on every sweep.
func NewReconciliationService(
	ledgerRepo interfaces.LedgerRepository,
	notificationRepo interfaces.PrizeNotificationRepository,
	matcher interfaces.PrizeMatcher,
	gateway interfaces.MessagingGateway,
	eventPublisher interfaces.EventPublisher,
	location *time.Location,
) interfaces.ReconciliationService {
	if location == nil {
		location = time.UTC
	}
	return &reconciliationService{
		ledgerRepo:       ledgerRepo,
		notificationRepo: notificationRepo,
		matcher:          matcher,
		gateway:          gateway,
		eventPublisher:   eventPublisher,
		location:         location,
		now:              time.Now,
	}
}

// Sweep checks every reconcilable row against its own period. Row level failures are
// counted and logged; only a failure to read the ledger aborts the sweep.
func (s *reconciliationService) Sweep(ctx context.Context) (*interfaces.SweepResult, error) {
	rows, err := s.ledgerRepo.ListRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger rows: %w", err)
	}

	result := &interfaces.SweepResult{}
	for _, row := range rows {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Scanned++

		if row == nil || !row.IsReconcilable() {
			result.Skipped++
			continue
		}

		entryDate, err := ParseLedgerDate(row.Date, s.location)
		if err != nil {
			log.WithFields(log.Fields{
				"invoiceNumber": row.InvoiceNumber,
				"date":          row.Date,
			}).Debug("Skipping ledger row with unparseable date")
			result.Skipped++
			continue
		}
		result.Eligible++

		period := ResolvePeriod(entryDate)
		match, err := s.matcher.Match(ctx, row.InvoiceNumber, &period)
		if err != nil {
			log.WithFields(log.Fields{
				"invoiceNumber": row.InvoiceNumber,
				"period":        period.Label(),
				"error":         err,
			}).Error("Failed to match invoice")
			result.Failed++
			continue
		}
		if !match.ShouldNotify() {
			continue
		}
		result.Winners++

		if s.alreadyNotified(ctx, row.InvoiceNumber, period) {
			result.AlreadyNotified++
			continue
		}

		if err := s.gateway.Push(ctx, row.AccountID, FormatWinnerNotification(row, match)); err != nil {
			log.WithFields(log.Fields{
				"accountID":     row.AccountID,
				"invoiceNumber": row.InvoiceNumber,
				"error":         err,
			}).Error("Failed to push prize notification")
			result.Failed++
			continue
		}
		result.Notified++

		s.recordNotification(ctx, row, period, match)
	}

	log.WithFields(log.Fields{
		"scanned":         result.Scanned,
		"eligible":        result.Eligible,
		"skipped":         result.Skipped,
		"winners":         result.Winners,
		"notified":        result.Notified,
		"alreadyNotified": result.AlreadyNotified,
		"failed":          result.Failed,
	}).Info("Reconciliation sweep finished")

	return result, nil
}

// alreadyNotified fails open: a lookup error is logged and the winner is notified again
func (s *reconciliationService) alreadyNotified(ctx context.Context, invoiceNumber string, period entities.Period) bool {
	if s.notificationRepo == nil {
		return false
	}
	notified, err := s.notificationRepo.HasNotified(ctx, invoiceNumber, period)
	if err != nil {
		log.WithFields(log.Fields{
			"invoiceNumber": invoiceNumber,
			"period":        period.Label(),
			"error":         err,
		}).Warn("Failed to check prize notification history")
		return false
	}
	return notified
}

func (s *reconciliationService) recordNotification(ctx context.Context, row *entities.LedgerRow, period entities.Period, match *entities.MatchResult) {
	if s.notificationRepo != nil {
		notification := &entities.PrizeNotification{
			InvoiceNumber: row.InvoiceNumber,
			Period:        period,
			AccountID:     row.AccountID,
			Tier:          match.Tier,
			NotifiedAt:    s.now(),
		}
		if err := s.notificationRepo.Record(ctx, notification); err != nil {
			log.WithFields(log.Fields{
				"invoiceNumber": row.InvoiceNumber,
				"period":        period.Label(),
				"error":         err,
			}).Warn("Failed to record prize notification")
		}
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.PrizeWonEvent{
			AccountID:     row.AccountID,
			InvoiceNumber: row.InvoiceNumber,
			Period:        period.Label(),
			Tier:          match.Tier.String(),
			PrizeAmount:   match.PrizeAmount,
			EntryDate:     row.Date,
		}); err != nil {
			log.WithError(err).Warn("Failed to publish prize won event")
		}
	}
}

// FormatWinnerNotification renders the direct message sent to a winner
func FormatWinnerNotification(row *entities.LedgerRow, match *entities.MatchResult) string {
	periodLabel := ""
	if match.Period != nil {
		periodLabel = match.Period.Label()
	}
	return fmt.Sprintf("🎉 發票中獎通知\n發票號碼：%s\n消費日期：%s\n期別：%s\n%s",
		row.InvoiceNumber, row.Date, periodLabel, match.Message)
}
