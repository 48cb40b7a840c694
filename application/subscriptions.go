package application

import (
	"context"

	"ledgerbot/events"
	"ledgerbot/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// RegisterMetricsSubscriptions feeds domain events into the metrics provider
func RegisterMetricsSubscriptions(bus *events.Bus, metrics *observability.MetricsProvider) {
	bus.Subscribe(events.EventTypePrizeWon, func(ctx context.Context, event events.Event) {
		won, ok := event.(events.PrizeWonEvent)
		if !ok {
			return
		}
		metrics.RecordPrizeMatch(won.Tier)

		log.WithFields(log.Fields{
			"accountID": won.AccountID,
			"period":    won.Period,
			"tier":      won.Tier,
			"prize":     won.PrizeAmount,
		}).Info("Prize winner notified")
	})

	bus.Subscribe(events.EventTypeLedgerRecorded, func(ctx context.Context, event events.Event) {
		if recorded, ok := event.(events.LedgerRecordedEvent); ok {
			metrics.RecordLedgerRecords(recorded.RecordCount)
		}
	})
}
