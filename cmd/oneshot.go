package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"ledgerbot/application"
	"ledgerbot/bot"
	"ledgerbot/bot/common"
	"ledgerbot/config"
	"ledgerbot/domain/entities"
	"ledgerbot/domain/services"
	"ledgerbot/infrastructure"
	"ledgerbot/infrastructure/announcement"
	"ledgerbot/infrastructure/gateway"
	"ledgerbot/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Check matches one invoice against the live announcement and prints the result.
// With a date the invoice is checked against that date's period only.
func Check(ctx context.Context, out io.Writer, invoiceNumber, date string) error {
	cfg := config.FromEnv()
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var period *entities.Period
	if date != "" {
		entryDate, err := services.ParseLedgerDate(date, loc)
		if err != nil {
			return fmt.Errorf("failed to parse date %q: %w", date, err)
		}
		p := services.ResolvePeriod(entryDate)
		period = &p
	}

	fetcher := announcement.NewEtaxFetcher(cfg.AnnouncementURL, &http.Client{Timeout: cfg.AnnouncementTimeout})
	store := services.NewWinningNumberStore(fetcher)
	if err := store.Refresh(ctx); err != nil {
		return err
	}

	result, err := services.NewPrizeMatcher(store).Match(ctx, invoiceNumber, period)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, common.FormatMatch(invoiceNumber, result))
	return err
}

// Reconcile runs one sweep now and prints its counts. Winners are messaged through Discord
// without opening the gateway connection.
func Reconcile(ctx context.Context, out io.Writer) error {
	cfg := config.Get()
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	session, err := bot.NewSession(bot.Config{Token: cfg.DiscordToken})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord session: %w", err)
	}

	publisher := infrastructure.NewNoopEventPublisher()
	fetcher := announcement.NewEtaxFetcher(cfg.AnnouncementURL, &http.Client{Timeout: cfg.AnnouncementTimeout})
	store := services.NewWinningNumberStore(fetcher)
	reconciliation := services.NewReconciliationService(
		stores.ledger, stores.notifications, services.NewPrizeMatcher(store),
		gateway.NewDiscordGateway(session), publisher, loc)

	worker, err := application.NewReconciliationWorker(
		store, reconciliation, publisher, observability.GetMetrics(), cfg.ReconcileSchedule, loc)
	if err != nil {
		return err
	}

	report, err := worker.RunNow(ctx)
	if err != nil {
		return err
	}

	log.WithField("duration", report.Duration).Info("Reconciliation finished")
	_, err = fmt.Fprintln(out, common.FormatSweep(report.Result))
	return err
}
