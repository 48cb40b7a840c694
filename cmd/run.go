package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ledgerbot/application"
	"ledgerbot/bot"
	"ledgerbot/bot/features/summary"
	"ledgerbot/config"
	"ledgerbot/database"
	"ledgerbot/domain/interfaces"
	"ledgerbot/domain/services"
	"ledgerbot/events"
	"ledgerbot/infrastructure"
	"ledgerbot/infrastructure/announcement"
	"ledgerbot/infrastructure/gateway"
	"ledgerbot/infrastructure/ledger"
	"ledgerbot/infrastructure/observability"
	"ledgerbot/infrastructure/parser"
	"ledgerbot/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the bot and the reconciliation scheduler
func Run(ctx context.Context) error {
	log.Info("Starting ledgerbot...")

	cfg := config.Get()
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}
	metrics := observability.GetMetrics()

	// Ledger storage
	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	// Events
	eventBus := events.NewBus()
	application.RegisterMetricsSubscriptions(eventBus, metrics)

	var eventPublisher interfaces.EventPublisher = eventBus
	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := natsClient.Connect(connectCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		mapper := infrastructure.NewEventSubjectMapper()
		if err := natsClient.EnsureStream(infrastructure.InvoiceEventStream, mapper.GetAllSubjects()); err != nil {
			return fmt.Errorf("failed to ensure NATS stream: %w", err)
		}
		eventPublisher = infrastructure.NewNATSEventPublisher(natsClient, mapper, eventBus)
	} else {
		log.Info("NATS_SERVERS not set, events stay in process")
	}

	// Invoice lottery
	fetcher := announcement.NewEtaxFetcher(cfg.AnnouncementURL, &http.Client{Timeout: cfg.AnnouncementTimeout})
	store := services.NewWinningNumberStore(fetcher, services.WithRefreshPublisher(eventPublisher))
	matcher := services.NewPrizeMatcher(store)

	// Discord
	session, err := bot.NewSession(bot.Config{Token: cfg.DiscordToken})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord session: %w", err)
	}
	messenger := gateway.NewDiscordGateway(session)

	reconciliation := services.NewReconciliationService(
		stores.ledger, stores.notifications, matcher, messenger, eventPublisher, loc)
	worker, err := application.NewReconciliationWorker(
		store, reconciliation, eventPublisher, metrics, cfg.ReconcileSchedule, loc)
	if err != nil {
		return err
	}

	// Bookkeeping
	ledgerService := services.NewLedgerService(stores.ledger, eventPublisher, cfg.MonthlyBudget, loc)
	contentParser, closeParser := newContentParser(ctx, cfg, loc)
	defer closeParser()

	handler := bot.NewHandler(bot.HandlerConfig{
		FamilyAccountIDs: cfg.FamilyAccountIDs,
		AdminAccountIDs:  cfg.AdminAccountIDs,
		Location:         loc,
	}, ledgerService, contentParser, matcher, worker, newCardGenerator(cfg))

	discordBot := bot.New(session, handler)
	if err := discordBot.Open(); err != nil {
		return fmt.Errorf("failed to connect to Discord: %w", err)
	}
	log.Info("Discord bot connected")

	stopWorker := worker.Start(ctx)

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"backend":     cfg.LedgerBackend,
		"schedule":    cfg.ReconcileSchedule,
		"nextRun":     worker.NextRun(time.Now()),
	}).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	stopWorker()

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}
	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS client")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Warn("Failed to flush metrics")
	}

	log.Info("Shutdown completed")
	return nil
}

// ledgerStores bundles the ledger backend with its notification history
type ledgerStores struct {
	ledger        interfaces.LedgerRepository
	notifications interfaces.PrizeNotificationRepository
	db            *database.DB
}

func (s *ledgerStores) Close() {
	if s.db != nil {
		log.Info("Closing database connection...")
		s.db.Close()
	}
}

// openStores connects the configured ledger backend. The sheets backend keeps its
// notification history in memory. Disabled dedupe leaves notifications nil.
func openStores(ctx context.Context, cfg *config.Config) (*ledgerStores, error) {
	stores := &ledgerStores{}

	switch cfg.LedgerBackend {
	case config.LedgerBackendSheets:
		log.WithField("spreadsheet", cfg.GoogleSheetsID).Info("Using Google Sheets ledger")
		service, err := ledger.NewSheetsService(ctx, cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, err
		}
		sheetsLedger, err := ledger.NewSheetsLedger(ctx, service, cfg.GoogleSheetsID)
		if err != nil {
			return nil, err
		}
		stores.ledger = sheetsLedger
		stores.notifications = repository.NewMemoryPrizeNotificationRepository()

	default:
		databaseURL := cfg.GetDatabaseURL()
		log.WithField("url", database.RedactDatabaseURL(databaseURL)).Info("Connecting to database...")
		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrationsWithURL(databaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		stores.db = db
		stores.ledger = repository.NewLedgerRepository(db)
		stores.notifications = repository.NewPrizeNotificationRepository(db)
	}

	if !cfg.NotifyDedupe {
		log.Info("Notification dedupe disabled, winners are reminded on every sweep")
		stores.notifications = nil
	}
	return stores, nil
}

// newContentParser prefers Gemini and falls back to the text parser
func newContentParser(ctx context.Context, cfg *config.Config, loc *time.Location) (interfaces.ContentParser, func()) {
	textParser := parser.NewTextParser(loc)
	if cfg.GeminiAPIKey == "" {
		log.Info("GEMINI_API_KEY not set, using the text parser only")
		return textParser, func() {}
	}

	gemini, err := parser.NewGeminiParser(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, loc)
	if err != nil {
		log.WithError(err).Warn("Failed to create Gemini parser, using the text parser only")
		return textParser, func() {}
	}

	return parser.NewFallbackParser(gemini, textParser), func() {
		if err := gemini.Close(); err != nil {
			log.WithError(err).Warn("Failed to close Gemini client")
		}
	}
}

func newCardGenerator(cfg *config.Config) bot.CardRenderer {
	if cfg.SummaryFontFile == "" {
		return summary.NewCardGenerator()
	}
	cards, err := summary.NewCardGeneratorWithFont(cfg.SummaryFontFile)
	if err != nil {
		log.WithFields(log.Fields{
			"font":  cfg.SummaryFontFile,
			"error": err,
		}).Warn("Failed to load summary font, using Go Mono")
		return summary.NewCardGenerator()
	}
	return cards
}
