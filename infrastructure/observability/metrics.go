package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledgerbot/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for ledgerbot
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	reconciliationRunsCounter    metric.Int64Counter
	reconciliationDurationHist   metric.Float64Histogram
	notificationsCounter         metric.Int64Counter
	prizeMatchesCounter          metric.Int64Counter
	fetchFailuresCounter         metric.Int64Counter
	ledgerRecordsCounter         metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	interval := time.Duration(mp.config.OTelExportIntervalMillis) * time.Millisecond
	if interval <= 0 {
		interval = time.Minute
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("ledgerbot")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.reconciliationRunsCounter, err = mp.meter.Int64Counter(
		ReconciliationRunsTotal,
		metric.WithDescription("Total number of reconciliation runs"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create reconciliation runs counter: %w", err)
	}

	mp.reconciliationDurationHist, err = mp.meter.Float64Histogram(
		ReconciliationDuration,
		metric.WithDescription("Duration of reconciliation runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create reconciliation duration histogram: %w", err)
	}

	mp.notificationsCounter, err = mp.meter.Int64Counter(
		NotificationsTotal,
		metric.WithDescription("Total number of prize notifications by status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create notifications counter: %w", err)
	}

	mp.prizeMatchesCounter, err = mp.meter.Int64Counter(
		PrizeMatchesTotal,
		metric.WithDescription("Total number of winning invoices by tier"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create prize matches counter: %w", err)
	}

	mp.fetchFailuresCounter, err = mp.meter.Int64Counter(
		AnnouncementFetchFailures,
		metric.WithDescription("Total number of failed announcement fetches"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fetch failures counter: %w", err)
	}

	mp.ledgerRecordsCounter, err = mp.meter.Int64Counter(
		LedgerRecordsTotal,
		metric.WithDescription("Total number of ledger rows recorded"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger records counter: %w", err)
	}

	mp.natsMessagesPublishedCounter, err = mp.meter.Int64Counter(
		NATSMessagesPublishedTotal,
		metric.WithDescription("Total number of NATS messages published"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages published counter: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider == nil {
		return nil
	}
	if err := mp.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	mp.enabled = false
	return nil
}

// RecordReconciliationRun records one run with its trigger, outcome and duration
func (mp *MetricsProvider) RecordReconciliationRun(trigger, outcome string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelTrigger, trigger),
		attribute.String(LabelOutcome, outcome),
	)
	mp.reconciliationRunsCounter.Add(context.Background(), 1, attrs)
	mp.reconciliationDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// RecordNotifications records notification counts of one sweep
func (mp *MetricsProvider) RecordNotifications(status string, count int) {
	if !mp.isEnabled() || count <= 0 {
		return
	}

	mp.notificationsCounter.Add(context.Background(), int64(count),
		metric.WithAttributes(attribute.String(LabelStatus, status)),
	)
}

// RecordPrizeMatch records a winning invoice
func (mp *MetricsProvider) RecordPrizeMatch(tier string) {
	if !mp.isEnabled() {
		return
	}

	mp.prizeMatchesCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelTier, tier)),
	)
}

// RecordFetchFailure records a failed announcement fetch
func (mp *MetricsProvider) RecordFetchFailure(errorType string) {
	if !mp.isEnabled() {
		return
	}

	mp.fetchFailuresCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelErrorType, errorType)),
	)
}

// RecordLedgerRecords records appended ledger rows
func (mp *MetricsProvider) RecordLedgerRecords(count int) {
	if !mp.isEnabled() || count <= 0 {
		return
	}

	mp.ledgerRecordsCounter.Add(context.Background(), int64(count))
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// isEnabled reports whether instruments exist; safe on a nil provider
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider, nil before initialization
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
