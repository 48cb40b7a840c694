package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"
	"ledgerbot/events"
	"ledgerbot/infrastructure/observability"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// ErrRunInProgress is returned when a run is triggered while another one is still going
var ErrRunInProgress = errors.New("reconciliation run already in progress")

// WorkerState is the phase of the reconciliation worker
type WorkerState int32

const (
	StateIdle WorkerState = iota
	StateFetching
	StateScanning
)

func (s WorkerState) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateScanning:
		return "scanning"
	default:
		return "idle"
	}
}

// RunReport describes one completed reconciliation run
type RunReport struct {
	Trigger   string
	StartedAt time.Time
	Duration  time.Duration
	Result    *interfaces.SweepResult
}

// ReconciliationWorker refreshes the winning numbers and sweeps the ledger on a cron schedule
type ReconciliationWorker struct {
	store          interfaces.WinningNumberStore
	service        interfaces.ReconciliationService
	eventPublisher interfaces.EventPublisher
	metrics        *observability.MetricsProvider

	schedule cron.Schedule
	spec     string
	location *time.Location

	running sync.Mutex
	state   atomic.Int32
	now     func() time.Time
}

// NewReconciliationWorker creates a worker for a standard five field cron spec evaluated in location
func NewReconciliationWorker(
	store interfaces.WinningNumberStore,
	service interfaces.ReconciliationService,
	eventPublisher interfaces.EventPublisher,
	metrics *observability.MetricsProvider,
	spec string,
	location *time.Location,
) (*ReconciliationWorker, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reconciliation schedule %q: %w", spec, err)
	}
	if location == nil {
		location = time.UTC
	}

	return &ReconciliationWorker{
		store:          store,
		service:        service,
		eventPublisher: eventPublisher,
		metrics:        metrics,
		schedule:       schedule,
		spec:           spec,
		location:       location,
		now:            time.Now,
	}, nil
}

// State returns the current phase
func (w *ReconciliationWorker) State() WorkerState {
	return WorkerState(w.state.Load())
}

// NextRun returns the next scheduled run after t
func (w *ReconciliationWorker) NextRun(t time.Time) time.Time {
	return w.schedule.Next(t.In(w.location))
}

// Start runs the worker on its schedule until ctx is cancelled or the returned stop function is called
func (w *ReconciliationWorker) Start(ctx context.Context) func() {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(w.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(w.schedule, cron.FuncJob(func() {
		if _, err := w.run(ctx, observability.TriggerSchedule); err != nil {
			log.WithError(err).Error("Scheduled reconciliation run failed")
		}
	}))
	c.Start()

	log.WithFields(log.Fields{
		"schedule": w.spec,
		"timezone": w.location.String(),
		"nextRun":  w.NextRun(w.now()),
	}).Info("Reconciliation worker started")

	stopChan := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(stopChan)
			<-c.Stop().Done()
			log.Info("Reconciliation worker stopped")
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			log.Info("Reconciliation worker shutting down (context cancelled)...")
			stop()
		case <-stopChan:
		}
	}()

	return stop
}

// RunNow performs one run immediately. It returns ErrRunInProgress instead of waiting when
// another run holds the worker.
func (w *ReconciliationWorker) RunNow(ctx context.Context) (*RunReport, error) {
	return w.run(ctx, observability.TriggerManual)
}

func (w *ReconciliationWorker) run(ctx context.Context, trigger string) (*RunReport, error) {
	if !w.running.TryLock() {
		log.WithField("trigger", trigger).Warn("Reconciliation run skipped, another run is in progress")
		w.metrics.RecordReconciliationRun(trigger, observability.OutcomeSkipped, 0)
		return nil, ErrRunInProgress
	}
	defer w.running.Unlock()
	defer w.setState(StateIdle)

	startedAt := w.now()
	log.WithField("trigger", trigger).Info("Starting reconciliation run")

	w.setState(StateFetching)
	if err := w.store.Refresh(ctx); err != nil {
		kind := "unknown"
		var fetchErr *entities.FetchError
		switch {
		case errors.As(err, &fetchErr):
			kind = string(fetchErr.Kind)
		case errors.Is(err, entities.ErrEmptyCache):
			kind = "empty_cache"
		}
		w.metrics.RecordFetchFailure(kind)
		w.metrics.RecordReconciliationRun(trigger, observability.OutcomeFetchFailed, w.now().Sub(startedAt))

		log.WithFields(log.Fields{
			"trigger": trigger,
			"kind":    kind,
			"error":   err,
		}).Error("Aborting reconciliation run, winning numbers unavailable")
		return nil, fmt.Errorf("failed to refresh winning numbers: %w", err)
	}

	w.setState(StateScanning)
	result, err := w.service.Sweep(ctx)
	if err != nil {
		w.metrics.RecordReconciliationRun(trigger, observability.OutcomeSweepFailed, w.now().Sub(startedAt))
		return nil, fmt.Errorf("failed to sweep ledger: %w", err)
	}

	duration := w.now().Sub(startedAt)
	w.metrics.RecordReconciliationRun(trigger, observability.OutcomeCompleted, duration)
	w.metrics.RecordNotifications(observability.NotificationSent, result.Notified)
	w.metrics.RecordNotifications(observability.NotificationSkipped, result.AlreadyNotified)
	w.metrics.RecordNotifications(observability.NotificationFailed, result.Failed)

	if w.eventPublisher != nil {
		if err := w.eventPublisher.Publish(events.ReconciliationCompletedEvent{
			Scanned:  result.Scanned,
			Winners:  result.Winners,
			Notified: result.Notified,
			Failed:   result.Failed,
			Duration: duration,
		}); err != nil {
			log.WithError(err).Warn("Failed to publish reconciliation completed event")
		}
	}

	log.WithFields(log.Fields{
		"trigger":  trigger,
		"duration": duration,
		"winners":  result.Winners,
		"notified": result.Notified,
	}).Info("Reconciliation run completed")

	return &RunReport{
		Trigger:   trigger,
		StartedAt: startedAt,
		Duration:  duration,
		Result:    result,
	}, nil
}

func (w *ReconciliationWorker) setState(s WorkerState) {
	w.state.Store(int32(s))
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(cronFields(keysAndValues)).Debug("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.WithFields(cronFields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func cronFields(keysAndValues []interface{}) log.Fields {
	fields := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
