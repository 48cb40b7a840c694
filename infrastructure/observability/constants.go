package observability

// Metric name prefixes
const (
	MetricPrefix = "ledgerbot"
)

// Metric names
const (
	// Reconciliation metrics
	ReconciliationRunsTotal   = MetricPrefix + ".reconciliation.runs_total"
	ReconciliationDuration    = MetricPrefix + ".reconciliation.duration"
	NotificationsTotal        = MetricPrefix + ".reconciliation.notifications_total"
	PrizeMatchesTotal         = MetricPrefix + ".prizes.matches_total"
	AnnouncementFetchFailures = MetricPrefix + ".announcement.fetch_failures_total"

	// Ledger metrics
	LedgerRecordsTotal = MetricPrefix + ".ledger.records_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelOutcome   = "outcome"
	LabelTier      = "tier"
	LabelStatus    = "status"
	LabelEventType = "event_type"
	LabelErrorType = "error_type"
	LabelTrigger   = "trigger"
)

// Reconciliation run outcomes
const (
	OutcomeCompleted   = "completed"
	OutcomeFetchFailed = "fetch_failed"
	OutcomeSweepFailed = "sweep_failed"
	OutcomeSkipped     = "skipped"
)

// Notification statuses
const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "already_notified"
)

// Run triggers
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)
