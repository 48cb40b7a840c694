package infrastructure

import (
	"fmt"

	"ledgerbot/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypePrizeWon:
		return "invoice.prize.won"
	case events.EventTypeAnnouncementRefreshed:
		return "invoice.announcement.refreshed"
	case events.EventTypeReconciliationDone:
		return "invoice.reconciliation.completed"
	case events.EventTypeLedgerRecorded:
		return "invoice.ledger.recorded"
	default:
		return fmt.Sprintf("invoice.unknown.%s", event.Type())
	}
}

// GetAllSubjects returns the subject filter of the invoice event stream
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{"invoice.>"}
}
