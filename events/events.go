package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePrizeWon              EventType = "prize_won"
	EventTypeLedgerRecorded        EventType = "ledger_recorded"
	EventTypeAnnouncementRefreshed EventType = "announcement_refreshed"
	EventTypeReconciliationDone    EventType = "reconciliation_completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PrizeWonEvent is raised when a winner has been notified about an invoice
type PrizeWonEvent struct {
	AccountID     string `json:"account_id"`
	InvoiceNumber string `json:"invoice_number"`
	Period        string `json:"period"`
	Tier          string `json:"tier"`
	PrizeAmount   int64  `json:"prize_amount"`
	EntryDate     string `json:"entry_date"`
}

func (e PrizeWonEvent) Type() EventType {
	return EventTypePrizeWon
}

// LedgerRecordedEvent is raised after records were appended to the ledger
type LedgerRecordedEvent struct {
	AccountID   string `json:"account_id"`
	RecordCount int    `json:"record_count"`
	Total       string `json:"total"`
}

func (e LedgerRecordedEvent) Type() EventType {
	return EventTypeLedgerRecorded
}

// AnnouncementRefreshedEvent is raised after the winning number cache was refreshed
type AnnouncementRefreshedEvent struct {
	Periods     []string  `json:"periods"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

func (e AnnouncementRefreshedEvent) Type() EventType {
	return EventTypeAnnouncementRefreshed
}

// ReconciliationCompletedEvent summarizes one reconciliation sweep
type ReconciliationCompletedEvent struct {
	Scanned  int           `json:"scanned"`
	Winners  int           `json:"winners"`
	Notified int           `json:"notified"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

func (e ReconciliationCompletedEvent) Type() EventType {
	return EventTypeReconciliationDone
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages in-process event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish emits the event and never fails, so a Bus can stand in for any event publisher
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}
