package repository

import (
	"context"
	"sync"

	"ledgerbot/domain/entities"
)

type notificationKey struct {
	invoiceNumber string
	period        entities.Period
}

// MemoryPrizeNotificationRepository keeps delivered notifications for the lifetime of the process.
// It backs dedupe when the ledger lives outside postgres.
type MemoryPrizeNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[notificationKey]*entities.PrizeNotification
}

// NewMemoryPrizeNotificationRepository creates an empty in-memory repository
func NewMemoryPrizeNotificationRepository() *MemoryPrizeNotificationRepository {
	return &MemoryPrizeNotificationRepository{
		notifications: make(map[notificationKey]*entities.PrizeNotification),
	}
}

// HasNotified reports whether the invoice was already announced for the period
func (r *MemoryPrizeNotificationRepository) HasNotified(ctx context.Context, invoiceNumber string, period entities.Period) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.notifications[notificationKey{invoiceNumber, period}]
	return ok, nil
}

// Record stores a delivered notification; an existing record for the same pair is kept
func (r *MemoryPrizeNotificationRepository) Record(ctx context.Context, notification *entities.PrizeNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := notificationKey{notification.InvoiceNumber, notification.Period}
	if _, ok := r.notifications[key]; ok {
		return nil
	}

	stored := *notification
	stored.ID = int64(len(r.notifications) + 1)
	r.notifications[key] = &stored
	return nil
}
