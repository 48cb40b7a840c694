package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDelivery(t *testing.T) {
	bus := NewBus()

	received := make(chan PrizeWonEvent, 1)
	bus.Subscribe(EventTypePrizeWon, func(ctx context.Context, event Event) {
		if won, ok := event.(PrizeWonEvent); ok {
			received <- won
		} else {
			t.Errorf("Expected PrizeWonEvent, got %T", event)
		}
	})

	want := PrizeWonEvent{
		AccountID:     "U123",
		InvoiceNumber: "12345678",
		Period:        "114年07-08月",
		Tier:          "sixth",
		PrizeAmount:   200,
		EntryDate:     "2025-07-03 12:00:00",
	}
	require.NoError(t, bus.Publish(want))

	select {
	case got := <-received:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event delivery")
	}
}

func TestBusOnlyDeliversSubscribedTypes(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var types []EventType
	var wg sync.WaitGroup
	wg.Add(2)

	record := func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		types = append(types, event.Type())
		mu.Unlock()
	}
	bus.Subscribe(EventTypeLedgerRecorded, record)
	bus.Subscribe(EventTypeReconciliationDone, record)

	bus.Emit(context.Background(), AnnouncementRefreshedEvent{Periods: []string{"114年07-08月"}})
	bus.Emit(context.Background(), LedgerRecordedEvent{AccountID: "U1", RecordCount: 1, Total: "100"})
	bus.Emit(context.Background(), ReconciliationCompletedEvent{Scanned: 3})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for handlers")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []EventType{EventTypeLedgerRecorded, EventTypeReconciliationDone}, types)
}

func TestBusRecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(EventTypeLedgerRecorded, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeLedgerRecorded, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	bus.Emit(context.Background(), LedgerRecordedEvent{AccountID: "U1"})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("Second handler was not called")
	}
}
