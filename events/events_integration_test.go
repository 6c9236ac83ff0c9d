package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	// Create main event bus
	mainBus := NewBus()

	// Create transactional bus that wraps the main bus
	transactionalBus := NewTransactionalBus(mainBus)

	// Set up a channel to capture received events
	eventReceived := make(chan BalanceChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	// Subscribe to balance change events on the main bus
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			select {
			case eventReceived <- balanceEvent:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	// Create a test event
	testEvent := BalanceChangeEvent{
		UserID:     123456,
		OldBalance: 1000,
		NewBalance: 1500,
		Reason:     "wager",
	}

	// Publish event to transactional bus (simulating service layer)
	transactionalBus.Publish(testEvent)

	// Flush events (simulating successful transaction commit)
	ctx := context.Background()
	err := transactionalBus.Flush(ctx)
	assert.NoError(t, err)

	// Wait for event to be processed
	wg.Wait()

	// Verify the event was received
	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent.UserID, receivedEvent.UserID)
		assert.Equal(t, testEvent.OldBalance, receivedEvent.OldBalance)
		assert.Equal(t, testEvent.NewBalance, receivedEvent.NewBalance)
		assert.Equal(t, testEvent.Reason, receivedEvent.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan TempChannelCreatedEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeTempChannelCreated, func(ctx context.Context, event Event) {
		defer wg.Done()
		if created, ok := event.(TempChannelCreatedEvent); ok {
			eventsReceived <- created
		}
	})

	// Create and publish multiple test events
	testEvents := []TempChannelCreatedEvent{
		{GuildID: 100, ChannelID: 201, OwnerID: 1},
		{GuildID: 100, ChannelID: 202, OwnerID: 2},
		{GuildID: 100, ChannelID: 203, OwnerID: 3},
	}

	for _, event := range testEvents {
		transactionalBus.Publish(event)
	}

	// Flush all events
	ctx := context.Background()
	err := transactionalBus.Flush(ctx)
	assert.NoError(t, err)

	// Wait for all events to be processed
	wg.Wait()

	// Verify all events were received
	receivedIDs := make(map[int64]bool)
	for i := 0; i < 3; i++ {
		select {
		case event := <-eventsReceived:
			receivedIDs[event.ChannelID] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("Only received %d out of 3 events", len(receivedIDs))
		}
	}
	for _, event := range testEvents {
		assert.True(t, receivedIDs[event.ChannelID], "missing event for channel %d", event.ChannelID)
	}
}

// TestDiscardDropsPendingEvents tests that a rollback discards stashed events
func TestDiscardDropsPendingEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	delivered := make(chan Event, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		delivered <- event
	})

	transactionalBus.Publish(BalanceChangeEvent{UserID: 1, OldBalance: 10, NewBalance: 20, Reason: "daily_claim"})
	transactionalBus.Discard()

	// A flush after discard emits nothing
	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)

	select {
	case event := <-delivered:
		t.Fatalf("Expected no events after discard, got %v", event)
	case <-time.After(100 * time.Millisecond):
	}
}
