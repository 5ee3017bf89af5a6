package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"gridiron/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventReceived <- balanceEvent
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		Username:        "alice",
		OldBalance:      100,
		NewBalance:      200,
		TransactionType: models.TransactionTypeBetWin,
		ChangeAmount:    100,
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	require.NoError(t, transactionalBus.Flush(context.Background()))
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan QuestionCreatedEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeQuestionCreated, func(ctx context.Context, event Event) {
		defer wg.Done()
		if created, ok := event.(QuestionCreatedEvent); ok {
			eventsReceived <- created
		}
	})

	for i := int64(1); i <= 3; i++ {
		transactionalBus.Publish(QuestionCreatedEvent{QuestionID: i, GameID: 7, Prompt: "Q"})
	}

	require.NoError(t, transactionalBus.Flush(context.Background()))
	wg.Wait()
	close(eventsReceived)

	// Order may vary because handlers run in goroutines
	ids := make(map[int64]bool)
	for received := range eventsReceived {
		ids[received.QuestionID] = true
	}
	assert.Equal(t, map[int64]bool{1: true, 2: true, 3: true}, ids)
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeBetPlaced, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(BetPlacedEvent{BetID: 1, Username: "alice", QuestionID: 2, Amount: 50})
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_HandlerPanicDoesNotAffectOthers(t *testing.T) {
	bus := NewBus()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(EventTypeRoomMembership, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeRoomMembership, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	bus.Emit(context.Background(), RoomMembershipEvent{Username: "bob", RoomID: 1, Joined: true})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("healthy handler was not called")
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	received := make(chan EventType, len(AllEventTypes()))
	bus.SubscribeAll(func(ctx context.Context, event Event) {
		received <- event.Type()
	})

	bus.Emit(context.Background(), TimerStateChangeEvent{RoomID: 3, Running: true})

	select {
	case eventType := <-received:
		assert.Equal(t, EventTypeTimerStateChange, eventType)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}
