package events

import (
	"context"
	"sync"

	"gridiron/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange    EventType = "balance_change"
	EventTypeUserCreated      EventType = "user_created"
	EventTypeBetPlaced        EventType = "bet_placed"
	EventTypeQuestionCreated  EventType = "question_created"
	EventTypeQuestionResolved EventType = "question_resolved"
	EventTypeRoomMembership   EventType = "room_membership"
	EventTypeTimerStateChange EventType = "timer_state_change"
)

// AllEventTypes lists every event type emitted by the application
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeBalanceChange,
		EventTypeUserCreated,
		EventTypeBetPlaced,
		EventTypeQuestionCreated,
		EventTypeQuestionResolved,
		EventTypeRoomMembership,
		EventTypeTimerStateChange,
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	Username        string                 `json:"username"`
	OldBalance      int64                  `json:"old_balance"`
	NewBalance      int64                  `json:"new_balance"`
	TransactionType models.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                  `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	Username       string `json:"username"`
	InitialBalance int64  `json:"initial_balance"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// BetPlacedEvent represents a bet that was placed
type BetPlacedEvent struct {
	BetID      int64             `json:"bet_id"`
	Username   string            `json:"username"`
	QuestionID int64             `json:"question_id"`
	RoomID     *int64            `json:"room_id,omitempty"`
	Answer     models.Resolution `json:"answer"`
	Amount     int64             `json:"amount"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// QuestionCreatedEvent represents a question becoming available for bets
type QuestionCreatedEvent struct {
	QuestionID int64               `json:"question_id"`
	GameID     int64               `json:"game_id"`
	RoomID     *int64              `json:"room_id,omitempty"`
	Kind       models.QuestionType `json:"question_type"`
	Prompt     string              `json:"question"`
	Options    []string            `json:"options"`
	Fallback   bool                `json:"fallback"`
}

func (e QuestionCreatedEvent) Type() EventType {
	return EventTypeQuestionCreated
}

// QuestionResolvedEvent represents a question and all its bets being settled
type QuestionResolvedEvent struct {
	QuestionID     int64             `json:"question_id"`
	GameID         int64             `json:"game_id"`
	RoomID         *int64            `json:"room_id,omitempty"`
	Prompt         string            `json:"question"`
	Answer         models.Resolution `json:"answer"`
	ActualValue    float64           `json:"actual_value"`
	Winners        int               `json:"winners"`
	Losers         int               `json:"losers"`
	TotalPaidOut   int64             `json:"total_paid_out"`
	TotalCollected int64             `json:"total_collected"`
}

func (e QuestionResolvedEvent) Type() EventType {
	return EventTypeQuestionResolved
}

// RoomMembershipEvent represents a user joining or leaving a room
type RoomMembershipEvent struct {
	Username string `json:"username"`
	RoomID   int64  `json:"room_id"`
	Joined   bool   `json:"joined"`
}

func (e RoomMembershipEvent) Type() EventType {
	return EventTypeRoomMembership
}

// TimerStateChangeEvent represents a room's question timer starting or stopping
type TimerStateChangeEvent struct {
	RoomID  int64  `json:"room_id"`
	GameID  int64  `json:"game_id"`
	Running bool   `json:"running"`
	Reason  string `json:"reason,omitempty"`
}

func (e TimerStateChangeEvent) Type() EventType {
	return EventTypeTimerStateChange
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
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
	}).Debug("Subscribed handler to event type on main event bus")
}

// SubscribeAll adds handler for every event type in AllEventTypes
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes() {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

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

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus once the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit. Handlers receive a background
// context because the transaction's context may already be done.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus to main event bus")

	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of events waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
