package infrastructure

import (
	"fmt"

	"gridiron/events"
)

// DomainEventStream is the JetStream stream holding every published event
const DomainEventStream = "gridiron_events"

var eventSubjects = map[events.EventType]string{
	events.EventTypeBalanceChange:    "users.balance_changed",
	events.EventTypeUserCreated:      "users.created",
	events.EventTypeBetPlaced:        "betting.placed",
	events.EventTypeQuestionCreated:  "questions.created",
	events.EventTypeQuestionResolved: "questions.resolved",
	events.EventTypeRoomMembership:   "rooms.membership_changed",
	events.EventTypeTimerStateChange: "rooms.timer_changed",
}

// MapEventToSubject converts a domain event type to its NATS subject
func MapEventToSubject(eventType events.EventType) string {
	if subject, ok := eventSubjects[eventType]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", eventType)
}

// AllSubjects lists the subjects of every known event type
func AllSubjects() []string {
	subjects := make([]string, 0, len(eventSubjects))
	for _, eventType := range events.AllEventTypes() {
		subjects = append(subjects, MapEventToSubject(eventType))
	}
	return subjects
}
