package notifier

import (
	"time"
)

// Topic groups events by the client concern that consumes them.
type Topic string

const (
	TopicReservations  Topic = "reservations"
	TopicNotifications Topic = "notifications"
	TopicUsers         Topic = "users"
)

// Event type names are part of the client contract and must not change.
const (
	EventReservationCreated   = "reservation_created"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationUpdated   = "reservation_updated"
	EventReservationDeleted   = "reservation_deleted"
	EventNewNotification      = "new_notification"
	EventNewUser              = "new_user"
)

// Event is one fan-out message. Payload must be JSON-marshalable.
type Event struct {
	Type      string      `json:"type"`
	Topic     Topic       `json:"topic"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, topic Topic, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}
