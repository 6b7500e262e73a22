package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a booking lifecycle event
type EventType string

const (
	EventHoldCreated      EventType = "hold.created"
	EventHoldExpired      EventType = "hold.expired"
	EventHoldCancelled    EventType = "hold.cancelled"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventOrderAbandoned   EventType = "order.abandoned"
)

// BookingEvent is the message published for downstream consumers (email,
// analytics) on every state transition of the booking flow
type BookingEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	HoldID     string    `json:"hold_id"`
	BookingID  string    `json:"booking_id,omitempty"`
	OrderRef   string    `json:"order_ref,omitempty"`
	SeatIDs    []string  `json:"seat_ids,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBookingEvent creates an event stamped with a fresh id and timestamp
func NewBookingEvent(eventType EventType, holdID string) *BookingEvent {
	return &BookingEvent{
		ID:         uuid.New(),
		Type:       eventType,
		HoldID:     holdID,
		OccurredAt: time.Now(),
	}
}

// ToJSON serializes the event for the wire
func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GetPartitionKey routes all events of one hold to the same partition so
// consumers observe the hold's transitions in order
func (e *BookingEvent) GetPartitionKey() string {
	return e.HoldID
}
