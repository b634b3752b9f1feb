package models

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a single operational status update for an order.
// Events are immutable once received; an order may recur with an updated
// status, so identity is the order id plus the arrival timestamp.
type Event struct {
	OrderID          string    `json:"order_id" db:"order_id"`
	Supplier         string    `json:"supplier" db:"supplier"`
	ExpectedDelivery time.Time `json:"expected_delivery" db:"expected_delivery"`
	CurrentStatus    string    `json:"current_status" db:"current_status"`
	ReceivedAt       time.Time `json:"received_at" db:"received_at"`
}

// NewEvent creates an Event stamped with the arrival time.
func NewEvent(orderID, supplier string, expectedDelivery time.Time, currentStatus string) Event {
	return Event{
		OrderID:          orderID,
		Supplier:         supplier,
		ExpectedDelivery: expectedDelivery,
		CurrentStatus:    currentStatus,
		ReceivedAt:       time.Now(),
	}
}

// EventRequest carries an event through the pipeline together with its
// correlation id. The request id ties log lines and the audit entry to
// the inbound call.
type EventRequest struct {
	RequestID uuid.UUID
	Event     Event
}
