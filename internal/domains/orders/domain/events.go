package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// StatusChanged is raised after a status transition has been committed.
type StatusChanged struct {
	EventID           string
	OrderID           int64
	OrderUUID         string
	StoreID           int64
	OldStatus         Status
	NewStatus         Status
	FulfillmentStatus FulfillmentStatus
	ChangedBy         string
	Timestamp         time.Time
}

// NewStatusChanged builds the event for a committed transition of order.
func NewStatusChanged(order *Order, t StatusTransition) StatusChanged {
	return StatusChanged{
		EventID:           uuid.NewString(),
		OrderID:           order.ID,
		OrderUUID:         order.UUID,
		StoreID:           order.StoreID,
		OldStatus:         t.OldStatus,
		NewStatus:         t.NewStatus,
		FulfillmentStatus: order.FulfillmentStatus,
		ChangedBy:         t.ChangedBy,
		Timestamp:         t.Timestamp,
	}
}

// EventName returns the event type identifier.
func (e StatusChanged) EventName() string {
	return "orders.order.status_changed"
}

// OccurredAt returns when the transition was committed.
func (e StatusChanged) OccurredAt() time.Time {
	return e.Timestamp
}
