package domain

import "time"

// StatusTransition is one entry of an order's append-only status history.
type StatusTransition struct {
	ID        int64
	OrderID   int64
	OldStatus Status
	NewStatus Status
	ChangedBy string
	Notes     string
	Timestamp time.Time
}

// RecordTransition builds the audit entry for a committed status change.
// The ID is assigned by the history store on append.
func RecordTransition(orderID int64, old, next Status, changedBy, notes string, at time.Time) StatusTransition {
	return StatusTransition{
		OrderID:   orderID,
		OldStatus: old,
		NewStatus: next,
		ChangedBy: changedBy,
		Notes:     notes,
		Timestamp: at,
	}
}
