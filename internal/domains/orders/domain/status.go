package domain

import "strings"

// Status enumerates the order lifecycle stages.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusPacking    Status = "packing"
	StatusShipping   Status = "shipping"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// FulfillmentStatus is the logistics view derived from Status.
type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentPartial     FulfillmentStatus = "partial"
	FulfillmentFulfilled   FulfillmentStatus = "fulfilled"
	FulfillmentCancelled   FulfillmentStatus = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusPacking,
	StatusShipping,
	StatusDelivered,
	StatusCancelled,
	StatusRefunded,
}

var allFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentUnfulfilled,
	FulfillmentPartial,
	FulfillmentFulfilled,
	FulfillmentCancelled,
}

// transitions is read-only after init; callers only ever see copies.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusPacking, StatusCancelled},
	StatusPacking:    {StatusShipping, StatusCancelled},
	StatusShipping:   {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// refunded has no entry: fulfillment keeps its prior value.
var fulfillmentByStatus = map[Status]FulfillmentStatus{
	StatusProcessing: FulfillmentPartial,
	StatusPacking:    FulfillmentPartial,
	StatusShipping:   FulfillmentFulfilled,
	StatusDelivered:  FulfillmentFulfilled,
	StatusCancelled:  FulfillmentCancelled,
}

// String returns the wire representation.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is a known lifecycle stage.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// AllStatuses lists every order status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// AllFulfillmentStatuses lists every fulfillment status.
func AllFulfillmentStatuses() []FulfillmentStatus {
	out := make([]FulfillmentStatus, len(allFulfillmentStatuses))
	copy(out, allFulfillmentStatuses)
	return out
}

// TransitionTable returns a copy of the full transition table.
func TransitionTable() map[Status][]Status {
	table := make(map[Status][]Status, len(transitions))
	for from := range transitions {
		table[from] = AvailableTransitions(from)
	}
	return table
}

// ValidateStatusValue parses a raw status and rejects anything outside the enumeration.
func ValidateStatusValue(value string) (Status, error) {
	status := Status(strings.TrimSpace(value))
	if !status.Valid() {
		return "", &InvalidStatusError{Value: value, Valid: AllStatuses()}
	}
	return status, nil
}

// AttemptTransition checks that moving from old to next is allowed.
// Re-applying the current status always succeeds.
func AttemptTransition(old, next Status) error {
	if old == next {
		return nil
	}
	for _, candidate := range transitions[old] {
		if candidate == next {
			return nil
		}
	}
	return &InvalidTransitionError{From: old, To: next, Allowed: AvailableTransitions(old)}
}

// AvailableTransitions returns the statuses reachable from current in one step.
func AvailableTransitions(current Status) []Status {
	next := transitions[current]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// DeriveFulfillmentStatus maps a new order status to its fulfillment status.
// The boolean is false when the caller should keep the existing value.
func DeriveFulfillmentStatus(next Status) (FulfillmentStatus, bool) {
	fs, ok := fulfillmentByStatus[next]
	return fs, ok
}
