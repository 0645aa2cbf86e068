package domain

import (
	"time"

	"github.com/google/uuid"
)

// Shipment holds the optional carrier details attached to an order.
type Shipment struct {
	TrackingNumber        *string
	TrackingURL           *string
	Carrier               *string
	EstimatedDeliveryDate *time.Time
}

// IsZero reports whether no shipment field is set.
func (s Shipment) IsZero() bool {
	return s.TrackingNumber == nil && s.TrackingURL == nil && s.Carrier == nil && s.EstimatedDeliveryDate == nil
}

// Order is the purchase order aggregate as seen by the lifecycle service.
type Order struct {
	ID                int64
	UUID              string
	StoreID           int64
	CustomerID        int64
	Status            Status
	FulfillmentStatus FulfillmentStatus
	Shipment          Shipment
	// Version increments on every committed write and guards compare-and-set updates.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder validates and constructs a pending, unfulfilled order.
func NewOrder(storeID, customerID int64) (*Order, error) {
	order := &Order{
		UUID:              uuid.NewString(),
		StoreID:           storeID,
		CustomerID:        customerID,
		Status:            StatusPending,
		FulfillmentStatus: FulfillmentUnfulfilled,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.StoreID <= 0 {
		return ErrInvalidStore
	}
	if o.CustomerID <= 0 {
		return ErrInvalidCustomer
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// ApplyStatus moves the order to next and recomputes the fulfillment status.
// It does not check the transition table; see AttemptTransition.
func (o *Order) ApplyStatus(next Status, at time.Time) {
	o.Status = next
	if fs, ok := DeriveFulfillmentStatus(next); ok {
		o.FulfillmentStatus = fs
	}
	o.UpdatedAt = at
}

// ApplyShipment merges the non-nil shipment fields.
func (o *Order) ApplyShipment(s Shipment) {
	if s.TrackingNumber != nil {
		o.Shipment.TrackingNumber = s.TrackingNumber
	}
	if s.TrackingURL != nil {
		o.Shipment.TrackingURL = s.TrackingURL
	}
	if s.Carrier != nil {
		o.Shipment.Carrier = s.Carrier
	}
	if s.EstimatedDeliveryDate != nil {
		o.Shipment.EstimatedDeliveryDate = s.EstimatedDeliveryDate
	}
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Shipment = Shipment{
		TrackingNumber:        cloneString(o.Shipment.TrackingNumber),
		TrackingURL:           cloneString(o.Shipment.TrackingURL),
		Carrier:               cloneString(o.Shipment.Carrier),
		EstimatedDeliveryDate: cloneTime(o.Shipment.EstimatedDeliveryDate),
	}
	return &clone
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
