package types

import (
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
)

// UpdateStatusInput is a single-order status change request.
type UpdateStatusInput struct {
	Actor    domain.Actor
	OrderID  int64
	Status   string
	Notes    string
	Shipment domain.Shipment
}

// UpdateStatusResult reports the committed (or no-op) change.
type UpdateStatusResult struct {
	OrderID           int64
	OldStatus         domain.Status
	NewStatus         domain.Status
	FulfillmentStatus domain.FulfillmentStatus
	Order             *domain.Order
}

// BulkUpdateInput applies one status to many orders.
type BulkUpdateInput struct {
	Actor    domain.Actor
	OrderIDs []int64
	Status   string
	Notes    string
}

// BulkItemError is the isolated failure of one order in a bulk request.
type BulkItemError struct {
	OrderID int64
	Error   string
}

// BulkResult summarizes a bulk request. Partial failure is a normal outcome.
type BulkResult struct {
	UpdatedCount int
	Errors       []BulkItemError
}

// OrderRef addresses one order on behalf of an actor.
type OrderRef struct {
	Actor   domain.Actor
	OrderID int64
}

// AvailableTransitionsResult drives client-side pre-flight checks.
type AvailableTransitionsResult struct {
	OrderID            int64
	CurrentStatus      domain.Status
	AllowedTransitions []domain.Status
}

// PlaceOrderInput creates a new pending order.
type PlaceOrderInput struct {
	Actor      domain.Actor
	StoreID    int64
	CustomerID int64
}

// ListOrdersInput filters the order listing.
type ListOrdersInput struct {
	Actor    domain.Actor
	Statuses []string
}
