package mapper

import (
	"time"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
)

// Order is the transport shape of an order.
type Order struct {
	ID                    int64      `json:"id"`
	UUID                  string     `json:"uuid"`
	StoreID               int64      `json:"store_id"`
	CustomerID            int64      `json:"customer_id"`
	Status                string     `json:"status"`
	FulfillmentStatus     string     `json:"fulfillment_status"`
	TrackingNumber        *string    `json:"tracking_number,omitempty"`
	TrackingURL           *string    `json:"tracking_url,omitempty"`
	Carrier               *string    `json:"carrier,omitempty"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type PlaceOrderRequest struct {
	StoreID    int64 `json:"store_id"`
	CustomerID int64 `json:"customer_id"`
}

// UpdateStatusRequest is the body of PUT /orders/:id/status.
// Status is checked by the lifecycle so a blank value reports the valid set.
type UpdateStatusRequest struct {
	Status                string     `json:"status"`
	Notes                 string     `json:"notes"`
	TrackingNumber        *string    `json:"tracking_number"`
	TrackingURL           *string    `json:"tracking_url"`
	Carrier               *string    `json:"carrier"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
}

type UpdateStatusResponse struct {
	OldStatus         string `json:"old_status"`
	NewStatus         string `json:"new_status"`
	FulfillmentStatus string `json:"fulfillment_status"`
}

type BulkStatusRequest struct {
	OrderIDs []int64 `json:"order_ids" binding:"required"`
	Status   string  `json:"status"`
	Notes    string  `json:"notes"`
}

type BulkItemError struct {
	OrderID int64  `json:"order_id"`
	Error   string `json:"error"`
}

type BulkStatusResponse struct {
	UpdatedCount int             `json:"updated_count"`
	Errors       []BulkItemError `json:"errors"`
}

type Transition struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	History []Transition `json:"history"`
}

type AvailableTransitionsResponse struct {
	OrderID            int64    `json:"order_id"`
	CurrentStatus      string   `json:"current_status"`
	AllowedTransitions []string `json:"allowed_transitions"`
}

// StatusCatalogue lists every status and the legal moves between them.
type StatusCatalogue struct {
	Statuses            []string            `json:"statuses"`
	FulfillmentStatuses []string            `json:"fulfillment_statuses"`
	Transitions         map[string][]string `json:"transitions"`
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	return Order{
		ID:                    order.ID,
		UUID:                  order.UUID,
		StoreID:               order.StoreID,
		CustomerID:            order.CustomerID,
		Status:                string(order.Status),
		FulfillmentStatus:     string(order.FulfillmentStatus),
		TrackingNumber:        order.Shipment.TrackingNumber,
		TrackingURL:           order.Shipment.TrackingURL,
		Carrier:               order.Shipment.Carrier,
		EstimatedDeliveryDate: order.Shipment.EstimatedDeliveryDate,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
}

func FromDomainOrders(orders []*domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromDomainOrder(o))
	}
	return out
}

// ToUpdateStatusInput converts the request body into the use case input.
func ToUpdateStatusInput(actor domain.Actor, orderID int64, req UpdateStatusRequest) types.UpdateStatusInput {
	return types.UpdateStatusInput{
		Actor:   actor,
		OrderID: orderID,
		Status:  req.Status,
		Notes:   req.Notes,
		Shipment: domain.Shipment{
			TrackingNumber:        req.TrackingNumber,
			TrackingURL:           req.TrackingURL,
			Carrier:               req.Carrier,
			EstimatedDeliveryDate: req.EstimatedDeliveryDate,
		},
	}
}

func FromUpdateStatusResult(result *types.UpdateStatusResult) UpdateStatusResponse {
	return UpdateStatusResponse{
		OldStatus:         string(result.OldStatus),
		NewStatus:         string(result.NewStatus),
		FulfillmentStatus: string(result.FulfillmentStatus),
	}
}

func FromBulkResult(result *types.BulkResult) BulkStatusResponse {
	resp := BulkStatusResponse{UpdatedCount: result.UpdatedCount, Errors: make([]BulkItemError, 0, len(result.Errors))}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, BulkItemError{OrderID: e.OrderID, Error: e.Error})
	}
	return resp
}

func FromHistory(history []domain.StatusTransition) HistoryResponse {
	resp := HistoryResponse{History: make([]Transition, 0, len(history))}
	for _, t := range history {
		resp.History = append(resp.History, Transition{
			ID:        t.ID,
			OrderID:   t.OrderID,
			OldStatus: string(t.OldStatus),
			NewStatus: string(t.NewStatus),
			ChangedBy: t.ChangedBy,
			Notes:     t.Notes,
			Timestamp: t.Timestamp,
		})
	}
	return resp
}

func FromAvailableTransitions(result *types.AvailableTransitionsResult) AvailableTransitionsResponse {
	return AvailableTransitionsResponse{
		OrderID:            result.OrderID,
		CurrentStatus:      string(result.CurrentStatus),
		AllowedTransitions: Statuses(result.AllowedTransitions),
	}
}

// Catalogue renders the static status tables.
func Catalogue() StatusCatalogue {
	table := domain.TransitionTable()
	transitions := make(map[string][]string, len(table))
	for from, to := range table {
		transitions[string(from)] = Statuses(to)
	}
	fulfillment := make([]string, 0)
	for _, fs := range domain.AllFulfillmentStatuses() {
		fulfillment = append(fulfillment, string(fs))
	}
	return StatusCatalogue{
		Statuses:            Statuses(domain.AllStatuses()),
		FulfillmentStatuses: fulfillment,
		Transitions:         transitions,
	}
}

// Statuses renders a status list; never nil so it encodes as [].
func Statuses(statuses []domain.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// Summary renders per-status counts keyed by status name.
func Summary(summary map[domain.Status]int) map[string]int {
	out := make(map[string]int, len(summary))
	for status, count := range summary {
		out[string(status)] = count
	}
	return out
}
