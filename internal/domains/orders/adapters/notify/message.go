package notify

import (
	"time"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
)

// Message is the wire shape of a status change published to subscribers.
type Message struct {
	Event             string    `json:"event"`
	EventID           string    `json:"event_id"`
	OrderID           int64     `json:"order_id"`
	OrderUUID         string    `json:"order_uuid,omitempty"`
	StoreID           int64     `json:"store_id"`
	OldStatus         string    `json:"old_status"`
	NewStatus         string    `json:"new_status"`
	FulfillmentStatus string    `json:"fulfillment_status"`
	ChangedBy         string    `json:"changed_by"`
	Timestamp         time.Time `json:"timestamp"`
}

func NewMessage(event domain.StatusChanged) Message {
	return Message{
		Event:             event.EventName(),
		EventID:           event.EventID,
		OrderID:           event.OrderID,
		OrderUUID:         event.OrderUUID,
		StoreID:           event.StoreID,
		OldStatus:         string(event.OldStatus),
		NewStatus:         string(event.NewStatus),
		FulfillmentStatus: string(event.FulfillmentStatus),
		ChangedBy:         event.ChangedBy,
		Timestamp:         event.Timestamp,
	}
}
