package postgres

import (
	"time"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
)

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID                    int64      `gorm:"primaryKey;column:id"`
	UUID                  string     `gorm:"column:uuid;type:varchar(36);uniqueIndex"`
	StoreID               int64      `gorm:"column:store_id;index:idx_orders_store_status"`
	CustomerID            int64      `gorm:"column:customer_id;index"`
	Status                string     `gorm:"column:status;type:varchar(32);index:idx_orders_store_status"`
	FulfillmentStatus     string     `gorm:"column:fulfillment_status;type:varchar(32)"`
	TrackingNumber        *string    `gorm:"column:tracking_number"`
	TrackingURL           *string    `gorm:"column:tracking_url"`
	Carrier               *string    `gorm:"column:carrier"`
	EstimatedDeliveryDate *time.Time `gorm:"column:estimated_delivery_date"`
	Version               int64      `gorm:"column:version;not null;default:1"`
	CreatedAt             time.Time  `gorm:"column:created_at;index"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

// historyRecord is one row of the append-only status log.
// Order is never loaded; it only declares the foreign key to orders(id).
type historyRecord struct {
	ID        int64        `gorm:"primaryKey;column:id"`
	OrderID   int64        `gorm:"column:order_id;not null;index:idx_order_status_history_order_created"`
	Order     *orderRecord `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	OldStatus string       `gorm:"column:old_status;type:varchar(32)"`
	NewStatus string       `gorm:"column:new_status;type:varchar(32)"`
	ChangedBy string       `gorm:"column:changed_by"`
	Notes     string       `gorm:"column:notes;type:text"`
	CreatedAt time.Time    `gorm:"column:created_at;index:idx_order_status_history_order_created"`
}

func (historyRecord) TableName() string { return "order_status_history" }

// Models lists the tables this adapter reads and writes, parents first.
func Models() []any {
	return []any{&orderRecord{}, &historyRecord{}}
}

func toOrderRecord(order *domain.Order) orderRecord {
	return orderRecord{
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
		Version:               order.Version,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:                r.ID,
		UUID:              r.UUID,
		StoreID:           r.StoreID,
		CustomerID:        r.CustomerID,
		Status:            domain.Status(r.Status),
		FulfillmentStatus: domain.FulfillmentStatus(r.FulfillmentStatus),
		Shipment: domain.Shipment{
			TrackingNumber:        r.TrackingNumber,
			TrackingURL:           r.TrackingURL,
			Carrier:               r.Carrier,
			EstimatedDeliveryDate: r.EstimatedDeliveryDate,
		},
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toHistoryRecord(t domain.StatusTransition) historyRecord {
	return historyRecord{
		ID:        t.ID,
		OrderID:   t.OrderID,
		OldStatus: string(t.OldStatus),
		NewStatus: string(t.NewStatus),
		ChangedBy: t.ChangedBy,
		Notes:     t.Notes,
		CreatedAt: t.Timestamp,
	}
}

func (r historyRecord) toDomain() domain.StatusTransition {
	return domain.StatusTransition{
		ID:        r.ID,
		OrderID:   r.OrderID,
		OldStatus: domain.Status(r.OldStatus),
		NewStatus: domain.Status(r.NewStatus),
		ChangedBy: r.ChangedBy,
		Notes:     r.Notes,
		Timestamp: r.CreatedAt,
	}
}
