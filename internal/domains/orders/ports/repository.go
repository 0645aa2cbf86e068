package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConflict means the order moved since it was read; callers re-read and retry.
	ErrConflict = errors.New("order was modified concurrently")
)

// OrderFilter narrows List results. Zero values mean "no restriction".
type OrderFilter struct {
	StoreID  int64
	Statuses []domain.Status
}

// StatusChange is a guarded write of the status and its derived fields.
type StatusChange struct {
	OrderID           int64
	ExpectedStatus    domain.Status
	ExpectedVersion   int64
	Status            domain.Status
	FulfillmentStatus domain.FulfillmentStatus
	Shipment          domain.Shipment
	UpdatedAt         time.Time
}

// OrderRepository persists order rows.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	// CompareAndSetStatus applies change only if the row still has the expected status and version.
	CompareAndSetStatus(ctx context.Context, change StatusChange) (*domain.Order, error)
}

// HistoryRepository is the append-only status log.
type HistoryRepository interface {
	Append(ctx context.Context, transition domain.StatusTransition) (domain.StatusTransition, error)
	// ListByOrder returns transitions newest first.
	ListByOrder(ctx context.Context, orderID int64) ([]domain.StatusTransition, error)
}

// Repositories groups the repositories bound to one unit of work.
type Repositories struct {
	Orders  OrderRepository
	History HistoryRepository
}

// UnitOfWork runs fn atomically: every write inside it commits, or none does.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
