package ports

import (
	"context"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
)

// Service exposes the order lifecycle use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, ref types.OrderRef) (*domain.Order, error)
	ListOrders(ctx context.Context, input types.ListOrdersInput) ([]*domain.Order, error)
	StatusSummary(ctx context.Context, actor domain.Actor) (map[domain.Status]int, error)
	UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*types.UpdateStatusResult, error)
	BulkUpdateStatus(ctx context.Context, input types.BulkUpdateInput) (*types.BulkResult, error)
	AvailableTransitions(ctx context.Context, ref types.OrderRef) (*types.AvailableTransitionsResult, error)
	History(ctx context.Context, ref types.OrderRef) ([]domain.StatusTransition, error)
}
