package ports

import (
	"context"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
)

// Authorizer decides whether an actor may change a given order.
type Authorizer interface {
	Authorize(ctx context.Context, actor domain.Actor, orderID int64) (bool, error)
}

// AuthorizerFunc adapts a plain function to Authorizer.
type AuthorizerFunc func(ctx context.Context, actor domain.Actor, orderID int64) (bool, error)

func (f AuthorizerFunc) Authorize(ctx context.Context, actor domain.Actor, orderID int64) (bool, error) {
	return f(ctx, actor, orderID)
}

// Notifier receives committed status changes. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, event domain.StatusChanged) error
}
