package authz

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

var _ ports.Authorizer = (*StoreOwnerAuthorizer)(nil)

// StoreOwnerAuthorizer lets admins act on any order and staff act on orders of their own store.
// Unknown orders are allowed through so the caller can report them as not found.
type StoreOwnerAuthorizer struct {
	orders ports.OrderRepository
}

func NewStoreOwnerAuthorizer(orders ports.OrderRepository) *StoreOwnerAuthorizer {
	return &StoreOwnerAuthorizer{orders: orders}
}

func (a *StoreOwnerAuthorizer) Authorize(ctx context.Context, actor domain.Actor, orderID int64) (bool, error) {
	if actor.ID == "" {
		return false, nil
	}
	if actor.IsAdmin() {
		return true, nil
	}
	if a == nil || a.orders == nil {
		return false, errors.New("store owner authorizer not configured")
	}
	order, err := a.orders.GetByID(ctx, orderID)
	if errors.Is(err, ports.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return actor.StoreID != 0 && order.StoreID == actor.StoreID, nil
}
