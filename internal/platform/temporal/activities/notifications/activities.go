package notifications

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

// DeliverStatusChangeActivityName hands a committed status change to the downstream notifier.
const DeliverStatusChangeActivityName = "orders.activities.DeliverStatusChange"

// Activities groups the notification activities of the orders context.
type Activities struct {
	notifier ports.Notifier
}

func NewActivities(notifier ports.Notifier) *Activities {
	return &Activities{notifier: notifier}
}

// DeliverStatusChange forwards the event; errors are retried by the workflow's policy.
func (a *Activities) DeliverStatusChange(ctx context.Context, event domain.StatusChanged) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.notifier == nil {
		logger.Error("status notification activity not initialized", "orderId", event.OrderID)
		return errors.New("status notification activity not initialized")
	}
	if err := a.notifier.Notify(ctx, event); err != nil {
		logger.Warn("DeliverStatusChange failed", "orderId", event.OrderID, "eventId", event.EventID, "error", err)
		return err
	}
	logger.Info("DeliverStatusChange completed", "orderId", event.OrderID, "status", string(event.NewStatus))
	return nil
}
