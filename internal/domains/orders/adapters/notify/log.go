package notify

import (
	"context"
	"log/slog"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier writes status changes to the structured log. Used when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event domain.StatusChanged) error {
	n.logger.LogAttrs(ctx, slog.LevelInfo, "order status changed",
		slog.String("event.id", event.EventID),
		slog.Int64("order.id", event.OrderID),
		slog.Int64("order.store_id", event.StoreID),
		slog.String("status.from", string(event.OldStatus)),
		slog.String("status.to", string(event.NewStatus)),
		slog.String("fulfillment", string(event.FulfillmentStatus)),
		slog.String("changed_by", event.ChangedBy))
	return nil
}
