package notifications

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	notifyactivities "github.com/Apurer/go-gin-order-lifecycle/internal/platform/temporal/activities/notifications"
)

const (
	// StatusNotificationWorkflowName is the public identifier for registering the workflow.
	StatusNotificationWorkflowName = "orders.workflows.StatusNotification"
	// StatusNotificationTaskQueue is consumed by the worker delivering status notifications.
	StatusNotificationTaskQueue = "ORDER_STATUS_NOTIFICATIONS"
)

// StatusNotificationInput carries one committed transition.
type StatusNotificationInput struct {
	Event   domain.StatusChanged
	TraceID string
}

// StatusNotificationWorkflow delivers a status change with durable retries.
func StatusNotificationWorkflow(ctx workflow.Context, input StatusNotificationInput) error {
	logger := workflow.GetLogger(ctx)
	orderID := input.Event.OrderID
	logger.Info("StatusNotificationWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	}
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), notifyactivities.DeliverStatusChangeActivityName, input.Event).Get(ctx, nil)
	if err != nil {
		logger.Error("StatusNotificationWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return err
	}
	logger.Info("StatusNotificationWorkflow completed", withTraceID(input.TraceID, "orderId", orderID, "status", string(input.Event.NewStatus))...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
