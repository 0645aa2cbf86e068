package notify

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
	notifyworkflows "github.com/Apurer/go-gin-order-lifecycle/internal/platform/temporal/workflows/notifications"
)

var _ ports.Notifier = (*TemporalNotifier)(nil)

// WorkflowStarter is the subset of client.Client needed to hand off a notification.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalNotifier starts a durable notification workflow and returns without waiting on it.
type TemporalNotifier struct {
	client    WorkflowStarter
	taskQueue string
}

func NewTemporalNotifier(c WorkflowStarter) *TemporalNotifier {
	return &TemporalNotifier{client: c, taskQueue: notifyworkflows.StatusNotificationTaskQueue}
}

func (n *TemporalNotifier) Notify(ctx context.Context, event domain.StatusChanged) error {
	if n == nil || n.client == nil {
		return errors.New("temporal notifier not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        statusNotificationWorkflowID(event),
		TaskQueue: n.taskQueue,
	}
	_, err := n.client.ExecuteWorkflow(ctx, options, notifyworkflows.StatusNotificationWorkflow,
		notifyworkflows.StatusNotificationInput{Event: event, TraceID: traceID(ctx)})
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil
		}
		return fmt.Errorf("start status notification workflow: %w", err)
	}
	return nil
}

func statusNotificationWorkflowID(event domain.StatusChanged) string {
	return fmt.Sprintf("order-status-%d-%s", event.OrderID, event.EventID)
}

func traceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
