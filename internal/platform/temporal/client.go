// Package temporal dials the Temporal cluster and registers the order notification worker.
package temporal

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
	notifyactivities "github.com/Apurer/go-gin-order-lifecycle/internal/platform/temporal/activities/notifications"
	notifyworkflows "github.com/Apurer/go-gin-order-lifecycle/internal/platform/temporal/workflows/notifications"
)

// ErrDisabled is returned by Dial when Temporal is switched off.
var ErrDisabled = errors.New("temporal disabled")

// ClientSettings selects the cluster to talk to.
type ClientSettings struct {
	Address   string
	Namespace string
	Disabled  bool
}

// Dial connects with tracing and slog-backed SDK logging.
func Dial(settings ClientSettings, tracer trace.Tracer, logger *slog.Logger) (client.Client, error) {
	if settings.Disabled {
		return nil, ErrDisabled
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{Tracer: tracer})
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	options := client.Options{
		HostPort:  settings.Address,
		Namespace: settings.Namespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	if options.HostPort == "" {
		options.HostPort = client.DefaultHostPort
	}
	if options.Namespace == "" {
		options.Namespace = client.DefaultNamespace
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

// Registry is the part of worker.Worker used to register the notification workflow.
type Registry interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

// RegisterNotifications registers the status notification workflow and its delivery activity.
func RegisterNotifications(r Registry, notifier ports.Notifier) {
	activities := notifyactivities.NewActivities(notifier)
	r.RegisterWorkflowWithOptions(notifyworkflows.StatusNotificationWorkflow,
		workflow.RegisterOptions{Name: notifyworkflows.StatusNotificationWorkflowName})
	r.RegisterActivityWithOptions(activities.DeliverStatusChange,
		activity.RegisterOptions{Name: notifyactivities.DeliverStatusChangeActivityName})
}

// NewNotificationWorker builds a worker on the notification task queue.
func NewNotificationWorker(c client.Client, notifier ports.Notifier) worker.Worker {
	w := worker.New(c, notifyworkflows.StatusNotificationTaskQueue, worker.Options{})
	RegisterNotifications(w, notifier)
	return w
}
