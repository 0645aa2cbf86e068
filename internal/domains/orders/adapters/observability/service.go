package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderapp "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/observability/service"

// Service decorates the order lifecycle service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core lifecycle service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.Int64("order.store_id", input.StoreID), attribute.String("actor.id", input.Actor.ID)))
	defer span.End()

	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.Int64("order.store_id", input.StoreID))
	}
	s.metrics.recordPlaced(ctx, result.StoreID)
	s.logInfo(ctx, "order placed", slog.Int64("order.id", result.ID), slog.Int64("order.store_id", result.StoreID))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, ref types.OrderRef) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", ref.OrderID)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, ref)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", ref.OrderID))
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders",
		trace.WithAttributes(attribute.StringSlice("order.statuses", input.Statuses)))
	defer span.End()

	result, err := s.inner.ListOrders(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.count", len(result)))
	return result, nil
}

func (s *Service) StatusSummary(ctx context.Context, actor domain.Actor) (map[domain.Status]int, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.StatusSummary")
	defer span.End()

	result, err := s.inner.StatusSummary(ctx, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to summarize order statuses")
	}
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*types.UpdateStatusResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus",
		trace.WithAttributes(
			attribute.Int64("order.id", input.OrderID),
			attribute.String("status.requested", input.Status),
			attribute.String("actor.id", input.Actor.ID),
		))
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.Int64("order.id", input.OrderID), slog.String("status.to", input.Status))
	result, err := s.inner.UpdateStatus(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "single", err)
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.Int64("order.id", input.OrderID), slog.String("status.to", input.Status))
	}
	if result.OldStatus != result.NewStatus {
		s.metrics.recordTransition(ctx, result.OldStatus, result.NewStatus)
	}
	s.logInfo(ctx, "order status updated",
		slog.Int64("order.id", result.OrderID),
		slog.String("status.from", string(result.OldStatus)),
		slog.String("status.to", string(result.NewStatus)),
		slog.String("fulfillment", string(result.FulfillmentStatus)))
	return result, nil
}

func (s *Service) BulkUpdateStatus(ctx context.Context, input types.BulkUpdateInput) (*types.BulkResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.BulkUpdateStatus",
		trace.WithAttributes(attribute.Int("bulk.size", len(input.OrderIDs)), attribute.String("status.requested", input.Status)))
	defer span.End()

	result, err := s.inner.BulkUpdateStatus(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "bulk", err)
		return nil, s.handleError(ctx, span, err, "failed to bulk update order status", slog.String("status.to", input.Status))
	}
	span.SetAttributes(attribute.Int("bulk.updated", result.UpdatedCount), attribute.Int("bulk.failed", len(result.Errors)))
	s.metrics.recordBulk(ctx, result.UpdatedCount, len(result.Errors))
	s.logInfo(ctx, "bulk status update finished",
		slog.String("status.to", input.Status), slog.Int("bulk.updated", result.UpdatedCount), slog.Int("bulk.failed", len(result.Errors)))
	return result, nil
}

func (s *Service) AvailableTransitions(ctx context.Context, ref types.OrderRef) (*types.AvailableTransitionsResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.AvailableTransitions", trace.WithAttributes(attribute.Int64("order.id", ref.OrderID)))
	defer span.End()

	result, err := s.inner.AvailableTransitions(ctx, ref)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load available transitions", slog.Int64("order.id", ref.OrderID))
	}
	return result, nil
}

func (s *Service) History(ctx context.Context, ref types.OrderRef) ([]domain.StatusTransition, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.History", trace.WithAttributes(attribute.Int64("order.id", ref.OrderID)))
	defer span.End()

	result, err := s.inner.History(ctx, ref)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load status history", slog.Int64("order.id", ref.OrderID))
	}
	span.SetAttributes(attribute.Int("history.count", len(result)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError logs client mistakes at warn and store failures at error.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger == nil {
		return err
	}
	level := slog.LevelWarn
	if errors.Is(err, orderapp.ErrPersistence) {
		level = slog.LevelError
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

type serviceMetrics struct {
	ordersPlaced metric.Int64Counter
	transitions  metric.Int64Counter
	rejections   metric.Int64Counter
	bulkItems    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed"))
	transitions, _ := m.Int64Counter("orders.service.status_transitions", metric.WithDescription("Committed status transitions"))
	rejections, _ := m.Int64Counter("orders.service.status_rejections", metric.WithDescription("Rejected status update requests"))
	bulkItems, _ := m.Int64Counter("orders.service.bulk_items", metric.WithDescription("Bulk update items by outcome"))
	return serviceMetrics{ordersPlaced: ordersPlaced, transitions: transitions, rejections: rejections, bulkItems: bulkItems}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, storeID int64) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.Int64("order.store_id", storeID)))
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, from, to domain.Status) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("status.from", string(from)),
			attribute.String("status.to", string(to)),
		))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, mode string, err error) {
	if m.rejections != nil {
		m.rejections.Add(ctx, 1, metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("reason", rejectionReason(err)),
		))
	}
}

func (m serviceMetrics) recordBulk(ctx context.Context, updated, failed int) {
	if m.bulkItems == nil {
		return
	}
	m.bulkItems.Add(ctx, int64(updated), metric.WithAttributes(attribute.String("outcome", "updated")))
	m.bulkItems.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("outcome", "failed")))
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, orderapp.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, orderapp.ErrForbidden):
		return "forbidden"
	case errors.Is(err, orderapp.ErrNotFound):
		return "not_found"
	case errors.Is(err, orderapp.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

var _ ports.Service = (*Service)(nil)
