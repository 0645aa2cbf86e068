package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

const (
	DefaultMaxConflictRetries = 3
	DefaultTxTimeout          = 5 * time.Second
	DefaultNotifyTimeout      = 3 * time.Second
)

// Service orchestrates the order lifecycle use cases.
type Service struct {
	orders     ports.OrderRepository
	history    ports.HistoryRepository
	uow        ports.UnitOfWork
	authorizer ports.Authorizer
	notifier   ports.Notifier
	logger     *slog.Logger
	now        func() time.Time

	maxConflictRetries int
	txTimeout          time.Duration
	notifyTimeout      time.Duration
	bulkPolicy         BulkPolicy
}

// Option customizes the Service.
type Option func(*Service)

// WithNotifier sets the collaborator told about committed transitions.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxConflictRetries bounds how often a lost compare-and-set is retried with a fresh read.
func WithMaxConflictRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxConflictRetries = n
		}
	}
}

// WithTxTimeout bounds the order+history write.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.txTimeout = d
		}
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

func WithBulkPolicy(p BulkPolicy) Option {
	return func(s *Service) {
		if p != "" {
			s.bulkPolicy = p
		}
	}
}

// NewService wires the lifecycle service. repos are used for reads outside a unit of work.
func NewService(repos ports.Repositories, uow ports.UnitOfWork, authorizer ports.Authorizer, opts ...Option) *Service {
	s := &Service{
		orders:             repos.Orders,
		history:            repos.History,
		uow:                uow,
		authorizer:         authorizer,
		logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:                func() time.Time { return time.Now().UTC() },
		maxConflictRetries: DefaultMaxConflictRetries,
		txTimeout:          DefaultTxTimeout,
		notifyTimeout:      DefaultNotifyTimeout,
		bulkPolicy:         BulkPolicyEnforce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder creates a pending order for the actor's store.
func (s *Service) PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error) {
	storeID := input.StoreID
	if storeID == 0 {
		storeID = input.Actor.StoreID
	}
	if !input.Actor.IsAdmin() && storeID != input.Actor.StoreID {
		return nil, ErrForbidden
	}
	order, err := domain.NewOrder(storeID, input.CustomerID)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	saved, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// GetOrder loads a single order the actor may see.
func (s *Service) GetOrder(ctx context.Context, ref types.OrderRef) (*domain.Order, error) {
	if err := s.authorize(ctx, ref.Actor, ref.OrderID); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, ref.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// ListOrders returns orders matching any of the requested statuses. Non-admins only see their store.
func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) ([]*domain.Order, error) {
	filter := ports.OrderFilter{}
	if !input.Actor.IsAdmin() {
		filter.StoreID = input.Actor.StoreID
	}
	for _, raw := range input.Statuses {
		status, err := domain.ValidateStatusValue(raw)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// StatusSummary counts the actor's orders per status. Every status is present.
func (s *Service) StatusSummary(ctx context.Context, actor domain.Actor) (map[domain.Status]int, error) {
	orders, err := s.ListOrders(ctx, types.ListOrdersInput{Actor: actor})
	if err != nil {
		return nil, err
	}
	summary := make(map[domain.Status]int, len(domain.AllStatuses()))
	for _, status := range domain.AllStatuses() {
		summary[status] = 0
	}
	for _, order := range orders {
		summary[order.Status]++
	}
	return summary, nil
}

// UpdateStatus validates and commits a single status change.
func (s *Service) UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*types.UpdateStatusResult, error) {
	next, err := domain.ValidateStatusValue(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.authorize(ctx, input.Actor, input.OrderID); err != nil {
		return nil, err
	}
	result, event, err := s.transition(ctx, input.Actor, input.OrderID, next, input.Notes, input.Shipment, true)
	if err != nil {
		return nil, mapError(err)
	}
	s.notify(ctx, event)
	return result, nil
}

// AvailableTransitions reports where the order can go next.
func (s *Service) AvailableTransitions(ctx context.Context, ref types.OrderRef) (*types.AvailableTransitionsResult, error) {
	order, err := s.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &types.AvailableTransitionsResult{
		OrderID:            order.ID,
		CurrentStatus:      order.Status,
		AllowedTransitions: domain.AvailableTransitions(order.Status),
	}, nil
}

// History returns the order's status log, newest first.
func (s *Service) History(ctx context.Context, ref types.OrderRef) ([]domain.StatusTransition, error) {
	if _, err := s.GetOrder(ctx, ref); err != nil {
		return nil, err
	}
	history, err := s.history.ListByOrder(ctx, ref.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return history, nil
}

func (s *Service) authorize(ctx context.Context, actor domain.Actor, orderID int64) error {
	if s.authorizer == nil {
		return ErrForbidden
	}
	ok, err := s.authorizer.Authorize(ctx, actor, orderID)
	if err != nil {
		return fmt.Errorf("%w: authorize order %d: %w", ErrPersistence, orderID, err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// transition reads the order and commits next, retrying lost compare-and-set races
// with a fresh read. enforce=false skips the transition table.
func (s *Service) transition(ctx context.Context, actor domain.Actor, orderID int64, next domain.Status, notes string, shipment domain.Shipment, enforce bool) (*types.UpdateStatusResult, *domain.StatusChanged, error) {
	for attempt := 0; ; attempt++ {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, nil, err
		}
		result, event, err := s.commit(ctx, actor, order, next, notes, shipment, enforce)
		if errors.Is(err, ports.ErrConflict) && attempt < s.maxConflictRetries && ctx.Err() == nil {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "status update lost race, retrying",
				slog.Int64("order.id", orderID), slog.Int("attempt", attempt+1))
			continue
		}
		return result, event, err
	}
}

func (s *Service) commit(ctx context.Context, actor domain.Actor, order *domain.Order, next domain.Status, notes string, shipment domain.Shipment, enforce bool) (*types.UpdateStatusResult, *domain.StatusChanged, error) {
	old := order.Status
	if enforce {
		if err := domain.AttemptTransition(old, next); err != nil {
			return nil, nil, err
		}
	}
	changed := old != next
	if !changed && shipment.IsZero() {
		return resultOf(order, old), nil, nil
	}

	now := s.now()
	updated := order.Clone()
	if changed {
		updated.ApplyStatus(next, now)
	} else {
		updated.UpdatedAt = now
	}
	updated.ApplyShipment(shipment)
	change := ports.StatusChange{
		OrderID:           order.ID,
		ExpectedStatus:    old,
		ExpectedVersion:   order.Version,
		Status:            updated.Status,
		FulfillmentStatus: updated.FulfillmentStatus,
		Shipment:          updated.Shipment,
		UpdatedAt:         now,
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()
	var committed *domain.Order
	var entry domain.StatusTransition
	err := s.uow.Within(txCtx, func(ctx context.Context, repos ports.Repositories) error {
		saved, err := repos.Orders.CompareAndSetStatus(ctx, change)
		if err != nil {
			return err
		}
		committed = saved
		if !changed {
			return nil
		}
		entry, err = repos.History.Append(ctx, domain.RecordTransition(order.ID, old, next, actor.ID, notes, now))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	result := resultOf(committed, old)
	if !changed {
		return result, nil, nil
	}
	event := domain.NewStatusChanged(committed, entry)
	return result, &event, nil
}

// notify tells the notifier about a committed change. Failures never reach the caller.
func (s *Service) notify(ctx context.Context, event *domain.StatusChanged) {
	if event == nil || s.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.Notify(notifyCtx, *event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "status notification failed",
			slog.Int64("order.id", event.OrderID),
			slog.String("status.from", string(event.OldStatus)),
			slog.String("status.to", string(event.NewStatus)),
			slog.String("error", err.Error()))
	}
}

func resultOf(order *domain.Order, old domain.Status) *types.UpdateStatusResult {
	return &types.UpdateStatusResult{
		OrderID:           order.ID,
		OldStatus:         old,
		NewStatus:         order.Status,
		FulfillmentStatus: order.FulfillmentStatus,
		Order:             order,
	}
}

var _ ports.Service = (*Service)(nil)
