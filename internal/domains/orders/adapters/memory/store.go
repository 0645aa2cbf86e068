package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

var (
	_ ports.OrderRepository   = (*Store)(nil)
	_ ports.HistoryRepository = (*Store)(nil)
	_ ports.UnitOfWork        = (*Store)(nil)
)

// Store is an in-memory order and history adapter. Units of work run against a
// draft copy of the state which replaces the live state only when fn succeeds.
type Store struct {
	mu    sync.RWMutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

// Repositories exposes the store through both repository ports.
func (s *Store) Repositories() ports.Repositories {
	return ports.Repositories{Orders: s, History: s}
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	draft := s.state.clone()
	view := &stateRepos{state: draft}
	if err := fn(ctx, ports.Repositories{Orders: view, History: view}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = draft
	return nil
}

func (s *Store) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var saved *domain.Order
	err := s.Within(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		saved, err = repos.Orders.Create(ctx, order)
		return err
	})
	return saved, err
}

func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&stateRepos{state: s.state}).GetByID(ctx, id)
}

func (s *Store) List(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&stateRepos{state: s.state}).List(ctx, filter)
}

func (s *Store) CompareAndSetStatus(ctx context.Context, change ports.StatusChange) (*domain.Order, error) {
	var saved *domain.Order
	err := s.Within(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		saved, err = repos.Orders.CompareAndSetStatus(ctx, change)
		return err
	})
	return saved, err
}

func (s *Store) Append(ctx context.Context, transition domain.StatusTransition) (domain.StatusTransition, error) {
	var saved domain.StatusTransition
	err := s.Within(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		saved, err = repos.History.Append(ctx, transition)
		return err
	})
	return saved, err
}

func (s *Store) ListByOrder(ctx context.Context, orderID int64) ([]domain.StatusTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&stateRepos{state: s.state}).ListByOrder(ctx, orderID)
}

// state is never mutated in place once published; orders are replaced, not edited.
type state struct {
	orders        map[int64]*domain.Order
	history       map[int64][]domain.StatusTransition
	nextOrderID   int64
	nextHistoryID int64
}

func newState() *state {
	return &state{
		orders:  map[int64]*domain.Order{},
		history: map[int64][]domain.StatusTransition{},
	}
}

func (st *state) clone() *state {
	return &state{
		orders:        maps.Clone(st.orders),
		history:       maps.Clone(st.history),
		nextOrderID:   st.nextOrderID,
		nextHistoryID: st.nextHistoryID,
	}
}

// stateRepos operates on a state without locking; the owning Store holds the lock.
type stateRepos struct {
	state *state
}

func (r *stateRepos) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	clone := order.Clone()
	if clone.ID == 0 {
		r.state.nextOrderID++
		clone.ID = r.state.nextOrderID
	} else if _, exists := r.state.orders[clone.ID]; exists {
		return nil, errors.New("order already exists")
	} else if clone.ID > r.state.nextOrderID {
		r.state.nextOrderID = clone.ID
	}
	if clone.Version == 0 {
		clone.Version = 1
	}
	r.state.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *stateRepos) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	order, ok := r.state.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *stateRepos) List(_ context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	list := make([]*domain.Order, 0, len(r.state.orders))
	for _, order := range r.state.orders {
		if filter.StoreID != 0 && order.StoreID != filter.StoreID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, order.Status) {
			continue
		}
		list = append(list, order.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *stateRepos) CompareAndSetStatus(_ context.Context, change ports.StatusChange) (*domain.Order, error) {
	current, ok := r.state.orders[change.OrderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if current.Status != change.ExpectedStatus || current.Version != change.ExpectedVersion {
		return nil, ports.ErrConflict
	}
	next := current.Clone()
	next.Status = change.Status
	next.FulfillmentStatus = change.FulfillmentStatus
	next.Shipment = change.Shipment
	next.UpdatedAt = change.UpdatedAt
	next.Version++
	r.state.orders[next.ID] = next.Clone()
	return next, nil
}

func (r *stateRepos) Append(_ context.Context, transition domain.StatusTransition) (domain.StatusTransition, error) {
	if _, ok := r.state.orders[transition.OrderID]; !ok {
		return domain.StatusTransition{}, ports.ErrNotFound
	}
	r.state.nextHistoryID++
	transition.ID = r.state.nextHistoryID
	entries := slices.Clone(r.state.history[transition.OrderID])
	r.state.history[transition.OrderID] = append(entries, transition)
	return transition, nil
}

func (r *stateRepos) ListByOrder(_ context.Context, orderID int64) ([]domain.StatusTransition, error) {
	entries := r.state.history[orderID]
	out := make([]domain.StatusTransition, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}
