//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-lifecycle/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("orders_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db, Models()...)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func createOrder(t *testing.T, repo *OrderRepository, storeID int64) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(storeID, 11)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Microsecond)
	order.CreatedAt, order.UpdatedAt = now, now
	saved, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return saved
}

func confirmChange(order *domain.Order) ports.StatusChange {
	return ports.StatusChange{
		OrderID:           order.ID,
		ExpectedStatus:    order.Status,
		ExpectedVersion:   order.Version,
		Status:            domain.StatusConfirmed,
		FulfillmentStatus: domain.FulfillmentUnfulfilled,
		UpdatedAt:         time.Now().UTC(),
	}
}

func TestOrderRepository_CreateAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	saved := createOrder(t, repo, 1)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, int64(1), saved.Version)

	fetched, err := repo.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.UUID, fetched.UUID)
	assert.Equal(t, domain.StatusPending, fetched.Status)
	assert.Equal(t, domain.FulfillmentUnfulfilled, fetched.FulfillmentStatus)

	_, err = repo.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestOrderRepository_CompareAndSetStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()
	order := createOrder(t, repo, 1)

	tracking := "TRK-1"
	change := confirmChange(order)
	change.Shipment.TrackingNumber = &tracking
	updated, err := repo.CompareAndSetStatus(ctx, change)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, int64(2), updated.Version)
	require.NotNil(t, updated.Shipment.TrackingNumber)
	assert.Equal(t, "TRK-1", *updated.Shipment.TrackingNumber)

	_, err = repo.CompareAndSetStatus(ctx, confirmChange(order))
	assert.ErrorIs(t, err, ports.ErrConflict)

	missing := confirmChange(order)
	missing.OrderID = 9999
	_, err = repo.CompareAndSetStatus(ctx, missing)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestOrderRepository_ListFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()
	first := createOrder(t, repo, 1)
	createOrder(t, repo, 1)
	createOrder(t, repo, 2)
	_, err := repo.CompareAndSetStatus(ctx, confirmChange(first))
	require.NoError(t, err)

	all, err := repo.List(ctx, ports.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	store1, err := repo.List(ctx, ports.OrderFilter{StoreID: 1})
	require.NoError(t, err)
	assert.Len(t, store1, 2)

	confirmed, err := repo.List(ctx, ports.OrderFilter{Statuses: []domain.Status{domain.StatusConfirmed, domain.StatusShipping}})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.ID, confirmed[0].ID)
}

func TestUnitOfWork_CommitsAndRollsBack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	orders := NewOrderRepository(db)
	history := NewHistoryRepository(db)
	uow := NewUnitOfWork(db)
	ctx := context.Background()
	order := createOrder(t, orders, 1)

	boom := errors.New("abort")
	err := uow.Within(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Orders.CompareAndSetStatus(ctx, confirmChange(order)); err != nil {
			return err
		}
		if _, err := repos.History.Append(ctx, domain.RecordTransition(order.ID, domain.StatusPending, domain.StatusConfirmed, "u1", "", time.Now().UTC())); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	current, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, current.Status)
	entries, err := history.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	for i, next := range []domain.Status{domain.StatusConfirmed, domain.StatusCancelled} {
		current, err := orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		err = uow.Within(ctx, func(ctx context.Context, repos ports.Repositories) error {
			change := confirmChange(current)
			change.Status = next
			if _, err := repos.Orders.CompareAndSetStatus(ctx, change); err != nil {
				return err
			}
			at := time.Now().UTC().Add(time.Duration(i) * time.Second)
			_, err := repos.History.Append(ctx, domain.RecordTransition(order.ID, current.Status, next, "u1", "step", at))
			return err
		})
		require.NoError(t, err)
	}

	entries, err = history.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.StatusCancelled, entries[0].NewStatus)
	assert.Equal(t, domain.StatusConfirmed, entries[1].NewStatus)
	assert.Equal(t, "step", entries[0].Notes)
}
