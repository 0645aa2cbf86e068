package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs the order CAS and history append in one database transaction.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	if u == nil || u.db == nil {
		return errors.New("postgres unit of work not configured")
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, ports.Repositories{
			Orders:  NewOrderRepository(tx),
			History: NewHistoryRepository(tx),
		})
	})
}

// Repositories returns non-transactional repositories bound to db.
func Repositories(db *gorm.DB) ports.Repositories {
	return ports.Repositories{Orders: NewOrderRepository(db), History: NewHistoryRepository(db)}
}
