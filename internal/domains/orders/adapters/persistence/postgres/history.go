package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

var _ ports.HistoryRepository = (*HistoryRepository)(nil)

// HistoryRepository stores the order status log. Rows are never updated or deleted.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(ctx context.Context, transition domain.StatusTransition) (domain.StatusTransition, error) {
	if err := r.ensureDB(); err != nil {
		return domain.StatusTransition{}, err
	}
	record := toHistoryRecord(transition)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return domain.StatusTransition{}, err
	}
	return record.toDomain(), nil
}

// ListByOrder returns the log newest first.
func (r *HistoryRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.StatusTransition, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []historyRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]domain.StatusTransition, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out, nil
}

func (r *HistoryRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres history repository not configured")
	}
	return nil
}
