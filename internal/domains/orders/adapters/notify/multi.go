package notify

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

var _ ports.Notifier = Multi(nil)

// Multi delivers to every notifier. One failing target does not stop the rest.
type Multi []ports.Notifier

func (m Multi) Notify(ctx context.Context, event domain.StatusChanged) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
