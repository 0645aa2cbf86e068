package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrForbidden signals the actor may not act on the order.
	ErrForbidden = errors.New("access denied")
	// ErrNotFound is re-exported so adapters need not import ports.
	ErrNotFound = ports.ErrNotFound
	// ErrConflict is returned once conflict retries are exhausted.
	ErrConflict = ports.ErrConflict
	// ErrPersistence wraps downstream store failures; nothing was committed.
	ErrPersistence = errors.New("order persistence failed")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrPersistence),
		errors.Is(err, ports.ErrNotFound),
		errors.Is(err, ports.ErrConflict):
		return err
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidStore),
		errors.Is(err, domain.ErrInvalidCustomer):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// bulkItemMessage renders a per-order failure for the bulk result.
func bulkItemMessage(err error) string {
	var transition *domain.InvalidTransitionError
	switch {
	case errors.Is(err, ErrForbidden):
		return "Access denied"
	case errors.Is(err, ports.ErrNotFound):
		return "Order not found"
	case errors.As(err, &transition):
		return transition.Error()
	case errors.Is(err, ports.ErrConflict):
		return "Order was modified concurrently, retry"
	default:
		return "Failed to update order"
	}
}
