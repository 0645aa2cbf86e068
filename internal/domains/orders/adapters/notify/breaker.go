package notify

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

var _ ports.Notifier = (*Breaker)(nil)

const (
	DefaultBreakerFailures    uint32 = 5
	DefaultBreakerOpenTimeout        = 30 * time.Second
)

// BreakerSettings tunes when a failing target is skipped.
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Breaker stops calling a failing notifier until OpenTimeout has passed.
// While open, Notify returns gobreaker.ErrOpenState immediately.
type Breaker struct {
	next ports.Notifier
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreaker(next ports.Notifier, settings BreakerSettings) *Breaker {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = DefaultBreakerFailures
	}
	timeout := settings.OpenTimeout
	if timeout <= 0 {
		timeout = DefaultBreakerOpenTimeout
	}
	name := settings.Name
	if name == "" {
		name = "status-notifier"
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Notify(ctx context.Context, event domain.StatusChanged) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Notify(ctx, event)
	})
	return err
}

// State reports the breaker position for diagnostics.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
