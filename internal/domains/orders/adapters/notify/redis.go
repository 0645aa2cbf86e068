package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
)

// DefaultChannel is the pub/sub channel status changes are published on.
const DefaultChannel = "orders.status_changed"

var _ ports.Notifier = (*RedisNotifier)(nil)

// Publisher is the subset of the redis client used for fan-out.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisNotifier publishes status changes as JSON on a Redis channel.
type RedisNotifier struct {
	client  Publisher
	channel string
}

func NewRedisNotifier(client Publisher, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, event domain.StatusChanged) error {
	if n == nil || n.client == nil {
		return errors.New("redis notifier not configured")
	}
	payload, err := json.Marshal(NewMessage(event))
	if err != nil {
		return fmt.Errorf("encode status change: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish status change on %s: %w", n.channel, err)
	}
	return nil
}
