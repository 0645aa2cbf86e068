package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/worker"

	"github.com/Apurer/go-gin-order-lifecycle/internal/app/api"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/notify"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/go-gin-order-lifecycle/internal/platform/observability"
	platformredis "github.com/Apurer/go-gin-order-lifecycle/internal/platform/redis"
	platformtemporal "github.com/Apurer/go-gin-order-lifecycle/internal/platform/temporal"
	notifyworkflows "github.com/Apurer/go-gin-order-lifecycle/internal/platform/temporal/workflows/notifications"
)

const serviceName = "orders-worker"

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%s: %v", serviceName, err)
	}
}

func run(ctx context.Context) (err error) {
	cfg, err := api.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry(serviceName))
	if err != nil {
		return fmt.Errorf("initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := shutdown(shutdownCtx); shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown observability: %w", shutdownErr))
		}
	}()
	logger := instruments.Logger

	var notifier ports.Notifier = notify.NewLogNotifier(logger)
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, worker will only log status changes")
	} else {
		redisClient, err := platformredis.NewClient(ctx, cfg.Redis())
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		notifier = notify.Multi{notifier, notify.NewRedisNotifier(redisClient, cfg.NotifyChannel)}
	}

	temporalClient, err := platformtemporal.Dial(cfg.TemporalClient(), instruments.Tracer("temporal-worker"), logger)
	if err != nil {
		return fmt.Errorf("create temporal client: %w", err)
	}
	defer temporalClient.Close()

	w := platformtemporal.NewNotificationWorker(temporalClient, notifier)
	logger.Info("worker listening", slog.String("taskQueue", notifyworkflows.StatusNotificationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		return fmt.Errorf("temporal worker exited: %w", err)
	}
	logger.Info("Temporal worker stopped")
	return nil
}
