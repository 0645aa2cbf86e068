package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/authz"
	ordermemory "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/notify"
	orderobs "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-lifecycle/internal/platform/metrics"
	platformobservability "github.com/Apurer/go-gin-order-lifecycle/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-order-lifecycle/internal/platform/postgres"
	platformredis "github.com/Apurer/go-gin-order-lifecycle/internal/platform/redis"
	platformtemporal "github.com/Apurer/go-gin-order-lifecycle/internal/platform/temporal"
)

const serviceName = "orders-api"

// Run boots the order lifecycle HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repos, uow, cleanupStore := buildStore(ctx, cfg, logger)
	defer cleanupStore()

	var starter notify.WorkflowStarter
	if c, err := platformtemporal.Dial(cfg.TemporalClient(), instruments.Tracer("temporal-client"), logger); err != nil {
		logger.Warn("Temporal unavailable, status notifications will not be durable", slog.String("error", err.Error()))
	} else {
		defer c.Close()
		starter = c
		logger.Info("Temporal notifications enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	var publisher notify.Publisher
	if cfg.RedisAddr != "" && starter == nil {
		if c, err := platformredis.NewClient(ctx, cfg.Redis()); err != nil {
			logger.Warn("Redis unavailable, status notifications will only be logged", slog.String("error", err.Error()))
		} else {
			defer c.Close()
			publisher = c
		}
	}

	notifier := BuildNotifier(cfg, logger, starter, publisher)
	core := orderapp.NewService(repos, uow, authz.NewStoreOwnerAuthorizer(repos.Orders),
		append(cfg.ServiceOptions(), orderapp.WithNotifier(notifier), orderapp.WithLogger(logger))...)
	service := orderobs.New(
		core,
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router := NewRouter(serviceName, cfg.CORSAllowedOrigins, service, metrics.New("orders", registry))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("orders API listening", slog.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("orders API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("orders API shutting down")
	return srv.Shutdown(shutdownCtx)
}

// buildStore prefers Postgres and falls back to the in-memory store.
func buildStore(ctx context.Context, cfg Config, logger *slog.Logger) (ports.Repositories, ports.UnitOfWork, func()) {
	fallback := func() (ports.Repositories, ports.UnitOfWork, func()) {
		store := ordermemory.NewStore()
		return store.Repositories(), store, func() {}
	}
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory order store")
		return fallback()
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, platformpostgres.Pool{MaxOpenConns: 25, MaxIdleConns: 10, ConnMaxLifetime: time.Hour})
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return fallback()
	}
	logger.Info("order store configured with postgres")
	return orderpostgres.Repositories(db), orderpostgres.NewUnitOfWork(db), func() {
		if err := platformpostgres.Close(db); err != nil {
			logger.Warn("failed to close postgres", slog.String("error", err.Error()))
		}
	}
}

// BuildNotifier picks the delivery target: a Temporal workflow when a client is available,
// otherwise a Redis publish, otherwise nothing beyond the log. The target sits behind a breaker.
func BuildNotifier(cfg Config, logger *slog.Logger, starter notify.WorkflowStarter, publisher notify.Publisher) ports.Notifier {
	logNotifier := notify.NewLogNotifier(logger)
	switch {
	case starter != nil:
		return notify.Multi{logNotifier, notify.NewBreaker(notify.NewTemporalNotifier(starter), cfg.BreakerSettings("temporal-notifier"))}
	case publisher != nil:
		return notify.Multi{logNotifier, notify.NewBreaker(notify.NewRedisNotifier(publisher, cfg.NotifyChannel), cfg.BreakerSettings("redis-notifier"))}
	default:
		return logNotifier
	}
}

// Telemetry derives observability settings for a process.
func (c Config) Telemetry(service string) platformobservability.Settings {
	return platformobservability.Settings{
		ServiceName:  service,
		Environment:  c.Environment,
		LogLevel:     c.LogLevel,
		OTLPEndpoint: c.OTLPEndpoint,
		OTLPInsecure: c.OTLPInsecure,
	}
}

// TemporalClient derives Temporal connection settings.
func (c Config) TemporalClient() platformtemporal.ClientSettings {
	return platformtemporal.ClientSettings{
		Address:   c.TemporalAddress,
		Namespace: c.TemporalNamespace,
		Disabled:  c.TemporalDisabled,
	}
}

// Redis derives Redis connection settings.
func (c Config) Redis() platformredis.Config {
	return platformredis.Config{Address: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}
