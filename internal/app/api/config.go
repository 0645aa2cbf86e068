package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"

	orderapp "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/notify"
	"github.com/Apurer/go-gin-order-lifecycle/internal/platform/observability"
)

// Config carries settings for the API and worker processes.
// Keys double as environment variable names (PORT, POSTGRES_DSN, ...).
type Config struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`

	PostgresDSN string `mapstructure:"postgres_dsn"`

	TemporalAddress   string `mapstructure:"temporal_address"`
	TemporalNamespace string `mapstructure:"temporal_namespace"`
	TemporalDisabled  bool   `mapstructure:"temporal_disabled"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	NotifyChannel string `mapstructure:"notify_channel"`

	BulkTransitionPolicy string        `mapstructure:"bulk_transition_policy"`
	MaxConflictRetries   int           `mapstructure:"max_conflict_retries"`
	TxTimeout            time.Duration `mapstructure:"tx_timeout"`
	NotifyTimeout        time.Duration `mapstructure:"notify_timeout"`

	NotifyBreakerFailures    uint32        `mapstructure:"notify_breaker_failures"`
	NotifyBreakerOpenTimeout time.Duration `mapstructure:"notify_breaker_open_timeout"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	OTLPEndpoint string `mapstructure:"otel_exporter_otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otel_exporter_otlp_insecure"`
}

// LoadConfig reads defaults, the optional YAML file named by CONFIG_FILE, then the environment.
func LoadConfig() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("config_file")); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config_file", "")
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "local")
	v.SetDefault("log_level", "info")

	v.SetDefault("postgres_dsn", "")

	v.SetDefault("temporal_address", client.DefaultHostPort)
	v.SetDefault("temporal_namespace", client.DefaultNamespace)
	v.SetDefault("temporal_disabled", false)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("notify_channel", notify.DefaultChannel)

	v.SetDefault("bulk_transition_policy", string(orderapp.BulkPolicyEnforce))
	v.SetDefault("max_conflict_retries", orderapp.DefaultMaxConflictRetries)
	v.SetDefault("tx_timeout", orderapp.DefaultTxTimeout)
	v.SetDefault("notify_timeout", orderapp.DefaultNotifyTimeout)

	v.SetDefault("notify_breaker_failures", notify.DefaultBreakerFailures)
	v.SetDefault("notify_breaker_open_timeout", notify.DefaultBreakerOpenTimeout)

	v.SetDefault("cors_allowed_origins", []string{"*"})

	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_insecure", true)
}

// Validate rejects settings the processes cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if _, err := observability.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.BulkPolicy(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxConflictRetries < 0 {
		errs = append(errs, errors.New("max_conflict_retries must not be negative"))
	}
	if c.TxTimeout <= 0 {
		errs = append(errs, errors.New("tx_timeout must be positive"))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("notify_timeout must be positive"))
	}
	if c.NotifyBreakerFailures == 0 {
		errs = append(errs, errors.New("notify_breaker_failures must be positive"))
	}
	if c.RedisDB < 0 {
		errs = append(errs, errors.New("redis_db must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// BulkPolicy parses the configured bulk transition policy.
func (c Config) BulkPolicy() (orderapp.BulkPolicy, error) {
	return orderapp.ParseBulkPolicy(c.BulkTransitionPolicy)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// ServiceOptions translates the lifecycle tunables into service options.
func (c Config) ServiceOptions() []orderapp.Option {
	policy, _ := c.BulkPolicy()
	return []orderapp.Option{
		orderapp.WithBulkPolicy(policy),
		orderapp.WithMaxConflictRetries(c.MaxConflictRetries),
		orderapp.WithTxTimeout(c.TxTimeout),
		orderapp.WithNotifyTimeout(c.NotifyTimeout),
	}
}

// BreakerSettings builds the notifier breaker settings.
func (c Config) BreakerSettings(name string) notify.BreakerSettings {
	return notify.BreakerSettings{
		Name:             name,
		FailureThreshold: c.NotifyBreakerFailures,
		OpenTimeout:      c.NotifyBreakerOpenTimeout,
	}
}
