package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Apurer/go-gin-order-lifecycle/internal/app/api"
	orderspostgres "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-order-lifecycle/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-order-lifecycle/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("order schema migrated")
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN not set; nothing to migrate")
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, platformpostgres.Pool{})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer platformpostgres.Close(db)

	if err := migrations.Run(db.WithContext(ctx), orderspostgres.Models()...); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
