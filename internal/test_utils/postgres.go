package test_utils

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dsg-innosource/data-platform/internal/config"
	"github.com/dsg-innosource/data-platform/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func preparePostgresContainer() (*postgres.PostgresContainer, error) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithDatabase("warehouse"),
		postgres.WithUsername("test_warehouse"),
		postgres.WithPassword("test_warehouse"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return nil, err
	}
	return pgContainer, nil
}

// TestWithPostgres starts a disposable PostgreSQL container and applies the
// embedded warehouse migrations. It returns the container and an opener for
// fresh connections; the caller terminates the container when done.
// Needs a local Docker daemon.
func TestWithPostgres() (*postgres.PostgresContainer, func() (*sql.DB, error), error) {
	ctx := context.Background()

	container, err := preparePostgresContainer()
	if err != nil {
		return nil, nil, fmt.Errorf("starting postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, nil, fmt.Errorf("resolving container port: %w", err)
	}

	log.Infof("Postgres container started at %s:%d", host, port.Int())

	cfg := config.Warehouse{
		Enabled: true,
		Engine:  config.EnginePostgres,
		Host:    host,
		Port:    port.Int(),
		User:    "test_warehouse",
		Pass:    "test_warehouse",
		Name:    "warehouse",
		Schema:  "public",
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening warehouse database: %w", err)
	}
	if err := database.Migrate(db, config.EnginePostgres); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("applying migrations: %w", err)
	}
	db.Close()

	return container, func() (*sql.DB, error) {
		return database.Open(cfg)
	}, nil
}
