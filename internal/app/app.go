package app

import (
	"context"
	"database/sql"

	"github.com/dsg-innosource/data-platform/internal/config"
	"github.com/dsg-innosource/data-platform/internal/database"
	"github.com/dsg-innosource/data-platform/pkg/archive"
	"github.com/dsg-innosource/data-platform/pkg/period"
	"github.com/dsg-innosource/data-platform/pkg/pipeline"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, the warehouse and the services behind
// the CLI commands.
type Application struct {
	cfg  config.Application
	db   *sql.DB
	deps *Dependencies
}

// NewApplication loads and validates configuration and builds the full
// application, ready to process or archive a billing period.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.Warehouse.Enabled {
		db, err = database.Open(cfg.Warehouse)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, cfg.Warehouse.Engine); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		log.Info("warehouse disabled: burn rate projections only see the current period")
	}

	deps := BuildDependencies(db, cfg)
	return &Application{cfg: cfg, db: db, deps: deps}, nil
}

// Config returns the loaded configuration.
func (a *Application) Config() config.Application {
	return a.cfg
}

// Process runs one reconciliation over a time-tracking export.
func (a *Application) Process(ctx context.Context, req pipeline.ProcessRequest) (pipeline.RunResult, error) {
	return a.deps.Pipeline.Process(ctx, req)
}

// Archive moves a finished period's inputs and outputs into the archive
// subdirectories.
func (a *Application) Archive(ctx context.Context, p period.Period) (archive.Result, error) {
	return a.deps.Archiver.Archive(ctx, p)
}

// Close releases the warehouse connection.
func (a *Application) Close() error {
	return a.deps.Sink.Close()
}
