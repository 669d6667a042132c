package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/dsg-innosource/data-platform/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrUnknownEngine = errors.New("unsupported warehouse engine")

// Open opens the warehouse database for the configured engine. The sqlite
// engine is the zero-setup default; postgres serves shared deployments.
func Open(cfg config.Warehouse) (*sql.DB, error) {
	switch cfg.Engine {
	case config.EngineSQLite:
		return openSQLite(cfg)
	case config.EnginePostgres:
		return openPostgres(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}

func openSQLite(cfg config.Warehouse) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating warehouse directory %s: %w", dir, err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite warehouse %s: %w", cfg.Path, err)
	}
	// modernc sqlite serializes writers itself; a single connection avoids
	// SQLITE_BUSY churn under the loader's transaction.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite warehouse %s: %w", cfg.Path, err)
	}
	return db, nil
}

func openPostgres(cfg config.Warehouse) (*sql.DB, error) {
	// Escape single quotes in password for the connection string
	escapedPassword := strings.ReplaceAll(cfg.Pass, "'", "\\'")

	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password='%s' dbname=%s sslmode=disable options='-c search_path=%s'",
		cfg.Host, cfg.Port, cfg.User, escapedPassword, cfg.Name, cfg.Schema)
	db, err := sql.Open("pgx", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("opening postgres warehouse: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres warehouse: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema migrations to an open warehouse.
func Migrate(db *sql.DB, engine string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}

	var driver migratedb.Driver
	switch engine {
	case config.EngineSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case config.EnginePostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, engine, driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}
