// Package store implements the relational persistence layer: brands,
// scenarios, runs, content assets, dimension scores and the per-run trust
// summary, plus the smart-reuse query and retention pruning. Hand-written
// SQL over *pgxpool.Pool with embedded golang-migrate migrations.
package store

import (
	"context"
	stdsql "database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" for the migration driver's database/sql handle
)

//go:embed migrations
var migrationsFS embed.FS

// Store wraps the connection pool shared by every repository.
type Store struct {
	pool *pgxpool.Pool

	Brands     *BrandRepository
	Scenarios  *ScenarioRepository
	Runs       *RunRepository
	Assets     *AssetRepository
	Summaries  *SummaryRepository
}

// Pool exposes the underlying pool for health checks.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// New opens a connection pool, runs pending migrations, and wires every
// repository against the shared pool.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("store: parse pool config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("store: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	if err := runMigrations(cfg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return &Store{
		pool:      pool,
		Brands:    &BrandRepository{pool: pool},
		Scenarios: &ScenarioRepository{pool: pool},
		Runs:      &RunRepository{pool: pool},
		Assets:    &AssetRepository{pool: pool},
		Summaries: &SummaryRepository{pool: pool},
	}, nil
}

// runMigrations applies every embedded migration using a short-lived
// database/sql connection (golang-migrate doesn't speak pgxpool directly).
func runMigrations(cfg Config) error {
	db, err := stdsql.Open("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	defer func() { _ = sourceDriver.Close() }()

	m, err := migrate.NewWithInstance("iofs", sourceDriver, cfg.Database, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
