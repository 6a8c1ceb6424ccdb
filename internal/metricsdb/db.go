package metricsdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
)

const (
	// DriverPostgres is the production backend.
	DriverPostgres = "pgx"
	// DriverDuckDB runs the same executor path against an embedded
	// database for local fixtures; an empty DSN means in-memory.
	DriverDuckDB = "duckdb"
)

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// Open builds the bounded connection pool for the metrics database and
// verifies it with a ping.
func Open(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverPostgres
	}
	switch driver {
	case DriverPostgres, DriverDuckDB:
	default:
		return nil, fmt.Errorf("unsupported metrics db driver %q", driver)
	}
	if driver == DriverPostgres && cfg.DSN == "" {
		return nil, fmt.Errorf("metrics db dsn is required")
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open metrics db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping metrics db: %w", err)
	}

	return db, nil
}
