// Package database opens the bun handle used by every store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-edarshan/internal/config"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
)

// Open connects with retries and returns a bun handle for the configured driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		err   error
	)

	switch cfg.Driver {
	case "sqlite":
		sqldb, err = sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err == nil {
			// SQLite serialises writers; one connection avoids SQLITE_BUSY.
			sqldb.SetMaxOpenConns(1)
		}
	default:
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
			sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
			sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if err := ping(ctx, sqldb, cfg, log); err != nil {
		sqldb.Close()
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func ping(ctx context.Context, sqldb *sql.DB, cfg config.DatabaseConfig, log *logger.Logger) error {
	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = sqldb.PingContext(ctx); err == nil {
			log.LogDatabase("CONNECT", cfg.Driver, "connection established")
			return nil
		}
		log.Warn("DATABASE", fmt.Sprintf("Database connection attempt %d/%d failed: %v", i, attempts, err))
		if i < attempts {
			select {
			case <-time.After(cfg.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", attempts, err)
}

// CreateSchema creates the tables straight from the bun models. Postgres
// deployments use the SQL migrations instead; this serves SQLite and tests.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range []interface{}{
		(*models.Temple)(nil),
		(*models.Booking)(nil),
		(*models.PaymentSession)(nil),
	} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	indexes := []struct{ name, table, column string }{
		{"idx_bookings_temple_id", "bookings", "temple_id"},
		{"idx_bookings_status_expires", "bookings", "payment_status, expires_at"},
		{"idx_payment_sessions_booking_id", "payment_sessions", "booking_id"},
	}
	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().
			Table(idx.table).
			Index(idx.name).
			ColumnExpr(idx.column).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
