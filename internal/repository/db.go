// Package repository persists the audit trail of extraction jobs. It speaks
// both PostgreSQL and embedded SQLite, selected by the DSN.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/jpcarrion/factura-ocr/internal/common"
)

type Config struct {
	DSN         string
	DialTimeout time.Duration
}

// DB wraps sql.DB with the driver name so queries can be rebound for the
// active placeholder dialect.
type DB struct {
	*sql.DB
	driver string
}

// Rebind converts ? placeholders to $1..$N for the pgx driver. SQLite takes
// the query unchanged.
func (d *DB) Rebind(query string) string {
	if d.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS extraction_jobs (
	id             TEXT PRIMARY KEY,
	filename       TEXT NOT NULL,
	method         TEXT NOT NULL DEFAULT '',
	pages          INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL,
	extracted_text TEXT NOT NULL DEFAULT '',
	payload        TEXT NOT NULL DEFAULT '',
	numero_factura TEXT NOT NULL DEFAULT '',
	cliente        TEXT NOT NULL DEFAULT '',
	valor_total    TEXT NOT NULL DEFAULT '',
	error_message  TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL DEFAULT ''
)`

// Open connects to the audit database, pings it, and ensures the schema
// exists. postgres:// and postgresql:// DSNs use pgx; anything else is
// treated as a SQLite path.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		driver = "pgx"
	}

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, common.NewAppError("DB_OPEN_ERROR", "failed to open database", err)
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, common.NewAppError("DB_PING_ERROR", "database is unreachable", err)
	}

	if _, err := sqlDB.ExecContext(ctx, schemaDDL); err != nil {
		sqlDB.Close()
		return nil, common.NewAppError("DB_SCHEMA_ERROR", "failed to ensure schema", err)
	}

	logger.Info("database ready", "driver", driver)
	return &DB{DB: sqlDB, driver: driver}, nil
}

// HealthCheck pings the database within the given timeout.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *slog.Logger) error {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("database health check failed", "error", err)
		return common.NewAppError("DB_HEALTH_ERROR", "health check failed", err)
	}
	logger.Info("database health check ok", "driver", db.driver, "duration", time.Since(start).String())
	return nil
}
