package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type Config struct {
	DSN             string // postgres://... or a sqlite path / "file::memory:"
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
}

// DB is a database/sql handle plus the dialect its queries are written for.
type DB struct {
	*sql.DB
	Dialect Dialect
	pool    *pgxpool.Pool
}

func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects to the ledger database and applies the schema. Postgres goes through a pgx
// pool, anything else is treated as a sqlite DSN.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dialect := DialectFor(cfg.DSN)
	logger.Info("db.connect", "dialect", dialect)

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	db := &DB{Dialect: dialect}
	switch dialect {
	case DialectPostgres:
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("db.connect.failed", "error", err)
			return nil, err
		}
		if cfg.MaxOpenConns > 0 {
			pc.MaxConns = int32(cfg.MaxOpenConns)
		}
		pc.MaxConnLifetime = cfg.ConnMaxLifetime
		pc.ConnConfig.RuntimeParams["application_name"] = "imoveis-extractor"
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			logger.Error("db.connect.failed", "error", err)
			return nil, err
		}
		db.pool = pool
		db.DB = stdlib.OpenDBFromPool(pool)
	default:
		sqlDB, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			logger.Error("db.connect.failed", "error", err)
			return nil, err
		}
		// sqlite allows one writer; in-memory databases exist per connection.
		sqlDB.SetMaxOpenConns(1)
		db.DB = sqlDB
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("db.ping.failed", "error", err)
		return nil, fmt.Errorf("ping: %w", err)
	}
	if err := db.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("db.connect.ok", "dialect", dialect)
	return db, nil
}

func (db *DB) Close() error {
	err := db.DB.Close()
	if db.pool != nil {
		db.pool.Close()
	}
	return err
}

// HealthCheck pings the database.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS document_runs (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL,
	name          TEXT NOT NULL,
	source_path   TEXT NOT NULL,
	doc_type      TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL,
	record_count  INTEGER NOT NULL DEFAULT 0,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP NULL,
	error_message TEXT NULL
)`

const indexRunID = `CREATE INDEX IF NOT EXISTS document_runs_run_id_idx ON document_runs (run_id)`

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range []string{schema, indexRunID} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites "?" placeholders into "$n" for postgres.
func (db *DB) rebind(q string) string {
	if db.Dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
