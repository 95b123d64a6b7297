// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/sabc/cliparse"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func init() {
	// Queries are written with ? placeholders and rebound per driver
	sqlx.BindDriver(cliparse.DatabaseSQLite, sqlx.QUESTION)
}

// Open connects to the configured database and verifies the connection.
func Open(cfg cliparse.Config) (*sqlx.DB, error) {
	dsn := cfg.DatabaseURL
	if cfg.DatabaseType == cliparse.DatabaseSQLite {
		dsn = SQLiteDSN(dsn)
	}

	conn, err := sqlx.Open(cfg.DatabaseType, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DatabaseType, err)
	}

	// SQLite has a single writer; one connection also keeps
	// in-memory databases from splitting across the pool.
	if cfg.DatabaseType == cliparse.DatabaseSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return conn, nil
}

// SQLiteDSN adds the pragmas the schema relies on to a SQLite DSN.
// Times are written in a sortable format so range queries compare
// correctly as long as every stored time is UTC.
func SQLiteDSN(dsn string) string {
	pragmas := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)", "_time_format=sqlite"}
	for _, p := range pragmas {
		if strings.Contains(dsn, p) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p
	}
	return dsn
}

// Migrate applies all pending migrations. Safe to call on every start.
func Migrate(conn *sqlx.DB, dbType string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	var driver database.Driver
	switch dbType {
	case cliparse.DatabaseSQLite:
		driver, err = sqlite.WithInstance(conn.DB, &sqlite.Config{})
	case cliparse.DatabasePostgres:
		driver, err = postgres.WithInstance(conn.DB, &postgres.Config{})
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dbType, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	// The sqlite driver closes the *sql.DB it wraps; postgres only
	// releases the connection it borrowed.
	if dbType == cliparse.DatabasePostgres {
		defer m.Close()
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
