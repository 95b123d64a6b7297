// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages its schema.

# Connecting

Open picks the driver from the config (modernc.org/sqlite or lib/pq)
and returns a *sqlx.DB:

	conn, err := db.Open(cfg)

SQLite DSNs get foreign_keys and busy_timeout pragmas (SQLiteDSN) and the
pool is limited to one connection.

# Placeholders

Queries are written with ? placeholders and passed through Rebind, which
turns them into $1, $2... for PostgreSQL:

	conn.GetContext(ctx, &id, conn.Rebind(`SELECT id FROM users WHERE username = ?`), name)

# Migrations

Migrate applies the embedded migrations/*.sql files with golang-migrate.
The SQL is written to run unchanged on both SQLite and PostgreSQL:

	if err := db.Migrate(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call on every start - migrate.ErrNoChange is not an error.

# Tables

  - users: login identity
  - anglers: club profile, one per user (type member/officer/guest)
  - tournaments, results: events and weigh-ins
  - lake_polls, lake_poll_choices, lake_votes: lake polls
  - events: meetings and other calendar entries

# Relationships

	users 1──1 anglers
	tournaments 1──* results *──1 anglers
	lake_polls 1──* lake_poll_choices 1──* lake_votes *──1 anglers

Child rows use ON DELETE CASCADE; created_by columns use SET NULL.

# Bootstrap

EnsureSuperuser creates the first administrator from ADMIN_USERNAME and
ADMIN_PASSWORD:

	created, err := db.EnsureSuperuser(ctx, conn, cfg.AdminUsername, cfg.AdminPassword, time.Now())
*/
package db
