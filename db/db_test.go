// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/sabc/cliparse"
	"github.com/danielhkuo/sabc/models"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := cliparse.Config{
		DatabaseType: cliparse.DatabaseSQLite,
		DatabaseURL:  fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}

	conn, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare file", "file:sabc.db", "file:sabc.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"},
		{"existing query", "file:x?mode=memory", "file:x?mode=memory&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"},
		{"already set", "file:x?_pragma=foreign_keys(1)", "file:x?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLiteDSN(tt.in))
		})
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn := openTestDB(t)

	require.NoError(t, Migrate(conn, cliparse.DatabaseSQLite))
	require.NoError(t, Migrate(conn, cliparse.DatabaseSQLite))

	for _, table := range []string{"users", "anglers", "tournaments", "results", "lake_polls", "lake_poll_choices", "lake_votes", "events"} {
		var count int
		err := conn.Get(&count, "SELECT COUNT(*) FROM "+table)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigrateUnknownType(t *testing.T) {
	conn := openTestDB(t)
	assert.Error(t, Migrate(conn, "mysql"))
}

func TestForeignKeysEnforced(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, Migrate(conn, cliparse.DatabaseSQLite))

	_, err := conn.Exec(`INSERT INTO anglers (user_id, type) VALUES ('missing-user', 'member')`)
	assert.Error(t, err, "angler without a user must be rejected")
}

func TestAnglerTypeCheck(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, Migrate(conn, cliparse.DatabaseSQLite))

	_, err := conn.Exec(`INSERT INTO users (id, username, password_hash, date_joined) VALUES ('u1', 'u1', 'x', ?)`, time.Now().UTC())
	require.NoError(t, err)

	_, err = conn.Exec(`INSERT INTO anglers (user_id, type) VALUES ('u1', 'captain')`)
	assert.Error(t, err)
}

func TestEnsureSuperuser(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, Migrate(conn, cliparse.DatabaseSQLite))
	ctx := context.Background()

	created, err := EnsureSuperuser(ctx, conn, "Admin", "correct-horse", time.Now())
	require.NoError(t, err)
	assert.True(t, created)

	var user models.User
	require.NoError(t, conn.Get(&user, `SELECT * FROM users WHERE username = 'admin'`))
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsActive)

	var anglerType string
	require.NoError(t, conn.Get(&anglerType, `SELECT type FROM anglers WHERE user_id = ?`, user.ID))
	assert.Equal(t, models.AnglerOfficer, anglerType)

	// Second call is a no-op
	created, err = EnsureSuperuser(ctx, conn, "admin", "correct-horse", time.Now())
	require.NoError(t, err)
	assert.False(t, created)

	var count int
	require.NoError(t, conn.Get(&count, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, count)
}

func TestEnsureSuperuserValidation(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, Migrate(conn, cliparse.DatabaseSQLite))
	ctx := context.Background()

	_, err := EnsureSuperuser(ctx, conn, "  ", "correct-horse", time.Now())
	assert.Error(t, err)

	_, err = EnsureSuperuser(ctx, conn, "admin", "short", time.Now())
	assert.Error(t, err)
}
