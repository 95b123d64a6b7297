// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/auth"
	"github.com/danielhkuo/sabc/models"
)

// EnsureSuperuser creates a superuser with an officer profile unless the
// username is already taken. Returns true when a user was created.
func EnsureSuperuser(ctx context.Context, conn *sqlx.DB, username, password string, now time.Time) (bool, error) {
	username = auth.NormalizeUsername(username)
	if username == "" {
		return false, errors.New("superuser username required")
	}

	var existing string
	err := conn.GetContext(ctx, &existing, conn.Rebind(`SELECT id FROM users WHERE username = ?`), username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to look up superuser: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	userID := auth.NewID()
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO users (id, username, password_hash, is_superuser, is_active, date_joined)
		VALUES (?, ?, ?, ?, ?, ?)
	`), userID, username, hash, true, true, now.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert superuser: %w", err)
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO anglers (user_id, type) VALUES (?, ?)
	`), userID, models.AnglerOfficer)
	if err != nil {
		return false, fmt.Errorf("failed to insert superuser angler: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit superuser: %w", err)
	}
	return true, nil
}
