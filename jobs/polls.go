// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/middleware"
)

// PollCloser marks lake polls complete once their end time has passed
type PollCloser struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPollCloser(db *sqlx.DB) *PollCloser {
	return &PollCloser{db: db, now: time.Now}
}

func (p *PollCloser) Name() string { return "close-lake-polls" }

// Run closes every open poll whose end time is at or before now
func (p *PollCloser) Run(ctx context.Context) error {
	_, err := p.CloseExpired(ctx)
	return err
}

// CloseExpired is Run that also reports how many polls were closed
func (p *PollCloser) CloseExpired(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx, p.db.Rebind(`
		UPDATE lake_polls SET complete = ?
		WHERE complete = ? AND ends_at <= ?
	`), true, false, p.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to close expired polls: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count closed polls: %w", err)
	}
	if n > 0 {
		middleware.RecordPollsClosed(n)
		slog.Info("lake polls closed", "count", n)
	}
	return n, nil
}
