package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Probe defaults: 300 attempts at 1-second spacing gives a 5-minute ceiling.
const (
	DefaultProbeAttempts = 300
	DefaultProbeInterval = time.Second
)

// WaitReady repeatedly issues a trivial query until the database answers,
// waiting interval between attempts, for at most attempts tries. It is a
// liveness gate for process startup: the caller must treat an error as fatal
// and not begin serving traffic.
func WaitReady(ctx context.Context, db *sql.DB, attempts int, interval time.Duration) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		var one int
		err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
		if err == nil {
			slog.Info("database ready", "attempt", attempt)
			return nil
		}
		lastErr = err
		slog.Warn("database not ready", "attempt", attempt, "attempts", attempts, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for database: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}
