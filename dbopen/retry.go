package dbopen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// busyRetries is how many attempts a write gets before the busy error is
// returned to the caller. Backoff grows linearly: 100, 200, 300 ms.
const busyRetries = 3

// IsBusy reports whether err is an SQLite BUSY condition: SQLITE_BUSY or one
// of the "database is locked" message variants.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// Exec runs a write statement, retrying on SQLITE_BUSY. Concurrent writers
// on a WAL database briefly lock each other out; a short backoff is enough
// to drain the contention.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := withRetry(ctx, func() error {
		var err error
		res, err = db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for i := range busyRetries {
		if err = fn(); err == nil || !IsBusy(err) {
			return err
		}
		if i == busyRetries-1 {
			break
		}
		t := time.NewTimer(time.Duration(100*(i+1)) * time.Millisecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("dbopen: retry interrupted: %w", ctx.Err())
		case <-t.C:
		}
	}
	return err
}
