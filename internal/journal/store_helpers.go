package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, source_root, target_root, mode, status, started_at, finished_at, files_moved, bytes_moved, skipped, errors"

// storedTime keeps a fixed fraction width so timestamps sort as text.
const storedTime = "2006-01-02T15:04:05.000000000Z07:00"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
	)
	err := row.Scan(&run.ID, &run.SourceRoot, &run.TargetRoot, &run.Mode, &run.Status,
		&started, &finished,
		&run.Totals.FilesMoved, &run.Totals.BytesMoved, &run.Totals.Skipped, &run.Totals.Errors)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = decodeTime(started)
	run.FinishedAt = decodeTime(finished.String)
	return run, nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(storedTime)
}

// decodeTime returns the zero time for empty or unparsable values.
func decodeTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// busy reports SQLITE_BUSY and its extended codes, which another process
// holding the write lock produces once busy_timeout expires.
func busy(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		return coded.Code()&0xff == sqliteBusyCode
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

// exec runs a write, retrying with exponential backoff while the database
// is busy.
func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	backoff := busyRetryInitialBackoff
	for attempt := 1; ; attempt++ {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err == nil {
			return res, nil
		}
		if !busy(err) || attempt == busyRetryAttempts {
			return nil, fmt.Errorf("journal write: %w", err)
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff = min(2*backoff, busyRetryMaxBackoff)
	}
}
