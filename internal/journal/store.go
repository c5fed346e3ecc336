package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mediaorg/internal/config"
)

// ErrRunNotFound reports an unknown run ID or prefix.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRun reports a run ID prefix matching several runs.
var ErrAmbiguousRun = errors.New("run id prefix is ambiguous")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages the run journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the journal configured in cfg, creating it when absent.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.JournalPath())
}

// OpenPath connects to the journal database at path and applies migrations.
func OpenPath(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, source_root, target_root, mode, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceRoot, run.TargetRoot, run.Mode, RunRunning, encodeTime(started),
	)
	return err
}

// RecordOperation appends one planned file to a run.
func (s *Store) RecordOperation(ctx context.Context, op Operation) error {
	recorded := op.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO operations (
            run_id, seq, source_path, target_path, disposition, status, size_bytes, error_message, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		op.RunID, op.Seq, op.SourcePath, op.TargetPath, op.Disposition, op.Status, op.SizeBytes,
		nullIfEmpty(op.Error), encodeTime(recorded),
	)
	return err
}

// FinishRun stores final counters and status.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, totals Totals) error {
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, files_moved = ?, bytes_moved = ?, skipped = ?, errors = ? WHERE id = ?`,
		status, encodeTime(time.Now()), totals.FilesMoved, totals.BytesMoved, totals.Skipped, totals.Errors, runID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun resolves a full run ID or a unique prefix of one.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return Run{}, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		idOrPrefix, len(idOrPrefix), idOrPrefix,
	)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == idOrPrefix {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

// Operations returns a run's operations in plan order.
func (s *Store) Operations(ctx context.Context, runID string) ([]Operation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, seq, source_path, target_path, disposition, status, size_bytes, error_message, recorded_at
         FROM operations WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var (
			op          Operation
			status      string
			errMessage  sql.NullString
			recordedRaw string
		)
		if err := rows.Scan(&op.RunID, &op.Seq, &op.SourcePath, &op.TargetPath, &op.Disposition, &status, &op.SizeBytes, &errMessage, &recordedRaw); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.Status = OpStatus(status)
		op.Error = errMessage.String
		op.RecordedAt = decodeTime(recordedRaw)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
