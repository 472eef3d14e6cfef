// Package history persists the panel's activity feed in a DuckDB file so the
// feed survives restarts even though file records do not.
package history

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/filepanel/backend/internal/models"
)

// Log is a DuckDB-backed append-only activity log.
type Log struct {
	db        *sql.DB
	mu        sync.Mutex
	retention int
}

// NewLog opens (or creates) the activity database at dbPath. retention caps
// the number of rows kept by Prune; zero or negative disables pruning.
func NewLog(dbPath string, retention int) (*Log, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating duckdb connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS activity_seq;
		CREATE TABLE IF NOT EXISTS activity (
			id          BIGINT PRIMARY KEY DEFAULT nextval('activity_seq'),
			operation   VARCHAR NOT NULL,
			file_id     VARCHAR NOT NULL,
			file_name   VARCHAR NOT NULL,
			detail      VARCHAR,
			occurred_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating activity table: %w", err)
	}

	return &Log{db: db, retention: retention}, nil
}

// Record appends one operation to the log.
func (l *Log) Record(ctx context.Context, op, fileID, fileName, detail string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO activity (operation, file_id, file_name, detail, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		op, fileID, fileName, detail, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting activity row: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, operation, file_id, file_name, COALESCE(detail, ''), occurred_at
		 FROM activity ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	defer rows.Close()

	entries := make([]models.ActivityEntry, 0, limit)
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Operation, &e.FileID, &e.FileName, &e.Detail, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune drops rows beyond the configured retention, oldest first.
func (l *Log) Prune(ctx context.Context) error {
	if l.retention <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx, `
		DELETE FROM activity WHERE id NOT IN (
			SELECT id FROM activity ORDER BY id DESC LIMIT ?
		)`, l.retention)
	if err != nil {
		return fmt.Errorf("pruning activity: %w", err)
	}
	return nil
}

// Close releases the database.
func (l *Log) Close() error {
	return l.db.Close()
}
