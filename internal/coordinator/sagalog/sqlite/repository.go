// Package sqlite provides a SQLite-backed implementation of sagalog.Repository.
//
// WAL mode is enabled on Open so readers never block the writer: sagas
// append rows while the gateway serves the latest row of an order.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/bizops-dashboard/internal/coordinator/sagalog"

	// Register the pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
// The table is append-only: each row is an immutable event in the saga's
// lifecycle. The highest id per saga_id is its current state.
const schema = `
CREATE TABLE IF NOT EXISTS saga_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- One saga execution. Not UNIQUE: one row per transition.
    saga_id         TEXT        NOT NULL,

    -- Action name, e.g. ship_order.
    saga_type       TEXT        NOT NULL DEFAULT '',

    -- Order the action ran on.
    order_id        TEXT        NOT NULL DEFAULT '',

    status          TEXT        NOT NULL,

    -- Name of the step that just executed or failed.
    current_step    TEXT        NOT NULL DEFAULT '',

    -- JSON payload that started the saga. Written once on STARTED, NULL after.
    payload         TEXT,

    -- JSON array of error strings accumulated during failure/compensation.
    error_messages  TEXT        NOT NULL DEFAULT '[]',

    -- W3C ids of the span that was active when the row was written.
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',

    -- RFC3339 timestamp stored as TEXT.
    updated_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_saga_logs_saga_id ON saga_logs(saga_id, id);
CREATE INDEX IF NOT EXISTS idx_saga_logs_order_id ON saga_logs(order_id, id);
CREATE INDEX IF NOT EXISTS idx_saga_logs_trace_id ON saga_logs(trace_id);
`

const selectColumns = `
		SELECT saga_id, saga_type, order_id, status, current_step, COALESCE(payload,''),
		       error_messages, trace_id, span_id, updated_at
		FROM   saga_logs`

// Repository is the SQLite implementation of sagalog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	repo, err := sqlite.Open("./data/dashboard.db")
func Open(path string) (*Repository, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	repo, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenDB opens the database with the pragmas every table in it relies on.
// The session store shares the handle.
func OpenDB(path string) (*sql.DB, error) {
	// busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)
	return db, nil
}

// New applies the schema on an open handle.
func New(db *sql.DB) (*Repository, error) {
	if err := applySchema(db); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new saga log entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *sagalog.SagaLog) error {
	const q = `
		INSERT INTO saga_logs
			(saga_id, saga_type, order_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SagaID,
		entry.SagaType,
		entry.OrderID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		FormatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save saga log for %q: %w", entry.SagaID, err)
	}
	return nil
}

// GetLatest returns the most recent log entry for a given saga ID.
func (r *Repository) GetLatest(ctx context.Context, sagaID string) (*sagalog.SagaLog, error) {
	const q = selectColumns + `
		WHERE  saga_id = ?
		ORDER  BY id DESC
		LIMIT  1`

	entry, err := r.scan(r.db.QueryRowContext(ctx, q, sagaID))
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for saga %q: %w", sagaID, err)
	}
	return entry, nil
}

// LatestForOrder returns the most recent log entry of any saga on the order.
func (r *Repository) LatestForOrder(ctx context.Context, orderID string) (*sagalog.SagaLog, error) {
	const q = selectColumns + `
		WHERE  order_id = ?
		ORDER  BY id DESC
		LIMIT  1`

	entry, err := r.scan(r.db.QueryRowContext(ctx, q, orderID))
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for order %q: %w", orderID, err)
	}
	return entry, nil
}

func (r *Repository) scan(row *sql.Row) (*sagalog.SagaLog, error) {
	var entry sagalog.SagaLog
	var updatedAt string
	err := row.Scan(
		&entry.SagaID,
		&entry.SagaType,
		&entry.OrderID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sagalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	entry.UpdatedAt, err = parseRFC3339(updatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString returns nil for empty strings so SQLite stores NULL
// instead of an empty TEXT on non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
