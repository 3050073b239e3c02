package sagalog

import (
	"context"

	"github.com/jcmexdev/bizops-dashboard/internal/pkg/apperr"
)

// ErrNotFound is returned when no row matches a lookup.
var ErrNotFound = apperr.New(apperr.NotFound, "sagalog: no saga log entry")

// Repository is the port for persisting saga log entries.
// The coordinator depends on this abstraction, not on SQLite directly.
type Repository interface {
	// Save persists a new log entry. Each call appends a row; the table is
	// an append-only audit log, not an upsert.
	Save(ctx context.Context, entry *SagaLog) error

	// GetLatest returns the most recent entry of one saga execution.
	GetLatest(ctx context.Context, sagaID string) (*SagaLog, error)

	// LatestForOrder returns the most recent entry of any saga that ran on
	// the order.
	LatestForOrder(ctx context.Context, orderID string) (*SagaLog, error)
}
