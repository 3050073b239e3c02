package sagalog

import (
	"context"
	"sync"
)

// MemoryRepository keeps the log in process. It is used when no database
// path is configured and in tests.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []SagaLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Save(_ context.Context, entry *SagaLog) error {
	m.mu.Lock()
	m.entries = append(m.entries, *entry)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) GetLatest(_ context.Context, sagaID string) (*SagaLog, error) {
	return m.latest(func(e SagaLog) bool { return e.SagaID == sagaID })
}

func (m *MemoryRepository) LatestForOrder(_ context.Context, orderID string) (*SagaLog, error) {
	return m.latest(func(e SagaLog) bool { return e.OrderID == orderID })
}

// Entries returns every row of a saga in insertion order.
func (m *MemoryRepository) Entries(sagaID string) []SagaLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SagaLog
	for _, e := range m.entries {
		if e.SagaID == sagaID {
			out = append(out, e)
		}
	}
	return out
}

func (m *MemoryRepository) latest(match func(SagaLog) bool) (*SagaLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if match(m.entries[i]) {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, ErrNotFound
}
