package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Registry keeps one Store per browser session, keyed by the opaque id the
// gateway hands out at login.
type Registry struct {
	mu         sync.Mutex
	stores     map[string]*Store
	persisters func(id string) Persister
	logger     *slog.Logger
}

type RegistryOption func(*Registry)

// WithSessionPersisters makes every session durable under its id.
func WithSessionPersisters(f func(id string) Persister) RegistryOption {
	return func(r *Registry) { r.persisters = f }
}

func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{stores: map[string]*Store{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start opens a signed-out session under a fresh id.
func (r *Registry) Start() (string, *Store) {
	id := uuid.NewString()
	s := r.newStore(id)
	r.mu.Lock()
	r.stores[id] = s
	r.mu.Unlock()
	return id, s
}

// Lookup returns the signed-in session with id. A session unknown to this
// process is restored from its persister, so logins survive a restart.
func (r *Registry) Lookup(ctx context.Context, id string) (*Store, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[id]; ok {
		return s, s.IsAuthenticated()
	}
	if r.persisters == nil {
		return nil, false
	}

	s := r.newStore(id)
	if err := s.Restore(ctx); err != nil {
		r.logger.WarnContext(ctx, "could not restore session", "error", err)
		return nil, false
	}
	if !s.IsAuthenticated() {
		return nil, false
	}
	r.stores[id] = s
	return s, true
}

// End signs the session out and forgets it, persisted state included.
// Unknown ids are not an error.
func (r *Registry) End(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	r.mu.Lock()
	s, ok := r.stores[id]
	delete(r.stores, id)
	r.mu.Unlock()

	if !ok {
		if r.persisters == nil {
			return nil
		}
		s = r.newStore(id)
	}
	return s.Logout(ctx)
}

// Len is the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

func (r *Registry) newStore(id string) *Store {
	opts := []Option{WithLogger(r.logger)}
	if r.persisters != nil {
		opts = append(opts, WithPersister(r.persisters(id)))
	}
	return New(opts...)
}
