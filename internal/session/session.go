// Package session holds the state of one signed-in dashboard user: the
// access token, the profile and the lists several screens share. A Store
// is created at session start and cleared on logout.
package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
)

// Authenticator exchanges credentials and reads the profile behind the
// token the Store hands out.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context) (*domain.User, error)
}

// Saved is what survives a restart.
type Saved struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

// Persister keeps the token and profile across restarts.
type Persister interface {
	Save(ctx context.Context, s Saved) error
	// Load returns nil when nothing was saved.
	Load(ctx context.Context) (*Saved, error)
	Clear(ctx context.Context) error
}

type Store struct {
	mu         sync.RWMutex
	token      string
	user       *domain.User
	orders     []domain.Order
	deliveries []domain.Delivery

	persister Persister
	logger    *slog.Logger
}

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(opts ...Option) *Store {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token is the access token, empty when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// User returns a copy of the profile, nil when unknown.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Role is the role of the signed-in user, empty when unknown.
func (s *Store) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// Login exchanges credentials for a token and loads the profile. A profile
// failure is logged and leaves the user unknown; the login still stands.
func (s *Store) Login(ctx context.Context, auth Authenticator, email, password string) error {
	token, err := auth.Login(ctx, email, password)
	if err != nil {
		s.logger.WarnContext(ctx, "login failed", "error", err)
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = nil
	s.orders, s.deliveries = nil, nil
	s.mu.Unlock()

	if _, err := s.FetchProfile(ctx, auth); err != nil {
		s.logger.WarnContext(ctx, "failed to fetch profile", "error", err)
	}
	s.persist(ctx)
	return nil
}

// FetchProfile reloads the profile of the current token. Without a token it
// does nothing. auth sees s as the session of ctx.
func (s *Store) FetchProfile(ctx context.Context, auth Authenticator) (*domain.User, error) {
	if !s.IsAuthenticated() {
		return nil, nil
	}
	u, err := auth.Profile(NewContext(ctx, s))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return s.User(), nil
}

// Logout forgets everything, including what was persisted.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.orders, s.deliveries = nil, nil
	s.mu.Unlock()

	if s.persister == nil {
		return nil
	}
	return s.persister.Clear(ctx)
}

// Restore loads the persisted token and profile, if any.
func (s *Store) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	saved, err := s.persister.Load(ctx)
	if err != nil || saved == nil {
		return err
	}
	s.mu.Lock()
	s.token = saved.Token
	s.user = saved.User
	s.mu.Unlock()
	return nil
}

func (s *Store) persist(ctx context.Context) {
	if s.persister == nil {
		return
	}
	s.mu.RLock()
	saved := Saved{Token: s.token, User: s.user}
	s.mu.RUnlock()
	if err := s.persister.Save(ctx, saved); err != nil {
		s.logger.WarnContext(ctx, "failed to persist session", "error", err)
	}
}

// Orders is the shared order list.
func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

func (s *Store) SetOrders(list []domain.Order) {
	s.mu.Lock()
	s.orders = slices.Clone(list)
	s.mu.Unlock()
}

// ReplaceOrder swaps the entry with o's id. Orders not in the list are
// ignored.
func (s *Store) ReplaceOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			s.orders[i] = o
			return
		}
	}
}

func (s *Store) Deliveries() []domain.Delivery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.deliveries)
}

func (s *Store) SetDeliveries(list []domain.Delivery) {
	s.mu.Lock()
	s.deliveries = slices.Clone(list)
	s.mu.Unlock()
}

// RefreshOrders replaces the shared order list with a fresh fetch. The
// last refresh to finish wins. On error the list is left as it was.
func (s *Store) RefreshOrders(ctx context.Context, fetch func(context.Context) ([]domain.Order, error)) ([]domain.Order, error) {
	list, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.SetOrders(list)
	return list, nil
}

// RefreshDeliveries is RefreshOrders for the delivery list.
func (s *Store) RefreshDeliveries(ctx context.Context, fetch func(context.Context) ([]domain.Delivery, error)) ([]domain.Delivery, error) {
	list, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.SetDeliveries(list)
	return list, nil
}

// MemoryPersister keeps the saved session in process.
type MemoryPersister struct {
	mu    sync.Mutex
	saved *Saved
}

func (m *MemoryPersister) Save(_ context.Context, s Saved) error {
	m.mu.Lock()
	m.saved = &s
	m.mu.Unlock()
	return nil
}

func (m *MemoryPersister) Load(context.Context) (*Saved, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return nil, nil
	}
	s := *m.saved
	return &s, nil
}

func (m *MemoryPersister) Clear(context.Context) error {
	m.mu.Lock()
	m.saved = nil
	m.mu.Unlock()
	return nil
}
