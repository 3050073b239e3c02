package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
)

// memoryPersisters hands out one MemoryPersister per session id.
type memoryPersisters struct {
	mu   sync.Mutex
	byID map[string]*MemoryPersister
}

func (m *memoryPersisters) For(id string) Persister {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byID == nil {
		m.byID = map[string]*MemoryPersister{}
	}
	p, ok := m.byID[id]
	if !ok {
		p = &MemoryPersister{}
		m.byID[id] = p
	}
	return p
}

func TestRegistrySessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	idA, a := r.Start()
	idB, b := r.Start()
	require.NotEqual(t, idA, idB)

	require.NoError(t, a.Login(ctx, &fakeAuth{}, "a@b.c", "pw"))

	got, ok := r.Lookup(ctx, idA)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, "token-for-a@b.c", got.Token())

	_, ok = r.Lookup(ctx, idB)
	assert.False(t, ok, "signed-out session must not resolve")
	assert.Empty(t, b.Token())

	_, ok = r.Lookup(ctx, "")
	assert.False(t, ok)
	_, ok = r.Lookup(ctx, "unknown")
	assert.False(t, ok)
}

func TestRegistryEnd(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	id, s := r.Start()
	require.NoError(t, s.Login(ctx, &fakeAuth{}, "a@b.c", "pw"))
	require.Equal(t, 1, r.Len())

	require.NoError(t, r.End(ctx, id))
	assert.Equal(t, 0, r.Len())
	assert.False(t, s.IsAuthenticated())
	_, ok := r.Lookup(ctx, id)
	assert.False(t, ok)

	assert.NoError(t, r.End(ctx, id))
	assert.NoError(t, r.End(ctx, ""))
}

func TestRegistryRestoresAfterRestart(t *testing.T) {
	ctx := context.Background()
	persisters := &memoryPersisters{}

	first := NewRegistry(WithSessionPersisters(persisters.For))
	id, s := first.Start()
	require.NoError(t, s.Login(ctx, &fakeAuth{}, "a@b.c", "pw"))
	other, _ := first.Start()

	second := NewRegistry(WithSessionPersisters(persisters.For))
	got, ok := second.Lookup(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "token-for-a@b.c", got.Token())
	assert.Equal(t, domain.RoleCustomer, got.Role())

	_, ok = second.Lookup(ctx, other)
	assert.False(t, ok)
	assert.Equal(t, 1, second.Len())

	require.NoError(t, second.End(ctx, id))
	third := NewRegistry(WithSessionPersisters(persisters.For))
	_, ok = third.Lookup(ctx, id)
	assert.False(t, ok)
}

func TestTokensReadsSessionFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, Tokens{}.Token(ctx))
	assert.Nil(t, FromContext(ctx))

	s := New()
	require.NoError(t, s.Login(ctx, &fakeAuth{}, "a@b.c", "pw"))
	ctx = NewContext(ctx, s)
	assert.Same(t, s, FromContext(ctx))
	assert.Equal(t, "token-for-a@b.c", Tokens{}.Token(ctx))
}
