package session

import "context"

type contextKey struct{}

// NewContext returns a copy of ctx that carries s.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx, nil when there is none.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(contextKey{}).(*Store)
	return s
}

// Tokens hands the backend client the token of the session carried by the
// request context.
type Tokens struct{}

func (Tokens) Token(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.Token()
	}
	return ""
}
