// Package reqctx carries request correlation values through a
// context.Context so they can be forwarded on outbound backend calls.
package reqctx

import "context"

// contextKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type contextKey string

const (
	HeaderXRequestID      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"

	requestIDKey      contextKey = "x-request-id"
	idempotencyKeyKey contextKey = "x-idempotency-key"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithIdempotencyKey scopes an idempotency key to the calls made with ctx.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, idempotencyKeyKey, key)
}

func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyKey).(string)
	return key
}

// WithoutIdempotencyKey hides any key set further up ctx, so the calls
// made with the result are sent without one.
func WithoutIdempotencyKey(ctx context.Context) context.Context {
	if IdempotencyKey(ctx) == "" {
		return ctx
	}
	return context.WithValue(ctx, idempotencyKeyKey, "")
}
