// Package cache is a small string key/value cache with a Redis adapter for
// shared deployments and an in-process adapter for a single instance.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Cache interface {
	// Set stores value under key. A zero ttl keeps the entry until deleted.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get reports found=false on a miss; a miss is not an error.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Delete(ctx context.Context, keys ...string) error
	// Keys lists the keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	GenerateKey(operation, key string) string
	Close() error
}

func generateKey(namespace, operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", namespace, operation, key)
}

// Prefix returns the key prefix shared by every key of namespace.
func Prefix(namespace string) string {
	return strings.TrimSuffix(namespace, ":") + ":"
}
