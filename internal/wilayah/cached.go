package wilayah

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jcmexdev/bizops-dashboard/internal/pkg/cache"
)

// Namespace is the cache namespace region lists live under.
const Namespace = "wilayah"

// DefaultFetchTimeout bounds one shared upstream fetch.
const DefaultFetchTimeout = 30 * time.Second

// CachedSource keeps every fetched list for as long as the cache lives.
// Region codes are a small, fixed set, so nothing is ever evicted.
// Concurrent misses on the same key share one fetch.
type CachedSource struct {
	next         Source
	cache        cache.Cache
	group        singleflight.Group
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// CacheInfo describes what is cached.
type CacheInfo struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// NewCachedSource wraps next. c should be created with Namespace.
func NewCachedSource(next Source, c cache.Cache, logger *slog.Logger) *CachedSource {
	if c == nil {
		c = cache.NewMemoryCache(Namespace)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{next: next, cache: c, fetchTimeout: DefaultFetchTimeout, logger: logger}
}

// Key is the cache key of one list, e.g. "wilayah:regencies:11".
func (s *CachedSource) Key(level Level, parentCode string) string {
	return s.cache.GenerateKey(string(level), parentCode)
}

func (s *CachedSource) Regions(ctx context.Context, level Level, parentCode string) ([]Region, error) {
	if err := checkRequest(level, parentCode); err != nil {
		return nil, err
	}
	key := s.Key(level, parentCode)

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "region cache read failed", "key", key, "error", err)
	} else if ok {
		var out []Region
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out, nil
		}
		s.logger.WarnContext(ctx, "region cache entry unreadable", "key", key)
	}

	// The shared fetch outlives any one caller; each caller waits on its own ctx.
	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		regions, err := s.next.Regions(fetchCtx, level, parentCode)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(regions); err == nil {
			if err := s.cache.Set(fetchCtx, key, string(b), 0); err != nil {
				s.logger.WarnContext(ctx, "region cache write failed", "key", key, "error", err)
			}
		}
		return regions, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	regions := res.Val.([]Region)
	out := make([]Region, len(regions))
	copy(out, regions)
	return out, nil
}

// ClearCache drops every cached list.
func (s *CachedSource) ClearCache(ctx context.Context) error {
	keys, err := s.cache.Keys(ctx, cache.Prefix(Namespace))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.cache.Delete(ctx, keys...)
}

func (s *CachedSource) CacheInfo(ctx context.Context) (CacheInfo, error) {
	keys, err := s.cache.Keys(ctx, cache.Prefix(Namespace))
	if err != nil {
		return CacheInfo{}, err
	}
	return CacheInfo{Size: len(keys), Keys: keys}, nil
}
