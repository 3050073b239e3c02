package wilayah

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/bizops-dashboard/internal/pkg/apperr"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/cache"
)

// mapSource serves fixed lists and counts every lookup.
type mapSource struct {
	mu    sync.Mutex
	data  map[string][]Region
	calls []string
	err   error
	block chan struct{}
}

func newMapSource() *mapSource {
	return &mapSource{data: map[string][]Region{
		"provinces:":        {{Code: "51", Name: "BALI"}, {Code: "31", Name: "DKI JAKARTA"}},
		"regencies:51":      {{Code: "51.03", Name: "KABUPATEN BADUNG"}},
		"districts:51.03":   {{Code: "51.03.01", Name: "KUTA"}},
		"villages:51.03.01": {{Code: "51.03.01.1001", Name: "KEDONGANAN"}},
		"regencies:31":      {},
	}}
}

func (s *mapSource) Regions(ctx context.Context, level Level, parent string) ([]Region, error) {
	key := string(level) + ":" + parent
	s.mu.Lock()
	s.calls = append(s.calls, key)
	block, err := s.block, s.err
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return s.data[key], nil
}

func (s *mapSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("districts")
	require.NoError(t, err)
	assert.Equal(t, LevelDistrict, l)
	assert.Equal(t, LevelRegency, l.Parent())
	assert.Equal(t, "district", l.Singular())

	_, err = ParseLevel("planets")
	assert.ErrorIs(t, err, ErrUnknownLevel)
	assert.Equal(t, apperr.Invalid, apperr.Kind(err))
}

func TestHTTPSourceLayouts(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		level  Level
		parent string
		want   string
	}{
		{name: "upstream provinces", layout: LayoutUpstream, level: LevelProvince, want: "/provinces.json"},
		{name: "upstream regencies", layout: LayoutUpstream, level: LevelRegency, parent: "51", want: "/regencies/51.json"},
		{name: "proxy provinces", layout: LayoutProxy, level: LevelProvince, want: "/provinces"},
		{name: "proxy villages", layout: LayoutProxy, level: LevelVillage, parent: "51.03.01", want: "/villages/51.03.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				_, _ = w.Write([]byte(`{"data":[{"code":"51","name":"BALI"},{"code":"","name":"broken"}],"meta":{"administrative_area_level":1,"updated_at":"2025-01-01"}}`))
			}))
			defer srv.Close()

			src := NewHTTPSource(srv.URL+"/", WithLayout(tt.layout))
			got, err := src.Regions(context.Background(), tt.level, tt.parent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gotPath)
			assert.Equal(t, []Region{{Code: "51", Name: "BALI"}}, got)
		})
	}
}

func TestHTTPSourceErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewHTTPSource(srv.URL).Regions(context.Background(), LevelProvince, "")
		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, http.StatusServiceUnavailable, fe.Status)
		assert.Equal(t, apperr.Upstream, apperr.Kind(err))
	})

	t.Run("no data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"meta":{}}`))
		}))
		defer srv.Close()

		_, err := NewHTTPSource(srv.URL).Regions(context.Background(), LevelProvince, "")
		assert.ErrorIs(t, err, errNoData)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := NewHTTPSource(srv.URL).Regions(context.Background(), LevelProvince, "")
		assert.Equal(t, apperr.Unavailable, apperr.Kind(err))
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := NewHTTPSource("http://unused").Regions(context.Background(), LevelRegency, "")
		assert.ErrorIs(t, err, ErrParentRequired)
	})
}

func TestCachedSourceHitsUpstreamOnce(t *testing.T) {
	src := newMapSource()
	cached := NewCachedSource(src, cache.NewMemoryCache(Namespace), nil)
	ctx := context.Background()

	for range 3 {
		got, err := cached.Regions(ctx, LevelRegency, "51")
		require.NoError(t, err)
		assert.Equal(t, "KABUPATEN BADUNG", got[0].Name)
	}
	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, "wilayah:regencies:51", cached.Key(LevelRegency, "51"))

	info, err := cached.CacheInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, CacheInfo{Size: 1, Keys: []string{"wilayah:regencies:51"}}, info)

	require.NoError(t, cached.ClearCache(ctx))
	info, err = cached.CacheInfo(ctx)
	require.NoError(t, err)
	assert.Zero(t, info.Size)

	_, err = cached.Regions(ctx, LevelRegency, "51")
	require.NoError(t, err)
	assert.Equal(t, 2, src.callCount())
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	src := newMapSource()
	src.err = errors.New("down")
	cached := NewCachedSource(src, nil, nil)

	_, err := cached.Regions(context.Background(), LevelProvince, "")
	require.Error(t, err)

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()

	got, err := cached.Regions(context.Background(), LevelProvince, "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, src.callCount())
}

func TestCachedSourceCoalescesConcurrentMisses(t *testing.T) {
	src := newMapSource()
	src.block = make(chan struct{})
	cached := NewCachedSource(src, nil, nil)

	var wg sync.WaitGroup
	var ok atomic.Int32
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cached.Regions(context.Background(), LevelProvince, ""); err == nil {
				ok.Add(1)
			}
		}()
	}

	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.block)
	wg.Wait()

	assert.Equal(t, int32(5), ok.Load())
	assert.Equal(t, 1, src.callCount())
}

func TestCachedSourceCallerDeadlineDoesNotFailOthers(t *testing.T) {
	src := newMapSource()
	src.block = make(chan struct{})
	cached := NewCachedSource(src, nil, nil)

	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	shortErr := make(chan error, 1)
	go func() {
		_, err := cached.Regions(shortCtx, LevelProvince, "")
		shortErr <- err
	}()
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		list []Region
		err  error
	}
	patient := make(chan result, 1)
	go func() {
		list, err := cached.Regions(context.Background(), LevelProvince, "")
		patient <- result{list, err}
	}()

	assert.ErrorIs(t, <-shortErr, context.DeadlineExceeded)
	close(src.block)

	got := <-patient
	require.NoError(t, got.err)
	assert.Len(t, got.list, 2)
	assert.Equal(t, 1, src.callCount())

	// The shared fetch still filled the cache.
	_, err := cached.Regions(context.Background(), LevelProvince, "")
	require.NoError(t, err)
	assert.Equal(t, 1, src.callCount())
}

func TestCascadeSelectClearsDescendants(t *testing.T) {
	c := NewCascade(newMapSource())
	ctx := context.Background()

	require.NoError(t, c.LoadProvinces(ctx))
	require.NoError(t, c.SelectProvince(ctx, "51"))
	require.NoError(t, c.SelectRegency(ctx, "51.03"))
	require.NoError(t, c.SelectDistrict(ctx, "51.03.01"))
	c.SelectVillage("51.03.01.1001")

	assert.Equal(t, "KEDONGANAN, KUTA, KABUPATEN BADUNG, BALI", c.FullAddress())

	require.NoError(t, c.SelectRegency(ctx, "51.03"))
	s := c.Snapshot()
	assert.Equal(t, Selection{Province: "51", Regency: "51.03"}, s.Selected)
	assert.Len(t, s.Districts, 1)
	assert.Empty(t, s.Villages)

	require.NoError(t, c.SelectProvince(ctx, "31"))
	s = c.Snapshot()
	assert.Equal(t, Selection{Province: "31"}, s.Selected)
	assert.Empty(t, s.Regencies)
	assert.Empty(t, s.Districts)
	assert.Len(t, s.Provinces, 2)
	assert.Equal(t, "DKI JAKARTA", c.FullAddress())

	require.NoError(t, c.SelectProvince(ctx, ""))
	assert.Equal(t, Selection{}, c.Selected())
}

func TestCascadeFetchFailureLeavesListEmpty(t *testing.T) {
	src := newMapSource()
	c := NewCascade(src)
	require.NoError(t, c.LoadProvinces(context.Background()))

	src.mu.Lock()
	src.err = errors.New("down")
	src.mu.Unlock()

	err := c.SelectProvince(context.Background(), "51")
	require.Error(t, err)
	s := c.Snapshot()
	assert.Equal(t, "51", s.Selected.Province)
	assert.Empty(t, s.Regencies)
	assert.False(t, s.Loading.Regencies)
}

func TestSetSelectionsIsIdempotentAndCached(t *testing.T) {
	src := newMapSource()
	c := NewCascade(NewCachedSource(src, nil, nil))
	ctx := context.Background()

	require.NoError(t, c.LoadProvinces(ctx))
	require.NoError(t, c.SelectProvince(ctx, "51"))
	require.NoError(t, c.SelectRegency(ctx, "51.03"))
	first := c.Snapshot()
	calls := src.callCount()

	require.NoError(t, c.SetSelections(ctx, Selection{Province: "51", Regency: "51.03"}))
	assert.Equal(t, first.Selected, c.Selected())
	assert.Equal(t, calls, src.callCount())

	require.NoError(t, c.SetSelections(ctx, Selection{Province: "51", Regency: "51.03"}))
	assert.Equal(t, first, c.Snapshot())
	assert.Equal(t, calls, src.callCount())
}

func TestSetSelectionsAllLevels(t *testing.T) {
	c := NewCascade(newMapSource())
	ctx := context.Background()
	require.NoError(t, c.LoadProvinces(ctx))

	sel := Selection{Province: "51", Regency: "51.03", District: "51.03.01", Village: "51.03.01.1001"}
	require.NoError(t, c.SetSelections(ctx, sel))
	assert.Equal(t, sel, c.Selected())
	assert.Equal(t, "KEDONGANAN, KUTA, KABUPATEN BADUNG, BALI", c.FullAddress())
}

func TestSetSelectionsGivesUpOnEmptyChildLevel(t *testing.T) {
	c := NewCascade(newMapSource())

	err := c.SetSelections(context.Background(), Selection{Province: "31", Regency: "31.71"})
	require.ErrorIs(t, err, ErrOptionsNotLoaded)
	assert.Equal(t, Selection{Province: "31"}, c.Selected())
}

func TestSetSelectionsWaitIsBounded(t *testing.T) {
	src := newMapSource()
	src.block = make(chan struct{})
	defer close(src.block)
	c := NewCascade(src, WithWait(30*time.Millisecond))

	start := time.Now()
	err := c.SetSelections(context.Background(), Selection{Province: "51", Regency: "51.03"})
	require.ErrorIs(t, err, ErrOptionsNotLoaded)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResetKeepsProvinces(t *testing.T) {
	c := NewCascade(newMapSource())
	ctx := context.Background()
	require.NoError(t, c.LoadProvinces(ctx))
	require.NoError(t, c.SelectProvince(ctx, "51"))

	c.Reset()
	s := c.Snapshot()
	assert.Equal(t, Selection{}, s.Selected)
	assert.Len(t, s.Provinces, 2)
	assert.Nil(t, s.Regencies)
	assert.Empty(t, c.ProvinceName("99"))
	assert.Equal(t, "BALI", c.ProvinceName("51"))
}
