package openmeteo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

// --- mock for cache tests ---

type countingProvider struct {
	calls  int
	result domain.Forecast
	err    error
}

func (m *countingProvider) Forecast(_ context.Context, loc domain.Location) (domain.Forecast, error) {
	m.calls++
	if m.err != nil {
		return domain.Forecast{}, m.err
	}
	f := m.result
	f.Location = loc
	return f, nil
}

func newCached(inner domain.ForecastProvider, clk clockwork.Clock) *CachedProvider {
	return NewCachedProvider(inner, 10, 5*time.Minute, clk, observability.NewMetricsForTesting())
}

// --- CachedProvider tests ---

func TestCachedProvider_CacheHit(t *testing.T) {
	inner := &countingProvider{result: domain.Forecast{Current: domain.CurrentConditions{Temperature: 21.4}}}
	cached := newCached(inner, clockwork.NewFakeClock())

	f1, err := cached.Forecast(context.Background(), testLocation)
	require.NoError(t, err)
	f2, err := cached.Forecast(context.Background(), testLocation)
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedProvider_ExpiresAfterTTL(t *testing.T) {
	clk := clockwork.NewFakeClock()
	inner := &countingProvider{}
	cached := newCached(inner, clk)

	_, _ = cached.Forecast(context.Background(), testLocation)
	clk.Advance(4 * time.Minute)
	_, _ = cached.Forecast(context.Background(), testLocation)
	assert.Equal(t, 1, inner.calls)

	clk.Advance(time.Minute)
	_, _ = cached.Forecast(context.Background(), testLocation)
	assert.Equal(t, 2, inner.calls, "entry should expire at the TTL")
}

func TestCachedProvider_DifferentLocationsMiss(t *testing.T) {
	inner := &countingProvider{}
	cached := newCached(inner, clockwork.NewFakeClock())

	other := testLocation
	other.Coordinate = domain.Coordinate{Lat: -33.9249, Lon: 18.4241}
	noHistory := testLocation
	noHistory.PastDays = 0

	_, _ = cached.Forecast(context.Background(), testLocation)
	_, _ = cached.Forecast(context.Background(), other)
	_, _ = cached.Forecast(context.Background(), noHistory)

	assert.Equal(t, 3, inner.calls)
}

func TestCachedProvider_ErrorsAreNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("upstream down")}
	cached := newCached(inner, clockwork.NewFakeClock())

	_, err := cached.Forecast(context.Background(), testLocation)
	require.Error(t, err)

	inner.err = nil
	_, err = cached.Forecast(context.Background(), testLocation)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_KeepsCallerName(t *testing.T) {
	inner := &countingProvider{}
	cached := newCached(inner, clockwork.NewFakeClock())

	_, _ = cached.Forecast(context.Background(), testLocation)
	renamed := testLocation
	renamed.Name = "Port Elizabeth"

	f, err := cached.Forecast(context.Background(), renamed)
	require.NoError(t, err)
	assert.Equal(t, "Port Elizabeth", f.Location.Name)
	assert.Equal(t, 1, inner.calls)
}

type gatedProvider struct {
	calls   atomic.Int32
	release chan struct{}
}

func (g *gatedProvider) Forecast(ctx context.Context, loc domain.Location) (domain.Forecast, error) {
	g.calls.Add(1)
	<-g.release
	if err := ctx.Err(); err != nil {
		return domain.Forecast{}, err
	}
	return domain.Forecast{Location: loc}, nil
}

func TestCachedProvider_ConcurrentMissesShareRequest(t *testing.T) {
	inner := &gatedProvider{release: make(chan struct{})}
	cached := newCached(inner, clockwork.NewFakeClock())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := cached.Forecast(context.Background(), testLocation)
			assert.NoError(t, err)
			assert.Equal(t, testLocation.Name, f.Location.Name)
		}()
	}
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCachedProvider_CancelledCallerDoesNotFailOthers(t *testing.T) {
	inner := &gatedProvider{release: make(chan struct{})}
	cached := newCached(inner, clockwork.NewFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cached.Forecast(ctx, testLocation)
	require.ErrorIs(t, err, context.Canceled)

	close(inner.release)
	f, err := cached.Forecast(context.Background(), testLocation)
	require.NoError(t, err)
	assert.Equal(t, testLocation.Name, f.Location.Name)
	assert.Equal(t, int32(1), inner.calls.Load(), "the in-flight fetch is shared, not restarted")
}

// --- LRU cache unit tests ---

func forecastAt(temp float64) domain.Forecast {
	return domain.Forecast{Current: domain.CurrentConditions{Temperature: temp}}
}

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3, time.Minute, clockwork.NewFakeClock())

	c.put("a", forecastAt(1))
	c.put("b", forecastAt(2))

	f, ok := c.get("a")
	assert.True(t, ok)
	assert.InDelta(t, 1.0, f.Current.Temperature, 1e-9)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2, time.Minute, clockwork.NewFakeClock())

	c.put("a", forecastAt(1))
	c.put("b", forecastAt(2))
	c.put("c", forecastAt(3)) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.size())
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2, time.Minute, clockwork.NewFakeClock())

	c.put("a", forecastAt(1))
	c.put("b", forecastAt(2))
	c.get("a")
	c.put("c", forecastAt(3))

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExistingRefreshesExpiry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := newLRUCache(2, time.Minute, clk)

	c.put("a", forecastAt(1))
	clk.Advance(50 * time.Second)
	c.put("a", forecastAt(2))
	clk.Advance(50 * time.Second)

	f, ok := c.get("a")
	require.True(t, ok)
	assert.InDelta(t, 2.0, f.Current.Temperature, 1e-9)
}

func TestLRUCache_ExpiredEntryIsRemoved(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := newLRUCache(2, time.Minute, clk)

	c.put("a", forecastAt(1))
	clk.Advance(time.Minute)

	_, ok := c.get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.size())
}
