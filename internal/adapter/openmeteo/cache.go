package openmeteo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

// CachedProvider wraps a ForecastProvider with an in-memory LRU cache whose
// entries expire after a TTL. Concurrent misses for the same key share one
// upstream request.
type CachedProvider struct {
	inner   domain.ForecastProvider
	cache   *lruCache
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a forecast provider.
func NewCachedProvider(inner domain.ForecastProvider, maxEntries int, ttl time.Duration, clk clockwork.Clock, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clk),
		metrics: metrics,
	}
}

func (c *CachedProvider) Forecast(ctx context.Context, loc domain.Location) (domain.Forecast, error) {
	key := cacheKey(loc)
	if f, ok := c.cache.get(key); ok {
		c.metrics.ForecastCache.WithLabelValues("hit").Inc()
		// Keep the caller's name; the cached forecast may have been fetched under another.
		f.Location.Name = loc.Name
		return f, nil
	}
	c.metrics.ForecastCache.WithLabelValues("miss").Inc()

	// The shared fetch outlives any one caller's cancellation; the client's
	// own timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		f, err := c.inner.Forecast(fetchCtx, loc)
		if err != nil {
			return nil, err
		}
		c.cache.put(key, f)
		return f, nil
	})

	select {
	case <-ctx.Done():
		return domain.Forecast{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Forecast{}, res.Err
		}
		f := res.Val.(domain.Forecast)
		f.Location.Name = loc.Name
		return f, nil
	}
}

func cacheKey(loc domain.Location) string {
	return fmt.Sprintf("%s|%s|%d", loc.Coordinate, loc.Timezone, loc.PastDays)
}

// lruCache is a thread-safe LRU cache of forecasts with per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     domain.Forecast
	expiresAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clk clockwork.Clock) *lruCache {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clk,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.Forecast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Forecast{}, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return domain.Forecast{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.Forecast) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
