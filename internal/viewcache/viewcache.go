// Package viewcache memoizes rendered views of data that never changes after
// startup (KPI sparklines, market chart, risk heatmap, vessel map).
package viewcache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

const (
	KeyKPIs    = "kpis"
	KeyHeatmap = "heatmap"
	KeyMap     = "vessel_map"
)

func MarketKey(forecast bool) string {
	return fmt.Sprintf("market:forecast=%t", forecast)
}

// LookupObserver is told about every hit or miss.
type LookupObserver func(hit bool)

type Cache struct {
	c        *ristretto.Cache[string, any]
	ttl      time.Duration
	observer LookupObserver
}

func New(maxCost int64, ttl time.Duration, observer LookupObserver) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
		// costs count views, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create view cache: %w", err)
	}
	if observer == nil {
		observer = func(bool) {}
	}
	return &Cache{c: c, ttl: ttl, observer: observer}, nil
}

func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.c.Get(key)
	c.observer(ok)
	return v, ok
}

// Set stores val and waits until it is visible to Get.
func (c *Cache) Set(key string, val any) {
	if c.ttl > 0 {
		c.c.SetWithTTL(key, val, 1, c.ttl)
	} else {
		c.c.Set(key, val, 1)
	}
	c.c.Wait()
}

func (c *Cache) Close() { c.c.Close() }

// GetOrBuild returns the cached view under key, building and storing it on a
// miss. A nil cache always builds.
func GetOrBuild[T any](c *Cache, key string, build func() T) T {
	if c == nil {
		return build()
	}
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed
		}
	}
	v := build()
	c.Set(key, v)
	return v
}
