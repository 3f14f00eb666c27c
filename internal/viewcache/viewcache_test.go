package viewcache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrmdash/internal/viewcache"
)

// go test -v --run ^TestGetOrBuildMemoizes$
func TestGetOrBuildMemoizes(t *testing.T) {
	var hits, misses int
	c, err := viewcache.New(100, 0, func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	})
	require.NoError(t, err)
	defer c.Close()

	builds := 0
	build := func() []int {
		builds++
		return []int{1, 2, 3}
	}

	first := viewcache.GetOrBuild(c, viewcache.KeyKPIs, build)
	second := viewcache.GetOrBuild(c, viewcache.KeyKPIs, build)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

// go test -v --run ^TestGetOrBuildNilCache$
func TestGetOrBuildNilCache(t *testing.T) {
	builds := 0
	for i := 0; i < 2; i++ {
		viewcache.GetOrBuild(nil, viewcache.KeyMap, func() string {
			builds++
			return "map"
		})
	}
	assert.Equal(t, 2, builds)
}

// go test -v --run ^TestMarketKeyDistinguishesForecast$
func TestMarketKeyDistinguishesForecast(t *testing.T) {
	assert.NotEqual(t, viewcache.MarketKey(true), viewcache.MarketKey(false))
}
