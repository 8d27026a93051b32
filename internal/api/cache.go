package api

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

const rangeCacheTTL = 10 * time.Minute

// rangeCache holds encoded range responses. Entries are keyed by the grid
// generation, which every mutation bumps, so a response computed before a
// mutation can never be served after it.
type rangeCache struct {
	cache *ristretto.Cache[string, []byte]
	gen   atomic.Uint64
}

func newRangeCache() (*rangeCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 10000,
		MaxCost:     32 << 20, // 32MB of encoded JSON
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &rangeCache{cache: cache}, nil
}

func (c *rangeCache) key(requestKey string) string {
	return strconv.FormatUint(c.gen.Load(), 10) + "|" + requestKey
}

func (c *rangeCache) get(requestKey string) ([]byte, bool) {
	return c.cache.Get(c.key(requestKey))
}

// set stores body under the generation that was current when it was
// computed.
func (c *rangeCache) set(gen uint64, requestKey string, body []byte) {
	key := strconv.FormatUint(gen, 10) + "|" + requestKey
	c.cache.SetWithTTL(key, body, int64(len(body)), rangeCacheTTL)
	c.cache.Wait()
}

func (c *rangeCache) generation() uint64 {
	return c.gen.Load()
}

// invalidate drops every cached response.
func (c *rangeCache) invalidate() {
	c.gen.Add(1)
	c.cache.Clear()
}

func (c *rangeCache) close() {
	c.cache.Close()
}
