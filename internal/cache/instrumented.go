package cache

// instrumentedCache records hit/miss counters for every Get.
type instrumentedCache struct {
	inner Cache
	group string
}

func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	registerEntriesGauge(group, inner.Len)
	return &instrumentedCache{inner: inner, group: group}
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		HitsTotal.WithLabelValues(c.group).Inc()
	} else {
		MissesTotal.WithLabelValues(c.group).Inc()
	}
	return val, ok
}

func (c *instrumentedCache) Set(key string, value []byte) { c.inner.Set(key, value) }
func (c *instrumentedCache) Contains(key string) bool     { return c.inner.Contains(key) }
func (c *instrumentedCache) Len() int                     { return c.inner.Len() }

func (c *instrumentedCache) Close() error {
	unregisterEntriesGauge(c.group)
	return c.inner.Close()
}
