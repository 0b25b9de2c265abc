package tiling

import (
	"github.com/jsphweid/basstile/metrics"
	"github.com/jsphweid/basstile/score"
)

// TraitCache keeps the position independent axes (harmonic and
// transposability) per placement key for the lifetime of a session.
type TraitCache struct {
	entries map[Key]score.Partial
	hits    int
	misses  int
	metrics *metrics.Metrics
}

func NewTraitCache(m *metrics.Metrics) *TraitCache {
	if m == nil {
		m = metrics.Nop()
	}
	return &TraitCache{entries: make(map[Key]score.Partial), metrics: m}
}

func (c *TraitCache) Lookup(k Key, compute func() score.Partial) score.Partial {
	if p, ok := c.entries[k]; ok {
		c.hits++
		c.metrics.TraitHits.Inc()
		return p
	}
	c.misses++
	c.metrics.TraitMisses.Inc()
	p := compute()
	c.entries[k] = p
	return p
}

func (c *TraitCache) Hits() int {
	return c.hits
}

func (c *TraitCache) Misses() int {
	return c.misses
}

func (c *TraitCache) Len() int {
	return len(c.entries)
}

// Clear forgets every entry. Call it before working on an unrelated
// composition.
func (c *TraitCache) Clear() {
	c.entries = make(map[Key]score.Partial)
	c.hits = 0
	c.misses = 0
}
