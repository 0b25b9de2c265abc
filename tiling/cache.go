package tiling

import (
	"math/rand"
	"sort"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/score"
)

// Source returns the fragments of one pool recorded over root profile.
type Source func(profile string) []*model.Fragment

type Candidate struct {
	Placement *Placement
	Score     score.Score
}

type slot struct {
	bar  int
	size int
}

type occurrence struct {
	fragment string
	bar      int
}

// Cache ranks candidate placements per (bar, size) for one fragment pool over
// one coverage map. Lists are filled on first use.
type Cache struct {
	cm        *CoverageMap
	scorer    *Scorer
	source    Source
	generated bool
	rng       *rand.Rand

	occurrences map[occurrence]*Placement
	entries     map[slot][]Candidate
	unsubscribe func()
}

// NewCache subscribes the cache to cm. Pass a nil rng to keep ties in
// store order.
func NewCache(cm *CoverageMap, scorer *Scorer, source Source, generated bool, rng *rand.Rand) *Cache {
	c := &Cache{
		cm:          cm,
		scorer:      scorer,
		source:      source,
		generated:   generated,
		rng:         rng,
		occurrences: make(map[occurrence]*Placement),
		entries:     make(map[slot][]Candidate),
	}
	c.unsubscribe = cm.Subscribe(c.onPlace)
	return c
}

// Close stops the cache from following cm.
func (c *Cache) Close() {
	c.unsubscribe()
}

// Candidates returns the positive-scoring placements for the size bars
// starting at bar, best first. Empty when the range isn't free.
func (c *Cache) Candidates(bar, size int) []Candidate {
	if size < 1 || size > constants.MaxFragmentBars {
		panic("fragment size out of range")
	}
	if !c.cm.Free(BarRange{From: bar, To: bar + size - 1}) {
		return nil
	}
	k := slot{bar: bar, size: size}
	if res, ok := c.entries[k]; ok {
		return res
	}
	res := c.populate(k)
	c.entries[k] = res
	return res
}

func (c *Cache) placement(f *model.Fragment, target model.ChordSlice, bar int) *Placement {
	k := occurrence{fragment: f.ID, bar: bar}
	if p, ok := c.occurrences[k]; ok {
		return p
	}
	p := NewPlacement(f, target, bar)
	c.occurrences[k] = p
	return p
}

func (c *Cache) populate(k slot) []Candidate {
	target := c.cm.Target(BarRange{From: k.bar, To: k.bar + k.size - 1})
	var res []Candidate
	for _, f := range c.source(chord.RootProfile(target)) {
		if f.Size != k.size {
			continue
		}
		p := c.placement(f, target, k.bar)
		if s := c.scorer.Score(p, c.cm, nil); s.Overall() > 0 {
			res = append(res, Candidate{Placement: p, Score: s})
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Score.Compare(res[j].Score) > 0
	})
	if c.rng != nil {
		c.shuffleBands(res)
	}
	return res
}

func band(s score.Score) int {
	return int(s.Overall() / constants.ScoreBandWidth)
}

// shuffleBands reorders candidates within each score band, keeping the bands
// themselves in order.
func (c *Cache) shuffleBands(cands []Candidate) {
	for lo := 0; lo < len(cands); {
		hi := lo + 1
		for hi < len(cands) && band(cands[hi].Score) == band(cands[lo].Score) {
			hi++
		}
		group := cands[lo:hi]
		c.rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		lo = hi
	}
}

// onPlace refreshes the lists bordering p: a committed neighbor settles
// their deferred boundary axes.
func (c *Cache) onPlace(p *Placement) {
	if c.generated {
		return
	}
	for size := 1; size <= constants.MaxFragmentBars; size++ {
		for _, k := range []slot{
			{bar: p.Bars.From - size, size: size},
			{bar: p.Bars.To + 1, size: size},
		} {
			if _, ok := c.entries[k]; !ok {
				continue
			}
			delete(c.entries, k)
			c.Candidates(k.bar, k.size)
		}
	}
}

// Reset drops every ranked list, keeping the placements and their partial
// scores. Call it after the pool gains fragments.
func (c *Cache) Reset() {
	c.entries = make(map[slot][]Candidate)
}
