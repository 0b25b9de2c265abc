package tiling

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/score"
)

// Strategy greedily commits placements from cache into cm and reports how
// many it placed. Strategies never touch claimed bars.
type Strategy interface {
	Name() string
	Tile(cm *CoverageMap, cache *Cache) int
}

type StrategyKind string

const (
	LongestFirstKind StrategyKind = "longest-first"
	MaxDistanceKind  StrategyKind = "max-distance"
)

// Deps are what a strategy needs beyond the map and the cache.
type Deps struct {
	Admit score.Predicate
	// Related lists fragments cut from the same recording as f
	Related func(f *model.Fragment) []*model.Fragment
	Rand    *rand.Rand
}

var strategies = map[StrategyKind]func(Deps) Strategy{
	LongestFirstKind: func(d Deps) Strategy { return &longestFirst{deps: d} },
	MaxDistanceKind:  func(d Deps) Strategy { return &maxDistance{deps: d} },
}

func NewStrategy(kind StrategyKind, d Deps) Strategy {
	mk, ok := strategies[kind]
	if !ok {
		panic(fmt.Sprintf("unknown strategy %q", kind))
	}
	return mk(d)
}

func admitted(cands []Candidate, admit score.Predicate) []Candidate {
	if admit == nil {
		return cands
	}
	var res []Candidate
	for _, c := range cands {
		if admit(c.Score) {
			res = append(res, c)
		}
	}
	return res
}

func sourceRange(f *model.Fragment) BarRange {
	from, to := f.Bars()
	return BarRange{From: from, To: to}
}

// longestFirst fills the biggest gaps with the biggest fragments first.
type longestFirst struct {
	deps Deps
	used map[string]bool
}

func (s *longestFirst) Name() string {
	return string(LongestFirstKind)
}

func (s *longestFirst) related(f *model.Fragment) []*model.Fragment {
	if s.deps.Related == nil || f.Generated() {
		return nil
	}
	return s.deps.Related(f)
}

func (s *longestFirst) blocked(f *model.Fragment) bool {
	if s.used[f.ID] {
		return true
	}
	own := sourceRange(f)
	for _, r := range s.related(f) {
		if r.Size < f.Size && own.Overlap(sourceRange(r)) == r.Size && s.used[r.ID] {
			return true
		}
	}
	return false
}

func (s *longestFirst) markUsed(f *model.Fragment) {
	s.used[f.ID] = true
	own := sourceRange(f)
	for _, r := range s.related(f) {
		if r.Size < f.Size && own.Overlap(sourceRange(r)) > constants.NonStrictOverlapBars {
			s.used[r.ID] = true
		}
	}
}

// Tile repeats passes until one places nothing. Within a pass no fragment is
// placed twice.
func (s *longestFirst) Tile(cm *CoverageMap, cache *Cache) int {
	placed := 0
	for {
		n := s.pass(cm, cache)
		if n == 0 {
			return placed
		}
		placed += n
	}
}

func (s *longestFirst) pass(cm *CoverageMap, cache *Cache) int {
	s.used = make(map[string]bool)
	placed := 0
	for size := constants.MaxFragmentBars; size >= 1; size-- {
		for rank := 0; rank < constants.RankSlots; rank++ {
			for _, bar := range cm.NonTiled() {
				cands := admitted(cache.Candidates(bar, size), s.deps.Admit)
				if rank >= len(cands) {
					continue
				}
				c := cands[rank]
				if s.blocked(c.Placement.Fragment) {
					continue
				}
				cm.Place(c.Placement)
				s.markUsed(c.Placement.Fragment)
				placed++
			}
		}
	}
	return placed
}

// maxDistance walks the bars once and prefers fragments it hasn't used yet,
// or else the one used farthest back.
type maxDistance struct {
	deps Deps
}

func (s *maxDistance) Name() string {
	return string(MaxDistanceKind)
}

func (s *maxDistance) coin() bool {
	return s.deps.Rand != nil && s.deps.Rand.Intn(2) == 0
}

func (s *maxDistance) choose(cands []Candidate, lastUsed map[string]int, bar int) Candidate {
	best, bestDist := -1, -1
	for i, c := range cands {
		last, ok := lastUsed[c.Placement.Fragment.ID]
		if !ok {
			return c
		}
		dist := bar - last
		if dist > bestDist || (dist == bestDist && s.coin()) {
			best, bestDist = i, dist
		}
	}
	return cands[best]
}

func (s *maxDistance) Tile(cm *CoverageMap, cache *Cache) int {
	lastUsed := make(map[string]int)
	placed := 0
	w := cm.Window()
	for bar := w.From; bar <= w.To; {
		var pool []Candidate
		for size := 1; size <= constants.MaxFragmentBars; size++ {
			cands := admitted(cache.Candidates(bar, size), s.deps.Admit)
			if len(cands) > constants.MaxDistanceTopN {
				cands = cands[:constants.MaxDistanceTopN]
			}
			pool = append(pool, cands...)
		}
		if len(pool) == 0 {
			bar++
			continue
		}
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].Score.Compare(pool[j].Score) > 0
		})

		c := s.choose(pool, lastUsed, bar)
		cm.Place(c.Placement)
		lastUsed[c.Placement.Fragment.ID] = bar
		placed++
		bar += c.Placement.Fragment.Size
	}
	return placed
}
