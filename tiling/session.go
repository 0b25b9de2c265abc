package tiling

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/config"
	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/custom"
	"github.com/jsphweid/basstile/metrics"
	"github.com/jsphweid/basstile/model"
)

// Store is where fragments come from. Add reports false for fragments
// equivalent to one already stored.
type Store interface {
	Find(style model.Style, profile string) []*model.Fragment
	Add(f *model.Fragment) bool
	Related(f *model.Fragment) []*model.Fragment
}

// Synthesizer makes fragments of style for a gap no stored fragment covers.
type Synthesizer interface {
	Synthesize(style model.Style, gap model.ChordSlice, next *uint8) []*model.Fragment
}

// Session generates bass lines against one store. It owns the trait cache;
// call Clear before moving on to an unrelated composition. A Session is not
// safe for concurrent use.
type Session struct {
	store    Store
	settings config.Settings
	adapter  PhraseAdapter
	traits   *TraitCache
	synth    Synthesizer
	rng      *rand.Rand
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithRand seeds tie-breaking and synthesis. Tests pass a fixed seed.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

func WithAdapter(a PhraseAdapter) Option {
	return func(s *Session) { s.adapter = a }
}

func WithSynthesizer(syn Synthesizer) Option {
	return func(s *Session) { s.synth = syn }
}

func NewSession(store Store, settings config.Settings, opts ...Option) *Session {
	s := &Session{store: store, settings: settings}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.adapter == nil {
		s.adapter = TransposingAdapter{}
	}
	if s.synth == nil {
		s.synth = custom.New(store, settings, s.rng)
	}
	s.traits = NewTraitCache(s.metrics)
	return s
}

func (s *Session) Traits() *TraitCache {
	return s.traits
}

func (s *Session) Clear() {
	s.traits.Clear()
}

type Request struct {
	Composition Composition
	// the first style is the primary one; synthesized fragments use it
	Styles []model.Style
	// nil renders the whole composition
	Window *BarRange
}

type PhaseReport struct {
	Style  model.Style
	Phase  string
	Placed int
	// bars still uncovered after the phase
	Remaining int
}

type Result struct {
	Phrase   model.Phrase
	Map      *CoverageMap
	Phases   []PhaseReport
	Complete bool
}

// Generate tiles the request's window with fragments and renders the line.
// A result that leaves bars uncovered is still a success; those bars are
// silent.
func (s *Session) Generate(req Request) (Result, error) {
	if len(req.Styles) == 0 {
		panic("no bass styles requested")
	}
	comp := req.Composition
	if len(comp.Slice.Chords) == 0 || comp.Slice.Bars < 1 {
		return Result{}, &chord.ParseError{Bar: -1, Reason: "composition has no chords"}
	}
	window := BarRange{From: 0, To: comp.Slice.Bars - 1}
	if req.Window != nil {
		window = *req.Window
	}

	cm := NewCoverageMap(comp, window, s.adapter)
	scorer := NewScorer(s.settings, s.adapter, s.traits, s.metrics)
	primary := req.Styles[0]
	customCache := s.newCache(cm, scorer, CustomPool, primary)

	var res Result
	for i, style := range req.Styles {
		last := i == len(req.Styles)-1
		libraryCache := s.newCache(cm, scorer, LibraryPool, style)
		for _, ph := range PlanFor(style) {
			if cm.Complete() {
				break
			}
			cache, poolStyle := libraryCache, style
			if ph.Pool != LibraryPool {
				if !last {
					continue
				}
				cache, poolStyle = customCache, primary
			}
			placed := s.runPhase(cm, cache, ph, poolStyle)
			s.metrics.Placed.WithLabelValues(ph.Name).Add(float64(placed))
			remaining := len(cm.NonTiled())
			s.logger.Debug("phase finished",
				zap.String("style", string(poolStyle)),
				zap.String("phase", ph.Name),
				zap.Int("placed", placed),
				zap.Int("remaining", remaining))
			res.Phases = append(res.Phases, PhaseReport{Style: poolStyle, Phase: ph.Name, Placed: placed, Remaining: remaining})
		}
		libraryCache.Close()
	}
	customCache.Close()

	uncovered := cm.NonTiled()
	s.metrics.Uncovered.Observe(float64(len(uncovered)))
	if len(uncovered) > 0 {
		s.logger.Warn("bass line left bars uncovered",
			zap.Ints("bars", uncovered),
			zap.Strings("styles", styleNames(req.Styles)))
	}

	res.Map = cm
	res.Phrase = cm.Build()
	res.Complete = len(uncovered) == 0
	return res, nil
}

func styleNames(styles []model.Style) []string {
	res := make([]string, len(styles))
	for i, st := range styles {
		res[i] = string(st)
	}
	return res
}

func (s *Session) source(pool Pool, style model.Style) Source {
	if pool == LibraryPool {
		return func(profile string) []*model.Fragment {
			return s.store.Find(style, profile)
		}
	}
	return func(profile string) []*model.Fragment {
		var res []*model.Fragment
		for _, f := range s.store.Find(model.StyleCustom, profile) {
			if f.BaseStyle == style {
				res = append(res, f)
			}
		}
		return res
	}
}

func (s *Session) newCache(cm *CoverageMap, scorer *Scorer, pool Pool, style model.Style) *Cache {
	var rng *rand.Rand
	if s.settings.CacheRandomization {
		rng = s.rng
	}
	return NewCache(cm, scorer, s.source(pool, style), pool != LibraryPool, rng)
}

func (s *Session) runPhase(cm *CoverageMap, cache *Cache, ph Phase, style model.Style) int {
	strategy := NewStrategy(ph.Strategy, Deps{
		Admit:   ph.Admit,
		Related: s.store.Related,
		Rand:    s.rng,
	})

	if ph.Pool != GeneratedPool {
		return strategy.Tile(cm, cache)
	}

	placed := 0
	for n := constants.MaxFragmentBars; n >= 1 && !cm.Complete(); n-- {
		frags := cm.Synthesize(n, func(gap model.ChordSlice, next *uint8) []*model.Fragment {
			return s.synth.Synthesize(style, gap, next)
		})
		added := 0
		for _, f := range frags {
			if s.store.Add(f) {
				added++
			}
		}
		s.metrics.Synthesized.Add(float64(added))
		cache.Reset()
		placed += strategy.Tile(cm, cache)
	}
	return placed
}
