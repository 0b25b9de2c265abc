package tiling

import (
	"github.com/jsphweid/basstile/config"
	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/metrics"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/phrase"
	"github.com/jsphweid/basstile/score"
)

// Scorer fills in the axes of a placement's score as far as the current
// coverage allows. Axes it can't settle yet stay pending and are computed on
// a later call.
type Scorer struct {
	settings config.Settings
	adapter  PhraseAdapter
	traits   *TraitCache
	metrics  *metrics.Metrics
}

func NewScorer(settings config.Settings, adapter PhraseAdapter, traits *TraitCache, m *metrics.Metrics) *Scorer {
	if adapter == nil {
		adapter = TransposingAdapter{}
	}
	if m == nil {
		m = metrics.Nop()
	}
	if traits == nil {
		traits = NewTraitCache(m)
	}
	return &Scorer{settings: settings, adapter: adapter, traits: traits, metrics: m}
}

func (s *Scorer) traitsOf(p *Placement) score.Partial {
	return score.NewPartial().
		Resolve(score.Harmonic, harmonicAxis(p.Fragment, p.Target)).
		Resolve(score.Transposability, p.Fragment.Transposability)
}

// Score refines p against cm and returns its score, or the zero score when
// the placement is vetoed or admit rejects it. cm may be nil, in which case
// the boundary axes stay pending.
func (s *Scorer) Score(p *Placement, cm *CoverageMap, admit score.Predicate) score.Score {
	s.metrics.Scored.Inc()

	part := p.partial
	if part.Pending(score.Harmonic) || part.Pending(score.Transposability) {
		part = score.Merge(part, s.traits.Lookup(p.Key, func() score.Partial {
			return s.traitsOf(p)
		}))
	}
	if part.Pending(score.Tempo) {
		part = part.Resolve(score.Tempo, tempoAxis(p.Fragment, p.Target.Tempo))
	}
	if cm != nil {
		if part.Pending(score.PreTarget) {
			if v, ok := s.pre(p, cm); ok {
				part = part.Resolve(score.PreTarget, v)
			}
		}
		if part.Pending(score.PostTarget) {
			if v, ok := s.post(p, cm); ok {
				part = part.Resolve(score.PostTarget, v)
			}
		}
	}
	p.partial = part

	res := part.Score()
	if s.vetoed(p.Fragment, part) || (admit != nil && !admit(res)) {
		return score.Score{}
	}
	return res
}

func (s *Scorer) vetoed(f *model.Fragment, part score.Partial) bool {
	if !f.StartsOnChordTone && !s.settings.AcceptNonChordBassStart {
		if v, ok := part.Value(score.PreTarget); !ok || v < constants.PerfectBridge {
			return true
		}
	}
	if !f.EndsOnChordTone {
		if v, ok := part.Value(score.PostTarget); !ok || v < constants.PerfectBridge {
			return true
		}
	}
	return false
}

// pre rates how the predecessor leads into p. ok is false while the
// predecessor bar is usable but unclaimed.
func (s *Scorer) pre(p *Placement, cm *CoverageMap) (float64, bool) {
	if !cm.Usable(BarRange{From: p.Bars.From - 1, To: p.Bars.To}) {
		return constants.NeutralBridge, true
	}
	prev := cm.At(p.Bars.From - 1)
	if prev == nil {
		return 0, false
	}
	first, ok := phrase.First(p.Adapted(s.adapter))
	if !ok {
		return constants.NeutralBridge, true
	}
	return s.bridge(prev, first), true
}

func (s *Scorer) post(p *Placement, cm *CoverageMap) (float64, bool) {
	if !cm.Usable(BarRange{From: p.Bars.From, To: p.Bars.To + 1}) {
		return constants.NeutralBridge, true
	}
	next := cm.At(p.Bars.To + 1)
	if next == nil {
		return 0, false
	}
	first, ok := phrase.First(next.Adapted(s.adapter))
	if !ok {
		return constants.NeutralBridge, true
	}
	return s.bridge(p, first), true
}

// bridge rates from leading into a note of pitch to.
func (s *Scorer) bridge(from *Placement, to uint8) float64 {
	if pitch, ok := from.BridgePitch(s.adapter); ok && pitch == to {
		return constants.PerfectBridge
	}
	if last, ok := phrase.Last(from.Adapted(s.adapter)); ok && last == to {
		return constants.CollidingBridge
	}
	return constants.NeutralBridge
}
