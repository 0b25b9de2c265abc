package tiling

import (
	"fmt"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/phrase"
	"github.com/jsphweid/basstile/score"
)

// BarRange is an inclusive range of bars.
type BarRange struct {
	From int
	To   int
}

func (r BarRange) Size() int {
	return r.To - r.From + 1
}

func (r BarRange) Contains(bar int) bool {
	return bar >= r.From && bar <= r.To
}

// Overlap counts the bars r shares with o.
func (r BarRange) Overlap(o BarRange) int {
	lo, hi := r.From, r.To
	if o.From > lo {
		lo = o.From
	}
	if o.To < hi {
		hi = o.To
	}
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}

func (r BarRange) String() string {
	return fmt.Sprintf("%d..%d", r.From, r.To)
}

// Key identifies what a placement is independent of where it sits: the same
// fragment over the same chords anywhere in a song shares a key.
type Key struct {
	FragmentID string
	Signature  string
}

// Placement binds one fragment to one bar range of a composition.
type Placement struct {
	Fragment *model.Fragment
	Bars     BarRange
	// Target is the chord slice under Bars, rebased to bar 0
	Target model.ChordSlice
	Key    Key

	partial score.Partial

	adapted    model.Phrase
	hasAdapted bool
	bridge     uint8
	hasBridge  bool
	bridgeDone bool
}

func NewPlacement(f *model.Fragment, target model.ChordSlice, from int) *Placement {
	if f.Size < 1 || f.Size != target.Bars {
		panic(fmt.Sprintf("fragment %s of size %d can't cover %d bars", f.ID, f.Size, target.Bars))
	}
	if from < 0 {
		panic(fmt.Sprintf("negative start bar %d", from))
	}
	return &Placement{
		Fragment: f,
		Bars:     BarRange{From: from, To: from + f.Size - 1},
		Target:   target,
		Key:      Key{FragmentID: f.ID, Signature: chord.Signature(target)},
		partial:  score.NewPartial(),
	}
}

func (p *Placement) Partial() score.Partial {
	return p.partial
}

// Score is the placement's score so far, pending axes counting as 0.
func (p *Placement) Score() score.Score {
	return p.partial.Score()
}

func (p *Placement) String() string {
	return fmt.Sprintf("%s@%s", p.Fragment.ID, p.Bars)
}

// Adapted returns the fragment's phrase moved onto the target, in beats from
// the start of the composition.
func (p *Placement) Adapted(a PhraseAdapter) model.Phrase {
	if !p.hasAdapted {
		p.adapted = a.Adapt(p)
		p.hasAdapted = true
	}
	return p.adapted
}

func (p *Placement) BridgePitch(a PhraseAdapter) (uint8, bool) {
	if !p.bridgeDone {
		p.bridge, p.hasBridge = a.PredictedBridgePitch(p)
		p.bridgeDone = true
	}
	return p.bridge, p.hasBridge
}

type PhraseAdapter interface {
	// Adapt transposes and shifts the fragment onto the placement. The first
	// note may start before the placement's first bar.
	Adapt(p *Placement) model.Phrase
	PredictedBridgePitch(p *Placement) (uint8, bool)
}

// TransposingAdapter moves a fragment by the shortest transposition between
// its home chords and the target.
type TransposingAdapter struct{}

func (TransposingAdapter) Adapt(p *Placement) model.Phrase {
	semis := chord.Transposition(p.Fragment.Home, p.Target)
	offset := float64(p.Bars.From) * chord.BeatsPerBar(p.Target.Time)
	return phrase.Shift(phrase.Transpose(p.Fragment.Phrase, semis), offset)
}

func (TransposingAdapter) PredictedBridgePitch(p *Placement) (uint8, bool) {
	if p.Fragment.PredictedPitch == nil {
		return 0, false
	}
	semis := chord.Transposition(p.Fragment.Home, p.Target)
	pitch := int(*p.Fragment.PredictedPitch) + semis
	if pitch < 0 || pitch > 127 {
		return 0, false
	}
	return uint8(pitch), true
}
