// Package score holds the five-axis compatibility score of a placement and
// the partial form it takes while some axes still wait on context.
package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/jsphweid/basstile/constants"
)

type Axis int

const (
	Harmonic Axis = iota
	Transposability
	Tempo
	PreTarget
	PostTarget
)

const NumAxes = 5

var axisNames = [NumAxes]string{"harmonic", "transposability", "tempo", "pre", "post"}

func (a Axis) String() string {
	if a < 0 || int(a) >= NumAxes {
		return fmt.Sprintf("axis(%d)", int(a))
	}
	return axisNames[a]
}

// Score values are in [0, 100] per axis.
//
// Two scores are equal, and order, by Overall alone: scores with different
// axes but the same overall compare equal. Ranked candidate lists rely on
// this.
type Score [NumAxes]float64

func (s Score) Get(a Axis) float64 {
	return s[a]
}

// Overall is the weighted mean of the axes, or 0 when the harmonic axis is 0.
func (s Score) Overall() float64 {
	if s[Harmonic] == 0 {
		return 0
	}
	var total, weights float64
	for i, w := range constants.AxisWeights {
		total += s[i] * w
		weights += w
	}
	return total / weights
}

func (s Score) Compare(o Score) int {
	a, b := s.Overall(), o.Overall()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s Score) Equal(o Score) bool {
	return s.Compare(o) == 0
}

func (s Score) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%.1f[", s.Overall())
	for i := 0; i < NumAxes; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%.0f", Axis(i), s[i])
	}
	b.WriteByte(']')
	return b.String()
}

type Predicate func(Score) bool

func Positive(s Score) bool {
	return s.Overall() > 0
}

func HarmonicPass(s Score) bool {
	return s[Harmonic] > 0
}

func Premium(s Score) bool {
	return HarmonicPass(s) &&
		s[Tempo] >= constants.PremiumMinTempo &&
		s[Transposability] >= constants.PremiumMinTransposability
}

func All(preds ...Predicate) Predicate {
	return func(s Score) bool {
		for _, p := range preds {
			if p != nil && !p(s) {
				return false
			}
		}
		return true
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		panic("score axis value is NaN")
	}
	return math.Max(0, math.Min(100, v))
}

// Partial is a score whose axes are filled in as context becomes known. An
// axis is either pending or resolved; a resolved axis is never reset.
type Partial struct {
	known   Score
	pending uint8
}

const allPending = uint8(1<<NumAxes - 1)

func NewPartial() Partial {
	return Partial{pending: allPending}
}

func (p Partial) Pending(a Axis) bool {
	return p.pending&(1<<uint(a)) != 0
}

func (p Partial) Resolved() bool {
	return p.pending == 0
}

func (p Partial) Value(a Axis) (float64, bool) {
	if p.Pending(a) {
		return 0, false
	}
	return p.known[a], true
}

// Resolve returns p with axis a set to v. Resolving an axis twice keeps the
// first value.
func (p Partial) Resolve(a Axis, v float64) Partial {
	if !p.Pending(a) {
		return p
	}
	p.known[a] = clamp(v)
	p.pending &^= 1 << uint(a)
	return p
}

// Score reads p as a full score, pending axes counting as 0.
func (p Partial) Score() Score {
	return p.known
}

// Merge keeps everything a has resolved and takes the axes still pending in a
// from b, where b has them.
func Merge(a, b Partial) Partial {
	res := a
	for i := 0; i < NumAxes; i++ {
		ax := Axis(i)
		if v, ok := b.Value(ax); ok {
			res = res.Resolve(ax, v)
		}
	}
	return res
}
