package phrase

import (
	"math"
	"sort"

	"github.com/jsphweid/basstile/model"
)

const epsilon = 1e-6

func clampPitch(p int) uint8 {
	if p < 0 {
		return 0
	}
	if p > 127 {
		return 127
	}
	return uint8(p)
}

func Sort(p model.Phrase) {
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].Start < p[j].Start
	})
}

func Transpose(p model.Phrase, semitones int) model.Phrase {
	res := make(model.Phrase, len(p))
	for i, n := range p {
		n.Pitch = clampPitch(int(n.Pitch) + semitones)
		res[i] = n
	}
	return res
}

func Shift(p model.Phrase, beats float64) model.Phrase {
	res := make(model.Phrase, len(p))
	for i, n := range p {
		n.Start += beats
		res[i] = n
	}
	return res
}

// Truncate drops notes starting at or after at and shortens the ones still
// sounding there.
func Truncate(p model.Phrase, at float64) model.Phrase {
	var res model.Phrase
	for _, n := range p {
		if n.Start >= at-epsilon {
			continue
		}
		if n.End() > at {
			n.Duration = at - n.Start
		}
		res = append(res, n)
	}
	return res
}

// Splice appends next to p, cutting p where next begins. next may begin
// before the end of p (pickup notes).
func Splice(p, next model.Phrase) model.Phrase {
	if len(next) == 0 {
		return p
	}
	res := Truncate(p, next[0].Start)
	return append(res, next...)
}

// Clip keeps what sounds inside [from, to) and rebases it to from.
func Clip(p model.Phrase, from, to float64) model.Phrase {
	var res model.Phrase
	for _, n := range p {
		start, end := n.Start, n.End()
		if end <= from+epsilon || start >= to-epsilon {
			continue
		}
		start = math.Max(start, from)
		end = math.Min(end, to)
		n.Start = start - from
		n.Duration = end - start
		res = append(res, n)
	}
	return res
}

func First(p model.Phrase) (uint8, bool) {
	if len(p) == 0 {
		return 0, false
	}
	return p[0].Pitch, true
}

func Last(p model.Phrase) (uint8, bool) {
	if len(p) == 0 {
		return 0, false
	}
	return p[len(p)-1].Pitch, true
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

// Swing delays offbeat eighths by up to a sixteenth-note triplet. intensity
// is clamped to [0, 1].
func Swing(p model.Phrase, intensity float64) model.Phrase {
	intensity = math.Max(0, math.Min(1, intensity))
	delay := intensity / 6
	res := make(model.Phrase, len(p))
	for i, n := range p {
		_, frac := math.Modf(n.Start)
		if delay > 0 && near(frac, 0.5) {
			n.Start += delay
			n.Duration = math.Max(n.Duration-delay, 0.05)
		}
		res[i] = n
	}
	return res
}

// Stats counts the rhythmic features the tempo heuristics look at.
func Stats(p model.Phrase, bars int) model.Stats {
	s := model.Stats{Notes: len(p), Bars: bars}
	for _, n := range p {
		d := n.Duration
		switch {
		case d <= 0.25+0.01:
			s.Short++
		case near(d, 0.75) || near(d, 1.5) || near(d, 3):
			s.Dotted++
		case near(d, 1):
			s.Quarter++
		}
	}
	return s
}

func Range(p model.Phrase) (uint8, uint8) {
	if len(p) == 0 {
		return 0, 0
	}
	lo, hi := p[0].Pitch, p[0].Pitch
	for _, n := range p {
		if n.Pitch < lo {
			lo = n.Pitch
		}
		if n.Pitch > hi {
			hi = n.Pitch
		}
	}
	return lo, hi
}
