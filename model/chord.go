package model

type PitchClass = int

type TimeSignature struct {
	Beats int `json:"beats" yaml:"beats"`
	Unit  int `json:"unit" yaml:"unit"`
}

type Chord struct {
	Symbol string
	Root   PitchClass
	Bass   PitchClass

	// intervals above the root, mod 12, root first
	Tones []int

	ScaleName string
	// NOTE: nil unless a scale was attached to the symbol
	Scale []int
}

type TimedChord struct {
	Bar   int
	Beat  float64
	Chord Chord
}

// ChordSlice is an ordered run of chords. Slices handed to the engine always
// begin at bar 0, beat 0.
type ChordSlice struct {
	Chords []TimedChord
	Bars   int
	Time   TimeSignature
	Tempo  float64
}

type BeatRange struct {
	From float64
	To   float64
}

func (r BeatRange) Overlap(from, to float64) float64 {
	lo, hi := r.From, r.To
	if from > lo {
		lo = from
	}
	if to < hi {
		hi = to
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
