// Package custom synthesizes bass fragments for progressions the library has
// nothing for. Lines are built from chord guide tones and then humanized with
// the feel of a matching library fragment, when there is one.
package custom

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/config"
	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/phrase"
)

// Finder looks fragments up by style and root profile.
type Finder interface {
	Find(style model.Style, profile string) []*model.Fragment
}

type Generator struct {
	library  Finder
	settings config.Settings
	rng      *rand.Rand
}

// New returns a generator. library and rng may be nil; without a library
// lines are not humanized.
func New(library Finder, settings config.Settings, rng *rand.Rand) *Generator {
	return &Generator{library: library, settings: settings, rng: rng}
}

// a step is one note of a line, as a chord tone index and an octave
type step struct {
	at     float64
	length float64
	tone   int
	octave int
}

type pattern func(span model.BeatRange, variant int) []step

var patterns = map[model.Style]pattern{
	model.StyleRoot:    rootPattern,
	model.StyleWalking: walkingPattern,
	model.StyleFunk:    funkPattern,
	model.StyleBallad:  balladPattern,
}

const variants = 2

func grid(span model.BeatRange, every float64, fn func(i int, at, length float64) (step, bool)) []step {
	var res []step
	i := 0
	for at := span.From; at < span.To-1e-6; at += every {
		length := math.Min(every, span.To-at)
		if s, ok := fn(i, at, length); ok {
			res = append(res, s)
		}
		i++
	}
	return res
}

func rootPattern(span model.BeatRange, variant int) []step {
	if variant == 0 {
		return []step{{at: span.From, length: span.To - span.From}}
	}
	return grid(span, 2, func(i int, at, length float64) (step, bool) {
		return step{at: at, length: length}, true
	})
}

func walkingPattern(span model.BeatRange, variant int) []step {
	up := []int{0, 1, 2, 1}
	down := []int{0, 2, 1, 2}
	seq := up
	if variant == 1 {
		seq = down
	}
	return grid(span, 1, func(i int, at, length float64) (step, bool) {
		return step{at: at, length: length, tone: seq[i%len(seq)]}, true
	})
}

func funkPattern(span model.BeatRange, variant int) []step {
	// tone, octave per eighth; -1 rests
	seqs := [variants][][2]int{
		{{0, 0}, {-1, 0}, {0, 1}, {0, 0}, {2, 0}, {-1, 0}, {0, 1}, {2, 0}},
		{{0, 0}, {0, 0}, {-1, 0}, {0, 1}, {-1, 0}, {2, 0}, {0, 0}, {-1, 0}},
	}
	seq := seqs[variant%variants]
	return grid(span, 0.5, func(i int, at, length float64) (step, bool) {
		s := seq[i%len(seq)]
		if s[0] < 0 && i > 0 {
			return step{}, false
		}
		if s[0] < 0 {
			s[0] = 0
		}
		return step{at: at, length: length * 0.8, tone: s[0], octave: s[1]}, true
	})
}

func balladPattern(span model.BeatRange, variant int) []step {
	return grid(span, 2, func(i int, at, length float64) (step, bool) {
		tone := 0
		if i%2 == 1 {
			tone = 2 - variant
		}
		return step{at: at, length: length, tone: tone}, true
	})
}

// bassPitch puts pitch class pc in the lowest bass octave.
func bassPitch(pc int) int {
	return constants.LowestBassRoot + chord.Mod12(pc-constants.LowestBassRoot)
}

// usableTones are the chord's tones that also fit its attached scale, root
// first.
func usableTones(c model.Chord) []int {
	var res []int
	for _, t := range c.Tones {
		if chord.InScale(c, t) {
			res = append(res, t)
		}
	}
	if len(res) == 0 {
		res = []int{0}
	}
	return res
}

func voice(c model.Chord, s step) uint8 {
	tones := usableTones(c)
	interval := tones[s.tone%len(tones)]
	return uint8(bassPitch(c.Root) + interval + 12*s.octave)
}

// nearestChordTone returns the tone of c closest to target.
func nearestChordTone(c model.Chord, target uint8) uint8 {
	best, bestDist := -1, math.MaxInt
	for _, t := range usableTones(c) {
		for octave := 0; octave < 3; octave++ {
			p := bassPitch(c.Root) + t + 12*octave
			d := p - int(target)
			if d < 0 {
				d = -d
			}
			if d < bestDist {
				best, bestDist = p, d
			}
		}
	}
	return uint8(best)
}

func (g *Generator) line(style model.Style, gap model.ChordSlice, variant int) model.Phrase {
	pat, ok := patterns[style]
	if !ok {
		pat = rootPattern
	}
	var res model.Phrase
	for i, tc := range gap.Chords {
		for _, s := range pat(chord.Span(gap, i), variant) {
			res = append(res, model.Note{
				Pitch:    voice(tc.Chord, s),
				Velocity: constants.DefaultVelocity,
				Start:    s.at,
				Duration: s.length,
			})
		}
	}
	return res
}

// Synthesize builds fragments of style over gap. When next is known the line
// ends on the chord tone nearest to it.
func (g *Generator) Synthesize(style model.Style, gap model.ChordSlice, next *uint8) []*model.Fragment {
	if gap.Bars < 1 || gap.Bars > constants.MaxFragmentBars {
		panic("gap size out of range")
	}
	template := g.template(style, gap)

	var res []*model.Fragment
	for v := 0; v < variants; v++ {
		p := g.line(style, gap, v)
		if len(p) == 0 {
			continue
		}
		if next != nil {
			last := gap.Chords[len(gap.Chords)-1].Chord
			p[len(p)-1].Pitch = nearestChordTone(last, *next)
		}
		if template != nil {
			p = humanize(p, template.Phrase)
		}
		p = phrase.Swing(p, g.settings.SwingIntensity)

		f := &model.Fragment{
			ID:                uuid.NewString(),
			Style:             model.StyleCustom,
			BaseStyle:         style,
			Size:              gap.Bars,
			Home:              gap,
			Phrase:            p,
			StartsOnChordTone: true,
			EndsOnChordTone:   true,
			Stats:             phrase.Stats(p, gap.Bars),
			Transposability:   100,
		}
		if next != nil {
			pitch := *next
			f.PredictedPitch = &pitch
		}
		res = append(res, f)
	}
	return res
}

// template picks a library fragment recorded over the same root motion to
// borrow feel from.
func (g *Generator) template(style model.Style, gap model.ChordSlice) *model.Fragment {
	if g.library == nil {
		return nil
	}
	found := g.library.Find(style, chord.RootProfile(gap))
	if len(found) == 0 {
		return nil
	}
	if g.rng == nil {
		return found[0]
	}
	return found[g.rng.Intn(len(found))]
}

// humanize copies velocity and micro timing from the template note nearest
// to each note.
func humanize(p, template model.Phrase) model.Phrase {
	if len(template) == 0 {
		return p
	}
	res := make(model.Phrase, len(p))
	for i, n := range p {
		t := template[0]
		for _, c := range template[1:] {
			if math.Abs(c.Start-n.Start) < math.Abs(t.Start-n.Start) {
				t = c
			}
		}
		if t.Velocity > 0 {
			n.Velocity = t.Velocity
		}
		if math.Abs(t.Start-n.Start) <= 0.25 {
			grid := math.Round(t.Start*4) / 4
			if shift := t.Start - grid; math.Abs(shift) < 0.1 && n.Start+shift >= 0 {
				n.Start += shift
			}
		}
		res[i] = n
	}
	return res
}
