package chord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/model"
)

// Event is one (bar, beat, symbol) triple of a progression. Beat is counted
// in quarter notes from the start of the bar.
type Event struct {
	Bar    int
	Beat   float64
	Symbol string
}

func BeatsPerBar(ts model.TimeSignature) float64 {
	return float64(ts.Beats) * 4 / float64(ts.Unit)
}

func validTime(ts model.TimeSignature) bool {
	if ts.Beats <= 0 {
		return false
	}
	switch ts.Unit {
	case 2, 4, 8, 16:
		return true
	}
	return false
}

// NewSlice parses events into a slice. When bars is not positive the slice
// ends with the bar of the last event.
func NewSlice(events []Event, ts model.TimeSignature, tempo float64, bars int) (model.ChordSlice, error) {
	var s model.ChordSlice
	if len(events) == 0 {
		return s, &ParseError{Bar: -1, Reason: "progression has no chords"}
	}
	if !validTime(ts) {
		return s, &ParseError{Bar: -1, Reason: fmt.Sprintf("invalid time signature %d/%d", ts.Beats, ts.Unit)}
	}
	if tempo < 0 {
		return s, &ParseError{Bar: -1, Reason: fmt.Sprintf("negative tempo %v", tempo)}
	}

	bpb := BeatsPerBar(ts)
	s.Time = ts
	s.Tempo = tempo
	last := -1.0
	for i, evt := range events {
		if i == 0 && (evt.Bar != 0 || evt.Beat != 0) {
			return s, &ParseError{Symbol: evt.Symbol, Bar: evt.Bar, Reason: "progression must start at bar 0, beat 0"}
		}
		if evt.Bar >= constants.MaxSongBars {
			return s, &ParseError{Symbol: evt.Symbol, Bar: evt.Bar, Reason: fmt.Sprintf("songs are limited to %d bars", constants.MaxSongBars)}
		}
		if evt.Bar < 0 || evt.Beat < 0 || evt.Beat >= bpb {
			return s, &ParseError{Symbol: evt.Symbol, Bar: evt.Bar, Reason: fmt.Sprintf("position %v is outside the bar", evt.Beat)}
		}
		pos := float64(evt.Bar)*bpb + evt.Beat
		if pos <= last {
			return s, &ParseError{Symbol: evt.Symbol, Bar: evt.Bar, Reason: "chords are not in ascending order"}
		}
		last = pos

		c, err := parseAt(evt.Symbol, evt.Bar)
		if err != nil {
			return s, err
		}
		s.Chords = append(s.Chords, model.TimedChord{Bar: evt.Bar, Beat: evt.Beat, Chord: c})
	}

	s.Bars = events[len(events)-1].Bar + 1
	if bars > constants.MaxSongBars {
		return s, &ParseError{Bar: -1, Reason: fmt.Sprintf("%d bars exceeds the limit of %d", bars, constants.MaxSongBars)}
	}
	if bars > 0 {
		if bars < s.Bars {
			return s, &ParseError{Bar: bars, Reason: fmt.Sprintf("progression declares %d bars but has chords in bar %d", bars, s.Bars-1)}
		}
		s.Bars = bars
	}
	return s, nil
}

func Offset(s model.ChordSlice, i int) float64 {
	c := s.Chords[i]
	return float64(c.Bar)*BeatsPerBar(s.Time) + c.Beat
}

func Length(s model.ChordSlice) float64 {
	return float64(s.Bars) * BeatsPerBar(s.Time)
}

// Span is the beat range chord i sounds for.
func Span(s model.ChordSlice, i int) model.BeatRange {
	end := Length(s)
	if i+1 < len(s.Chords) {
		end = Offset(s, i+1)
	}
	return model.BeatRange{From: Offset(s, i), To: end}
}

// At returns the index of the chord sounding at beat.
func At(s model.ChordSlice, beat float64) int {
	res := 0
	for i := range s.Chords {
		if Offset(s, i) <= beat {
			res = i
		}
	}
	return res
}

// Sub cuts bars from..to (inclusive) out of s and rebases them to bar 0. The
// chord sounding at the start of from is carried in at beat 0.
func Sub(s model.ChordSlice, from, to int) model.ChordSlice {
	if from < 0 || to >= s.Bars || from > to {
		panic(fmt.Sprintf("bar range %d..%d is outside a %d bar slice", from, to, s.Bars))
	}

	bpb := BeatsPerBar(s.Time)
	res := model.ChordSlice{Bars: to - from + 1, Time: s.Time, Tempo: s.Tempo}
	first := At(s, float64(from)*bpb)
	res.Chords = append(res.Chords, model.TimedChord{Chord: s.Chords[first].Chord})
	for i := first + 1; i < len(s.Chords); i++ {
		c := s.Chords[i]
		if c.Bar > to {
			break
		}
		c.Bar -= from
		res.Chords = append(res.Chords, c)
	}
	return res
}

func writeHeader(b *strings.Builder, s model.ChordSlice) {
	b.WriteString(strconv.Itoa(s.Bars))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(s.Time.Beats))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(s.Time.Unit))
}

func writePosition(b *strings.Builder, c model.TimedChord) {
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(c.Bar))
	b.WriteByte(':')
	b.WriteString(strconv.FormatFloat(c.Beat, 'g', -1, 64))
	b.WriteByte(':')
}

// RootProfile is the pitch independent signature of the root motion of s.
// Two slices with the same profile can host each other's fragments after a
// transposition.
func RootProfile(s model.ChordSlice) string {
	var b strings.Builder
	writeHeader(&b, s)
	if len(s.Chords) == 0 {
		return b.String()
	}
	first := s.Chords[0].Chord.Root
	for _, c := range s.Chords {
		writePosition(&b, c)
		b.WriteString(strconv.Itoa(Mod12(c.Chord.Root - first)))
	}
	return b.String()
}

// Signature identifies s structurally. It ignores where s was cut from and
// how the symbols were spelled, so recurring progressions share a signature.
func Signature(s model.ChordSlice) string {
	var b strings.Builder
	writeHeader(&b, s)
	for _, c := range s.Chords {
		writePosition(&b, c)
		b.WriteString(strconv.Itoa(c.Chord.Root))
		for _, t := range c.Chord.Tones {
			b.WriteByte('.')
			b.WriteString(strconv.Itoa(t))
		}
		if c.Chord.Bass != c.Chord.Root {
			b.WriteByte('/')
			b.WriteString(strconv.Itoa(c.Chord.Bass))
		}
		if c.Chord.ScaleName != "" {
			b.WriteByte('~')
			b.WriteString(c.Chord.ScaleName)
		}
	}
	return b.String()
}

// Transposition is the shortest move taking the first root of from onto the
// first root of to.
func Transposition(from, to model.ChordSlice) int {
	if len(from.Chords) == 0 || len(to.Chords) == 0 {
		return 0
	}
	return Interval(from.Chords[0].Chord.Root, to.Chords[0].Chord.Root)
}

// FromSymbols builds a slice with one chord per bar. It is a convenience for
// callers that only deal in whole-bar changes.
func FromSymbols(symbols []string, ts model.TimeSignature, tempo float64) (model.ChordSlice, error) {
	events := make([]Event, 0, len(symbols))
	for i, sym := range symbols {
		events = append(events, Event{Bar: i, Symbol: sym})
	}
	return NewSlice(events, ts, tempo, 0)
}
