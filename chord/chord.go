package chord

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jsphweid/basstile/model"
)

// ErrMalformed marks failures rooted in the user's chord data, as opposed to
// internal errors.
var ErrMalformed = errors.New("malformed chord data")

type ParseError struct {
	Symbol string
	Bar    int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Symbol == "" {
		if e.Bar < 0 {
			return "progression: " + e.Reason
		}
		return fmt.Sprintf("progression at bar %d: %s", e.Bar, e.Reason)
	}
	if e.Bar < 0 {
		return fmt.Sprintf("chord %q: %s", e.Symbol, e.Reason)
	}
	return fmt.Sprintf("chord %q at bar %d: %s", e.Symbol, e.Bar, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

var pitchClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

var qualities = map[string][]int{
	"":      {0, 4, 7},
	"maj":   {0, 4, 7},
	"M":     {0, 4, 7},
	"m":     {0, 3, 7},
	"min":   {0, 3, 7},
	"-":     {0, 3, 7},
	"5":     {0, 7},
	"7":     {0, 4, 7, 10},
	"maj7":  {0, 4, 7, 11},
	"M7":    {0, 4, 7, 11},
	"m7":    {0, 3, 7, 10},
	"min7":  {0, 3, 7, 10},
	"-7":    {0, 3, 7, 10},
	"mMaj7": {0, 3, 7, 11},
	"mM7":   {0, 3, 7, 11},
	"m7b5":  {0, 3, 6, 10},
	"dim":   {0, 3, 6},
	"o":     {0, 3, 6},
	"dim7":  {0, 3, 6, 9},
	"o7":    {0, 3, 6, 9},
	"aug":   {0, 4, 8},
	"+":     {0, 4, 8},
	"sus4":  {0, 5, 7},
	"sus":   {0, 5, 7},
	"sus2":  {0, 2, 7},
	"7sus4": {0, 5, 7, 10},
	"6":     {0, 4, 7, 9},
	"m6":    {0, 3, 7, 9},
	"9":     {0, 4, 7, 10, 2},
	"m9":    {0, 3, 7, 10, 2},
	"maj9":  {0, 4, 7, 11, 2},
	"add9":  {0, 4, 7, 2},
}

// scales are relative to the chord root
var scales = map[string][]int{
	"ionian":           {0, 2, 4, 5, 7, 9, 11},
	"major":            {0, 2, 4, 5, 7, 9, 11},
	"dorian":           {0, 2, 3, 5, 7, 9, 10},
	"phrygian":         {0, 1, 3, 5, 7, 8, 10},
	"lydian":           {0, 2, 4, 6, 7, 9, 11},
	"mixolydian":       {0, 2, 4, 5, 7, 9, 10},
	"aeolian":          {0, 2, 3, 5, 7, 8, 10},
	"minor":            {0, 2, 3, 5, 7, 8, 10},
	"locrian":          {0, 1, 3, 5, 6, 8, 10},
	"harmonic-minor":   {0, 2, 3, 5, 7, 8, 11},
	"melodic-minor":    {0, 2, 3, 5, 7, 9, 11},
	"major-pentatonic": {0, 2, 4, 7, 9},
	"minor-pentatonic": {0, 3, 5, 7, 10},
	"blues":            {0, 3, 5, 6, 7, 10},
	"whole-half":       {0, 2, 3, 5, 6, 8, 9, 11},
	"half-whole":       {0, 1, 3, 4, 6, 7, 9, 10},
	"chromatic":        {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

// clashes lists, per interval above the root, the alternates that usually
// clash with it when sounded against the chord
var clashes = map[int][]int{
	0:  {1},
	2:  {1, 3},
	3:  {4},
	4:  {3, 5},
	5:  {4},
	6:  {7},
	7:  {6, 8},
	8:  {7},
	9:  {8, 10},
	10: {11},
	11: {10},
}

func parseRoot(s string) (int, string, bool) {
	if len(s) == 0 {
		return 0, s, false
	}
	pc, ok := pitchClasses[s[0]]
	if !ok {
		return 0, s, false
	}
	rest := s[1:]
	if len(rest) > 0 {
		switch rest[0] {
		case '#':
			pc++
			rest = rest[1:]
		case 'b':
			pc--
			rest = rest[1:]
		}
	}
	return Mod12(pc), rest, true
}

// Parse reads symbols like "C", "F#m7", "Bb7/D" or "Dm7:dorian".
func Parse(symbol string) (model.Chord, error) {
	return parseAt(symbol, -1)
}

func parseAt(symbol string, bar int) (model.Chord, error) {
	fail := func(reason string) (model.Chord, error) {
		return model.Chord{}, &ParseError{Symbol: symbol, Bar: bar, Reason: reason}
	}

	body := strings.TrimSpace(symbol)
	if body == "" {
		return fail("empty symbol")
	}

	var c model.Chord
	c.Symbol = body

	if i := strings.IndexByte(body, ':'); i >= 0 {
		name := body[i+1:]
		scale, ok := scales[name]
		if !ok {
			return fail(fmt.Sprintf("unknown scale %q (known: %s)", name, strings.Join(ScaleNames(), ", ")))
		}
		c.ScaleName = name
		c.Scale = scale
		body = body[:i]
	}

	root, rest, ok := parseRoot(body)
	if !ok {
		return fail("missing or invalid root")
	}
	c.Root = root
	c.Bass = root

	if i := strings.IndexByte(rest, '/'); i >= 0 {
		bass, tail, ok := parseRoot(rest[i+1:])
		if !ok || tail != "" {
			return fail("invalid slash bass")
		}
		c.Bass = bass
		rest = rest[:i]
	}

	tones, ok := qualities[rest]
	if !ok {
		return fail(fmt.Sprintf("unknown chord quality %q", rest))
	}
	c.Tones = tones
	return c, nil
}

type Degree struct {
	Interval int
	Root     bool
}

// Degrees are the slots a chord asks a bass line to fill.
func Degrees(c model.Chord) []Degree {
	res := make([]Degree, 0, len(c.Tones))
	for i, t := range c.Tones {
		res = append(res, Degree{Interval: t, Root: i == 0})
	}
	return res
}

// Clashes returns the alternates of interval that usually clash with it,
// leaving out those that are themselves tones of c.
func Clashes(c model.Chord, interval int) []int {
	var res []int
	for _, alt := range clashes[interval] {
		if !HasTone(c, alt) {
			res = append(res, alt)
		}
	}
	return res
}

func HasTone(c model.Chord, interval int) bool {
	interval = Mod12(interval)
	for _, t := range c.Tones {
		if t == interval {
			return true
		}
	}
	return false
}

func IsChordTone(c model.Chord, pitch int) bool {
	return HasTone(c, pitch-c.Root)
}

func InScale(c model.Chord, interval int) bool {
	if c.Scale == nil {
		return true
	}
	interval = Mod12(interval)
	for _, s := range c.Scale {
		if s == interval {
			return true
		}
	}
	return false
}

func Mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}

// Interval is the shortest signed move from pitch class a to b, in [-6, 5].
func Interval(a, b int) int {
	d := Mod12(b - a)
	if d > 5 {
		d -= 12
	}
	return d
}

func ScaleNames() []string {
	var res []string
	for name := range scales {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}
