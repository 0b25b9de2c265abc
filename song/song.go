// Package song reads the progressions users hand in, as YAML files or JSON
// request bodies.
package song

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/tiling"
)

type ChordEvent struct {
	Bar    int     `yaml:"bar" json:"bar"`
	Beat   float64 `yaml:"beat,omitempty" json:"beat,omitempty"`
	Symbol string  `yaml:"chord" json:"chord"`
}

// Progression is a chord listing with its meter and tempo. A zero Time is
// read as 4/4.
type Progression struct {
	Tempo  float64             `yaml:"tempo" json:"tempo"`
	Time   model.TimeSignature `yaml:"time,omitempty" json:"time,omitempty"`
	Bars   int                 `yaml:"bars,omitempty" json:"bars,omitempty"`
	Chords []ChordEvent        `yaml:"chords" json:"chords"`
}

type Section struct {
	Name string `yaml:"name" json:"name"`
	From int    `yaml:"from" json:"from"`
	To   int    `yaml:"to" json:"to"`
}

type Song struct {
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	Styles      []string `yaml:"styles,omitempty" json:"styles,omitempty"`
	Progression `yaml:",inline"`
	Sections    []Section `yaml:"sections,omitempty" json:"sections,omitempty"`
	// optional range of bars to render
	Window *Section `yaml:"window,omitempty" json:"window,omitempty"`
}

var DefaultStyles = []model.Style{model.StyleWalking}

func (p Progression) Slice() (model.ChordSlice, error) {
	ts := p.Time
	if ts == (model.TimeSignature{}) {
		ts = model.TimeSignature{Beats: 4, Unit: 4}
	}
	events := make([]chord.Event, 0, len(p.Chords))
	for _, c := range p.Chords {
		events = append(events, chord.Event{Bar: c.Bar, Beat: c.Beat, Symbol: c.Symbol})
	}
	return chord.NewSlice(events, ts, p.Tempo, p.Bars)
}

// StyleList parses the requested styles, in order. No styles means
// DefaultStyles.
func (s Song) StyleList() ([]model.Style, error) {
	if len(s.Styles) == 0 {
		return DefaultStyles, nil
	}
	res := make([]model.Style, 0, len(s.Styles))
	for _, name := range s.Styles {
		style, err := model.ParseStyle(name)
		if err != nil {
			return nil, &chord.ParseError{Bar: -1, Reason: err.Error()}
		}
		res = append(res, style)
	}
	return res, nil
}

func checkRange(r Section, bars int, what string) error {
	if r.From < 0 || r.To >= bars || r.From > r.To {
		return &chord.ParseError{Bar: r.From, Reason: fmt.Sprintf("%s %q covers bars %d..%d of a %d bar song", what, r.Name, r.From, r.To, bars)}
	}
	return nil
}

// Composition builds the tiling input. Sections must not overlap.
func (s Song) Composition() (tiling.Composition, error) {
	var comp tiling.Composition
	slice, err := s.Slice()
	if err != nil {
		return comp, err
	}
	comp.Slice = slice

	claimed := make([]string, slice.Bars)
	for _, sec := range s.Sections {
		if err := checkRange(sec, slice.Bars, "section"); err != nil {
			return comp, err
		}
		for b := sec.From; b <= sec.To; b++ {
			if claimed[b] != "" {
				return comp, &chord.ParseError{Bar: b, Reason: fmt.Sprintf("sections %q and %q overlap", claimed[b], sec.Name)}
			}
			claimed[b] = sec.Name
		}
		comp.Segments = append(comp.Segments, tiling.BarRange{From: sec.From, To: sec.To})
	}
	return comp, nil
}

// BarWindow returns the bars to render, or nil for the whole song.
func (s Song) BarWindow(bars int) (*tiling.BarRange, error) {
	if s.Window == nil {
		return nil, nil
	}
	if err := checkRange(*s.Window, bars, "window"); err != nil {
		return nil, err
	}
	return &tiling.BarRange{From: s.Window.From, To: s.Window.To}, nil
}

func Read(r io.Reader) (Song, error) {
	var s Song
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return s, &chord.ParseError{Bar: -1, Reason: "invalid song document: " + err.Error()}
	}
	return s, nil
}

func Load(path string) (Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return Song{}, err
	}
	defer f.Close()
	return Read(f)
}

// DecodeJSON reads a song sent over HTTP.
func DecodeJSON(r io.Reader) (Song, error) {
	var s Song
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return s, &chord.ParseError{Bar: -1, Reason: "invalid song document: " + err.Error()}
	}
	return s, nil
}
