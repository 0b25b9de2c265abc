package model

import "fmt"

type Style string

const (
	StyleRoot    Style = "root"
	StyleWalking Style = "walking"
	StyleFunk    Style = "funk"
	StyleBallad  Style = "ballad"

	// StyleCustom tags synthesized fragments; BaseStyle says which style they
	// were synthesized for.
	StyleCustom Style = "custom"
)

var LibraryStyles = []Style{StyleRoot, StyleWalking, StyleFunk, StyleBallad}

func ParseStyle(s string) (Style, error) {
	for _, style := range LibraryStyles {
		if string(style) == s {
			return style, nil
		}
	}
	return "", fmt.Errorf("unknown bass style %q", s)
}

type Stats struct {
	Notes   int
	Short   int
	Dotted  int
	Quarter int
	Bars    int
}

func (s Stats) PerBar(count int) float64 {
	if s.Bars == 0 {
		return 0
	}
	return float64(count) / float64(s.Bars)
}

// Source locates a fragment inside the recording it was cut from. Fragments
// synthesized at runtime have Recording 0.
type Source struct {
	Recording uint32
	Bar       int
}

type Fragment struct {
	ID        string
	Style     Style
	BaseStyle Style
	Size      int
	Home      ChordSlice
	Phrase    Phrase

	// pitch the fragment expects to be followed by, relative to Home
	PredictedPitch *uint8

	StartsOnChordTone bool
	EndsOnChordTone   bool

	Stats           Stats
	Transposability float64
	Source          Source
}

func (f *Fragment) Generated() bool {
	return f.Style == StyleCustom
}

func (f *Fragment) Bars() (int, int) {
	return f.Source.Bar, f.Source.Bar + f.Size - 1
}
