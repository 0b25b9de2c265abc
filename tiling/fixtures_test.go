package tiling

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/phrase"
)

var fourFour = model.TimeSignature{Beats: 4, Unit: 4}

func progression(t *testing.T, symbols ...string) model.ChordSlice {
	t.Helper()
	s, err := chord.FromSymbols(symbols, fourFour, 120)
	require.NoError(t, err)
	return s
}

// quarters makes one quarter note per pitch, starting at beat 0.
func quarters(pitches ...uint8) model.Phrase {
	var res model.Phrase
	for i, p := range pitches {
		res = append(res, model.Note{Pitch: p, Velocity: 90, Start: float64(i), Duration: 1})
	}
	return res
}

func fragment(id string, style model.Style, home model.ChordSlice, p model.Phrase) *model.Fragment {
	return &model.Fragment{
		ID:                id,
		Style:             style,
		BaseStyle:         style,
		Size:              home.Bars,
		Home:              home,
		Phrase:            p,
		StartsOnChordTone: true,
		EndsOnChordTone:   true,
		Stats:             phrase.Stats(p, home.Bars),
		Transposability:   80,
	}
}

type fakeStore struct {
	frags []*model.Fragment
}

func (s *fakeStore) Find(style model.Style, profile string) []*model.Fragment {
	var res []*model.Fragment
	for _, f := range s.frags {
		if f.Style == style && chord.RootProfile(f.Home) == profile {
			res = append(res, f)
		}
	}
	return res
}

func (s *fakeStore) Add(f *model.Fragment) bool {
	for _, o := range s.frags {
		if o.ID == f.ID {
			return false
		}
	}
	s.frags = append(s.frags, f)
	return true
}

func (s *fakeStore) Related(f *model.Fragment) []*model.Fragment {
	if f.Source.Recording == 0 {
		return nil
	}
	from, to := f.Bars()
	var res []*model.Fragment
	for _, o := range s.frags {
		ofrom, oto := o.Bars()
		if o.ID != f.ID && o.Source.Recording == f.Source.Recording && ofrom <= to && oto >= from {
			res = append(res, o)
		}
	}
	return res
}

func wholeMap(t *testing.T, symbols ...string) *CoverageMap {
	t.Helper()
	s := progression(t, symbols...)
	return NewCoverageMap(Composition{Slice: s}, BarRange{From: 0, To: s.Bars - 1}, nil)
}

func assertNoOverlap(t *testing.T, cm *CoverageMap) {
	t.Helper()
	ps := cm.Placements()
	for i := range ps {
		require.True(t, cm.Usable(ps[i].Bars), "placement %s crosses a segment", ps[i])
		for j := i + 1; j < len(ps); j++ {
			require.Zero(t, ps[i].Bars.Overlap(ps[j].Bars), "%s overlaps %s", ps[i], ps[j])
		}
	}
}
