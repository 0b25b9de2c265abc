package custom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/config"
	"github.com/jsphweid/basstile/model"
)

var fourFour = model.TimeSignature{Beats: 4, Unit: 4}

func gap(t *testing.T, symbols ...string) model.ChordSlice {
	t.Helper()
	s, err := chord.FromSymbols(symbols, fourFour, 120)
	require.NoError(t, err)
	return s
}

type finder []*model.Fragment

func (f finder) Find(style model.Style, profile string) []*model.Fragment {
	var res []*model.Fragment
	for _, frag := range f {
		if frag.Style == style && chord.RootProfile(frag.Home) == profile {
			res = append(res, frag)
		}
	}
	return res
}

func TestSynthesizedLinesStayOnChordTones(t *testing.T) {
	g := gap(t, "C", "F")
	frags := New(nil, config.Settings{}, nil).Synthesize(model.StyleWalking, g, nil)
	require.Len(t, frags, variants)

	for _, f := range frags {
		assert := assert.New(t)
		assert.True(f.Generated())
		assert.Equal(model.StyleWalking, f.BaseStyle)
		assert.Equal(2, f.Size)
		assert.Equal(g, f.Home)
		assert.Nil(f.PredictedPitch)
		assert.Equal(uint8(36), f.Phrase[0].Pitch)
		require.Len(t, f.Phrase, 8)
		for _, n := range f.Phrase {
			c := g.Chords[chord.At(g, n.Start)].Chord
			assert.True(chord.IsChordTone(c, int(n.Pitch)), "pitch %d over %s", n.Pitch, c.Symbol)
		}
	}
	assert.NotEqual(t, frags[0].Phrase, frags[1].Phrase)
	assert.NotEqual(t, frags[0].ID, frags[1].ID)
}

func TestSynthesisLeadsIntoTheNextPitch(t *testing.T) {
	next := uint8(45)
	frags := New(nil, config.Settings{}, nil).Synthesize(model.StyleRoot, gap(t, "C", "F"), &next)

	for _, f := range frags {
		last := f.Phrase[len(f.Phrase)-1]
		assert.Equal(t, uint8(45), last.Pitch)
		require.NotNil(t, f.PredictedPitch)
		assert.Equal(t, next, *f.PredictedPitch)
	}
}

func TestScaleLimitsTheToneChoice(t *testing.T) {
	// the major third of C is not in C minor pentatonic
	frags := New(nil, config.Settings{}, nil).Synthesize(model.StyleWalking, gap(t, "C:minor-pentatonic"), nil)

	for _, f := range frags {
		for _, n := range f.Phrase {
			assert.NotEqual(t, 4, chord.Mod12(int(n.Pitch)))
		}
	}
}

func TestFunkLinesRest(t *testing.T) {
	frags := New(nil, config.Settings{}, nil).Synthesize(model.StyleFunk, gap(t, "E7"), nil)
	require.Len(t, frags, 2)

	assert := assert.New(t)
	assert.Len(frags[0].Phrase, 6)
	assert.Len(frags[1].Phrase, 5)
	for _, n := range frags[0].Phrase {
		assert.InDelta(0.4, n.Duration, 1e-9)
	}
}

func TestLinesBorrowFeelFromTheLibrary(t *testing.T) {
	home := gap(t, "D")
	template := &model.Fragment{
		ID:     "t",
		Style:  model.StyleBallad,
		Size:   1,
		Home:   home,
		Phrase: model.Phrase{{Pitch: 38, Velocity: 70, Start: 0.05, Duration: 3.9}},
	}
	frags := New(finder{template}, config.Settings{}, nil).Synthesize(model.StyleBallad, gap(t, "G"), nil)
	require.NotEmpty(t, frags)

	p := frags[0].Phrase
	assert := assert.New(t)
	assert.InDelta(0.05, p[0].Start, 1e-9)
	assert.InDelta(2, p[1].Start, 1e-9)
	for _, n := range p {
		assert.Equal(uint8(70), n.Velocity)
	}
}

func TestSwingDelaysOffbeats(t *testing.T) {
	frags := New(nil, config.Settings{SwingIntensity: 0.6}, nil).Synthesize(model.StyleFunk, gap(t, "A"), nil)

	// the second eighth rests, so the first offbeat heard is at 1.5
	assert.InDelta(t, 1, frags[0].Phrase[1].Start, 1e-9)
	assert.InDelta(t, 1.6, frags[0].Phrase[2].Start, 1e-9)
}

func TestSynthesizePanicsOnOversizedGap(t *testing.T) {
	g := gap(t, "C", "C", "C", "C", "C")
	assert.Panics(t, func() {
		New(nil, config.Settings{}, nil).Synthesize(model.StyleRoot, g, nil)
	})
}
