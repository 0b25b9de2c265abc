package library

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/phrase"
)

var fourFour = model.TimeSignature{Beats: 4, Unit: 4}

func slice(t *testing.T, symbols ...string) model.ChordSlice {
	t.Helper()
	s, err := chord.FromSymbols(symbols, fourFour, 100)
	require.NoError(t, err)
	return s
}

func quarters(pitches ...uint8) model.Phrase {
	var res model.Phrase
	for i, p := range pitches {
		res = append(res, model.Note{Pitch: p, Velocity: 80, Start: float64(i), Duration: 1})
	}
	return res
}

func frag(t *testing.T, id string, style model.Style, home model.ChordSlice, p model.Phrase) *model.Fragment {
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
		Transposability:   Transposability(p),
	}
}

func TestAddSkipsEquivalentFragments(t *testing.T) {
	s := NewMemoryStore()
	c := frag(t, "c", model.StyleWalking, slice(t, "C"), quarters(36, 40, 43, 40))

	assert := assert.New(t)
	assert.True(s.Add(c))
	assert.False(s.Add(c))

	t.Run("transposed copy", func(t *testing.T) {
		d := frag(t, "d", model.StyleWalking, slice(t, "D"), quarters(38, 42, 45, 42))
		assert.False(s.Add(d))
	})

	t.Run("sloppier timing", func(t *testing.T) {
		p := quarters(36, 40, 43, 40)
		p[1].Start += 0.05
		assert.False(s.Add(frag(t, "late", model.StyleWalking, slice(t, "C"), p)))
	})

	t.Run("other style", func(t *testing.T) {
		assert.True(s.Add(frag(t, "funk", model.StyleFunk, slice(t, "C"), quarters(36, 40, 43, 40))))
	})

	t.Run("other line", func(t *testing.T) {
		assert.True(s.Add(frag(t, "down", model.StyleWalking, slice(t, "C"), quarters(36, 31, 28, 31))))
	})

	assert.Equal(3, s.Len())
}

func TestFindGroupsByProfile(t *testing.T) {
	s := NewMemoryStore()
	s.Add(frag(t, "c", model.StyleWalking, slice(t, "C"), quarters(36, 40, 43, 40)))
	s.Add(frag(t, "cf", model.StyleWalking, slice(t, "C", "F"), quarters(36, 40, 43, 40, 41, 45, 48, 45)))
	s.Add(frag(t, "g", model.StyleWalking, slice(t, "G"), quarters(31, 35, 38, 40)))

	found := s.Find(model.StyleWalking, chord.RootProfile(slice(t, "Ab")))
	require.Len(t, found, 2)
	assert.Equal(t, "c", found[0].ID)
	assert.Equal(t, "g", found[1].ID)

	found[0] = nil
	assert.NotNil(t, s.Find(model.StyleWalking, chord.RootProfile(slice(t, "Ab")))[0])
	assert.Empty(t, s.Find(model.StyleFunk, chord.RootProfile(slice(t, "Ab"))))
}

func TestRelatedFragmentsShareARecording(t *testing.T) {
	s := NewMemoryStore()
	add := func(id string, rec uint32, bar, size int) *model.Fragment {
		symbols := make([]string, size)
		for i := range symbols {
			symbols[i] = "C"
		}
		f := frag(t, id, model.StyleRoot, slice(t, symbols...), quarters(uint8(30+bar), uint8(30+size)))
		f.Source = model.Source{Recording: rec, Bar: bar}
		require.True(t, s.Add(f))
		return f
	}
	whole := add("whole", 1, 0, 4)
	add("head", 1, 0, 2)
	add("tail", 1, 3, 1)
	add("next", 1, 4, 1)
	add("elsewhere", 2, 1, 4)

	var ids []string
	for _, f := range s.Related(whole) {
		ids = append(ids, f.ID)
	}
	assert.ElementsMatch(t, []string{"head", "tail"}, ids)
	assert.Nil(t, s.Related(&model.Fragment{ID: "synth", Size: 1}))
}

func TestAddPanicsOnBrokenFragments(t *testing.T) {
	s := NewMemoryStore()
	assert.Panics(t, func() { s.Add(frag(t, "", model.StyleRoot, slice(t, "C"), quarters(36))) })
	assert.Panics(t, func() {
		s.Add(frag(t, "long", model.StyleRoot, slice(t, "C", "C", "C", "C", "C"), quarters(36)))
	})
}

func TestAllIsStable(t *testing.T) {
	s := NewMemoryStore()
	s.Add(frag(t, "w", model.StyleWalking, slice(t, "C"), quarters(36)))
	s.Add(frag(t, "b", model.StyleBallad, slice(t, "C"), quarters(36)))
	s.Add(frag(t, "r", model.StyleRoot, slice(t, "C", "G"), quarters(36)))

	var ids []string
	for _, f := range s.All() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"b", "r", "w"}, ids)
}

func TestReplaceSwapsContents(t *testing.T) {
	a, b := NewMemoryStore(), NewMemoryStore()
	a.Add(frag(t, "old", model.StyleRoot, slice(t, "C"), quarters(36)))
	b.Add(frag(t, "new", model.StyleRoot, slice(t, "C"), quarters(36, 43)))

	a.Replace(b)

	require.Len(t, a.All(), 1)
	assert.Equal(t, "new", a.All()[0].ID)
}

func TestStoreIsSafeForConcurrentUse(t *testing.T) {
	s := NewMemoryStore()
	profile := chord.RootProfile(slice(t, "C"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Add(frag(t, fmt.Sprint(i), model.StyleRoot, slice(t, "C"), quarters(36, uint8(36+i))))
			s.Find(model.StyleRoot, profile)
			s.All()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, s.Len())
}
