package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/basstile/model"
)

func TestPlaceClaimsBars(t *testing.T) {
	cm := wholeMap(t, "C", "F", "G", "C")
	home := progression(t, "C", "C")
	f := fragment("two", model.StyleWalking, home, quarters(36, 40, 43, 40, 36, 40, 43, 40))

	p := NewPlacement(f, cm.Target(BarRange{From: 1, To: 2}), 1)
	cm.Place(p)

	assert := assert.New(t)
	assert.False(cm.Free(BarRange{From: 2, To: 3}))
	assert.True(cm.Free(BarRange{From: 3, To: 3}))
	assert.Same(p, cm.At(2))
	assert.Same(p, cm.StartingAt(1))
	assert.Nil(cm.StartingAt(2))
	assert.Equal([]int{1, 2}, cm.Tiled())
	assert.Equal([]int{0, 3}, cm.NonTiled())
	assert.False(cm.Complete())

	assert.Panics(func() {
		cm.Place(NewPlacement(f, cm.Target(BarRange{From: 2, To: 3}), 2))
	})
}

func TestSegmentsBoundPlacements(t *testing.T) {
	s := progression(t, "C", "F", "G", "C", "Am", "F")
	cm := NewCoverageMap(Composition{
		Slice:    s,
		Segments: []BarRange{{From: 0, To: 3}, {From: 4, To: 5}},
	}, BarRange{From: 0, To: 5}, nil)

	assert := assert.New(t)
	assert.True(cm.Usable(BarRange{From: 0, To: 3}))
	assert.False(cm.Usable(BarRange{From: 3, To: 4}))
	assert.True(cm.Usable(BarRange{From: 4, To: 5}))
	assert.Equal([]int{0, 2, 4}, cm.Runs(2))
	assert.Equal([]int{0}, cm.Runs(3))
}

func TestWindowLimitsUsableBars(t *testing.T) {
	s := progression(t, "C", "F", "G", "C")
	cm := NewCoverageMap(Composition{Slice: s}, BarRange{From: 1, To: 2}, nil)

	assert := assert.New(t)
	assert.False(cm.Usable(BarRange{From: 0, To: 0}))
	assert.True(cm.Usable(BarRange{From: 1, To: 2}))
	assert.Equal([]int{1, 2}, cm.NonTiled())
	assert.Panics(func() {
		NewCoverageMap(Composition{Slice: s}, BarRange{From: 2, To: 4}, nil)
	})
}

func TestRunsSkipClaimedBars(t *testing.T) {
	cm := wholeMap(t, "C", "C", "C", "C", "C")
	f := fragment("one", model.StyleRoot, progression(t, "C"), quarters(36))
	cm.Place(NewPlacement(f, cm.Target(BarRange{From: 2, To: 2}), 2))

	assert := assert.New(t)
	assert.Equal([]int{0, 3}, cm.Runs(2))
	assert.Equal([]int{0, 1, 3, 4}, cm.Runs(1))
	assert.Empty(cm.Runs(3))
}

func TestBuildSplicesAndLeavesGapsSilent(t *testing.T) {
	cm := wholeMap(t, "C", "F", "G")
	f := fragment("walk", model.StyleWalking, progression(t, "C"), quarters(36, 40, 43, 40))
	cm.Place(NewPlacement(f, cm.Target(BarRange{From: 0, To: 0}), 0))
	cm.Place(NewPlacement(f, cm.Target(BarRange{From: 2, To: 2}), 2))

	p := cm.Build()

	require.Len(t, p, 8)
	assert := assert.New(t)
	assert.Equal(uint8(36), p[0].Pitch)
	assert.Equal(0.0, p[0].Start)
	// G is a fifth up, folded down a fourth
	assert.Equal(uint8(31), p[4].Pitch)
	assert.Equal(8.0, p[4].Start)
	for _, n := range p {
		assert.False(n.Start >= 4 && n.Start < 8, "note in silent bar at %v", n.Start)
	}
}

func TestBuildTruncatesBeforePickups(t *testing.T) {
	cm := wholeMap(t, "C", "C")
	held := fragment("held", model.StyleBallad, progression(t, "C"), model.Phrase{{Pitch: 36, Velocity: 90, Start: 0, Duration: 4}})
	pickup := fragment("pickup", model.StyleWalking, progression(t, "C"), model.Phrase{
		{Pitch: 35, Velocity: 90, Start: -0.5, Duration: 0.5},
		{Pitch: 36, Velocity: 90, Start: 0, Duration: 4},
	})
	cm.Place(NewPlacement(held, cm.Target(BarRange{From: 0, To: 0}), 0))
	cm.Place(NewPlacement(pickup, cm.Target(BarRange{From: 1, To: 1}), 1))

	p := cm.Build()

	require.Len(t, p, 3)
	assert := assert.New(t)
	assert.Equal(3.5, p[0].Duration)
	assert.Equal(3.5, p[1].Start)
}

func TestBuildRebasesToTheWindow(t *testing.T) {
	s := progression(t, "C", "C", "C")
	cm := NewCoverageMap(Composition{Slice: s}, BarRange{From: 1, To: 2}, nil)
	f := fragment("walk", model.StyleWalking, progression(t, "C"), quarters(36, 40, 43, 40))
	cm.Place(NewPlacement(f, cm.Target(BarRange{From: 2, To: 2}), 2))

	p := cm.Build()

	require.Len(t, p, 4)
	assert.Equal(t, 4.0, p[0].Start)
}

func TestSynthesizeCallsOncePerGapShape(t *testing.T) {
	cm := wholeMap(t, "C", "C", "G", "C")
	var gaps []model.ChordSlice
	gen := func(gap model.ChordSlice, next *uint8) []*model.Fragment {
		gaps = append(gaps, gap)
		return []*model.Fragment{fragment("x", model.StyleCustom, gap, quarters(36))}
	}

	res := cm.Synthesize(1, gen)

	assert := assert.New(t)
	assert.Len(gaps, 2)
	assert.Len(res, 2)
	for _, g := range gaps {
		assert.Equal(1, g.Bars)
		assert.Equal(0, g.Chords[0].Bar)
	}
}

func TestSynthesizePassesTheSuccessorPitch(t *testing.T) {
	cm := wholeMap(t, "C", "F")
	f := fragment("walk", model.StyleWalking, progression(t, "C"), quarters(36, 40, 43, 40))
	cm.Place(NewPlacement(f, cm.Target(BarRange{From: 1, To: 1}), 1))

	var got *uint8
	cm.Synthesize(1, func(gap model.ChordSlice, next *uint8) []*model.Fragment {
		got = next
		return nil
	})

	require.NotNil(t, got)
	assert.Equal(t, uint8(41), *got)
}

func TestUnsubscribedListenersStopHearing(t *testing.T) {
	cm := wholeMap(t, "C", "C")
	f := fragment("one", model.StyleRoot, progression(t, "C"), quarters(36))
	heard := 0
	cancel := cm.Subscribe(func(*Placement) { heard++ })

	cm.Place(NewPlacement(f, cm.Target(BarRange{From: 0, To: 0}), 0))
	cancel()
	cm.Place(NewPlacement(f, cm.Target(BarRange{From: 1, To: 1}), 1))

	assert.Equal(t, 1, heard)
}
