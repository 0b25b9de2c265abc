package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/phrase"
)

func sixteenths(n int) model.Phrase {
	var res model.Phrase
	for i := 0; i < n; i++ {
		res = append(res, model.Note{Pitch: 36, Velocity: 90, Start: float64(i) * 0.25, Duration: 0.25})
	}
	return res
}

func TestGeneratedAndUnknownTempoAreNeutral(t *testing.T) {
	f := fragment("busy", model.StyleFunk, progression(t, "C"), sixteenths(16))
	custom := *f
	custom.Style = model.StyleCustom

	assert := assert.New(t)
	assert.Equal(50.0, tempoAxis(&custom, 180))
	assert.Equal(50.0, tempoAxis(f, 0))
}

func TestBusyLinesSuitSlowTempos(t *testing.T) {
	f := fragment("busy", model.StyleFunk, progression(t, "C"), sixteenths(16))

	assert := assert.New(t)
	assert.Greater(tempoAxis(f, 80), tempoAxis(f, 120))
	assert.Greater(tempoAxis(f, 120), tempoAxis(f, 160))
	assert.Equal(0.0, tempoAxis(f, 160))
}

func TestWalkingQuartersSuitFastTempos(t *testing.T) {
	f := fragment("walk", model.StyleWalking, progression(t, "C"), quarters(36, 40, 43, 40))

	assert := assert.New(t)
	assert.Equal(4, f.Stats.Quarter)
	assert.Greater(tempoAxis(f, 160), 50.0)
	assert.LessOrEqual(tempoAxis(f, 160), 100.0)
}

func TestTempoAxisIsClamped(t *testing.T) {
	p := sixteenths(64)
	f := fragment("busier", model.StyleFunk, progression(t, "C"), p)
	f.Stats = phrase.Stats(p, 1)

	assert.Equal(t, 100.0, tempoAxis(f, 60))
}
