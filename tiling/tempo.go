package tiling

import (
	"math"

	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/util"
)

type rhythm struct {
	short, dotted, quarter float64
}

var styleTempoBias = map[model.Style]func(r rhythm, tempo float64) float64{
	model.StyleRoot: func(r rhythm, tempo float64) float64 {
		return 0
	},
	model.StyleWalking: func(r rhythm, tempo float64) float64 {
		return 3*r.quarter - 2*r.short
	},
	model.StyleFunk: func(r rhythm, tempo float64) float64 {
		if tempo >= constants.FastTempo {
			return 0
		}
		return 3 * r.short
	},
	model.StyleBallad: func(r rhythm, tempo float64) float64 {
		return 5*r.dotted - 3*r.short
	},
}

// tempoAxis rewards rhythms that sit well at tempo for the fragment's style.
func tempoAxis(f *model.Fragment, tempo float64) float64 {
	if f.Generated() || tempo <= 0 {
		return constants.NeutralTempo
	}

	st := f.Stats
	r := rhythm{
		short:   st.PerBar(st.Short),
		dotted:  st.PerBar(st.Dotted),
		quarter: st.PerBar(st.Quarter),
	}

	v := constants.NeutralTempo
	switch {
	case tempo < constants.SlowTempo:
		v += 4*r.short + 6*r.dotted
	case tempo >= constants.FastTempo:
		v += 3*r.quarter - 8*r.short
	default:
		v += 4*r.dotted - 2*math.Max(0, r.short-4)
	}
	if bias, ok := styleTempoBias[f.Style]; ok {
		v += bias(r, tempo)
	}
	return util.Clamp(v, 0, 100)
}
