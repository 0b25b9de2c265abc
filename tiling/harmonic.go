package tiling

import (
	"math"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/model"
)

func semitone(a, b model.Note) int {
	return int(b.Pitch) - int(a.Pitch)
}

func isApproach(n, next model.Note) bool {
	step := semitone(n, next)
	return (step == 1 || step == -1) &&
		n.Duration <= constants.ApproachNoteBeats &&
		math.Abs(n.End()-next.Start) < 0.05
}

// votingNotes drops ghost notes and lone semitone approach notes; neither
// says anything about the harmony a fragment was written for.
func votingNotes(p model.Phrase) model.Phrase {
	var res model.Phrase
	for i, n := range p {
		if n.Duration < constants.GhostNoteBeats {
			continue
		}
		if i+1 < len(p) && isApproach(n, p[i+1]) {
			// part of a chromatic run, not a lone approach
			if i == 0 || semitone(p[i-1], n) != semitone(n, p[i+1]) {
				continue
			}
		}
		res = append(res, n)
	}
	return res
}

func harmonicAxis(f *model.Fragment, target model.ChordSlice) float64 {
	home := f.Home
	if len(home.Chords) != len(target.Chords) {
		return 0
	}

	notes := votingNotes(f.Phrase)
	var total float64
	for i, tc := range target.Chords {
		hc := home.Chords[i].Chord
		span := chord.Span(home, i)
		usage := make(map[int]float64)
		for _, n := range notes {
			// slivers of early or late notes don't count against a chord
			if w := span.Overlap(n.Start, n.End()); w >= constants.GhostNoteBeats {
				usage[chord.Mod12(int(n.Pitch)-hc.Root)] += w
			}
		}
		fit := chordFit(hc, tc.Chord, usage)
		if fit == 0 {
			return 0
		}
		total += fit
	}
	return total / float64(len(target.Chords))
}

// chordFit scores how well the intervals a fragment sounded over home serve
// target. usage maps intervals above the root to sounding duration.
func chordFit(home, target model.Chord, usage map[int]float64) float64 {
	needed := 0
	for _, d := range chord.Degrees(home) {
		if usage[d.Interval] > 0 {
			needed++
		}
	}
	degrees := chord.Degrees(target)
	if needed > len(degrees) {
		return 0
	}

	for interval, w := range usage {
		if w > 0 && !chord.InScale(target, interval) {
			return 0
		}
	}

	var penalty float64
	for _, d := range degrees {
		used := usage[d.Interval]
		var clash float64
		for _, alt := range chord.Clashes(target, d.Interval) {
			clash += usage[alt]
		}
		if clash > used {
			return 0
		}
		if used == 0 {
			if d.Root {
				penalty += constants.UnusedRootSlotPenalty
			} else {
				penalty += constants.UnusedSlotPenalty
			}
		}
	}
	return math.Max(1, 100-penalty)
}
