package constants

const MaxFragmentBars = 4

// longest song accepted, in bars
const MaxSongBars = 1024

// largest request body the server reads
const MaxRequestBytes = 1 << 20

// score axis weights: harmonic, transposability, tempo, pre-target, post-target
var AxisWeights = [5]float64{5, 3, 3, 2, 2}

const (
	UnusedSlotPenalty     = 10.0
	UnusedRootSlotPenalty = 15.0
)

// boundary axis values
const (
	PerfectBridge   = 100.0
	NeutralBridge   = 50.0
	CollidingBridge = 0.0
)

const NeutralTempo = 50.0

// notes shorter than this (in beats) never vote on harmony
const GhostNoteBeats = 0.125

// a semitone approach note is at most this long (in beats)
const ApproachNoteBeats = 0.5

// notes starting less than this many beats before a cut and ending by it
// travel with the fragment as a pickup
const PickupBeats = 1.0

// candidates whose overall scores fall in the same band are interchangeable
const ScoreBandWidth = 7.0

// rank slots tried by longest-first before falling back to smaller sizes
const RankSlots = 5

// candidates per size gathered by max-distance at each bar
const MaxDistanceTopN = 3

// a related sub-fragment only counts as used when it shares more than this
// many bars with the placed fragment
const NonStrictOverlapBars = 1

const (
	PremiumMinTempo           = 50.0
	PremiumMinTransposability = 50.0
)

// tempo bands (bpm)
const (
	SlowTempo = 90.0
	FastTempo = 140.0
)

// bass register used when voicing synthesized lines (E1..D#2 for roots)
const LowestBassRoot = 28

const DefaultVelocity = 90
