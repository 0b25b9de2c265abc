package tiling

import (
	"fmt"

	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/score"
)

type Pool int

const (
	LibraryPool Pool = iota
	// CustomPool holds fragments synthesized earlier for the same style
	CustomPool
	// GeneratedPool synthesizes new fragments for the gaps before tiling
	GeneratedPool
)

func (p Pool) String() string {
	switch p {
	case LibraryPool:
		return "library"
	case CustomPool:
		return "custom"
	case GeneratedPool:
		return "generated"
	}
	return fmt.Sprintf("pool(%d)", int(p))
}

type Phase struct {
	Name     string
	Pool     Pool
	Strategy StrategyKind
	Admit    score.Predicate
}

var (
	premium  = score.Premium
	standard = score.HarmonicPass
	minimum  = score.Positive
)

var defaultPlan = []Phase{
	{Name: "premium/longest-first", Pool: LibraryPool, Strategy: LongestFirstKind, Admit: premium},
	{Name: "premium/max-distance", Pool: LibraryPool, Strategy: MaxDistanceKind, Admit: premium},
	{Name: "standard/longest-first", Pool: LibraryPool, Strategy: LongestFirstKind, Admit: standard},
	{Name: "standard/max-distance", Pool: LibraryPool, Strategy: MaxDistanceKind, Admit: standard},
	{Name: "custom/max-distance", Pool: CustomPool, Strategy: MaxDistanceKind, Admit: minimum},
	{Name: "generated/max-distance", Pool: GeneratedPool, Strategy: MaxDistanceKind, Admit: minimum},
}

var plans = map[model.Style][]Phase{
	model.StyleRoot:    defaultPlan,
	model.StyleWalking: defaultPlan,
	model.StyleFunk:    defaultPlan,
	model.StyleBallad:  defaultPlan,
}

// PlanFor returns the ordered phases for style.
func PlanFor(style model.Style) []Phase {
	plan, ok := plans[style]
	if !ok {
		panic(fmt.Sprintf("no phase plan for style %q", style))
	}
	return plan
}
