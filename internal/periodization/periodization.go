// Package periodization lays out the weekly mesocycle phases of a plan.
package periodization

import (
	"errors"
	"fmt"
	"math"

	"endurance-planner/internal/analysis"
)

// Focus is the dominant training emphasis of a week.
type Focus string

const (
	FocusBase     Focus = "base"
	FocusBuild    Focus = "build"
	FocusPeak     Focus = "peak"
	FocusTaper    Focus = "taper"
	FocusRecovery Focus = "recovery"
)

const (
	MinWeeks    = 4
	MaxWeeks    = 52
	CycleLength = 12
)

// ErrWeeksOutOfRange rejects plan lengths outside [MinWeeks, MaxWeeks].
var ErrWeeksOutOfRange = errors.New("plan length out of range")

// Phase is one week of the plan.
type Phase struct {
	Week         int   `json:"week"`
	Focus        Focus `json:"focus"`
	BlockWeek    int   `json:"block_week"` // 1-based position inside the focus block
	TargetStress int   `json:"target_stress"`
}

// cycle maps the position (week-1) mod 12 to its focus and block position.
var cycle = [CycleLength]struct {
	focus Focus
	block int
}{
	{FocusBase, 0}, {FocusBase, 1}, {FocusBase, 2},
	{FocusRecovery, 0},
	{FocusBuild, 0}, {FocusBuild, 1}, {FocusBuild, 2},
	{FocusRecovery, 0},
	{FocusPeak, 0}, {FocusPeak, 1}, {FocusPeak, 2},
	{FocusTaper, 0},
}

// Load progression constants
const (
	baseStart     = 0.96
	baseStep      = 0.04
	baseCeiling   = 1.04
	buildGrowth   = 1.08
	peakGrowth    = 1.02
	recoveryRatio = 0.6
	taperRatio    = 0.5
)

// FocusForWeek returns the focus of a 1-based plan week. It depends only
// on the week's position in the 12-week cycle.
func FocusForWeek(week int) Focus {
	return cycle[position(week)].focus
}

// BaseStress is the weekly stress a tier starts from.
func BaseStress(tier analysis.Tier) float64 {
	switch tier {
	case analysis.TierElite:
		return 650
	case analysis.TierAdvanced:
		return 500
	case analysis.TierIntermediate:
		return 350
	default:
		return 200
	}
}

// Multiplier scales BaseStress for a plan week.
func Multiplier(week int) float64 {
	c := cycle[position(week)]
	buildCeiling := baseCeiling * math.Pow(buildGrowth, 3)

	switch c.focus {
	case FocusBase:
		return baseStart + baseStep*float64(c.block)
	case FocusBuild:
		return baseCeiling * math.Pow(buildGrowth, float64(c.block+1))
	case FocusPeak:
		return buildCeiling * math.Pow(peakGrowth, float64(c.block+1))
	case FocusTaper:
		return taperRatio
	default:
		return recoveryRatio
	}
}

// Plan returns one phase per week. The result is a pure function of
// weeks and tier.
func Plan(weeks int, tier analysis.Tier) ([]Phase, error) {
	if weeks < MinWeeks || weeks > MaxWeeks {
		return nil, fmt.Errorf("%d weeks (allowed %d-%d): %w", weeks, MinWeeks, MaxWeeks, ErrWeeksOutOfRange)
	}

	base := BaseStress(tier)
	phases := make([]Phase, 0, weeks)
	for week := 1; week <= weeks; week++ {
		c := cycle[position(week)]
		phases = append(phases, Phase{
			Week:         week,
			Focus:        c.focus,
			BlockWeek:    c.block + 1,
			TargetStress: int(math.Round(base * Multiplier(week))),
		})
	}
	return phases, nil
}

func position(week int) int {
	p := (week - 1) % CycleLength
	if p < 0 {
		p += CycleLength
	}
	return p
}
