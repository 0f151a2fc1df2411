package workout

import (
	"fmt"
	"math"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/periodization"
)

// Long session progression in minutes
const (
	longRideStart   = 90
	longRideStep    = 15
	longRideCeiling = 210
	longRunStart    = 60
	longRunStep     = 5
	longRunCeiling  = 150
)

// shape is one interval variation: repeats x minutes with rest between.
type shape struct {
	repeats int
	minutes int
	rest    int
}

func (s shape) label() string {
	return fmt.Sprintf("%dx%dmin", s.repeats, s.minutes)
}

// Variation sets rotate by week number so consecutive weeks differ.
var variations = map[Type][]shape{
	TypeSweetSpot: {{3, 15, 5}, {2, 20, 5}, {4, 12, 4}},
	TypeThreshold: {{3, 10, 5}, {2, 15, 5}, {4, 8, 4}},
	TypeVO2Max:    {{6, 3, 3}, {5, 4, 4}, {8, 2, 2}},
	TypeOverUnder: {{3, 9, 5}, {4, 8, 4}, {3, 12, 6}},
	TypeTempo:     {{1, 20, 0}, {2, 12, 3}, {3, 10, 2}},
	TypeIntervals: {{6, 3, 2}, {5, 4, 3}, {10, 1, 1}},
}

// variation returns the interval shape used for a template type in a week.
func variation(t Type, week int) (shape, bool) {
	set, ok := variations[t]
	if !ok || len(set) == 0 {
		return shape{}, false
	}
	i := week % len(set)
	if i < 0 {
		i += len(set)
	}
	return set[i], true
}

// LongRideMinutes grows linearly with the plan week up to a ceiling.
func LongRideMinutes(week int) int {
	return min(longRideStart+longRideStep*(week-1), longRideCeiling)
}

// LongRunMinutes grows linearly with the plan week up to a ceiling.
func LongRunMinutes(week int) int {
	return min(longRunStart+longRunStep*(week-1), longRunCeiling)
}

// Phase template orders. The first entries survive when a week has fewer
// training days than templates.
var cyclingPlan = map[periodization.Focus][]Type{
	periodization.FocusBase:     {TypeLongRide, TypeEndurance, TypeSweetSpot, TypeHighCadence, TypeEndurance, TypeRecovery},
	periodization.FocusBuild:    {TypeLongRide, TypeThreshold, TypeSweetSpot, TypeVO2Max, TypeEndurance, TypeLowCadence},
	periodization.FocusPeak:     {TypeLongRide, TypeEventSim, TypeVO2Max, TypeThreshold, TypeSprint, TypeRecovery},
	periodization.FocusRecovery: {TypeEndurance, TypeRecovery, TypeHighCadence, TypeRecovery},
	periodization.FocusTaper:    {TypeEndurance, TypeSprint, TypeRecovery, TypeHighCadence},
}

var runningPlan = map[periodization.Focus][]Type{
	periodization.FocusBase:     {TypeLongRun, TypeEasy, TypeStrides, TypeEasy, TypeTempo, TypeRecoveryRun},
	periodization.FocusBuild:    {TypeLongRun, TypeIntervals, TypeTempo, TypeEasy, TypeEasy, TypeRecoveryRun},
	periodization.FocusPeak:     {TypeLongRun, TypeRacePace, TypeIntervals, TypeEasy, TypeStrides, TypeRecoveryRun},
	periodization.FocusRecovery: {TypeEasy, TypeRecoveryRun, TypeStrides, TypeEasy},
	periodization.FocusTaper:    {TypeEasy, TypeRacePace, TypeStrides, TypeRecoveryRun},
}

// Polarized build weeks keep a single hard session.
var polarizedPlan = map[Sport][]Type{
	SportCycling: {TypeLongRide, TypeVO2Max, TypeEndurance, TypeEndurance, TypeRecovery, TypeHighCadence},
	SportRunning: {TypeLongRun, TypeIntervals, TypeEasy, TypeEasy, TypeRecoveryRun, TypeStrides},
}

// Polarized reports whether a week gets the polarized build distribution:
// Advanced and Elite athletes on even-numbered build weeks.
func Polarized(phase periodization.Phase, tier analysis.Tier) bool {
	return phase.Focus == periodization.FocusBuild && advanced(tier) && phase.Week%2 == 0
}

// TemplatesFor returns the ordered template types of one week.
func TemplatesFor(sport Sport, phase periodization.Phase, tier analysis.Tier) []Type {
	var src []Type
	switch {
	case Polarized(phase, tier):
		src = polarizedPlan[sport]
	case sport == SportCycling:
		src = cyclingPlan[phase.Focus]
	default:
		src = runningPlan[phase.Focus]
	}

	out := make([]Type, len(src))
	for i, t := range src {
		out[i] = substitute(t, tier)
	}
	return out
}

func advanced(tier analysis.Tier) bool {
	return tier == analysis.TierAdvanced || tier == analysis.TierElite
}

// substitute swaps in the harder variant for advanced athletes.
func substitute(t Type, tier analysis.Tier) Type {
	if !advanced(tier) {
		return t
	}
	switch t {
	case TypeVO2Max:
		return TypeOverUnder
	case TypeIntervals:
		return TypeHillRepeats
	}
	return t
}

// Build returns the template of a type for a plan week.
func Build(t Type, week int) Template {
	v, _ := variation(t, week)

	switch t {
	case TypeRecovery:
		return Template{Type: t, Name: "Recovery Spin", StressPerHour: 30, Segments: []Segment{
			steady(45, "Z1"),
		}}
	case TypeEndurance:
		return Template{Type: t, Name: "Endurance Ride", StressPerHour: 60, Segments: []Segment{
			warmup(10, "Z1"), steady(60, "Z2"), cooldown(10, "Z1"),
		}}
	case TypeSweetSpot:
		return Template{Type: t, Name: "Sweet Spot " + v.label(), StressPerHour: 85, Quality: true, Segments: []Segment{
			warmup(15, "Z2"), intervals(v, "Z3", 0.90), cooldown(10, "Z1"),
		}}
	case TypeThreshold:
		return Template{Type: t, Name: "Threshold " + v.label(), StressPerHour: 95, Quality: true, Segments: []Segment{
			warmup(15, "Z2"), intervals(v, "Z4", 1.00), cooldown(10, "Z1"),
		}}
	case TypeVO2Max:
		return Template{Type: t, Name: "VO2max " + v.label(), StressPerHour: 85, Quality: true, Segments: []Segment{
			warmup(20, "Z2"), intervals(v, "Z5", 1.10), cooldown(15, "Z1"),
		}}
	case TypeOverUnder:
		over := intervals(v, "Z4", 1.00)
		over.Note = "alternate 2 min at 95% and 1 min at 105% FTP"
		return Template{Type: t, Name: "Over/Under " + v.label(), StressPerHour: 95, Quality: true, Segments: []Segment{
			warmup(15, "Z2"), over, cooldown(10, "Z1"),
		}}
	case TypeSprint:
		sprints := intervals(shape{6, 1, 4}, "Z6", 1.30)
		sprints.Note = "all-out seated and standing efforts"
		return Template{Type: t, Name: "Sprint Power", StressPerHour: 70, Quality: true, Segments: []Segment{
			warmup(20, "Z2"), sprints, steady(20, "Z2"), cooldown(10, "Z1"),
		}}
	case TypeHighCadence:
		spin := intervals(shape{6, 5, 2}, "Z2", 0)
		spin.Note = "100-110 rpm"
		return Template{Type: t, Name: "High Cadence Drills", StressPerHour: 55, Segments: []Segment{
			warmup(10, "Z1"), spin, cooldown(10, "Z1"),
		}}
	case TypeLowCadence:
		grind := intervals(shape{5, 6, 4}, "Z3", 0.85)
		grind.Note = "55-65 rpm, seated"
		return Template{Type: t, Name: "Low Cadence Strength", StressPerHour: 75, Quality: true, Segments: []Segment{
			warmup(15, "Z2"), grind, cooldown(10, "Z1"),
		}}
	case TypeLongRide:
		return Template{Type: t, Name: "Long Ride", StressPerHour: 65, Long: true, Segments: []Segment{
			steady(LongRideMinutes(week), "Z2"),
		}}
	case TypeEventSim:
		return Template{Type: t, Name: "Event Simulation", StressPerHour: 90, Quality: true, Segments: []Segment{
			warmup(15, "Z2"), steady(30, "Z2"), intervals(shape{3, 10, 5}, "Z4", 0.95), steady(20, "Z3"), cooldown(10, "Z1"),
		}}

	case TypeRecoveryRun:
		return Template{Type: t, Name: "Recovery Run", StressPerHour: 30, Segments: []Segment{
			steady(30, "Z1"),
		}}
	case TypeEasy:
		return Template{Type: t, Name: "Easy Run", StressPerHour: 55, Segments: []Segment{
			steady(40, "Z2"),
		}}
	case TypeLongRun:
		return Template{Type: t, Name: "Long Run", StressPerHour: 65, Long: true, Segments: []Segment{
			steady(LongRunMinutes(week), "Z2"),
		}}
	case TypeTempo:
		name := "Tempo Run " + v.label()
		if v.repeats == 1 {
			name = fmt.Sprintf("Tempo Run %dmin", v.minutes)
		}
		return Template{Type: t, Name: name, StressPerHour: 85, Quality: true, Segments: []Segment{
			warmup(10, "Z1"), intervals(v, "Z3", 0), cooldown(10, "Z1"),
		}}
	case TypeIntervals:
		return Template{Type: t, Name: "Intervals " + v.label(), StressPerHour: 95, Quality: true, Segments: []Segment{
			warmup(15, "Z1"), intervals(v, "Z5", 0), cooldown(10, "Z1"),
		}}
	case TypeHillRepeats:
		hills := intervals(shape{8, 1, 2}, "Z5", 0)
		hills.Note = "uphill, jog back down"
		return Template{Type: t, Name: "Hill Repeats", StressPerHour: 90, Quality: true, Segments: []Segment{
			warmup(15, "Z1"), hills, cooldown(10, "Z1"),
		}}
	case TypeRacePace:
		return Template{Type: t, Name: "Race Pace Run", StressPerHour: 90, Quality: true, Segments: []Segment{
			warmup(10, "Z1"), steady(20, "Z4"), cooldown(10, "Z1"),
		}}
	case TypeStrides:
		strides := intervals(shape{6, 1, 1}, "Z5", 0)
		strides.Note = "relaxed fast strides"
		return Template{Type: t, Name: "Easy Run + Strides", StressPerHour: 60, Segments: []Segment{
			steady(30, "Z2"), strides,
		}}
	}

	return Template{Type: t, Name: string(t), StressPerHour: 50, Segments: []Segment{steady(30, "Z2")}}
}

func warmup(minutes int, zone string) Segment {
	return Segment{Kind: SegmentWarmup, Minutes: minutes, Zone: zone}
}

func cooldown(minutes int, zone string) Segment {
	return Segment{Kind: SegmentCooldown, Minutes: minutes, Zone: zone}
}

func steady(minutes int, zone string) Segment {
	return Segment{Kind: SegmentSteady, Minutes: minutes, Zone: zone}
}

func intervals(s shape, zone string, intensity float64) Segment {
	return Segment{
		Kind:        SegmentInterval,
		Minutes:     s.minutes,
		Zone:        zone,
		Intensity:   intensity,
		Repeats:     s.repeats,
		RestMinutes: s.rest,
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
