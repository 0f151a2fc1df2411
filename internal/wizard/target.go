package wizard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"endurance-planner/internal/analysis"
)

// TargetSource records which provider produced a target time.
type TargetSource string

const (
	SourceGoalTime   TargetSource = "goal_time"
	SourceAdjusted   TargetSource = "adjusted_estimate"
	SourceHistorical TargetSource = "historical_estimate"
)

// Target is a derived race goal time.
type Target struct {
	Seconds int          `json:"seconds"`
	Source  TargetSource `json:"source"`
}

// Minutes returns the target in minutes with two decimals.
func (t Target) Minutes() float64 {
	return math.Round(float64(t.Seconds)/60*100) / 100
}

// improvementCeiling is the best-case gain of a 16+ week plan per tier.
var improvementCeiling = map[analysis.Tier]float64{
	analysis.TierBeginner:     0.15,
	analysis.TierIntermediate: 0.08,
	analysis.TierAdvanced:     0.05,
	analysis.TierElite:        0.03,
}

// ImprovementFactor scales the tier ceiling linearly up to 16 weeks.
func ImprovementFactor(tier analysis.Tier, weeks int) float64 {
	ceiling, ok := improvementCeiling[tier]
	if !ok {
		ceiling = improvementCeiling[analysis.TierBeginner]
	}
	return ceiling * math.Min(float64(weeks)/16, 1)
}

// targetProvider returns a target or false when it has nothing to offer.
type targetProvider struct {
	source TargetSource
	fn     func(s State, estimates analysis.RaceEstimates) (int, bool)
}

// Providers in priority order; the first answer wins.
var targetProviders = []targetProvider{
	{SourceGoalTime, fromGoalTime},
	{SourceAdjusted, fromAdjustedTimes},
	{SourceHistorical, fromHistory},
}

// DeriveTargetTime picks the goal time of a running race goal. Only the
// historical estimate is discounted by the improvement factor.
func DeriveTargetTime(s State, estimates analysis.RaceEstimates) (Target, bool) {
	if !s.Goal.Race() {
		return Target{}, false
	}
	for _, p := range targetProviders {
		if secs, ok := p.fn(s, estimates); ok && secs > 0 {
			return Target{Seconds: secs, Source: p.source}, true
		}
	}
	return Target{}, false
}

func fromGoalTime(s State, _ analysis.RaceEstimates) (int, bool) {
	if strings.TrimSpace(s.GoalTime) == "" {
		return 0, false
	}
	secs, err := ParseClock(s.GoalTime)
	return secs, err == nil
}

func fromAdjustedTimes(s State, _ analysis.RaceEstimates) (int, bool) {
	if !s.TimesAdjusted {
		return 0, false
	}
	name, _ := s.Goal.EstimateName()
	raw, ok := s.EstimatedTimes[name]
	if !ok {
		return 0, false
	}
	secs, err := ParseClock(raw)
	return secs, err == nil
}

func fromHistory(s State, estimates analysis.RaceEstimates) (int, bool) {
	name, _ := s.Goal.EstimateName()
	secs, ok := estimates.Seconds(name)
	if !ok || secs <= 0 {
		return 0, false
	}
	return int(math.Round(float64(secs) * (1 - ImprovementFactor(s.Tier, s.Weeks)))), true
}

// ParseClock parses "MM:SS" or "H:MM:SS" into seconds.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: use MM:SS or H:MM:SS", s)
	}

	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid time %q: use MM:SS or H:MM:SS", s)
		}
		// everything after the leading field is base 60
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("invalid time %q: field %q out of range", s, p)
		}
		values[i] = v
	}

	total := 0
	for _, v := range values {
		total = total*60 + v
	}
	if total == 0 {
		return 0, fmt.Errorf("invalid time %q: must be positive", s)
	}
	return total, nil
}

// FormatClock renders seconds as M:SS, or H:MM:SS from one hour up.
func FormatClock(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	sec := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
