package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Tier is the athlete's discrete fitness level.
type Tier string

const (
	TierBeginner     Tier = "Beginner"
	TierIntermediate Tier = "Intermediate"
	TierAdvanced     Tier = "Advanced"
	TierElite        Tier = "Elite"
)

// Tiers lists every tier in ascending order.
var Tiers = []Tier{TierBeginner, TierIntermediate, TierAdvanced, TierElite}

// Rank returns 0 for Beginner up to 3 for Elite, -1 for unknown values.
func (t Tier) Rank() int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}

// Valid reports whether t is one of the four tiers.
func (t Tier) Valid() bool {
	return t.Rank() >= 0
}

// ParseTier accepts any casing of a tier name.
func ParseTier(s string) (Tier, error) {
	for _, tier := range Tiers {
		if strings.EqualFold(string(tier), strings.TrimSpace(s)) {
			return tier, nil
		}
	}
	return "", fmt.Errorf("unknown fitness tier %q", s)
}

// Decision tree thresholds. Any single threshold is enough to reach a tier.
const (
	eliteWeeklyKm    = 70
	eliteFiveKSec    = 18 * 60
	advancedWeeklyKm = 40
	advancedFreq     = 4
	advancedFiveKSec = 22 * 60
	interWeeklyKm    = 15
	interFreq        = 3
)

// ClassifyTier runs the local decision tree. A zero or negative 5K time
// means no estimate and is treated as infinitely slow.
func ClassifyTier(weeklyKm, weeklyFreq, fiveKSeconds float64) Tier {
	fiveK := fiveKSeconds
	if fiveK <= 0 {
		fiveK = math.Inf(1)
	}

	switch {
	case weeklyKm >= eliteWeeklyKm || fiveK < eliteFiveKSec:
		return TierElite
	case weeklyKm >= advancedWeeklyKm || weeklyFreq >= advancedFreq || fiveK < advancedFiveKSec:
		return TierAdvanced
	case weeklyKm >= interWeeklyKm || weeklyFreq >= interFreq:
		return TierIntermediate
	default:
		return TierBeginner
	}
}
