package analysis

import (
	"math"
	"time"
)

// Standard race distances in meters
const (
	Distance5K       = 5000
	Distance10K      = 10000
	DistanceHalfMara = 21097
	DistanceMarathon = 42195

	// RiegelExponent is the fatigue factor in T2 = T1 * (D2/D1)^k
	RiegelExponent = 1.06

	// minFallbackMeters is the shortest activity usable as a whole-effort anchor
	minFallbackMeters = 4000
)

// PredictionTarget represents a target distance for predictions
type PredictionTarget struct {
	Name           string // "5k", "10k", "half", "marathon"
	DistanceMeters float64
}

// PredictionTargets defines the standard prediction distances
var PredictionTargets = []PredictionTarget{
	{"5k", Distance5K},
	{"10k", Distance10K},
	{"half", DistanceHalfMara},
	{"marathon", DistanceMarathon},
}

// RaceEstimate is a predicted finish time for one target distance
type RaceEstimate struct {
	Name           string
	DistanceMeters float64
	Seconds        int
	Confidence     string // "high", "medium", "low"
}

// PaceMinPerKm returns the average pace implied by the estimate.
func (e RaceEstimate) PaceMinPerKm() float64 {
	if e.DistanceMeters <= 0 {
		return 0
	}
	return float64(e.Seconds) / 60 / (e.DistanceMeters / 1000)
}

// RaceEstimates is an ordered set of estimates, shortest distance first.
// An empty set means there was no pace data to extrapolate from.
type RaceEstimates []RaceEstimate

// Seconds looks up the estimate for a target name.
func (r RaceEstimates) Seconds(name string) (int, bool) {
	for _, e := range r {
		if e.Name == name {
			return e.Seconds, true
		}
	}
	return 0, false
}

// PredictTime applies the Riegel power law to scale a known time t1 over
// distance d1 to distance d2.
func PredictTime(t1, d1, d2 float64) float64 {
	if t1 <= 0 || d1 <= 0 || d2 <= 0 {
		return 0
	}
	return t1 * math.Pow(d2/d1, RiegelExponent)
}

// Base5KSeconds returns the 5K-equivalent anchor time. The anchor pace wins;
// otherwise the fastest whole activity of at least 4 km is scaled to 5K.
func Base5KSeconds(samples []Sample, anchorPace float64) float64 {
	if anchorPace > 0 {
		return anchorPace * 5 * 60
	}

	best := math.Inf(1)
	for _, s := range samples {
		if s.DistanceMeters < minFallbackMeters || s.DurationMinutes <= 0 {
			continue
		}
		scaled := PredictTime(s.DurationMinutes*60, s.DistanceMeters, Distance5K)
		best = math.Min(best, scaled)
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}

// EstimateRaceTimes extrapolates 5K, 10K, half and marathon times from the
// samples. It returns nil when no anchor can be derived.
func EstimateRaceTimes(samples []Sample, anchorPace float64, class EffortClass, now time.Time) RaceEstimates {
	base := Base5KSeconds(samples, anchorPace)
	if base <= 0 {
		return nil
	}

	newest := latestSample(samples)
	estimates := make(RaceEstimates, 0, len(PredictionTargets))
	for _, target := range PredictionTargets {
		seconds := PredictTime(base, Distance5K, target.DistanceMeters)
		_, label := CalculateConfidence(class, newest, now, target.DistanceMeters)
		estimates = append(estimates, RaceEstimate{
			Name:           target.Name,
			DistanceMeters: target.DistanceMeters,
			Seconds:        int(math.Round(seconds)),
			Confidence:     label,
		})
	}
	return estimates
}

// CalculateConfidence scores an estimate from 0.0 to 1.0.
// Factors: anchor effort class, distance extrapolation ratio, data recency.
func CalculateConfidence(class EffortClass, newest, now time.Time, targetDistance float64) (float64, string) {
	if class == EffortNone {
		return 0, "low"
	}

	score := 1.0

	switch class {
	case EffortMedium:
		score *= 0.95
	case EffortShort:
		score *= 0.85
	case EffortFallback:
		score *= 0.75
	}

	ratio := targetDistance / Distance5K
	switch {
	case ratio > 4:
		score *= 0.7 // 5K to marathon
	case ratio > 2:
		score *= 0.85
	case ratio > 1.5:
		score *= 0.95
	}

	if !newest.IsZero() {
		days := now.Sub(newest).Hours() / 24
		switch {
		case days > 90:
			score *= 0.75
		case days > 30:
			score *= 0.9
		}
	}

	var label string
	switch {
	case score >= 0.85:
		label = "high"
	case score >= 0.65:
		label = "medium"
	default:
		label = "low"
	}

	return score, label
}

// GetTargetLabel returns a human-readable label for a target distance
func GetTargetLabel(targetName string) string {
	labels := map[string]string{
		"5k":       "5K",
		"10k":      "10K",
		"half":     "Half Marathon",
		"marathon": "Marathon",
	}
	if label, ok := labels[targetName]; ok {
		return label
	}
	return targetName
}

func latestSample(samples []Sample) time.Time {
	var latest time.Time
	for _, s := range samples {
		if s.Date.After(latest) {
			latest = s.Date
		}
	}
	return latest
}
