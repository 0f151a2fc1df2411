package analysis

import (
	"time"
)

// Tier sources recorded on a profile
const (
	TierSourceLocal  = "local"
	TierSourceRemote = "remote"
	TierSourceCohort = "cohort"
	TierSourceSelf   = "self_reported"
)

// Profile is the performance summary derived from aggregated samples.
// It is recomputed on demand and only ever cached.
type Profile struct {
	SustainedBestPace     float64        `json:"sustained_best_pace"`
	EffortClass           EffortClass    `json:"effort_class"`
	AveragePace           float64        `json:"average_pace"`
	AvgHeartRate          int            `json:"avg_heart_rate"`
	ObservedMaxHeartRate  int            `json:"observed_max_heart_rate"`
	WeeklyFrequency       float64        `json:"weekly_frequency"`
	WeeklyDistanceKm      float64        `json:"weekly_distance_km"`
	StatsWeeks            int            `json:"stats_weeks"`
	RaceEstimates         RaceEstimates  `json:"race_estimates"`
	Tier                  Tier           `json:"tier"`
	TierSource            string         `json:"tier_source"`
	SuggestedMaxHeartRate int            `json:"suggested_max_heart_rate"`
	Load                  FitnessMetrics `json:"load"`
	SampleCount           int            `json:"sample_count"`
	ComputedAt            time.Time      `json:"computed_at"`
}

// HasPaceData reports whether the profile could anchor race estimates.
func (p Profile) HasPaceData() bool {
	return len(p.RaceEstimates) > 0
}

// FiveKSeconds returns the 5K estimate or 0 when missing.
func (p Profile) FiveKSeconds() int {
	s, _ := p.RaceEstimates.Seconds("5k")
	return s
}

// WithTier returns a copy of the profile with an externally supplied tier.
func (p Profile) WithTier(t Tier, source string) Profile {
	if !t.Valid() {
		return p
	}
	p.Tier = t
	p.TierSource = source
	return p
}

// Analyze aggregates raw history and builds a profile from it.
func Analyze(raw []Sample, bio Biometrics, opts AggregateOptions) Profile {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
		opts.Now = now
	}
	return BuildProfile(Aggregate(raw, opts), bio, now)
}

// BuildProfile derives a profile from already aggregated samples. The tier
// comes from the local decision tree; callers may override it with
// WithTier when a classification service answers.
func BuildProfile(samples []Sample, bio Biometrics, now time.Time) Profile {
	p := Profile{
		SampleCount: len(samples),
		ComputedAt:  now,
		TierSource:  TierSourceLocal,
	}

	p.AveragePace = roundTo(AveragePace(samples), 2)
	p.AvgHeartRate = AverageHeartRate(samples)
	p.ObservedMaxHeartRate = ObservedMaxHeartRate(samples)

	best, class, ok := SustainedBestPace(samples)
	if ok {
		p.SustainedBestPace = roundTo(best, 2)
		p.EffortClass = class
	}

	stats := ComputeWeeklyStats(samples)
	p.WeeklyFrequency = stats.Frequency
	p.WeeklyDistanceKm = stats.DistanceKm
	p.StatsWeeks = stats.Weeks

	anchor := best
	if !ok {
		anchor = AveragePace(samples)
	}
	p.RaceEstimates = EstimateRaceTimes(samples, anchor, class, now)

	p.Tier = ClassifyTier(p.WeeklyDistanceKm, p.WeeklyFrequency, float64(p.FiveKSeconds()))
	p.SuggestedMaxHeartRate = SuggestMaxHR(bio, p.ObservedMaxHeartRate, now)

	zones := DefaultZones()
	zones.Gender = bio.Gender
	if p.SuggestedMaxHeartRate > 0 {
		zones.MaxHR = float64(p.SuggestedMaxHeartRate)
	}
	p.Load = GetCurrentFitness(DailyLoads(samples, zones), now)

	return p
}
