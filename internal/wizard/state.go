// Package wizard is the plan creation flow: an ordered, conditionally
// branching step graph over the inputs a plan needs.
package wizard

import (
	"strings"
	"time"

	"endurance-planner/internal/analysis"
)

// Defaults used for a fresh state
const (
	DefaultFrequency  = 3
	DefaultWeeks      = 12
	DefaultStartDelay = 7 // days from today
)

// State holds everything collected so far. It is transient.
type State struct {
	Goal         Goal          `json:"goal"`
	Tier         analysis.Tier `json:"tier"`
	TierAdjusted bool          `json:"tier_adjusted"`

	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	WeightKg  float64    `json:"weight_kg,omitempty"`
	FTPWatts  float64    `json:"ftp_watts,omitempty"`

	// EstimatedTimes is keyed by race estimate name ("5k", "10k", "half", "marathon")
	EstimatedTimes map[string]string `json:"estimated_times,omitempty"`
	TimesAdjusted  bool              `json:"times_adjusted"`

	Frequency int            `json:"frequency"`
	Days      []time.Weekday `json:"days"`
	LongDay   *time.Weekday  `json:"long_day,omitempty"`
	StartDate time.Time      `json:"start_date"`
	Weeks     int            `json:"weeks"`

	HasRaceDate bool       `json:"has_race_date"`
	RaceDate    *time.Time `json:"race_date,omitempty"`
	GoalTime    string     `json:"goal_time,omitempty"`

	Health HealthDeclaration `json:"health"`
}

// NewState seeds a state from the athlete's profile and stored biometrics.
func NewState(p analysis.Profile, bio analysis.Biometrics, now time.Time) State {
	y, m, d := now.Date()
	sunday := time.Sunday
	s := State{
		Tier:           p.Tier,
		BirthDate:      bio.BirthDate,
		Gender:         bio.Gender,
		WeightKg:       bio.WeightKg,
		FTPWatts:       bio.FTPWatts,
		EstimatedTimes: make(map[string]string, len(p.RaceEstimates)),
		Frequency:      DefaultFrequency,
		LongDay:        &sunday,
		StartDate:      time.Date(y, m, d+DefaultStartDelay, 0, 0, 0, 0, now.Location()),
		Weeks:          DefaultWeeks,
	}
	if !s.Tier.Valid() {
		s.Tier = analysis.TierBeginner
	}
	for _, e := range p.RaceEstimates {
		s.EstimatedTimes[e.Name] = FormatClock(e.Seconds)
	}
	return s
}

// Biometrics returns the collected athlete attributes.
func (s State) Biometrics() analysis.Biometrics {
	return analysis.Biometrics{
		BirthDate: s.BirthDate,
		Gender:    s.Gender,
		WeightKg:  s.WeightKg,
		FTPWatts:  s.FTPWatts,
	}
}

// PlanName is the display name of the plan the state will produce.
func (s State) PlanName() string {
	return s.Goal.Label() + " plan"
}

// HasDay reports whether d is among the selected days.
func (s State) HasDay(d time.Weekday) bool {
	for _, day := range s.Days {
		if day == d {
			return true
		}
	}
	return false
}

// ParseWeekday accepts full or three-letter English day names.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d, true
		}
	}
	return 0, false
}
