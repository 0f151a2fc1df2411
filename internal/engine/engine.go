// Package engine runs the periodization planner and workout synthesizer
// over a whole plan.
package engine

import (
	"errors"
	"fmt"
	"time"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/periodization"
	"endurance-planner/internal/workout"
	"endurance-planner/internal/zones"
)

// ErrNoTrainingDays is returned when no weekday was selected.
var ErrNoTrainingDays = errors.New("no training days selected")

// Request holds the inputs of one generation. All fields are read-only
// snapshots.
type Request struct {
	Sport      workout.Sport
	Weeks      int
	Start      time.Time
	Profile    analysis.Profile
	Biometrics analysis.Biometrics
	Days       []time.Weekday
	LongDay    *time.Weekday
	Frequency  int
}

// Plan is the generated calendar.
type Plan struct {
	Sport    workout.Sport         `json:"sport"`
	Tier     analysis.Tier         `json:"tier"`
	Weeks    int                   `json:"weeks"`
	Start    time.Time             `json:"start"`
	End      time.Time             `json:"end"`
	Zones    zones.Model           `json:"zones"`
	Floors   zones.PaceFloors      `json:"floors"`
	Phases   []periodization.Phase `json:"phases"`
	Workouts []workout.Workout     `json:"workouts"`
}

// Generate is deterministic: identical requests yield identical plans.
func Generate(req Request) (Plan, error) {
	tier := req.Profile.Tier
	if !tier.Valid() {
		tier = analysis.TierBeginner
	}

	phases, err := periodization.Plan(req.Weeks, tier)
	if err != nil {
		return Plan{}, err
	}
	if len(req.Days) == 0 {
		return Plan{}, ErrNoTrainingDays
	}

	sport := req.Sport
	if sport == "" {
		sport = workout.SportRunning
	}
	start := StartOfDay(req.Start)
	model := zones.ForProfile(sport.ZoneKind(), req.Profile, req.Biometrics)
	if err := model.Validate(); err != nil {
		return Plan{}, fmt.Errorf("zone model: %w", err)
	}

	var floors zones.PaceFloors
	if sport == workout.SportRunning {
		best := req.Profile.SustainedBestPace
		if best <= 0 {
			best = model.Anchor
		}
		floors = zones.SafePaces(best)
	}

	plan := Plan{
		Sport:  sport,
		Tier:   tier,
		Weeks:  req.Weeks,
		Start:  start,
		End:    EndDate(start, req.Weeks),
		Zones:  model,
		Floors: floors,
		Phases: phases,
	}
	for _, phase := range phases {
		week := workout.Synthesize(workout.WeekRequest{
			Sport:     sport,
			Phase:     phase,
			Tier:      tier,
			Zones:     model,
			Floors:    floors,
			Start:     start,
			Days:      req.Days,
			LongDay:   req.LongDay,
			Frequency: req.Frequency,
		})
		plan.Workouts = append(plan.Workouts, week...)
	}
	return plan, nil
}

// StartOfDay drops the clock part of t in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndDate is start + 7*weeks days.
func EndDate(start time.Time, weeks int) time.Time {
	return start.AddDate(0, 0, 7*weeks)
}

// Week returns the workouts of a 1-based plan week.
func (p Plan) Week(n int) []workout.Workout {
	var out []workout.Workout
	for _, w := range p.Workouts {
		if w.Week == n {
			out = append(out, w)
		}
	}
	return out
}

// WeeklyStress returns the scheduled stress of every week, indexed from week 1.
func (p Plan) WeeklyStress() []int {
	totals := make([]int, p.Weeks)
	for _, w := range p.Workouts {
		if w.Week >= 1 && w.Week <= p.Weeks {
			totals[w.Week-1] += w.Stress
		}
	}
	return totals
}
