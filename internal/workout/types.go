// Package workout turns one planned week into dated, structured sessions.
package workout

import (
	"fmt"
	"strings"
	"time"

	"endurance-planner/internal/zones"
)

// Sport selects the template library and zone kind.
type Sport string

const (
	SportRunning Sport = "running"
	SportCycling Sport = "cycling"
)

// ZoneKind returns the zone model kind a sport is prescribed in.
func (s Sport) ZoneKind() zones.Kind {
	if s == SportCycling {
		return zones.KindPower
	}
	return zones.KindPace
}

// ParseSport accepts "running"/"run" and "cycling"/"ride"/"bike".
func ParseSport(s string) (Sport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running", "run":
		return SportRunning, nil
	case "cycling", "ride", "bike":
		return SportCycling, nil
	}
	return "", fmt.Errorf("unknown sport %q", s)
}

// SegmentKind is the role of a block inside a session.
type SegmentKind string

const (
	SegmentWarmup   SegmentKind = "warmup"
	SegmentSteady   SegmentKind = "steady"
	SegmentInterval SegmentKind = "interval"
	SegmentCooldown SegmentKind = "cooldown"
)

// Segment is one block of a session. Interval segments repeat Minutes
// Repeats times with RestMinutes easy between repeats.
type Segment struct {
	Kind        SegmentKind `json:"kind"`
	Minutes     int         `json:"minutes"`
	Zone        string      `json:"zone"`
	Intensity   float64     `json:"intensity,omitempty"` // fraction of the anchor, 0 = zone target
	Repeats     int         `json:"repeats,omitempty"`
	RestMinutes int         `json:"rest_minutes,omitempty"`
	Target      string      `json:"target,omitempty"`
	Note        string      `json:"note,omitempty"`
}

// TotalMinutes includes the rests between repeats but not after the last.
func (s Segment) TotalMinutes() int {
	if s.Kind == SegmentInterval && s.Repeats > 1 {
		return s.Minutes*s.Repeats + s.RestMinutes*(s.Repeats-1)
	}
	return s.Minutes
}

// Type names a template.
type Type string

// Cycling templates
const (
	TypeRecovery    Type = "recovery"
	TypeEndurance   Type = "endurance"
	TypeSweetSpot   Type = "sweet_spot"
	TypeThreshold   Type = "threshold"
	TypeVO2Max      Type = "vo2max"
	TypeOverUnder   Type = "over_under"
	TypeSprint      Type = "sprint"
	TypeHighCadence Type = "high_cadence"
	TypeLowCadence  Type = "low_cadence_strength"
	TypeLongRide    Type = "long_ride"
	TypeEventSim    Type = "event_simulation"
)

// Running templates
const (
	TypeRecoveryRun Type = "recovery_run"
	TypeEasy        Type = "easy"
	TypeLongRun     Type = "long_run"
	TypeTempo       Type = "tempo"
	TypeIntervals   Type = "intervals"
	TypeHillRepeats Type = "hill_repeats"
	TypeRacePace    Type = "race_pace"
	TypeStrides     Type = "strides"
)

// Template is a session shape before it is dated.
type Template struct {
	Type          Type      `json:"type"`
	Name          string    `json:"name"`
	Segments      []Segment `json:"segments"`
	StressPerHour float64   `json:"stress_per_hour"`
	Long          bool      `json:"long,omitempty"`
	Quality       bool      `json:"quality,omitempty"`
}

// TotalMinutes sums every segment.
func (t Template) TotalMinutes() int {
	var total int
	for _, s := range t.Segments {
		total += s.TotalMinutes()
	}
	return total
}

// Stress is StressPerHour prorated over the session length.
func (t Template) Stress() int {
	return roundInt(t.StressPerHour / 60 * float64(t.TotalMinutes()))
}

// Filler reports whether the session may be stretched or shortened to
// approach the weekly stress target.
func (t Template) Filler() bool {
	return t.Type == TypeEndurance || t.Type == TypeEasy
}

// Workout is a dated session belonging to one plan.
type Workout struct {
	Date            time.Time `json:"date"`
	Week            int       `json:"week"`
	Type            Type      `json:"type"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	TargetZone      string    `json:"target_zone"`
	Stress          int       `json:"stress"`
	Segments        []Segment `json:"segments"`
}

// TotalStress sums the stress of a set of workouts.
func TotalStress(workouts []Workout) int {
	var total int
	for _, w := range workouts {
		total += w.Stress
	}
	return total
}
