package analysis

import (
	"strings"
	"time"
)

// Sample is one historical activity as seen by the engine.
// Samples are never mutated once handed to the analysis functions.
type Sample struct {
	Date            time.Time
	DistanceMeters  float64
	DurationMinutes float64
	PaceMinPerKm    float64 // 0 when the source did not report one
	AvgHeartRate    float64 // 0 when missing
	MaxHeartRate    float64 // 0 when missing
	Kind            string  // provider activity type, e.g. "Run", "TrailRun", "Ride"
}

// DistanceKm returns the distance in kilometers.
func (s Sample) DistanceKm() float64 {
	return s.DistanceMeters / 1000
}

// Pace returns the reported pace, deriving it from distance and duration
// when the provider left it empty.
func (s Sample) Pace() float64 {
	if s.PaceMinPerKm > 0 {
		return s.PaceMinPerKm
	}
	if s.DistanceMeters <= 0 || s.DurationMinutes <= 0 {
		return 0
	}
	return s.DurationMinutes / s.DistanceKm()
}

// Biometrics holds the athlete attributes the profiler and zone model use.
type Biometrics struct {
	BirthDate *time.Time
	Gender    string
	WeightKg  float64
	FTPWatts  float64
}

// Age returns the athlete's age in whole years on the given date,
// or 0 and false when no birth date is known.
func (b Biometrics) Age(on time.Time) (int, bool) {
	if b.BirthDate == nil || b.BirthDate.IsZero() {
		return 0, false
	}
	birth := *b.BirthDate
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

// IsRunning reports whether an activity kind is running-like.
func IsRunning(kind string) bool {
	return strings.Contains(strings.ToLower(kind), "run")
}

// IsRiding reports whether an activity kind is cycling-like.
func IsRiding(kind string) bool {
	k := strings.ToLower(kind)
	return strings.Contains(k, "ride") || strings.Contains(k, "cycl")
}
