package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// DefaultLookbackDays is the history window used when none is given.
	DefaultLookbackDays = 180

	// Physiologically plausible running pace range (min/km).
	MinValidPace = 2.5
	MaxValidPace = 12.0

	// StatsWeeks is how many populated ISO weeks feed the weekly averages.
	StatsWeeks = 8
)

// EffortClass ranks how much confidence a sample's pace deserves as a
// sustained-effort anchor.
type EffortClass int

const (
	EffortNone     EffortClass = iota
	EffortFallback             // median of the fastest samples, no threshold met
	EffortShort                // >= 1500m and >= 8 min
	EffortMedium               // >= 3000m and >= 8 min
	EffortLong                 // >= 5000m and >= 10 min
)

// String returns a short label for the effort class.
func (c EffortClass) String() string {
	switch c {
	case EffortLong:
		return "5k+"
	case EffortMedium:
		return "3k+"
	case EffortShort:
		return "1.5k+"
	case EffortFallback:
		return "top-3 median"
	default:
		return "none"
	}
}

// sustainedThresholds are checked in order; the first class with data wins.
var sustainedThresholds = []struct {
	class      EffortClass
	minMeters  float64
	minMinutes float64
}{
	{EffortLong, 5000, 10},
	{EffortMedium, 3000, 8},
	{EffortShort, 1500, 8},
}

// AggregateOptions controls which raw samples survive aggregation.
type AggregateOptions struct {
	Now          time.Time
	LookbackDays int
	Kind         func(kind string) bool
	// AnyPace disables the running pace plausibility check (used for rides).
	AnyPace bool
}

// ValidPace reports whether a running pace is plausible.
func ValidPace(pace float64) bool {
	return !math.IsNaN(pace) && pace >= MinValidPace && pace <= MaxValidPace
}

// Aggregate filters and normalizes raw samples. Returned samples carry a
// computed pace and are sorted oldest first. It never fails: an empty
// history yields an empty slice.
func Aggregate(raw []Sample, opts AggregateOptions) []Sample {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = DefaultLookbackDays
	}
	kind := opts.Kind
	if kind == nil {
		kind = IsRunning
	}
	since := now.AddDate(0, 0, -lookback)

	out := make([]Sample, 0, len(raw))
	for _, s := range raw {
		if s.Date.Before(since) {
			continue
		}
		if !kind(s.Kind) {
			continue
		}
		if s.DistanceMeters <= 0 || s.DurationMinutes <= 0 {
			continue
		}
		pace := s.Pace()
		if !opts.AnyPace && !ValidPace(pace) {
			continue
		}
		s.PaceMinPerKm = pace
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// SustainedBestPace picks the lowest pace from the highest-confidence
// effort class that has data. When no sample meets any threshold it falls
// back to the median of the three fastest paces.
func SustainedBestPace(samples []Sample) (float64, EffortClass, bool) {
	for _, th := range sustainedThresholds {
		best := math.Inf(1)
		for _, s := range samples {
			if s.DistanceMeters >= th.minMeters && s.DurationMinutes >= th.minMinutes {
				best = math.Min(best, s.Pace())
			}
		}
		if !math.IsInf(best, 1) {
			return best, th.class, true
		}
	}

	paces := make([]float64, 0, len(samples))
	for _, s := range samples {
		if p := s.Pace(); p > 0 {
			paces = append(paces, p)
		}
	}
	if len(paces) == 0 {
		return 0, EffortNone, false
	}
	sort.Float64s(paces)
	if len(paces) > 3 {
		paces = paces[:3]
	}
	return median(paces), EffortFallback, true
}

// AveragePace returns the mean pace of the samples, or 0 when empty.
func AveragePace(samples []Sample) float64 {
	var sum float64
	var n int
	for _, s := range samples {
		if p := s.Pace(); p > 0 {
			sum += p
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// AverageHeartRate returns the rounded mean of the samples that report one.
func AverageHeartRate(samples []Sample) int {
	var sum float64
	var n int
	for _, s := range samples {
		if s.AvgHeartRate > 0 {
			sum += s.AvgHeartRate
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// ObservedMaxHeartRate returns the highest max heart rate in the samples.
func ObservedMaxHeartRate(samples []Sample) int {
	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, s.MaxHeartRate)
	}
	return int(math.Round(peak))
}

// WeeklyStats summarizes training volume over recent ISO weeks.
type WeeklyStats struct {
	Frequency  float64 // sessions per week, 2 decimals
	DistanceKm float64 // km per week, 1 decimal
	Weeks      int     // populated weeks used
}

// ComputeWeeklyStats groups samples by ISO week and averages the most
// recent StatsWeeks populated weeks.
func ComputeWeeklyStats(samples []Sample) WeeklyStats {
	type bucket struct {
		count int
		km    float64
	}
	buckets := make(map[string]*bucket)
	for _, s := range samples {
		key := ISOWeekKey(s.Date)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		b.km += s.DistanceKm()
	}
	if len(buckets) == 0 {
		return WeeklyStats{}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if len(keys) > StatsWeeks {
		keys = keys[:StatsWeeks]
	}

	var sessions int
	var km float64
	for _, k := range keys {
		sessions += buckets[k].count
		km += buckets[k].km
	}
	n := float64(len(keys))
	return WeeklyStats{
		Frequency:  roundTo(float64(sessions)/n, 2),
		DistanceKm: roundTo(km/n, 1),
		Weeks:      len(keys),
	}
}

// ISOWeekKey formats the ISO year and week of t as "2024-W01".
func ISOWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
