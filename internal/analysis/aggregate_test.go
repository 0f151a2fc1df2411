package analysis

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func run(daysAgo int, meters, minutes float64) Sample {
	return Sample{
		Date:            testNow.AddDate(0, 0, -daysAgo),
		DistanceMeters:  meters,
		DurationMinutes: minutes,
		Kind:            "Run",
	}
}

func TestAggregate(t *testing.T) {
	ride := run(3, 30000, 60)
	ride.Kind = "Ride"

	raw := []Sample{
		run(2, 5000, 25),   // valid, 5:00/km
		run(10, 6000, 33),  // valid, 5:30/km
		ride,               // wrong kind
		run(4, 5000, 10),   // 2:00/km, too fast
		run(5, 1000, 13),   // 13:00/km, too slow
		run(6, 0, 30),      // no distance
		run(7, 5000, 0),    // no duration
		run(200, 5000, 25), // outside the lookback window
	}

	got := Aggregate(raw, AggregateOptions{Now: testNow})
	if len(got) != 2 {
		t.Fatalf("Aggregate() returned %d samples, want 2", len(got))
	}

	// Oldest first
	if !got[0].Date.Before(got[1].Date) {
		t.Errorf("Aggregate() not sorted by date: %v then %v", got[0].Date, got[1].Date)
	}
	if got[1].PaceMinPerKm != 5.0 {
		t.Errorf("Aggregate() pace = %v, want 5.0", got[1].PaceMinPerKm)
	}

	// The caller's slice is untouched
	if raw[0].PaceMinPerKm != 0 {
		t.Errorf("Aggregate() mutated input pace to %v", raw[0].PaceMinPerKm)
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil, AggregateOptions{Now: testNow})
	if got == nil || len(got) != 0 {
		t.Errorf("Aggregate(nil) = %v, want empty slice", got)
	}
}

func TestAggregateCustomKind(t *testing.T) {
	ride := run(3, 30000, 60)
	ride.Kind = "VirtualRide"

	got := Aggregate([]Sample{ride, run(2, 5000, 25)}, AggregateOptions{
		Now:     testNow,
		Kind:    IsRiding,
		AnyPace: true,
	})
	if len(got) != 1 || got[0].Kind != "VirtualRide" {
		t.Errorf("Aggregate(rides) = %v, want the single ride", got)
	}
}

func TestSustainedBestPace(t *testing.T) {
	tests := []struct {
		name      string
		samples   []Sample
		wantPace  float64
		wantClass EffortClass
		wantOK    bool
	}{
		{
			name: "long efforts win over faster medium efforts",
			samples: []Sample{
				run(1, 6000, 30),   // 5:00
				run(2, 3500, 16),   // 4:34, faster but medium class
				run(3, 10000, 55),  // 5:30
			},
			wantPace:  5.0,
			wantClass: EffortLong,
			wantOK:    true,
		},
		{
			name: "medium class when no long effort",
			samples: []Sample{
				run(1, 3200, 15), // 4.6875
				run(2, 2000, 9),  // short class, ignored
			},
			wantPace:  4.6875,
			wantClass: EffortMedium,
			wantOK:    true,
		},
		{
			name: "short class",
			samples: []Sample{
				run(1, 1600, 8.5),
			},
			wantPace:  5.3125,
			wantClass: EffortShort,
			wantOK:    true,
		},
		{
			name: "fallback to median of three fastest",
			samples: []Sample{
				run(1, 1000, 5),
				run(2, 1000, 4.5),
				run(3, 1000, 6),
				run(4, 1000, 7),
			},
			wantPace:  5.0,
			wantClass: EffortFallback,
			wantOK:    true,
		},
		{
			name:      "no samples",
			samples:   nil,
			wantClass: EffortNone,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pace, class, ok := SustainedBestPace(tt.samples)
			if ok != tt.wantOK {
				t.Fatalf("SustainedBestPace() ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(pace-tt.wantPace) > 0.0001 {
				t.Errorf("SustainedBestPace() pace = %v, want %v", pace, tt.wantPace)
			}
			if class != tt.wantClass {
				t.Errorf("SustainedBestPace() class = %v, want %v", class, tt.wantClass)
			}
		})
	}
}

func TestComputeWeeklyStats(t *testing.T) {
	monday := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) // ISO 2024-W01

	var samples []Sample
	for week := 0; week < 10; week++ {
		base := monday.AddDate(0, 0, 7*week)
		samples = append(samples,
			Sample{Date: base, DistanceMeters: 5000, DurationMinutes: 25, Kind: "Run"},
			Sample{Date: base.AddDate(0, 0, 2), DistanceMeters: 5000, DurationMinutes: 25, Kind: "Run"},
		)
	}
	// One extra session in the most recent week
	samples = append(samples, Sample{
		Date: monday.AddDate(0, 0, 7*9+4), DistanceMeters: 5000, DurationMinutes: 25, Kind: "Run",
	})

	got := ComputeWeeklyStats(samples)

	if got.Weeks != StatsWeeks {
		t.Errorf("ComputeWeeklyStats().Weeks = %d, want %d", got.Weeks, StatsWeeks)
	}
	// 8 weeks: 7*2 + 3 = 17 sessions, 85 km
	if got.Frequency != 2.13 {
		t.Errorf("ComputeWeeklyStats().Frequency = %v, want 2.13", got.Frequency)
	}
	if got.DistanceKm != 10.6 {
		t.Errorf("ComputeWeeklyStats().DistanceKm = %v, want 10.6", got.DistanceKm)
	}
}

func TestComputeWeeklyStatsEmpty(t *testing.T) {
	got := ComputeWeeklyStats(nil)
	if got != (WeeklyStats{}) {
		t.Errorf("ComputeWeeklyStats(nil) = %+v, want zero value", got)
	}
}

func TestISOWeekKey(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-W01"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		{time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), "2020-W53"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := ISOWeekKey(tt.date); got != tt.want {
				t.Errorf("ISOWeekKey(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestAverages(t *testing.T) {
	a := run(1, 5000, 25)
	a.AvgHeartRate = 150
	a.MaxHeartRate = 182
	b := run(2, 5000, 30)
	b.AvgHeartRate = 141
	b.MaxHeartRate = 176
	c := run(3, 5000, 35) // no HR

	samples := []Sample{a, b, c}

	if got := AveragePace(samples); math.Abs(got-6.0) > 0.0001 {
		t.Errorf("AveragePace() = %v, want 6.0", got)
	}
	if got := AverageHeartRate(samples); got != 146 {
		t.Errorf("AverageHeartRate() = %v, want 146", got)
	}
	if got := ObservedMaxHeartRate(samples); got != 182 {
		t.Errorf("ObservedMaxHeartRate() = %v, want 182", got)
	}
}
