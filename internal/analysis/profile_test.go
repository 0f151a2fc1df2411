package analysis

import (
	"testing"
	"time"
)

// steadyHistory returns weeks*perWeek 10 km runs at 5:00/km ending near testNow.
func steadyHistory(weeks, perWeek int) []Sample {
	var samples []Sample
	for w := 0; w < weeks; w++ {
		for r := 0; r < perWeek; r++ {
			samples = append(samples, Sample{
				Date:            testNow.AddDate(0, 0, -(7*w + 2*r + 1)),
				DistanceMeters:  10000,
				DurationMinutes: 50,
				AvgHeartRate:    150,
				MaxHeartRate:    180,
				Kind:            "Run",
			})
		}
	}
	return samples
}

func TestBuildProfile(t *testing.T) {
	samples := Aggregate(steadyHistory(8, 3), AggregateOptions{Now: testNow})
	p := BuildProfile(samples, Biometrics{}, testNow)

	if p.SampleCount != 24 {
		t.Errorf("SampleCount = %d, want 24", p.SampleCount)
	}
	if p.SustainedBestPace != 5.0 {
		t.Errorf("SustainedBestPace = %v, want 5.0", p.SustainedBestPace)
	}
	if p.EffortClass != EffortLong {
		t.Errorf("EffortClass = %v, want %v", p.EffortClass, EffortLong)
	}
	if p.AvgHeartRate != 150 {
		t.Errorf("AvgHeartRate = %d, want 150", p.AvgHeartRate)
	}
	if p.FiveKSeconds() != 1500 {
		t.Errorf("5k estimate = %d, want 1500", p.FiveKSeconds())
	}
	if len(p.RaceEstimates) != 4 {
		t.Errorf("RaceEstimates has %d entries, want 4", len(p.RaceEstimates))
	}
	// 25:00 5K, ~30 km/week, ~3 runs/week
	if p.Tier != TierIntermediate {
		t.Errorf("Tier = %v, want %v", p.Tier, TierIntermediate)
	}
	if p.TierSource != TierSourceLocal {
		t.Errorf("TierSource = %q, want %q", p.TierSource, TierSourceLocal)
	}
	// No birth date: observed max only
	if p.SuggestedMaxHeartRate != 180 {
		t.Errorf("SuggestedMaxHeartRate = %d, want 180", p.SuggestedMaxHeartRate)
	}
	if p.Load.CTL <= 0 {
		t.Errorf("Load.CTL = %v, want positive", p.Load.CTL)
	}
}

func TestBuildProfileEmptyHistory(t *testing.T) {
	birth := time.Date(1984, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Analyze(nil, Biometrics{BirthDate: &birth}, AggregateOptions{Now: testNow})

	if p.HasPaceData() {
		t.Errorf("RaceEstimates = %v, want empty", p.RaceEstimates)
	}
	if p.FiveKSeconds() != 0 {
		t.Errorf("FiveKSeconds() = %d, want 0", p.FiveKSeconds())
	}
	if p.Tier != TierBeginner {
		t.Errorf("Tier = %v, want %v", p.Tier, TierBeginner)
	}
	// age 40 on 2024-06-30: round(208 - 28) = 180
	if p.SuggestedMaxHeartRate != 180 {
		t.Errorf("SuggestedMaxHeartRate = %d, want 180", p.SuggestedMaxHeartRate)
	}
}

func TestProfileWithTier(t *testing.T) {
	p := Profile{Tier: TierBeginner, TierSource: TierSourceLocal}

	got := p.WithTier(TierAdvanced, TierSourceRemote)
	if got.Tier != TierAdvanced || got.TierSource != TierSourceRemote {
		t.Errorf("WithTier() = %v/%v, want Advanced/remote", got.Tier, got.TierSource)
	}
	if p.Tier != TierBeginner {
		t.Error("WithTier() modified the receiver")
	}

	if got := p.WithTier("Pro", TierSourceRemote); got.Tier != TierBeginner {
		t.Errorf("WithTier(invalid) = %v, want unchanged", got.Tier)
	}
}
