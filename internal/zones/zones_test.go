package zones

import (
	"math"
	"testing"

	"endurance-planner/internal/analysis"
)

func TestModelsAreMonotonic(t *testing.T) {
	for _, m := range []Model{Power(250), Pace(5.0)} {
		if err := m.Validate(); err != nil {
			t.Errorf("%s model: Validate() = %v", m.Kind, err)
		}
	}

	if got := len(Power(250).Bands); got != 6 {
		t.Errorf("Power() has %d bands, want 6", got)
	}
	if got := len(Pace(5.0).Bands); got != 5 {
		t.Errorf("Pace() has %d bands, want 5", got)
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	m := Model{Kind: KindPower, Anchor: 200, Bands: []Band{
		{Name: "Z1", LowPct: 0, HighPct: 0.6},
		{Name: "Z2", LowPct: 0.55, HighPct: 0.75},
	}}
	if err := m.Validate(); err == nil {
		t.Error("Validate() should reject overlapping bands")
	}
}

func TestModelsDoNotShareBands(t *testing.T) {
	a := Power(200)
	a.Bands[0].HighPct = 0.99
	if Power(200).Bands[0].HighPct != 0.55 {
		t.Error("Power() returned a shared band slice")
	}
}

func TestPowerRange(t *testing.T) {
	m := Power(200)

	low, high, ok := m.Range("Z4")
	if !ok || low != 182 || high != 210 {
		t.Errorf("Range(Z4) = %v, %v, %v, want 182, 210, true", low, high, ok)
	}
	if _, _, ok := m.Range("Z7"); ok {
		t.Error("Range(Z7) should not exist")
	}
	if got := m.Describe("Z2"); got != "Z2 112-150 W" {
		t.Errorf("Describe(Z2) = %q", got)
	}
}

func TestPaceRange(t *testing.T) {
	m := Pace(5.0)

	slow, fast, ok := m.Range("Z5")
	if !ok {
		t.Fatal("Range(Z5) not found")
	}
	if slow != 5.0 {
		t.Errorf("Z5 slow = %v, want 5.0", slow)
	}
	if math.Abs(fast-5.0/1.1) > 1e-9 {
		t.Errorf("Z5 fast = %v, want %v", fast, 5.0/1.1)
	}
	if slow <= fast {
		t.Errorf("pace range should run slow to fast, got %v-%v", slow, fast)
	}
}

func TestFormatPace(t *testing.T) {
	tests := []struct {
		pace float64
		want string
	}{
		{5.0, "5:00"},
		{5.5, "5:30"},
		{4.999, "5:00"},
		{0, "-"},
	}
	for _, tt := range tests {
		if got := FormatPace(tt.pace); got != tt.want {
			t.Errorf("FormatPace(%v) = %q, want %q", tt.pace, got, tt.want)
		}
	}
}

func TestEstimateFTP(t *testing.T) {
	tests := []struct {
		weight float64
		tier   analysis.Tier
		want   float64
	}{
		{70, analysis.TierBeginner, 140},
		{0, analysis.TierIntermediate, 210},
		{60, analysis.TierAdvanced, 210},
		{75, analysis.TierElite, 315},
		{80, "", 160},
	}
	for _, tt := range tests {
		if got := EstimateFTP(tt.weight, tt.tier); got != tt.want {
			t.Errorf("EstimateFTP(%v, %v) = %v, want %v", tt.weight, tt.tier, got, tt.want)
		}
	}
}

func TestForProfile(t *testing.T) {
	withHistory := analysis.Profile{
		Tier:          analysis.TierIntermediate,
		RaceEstimates: analysis.RaceEstimates{{Name: "5k", DistanceMeters: 5000, Seconds: 1500}},
	}

	t.Run("pace from 5k estimate", func(t *testing.T) {
		m := ForProfile(KindPace, withHistory, analysis.Biometrics{})
		if m.Anchor != 5.0 || m.Source != SourceHistory {
			t.Errorf("ForProfile() = %v (%s), want 5.0 (history)", m.Anchor, m.Source)
		}
	})

	t.Run("pace falls back to tier default", func(t *testing.T) {
		m := ForProfile(KindPace, analysis.Profile{Tier: analysis.TierAdvanced}, analysis.Biometrics{})
		if m.Anchor != 5.0 || m.Source != SourceTierDefault {
			t.Errorf("ForProfile() = %v (%s), want 5.0 (tier_default)", m.Anchor, m.Source)
		}
	})

	t.Run("power uses athlete FTP", func(t *testing.T) {
		m := ForProfile(KindPower, withHistory, analysis.Biometrics{FTPWatts: 260})
		if m.Anchor != 260 || m.Source != SourceAthlete {
			t.Errorf("ForProfile() = %v (%s), want 260 (athlete)", m.Anchor, m.Source)
		}
	})

	t.Run("power estimated from weight", func(t *testing.T) {
		m := ForProfile(KindPower, withHistory, analysis.Biometrics{WeightKg: 70})
		if m.Anchor != 196 || m.Source != SourceTierDefault {
			t.Errorf("ForProfile() = %v (%s), want 196 (tier_default)", m.Anchor, m.Source)
		}
	})
}

func TestSafePaces(t *testing.T) {
	f := SafePaces(5.0)

	// 10K pace from a 25:00 5K
	if math.Abs(f.TenK-5.2123) > 0.001 {
		t.Errorf("TenK = %v, want ~5.2123", f.TenK)
	}

	tests := []struct {
		kind string
		pace float64
		want float64
	}{
		{PaceEasy, 5.0, f.TenK + 0.5},
		{PaceEasy, 7.0, 7.0},
		{PaceLong, 5.3, f.TenK + 0.4},
		{PaceTempo, 4.9, f.TenK},
		{PaceInterval, 4.5, 5.0},
		{PaceInterval, 5.1, 5.1},
		{"strides", 3.0, 3.0},
	}
	for _, tt := range tests {
		if got := f.Clamp(tt.kind, tt.pace); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Clamp(%s, %v) = %v, want %v", tt.kind, tt.pace, got, tt.want)
		}
	}

	if got := SafePaces(0).Clamp(PaceEasy, 4.0); got != 4.0 {
		t.Errorf("empty floors should pass through, got %v", got)
	}
}
