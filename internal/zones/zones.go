// Package zones builds the pace and power intensity models that workouts
// are prescribed against.
package zones

import (
	"errors"
	"fmt"
	"math"

	"endurance-planner/internal/analysis"
)

// Kind distinguishes running pace zones from cycling power zones.
type Kind string

const (
	KindPace  Kind = "pace"
	KindPower Kind = "power"
)

// Where the anchor of a model came from
const (
	SourceHistory     = "history"
	SourceAthlete     = "athlete"
	SourceTierDefault = "tier_default"
)

// ErrNotMonotonic is returned by Validate for overlapping or unordered bands.
var ErrNotMonotonic = errors.New("zone boundaries are not strictly increasing")

// Band is one intensity zone expressed as fractions of the anchor.
// For power the fractions multiply FTP; for pace they multiply anchor speed.
type Band struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	LowPct  float64 `json:"low_pct"`
	HighPct float64 `json:"high_pct"`
}

// Model is an ordered set of bands tied to one scalar anchor: FTP in watts
// for power models, race pace in min/km for pace models.
type Model struct {
	Kind   Kind    `json:"kind"`
	Anchor float64 `json:"anchor"`
	Source string  `json:"source"`
	Bands  []Band  `json:"bands"`
}

var powerBands = []Band{
	{"Z1", "Active recovery", 0, 0.55},
	{"Z2", "Endurance", 0.56, 0.75},
	{"Z3", "Tempo", 0.76, 0.90},
	{"Z4", "Threshold", 0.91, 1.05},
	{"Z5", "VO2max", 1.06, 1.20},
	{"Z6", "Anaerobic", 1.21, 1.50},
}

var paceBands = []Band{
	{"Z1", "Recovery", 0.60, 0.75},
	{"Z2", "Aerobic", 0.76, 0.85},
	{"Z3", "Tempo", 0.86, 0.92},
	{"Z4", "Threshold", 0.93, 0.99},
	{"Z5", "VO2max", 1.00, 1.10},
}

// Power returns the six-band cycling model anchored at ftp watts.
func Power(ftp float64) Model {
	return Model{Kind: KindPower, Anchor: ftp, Bands: append([]Band(nil), powerBands...)}
}

// Pace returns the five-band running model anchored at a race pace in min/km.
func Pace(anchorPace float64) Model {
	return Model{Kind: KindPace, Anchor: anchorPace, Bands: append([]Band(nil), paceBands...)}
}

// Band looks up a zone by name ("Z1".."Z6").
func (m Model) Band(name string) (Band, bool) {
	for _, b := range m.Bands {
		if b.Name == name {
			return b, true
		}
	}
	return Band{}, false
}

// Range converts a zone into absolute targets. Power zones return watts
// (low, high). Pace zones return min/km (slow, fast).
func (m Model) Range(name string) (float64, float64, bool) {
	b, ok := m.Band(name)
	if !ok || m.Anchor <= 0 {
		return 0, 0, false
	}
	if m.Kind == KindPower {
		return math.Round(b.LowPct * m.Anchor), math.Round(b.HighPct * m.Anchor), true
	}
	return m.Anchor / b.LowPct, m.Anchor / b.HighPct, true
}

// Describe renders a zone target for workout descriptions.
func (m Model) Describe(name string) string {
	low, high, ok := m.Range(name)
	if !ok {
		return name
	}
	if m.Kind == KindPower {
		return fmt.Sprintf("%s %.0f-%.0f W", name, low, high)
	}
	return fmt.Sprintf("%s %s-%s/km", name, FormatPace(low), FormatPace(high))
}

// Validate checks that every band is non-empty and strictly above the previous one.
func (m Model) Validate() error {
	for i, b := range m.Bands {
		if b.HighPct <= b.LowPct {
			return fmt.Errorf("%s: %w", b.Name, ErrNotMonotonic)
		}
		if i > 0 && b.LowPct <= m.Bands[i-1].HighPct {
			return fmt.Errorf("%s: %w", b.Name, ErrNotMonotonic)
		}
	}
	return nil
}

// FormatPace formats min/km as M:SS.
func FormatPace(minPerKm float64) string {
	if minPerKm <= 0 || math.IsInf(minPerKm, 0) {
		return "-"
	}
	total := int(math.Round(minPerKm * 60))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Watts per kilogram used to estimate FTP when the athlete supplied none.
var ftpPerKg = map[analysis.Tier]float64{
	analysis.TierBeginner:     2.0,
	analysis.TierIntermediate: 2.8,
	analysis.TierAdvanced:     3.5,
	analysis.TierElite:        4.2,
}

// DefaultWeightKg is assumed when no body weight is on file.
const DefaultWeightKg = 75

// EstimateFTP returns a tier-typical FTP for the given body weight.
func EstimateFTP(weightKg float64, tier analysis.Tier) float64 {
	if weightKg <= 0 {
		weightKg = DefaultWeightKg
	}
	wkg, ok := ftpPerKg[tier]
	if !ok {
		wkg = ftpPerKg[analysis.TierBeginner]
	}
	return math.Round(weightKg * wkg)
}

// DefaultAnchorPace is the tier-typical 5K pace (min/km) used without history.
func DefaultAnchorPace(tier analysis.Tier) float64 {
	switch tier {
	case analysis.TierElite:
		return 4.0
	case analysis.TierAdvanced:
		return 5.0
	case analysis.TierIntermediate:
		return 6.0
	default:
		return 7.0
	}
}

// ForProfile picks the anchor for a model of the given kind. Power models
// use the athlete's FTP, falling back to a weight and tier estimate. Pace
// models use the 5K estimate, then the sustained best pace, then the tier
// default.
func ForProfile(kind Kind, p analysis.Profile, bio analysis.Biometrics) Model {
	if kind == KindPower {
		if bio.FTPWatts > 0 {
			m := Power(bio.FTPWatts)
			m.Source = SourceAthlete
			return m
		}
		m := Power(EstimateFTP(bio.WeightKg, p.Tier))
		m.Source = SourceTierDefault
		return m
	}

	if s := p.FiveKSeconds(); s > 0 {
		m := Pace(float64(s) / 60 / 5)
		m.Source = SourceHistory
		return m
	}
	if p.SustainedBestPace > 0 {
		m := Pace(p.SustainedBestPace)
		m.Source = SourceHistory
		return m
	}
	m := Pace(DefaultAnchorPace(p.Tier))
	m.Source = SourceTierDefault
	return m
}
