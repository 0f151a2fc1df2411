package analysis

import (
	"math"
	"sort"
	"strings"
	"time"
)

// HRZones holds the heart rate anchors used by the TRIMP model
type HRZones struct {
	RestingHR float64
	MaxHR     float64
	Gender    string
}

// DefaultZones returns sensible defaults if nothing better is known
func DefaultZones() HRZones {
	return HRZones{
		RestingHR: 50,
		MaxHR:     185,
	}
}

// TRIMP calculates Training Impulse (Banister model) for one sample.
// TRIMP = duration (min) * ratio * e^(b * ratio), ratio = heart rate reserve fraction,
// b = 1.92 for men and 1.67 for women.
func TRIMP(s Sample, zones HRZones) float64 {
	if s.AvgHeartRate <= 0 || s.DurationMinutes <= 0 {
		return 0
	}

	hrReserve := zones.MaxHR - zones.RestingHR
	if hrReserve <= 0 {
		return 0
	}

	ratio := (s.AvgHeartRate - zones.RestingHR) / hrReserve
	ratio = math.Max(0, math.Min(1, ratio))

	b := 1.92
	if strings.EqualFold(zones.Gender, "female") {
		b = 1.67
	}

	return s.DurationMinutes * ratio * math.Exp(b*ratio)
}

// DailyLoad represents training load for a single day
type DailyLoad struct {
	Date  time.Time
	TRIMP float64
}

// FitnessMetrics represents CTL/ATL/TSB for a day
type FitnessMetrics struct {
	Date time.Time
	CTL  float64 // Chronic Training Load (42-day EMA) - "Fitness"
	ATL  float64 // Acute Training Load (7-day EMA) - "Fatigue"
	TSB  float64 // Training Stress Balance (CTL - ATL) - "Form"
}

// DailyLoads converts samples to per-sample loads.
func DailyLoads(samples []Sample, zones HRZones) []DailyLoad {
	loads := make([]DailyLoad, 0, len(samples))
	for _, s := range samples {
		if trimp := TRIMP(s, zones); trimp > 0 {
			loads = append(loads, DailyLoad{Date: s.Date, TRIMP: trimp})
		}
	}
	return loads
}

// CalculateFitnessTrend computes CTL/ATL/TSB from daily loads up to the
// given end date (the last load date when end is zero).
func CalculateFitnessTrend(dailyLoads []DailyLoad, end time.Time) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	loads := make([]DailyLoad, len(dailyLoads))
	copy(loads, dailyLoads)
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Date.Before(loads[j].Date)
	})

	// EMA decay constants
	ctlDecay := 2.0 / (42.0 + 1.0)
	atlDecay := 2.0 / (7.0 + 1.0)

	loadMap := make(map[string]float64)
	for _, dl := range loads {
		loadMap[dl.Date.Format("2006-01-02")] += dl.TRIMP
	}

	startDate := loads[0].Date.Truncate(24 * time.Hour)
	endDate := loads[len(loads)-1].Date.Truncate(24 * time.Hour)
	if !end.IsZero() && end.Truncate(24*time.Hour).After(endDate) {
		endDate = end.Truncate(24 * time.Hour)
	}

	var metrics []FitnessMetrics
	var ctl, atl float64
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		trimp := loadMap[d.Format("2006-01-02")]

		ctl += ctlDecay * (trimp - ctl)
		atl += atlDecay * (trimp - atl)

		metrics = append(metrics, FitnessMetrics{
			Date: d,
			CTL:  ctl,
			ATL:  atl,
			TSB:  ctl - atl,
		})
	}

	return metrics
}

// GetCurrentFitness returns the most recent CTL/ATL/TSB values
func GetCurrentFitness(dailyLoads []DailyLoad, now time.Time) FitnessMetrics {
	metrics := CalculateFitnessTrend(dailyLoads, now)
	if len(metrics) == 0 {
		return FitnessMetrics{}
	}
	return metrics[len(metrics)-1]
}

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}
