package tui

import (
	"fmt"
	"math"

	"endurance-planner/internal/config"
)

const kmPerMile = 1.609344

// Units formats distances and paces in the athlete's preferred units
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// FormatKm formats a distance given in kilometers
func (u Units) FormatKm(km float64) string {
	if u.IsMiles() {
		return fmt.Sprintf("%.1f mi", km/kmPerMile)
	}
	return fmt.Sprintf("%.1f km", km)
}

// FormatPace formats a pace given in min/km in the preferred pace unit
func (u Units) FormatPace(minPerKm float64) string {
	if minPerKm <= 0 {
		return "-"
	}
	pace := minPerKm
	if u.cfg.PaceUnit == "min/mi" {
		pace = minPerKm * kmPerMile
	}
	total := int(math.Round(pace * 60))
	return fmt.Sprintf("%d:%02d/%s", total/60, total%60, u.DistanceLabel())
}

// DistanceLabel returns the short unit label ("mi" or "km")
func (u Units) DistanceLabel() string {
	if u.cfg.PaceUnit == "min/mi" {
		return "mi"
	}
	return "km"
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}
