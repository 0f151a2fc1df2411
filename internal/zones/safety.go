package zones

import (
	"math"

	"endurance-planner/internal/analysis"
)

// PaceFloors are the fastest paces (min/km) a running session type may be
// prescribed at. A prescription faster than its floor is slowed down to it.
type PaceFloors struct {
	Best     float64 `json:"best"`
	TenK     float64 `json:"ten_k"`
	Easy     float64 `json:"easy"`
	Long     float64 `json:"long"`
	Tempo    float64 `json:"tempo"`
	Interval float64 `json:"interval"`
}

// Session kinds understood by Clamp
const (
	PaceEasy     = "easy"
	PaceLong     = "long"
	PaceTempo    = "tempo"
	PaceInterval = "interval"
)

// SafePaces derives the floors from a best 5K-equivalent pace.
func SafePaces(bestPace float64) PaceFloors {
	if bestPace <= 0 {
		return PaceFloors{}
	}
	tenK := analysis.PredictTime(bestPace*5, 5, 10) / 10
	return PaceFloors{
		Best:     bestPace,
		TenK:     tenK,
		Easy:     tenK + 0.5,
		Long:     tenK + 0.4,
		Tempo:    tenK,
		Interval: bestPace,
	}
}

// Clamp slows pace down to the floor for the session kind. Unknown kinds
// and empty floors pass through.
func (f PaceFloors) Clamp(kind string, pace float64) float64 {
	var floor float64
	switch kind {
	case PaceEasy:
		floor = f.Easy
	case PaceLong:
		floor = f.Long
	case PaceTempo:
		floor = f.Tempo
	case PaceInterval:
		floor = f.Interval
	}
	return math.Max(pace, floor)
}
