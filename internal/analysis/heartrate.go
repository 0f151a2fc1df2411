package analysis

import (
	"math"
	"time"
)

// SuggestMaxHR combines the Tanaka estimate (208 - 0.7*age) with the
// highest heart rate seen in history. The suggestion is never below the
// observed value. Without a birth date only the observed value is used.
func SuggestMaxHR(bio Biometrics, observed int, now time.Time) int {
	age, ok := bio.Age(now)
	if !ok {
		return observed
	}
	tanaka := int(math.Round(208 - 0.7*float64(age)))
	if observed > tanaka {
		return observed
	}
	return tanaka
}
