package classifier

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"endurance-planner/internal/analysis"
)

// Cohort clustering parameters.
const (
	cohortK       = 4
	cohortMaxIter = 50

	// sustained effort threshold for the speed feature
	cohortMinMeters  = 3000
	cohortMinMinutes = 8
)

// compositeWeights rank clusters: weekly km, frequency, minutes, speed.
var compositeWeights = [4]float64{0.4, 0.2, 0.15, 0.25}

// CohortSource lists every athlete's samples since a date.
type CohortSource interface {
	SamplesByAthlete(ctx context.Context, since time.Time) (map[string][]analysis.Sample, error)
}

// Cohort ranks an athlete against everyone else in the local store by
// clustering weekly training features into four groups.
type Cohort struct {
	Source CohortSource
	Now    func() time.Time
}

// NewCohort returns a cohort provider over src.
func NewCohort(src CohortSource) *Cohort {
	return &Cohort{Source: src, Now: time.Now}
}

func (c *Cohort) Name() string { return analysis.TierSourceCohort }

func (c *Cohort) Classify(ctx context.Context, athleteID string, lookbackDays int) (analysis.Tier, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	byAthlete, err := c.Source.SamplesByAthlete(ctx, now.AddDate(0, 0, -lookbackDays))
	if err != nil {
		return "", fmt.Errorf("loading cohort: %w", err)
	}

	ids, rows := cohortFeatures(byAthlete, lookbackDays)
	if len(rows) < cohortK {
		return "", ErrUnavailable
	}
	target := sort.SearchStrings(ids, athleteID)
	if target == len(ids) || ids[target] != athleteID {
		return "", ErrUnavailable
	}

	standardize(rows)
	centroids, labels := kmeans(rows, cohortK, cohortMaxIter)
	return rankClusters(centroids)[labels[target]], nil
}

// cohortFeatures builds one row per athlete with running activity, sorted
// by athlete id so clustering is deterministic.
func cohortFeatures(byAthlete map[string][]analysis.Sample, lookbackDays int) ([]string, [][]float64) {
	weeks := float64(lookbackDays) / 7

	ids := make([]string, 0, len(byAthlete))
	for id := range byAthlete {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	type row struct {
		km, freq, minutes, speed float64
		hasSpeed                 bool
	}

	kept := make([]string, 0, len(ids))
	var raw []row
	for _, id := range ids {
		var r row
		best := math.Inf(1)
		for _, s := range byAthlete[id] {
			if !analysis.IsRunning(s.Kind) {
				continue
			}
			r.km += s.DistanceKm()
			r.minutes += s.DurationMinutes
			r.freq++
			if p := s.Pace(); s.DistanceMeters >= cohortMinMeters && s.DurationMinutes >= cohortMinMinutes && analysis.ValidPace(p) {
				best = math.Min(best, p)
			}
		}
		if r.freq == 0 {
			continue
		}
		r.km /= weeks
		r.freq /= weeks
		r.minutes /= weeks
		if !math.IsInf(best, 1) {
			r.speed, r.hasSpeed = 1/best, true
		}
		kept = append(kept, id)
		raw = append(raw, r)
	}

	// missing speed is imputed with the mean of the known ones
	var sum float64
	var n int
	for _, r := range raw {
		if r.hasSpeed {
			sum += r.speed
			n++
		}
	}
	meanSpeed := 0.0
	if n > 0 {
		meanSpeed = sum / float64(n)
	}

	rows := make([][]float64, len(raw))
	for i, r := range raw {
		speed := r.speed
		if !r.hasSpeed {
			speed = meanSpeed
		}
		rows[i] = []float64{r.km, r.freq, r.minutes, speed}
	}
	return kept, rows
}

// standardize z-scores each column in place. A constant column maps to 0.
func standardize(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	n := float64(len(rows))
	for c := range rows[0] {
		var mean float64
		for _, r := range rows {
			mean += r[c]
		}
		mean /= n

		var variance float64
		for _, r := range rows {
			variance += (r[c] - mean) * (r[c] - mean)
		}
		std := math.Sqrt(variance / n)
		if std == 0 {
			std = 1
		}
		for _, r := range rows {
			r[c] = (r[c] - mean) / std
		}
	}
}

// kmeans clusters rows into k groups seeded with the first k rows. It stops
// early once no assignment changes.
func kmeans(rows [][]float64, k, maxIter int) ([][]float64, []int) {
	if len(rows) == 0 {
		return nil, nil
	}
	k = min(k, len(rows))
	dim := len(rows[0])

	centroids := make([][]float64, k)
	for i := range centroids {
		centroids[i] = append([]float64(nil), rows[i]...)
	}
	labels := make([]int, len(rows))

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, r := range rows {
			best, bestD := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := dist2(r, centroid); d < bestD {
					best, bestD = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, r := range rows {
			counts[labels[i]]++
			for d, v := range r {
				sums[labels[i]][d] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for d := range centroids[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}

		if !changed {
			break
		}
	}
	return centroids, labels
}

func dist2(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += (a[i] - b[i]) * (a[i] - b[i])
	}
	return s
}

func composite(v []float64) float64 {
	var s float64
	for i, w := range compositeWeights {
		s += v[i] * w
	}
	return s
}

// rankClusters maps each cluster index to a tier, lowest composite score
// first.
func rankClusters(centroids [][]float64) []analysis.Tier {
	order := make([]int, len(centroids))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return composite(centroids[order[a]]) < composite(centroids[order[b]])
	})

	tiers := make([]analysis.Tier, len(centroids))
	for rank, idx := range order {
		tiers[idx] = analysis.Tiers[min(rank, len(analysis.Tiers)-1)]
	}
	return tiers
}
