// Package metrics exposes Prometheus instruments for the planner.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ClassifierRequests counts tier classification attempts.
	// Labels: provider (remote/cohort), outcome (success/unavailable/timeout/error)
	ClassifierRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_classifier_requests_total",
			Help: "Tier classification attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ClassifierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_classifier_duration_seconds",
			Help:    "Tier classification latency by provider",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"provider"},
	)

	// PlanCommits counts commit attempts.
	// Labels: outcome (committed/ineligible/invalid/conflict/failed)
	PlanCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_plan_commits_total",
			Help: "Plan commit attempts by outcome",
		},
		[]string{"outcome"},
	)

	PlanGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planner_plan_generation_duration_seconds",
			Help:    "Time spent generating and persisting a plan",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// ProfileCache counts profile lookups. Labels: result (hit/miss)
	ProfileCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_profile_cache_total",
			Help: "Profile cache lookups by result",
		},
		[]string{"result"},
	)

	// StravaRequests counts API calls by HTTP status class.
	StravaRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_strava_requests_total",
			Help: "Strava API requests by status",
		},
		[]string{"status"},
	)

	SyncedActivities = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_synced_activities_total",
			Help: "Activities stored by sync",
		},
	)
)

// RecordClassification records one provider call.
func RecordClassification(provider, outcome string, elapsed time.Duration) {
	ClassifierRequests.WithLabelValues(provider, outcome).Inc()
	ClassifierDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordCommit records the outcome of a plan commit.
func RecordCommit(outcome string, elapsed time.Duration) {
	PlanCommits.WithLabelValues(outcome).Inc()
	if outcome == "committed" {
		PlanGenerationDuration.Observe(elapsed.Seconds())
	}
}

// RecordCacheLookup records a profile cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ProfileCache.WithLabelValues(result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
