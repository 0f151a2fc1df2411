// Package classifier resolves an athlete's fitness tier from sources other
// than the local decision tree. Providers are tried in order and the first
// answer wins; a chain that gets no answer leaves the local tier in place.
package classifier

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/metrics"
)

// ErrUnavailable means a provider has no answer for the athlete.
var ErrUnavailable = errors.New("classification unavailable")

// Defaults for a chain built from zero config values.
const (
	DefaultTimeout      = 3 * time.Second
	DefaultLookbackDays = 56
)

// Provider classifies one athlete.
type Provider interface {
	Name() string
	Classify(ctx context.Context, athleteID string, lookbackDays int) (analysis.Tier, error)
}

// Chain asks each provider in turn, each under its own timeout.
type Chain struct {
	providers    []Provider
	timeout      time.Duration
	lookbackDays int
	log          *slog.Logger
}

// NewChain builds a chain. Zero timeout or lookback use the defaults.
func NewChain(log *slog.Logger, timeout time.Duration, lookbackDays int, providers ...Provider) *Chain {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	if log == nil {
		log = slog.Default()
	}
	return &Chain{
		providers:    providers,
		timeout:      timeout,
		lookbackDays: lookbackDays,
		log:          log,
	}
}

// Len returns the number of providers.
func (c *Chain) Len() int {
	return len(c.providers)
}

// Classify returns the first tier a provider yields and that provider's
// name. ok is false when every provider failed or had no answer.
func (c *Chain) Classify(ctx context.Context, athleteID string) (tier analysis.Tier, source string, ok bool) {
	for _, p := range c.providers {
		if ctx.Err() != nil {
			return "", "", false
		}

		start := time.Now()
		t, err := c.call(ctx, p, athleteID)
		elapsed := time.Since(start)

		switch {
		case err == nil && t.Valid():
			metrics.RecordClassification(p.Name(), "success", elapsed)
			return t, p.Name(), true
		case err == nil, errors.Is(err, ErrUnavailable):
			metrics.RecordClassification(p.Name(), "unavailable", elapsed)
			c.log.Debug("classifier has no answer", "source", p.Name(), "athlete_id", athleteID)
		case errors.Is(err, context.DeadlineExceeded):
			metrics.RecordClassification(p.Name(), "timeout", elapsed)
			c.log.Warn("classifier timed out", "source", p.Name(), "athlete_id", athleteID, "timeout", c.timeout)
		default:
			metrics.RecordClassification(p.Name(), "error", elapsed)
			c.log.Warn("classifier failed", "source", p.Name(), "athlete_id", athleteID, "err", err)
		}
	}
	return "", "", false
}

func (c *Chain) call(ctx context.Context, p Provider, athleteID string) (analysis.Tier, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return p.Classify(ctx, athleteID, c.lookbackDays)
}
