package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/metrics"
)

const (
	defaultCacheSize = 128
	defaultCacheTTL  = 15 * time.Minute
)

// HistoryProvider returns an athlete's activities started on or after since.
type HistoryProvider interface {
	FetchActivities(ctx context.Context, athleteID string, since time.Time) ([]analysis.Sample, error)
}

// BiometricsStore returns what is known about the athlete. Unknown
// athletes yield empty biometrics, not an error.
type BiometricsStore interface {
	GetBiometrics(ctx context.Context, athleteID string) (analysis.Biometrics, error)
}

// SnapshotStore keeps the last computed profile for display.
type SnapshotStore interface {
	SaveProfileSnapshot(ctx context.Context, athleteID string, p analysis.Profile) error
}

// TierClassifier is an external tier source. ok is false when it had no answer.
type TierClassifier interface {
	Classify(ctx context.Context, athleteID string) (tier analysis.Tier, source string, ok bool)
}

// AthleteProfile is a profile plus the biometrics it was computed with.
type AthleteProfile struct {
	Profile    analysis.Profile
	Biometrics analysis.Biometrics
}

// ProfileOptions configures a ProfileService.
type ProfileOptions struct {
	LookbackDays int
	CacheSize    int
	CacheTTL     time.Duration
	// Overrides replace stored biometrics field by field when set.
	Overrides analysis.Biometrics
}

type profileEntry struct {
	profile  AthleteProfile
	storedAt time.Time
}

// ProfileService derives athlete profiles and caches them for a short time.
type ProfileService struct {
	history    HistoryProvider
	biometrics BiometricsStore
	snapshots  SnapshotStore
	classifier TierClassifier
	opts       ProfileOptions
	cache      *lru.Cache[string, profileEntry]
	log        *slog.Logger
	now        func() time.Time
}

// NewProfileService creates a profile service. snapshots and classifier may be nil.
func NewProfileService(history HistoryProvider, bio BiometricsStore, snapshots SnapshotStore, classifier TierClassifier, opts ProfileOptions, log *slog.Logger) (*ProfileService, error) {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = analysis.DefaultLookbackDays
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if log == nil {
		log = slog.Default()
	}

	cache, err := lru.New[string, profileEntry](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating profile cache: %w", err)
	}

	return &ProfileService{
		history:    history,
		biometrics: bio,
		snapshots:  snapshots,
		classifier: classifier,
		opts:       opts,
		cache:      cache,
		log:        log,
		now:        time.Now,
	}, nil
}

// Analyze returns the athlete's current profile. History, biometrics and
// the external tier are fetched concurrently; a classifier that fails or
// has no answer leaves the locally classified tier in place.
func (s *ProfileService) Analyze(ctx context.Context, athleteID string) (AthleteProfile, error) {
	now := s.now()
	if e, ok := s.cache.Get(athleteID); ok && now.Sub(e.storedAt) < s.opts.CacheTTL {
		metrics.RecordCacheLookup(true)
		return e.profile, nil
	}
	metrics.RecordCacheLookup(false)

	var (
		samples    []analysis.Sample
		bio        analysis.Biometrics
		tier       analysis.Tier
		tierSource string
		classified bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		samples, err = s.history.FetchActivities(gctx, athleteID, now.AddDate(0, 0, -s.opts.LookbackDays))
		if err != nil {
			return fmt.Errorf("fetching history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bio, err = s.biometrics.GetBiometrics(gctx, athleteID)
		if err != nil {
			return fmt.Errorf("fetching biometrics: %w", err)
		}
		return nil
	})
	if s.classifier != nil {
		g.Go(func() error {
			tier, tierSource, classified = s.classifier.Classify(gctx, athleteID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AthleteProfile{}, err
	}

	bio = mergeBiometrics(bio, s.opts.Overrides)
	profile := analysis.Analyze(samples, bio, analysis.AggregateOptions{
		Now:          now,
		LookbackDays: s.opts.LookbackDays,
	})
	if classified {
		profile = profile.WithTier(tier, tierSource)
	}

	s.log.Debug("profile computed",
		"athlete_id", athleteID,
		"samples", profile.SampleCount,
		"tier", profile.Tier,
		"source", profile.TierSource,
	)

	if s.snapshots != nil {
		if err := s.snapshots.SaveProfileSnapshot(ctx, athleteID, profile); err != nil {
			s.log.Warn("saving profile snapshot", "athlete_id", athleteID, "err", err)
		}
	}

	result := AthleteProfile{Profile: profile, Biometrics: bio}
	s.cache.Add(athleteID, profileEntry{profile: result, storedAt: now})
	return result, nil
}

// Invalidate drops the cached profile, e.g. after a sync.
func (s *ProfileService) Invalidate(athleteID string) {
	s.cache.Remove(athleteID)
}

// InvalidateAll empties the cache.
func (s *ProfileService) InvalidateAll() {
	s.cache.Purge()
}

func mergeBiometrics(stored, overrides analysis.Biometrics) analysis.Biometrics {
	if overrides.BirthDate != nil {
		stored.BirthDate = overrides.BirthDate
	}
	if overrides.Gender != "" {
		stored.Gender = overrides.Gender
	}
	if overrides.WeightKg > 0 {
		stored.WeightKg = overrides.WeightKg
	}
	if overrides.FTPWatts > 0 {
		stored.FTPWatts = overrides.FTPWatts
	}
	return stored
}
