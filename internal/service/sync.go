package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"endurance-planner/internal/metrics"
	"endurance-planner/internal/store"
	"endurance-planner/internal/strava"
)

// StravaAPI is the part of the Strava client sync uses
type StravaAPI interface {
	GetAthlete(ctx context.Context) (*strava.Athlete, error)
	GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.Activity, error)
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

// SyncStore persists what sync fetches
type SyncStore interface {
	UpsertAthlete(ctx context.Context, a *store.Athlete) error
	UpsertActivity(ctx context.Context, a *store.Activity) error
	GetSyncState(ctx context.Context, key string) (string, error)
	SetSyncState(ctx context.Context, key, value string) error
}

const syncPageSize = 100

// SyncService pulls the athlete and their activity history from Strava
type SyncService struct {
	client StravaAPI
	store  SyncStore
	log    *slog.Logger
	now    func() time.Time

	// OnSynced is called with the athlete id after a successful sync
	OnSynced func(athleteID string)
}

// NewSyncService creates a new sync service
func NewSyncService(client StravaAPI, s SyncStore, log *slog.Logger) *SyncService {
	if log == nil {
		log = slog.Default()
	}
	return &SyncService{
		client: client,
		store:  s,
		log:    log,
		now:    time.Now,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase     string // "athlete", "activities"
	Fetched   int
	Stored    int
	Completed bool
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	AthleteID         string
	ActivitiesFetched int
	ActivitiesStored  int
	Errors            []error
}

// SyncAll syncs the athlete profile, then every activity since the last sync.
// The progress channel, when given, is closed on return.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}
	started := s.now()

	send(ctx, progress, SyncProgress{Phase: "athlete"})
	athlete, err := s.client.GetAthlete(ctx)
	if err != nil {
		return result, fmt.Errorf("syncing athlete: %w", err)
	}
	result.AthleteID = strconv.FormatInt(athlete.ID, 10)

	if err := s.store.UpsertAthlete(ctx, convertAthlete(athlete)); err != nil {
		return result, fmt.Errorf("storing athlete: %w", err)
	}

	if err := s.syncActivities(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	// next sync only asks for what started after this one began
	if err := s.store.SetSyncState(ctx, store.SyncLastActivity, strconv.FormatInt(started.Unix(), 10)); err != nil {
		return result, fmt.Errorf("saving sync state: %w", err)
	}

	short, daily := s.client.RateLimitStatus()
	s.log.Info("sync finished",
		"athlete_id", result.AthleteID,
		"fetched", result.ActivitiesFetched,
		"stored", result.ActivitiesStored,
		"errors", len(result.Errors),
		"rate_short_remaining", short,
		"rate_daily_remaining", daily,
	)
	send(ctx, progress, SyncProgress{
		Phase:     "activities",
		Fetched:   result.ActivitiesFetched,
		Stored:    result.ActivitiesStored,
		Completed: true,
	})

	if s.OnSynced != nil {
		s.OnSynced(result.AthleteID)
	}
	return result, nil
}

func (s *SyncService) syncActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	after, err := s.lastSync(ctx)
	if err != nil {
		return err
	}

	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		activities, err := s.client.GetActivities(ctx, after, page, syncPageSize)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}
		result.ActivitiesFetched += len(activities)

		for _, a := range activities {
			if err := s.store.UpsertActivity(ctx, convertActivity(a, result.AthleteID)); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				s.log.Warn("storing activity", "athlete_id", result.AthleteID, "activity_id", a.ID, "err", err)
				continue
			}
			result.ActivitiesStored++
			metrics.SyncedActivities.Inc()
		}

		send(ctx, progress, SyncProgress{
			Phase:   "activities",
			Fetched: result.ActivitiesFetched,
			Stored:  result.ActivitiesStored,
		})

		if len(activities) < syncPageSize {
			return nil
		}
	}
}

func (s *SyncService) lastSync(ctx context.Context) (time.Time, error) {
	v, err := s.store.GetSyncState(ctx, store.SyncLastActivity)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading sync state: %w", err)
	}
	if v == "" {
		return time.Time{}, nil
	}
	unix, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		s.log.Warn("ignoring malformed sync state", "value", v, "err", err)
		return time.Time{}, nil
	}
	return time.Unix(unix, 0), nil
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}

func send(ctx context.Context, ch chan<- SyncProgress, p SyncProgress) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	case <-ctx.Done():
	}
}

func convertAthlete(a *strava.Athlete) *store.Athlete {
	out := &store.Athlete{
		ID:   strconv.FormatInt(a.ID, 10),
		Name: strings.TrimSpace(a.Firstname + " " + a.Lastname),
	}
	if g := a.Gender(); g != "" {
		out.Gender = &g
	}
	if a.Weight > 0 {
		w := a.Weight
		out.WeightKg = &w
	}
	if a.FTP != nil && *a.FTP > 0 {
		ftp := float64(*a.FTP)
		out.FTPWatts = &ftp
	}
	return out
}

// convertActivity converts a Strava API activity to a store activity
func convertActivity(a strava.Activity, athleteID string) *store.Activity {
	if a.Athlete.ID != 0 {
		athleteID = strconv.FormatInt(a.Athlete.ID, 10)
	}
	activity := &store.Activity{
		ID:                 a.ID,
		AthleteID:          athleteID,
		Name:               a.Name,
		Type:               a.Kind(),
		StartDate:          a.StartDate,
		Distance:           a.Distance,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		TotalElevationGain: a.TotalElevationGain,
		AverageSpeed:       a.AverageSpeed,
		HasHeartrate:       a.HasHeartrate,
	}

	if a.AverageHeartrate > 0 {
		v := a.AverageHeartrate
		activity.AverageHeartrate = &v
	}
	if a.MaxHeartrate > 0 {
		v := a.MaxHeartrate
		activity.MaxHeartrate = &v
	}
	if a.AverageWatts > 0 {
		v := a.AverageWatts
		activity.AverageWatts = &v
	}

	return activity
}
