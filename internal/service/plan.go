package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/engine"
	"endurance-planner/internal/metrics"
	"endurance-planner/internal/periodization"
	"endurance-planner/internal/store"
	"endurance-planner/internal/workout"
	"endurance-planner/internal/wizard"
	"endurance-planner/internal/zones"
)

var (
	ErrActivePlanExists = store.ErrActivePlanExists
	ErrPlanNotFound     = store.ErrPlanNotFound
)

const defaultCommitConcurrency = 4

// PlanStore persists plans and everything generated with them.
type PlanStore interface {
	HasActivePlan(ctx context.Context, athleteID string) (bool, error)
	CreatePlan(ctx context.Context, p *store.Plan) error
	SetPlanStatus(ctx context.Context, id string, to store.PlanStatus) error
	SavePreferences(ctx context.Context, p store.Preferences) error
	SaveHealthDeclaration(ctx context.Context, h store.HealthRecord) (int64, error)
	SavePhases(ctx context.Context, planID string, phases []periodization.Phase) error
	CreateWorkouts(ctx context.Context, planID string, workouts []workout.Workout) error

	GetPlan(ctx context.Context, id string) (*store.Plan, error)
	ActivePlan(ctx context.Context, athleteID string) (*store.Plan, error)
	ListPlans(ctx context.Context, athleteID string) ([]store.Plan, error)
	ListPhases(ctx context.Context, planID string) ([]periodization.Phase, error)
	ListWorkouts(ctx context.Context, planID string) ([]workout.Workout, error)
}

// CommitRequest is a finished wizard for one athlete.
type CommitRequest struct {
	AthleteID string
	State     wizard.State
	Profile   analysis.Profile
}

// CommitResult is a committed, active plan.
type CommitResult struct {
	Plan      *store.Plan
	Generated engine.Plan
	Target    *wizard.Target
}

// CommitOutcome pairs a CommitMany request with its result.
type CommitOutcome struct {
	AthleteID string
	Result    *CommitResult
	Err       error
}

// PlanDetail is a stored plan with its calendar.
type PlanDetail struct {
	Plan     *store.Plan
	Phases   []periodization.Phase
	Workouts []workout.Workout
}

// WeeklyStress sums scheduled stress per week, indexed from week 1.
func (d *PlanDetail) WeeklyStress() []int {
	totals := make([]int, d.Plan.Weeks)
	for _, w := range d.Workouts {
		if w.Week >= 1 && w.Week <= d.Plan.Weeks {
			totals[w.Week-1] += w.Stress
		}
	}
	return totals
}

// PlanService turns a completed wizard into a persisted plan.
type PlanService struct {
	store       PlanStore
	log         *slog.Logger
	newID       func() string
	concurrency int
}

// NewPlanService creates a plan service.
func NewPlanService(s PlanStore, log *slog.Logger, concurrency int) *PlanService {
	if log == nil {
		log = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = defaultCommitConcurrency
	}
	return &PlanService{
		store:       s,
		log:         log,
		newID:       uuid.NewString,
		concurrency: concurrency,
	}
}

// Commit validates the wizard state, creates the plan, generates its
// calendar and activates it. Any failure after the plan row exists
// cancels it, so a broken commit never blocks the next one.
func (s *PlanService) Commit(ctx context.Context, req CommitRequest) (res *CommitResult, err error) {
	start := time.Now()
	log := s.log.With("athlete_id", req.AthleteID)
	defer func() {
		metrics.RecordCommit(commitOutcome(err), time.Since(start))
	}()

	st := req.State
	if err := wizard.CheckEligibility(st.Health); err != nil {
		log.Info("plan commit refused", "err", err)
		return nil, err
	}
	if fields := wizard.ValidateAll(st); len(fields) > 0 {
		return nil, &wizard.ValidationError{Fields: fields}
	}

	has, err := s.store.HasActivePlan(ctx, req.AthleteID)
	if err != nil {
		return nil, fmt.Errorf("checking active plan: %w", err)
	}
	if has {
		return nil, ErrActivePlanExists
	}

	profile := req.Profile
	if st.Tier.Valid() && st.Tier != profile.Tier {
		profile = profile.WithTier(st.Tier, analysis.TierSourceSelf)
	}
	bio := st.Biometrics()
	sport := st.Goal.Sport()
	startDate := engine.StartOfDay(st.StartDate)

	plan := &store.Plan{
		ID:        s.newID(),
		AthleteID: req.AthleteID,
		Name:      st.PlanName(),
		Goal:      string(st.Goal),
		Sport:     string(sport),
		Tier:      string(profile.Tier),
		StartDate: startDate,
		EndDate:   engine.EndDate(startDate, st.Weeks),
		Weeks:     st.Weeks,
		Zones:     zones.ForProfile(sport.ZoneKind(), profile, bio),
	}
	if st.Goal.NeedsEventDate() && st.HasRaceDate && st.RaceDate != nil {
		plan.TargetEventDate = st.RaceDate
	}
	target, hasTarget := wizard.DeriveTargetTime(st, profile.RaceEstimates)
	if hasTarget {
		minutes := target.Minutes()
		plan.TargetTimeMinutes = &minutes
	}

	if err := s.store.CreatePlan(ctx, plan); err != nil {
		if errors.Is(err, store.ErrActivePlanExists) {
			return nil, ErrActivePlanExists
		}
		return nil, fmt.Errorf("creating plan: %w", err)
	}
	log = log.With("plan_id", plan.ID)

	defer func() {
		if err == nil {
			return
		}
		// the request context may be the reason we failed
		cleanup := context.WithoutCancel(ctx)
		if cerr := s.store.SetPlanStatus(cleanup, plan.ID, store.PlanCancelled); cerr != nil {
			log.Error("cancelling failed plan", "err", cerr)
		}
		log.Warn("plan commit failed", "err", err)
	}()

	if err := s.store.SavePreferences(ctx, preferences(plan.ID, st, target, hasTarget)); err != nil {
		return nil, fmt.Errorf("saving preferences: %w", err)
	}
	if _, err := s.store.SaveHealthDeclaration(ctx, healthRecord(req.AthleteID, plan.ID, st.Health)); err != nil {
		return nil, fmt.Errorf("saving health declaration: %w", err)
	}

	generated, err := engine.Generate(engine.Request{
		Sport:      sport,
		Weeks:      st.Weeks,
		Start:      startDate,
		Profile:    profile,
		Biometrics: bio,
		Days:       st.Days,
		LongDay:    st.LongDay,
		Frequency:  st.Frequency,
	})
	if err != nil {
		return nil, fmt.Errorf("generating plan: %w", err)
	}

	if err := s.store.SavePhases(ctx, plan.ID, generated.Phases); err != nil {
		return nil, fmt.Errorf("saving phases: %w", err)
	}
	if err := s.store.CreateWorkouts(ctx, plan.ID, generated.Workouts); err != nil {
		return nil, fmt.Errorf("saving workouts: %w", err)
	}
	if err := s.store.SetPlanStatus(ctx, plan.ID, store.PlanActive); err != nil {
		return nil, fmt.Errorf("activating plan: %w", err)
	}
	plan.Status = store.PlanActive

	log.Info("plan committed",
		"weeks", plan.Weeks,
		"tier", plan.Tier,
		"source", profile.TierSource,
		"workouts", len(generated.Workouts),
	)

	res = &CommitResult{Plan: plan, Generated: generated}
	if hasTarget {
		res.Target = &target
	}
	return res, nil
}

// CommitMany commits plans for several athletes in parallel. Each request
// succeeds or fails on its own; outcomes keep the request order.
func (s *PlanService) CommitMany(ctx context.Context, reqs []CommitRequest) []CommitOutcome {
	out := make([]CommitOutcome, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Commit(gctx, req)
			out[i] = CommitOutcome{AthleteID: req.AthleteID, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Cancel ends a pending or active plan.
func (s *PlanService) Cancel(ctx context.Context, planID string) error {
	if err := s.store.SetPlanStatus(ctx, planID, store.PlanCancelled); err != nil {
		return err
	}
	s.log.Info("plan cancelled", "plan_id", planID)
	return nil
}

// Complete marks an active plan as finished.
func (s *PlanService) Complete(ctx context.Context, planID string) error {
	if err := s.store.SetPlanStatus(ctx, planID, store.PlanCompleted); err != nil {
		return err
	}
	s.log.Info("plan completed", "plan_id", planID)
	return nil
}

// ActivePlan returns the athlete's pending or active plan with its calendar.
func (s *PlanService) ActivePlan(ctx context.Context, athleteID string) (*PlanDetail, error) {
	p, err := s.store.ActivePlan(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, p)
}

// Plan returns any stored plan with its calendar.
func (s *PlanService) Plan(ctx context.Context, planID string) (*PlanDetail, error) {
	p, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, p)
}

// ListPlans returns every plan of an athlete, newest first.
func (s *PlanService) ListPlans(ctx context.Context, athleteID string) ([]store.Plan, error) {
	return s.store.ListPlans(ctx, athleteID)
}

func (s *PlanService) detail(ctx context.Context, p *store.Plan) (*PlanDetail, error) {
	phases, err := s.store.ListPhases(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("listing phases: %w", err)
	}
	workouts, err := s.store.ListWorkouts(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	return &PlanDetail{Plan: p, Phases: phases, Workouts: workouts}, nil
}

func preferences(planID string, st wizard.State, target wizard.Target, hasTarget bool) store.Preferences {
	p := store.Preferences{
		PlanID:         planID,
		Frequency:      st.Frequency,
		Days:           st.Days,
		LongDay:        st.LongDay,
		StartDate:      engine.StartOfDay(st.StartDate),
		GoalTime:       st.GoalTime,
		EstimatedTimes: st.EstimatedTimes,
	}
	if hasTarget {
		minutes := target.Minutes()
		p.TargetTimeMinutes = &minutes
		p.TargetSource = string(target.Source)
	}
	return p
}

func healthRecord(athleteID, planID string, h wizard.HealthDeclaration) store.HealthRecord {
	answers := make([]bool, len(h.Answers))
	for i, a := range h.Answers {
		answers[i] = a != nil && *a
	}
	return store.HealthRecord{
		AthleteID:      athleteID,
		PlanID:         planID,
		Answers:        answers,
		AdditionalInfo: h.AdditionalInfo,
		Accepted:       h.Accepted,
		Eligible:       wizard.CheckEligibility(h) == nil,
	}
}

func commitOutcome(err error) string {
	var verr *wizard.ValidationError
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, wizard.ErrNotEligible):
		return "ineligible"
	case errors.As(err, &verr), errors.Is(err, periodization.ErrWeeksOutOfRange):
		return "invalid"
	case errors.Is(err, ErrActivePlanExists):
		return "conflict"
	default:
		return "failed"
	}
}
