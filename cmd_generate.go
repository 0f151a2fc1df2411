package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/service"
	"endurance-planner/internal/wizard"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create a training plan without the interactive wizard",
		Long: "Seeds the plan inputs from the athlete's profile, applies the flags, walks the\n" +
			"wizard steps and commits the plan. With --batch, commits one plan per entry of a\n" +
			"JSON file of {\"athlete_id\", \"state\"} objects.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if path, _ := cmd.Flags().GetString("batch"); path != "" {
				return generateBatch(cmd, a, path)
			}

			profile, err := a.profiles.Analyze(cmd.Context(), a.athleteID)
			if err != nil {
				return err
			}
			state := wizard.NewState(profile.Profile, profile.Biometrics, time.Now())
			if err := applyGenerateFlags(cmd, &state); err != nil {
				return err
			}
			if state, err = walkWizard(state); err != nil {
				return err
			}

			res, err := a.plans.Commit(cmd.Context(), service.CommitRequest{
				AthleteID: a.athleteID,
				State:     state,
				Profile:   profile.Profile,
			})
			if err != nil {
				return explainCommitError(err)
			}

			fmt.Printf("Created %s (%s), %s to %s, %d sessions\n",
				res.Plan.Name, res.Plan.ID,
				res.Plan.StartDate.Format(dateLayout), res.Plan.EndDate.Format(dateLayout),
				len(res.Generated.Workouts))
			if res.Target != nil {
				fmt.Printf("Target time %s (%s)\n", wizard.FormatClock(res.Target.Seconds), res.Target.Source)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("goal", "", "goal: "+goalList())
	f.String("level", "", "athlete level override (Beginner, Intermediate, Advanced, Elite)")
	f.Int("frequency", 0, "sessions per week")
	f.String("days", "", "available days, e.g. mon,wed,sat")
	f.String("long-day", "", "day of the long session")
	f.String("start", "", "start date YYYY-MM-DD")
	f.Int("weeks", 0, "plan length in weeks")
	f.String("race-date", "", "event date YYYY-MM-DD")
	f.String("goal-time", "", "goal race time H:MM:SS")
	f.StringToString("times", nil, "current race times, e.g. 5k=24:30,10k=51:00")
	f.Float64("ftp", 0, "functional threshold power in watts")
	f.Float64("weight", 0, "body weight in kg")
	f.String("birth-date", "", "birth date YYYY-MM-DD")
	f.String("gender", "", "male or female")
	f.Bool("health-ok", false, "declare \"no\" to every health screening question and accept the declaration")
	f.String("batch", "", "JSON file of plans to commit concurrently")
	return cmd
}

const dateLayout = "2006-01-02"

func goalList() string {
	names := make([]string, len(wizard.Goals))
	for i, g := range wizard.Goals {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}

func applyGenerateFlags(cmd *cobra.Command, s *wizard.State) error {
	f := cmd.Flags()

	if v, _ := f.GetString("goal"); v != "" {
		s.Goal = wizard.Goal(v)
	}
	if v, _ := f.GetString("level"); v != "" {
		tier, err := analysis.ParseTier(v)
		if err != nil {
			return err
		}
		s.TierAdjusted = tier != s.Tier
		s.Tier = tier
	}
	if v, _ := f.GetInt("frequency"); v != 0 {
		s.Frequency = v
	}
	if v, _ := f.GetString("days"); v != "" {
		days, err := parseDays(v)
		if err != nil {
			return err
		}
		s.Days = days
	}
	if v, _ := f.GetString("long-day"); v != "" {
		d, ok := wizard.ParseWeekday(v)
		if !ok {
			return fmt.Errorf("unknown day %q", v)
		}
		s.LongDay = &d
	} else if s.LongDay != nil && !s.HasDay(*s.LongDay) && len(s.Days) > 0 {
		// the default long day is Sunday; fall back to the last chosen day
		last := s.Days[len(s.Days)-1]
		s.LongDay = &last
	}
	if v, _ := f.GetString("start"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		s.StartDate = t
	}
	if v, _ := f.GetInt("weeks"); v != 0 {
		s.Weeks = v
	}
	if v, _ := f.GetString("race-date"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return fmt.Errorf("race-date: %w", err)
		}
		s.HasRaceDate = true
		s.RaceDate = &t
	}
	if v, _ := f.GetString("goal-time"); v != "" {
		s.GoalTime = v
	}
	if times, _ := f.GetStringToString("times"); len(times) > 0 {
		for k, v := range times {
			s.EstimatedTimes[strings.ToLower(k)] = v
		}
		s.TimesAdjusted = true
	}
	if v, _ := f.GetFloat64("ftp"); v != 0 {
		s.FTPWatts = v
	}
	if v, _ := f.GetFloat64("weight"); v != 0 {
		s.WeightKg = v
	}
	if v, _ := f.GetString("birth-date"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return fmt.Errorf("birth-date: %w", err)
		}
		s.BirthDate = &t
	}
	if v, _ := f.GetString("gender"); v != "" {
		s.Gender = strings.ToLower(v)
	}
	if ok, _ := f.GetBool("health-ok"); ok {
		for i := range s.Health.Answers {
			s.Health.Answer(i, false)
		}
		s.Health.Accepted = true
	}
	return nil
}

func parseDays(v string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(v, ",") {
		d, ok := wizard.ParseWeekday(part)
		if !ok {
			return nil, fmt.Errorf("unknown day %q", part)
		}
		days = append(days, d)
	}
	return days, nil
}

// walkWizard advances through every step so the first unsatisfied one is
// reported by name.
func walkWizard(s wizard.State) (wizard.State, error) {
	w := wizard.New(s)
	for !w.Done() {
		if err := w.Next(); err != nil {
			step, _ := wizard.Lookup(w.Current())
			return s, fmt.Errorf("%s: %w", step.Title, err)
		}
	}
	return w.State(), nil
}

type batchEntry struct {
	AthleteID string       `json:"athlete_id"`
	State     wizard.State `json:"state"`
}

func generateBatch(cmd *cobra.Command, a *app, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading batch file: %w", err)
	}
	var entries []batchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing batch file: %w", err)
	}

	reqs := make([]service.CommitRequest, 0, len(entries))
	for _, e := range entries {
		p, err := a.profiles.Analyze(cmd.Context(), e.AthleteID)
		if err != nil {
			return fmt.Errorf("profiling %s: %w", e.AthleteID, err)
		}
		reqs = append(reqs, service.CommitRequest{AthleteID: e.AthleteID, State: e.State, Profile: p.Profile})
	}

	var failed int
	for _, out := range a.plans.CommitMany(cmd.Context(), reqs) {
		if out.Err != nil {
			failed++
			fmt.Printf("%-12s failed: %v\n", out.AthleteID, explainCommitError(out.Err))
			continue
		}
		fmt.Printf("%-12s created %s (%s)\n", out.AthleteID, out.Result.Plan.Name, out.Result.Plan.ID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d plans failed", failed, len(reqs))
	}
	return nil
}

func explainCommitError(err error) error {
	var verr *wizard.ValidationError
	switch {
	case errors.Is(err, service.ErrActivePlanExists):
		return fmt.Errorf("%w; cancel or complete it first with 'planner plan cancel' or 'planner plan complete'", err)
	case errors.Is(err, wizard.ErrNotEligible):
		return fmt.Errorf("%w; answer the health screening with --health-ok only if every answer is no", err)
	case errors.As(err, &verr):
		return fmt.Errorf("plan inputs rejected: %w", err)
	}
	return err
}
