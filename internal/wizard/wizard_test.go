package wizard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/workout"
)

func validState() State {
	birth := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	long := time.Sunday
	s := State{
		Goal:           Goal5K,
		Tier:           analysis.TierBeginner,
		BirthDate:      &birth,
		Gender:         "female",
		WeightKg:       60,
		EstimatedTimes: map[string]string{"5k": "30:00"},
		Frequency:      3,
		Days:           []time.Weekday{time.Tuesday, time.Thursday, time.Sunday},
		LongDay:        &long,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Weeks:          12,
	}
	for i := range s.Health.Answers {
		s.Health.Answer(i, false)
	}
	s.Health.Accepted = true
	return s
}

func TestSequenceBranches(t *testing.T) {
	race := Sequence(State{Goal: Goal5K})
	assert.Contains(t, race, StepRaceDate)
	assert.Contains(t, race, StepGoalTime)
	assert.Contains(t, race, StepEstimatedTimes)
	assert.NotContains(t, race, StepFTP)

	fitness := Sequence(State{Goal: GoalGeneralFitness})
	assert.NotContains(t, fitness, StepRaceDate)
	assert.NotContains(t, fitness, StepGoalTime)

	improve := Sequence(State{Goal: GoalImproveTimes})
	assert.Contains(t, improve, StepRaceDate)
	assert.NotContains(t, improve, StepGoalTime)

	event := Sequence(State{Goal: GoalCyclingEvent})
	assert.Contains(t, event, StepFTP)
	assert.Contains(t, event, StepRaceDate)
	assert.NotContains(t, event, StepEstimatedTimes)
	assert.NotContains(t, event, StepGoalTime)

	// summary, health and generate always close the flow
	assert.Equal(t, []StepID{StepSummary, StepHealth, StepGenerate}, fitness[len(fitness)-3:])
}

func TestWizardWalk(t *testing.T) {
	w := New(validState())
	assert.Equal(t, StepGoal, w.Current())
	assert.False(t, w.Back())

	for !w.Done() {
		require.NoError(t, w.Next(), "step %s", w.Current())
	}

	pos, total := w.Position()
	assert.Equal(t, total, pos)
	assert.Equal(t, len(Sequence(validState())), total)

	// Next on the last step stays put
	require.NoError(t, w.Next())
	assert.Equal(t, StepGenerate, w.Current())

	assert.True(t, w.Back())
	assert.Equal(t, StepHealth, w.Current())
}

func TestWizardNextValidation(t *testing.T) {
	s := validState()
	s.Goal = ""
	w := New(s)

	err := w.Next()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "goal", verr.Fields[0].Field)
	assert.Equal(t, StepGoal, w.Current())
}

func TestWizardUpdateClampsCursor(t *testing.T) {
	w := New(validState())
	for w.Current() != StepGoalTime {
		require.NoError(t, w.Next())
	}

	// Dropping the race goal removes race_date and goal_time
	w.Update(func(s *State) { s.Goal = GoalGeneralFitness })

	assert.Equal(t, StepDuration, w.Current())
	assert.NotContains(t, w.Sequence(), StepGoalTime)

	// Switching to cycling keeps the cursor on a surviving step
	w.Update(func(s *State) { s.Goal = GoalCyclingFTP })
	assert.Equal(t, StepDuration, w.Current())
	assert.Contains(t, w.Sequence(), StepFTP)
}

func TestWizardUpdateKeepsCurrentStep(t *testing.T) {
	w := New(validState())
	for w.Current() != StepFrequency {
		require.NoError(t, w.Next())
	}
	w.Update(func(s *State) { s.Goal = GoalMarathon })
	assert.Equal(t, StepFrequency, w.Current())
}

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		name   string
		step   StepID
		mutate func(*State)
		want   bool
	}{
		{"valid days", StepAvailableDays, func(*State) {}, true},
		{"fewer days than sessions", StepAvailableDays, func(s *State) { s.Frequency = 4 }, false},
		{"duplicate days do not count", StepAvailableDays, func(s *State) {
			s.Days = []time.Weekday{time.Monday, time.Monday, time.Monday}
		}, false},
		{"long day not selected", StepLongDay, func(s *State) {
			d := time.Monday
			s.LongDay = &d
		}, false},
		{"weeks too short", StepDuration, func(s *State) { s.Weeks = 3 }, false},
		{"weeks too long", StepDuration, func(s *State) { s.Weeks = 53 }, false},
		{"frequency zero", StepFrequency, func(s *State) { s.Frequency = 0 }, false},
		{"missing birth date", StepBiometrics, func(s *State) { s.BirthDate = nil }, false},
		{"race date optional", StepRaceDate, func(s *State) { s.HasRaceDate = false }, true},
		{"race date missing", StepRaceDate, func(s *State) { s.HasRaceDate = true }, false},
		{"race date before start", StepRaceDate, func(s *State) {
			d := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
			s.HasRaceDate, s.RaceDate = true, &d
		}, false},
		{"bad goal time", StepGoalTime, func(s *State) { s.GoalTime = "fast" }, false},
		{"bad estimated time", StepEstimatedTimes, func(s *State) { s.EstimatedTimes["10k"] = "1:75" }, false},
		{"ftp estimated when empty", StepFTP, func(s *State) { s.FTPWatts = 0 }, true},
		{"ftp out of range", StepFTP, func(s *State) { s.FTPWatts = 900 }, false},
		{"summary always", StepSummary, func(*State) {}, true},
		{"health incomplete", StepHealth, func(s *State) { s.Health.Answers[6] = nil }, false},
		{"generate on valid state", StepGenerate, func(*State) {}, true},
		{"generate blocked by health", StepGenerate, func(s *State) { s.Health.Accepted = false }, false},
		{"unknown step", StepID("payment"), func(*State) {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validState()
			tt.mutate(&s)
			assert.Equal(t, tt.want, CanAdvance(tt.step, s))
		})
	}
}

func TestCheckEligibility(t *testing.T) {
	ok := validState().Health
	require.NoError(t, CheckEligibility(ok))

	incomplete := ok
	incomplete.Answers[2] = nil
	risk := validState().Health
	risk.Answer(4, true)
	notAccepted := ok
	notAccepted.Accepted = false

	tests := []struct {
		name string
		h    HealthDeclaration
		want error
	}{
		{"incomplete", incomplete, ErrHealthIncomplete},
		{"affirmative answer", risk, ErrHealthRisk},
		{"not accepted", notAccepted, ErrDeclarationNotAccepted},
		{"empty", HealthDeclaration{Accepted: true}, ErrHealthIncomplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEligibility(tt.h)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrNotEligible)
		})
	}
}

func TestDeriveTargetTime(t *testing.T) {
	estimates := analysis.RaceEstimates{
		{Name: "5k", DistanceMeters: 5000, Seconds: 1800},
		{Name: "10k", DistanceMeters: 10000, Seconds: 3753},
	}

	t.Run("explicit goal time is taken verbatim", func(t *testing.T) {
		s := validState()
		s.GoalTime = "27:30"
		s.TimesAdjusted = true
		got, ok := DeriveTargetTime(s, estimates)
		require.True(t, ok)
		assert.Equal(t, Target{Seconds: 1650, Source: SourceGoalTime}, got)
	})

	t.Run("adjusted estimate is taken verbatim", func(t *testing.T) {
		s := validState()
		s.TimesAdjusted = true
		s.EstimatedTimes["5k"] = "29:00"
		got, ok := DeriveTargetTime(s, estimates)
		require.True(t, ok)
		assert.Equal(t, Target{Seconds: 1740, Source: SourceAdjusted}, got)
	})

	t.Run("historical estimate is discounted", func(t *testing.T) {
		got, ok := DeriveTargetTime(validState(), estimates)
		require.True(t, ok)
		assert.Equal(t, SourceHistorical, got.Source)
		assert.InDelta(t, 1800*(1-0.15*0.75), float64(got.Seconds), 1)
	})

	t.Run("unadjusted times fall through to history", func(t *testing.T) {
		s := validState()
		s.EstimatedTimes["5k"] = "20:00"
		got, ok := DeriveTargetTime(s, estimates)
		require.True(t, ok)
		assert.Equal(t, SourceHistorical, got.Source)
	})

	t.Run("long plans cap the improvement", func(t *testing.T) {
		s := validState()
		s.Goal = Goal10K
		s.Tier = analysis.TierElite
		s.Weeks = 24
		got, ok := DeriveTargetTime(s, estimates)
		require.True(t, ok)
		assert.Equal(t, 3640, got.Seconds) // 3753 * 0.97
	})

	t.Run("no estimate for the distance", func(t *testing.T) {
		s := validState()
		s.Goal = GoalMarathon
		_, ok := DeriveTargetTime(s, estimates)
		assert.False(t, ok)
	})

	t.Run("non-race goals have no target", func(t *testing.T) {
		s := validState()
		s.Goal = GoalWeightLoss
		s.GoalTime = "25:00"
		_, ok := DeriveTargetTime(s, estimates)
		assert.False(t, ok)
	})
}

func TestImprovementFactor(t *testing.T) {
	assert.InDelta(t, 0.1125, ImprovementFactor(analysis.TierBeginner, 12), 1e-9)
	assert.InDelta(t, 0.08, ImprovementFactor(analysis.TierIntermediate, 16), 1e-9)
	assert.InDelta(t, 0.05, ImprovementFactor(analysis.TierAdvanced, 40), 1e-9)
	assert.InDelta(t, 0.0075, ImprovementFactor(analysis.TierElite, 4), 1e-9)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"25:00", 1500, false},
		{"4:05", 245, false},
		{"1:45:30", 6330, false},
		{" 3:59:59 ", 14399, false},
		{"90:00", 5400, false},
		{"25", 0, true},
		{"1:2:3:4", 0, true},
		{"25:60", 0, true},
		{"-1:00", 0, true},
		{"0:00", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "25:00", FormatClock(1500))
	assert.Equal(t, "1:45:30", FormatClock(6330))
	assert.Equal(t, "-", FormatClock(0))
}

func TestNewState(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 4, 0, 0, time.UTC)
	p := analysis.Profile{
		Tier:          analysis.TierAdvanced,
		RaceEstimates: analysis.RaceEstimates{{Name: "5k", Seconds: 1260}},
	}
	s := NewState(p, analysis.Biometrics{WeightKg: 68, Gender: "male"}, now)

	assert.Equal(t, analysis.TierAdvanced, s.Tier)
	assert.Equal(t, "21:00", s.EstimatedTimes["5k"])
	assert.Equal(t, DefaultFrequency, s.Frequency)
	assert.Equal(t, DefaultWeeks, s.Weeks)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), s.StartDate)
	require.NotNil(t, s.LongDay)
	assert.Equal(t, time.Sunday, *s.LongDay)
	assert.Equal(t, 68.0, s.Biometrics().WeightKg)

	empty := NewState(analysis.Profile{}, analysis.Biometrics{}, now)
	assert.Equal(t, analysis.TierBeginner, empty.Tier)
}

func TestGoals(t *testing.T) {
	for _, g := range Goals {
		assert.True(t, g.Valid(), g)
		assert.NotEqual(t, string(g), g.Label(), "goal %s has no label", g)
	}
	assert.Equal(t, workout.SportCycling, GoalCyclingFTP.Sport())
	assert.Equal(t, workout.SportRunning, GoalReturnRunning.Sport())
	assert.Equal(t, "Half Marathon plan", State{Goal: GoalHalfMarathon}.PlanName())

	name, ok := GoalHalfMarathon.EstimateName()
	assert.True(t, ok)
	assert.Equal(t, "half", name)
}

func TestParseWeekday(t *testing.T) {
	d, ok := ParseWeekday("Sat")
	assert.True(t, ok)
	assert.Equal(t, time.Saturday, d)

	d, ok = ParseWeekday("wednesday")
	assert.True(t, ok)
	assert.Equal(t, time.Wednesday, d)

	_, ok = ParseWeekday("someday")
	assert.False(t, ok)
}
