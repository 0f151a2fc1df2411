package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/config"
	"endurance-planner/internal/service"
	"endurance-planner/internal/wizard"
)

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testProfile() *service.AthleteProfile {
	return &service.AthleteProfile{
		Profile: analysis.Profile{
			Tier: analysis.TierIntermediate,
			RaceEstimates: analysis.RaceEstimates{
				{Name: "5k", DistanceMeters: 5000, Seconds: 1500, Confidence: "high"},
			},
		},
	}
}

func loadedWizard(t *testing.T) WizardModel {
	t.Helper()
	m := NewWizardModel(nil, nil, "athlete-1")
	next, _ := m.Update(wizardLoadedMsg{profile: testProfile()})
	return next.(WizardModel)
}

func press(m WizardModel, keys ...tea.KeyMsg) WizardModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(WizardModel)
	}
	return m
}

func TestWizardGoalAndLevel(t *testing.T) {
	m := loadedWizard(t)
	if got := m.wiz.Current(); got != wizard.StepGoal {
		t.Fatalf("first step = %s, want goal", got)
	}

	m = press(m, keyDown, keyDown, keyEnter)
	if got := m.wiz.State().Goal; got != wizard.Goal5K {
		t.Errorf("goal = %s, want 5k", got)
	}
	if got := m.wiz.Current(); got != wizard.StepLevel {
		t.Fatalf("step = %s, want level", got)
	}
	if m.cursor != 1 {
		t.Errorf("level cursor = %d, want suggested Intermediate", m.cursor)
	}

	m = press(m, keyUp, keyEnter)
	st := m.wiz.State()
	if st.Tier != analysis.TierBeginner || !st.TierAdjusted {
		t.Errorf("tier = %s adjusted=%v, want Beginner adjusted", st.Tier, st.TierAdjusted)
	}
	if m.wiz.Current() != wizard.StepBiometrics || !m.Typing() {
		t.Errorf("step = %s typing=%v, want biometrics with text input", m.wiz.Current(), m.Typing())
	}
}

func TestWizardBiometricsInput(t *testing.T) {
	m := loadedWizard(t)
	m = press(m, keyDown, keyDown, keyEnter, keyEnter)

	m = press(m, runes("1990-05-01"), keyTab, runes("Female"), keyTab, runes("61.5"), keyEnter)
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	st := m.wiz.State()
	if st.BirthDate == nil || st.BirthDate.Year() != 1990 {
		t.Errorf("birth date = %v", st.BirthDate)
	}
	if st.Gender != "female" || st.WeightKg != 61.5 {
		t.Errorf("gender = %q weight = %v", st.Gender, st.WeightKg)
	}
	if got := m.wiz.Current(); got != wizard.StepEstimatedTimes {
		t.Fatalf("step = %s, want estimated times", got)
	}
	if got := m.value("5k"); got != "25:00" {
		t.Errorf("5k field = %q, want profile estimate 25:00", got)
	}
}

func TestWizardRejectsBadDate(t *testing.T) {
	m := loadedWizard(t)
	m = press(m, keyEnter, keyEnter)

	m = press(m, runes("yesterday"), keyEnter)
	if m.err == nil {
		t.Fatal("expected an error for an unparsable date")
	}
	if got := m.wiz.Current(); got != wizard.StepBiometrics {
		t.Errorf("step = %s, want to stay on biometrics", got)
	}
}

// atHealth returns a wizard whose state satisfies every step before health.
func atHealth(t *testing.T) WizardModel {
	t.Helper()
	m := loadedWizard(t)

	birth := time.Date(1990, 5, 1, 0, 0, 0, 0, time.Local)
	sat := time.Saturday
	m.wiz.Update(func(s *wizard.State) {
		s.Goal = wizard.GoalGeneralFitness
		s.BirthDate = &birth
		s.Gender = "male"
		s.Days = []time.Weekday{time.Monday, time.Wednesday, time.Saturday}
		s.LongDay = &sat
	})
	for m.wiz.Current() != wizard.StepHealth {
		if err := m.wiz.Next(); err != nil {
			t.Fatalf("advancing from %s: %v", m.wiz.Current(), err)
		}
	}
	m.enterStep()
	return m
}

func TestWizardHealthDeclaration(t *testing.T) {
	m := atHealth(t)

	no := runes("n")
	m = press(m, no, no, no, no, no, no, no)
	if m.cursor != len(wizard.HealthQuestions) {
		t.Fatalf("cursor = %d, want declaration row", m.cursor)
	}
	m = press(m, keySpace, keyEnter)
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if !m.wiz.Done() {
		t.Errorf("step = %s, want generate", m.wiz.Current())
	}
}

func TestWizardHealthRiskBlocks(t *testing.T) {
	m := atHealth(t)

	m = press(m, runes("y"))
	for i := 1; i < len(wizard.HealthQuestions); i++ {
		m = press(m, runes("n"))
	}
	m = press(m, runes("y"), keyEnter)

	var verr *wizard.ValidationError
	if !errors.As(m.err, &verr) {
		t.Fatalf("err = %v, want validation error", m.err)
	}
	if m.wiz.Current() != wizard.StepHealth {
		t.Errorf("step = %s, want to stay on health", m.wiz.Current())
	}
}

func TestAppTypingKeepsNumberKeys(t *testing.T) {
	a := NewApp("athlete-1", config.DisplayConfig{}, nil, nil, nil)

	a.Update(runes("2"))
	if a.screen != ScreenWizard {
		t.Fatalf("screen = %d, want wizard", a.screen)
	}
	a.Update(wizardLoadedMsg{profile: testProfile()})
	a.Update(keyEnter)
	a.Update(keyEnter)
	if !a.wizard.Typing() {
		t.Fatalf("wizard not on a text step: %s", a.wizard.wiz.Current())
	}

	a.Update(runes("1"))
	if a.screen != ScreenWizard {
		t.Errorf("typing switched screen to %d", a.screen)
	}
	if got := a.wizard.value("birth_date"); got != "1" {
		t.Errorf("birth date field = %q, want 1", got)
	}
}

func TestAppHelpToggle(t *testing.T) {
	a := NewApp("athlete-1", config.DisplayConfig{}, nil, nil, nil)

	a.Update(runes("?"))
	if a.screen != ScreenHelp {
		t.Fatalf("screen = %d, want help", a.screen)
	}
	a.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if a.screen != ScreenProfile {
		t.Errorf("screen = %d, want profile after esc", a.screen)
	}
}

func TestSortedDays(t *testing.T) {
	got := sortedDays([]time.Weekday{time.Sunday, time.Wednesday, time.Monday})
	want := []time.Weekday{time.Monday, time.Wednesday, time.Sunday}
	if len(got) != len(want) {
		t.Fatalf("sortedDays() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sortedDays()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if formatDays(got) != "Mon, Wed, Sun" {
		t.Errorf("formatDays() = %q", formatDays(got))
	}
}
