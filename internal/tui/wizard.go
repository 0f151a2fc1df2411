package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/service"
	"endurance-planner/internal/wizard"
)

const dateInputLayout = "2006-01-02"

// WizardModel walks the athlete through plan creation
type WizardModel struct {
	profiles  *service.ProfileService
	plans     *service.PlanService
	athleteID string

	profile *service.AthleteProfile
	wiz     *wizard.Wizard
	initial analysis.Tier

	// list steps
	cursor int
	// text steps
	inputs []textinput.Model
	labels []string
	keys   []string
	focus  int

	loading    bool
	committing bool
	err        error
	result     *service.CommitResult
}

// NewWizardModel creates a new plan wizard
func NewWizardModel(ps *service.ProfileService, plans *service.PlanService, athleteID string) WizardModel {
	return WizardModel{
		profiles:  ps,
		plans:     plans,
		athleteID: athleteID,
		loading:   true,
	}
}

type wizardLoadedMsg struct {
	profile *service.AthleteProfile
	err     error
}

// PlanCommittedMsg is sent when the wizard produced an active plan
type PlanCommittedMsg struct {
	Result *service.CommitResult
	Err    error
}

// Init loads the profile the wizard is seeded from
func (m WizardModel) Init() tea.Cmd {
	ps, id := m.profiles, m.athleteID
	return func() tea.Msg {
		p, err := ps.Analyze(context.Background(), id)
		if err != nil {
			return wizardLoadedMsg{err: err}
		}
		return wizardLoadedMsg{profile: &p}
	}
}

// Typing reports whether a text field has focus, so global keys pass through
func (m WizardModel) Typing() bool {
	return m.wiz != nil && len(m.inputs) > 0 && !m.committing
}

// Update handles messages
func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wizardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.profile = msg.profile
		m.wiz = wizard.New(wizard.NewState(msg.profile.Profile, msg.profile.Biometrics, time.Now()))
		m.initial = m.wiz.State().Tier
		m.enterStep()
		return m, nil

	case PlanCommittedMsg:
		m.committing = false
		m.err = msg.Err
		m.result = msg.Result
		return m, nil

	case tea.KeyMsg:
		if m.wiz == nil || m.committing || m.result != nil {
			return m, nil
		}
		return m.handleKey(msg)
	}

	if len(m.inputs) > 0 {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m WizardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.wiz.Back() {
			m.err = nil
			m.enterStep()
		}
		return m, nil
	case "enter":
		return m.advance()
	}

	if len(m.inputs) > 0 {
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, textinput.Blink
		case "shift+tab", "up":
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, textinput.Blink
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	n := len(m.options())
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case " ", "space", "x":
		m.toggle()
	case "y":
		m.answer(true)
	case "n":
		m.answer(false)
	}
	return m, nil
}

// advance applies the current step and moves on. On the last step it commits.
func (m WizardModel) advance() (tea.Model, tea.Cmd) {
	if m.wiz.Done() {
		m.committing = true
		m.err = nil
		return m, m.commit()
	}

	if err := m.apply(); err != nil {
		m.err = err
		return m, nil
	}
	if err := m.wiz.Next(); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.enterStep()
	return m, nil
}

func (m WizardModel) commit() tea.Cmd {
	plans := m.plans
	req := service.CommitRequest{
		AthleteID: m.athleteID,
		State:     m.wiz.State(),
		Profile:   m.profile.Profile,
	}
	return func() tea.Msg {
		res, err := plans.Commit(context.Background(), req)
		return PlanCommittedMsg{Result: res, Err: err}
	}
}

// options lists the choices of a list step
func (m WizardModel) options() []string {
	st := m.wiz.State()
	switch m.wiz.Current() {
	case wizard.StepGoal:
		out := make([]string, len(wizard.Goals))
		for i, g := range wizard.Goals {
			out[i] = g.Label()
		}
		return out
	case wizard.StepLevel:
		out := make([]string, len(analysis.Tiers))
		for i, t := range analysis.Tiers {
			out[i] = string(t)
			if t == m.initial {
				out[i] += " (suggested)"
			}
		}
		return out
	case wizard.StepFrequency:
		out := make([]string, 7)
		for i := range out {
			out[i] = fmt.Sprintf("%d sessions", i+1)
		}
		out[0] = "1 session"
		return out
	case wizard.StepAvailableDays:
		out := make([]string, 7)
		for i := range out {
			d := weekdayAt(i)
			out[i] = checkbox(st.HasDay(d)) + " " + d.String()
		}
		return out
	case wizard.StepLongDay:
		out := make([]string, len(st.Days))
		for i, d := range sortedDays(st.Days) {
			out[i] = d.String()
		}
		return out
	case wizard.StepHealth:
		out := make([]string, 0, len(wizard.HealthQuestions)+1)
		for i, q := range wizard.HealthQuestions {
			out = append(out, answerLabel(st.Health.Answers[i])+" "+q)
		}
		return append(out, checkbox(st.Health.Accepted)+" I declare the answers above are true")
	}
	return nil
}

// enterStep prepares the cursor or text fields of the current step
func (m *WizardModel) enterStep() {
	st := m.wiz.State()
	m.inputs, m.labels, m.keys = nil, nil, nil
	m.cursor = 0

	switch m.wiz.Current() {
	case wizard.StepGoal:
		m.cursor = max(indexOf(wizard.Goals, st.Goal), 0)
	case wizard.StepLevel:
		m.cursor = max(st.Tier.Rank(), 0)
	case wizard.StepFrequency:
		m.cursor = max(st.Frequency-1, 0)
	case wizard.StepLongDay:
		if st.LongDay != nil {
			m.cursor = max(indexOf(sortedDays(st.Days), *st.LongDay), 0)
		}
	case wizard.StepBiometrics:
		birth := ""
		if st.BirthDate != nil {
			birth = st.BirthDate.Format(dateInputLayout)
		}
		m.addInput("birth_date", "Birth date (YYYY-MM-DD)", birth)
		m.addInput("gender", "Gender (male/female)", st.Gender)
		m.addInput("weight_kg", "Weight kg (optional)", formatOptional(st.WeightKg))
	case wizard.StepFTP:
		m.addInput("ftp_watts", "FTP watts (empty to estimate)", formatOptional(st.FTPWatts))
	case wizard.StepEstimatedTimes:
		for _, t := range analysis.PredictionTargets {
			m.addInput(t.Name, analysis.GetTargetLabel(t.Name)+" time", st.EstimatedTimes[t.Name])
		}
	case wizard.StepStartDate:
		m.addInput("start_date", "Start date (YYYY-MM-DD)", st.StartDate.Format(dateInputLayout))
	case wizard.StepDuration:
		m.addInput("weeks", "Plan length in weeks", strconv.Itoa(st.Weeks))
	case wizard.StepRaceDate:
		race := ""
		if st.RaceDate != nil {
			race = st.RaceDate.Format(dateInputLayout)
		}
		m.addInput("race_date", "Event date (YYYY-MM-DD, empty for none)", race)
	case wizard.StepGoalTime:
		m.addInput("goal_time", "Goal time (H:MM:SS, empty to derive)", st.GoalTime)
	}
	m.setFocus(0)
}

func (m *WizardModel) addInput(key, label, value string) {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 24
	ti.SetValue(value)
	m.inputs = append(m.inputs, ti)
	m.labels = append(m.labels, label)
	m.keys = append(m.keys, key)
}

func (m *WizardModel) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m WizardModel) value(key string) string {
	for i, k := range m.keys {
		if k == key {
			return strings.TrimSpace(m.inputs[i].Value())
		}
	}
	return ""
}

// apply writes the selection or the text fields into the wizard state
func (m *WizardModel) apply() error {
	cursor := m.cursor
	switch m.wiz.Current() {
	case wizard.StepGoal:
		m.wiz.Update(func(s *wizard.State) { s.Goal = wizard.Goals[cursor] })
	case wizard.StepLevel:
		tier := analysis.Tiers[cursor]
		m.wiz.Update(func(s *wizard.State) {
			s.Tier = tier
			s.TierAdjusted = tier != m.initial
		})
	case wizard.StepFrequency:
		m.wiz.Update(func(s *wizard.State) { s.Frequency = cursor + 1 })
	case wizard.StepLongDay:
		days := sortedDays(m.wiz.State().Days)
		if cursor < len(days) {
			d := days[cursor]
			m.wiz.Update(func(s *wizard.State) { s.LongDay = &d })
		}
	case wizard.StepBiometrics:
		birth, err := parseOptionalDate(m.value("birth_date"))
		if err != nil {
			return fmt.Errorf("birth date: %w", err)
		}
		weight, err := parseOptionalFloat(m.value("weight_kg"))
		if err != nil {
			return fmt.Errorf("weight: %w", err)
		}
		gender := strings.ToLower(m.value("gender"))
		m.wiz.Update(func(s *wizard.State) {
			s.BirthDate = birth
			s.Gender = gender
			s.WeightKg = weight
		})
	case wizard.StepFTP:
		ftp, err := parseOptionalFloat(m.value("ftp_watts"))
		if err != nil {
			return fmt.Errorf("ftp: %w", err)
		}
		m.wiz.Update(func(s *wizard.State) { s.FTPWatts = ftp })
	case wizard.StepEstimatedTimes:
		times := make(map[string]string, len(m.keys))
		for _, k := range m.keys {
			times[k] = m.value(k)
		}
		m.wiz.Update(func(s *wizard.State) {
			for k, v := range times {
				if s.EstimatedTimes[k] != v {
					s.TimesAdjusted = true
				}
			}
			s.EstimatedTimes = times
		})
	case wizard.StepStartDate:
		start, err := parseOptionalDate(m.value("start_date"))
		if err != nil || start == nil {
			return errors.New("start date: use YYYY-MM-DD")
		}
		m.wiz.Update(func(s *wizard.State) { s.StartDate = *start })
	case wizard.StepDuration:
		weeks, err := strconv.Atoi(m.value("weeks"))
		if err != nil {
			return errors.New("weeks: enter a whole number")
		}
		m.wiz.Update(func(s *wizard.State) { s.Weeks = weeks })
	case wizard.StepRaceDate:
		race, err := parseOptionalDate(m.value("race_date"))
		if err != nil {
			return fmt.Errorf("event date: %w", err)
		}
		m.wiz.Update(func(s *wizard.State) {
			s.HasRaceDate = race != nil
			s.RaceDate = race
		})
	case wizard.StepGoalTime:
		goal := m.value("goal_time")
		m.wiz.Update(func(s *wizard.State) { s.GoalTime = goal })
	}
	return nil
}

// toggle flips a day or the health acceptance under the cursor
func (m *WizardModel) toggle() {
	cursor := m.cursor
	switch m.wiz.Current() {
	case wizard.StepAvailableDays:
		d := weekdayAt(cursor)
		m.wiz.Update(func(s *wizard.State) {
			if s.HasDay(d) {
				s.Days = removeDay(s.Days, d)
				if s.LongDay != nil && *s.LongDay == d {
					s.LongDay = nil
				}
			} else {
				s.Days = append(s.Days, d)
			}
		})
	case wizard.StepHealth:
		if cursor == len(wizard.HealthQuestions) {
			m.wiz.Update(func(s *wizard.State) { s.Health.Accepted = !s.Health.Accepted })
		}
	}
}

func (m *WizardModel) answer(yes bool) {
	if m.wiz.Current() != wizard.StepHealth {
		return
	}
	cursor := m.cursor
	m.wiz.Update(func(s *wizard.State) {
		if cursor == len(wizard.HealthQuestions) {
			s.Health.Accepted = yes
			return
		}
		s.Health.Answer(cursor, yes)
	})
	if m.cursor < len(wizard.HealthQuestions) {
		m.cursor++
	}
}

// View renders the wizard
func (m WizardModel) View() string {
	if m.loading {
		return "\n  Loading profile..."
	}
	if m.wiz == nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.committing {
		return "\n  Generating plan..."
	}
	if m.result != nil {
		return m.renderCommitted()
	}

	pos, total := m.wiz.Position()
	step, _ := wizard.Lookup(m.wiz.Current())
	var sections []string
	sections = append(sections, titleStyle.Render(fmt.Sprintf("New plan: %s", step.Title))+
		helpDescStyle.Render(fmt.Sprintf("  step %d of %d", pos, total)))
	sections = append(sections, RenderProgressBar(float64(pos)/float64(total), 40))

	switch {
	case len(m.inputs) > 0:
		sections = append(sections, m.renderInputs())
	case m.wiz.Current() == wizard.StepSummary || m.wiz.Current() == wizard.StepGenerate:
		sections = append(sections, m.renderSummary())
	default:
		sections = append(sections, m.renderOptions())
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(m.err.Error()))
		if errors.Is(m.err, service.ErrActivePlanExists) {
			sections = append(sections, helpDescStyle.Render("Cancel or complete the current plan on screen 3 first."))
		}
	}
	sections = append(sections, statusStyle.Render(m.keyHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m WizardModel) renderOptions() string {
	var lines []string
	for i, opt := range m.options() {
		if i == m.cursor {
			lines = append(lines, tableSelectedStyle.Render("> "+opt))
		} else {
			lines = append(lines, tableRowStyle.Render("  "+opt))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m WizardModel) renderInputs() string {
	var lines []string
	for i, in := range m.inputs {
		lines = append(lines, metricLabelStyle.Width(40).Render(m.labels[i])+in.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m WizardModel) renderSummary() string {
	st := m.wiz.State()
	lines := []string{
		RenderMetric("Goal", st.Goal.Label(), ""),
		RenderMetric("Level", string(st.Tier), ""),
		RenderMetric("Sessions / week", strconv.Itoa(st.Frequency), ""),
		RenderMetric("Days", formatDays(sortedDays(st.Days)), ""),
	}
	if st.LongDay != nil {
		lines = append(lines, RenderMetric("Long session", st.LongDay.String(), ""))
	}
	lines = append(lines,
		RenderMetric("Start", st.StartDate.Format("Mon Jan 2, 2006"), ""),
		RenderMetric("Length", fmt.Sprintf("%d weeks", st.Weeks), ""),
	)
	if st.RaceDate != nil {
		lines = append(lines, RenderMetric("Event", st.RaceDate.Format("Mon Jan 2, 2006"), ""))
	}
	if target, ok := wizard.DeriveTargetTime(st, m.profile.Profile.RaceEstimates); ok {
		lines = append(lines, RenderMetric("Target time", wizard.FormatClock(target.Seconds), string(target.Source)))
	}
	if m.wiz.Done() {
		lines = append(lines, "", successStyle.Render("Press enter to generate the plan."))
	}
	return card("Summary", lines, 70)
}

func (m WizardModel) renderCommitted() string {
	p := m.result.Plan
	lines := []string{
		RenderMetric("Plan", p.Name, ""),
		RenderMetric("Dates", p.StartDate.Format("Jan 2")+" - "+p.EndDate.Format("Jan 2, 2006"), ""),
		RenderMetric("Sessions", strconv.Itoa(len(m.result.Generated.Workouts)), ""),
	}
	if m.result.Target != nil {
		lines = append(lines, RenderMetric("Target time", wizard.FormatClock(m.result.Target.Seconds), ""))
	}
	lines = append(lines, "", successStyle.Render("Plan is active. Press 3 to view it."))
	return card("Plan created", lines, 70)
}

func (m WizardModel) keyHelp() string {
	items := []string{RenderKeyHelp("enter", "next"), RenderKeyHelp("esc", "back")}
	switch {
	case len(m.inputs) > 0:
		items = append(items, RenderKeyHelp("tab", "next field"))
	case m.wiz.Current() == wizard.StepAvailableDays:
		items = append(items, RenderKeyHelp("space", "toggle day"))
	case m.wiz.Current() == wizard.StepHealth:
		items = append(items, RenderKeyHelp("y/n", "answer"))
	}
	return strings.Join(items, "  ")
}

// weekdayAt lists days Monday first
func weekdayAt(i int) time.Weekday {
	return time.Weekday((i + 1) % 7)
}

func sortedDays(days []time.Weekday) []time.Weekday {
	var out []time.Weekday
	for i := 0; i < 7; i++ {
		d := weekdayAt(i)
		for _, day := range days {
			if day == d {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

func removeDay(days []time.Weekday, d time.Weekday) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, day := range days {
		if day != d {
			out = append(out, day)
		}
	}
	return out
}

func formatDays(days []time.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return strings.Join(names, ", ")
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return -1
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func answerLabel(a *bool) string {
	switch {
	case a == nil:
		return "[ ? ]"
	case *a:
		return "[yes]"
	default:
		return "[no ]"
	}
}

func formatOptional(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("enter a number")
	}
	return v, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateInputLayout, s, time.Local)
	if err != nil {
		return nil, errors.New("use YYYY-MM-DD")
	}
	return &t, nil
}
