package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/service"
	"endurance-planner/internal/wizard"

	tea "github.com/charmbracelet/bubbletea"
)

// ProfileModel shows the athlete's performance profile
type ProfileModel struct {
	profiles  *service.ProfileService
	athleteID string
	units     Units
	data      *service.AthleteProfile
	loading   bool
	err       error
}

// NewProfileModel creates a new profile model
func NewProfileModel(ps *service.ProfileService, athleteID string, units Units) ProfileModel {
	return ProfileModel{
		profiles:  ps,
		athleteID: athleteID,
		units:     units,
		loading:   true,
	}
}

// Init initializes the profile screen
func (m ProfileModel) Init() tea.Cmd {
	return m.load
}

type profileLoadedMsg struct {
	data *service.AthleteProfile
	err  error
}

func (m ProfileModel) load() tea.Msg {
	p, err := m.profiles.Analyze(context.Background(), m.athleteID)
	if err != nil {
		return profileLoadedMsg{err: err}
	}
	return profileLoadedMsg{data: &p}
}

// Update handles messages
func (m ProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.profiles.Invalidate(m.athleteID)
			m.loading = true
			return m, m.load
		}
	}
	return m, nil
}

// View renders the profile screen
func (m ProfileModel) View() string {
	if m.loading {
		return "\n  Analyzing training history..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.data == nil {
		return "\n  No profile yet. Press 's' to sync with Strava."
	}

	p := m.data.Profile
	var sections []string

	sections = append(sections, m.renderTier(p))

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPerformanceCard(p), "  ", m.renderTrainingCard(p))
	sections = append(sections, top)
	sections = append(sections, m.renderEstimates(p))

	footer := fmt.Sprintf("Based on %s activities, computed %s. Press 'r' to recompute, '2' to create a plan.",
		humanize.Comma(int64(p.SampleCount)), humanize.Time(p.ComputedAt))
	sections = append(sections, statusStyle.Render(footer))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ProfileModel) renderTier(p analysis.Profile) string {
	tier := tierStyle(p.Tier).Render(string(p.Tier))
	return titleStyle.Render("Athlete level: ") + tier + helpDescStyle.Render(" ("+tierSourceLabel(p.TierSource)+")")
}

func (m ProfileModel) renderPerformanceCard(p analysis.Profile) string {
	lines := []string{
		RenderMetric("Sustained best", m.units.FormatPace(p.SustainedBestPace), p.EffortClass.String()),
		RenderMetric("Average pace", m.units.FormatPace(p.AveragePace), ""),
		RenderMetric("Average HR", bpm(p.AvgHeartRate), ""),
		RenderMetric("Max HR", bpm(p.SuggestedMaxHeartRate), "observed "+bpm(p.ObservedMaxHeartRate)),
	}
	return card("Performance", lines, 44)
}

func (m ProfileModel) renderTrainingCard(p analysis.Profile) string {
	lines := []string{
		RenderMetric("Sessions / week", fmt.Sprintf("%.2f", p.WeeklyFrequency), ""),
		RenderMetric("Volume / week", m.units.FormatKm(p.WeeklyDistanceKm), fmt.Sprintf("over %d weeks", p.StatsWeeks)),
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", p.Load.CTL), ""),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", p.Load.ATL), ""),
		RenderMetric("Form (TSB)", fmt.Sprintf("%+.0f", p.Load.TSB), analysis.FormDescription(p.Load.TSB)),
	}
	return card("Training", lines, 52)
}

func (m ProfileModel) renderEstimates(p analysis.Profile) string {
	if !p.HasPaceData() {
		return card("Race estimates", []string{helpDescStyle.Render("Not enough running data with pace to estimate race times.")}, 98)
	}

	var lines []string
	for _, e := range p.RaceEstimates {
		lines = append(lines, fmt.Sprintf("%-14s %10s   %s   %s",
			analysis.GetTargetLabel(e.Name),
			wizard.FormatClock(e.Seconds),
			m.units.FormatPace(e.PaceMinPerKm()),
			helpDescStyle.Render(e.Confidence+" confidence"),
		))
	}
	return card("Race estimates", lines, 98)
}

func card(title string, lines []string, width int) string {
	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, cardTitleStyle.Render(title), content))
}

func bpm(v int) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d bpm", v)
}

func tierSourceLabel(source string) string {
	switch source {
	case analysis.TierSourceRemote:
		return "from coaching service"
	case analysis.TierSourceCohort:
		return "compared with other athletes"
	case analysis.TierSourceSelf:
		return "self reported"
	default:
		return "from your training history"
	}
}
