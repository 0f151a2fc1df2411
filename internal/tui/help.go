package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"1", "Profile"},
		{"2", "New plan"},
		{"3", "Active plan"},
		{"4 or s", "Sync screen"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Close help"},
	}))

	sections = append(sections, m.renderSection("Profile", []keyHelp{
		{"r", "Recompute from synced activities"},
	}))

	sections = append(sections, m.renderSection("New Plan", []keyHelp{
		{"j / k", "Move between choices"},
		{"space", "Toggle a day or the declaration"},
		{"y / n", "Answer a health question"},
		{"tab", "Next text field"},
		{"enter", "Confirm step, generate on the last one"},
		{"esc", "Previous step"},
	}))

	sections = append(sections, m.renderSection("Active Plan", []keyHelp{
		{"[ / ]", "Previous / next week"},
		{"j / k", "Scroll"},
		{"x", "Cancel plan"},
		{"m", "Mark plan completed"},
	}))

	sections = append(sections, m.renderSection("Sync Screen", []keyHelp{
		{"s / enter", "Start sync"},
	}))

	sections = append(sections, m.renderMetricsHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Terms"))
	lines = append(lines, "")

	terms := []struct {
		name string
		desc string
	}{
		{"Sustained best", "Median pace of your longest qualifying efforts."},
		{"CTL (Fitness)", "Chronic training load, 42 day average of TRIMP."},
		{"ATL (Fatigue)", "Acute training load, 7 day average of TRIMP."},
		{"TSB (Form)", "Training stress balance = CTL - ATL. Positive = fresh."},
		{"Stress", "Planned load of a session: its hourly stress rate prorated over its length."},
		{"Recovery / Taper", "Lighter weeks that follow each block and close the plan."},
	}

	for _, t := range terms {
		lines = append(lines, "  "+helpKeyStyle.Render(t.name))
		lines = append(lines, "  "+helpDescStyle.Render(t.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
