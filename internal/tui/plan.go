package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/service"
	"endurance-planner/internal/workout"
)

// PlanModel shows the athlete's active plan one week at a time
type PlanModel struct {
	plans     *service.PlanService
	athleteID string
	detail    *service.PlanDetail
	week      int
	confirm   string // "cancel" or "complete" while waiting for y
	viewport  viewport.Model
	loading   bool
	err       error
	status    string
	width     int
	height    int
	ready     bool
}

// NewPlanModel creates a new plan model
func NewPlanModel(plans *service.PlanService, athleteID string, width, height int) PlanModel {
	m := PlanModel{
		plans:     plans,
		athleteID: athleteID,
		loading:   true,
		width:     width,
		height:    height,
	}
	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}
	return m
}

// Init initializes the plan screen
func (m PlanModel) Init() tea.Cmd {
	return m.load
}

type planLoadedMsg struct {
	detail *service.PlanDetail
	err    error
}

type planStatusMsg struct {
	action string
	err    error
}

func (m PlanModel) load() tea.Msg {
	d, err := m.plans.ActivePlan(context.Background(), m.athleteID)
	if errors.Is(err, service.ErrPlanNotFound) {
		return planLoadedMsg{}
	}
	return planLoadedMsg{detail: d, err: err}
}

func (m PlanModel) setStatus(action string) tea.Cmd {
	plans, id := m.plans, m.detail.Plan.ID
	return func() tea.Msg {
		var err error
		if action == "cancel" {
			err = plans.Cancel(context.Background(), id)
		} else {
			err = plans.Complete(context.Background(), id)
		}
		return planStatusMsg{action: action, err: err}
	}
}

// Update handles messages
func (m PlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case planLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.detail = msg.detail
		m.week = m.currentWeek(time.Now())
		m.refresh()

	case planStatusMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = "Plan " + map[string]string{"cancel": "cancelled", "complete": "completed"}[msg.action]
		m.loading = true
		return m, m.load

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		m.refresh()

	case tea.KeyMsg:
		if m.confirm != "" {
			action := m.confirm
			m.confirm = ""
			if msg.String() == "y" && m.detail != nil {
				return m, m.setStatus(action)
			}
			m.status = ""
			return m, nil
		}

		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.load
		case "[", "p":
			if m.week > 1 {
				m.week--
				m.refresh()
			}
			return m, nil
		case "]", "n":
			if m.detail != nil && m.week < m.detail.Plan.Weeks {
				m.week++
				m.refresh()
			}
			return m, nil
		case "x":
			if m.detail != nil {
				m.confirm = "cancel"
				m.status = "Cancel this plan? (y/n)"
			}
			return m, nil
		case "m":
			if m.detail != nil {
				m.confirm = "complete"
				m.status = "Mark this plan completed? (y/n)"
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// currentWeek is the plan week containing now, clamped to the plan
func (m PlanModel) currentWeek(now time.Time) int {
	if m.detail == nil {
		return 1
	}
	days := int(now.Sub(m.detail.Plan.StartDate).Hours() / 24)
	week := days/7 + 1
	return min(max(week, 1), m.detail.Plan.Weeks)
}

func (m *PlanModel) refresh() {
	if m.ready && m.detail != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

// View renders the plan screen
func (m PlanModel) View() string {
	if m.loading {
		return "\n  Loading plan..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.detail == nil {
		msg := "\n  No active plan. Press 2 to create one."
		if m.status != "" {
			msg = "\n  " + m.status + "." + msg
		}
		return msg
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := "  [/]: week  j/k: scroll  x: cancel plan  m: mark complete  r: refresh"
	if m.status != "" {
		footer = "  " + warningStyle.Render(m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), statusStyle.Render(footer))
}

func (m PlanModel) renderContent() string {
	p := m.detail.Plan
	var sections []string

	header := fmt.Sprintf("%s  %s", titleStyle.Render(p.Name), tierStyle(analysis.Tier(p.Tier)).Render(p.Tier))
	sections = append(sections, header)

	info := []string{
		RenderMetric("Status", string(p.Status), ""),
		RenderMetric("Dates", p.StartDate.Format("Jan 2")+" - "+p.EndDate.Format("Jan 2, 2006"), fmt.Sprintf("%d weeks", p.Weeks)),
		RenderMetric("Created", humanize.Time(p.CreatedAt), ""),
	}
	if p.TargetEventDate != nil {
		info = append(info, RenderMetric("Event", p.TargetEventDate.Format("Mon Jan 2, 2006"), humanize.Time(*p.TargetEventDate)))
	}
	if p.TargetTimeMinutes != nil {
		info = append(info, RenderMetric("Target time", formatMinutes(*p.TargetTimeMinutes), ""))
	}
	zoneLines := make([]string, len(p.Zones.Bands))
	for i, b := range p.Zones.Bands {
		zoneLines[i] = fmt.Sprintf("%-16s %s", b.Label, p.Zones.Describe(b.Name))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		card("Plan", info, 56), "  ", card("Zones", zoneLines, 44)))

	sections = append(sections, m.renderStressChart())
	sections = append(sections, m.renderWeek())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m PlanModel) renderStressChart() string {
	stress := m.detail.WeeklyStress()
	if len(stress) < 2 {
		return ""
	}
	data := make([]float64, len(stress))
	for i, s := range stress {
		data[i] = float64(s)
	}
	chart := asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(0),
	)
	return cardStyle.Render(cardTitleStyle.Render("Weekly stress") + "\n" + chart)
}

func (m PlanModel) renderWeek() string {
	var focus string
	for _, ph := range m.detail.Phases {
		if ph.Week == m.week {
			focus = fmt.Sprintf("%s, target stress %d", ph.Focus, ph.TargetStress)
		}
	}

	var rows []string
	header := fmt.Sprintf("%-11s %-28s %8s %7s  %s", "Date", "Session", "Duration", "Stress", "Target")
	rows = append(rows, tableHeaderStyle.Render(header))

	var total int
	for _, w := range m.detail.Workouts {
		if w.Week != m.week {
			continue
		}
		total += w.Stress
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-11s %-28s %8s %7d  %s",
			w.Date.Format("Mon Jan 2"),
			truncate(w.Title, 28),
			fmt.Sprintf("%d min", w.DurationMinutes),
			w.Stress,
			w.TargetZone,
		)))
		for _, seg := range w.Segments {
			rows = append(rows, helpDescStyle.Render("             "+describeSegment(seg)))
		}
	}
	rows = append(rows, statusStyle.Render(fmt.Sprintf("Week total stress %d", total)))

	title := fmt.Sprintf("Week %d of %d", m.week, m.detail.Plan.Weeks)
	if focus != "" {
		title += " (" + focus + ")"
	}
	return card(title, rows, 98)
}

func describeSegment(s workout.Segment) string {
	var b strings.Builder
	b.WriteString(string(s.Kind))
	if s.Kind == workout.SegmentInterval && s.Repeats > 1 {
		fmt.Fprintf(&b, " %dx%d min, %d min rest", s.Repeats, s.Minutes, s.RestMinutes)
	} else {
		fmt.Fprintf(&b, " %d min", s.Minutes)
	}
	if s.Target != "" {
		b.WriteString(" @ " + s.Target)
	} else if s.Zone != "" {
		b.WriteString(" @ " + s.Zone)
	}
	return b.String()
}

func formatMinutes(minutes float64) string {
	secs := int(minutes*60 + 0.5)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
