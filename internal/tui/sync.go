package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"endurance-planner/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	syncing     bool
	progress    chan service.SyncProgress
	last        service.SyncProgress
	result      *service.SyncResult
	err         error
	done        bool
}

// NewSyncModel creates a new sync model
func NewSyncModel(ss *service.SyncService) SyncModel {
	return SyncModel{
		syncService: ss,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg service.SyncProgress

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		m.last = service.SyncProgress(msg)
		return m, waitForProgress(m.progress)

	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if !m.syncing {
			switch msg.String() {
			case "enter", "s":
				m.syncing = true
				m.done = false
				m.err = nil
				m.result = nil
				m.last = service.SyncProgress{}
				m.progress = make(chan service.SyncProgress, 16)
				return m, tea.Batch(m.runSync(m.progress), waitForProgress(m.progress))
			}
		}
	}
	return m, nil
}

func (m SyncModel) runSync(ch chan service.SyncProgress) tea.Cmd {
	ss := m.syncService
	return func() tea.Msg {
		result, err := ss.SyncAll(context.Background(), ch)
		return SyncDoneMsg{Result: result, Err: err}
	}
}

// waitForProgress reads one update; SyncAll closes the channel when it returns
func waitForProgress(ch chan service.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return syncProgressMsg(p)
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Strava Sync")
	sections = append(sections, title)

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to see your updated profile"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, m.renderProgress())
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This will sync your Strava data:")
	lines = append(lines, "")
	lines = append(lines, "  1. Update your athlete details")
	lines = append(lines, "  2. Fetch activities since the last sync")
	lines = append(lines, "")

	short, daily := m.syncService.RateLimitStatus()
	lines = append(lines, statusStyle.Render(fmt.Sprintf("  API requests left: %d (15min), %s (daily)", short, humanize.Comma(int64(daily)))))
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  Syncing with Strava...")
	lines = append(lines, "")
	switch m.last.Phase {
	case "activities":
		lines = append(lines, fmt.Sprintf("  Activities fetched: %s, stored: %s",
			humanize.Comma(int64(m.last.Fetched)), humanize.Comma(int64(m.last.Stored))))
	default:
		lines = append(lines, "  Fetching athlete details")
	}
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  This may take a moment..."))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	var lines []string

	if m.result == nil {
		return ""
	}

	r := m.result
	lines = append(lines, "")

	if r.ActivitiesStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %s activities synced", humanize.Comma(int64(r.ActivitiesStored)))))
	} else {
		lines = append(lines, statusStyle.Render("  No new activities"))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d activities could not be stored", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
