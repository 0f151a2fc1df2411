package tui

import (
	"endurance-planner/internal/config"
	"endurance-planner/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenProfile Screen = iota
	ScreenWizard
	ScreenPlan
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	profile    ProfileModel
	wizard     WizardModel
	plan       PlanModel
	syncScreen SyncModel
	help       HelpModel

	// Services
	profiles  *service.ProfileService
	plans     *service.PlanService
	syncs     *service.SyncService
	athleteID string
	units     Units

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies
func NewApp(athleteID string, display config.DisplayConfig, profiles *service.ProfileService, plans *service.PlanService, syncs *service.SyncService) *App {
	units := NewUnits(display)
	return &App{
		screen:     ScreenProfile,
		profiles:   profiles,
		plans:      plans,
		syncs:      syncs,
		athleteID:  athleteID,
		units:      units,
		profile:    NewProfileModel(profiles, athleteID, units),
		wizard:     NewWizardModel(profiles, plans, athleteID),
		plan:       NewPlanModel(plans, athleteID, 0, 0),
		syncScreen: NewSyncModel(syncs),
		help:       NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.profile.Init()
}

// captured reports whether the current screen consumes plain keys itself
func (a *App) captured() bool {
	switch a.screen {
	case ScreenSync:
		return a.syncScreen.syncing
	case ScreenWizard:
		return a.wizard.Typing()
	}
	return false
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.captured() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				a.screen = ScreenProfile
				a.profile = NewProfileModel(a.profiles, a.athleteID, a.units)
				return a, a.profile.Init()
			case "2":
				a.screen = ScreenWizard
				a.wizard = NewWizardModel(a.profiles, a.plans, a.athleteID)
				return a, a.wizard.Init()
			case "3":
				a.screen = ScreenPlan
				a.plan = NewPlanModel(a.plans, a.athleteID, a.width, a.height)
				return a, a.plan.Init()
			case "4", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to sync screen when already there
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case PlanCommittedMsg:
		if msg.Err == nil {
			a.status = "Plan created: " + msg.Result.Plan.Name
		}

	case SyncCompleteMsg:
		a.status = "Sync finished"
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenProfile:
		var m tea.Model
		m, cmd = a.profile.Update(msg)
		a.profile = m.(ProfileModel)
	case ScreenWizard:
		var m tea.Model
		m, cmd = a.wizard.Update(msg)
		a.wizard = m.(WizardModel)
	case ScreenPlan:
		var m tea.Model
		m, cmd = a.plan.Update(msg)
		a.plan = m.(PlanModel)
	case ScreenSync:
		var m tea.Model
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenProfile:
		content = a.profile.View()
	case ScreenWizard:
		content = a.wizard.View()
	case ScreenPlan:
		content = a.plan.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Endurance Training Planner")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Profile", ScreenProfile},
		{"2", "New plan", ScreenWizard},
		{"3", "Plan", ScreenPlan},
		{"4", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
