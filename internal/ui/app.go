package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/refdesk/refdesk/internal/api"
	"github.com/refdesk/refdesk/internal/session"
	"github.com/refdesk/refdesk/internal/ui/views"
	"go.uber.org/zap"
)

// Currently active view
type View int

const (
	ViewRoster View = iota
	ViewTasks
	ViewBalance
	ViewProfile
)

// Deps carries everything the views need. Identity is the logged-in role's
// identifier from the session store; TaskID is only set for employees.
type Deps struct {
	Client   *api.Client
	Store    *session.Store
	Log      *zap.Logger
	Role     session.Role
	Identity string
	TaskID   string
}

type App struct {
	deps        Deps
	currentView View

	rosterView  *views.RosterView
	tasksView   *views.TaskAdminView
	balanceView *views.BalanceView
	profileView *views.ProfileView

	width  int
	height int
}

// NewApp creates the application rooted at the view for the given role.
func NewApp(deps Deps) *App {
	a := &App{deps: deps}

	switch deps.Role {
	case session.RoleAdmin:
		a.currentView = ViewTasks
		a.tasksView = views.NewTaskAdminView(deps.Client, deps.Log)
	case session.RoleUser:
		a.currentView = ViewProfile
		a.profileView = views.NewProfileView(deps.Client, deps.Identity, deps.Log)
	default:
		a.currentView = ViewRoster
		a.rosterView = views.NewRosterView(deps.Client, deps.TaskID, deps.Identity, deps.Log)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	switch a.currentView {
	case ViewTasks:
		return a.tasksView.Init()
	case ViewProfile:
		return a.profileView.Init()
	default:
		return a.rosterView.Init()
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Fall through to the active view below so it picks up the size.

	case views.ShowBalance:
		a.currentView = ViewBalance
		a.balanceView = views.NewBalanceView(a.deps.Client, a.deps.Log)
		return a, tea.Batch(
			a.balanceView.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)

	case views.BackToTasks:
		a.currentView = ViewTasks
		a.balanceView = nil
		return a, func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		}
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewRoster:
		_, cmd = a.rosterView.Update(msg)
	case ViewTasks:
		_, cmd = a.tasksView.Update(msg)
	case ViewBalance:
		if a.balanceView != nil {
			_, cmd = a.balanceView.Update(msg)
		}
	case ViewProfile:
		_, cmd = a.profileView.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewTasks:
		return a.tasksView.View()
	case ViewBalance:
		if a.balanceView != nil {
			return a.balanceView.View()
		}
		return ""
	case ViewProfile:
		return a.profileView.View()
	default:
		return a.rosterView.View()
	}
}
