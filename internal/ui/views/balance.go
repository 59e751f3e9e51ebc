package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/refdesk/refdesk/internal/api"
	"github.com/refdesk/refdesk/internal/config"
	"github.com/refdesk/refdesk/internal/domain"
	"github.com/refdesk/refdesk/internal/ui/keys"
	"github.com/refdesk/refdesk/internal/ui/styles"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BackToTasks signals the app to return to the task list
type BackToTasks struct{}

// BalanceView shows one employee's payout ledger, paginated.
type BalanceView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap
	log    *zap.Logger

	width  int
	height int

	// Employee id prompt, shown until an id is submitted
	prompting bool
	idInput   textinput.Model

	employeeID  string
	entries     []domain.BalanceEntry
	total       int
	totalAmount decimal.Decimal
	pager       paginator.Model
	loading     bool

	status    string
	statusErr bool
}

type balancePageMsg struct {
	page    int
	history *api.BalanceHistory
	err     error
}

func NewBalanceView(client *api.Client, log *zap.Logger) *BalanceView {
	idInput := textinput.New()
	idInput.Placeholder = "employee id"
	idInput.CharLimit = 64

	pager := paginator.New()
	pager.PerPage = config.PageSize
	pager.Type = paginator.Dots

	return &BalanceView{
		client:    client,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		log:       log,
		prompting: true,
		idInput:   idInput,
		pager:     pager,
	}
}

func (v *BalanceView) Init() tea.Cmd {
	v.idInput.Focus()
	return textinput.Blink
}

func (v *BalanceView) loadPage(page int) tea.Cmd {
	if v.loading || v.employeeID == "" {
		return nil
	}
	v.loading = true
	return func() tea.Msg {
		history, err := v.client.EmployeeBalanceHistory(context.Background(), v.employeeID, page+1, config.PageSize)
		return balancePageMsg{page: page, history: history, err: err}
	}
}

func (v *BalanceView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case balancePageMsg:
		v.loading = false
		if msg.err != nil {
			v.status = api.UserMessage(msg.err)
			v.statusErr = true
			v.log.Warn("balance history load failed",
				zap.String("employee", v.employeeID), zap.Error(msg.err))
			return v, nil
		}
		v.entries = msg.history.History
		v.total = msg.history.Total
		v.totalAmount = msg.history.TotalAmount
		v.pager.Page = msg.page
		v.pager.SetTotalPages(msg.history.Total)
		v.status = ""
		return v, nil

	case tea.KeyMsg:
		if v.prompting {
			return v.updatePrompt(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BalanceView) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToTasks{} }

	case key.Matches(msg, v.keys.Enter):
		id := strings.TrimSpace(v.idInput.Value())
		if id == "" {
			v.status = "Employee id is required"
			v.statusErr = true
			return v, nil
		}
		v.employeeID = id
		v.prompting = false
		v.idInput.Blur()
		v.status = ""
		return v, v.loadPage(0)
	}

	var cmd tea.Cmd
	v.idInput, cmd = v.idInput.Update(msg)
	return v, cmd
}

func (v *BalanceView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToTasks{} }

	case key.Matches(msg, v.keys.PrevPage):
		if v.pager.Page > 0 {
			return v, v.loadPage(v.pager.Page - 1)
		}
		return v, nil

	case key.Matches(msg, v.keys.NextPage):
		if !v.pager.OnLastPage() {
			return v, v.loadPage(v.pager.Page + 1)
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadPage(v.pager.Page)
	}

	return v, nil
}

// View renders the view
func (v *BalanceView) View() string {
	if v.prompting {
		return v.renderPrompt()
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Balance History"))
	b.WriteString("  " + v.styles.TitleMuted.Render(v.employeeID))
	if v.loading {
		b.WriteString("  " + v.styles.TitleMuted.Render("loading..."))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.TitleMuted.Render(
		fmt.Sprintf("%d entries • total %s", v.total, v.totalAmount.StringFixed(2))))
	b.WriteString("\n\n")
	b.WriteString(v.renderEntries())
	b.WriteString("\n")
	b.WriteString(v.styles.TitleMuted.Render(v.pager.View()))
	b.WriteString("\n")
	if v.status != "" {
		b.WriteString(v.styles.StatusErr.Render(v.status))
	}
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *BalanceView) renderPrompt() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	errLine := ""
	if v.status != "" {
		errLine = s.StatusErr.Render(v.status)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Balance History"),
		"",
		"Employee id:",
		s.InputFocused.Width(clamp(contentWidth-6, 20, 40)).Render(v.idInput.View()),
		errLine,
		"",
		s.TitleMuted.Render("↵: load • Esc: back"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *BalanceView) renderEntries() string {
	s := v.styles

	if len(v.entries) == 0 {
		if v.loading {
			return s.TitleMuted.Render("Loading history...")
		}
		return s.TitleMuted.Render("No history for this employee.")
	}

	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	var items []string
	for _, entry := range v.entries {
		line := fmt.Sprintf("%-12s  %10s  %s",
			entry.Reason,
			entry.Amount.StringFixed(2),
			entry.CreatedAt.Format("Jan 2, 2006 15:04"))
		items = append(items, s.ListItem.Width(width).Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *BalanceView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s/%s page • %s refresh • %s back • %s quit",
			v.styles.HelpKey.Render("←"),
			v.styles.HelpKey.Render("→"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
