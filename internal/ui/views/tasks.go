package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

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

// ShowBalance signals the app to open the balance ledger
type ShowBalance struct{}

// TaskAdminView lists email tasks with pagination and hosts the create form.
type TaskAdminView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap
	log    *zap.Logger

	width  int
	height int

	tasks   []domain.Task
	total   int
	pager   paginator.Model
	cursor  int
	loading bool

	// Create form
	creating      bool
	formPlatform  textinput.Model
	formTarget    textinput.Model
	formAmount    textinput.Model
	formMaxEmails textinput.Model
	formExpiry    textinput.Model
	focusIdx      int // 0=platform, 1=target, 2=amount, 3=maxEmails, 4=expiry, 5=save

	status    string
	statusErr bool
}

type tasksPageMsg struct {
	page  int
	tasks []domain.Task
	total int
	err   error
}

type taskCreatedMsg struct {
	task *domain.Task
	err  error
}

func NewTaskAdminView(client *api.Client, log *zap.Logger) *TaskAdminView {
	pager := paginator.New()
	pager.PerPage = config.PageSize
	pager.Type = paginator.Dots

	platform := textinput.New()
	platform.Placeholder = "youtube"
	platform.CharLimit = 40

	target := textinput.New()
	target.Placeholder = "entries per employee"
	target.CharLimit = 6

	amount := textinput.New()
	amount.Placeholder = "amount per person"
	amount.CharLimit = 12

	maxEmails := textinput.New()
	maxEmails.Placeholder = "max emails"
	maxEmails.CharLimit = 6

	expiry := textinput.New()
	expiry.Placeholder = "expiry hours"
	expiry.CharLimit = 5

	return &TaskAdminView{
		client:        client,
		styles:        styles.NewStyles(),
		keys:          keys.DefaultKeyMap(),
		log:           log,
		pager:         pager,
		formPlatform:  platform,
		formTarget:    target,
		formAmount:    amount,
		formMaxEmails: maxEmails,
		formExpiry:    expiry,
	}
}

func (v *TaskAdminView) Init() tea.Cmd {
	return v.loadPage(0)
}

func (v *TaskAdminView) loadPage(page int) tea.Cmd {
	if v.loading {
		return nil
	}
	v.loading = true
	return func() tea.Msg {
		result, err := v.client.ListEmailTasks(context.Background(), page+1, config.PageSize)
		if err != nil {
			return tasksPageMsg{page: page, err: err}
		}
		return tasksPageMsg{page: page, tasks: result.Tasks, total: result.Total}
	}
}

func (v *TaskAdminView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tasksPageMsg:
		v.loading = false
		if msg.err != nil {
			v.status = api.UserMessage(msg.err)
			v.statusErr = true
			v.log.Warn("task list load failed", zap.Error(msg.err))
			return v, nil
		}
		v.tasks = msg.tasks
		v.total = msg.total
		v.pager.Page = msg.page
		v.pager.SetTotalPages(msg.total)
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		return v, nil

	case taskCreatedMsg:
		if msg.err != nil {
			v.status = api.UserMessage(msg.err)
			v.statusErr = true
			v.log.Warn("task create failed", zap.Error(msg.err))
			return v, nil
		}
		v.creating = false
		v.status = "Task created"
		v.statusErr = false
		return v, v.loadPage(0)

	case tea.KeyMsg:
		if v.creating {
			return v.updateCreating(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskAdminView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}
		return v, nil

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

	case key.Matches(msg, v.keys.New):
		v.startCreate()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Balance):
		return v, func() tea.Msg { return ShowBalance{} }
	}

	return v, nil
}

func (v *TaskAdminView) startCreate() {
	v.creating = true
	v.focusIdx = 0
	v.status = ""
	v.formPlatform.Reset()
	v.formTarget.Reset()
	v.formAmount.Reset()
	v.formMaxEmails.Reset()
	v.formExpiry.Reset()
	v.updateFormFocus()
}

func (v *TaskAdminView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.submitCreate()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 6
		v.updateFormFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 5) % 6
		v.updateFormFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == 5 {
			return v, v.submitCreate()
		}
		v.focusIdx++
		v.updateFormFocus()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.formPlatform, cmd = v.formPlatform.Update(msg)
	case 1:
		v.formTarget, cmd = v.formTarget.Update(msg)
	case 2:
		v.formAmount, cmd = v.formAmount.Update(msg)
	case 3:
		v.formMaxEmails, cmd = v.formMaxEmails.Update(msg)
	case 4:
		v.formExpiry, cmd = v.formExpiry.Update(msg)
	}
	return v, cmd
}

func (v *TaskAdminView) updateFormFocus() {
	v.formPlatform.Blur()
	v.formTarget.Blur()
	v.formAmount.Blur()
	v.formMaxEmails.Blur()
	v.formExpiry.Blur()

	switch v.focusIdx {
	case 0:
		v.formPlatform.Focus()
	case 1:
		v.formTarget.Focus()
	case 2:
		v.formAmount.Focus()
	case 3:
		v.formMaxEmails.Focus()
	case 4:
		v.formExpiry.Focus()
	}
}

// submitCreate validates the form locally; invalid input never reaches the
// backend.
func (v *TaskAdminView) submitCreate() tea.Cmd {
	req, err := v.buildCreateRequest()
	if err != nil {
		v.status = err.Error()
		v.statusErr = true
		return nil
	}

	return func() tea.Msg {
		task, err := v.client.CreateEmailTask(context.Background(), *req)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (v *TaskAdminView) buildCreateRequest() (*api.CreateTaskRequest, error) {
	platform := strings.TrimSpace(v.formPlatform.Value())
	if platform == "" {
		return nil, fmt.Errorf("platform is required")
	}

	target, err := strconv.Atoi(strings.TrimSpace(v.formTarget.Value()))
	if err != nil || target <= 0 {
		return nil, fmt.Errorf("target must be a positive number")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(v.formAmount.Value()))
	if err != nil || !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	maxEmails, err := strconv.Atoi(strings.TrimSpace(v.formMaxEmails.Value()))
	if err != nil || maxEmails <= 0 {
		return nil, fmt.Errorf("max emails must be a positive number")
	}

	expiry, err := strconv.Atoi(strings.TrimSpace(v.formExpiry.Value()))
	if err != nil || expiry <= 0 {
		return nil, fmt.Errorf("expiry hours must be a positive number")
	}

	return &api.CreateTaskRequest{
		Platform:    platform,
		Target:      target,
		Amount:      amount,
		MaxEmails:   maxEmails,
		ExpiryHours: expiry,
	}, nil
}

// View renders the view
func (v *TaskAdminView) View() string {
	if v.creating {
		return v.renderCreateForm()
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Email Tasks"))
	if v.loading {
		b.WriteString("  " + v.styles.TitleMuted.Render("loading..."))
	}
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.styles.TitleMuted.Render(v.pager.View()))
	b.WriteString("\n")
	if v.status != "" {
		if v.statusErr {
			b.WriteString(v.styles.StatusErr.Render(v.status))
		} else {
			b.WriteString(v.styles.StatusOK.Render(v.status))
		}
	}
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskAdminView) renderTaskList() string {
	s := v.styles

	if len(v.tasks) == 0 {
		if v.loading {
			return s.TitleMuted.Render("Loading tasks...")
		}
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)
	now := time.Now()

	var items []string
	for i, task := range v.tasks {
		statusBadge := s.BadgeDone.Render(domain.TaskActive)
		if task.Status(now) == domain.TaskExpired {
			statusBadge = s.BadgePartial.Render(domain.TaskExpired)
		}

		line := fmt.Sprintf("%s  %s per person • cap %d  %s",
			task.Platform, task.Amount.StringFixed(2), task.MaxEmails, statusBadge)
		detail := "created " + task.CreatedAt.Format("Jan 2, 2006 15:04")

		itemStyle := s.ListItem
		if i == v.cursor {
			itemStyle = s.ListSelected
		}
		items = append(items, lipgloss.JoinVertical(lipgloss.Left,
			itemStyle.Width(width).Render(line),
			itemStyle.Width(width).Render(s.TitleMuted.Render(detail)),
		)+"\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskAdminView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	fieldStyles := [6]lipgloss.Style{s.Input, s.Input, s.Input, s.Input, s.Input, s.Button}
	if v.focusIdx < 5 {
		fieldStyles[v.focusIdx] = s.InputFocused
	} else {
		fieldStyles[5] = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 40)

	errLine := ""
	if v.status != "" && v.statusErr {
		errLine = s.StatusErr.Render(v.status)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Email Task"),
		"",
		"Platform:",
		fieldStyles[0].Width(inputWidth).Render(v.formPlatform.View()),
		"Target per employee:",
		fieldStyles[1].Width(inputWidth).Render(v.formTarget.View()),
		"Amount per person:",
		fieldStyles[2].Width(inputWidth).Render(v.formAmount.View()),
		"Max emails:",
		fieldStyles[3].Width(inputWidth).Render(v.formMaxEmails.View()),
		"Expiry hours:",
		fieldStyles[4].Width(inputWidth).Render(v.formExpiry.View()),
		"",
		fieldStyles[5].Render(" Create "),
		errLine,
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskAdminView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s new • %s balance • %s/%s page • %s refresh • %s quit",
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("b"),
			v.styles.HelpKey.Render("←"),
			v.styles.HelpKey.Render("→"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
