package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/refdesk/refdesk/internal/api"
	"github.com/refdesk/refdesk/internal/config"
	"github.com/refdesk/refdesk/internal/domain"
	"github.com/refdesk/refdesk/internal/roster"
	"github.com/refdesk/refdesk/internal/ui/keys"
	"github.com/refdesk/refdesk/internal/ui/styles"
	"go.uber.org/zap"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// rosterFocus represents which part of the roster UI has focus
type rosterFocus int

const (
	focusUserList rosterFocus = iota
	focusSearchInput
)

// RosterView is the employee dashboard for one task's participant roster.
type RosterView struct {
	vm     *roster.ViewModel
	styles *styles.Styles
	keys   keys.KeyMap
	log    *zap.Logger

	width  int
	height int

	// Derived display state, recomputed from the snapshot
	visible   []roster.UserMeta
	countdown roster.Countdown

	// UI state
	focus       rosterFocus
	cursor      int
	scrollY     int
	searchInput textinput.Model

	// Platform filter dropdown
	platform       string
	platformOpen   bool
	platformCursor int

	// Pay confirmation overlay
	confirmingPay bool
	payTargetID   string
	payTargetName string

	// Inline configuration error, sticky until the identifiers are fixed
	configErr string

	// Transient status line from the last action
	status    string
	statusErr bool
}

type rosterLoadedMsg struct {
	gen  uint64
	snap *domain.RosterSnapshot
	err  error
}

type payResultMsg struct {
	userID string
	name   string
	err    error
}

type countdownTickMsg time.Time

// NewRosterView creates the roster view for a task+employee pair.
func NewRosterView(client roster.Client, taskID, employeeID string, log *zap.Logger) *RosterView {
	search := textinput.New()
	search.Placeholder = "Search name, id, email, handle..."
	search.CharLimit = 100

	return &RosterView{
		vm:          roster.New(client, taskID, employeeID),
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		log:         log,
		focus:       focusUserList,
		searchInput: search,
		platform:    roster.PlatformAll,
	}
}

// Init starts the first load and the countdown ticker.
func (v *RosterView) Init() tea.Cmd {
	return tea.Batch(v.load(), v.tickCountdown())
}

// load claims the in-flight slot on the event loop, then fetches in the
// background. Re-entrant loads and missing identifiers never reach the
// network.
func (v *RosterView) load() tea.Cmd {
	gen, err := v.vm.BeginLoad()
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoadInFlight):
			// A load is already running; drop this one.
			return nil
		case errors.Is(err, domain.ErrMissingTaskID):
			v.configErr = "No task selected. Pass --task or open a task first."
		case errors.Is(err, domain.ErrMissingEmployeeID):
			v.configErr = "No employee session. Run: refdesk login employee <id>"
		default:
			v.configErr = err.Error()
		}
		v.log.Warn("roster load rejected", zap.Error(err))
		return nil
	}

	return func() tea.Msg {
		snap, err := v.vm.Fetch(context.Background())
		return rosterLoadedMsg{gen: gen, snap: snap, err: err}
	}
}

func (v *RosterView) payCmd(userID, name string) tea.Cmd {
	return func() tea.Msg {
		err := v.vm.Pay(context.Background(), userID)
		return payResultMsg{userID: userID, name: name, err: err}
	}
}

func (v *RosterView) tickCountdown() tea.Cmd {
	return tea.Tick(config.CountdownTick, func(t time.Time) tea.Msg {
		return countdownTickMsg(t)
	})
}

// refresh re-derives the visible list from the current snapshot.
func (v *RosterView) refresh() {
	v.visible = v.vm.Users(v.searchInput.Value(), v.platform)
	if v.cursor >= len(v.visible) {
		v.cursor = max(0, len(v.visible)-1)
	}
}

func (v *RosterView) setStatus(text string, isErr bool) {
	v.status = text
	v.statusErr = isErr
}

// Update handles messages
func (v *RosterView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case rosterLoadedMsg:
		if v.vm.ApplyLoad(msg.gen, msg.snap, msg.err) {
			v.configErr = ""
			v.refresh()
			v.countdown = v.vm.Countdown(time.Now())
			return v, nil
		}
		if msg.err != nil {
			// Previous snapshot (if any) stays on screen.
			v.setStatus(api.UserMessage(msg.err), true)
			v.log.Warn("roster load failed", zap.Error(msg.err))
		}
		return v, nil

	case payResultMsg:
		if v.vm.ApplyPay(msg.userID, msg.err) {
			v.refresh()
			v.setStatus(fmt.Sprintf("Paid %s", msg.name), false)
			return v, nil
		}
		if msg.err != nil {
			v.setStatus(api.UserMessage(msg.err), true)
			v.log.Warn("payout failed", zap.String("user", msg.userID), zap.Error(msg.err))
			return v, nil
		}
		// Payout settled but a refresh dropped the user from the roster.
		v.refresh()
		v.setStatus(fmt.Sprintf("%s is no longer in the roster", msg.name), true)
		return v, nil

	case countdownTickMsg:
		v.countdown = v.vm.Countdown(time.Time(msg))
		return v, v.tickCountdown()

	case tea.KeyMsg:
		if v.confirmingPay {
			return v.updateConfirmPay(msg)
		}
		if v.platformOpen {
			return v.updatePlatformDropdown(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *RosterView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle search input typing first - don't process hotkeys while typing
	if v.focus == focusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = focusUserList
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.refresh()
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.visible)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = focusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.platformOpen = true
		v.platformCursor = 0
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		v.setStatus("", false)
		return v, v.load()

	case key.Matches(msg, v.keys.Pay), key.Matches(msg, v.keys.Enter):
		if len(v.visible) == 0 {
			return v, nil
		}
		target := v.visible[v.cursor]
		if target.Paid {
			v.setStatus("Already paid", true)
			return v, nil
		}
		if v.vm.Paying(target.UserID) {
			v.setStatus("Payment already in progress", true)
			return v, nil
		}
		v.confirmingPay = true
		v.payTargetID = target.UserID
		v.payTargetName = displayName(target.RosterUser)
		return v, nil
	}

	return v, nil
}

// updateConfirmPay is the required acknowledgment gate: the network call
// fires only on an explicit yes, declining does nothing at all.
func (v *RosterView) updateConfirmPay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingPay = false
		if err := v.vm.BeginPay(v.payTargetID); err != nil {
			v.setStatus(payErrorText(err), true)
			return v, nil
		}
		return v, v.payCmd(v.payTargetID, v.payTargetName)
	case "n", "N", "esc":
		v.confirmingPay = false
		return v, nil
	}
	return v, nil
}

func payErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyPaid):
		return "Already paid"
	case errors.Is(err, domain.ErrPaymentInFlight):
		return "Payment already in progress"
	case errors.Is(err, domain.ErrNoTaskLoaded):
		return "Roster not loaded yet"
	default:
		return err.Error()
	}
}

func (v *RosterView) updatePlatformDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := v.platformOptions()

	switch {
	case key.Matches(msg, v.keys.Back):
		v.platformOpen = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.platformCursor > 0 {
			v.platformCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.platformCursor < len(options)-1 {
			v.platformCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		v.platform = options[v.platformCursor]
		v.platformOpen = false
		v.cursor = 0
		v.scrollY = 0
		v.refresh()
		return v, nil
	}

	return v, nil
}

// platformOptions lists "all" plus every platform seen in the roster's
// contacts, in first-seen order.
func (v *RosterView) platformOptions() []string {
	options := []string{roster.PlatformAll}
	snap := v.vm.Snapshot()
	if snap == nil {
		return options
	}
	seen := map[string]bool{}
	for _, u := range snap.Users {
		for _, contact := range u.Emails {
			if contact.Platform != "" && !seen[contact.Platform] {
				seen[contact.Platform] = true
				options = append(options, contact.Platform)
			}
		}
	}
	return options
}

func (v *RosterView) ensureVisible() {
	// Each user item is 2 lines + 1 margin = 3 lines
	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

func displayName(u domain.RosterUser) string {
	if u.Name != "" {
		return u.Name
	}
	return u.UserID
}

// View renders the view
func (v *RosterView) View() string {
	if v.configErr != "" {
		return v.renderConfigError()
	}

	if v.confirmingPay {
		return v.renderPayConfirm()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderUserList())
	b.WriteString("\n")
	b.WriteString(v.renderStatus())
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *RosterView) renderConfigError() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Cannot Load Roster"),
		"",
		s.TitleMuted.Render(v.configErr),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *RosterView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	snap := v.vm.Snapshot()

	title := s.Title.Render("Roster")
	meta := ""
	if snap != nil {
		meta = s.TitleMuted.Render(fmt.Sprintf("%s • %s per person • cap %d",
			snap.Task.Platform, snap.Task.Amount.StringFixed(2), snap.Task.MaxEmails))
	}
	if v.vm.Loading() {
		meta = s.TitleMuted.Render("Loading...")
	}

	// Countdown with phase coloring
	var countStyle lipgloss.Style
	switch v.countdown.Phase {
	case roster.PhaseUrgent:
		countStyle = s.CountUrgent
	case roster.PhaseClosed:
		countStyle = s.CountClosed
	default:
		countStyle = s.CountActive
	}
	count := countStyle.Render(v.countdown.String() + " " + v.countdown.Phase)

	totals := ""
	if snap != nil {
		totals = s.TitleMuted.Render(fmt.Sprintf("performing %d • completed %d • partial %d",
			snap.Totals.Performing, snap.Totals.Completed, snap.Totals.Partial))
	}

	// Search box and platform filter
	searchStyle := s.Input
	if v.focus == focusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-24, 10, 34)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	filterBtn := s.Button.Render("Platform: " + v.platform + " ▼")

	header := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", count),
		meta,
		totals,
		lipgloss.JoinHorizontal(lipgloss.Center, searchBox, "  ", filterBtn),
	)

	if v.platformOpen {
		header = lipgloss.JoinVertical(lipgloss.Left, header, v.renderPlatformDropdown())
	}
	return header
}

func (v *RosterView) renderPlatformDropdown() string {
	s := v.styles
	var items []string
	for i, option := range v.platformOptions() {
		itemStyle := s.ListItem
		if i == v.platformCursor {
			itemStyle = s.ListSelected
		}
		items = append(items, itemStyle.Render(option))
	}
	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *RosterView) renderUserList() string {
	s := v.styles

	if v.vm.Snapshot() == nil {
		if v.vm.Loading() {
			return s.TitleMuted.Render("Loading roster...")
		}
		return s.TitleMuted.Render("No roster loaded. Press 'r' to retry.")
	}

	if len(v.visible) == 0 {
		return s.TitleMuted.Render("No users match the current filter.")
	}

	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}

	var items []string
	endIdx := min(v.scrollY+visibleItems, len(v.visible))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderUserItem(v.visible[i], i == v.cursor && v.focus == focusUserList))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *RosterView) renderUserItem(u roster.UserMeta, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)
	maxEmails := v.vm.Snapshot().Task.MaxEmails

	// First line: name, progress, badges
	badge := s.BadgePartial.Render(domain.UserPartial)
	if domain.UserStatus(u.DoneCount, maxEmails) == domain.UserCompleted {
		badge = s.BadgeDone.Render(domain.UserCompleted)
	}
	paid := ""
	switch {
	case u.Paid:
		paid = " " + s.BadgePaid.Render("✓ paid")
	case v.vm.Paying(u.UserID):
		paid = " " + s.TitleMuted.Render("paying...")
	}
	titleLine := fmt.Sprintf("%s  %d/%d %s%s", displayName(u.RosterUser), u.DoneCount, maxEmails, badge, paid)

	// Second line: contact metadata
	detail := fmt.Sprintf("%d contacts", u.Total)
	if !u.LastSavedAt.IsZero() {
		detail += " • last " + u.LastSavedAt.Format("Jan 2 15:04")
	}

	var titleStyle, detailStyle lipgloss.Style
	if selected {
		titleStyle = s.ListSelected.Width(width)
		detailStyle = s.ListSelected.Width(width)
	} else {
		titleStyle = s.ListItem.Width(width)
		detailStyle = s.ListItem.Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(titleLine),
		detailStyle.Render(s.TitleMuted.Render(detail)),
	) + "\n"
}

func (v *RosterView) renderPayConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	amount := ""
	if snap := v.vm.Snapshot(); snap != nil {
		amount = snap.Task.Amount.StringFixed(2)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("Confirm Payout"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Pay %s to %s?", amount, v.payTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *RosterView) renderStatus() string {
	if v.status == "" {
		return ""
	}
	if v.statusErr {
		return v.styles.StatusErr.Render(v.status)
	}
	return v.styles.StatusOK.Render(v.status)
}

func (v *RosterView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s pay • %s search • %s filter • %s refresh • %s quit",
			v.styles.HelpKey.Render("p"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("f"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
