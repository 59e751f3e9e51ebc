package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/refdesk/refdesk/internal/api"
	"github.com/refdesk/refdesk/internal/domain"
	"github.com/refdesk/refdesk/internal/ui/keys"
	"github.com/refdesk/refdesk/internal/ui/styles"
	"go.uber.org/zap"
)

// ProfileView shows the logged-in user's profile and recorded entries.
type ProfileView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap
	log    *zap.Logger

	width  int
	height int

	userID  string
	profile *domain.Profile
	loading bool

	// Edit form
	editing   bool
	editName  textinput.Model
	editEmail textinput.Model
	focusIdx  int // 0=name, 1=email, 2=save

	status    string
	statusErr bool
}

type profileLoadedMsg struct {
	profile *domain.Profile
	err     error
}

type profileSavedMsg struct {
	profile *domain.Profile
	err     error
}

func NewProfileView(client *api.Client, userID string, log *zap.Logger) *ProfileView {
	editName := textinput.New()
	editName.Placeholder = "Name"
	editName.CharLimit = 100

	editEmail := textinput.New()
	editEmail.Placeholder = "Email"
	editEmail.CharLimit = 120

	return &ProfileView{
		client:    client,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		log:       log,
		userID:    userID,
		editName:  editName,
		editEmail: editEmail,
	}
}

func (v *ProfileView) Init() tea.Cmd {
	return v.load()
}

func (v *ProfileView) load() tea.Cmd {
	if v.loading {
		return nil
	}
	v.loading = true
	return func() tea.Msg {
		profile, err := v.client.GetUser(context.Background(), v.userID)
		return profileLoadedMsg{profile: profile, err: err}
	}
}

func (v *ProfileView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case profileLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.status = api.UserMessage(msg.err)
			v.statusErr = true
			v.log.Warn("profile load failed", zap.Error(msg.err))
			return v, nil
		}
		v.profile = msg.profile
		return v, nil

	case profileSavedMsg:
		if msg.err != nil {
			v.status = api.UserMessage(msg.err)
			v.statusErr = true
			v.log.Warn("profile update failed", zap.Error(msg.err))
			return v, nil
		}
		v.editing = false
		v.profile = msg.profile
		v.status = "Profile updated"
		v.statusErr = false
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *ProfileView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Refresh):
		return v, v.load()

	case key.Matches(msg, v.keys.Edit):
		if v.profile == nil {
			return v, nil
		}
		v.editing = true
		v.focusIdx = 0
		v.status = ""
		v.editName.SetValue(v.profile.Name)
		v.editEmail.SetValue(v.profile.Email)
		v.updateEditFocus()
		return v, textinput.Blink
	}

	return v, nil
}

func (v *ProfileView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.submit()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == 2 {
			return v, v.submit()
		}
		v.focusIdx++
		v.updateEditFocus()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.editName, cmd = v.editName.Update(msg)
	case 1:
		v.editEmail, cmd = v.editEmail.Update(msg)
	}
	return v, cmd
}

func (v *ProfileView) updateEditFocus() {
	v.editName.Blur()
	v.editEmail.Blur()
	switch v.focusIdx {
	case 0:
		v.editName.Focus()
	case 1:
		v.editEmail.Focus()
	}
}

func (v *ProfileView) submit() tea.Cmd {
	name := strings.TrimSpace(v.editName.Value())
	email := strings.TrimSpace(v.editEmail.Value())
	if name == "" {
		v.status = "Name is required"
		v.statusErr = true
		return nil
	}

	return func() tea.Msg {
		profile, err := v.client.UpdateUser(context.Background(), v.userID, name, email)
		return profileSavedMsg{profile: profile, err: err}
	}
}

// View renders the view
func (v *ProfileView) View() string {
	if v.editing {
		return v.renderEditForm()
	}

	s := v.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Profile"))
	if v.loading {
		b.WriteString("  " + s.TitleMuted.Render("loading..."))
	}
	b.WriteString("\n\n")

	if v.profile == nil {
		if !v.loading {
			b.WriteString(s.TitleMuted.Render("Profile unavailable. Press 'r' to retry."))
		}
	} else {
		b.WriteString(fmt.Sprintf("%s  %s\n", v.profile.Name, s.TitleMuted.Render(v.profile.Email)))
		b.WriteString("\n")
		b.WriteString(s.TitleMuted.Render("Entries"))
		b.WriteString("\n")
		b.WriteString(v.renderEntries())
	}

	b.WriteString("\n")
	if v.status != "" {
		if v.statusErr {
			b.WriteString(s.StatusErr.Render(v.status))
		} else {
			b.WriteString(s.StatusOK.Render(v.status))
		}
	}
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *ProfileView) renderEntries() string {
	s := v.styles

	if len(v.profile.Entries) == 0 {
		return s.TitleMuted.Render("No entries yet.")
	}

	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	var items []string
	for _, entry := range v.profile.Entries {
		badge := s.BadgePartial.Render(entry.Status)
		switch entry.Status {
		case domain.EntryApproved, domain.EntryPaid:
			badge = s.BadgePaid.Render(entry.Status)
		case domain.EntryRejected:
			badge = s.StatusErr.Render(entry.Status)
		}
		line := fmt.Sprintf("%-8s %10s  %s  %s",
			entry.Type,
			entry.Amount.StringFixed(2),
			entry.CreatedAt.Format("Jan 2, 2006"),
			badge)
		items = append(items, s.ListItem.Width(width).Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *ProfileView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	emailStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		emailStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 40)

	errLine := ""
	if v.status != "" && v.statusErr {
		errLine = s.StatusErr.Render(v.status)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Edit Profile"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.editName.View()),
		"",
		"Email:",
		emailStyle.Width(inputWidth).Render(v.editEmail.View()),
		"",
		btnStyle.Render(" Save "),
		errLine,
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProfileView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s edit • %s refresh • %s quit",
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
