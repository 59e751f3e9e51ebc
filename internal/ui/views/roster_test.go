package views

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/refdesk/refdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRosterClient struct {
	snap     *domain.RosterSnapshot
	payCalls []string
}

func (f *fakeRosterClient) TaskByUser(ctx context.Context, taskID, employeeID string) (*domain.RosterSnapshot, error) {
	return f.snap, nil
}

func (f *fakeRosterClient) Pay(ctx context.Context, taskID, userID, employeeID string) error {
	f.payCalls = append(f.payCalls, userID)
	return nil
}

func rosterFixture() *domain.RosterSnapshot {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.RosterSnapshot{
		Task: domain.Task{ID: "t1", Platform: "youtube", MaxEmails: 3, CreatedAt: created},
		Users: []domain.RosterUser{
			{
				UserID:    "u1",
				Name:      "Alice",
				DoneCount: 3,
				Emails: []domain.EmailContact{
					{Email: "a***@x.com", Platform: "youtube", CreatedAt: created},
				},
			},
			{UserID: "u2", Name: "Bob", DoneCount: 1},
		},
	}
}

// loadedRosterView builds the view and runs one load cycle to completion.
func loadedRosterView(t *testing.T, client *fakeRosterClient) *RosterView {
	t.Helper()
	v := NewRosterView(client, "t1", "e1", zap.NewNop())
	cmd := v.load()
	require.NotNil(t, cmd)
	v.Update(cmd())
	require.NotNil(t, v.vm.Snapshot())
	return v
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPayRequiresConfirmation(t *testing.T) {
	client := &fakeRosterClient{snap: rosterFixture()}
	v := loadedRosterView(t, client)

	_, cmd := v.Update(keyRunes("p"))

	// Only the overlay opened; nothing has been sent yet.
	assert.True(t, v.confirmingPay)
	assert.Equal(t, "u1", v.payTargetID)
	assert.Nil(t, cmd)
	assert.Empty(t, client.payCalls)
}

func TestPayConfirmDeclineIssuesNoCall(t *testing.T) {
	client := &fakeRosterClient{snap: rosterFixture()}
	v := loadedRosterView(t, client)

	v.Update(keyRunes("p"))
	require.True(t, v.confirmingPay)
	before := v.vm.Snapshot()

	_, cmd := v.Update(keyRunes("n"))

	assert.Nil(t, cmd)
	assert.False(t, v.confirmingPay)
	assert.Empty(t, client.payCalls)
	assert.False(t, v.vm.Paying("u1"))
	assert.Same(t, before, v.vm.Snapshot())
	assert.False(t, v.vm.Snapshot().Users[0].Paid)
}

func TestPayConfirmEscapeIssuesNoCall(t *testing.T) {
	client := &fakeRosterClient{snap: rosterFixture()}
	v := loadedRosterView(t, client)

	v.Update(keyRunes("p"))
	require.True(t, v.confirmingPay)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, v.confirmingPay)
	assert.Empty(t, client.payCalls)
}

func TestPayConfirmAcceptPaysSelectedUser(t *testing.T) {
	client := &fakeRosterClient{snap: rosterFixture()}
	v := loadedRosterView(t, client)

	v.Update(keyRunes("p"))
	_, cmd := v.Update(keyRunes("y"))
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Equal(t, []string{"u1"}, client.payCalls)
	assert.True(t, v.vm.Snapshot().Users[0].Paid)
	assert.False(t, v.vm.Snapshot().Users[1].Paid)
}
