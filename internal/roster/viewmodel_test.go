package roster

import (
	"context"
	"testing"
	"time"

	"github.com/refdesk/refdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	snap      *domain.RosterSnapshot
	loadErr   error
	payErr    error
	loadCalls int
	payCalls  []string
}

func (f *fakeClient) TaskByUser(ctx context.Context, taskID, employeeID string) (*domain.RosterSnapshot, error) {
	f.loadCalls++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.snap, nil
}

func (f *fakeClient) Pay(ctx context.Context, taskID, userID, employeeID string) error {
	f.payCalls = append(f.payCalls, userID)
	return f.payErr
}

func snapshotFixture() *domain.RosterSnapshot {
	created, _ := time.Parse(time.RFC3339, "2024-01-01T00:00:00Z")
	return &domain.RosterSnapshot{
		Task: domain.Task{
			ID:        "t1",
			Platform:  "youtube",
			MaxEmails: 3,
			CreatedAt: created,
		},
		Totals: domain.Totals{Performing: 2, Completed: 1, Partial: 1},
		Users: []domain.RosterUser{
			{
				UserID:    "u1",
				Name:      "Bob",
				DoneCount: 3,
				Emails: []domain.EmailContact{
					{Email: "b***@x.com", Platform: "youtube", CreatedAt: created},
				},
			},
			{UserID: "u2", Name: "Carol", DoneCount: 1},
		},
	}
}

func loadedViewModel(t *testing.T, client *fakeClient) *ViewModel {
	t.Helper()
	vm := New(client, "t1", "e1")
	gen, err := vm.BeginLoad()
	require.NoError(t, err)
	snap, err := vm.Fetch(context.Background())
	require.NoError(t, err)
	require.True(t, vm.ApplyLoad(gen, snap, nil))
	return vm
}

func TestBeginLoadMissingIdentifiers(t *testing.T) {
	client := &fakeClient{snap: snapshotFixture()}

	_, err := New(client, "", "e1").BeginLoad()
	assert.ErrorIs(t, err, domain.ErrMissingTaskID)

	_, err = New(client, "t1", "").BeginLoad()
	assert.ErrorIs(t, err, domain.ErrMissingEmployeeID)

	// No network call was ever issued.
	assert.Zero(t, client.loadCalls)
}

func TestBeginLoadMissingEmployeeKeepsPreviousState(t *testing.T) {
	client := &fakeClient{snap: snapshotFixture()}
	vm := loadedViewModel(t, client)

	// Simulate the session losing the employee id before a refresh.
	vm.employeeID = ""
	_, err := vm.BeginLoad()

	assert.ErrorIs(t, err, domain.ErrMissingEmployeeID)
	require.NotNil(t, vm.Snapshot())
	assert.Equal(t, "t1", vm.Snapshot().Task.ID)
	assert.Equal(t, 1, client.loadCalls)
}

func TestBeginLoadGuardsReentrantCalls(t *testing.T) {
	vm := New(&fakeClient{snap: snapshotFixture()}, "t1", "e1")

	_, err := vm.BeginLoad()
	require.NoError(t, err)

	_, err = vm.BeginLoad()
	assert.ErrorIs(t, err, domain.ErrLoadInFlight)
	assert.True(t, vm.Loading())
}

func TestApplyLoadReplacesSnapshotAtomically(t *testing.T) {
	client := &fakeClient{snap: snapshotFixture()}
	vm := loadedViewModel(t, client)

	assert.False(t, vm.Loading())
	assert.Equal(t, domain.Totals{Performing: 2, Completed: 1, Partial: 1}, vm.Snapshot().Totals)
	assert.Len(t, vm.Snapshot().Users, 2)
}

func TestApplyLoadFailureKeepsPreviousSnapshot(t *testing.T) {
	client := &fakeClient{snap: snapshotFixture()}
	vm := loadedViewModel(t, client)

	client.loadErr = assert.AnError
	gen, err := vm.BeginLoad()
	require.NoError(t, err)
	snap, err := vm.Fetch(context.Background())
	require.Error(t, err)

	assert.False(t, vm.ApplyLoad(gen, snap, err))
	assert.False(t, vm.Loading())
	require.NotNil(t, vm.Snapshot())
	assert.Equal(t, "t1", vm.Snapshot().Task.ID)
}

func TestApplyLoadDropsStaleGeneration(t *testing.T) {
	client := &fakeClient{snap: snapshotFixture()}
	vm := loadedViewModel(t, client)

	// A newer load has started; the old reply must be ignored.
	staleGen := vm.gen
	_, err := vm.BeginLoad()
	require.NoError(t, err)

	stale := &domain.RosterSnapshot{Task: domain.Task{ID: "old"}}
	assert.False(t, vm.ApplyLoad(staleGen, stale, nil))
	assert.Equal(t, "t1", vm.Snapshot().Task.ID)
	assert.True(t, vm.Loading())
}

func TestPayHappyPath(t *testing.T) {
	client := &fakeClient{snap: snapshotFixture()}
	vm := loadedViewModel(t, client)

	require.NoError(t, vm.BeginPay("u1"))
	assert.True(t, vm.Paying("u1"))

	err := vm.Pay(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, vm.ApplyPay("u1", nil))

	assert.False(t, vm.Paying("u1"))
	assert.Equal(t, []string{"u1"}, client.payCalls)

	// Exactly u1 advanced; everything else untouched.
	users := vm.Snapshot().Users
	assert.True(t, users[0].Paid)
	assert.Equal(t, 3, users[0].DoneCount)
	assert.Len(t, users[0].Emails, 1)
	assert.False(t, users[1].Paid)
}

func TestPayComputedStatusScenario(t *testing.T) {
	vm := loadedViewModel(t, &fakeClient{snap: snapshotFixture()})
	snap := vm.Snapshot()

	// doneCount 3 against maxEmails 3 counts as completed.
	u1 := snap.Users[0]
	assert.Equal(t, domain.UserCompleted, domain.UserStatus(u1.DoneCount, snap.Task.MaxEmails))
	assert.Equal(t, domain.UserPartial, domain.UserStatus(snap.Users[1].DoneCount, snap.Task.MaxEmails))
}

func TestBeginPayPreconditions(t *testing.T) {
	client := &fakeClient{snap: snapshotFixture()}

	vm := New(client, "t1", "e1")
	assert.ErrorIs(t, vm.BeginPay("u1"), domain.ErrNoTaskLoaded)

	vm = loadedViewModel(t, client)
	assert.ErrorIs(t, vm.BeginPay("nope"), domain.ErrUserNotFound)

	require.NoError(t, vm.BeginPay("u1"))
	assert.ErrorIs(t, vm.BeginPay("u1"), domain.ErrPaymentInFlight)

	// A different user is not blocked by u1's in-flight payout.
	assert.NoError(t, vm.BeginPay("u2"))
}

func TestBeginPayRejectsPaidUser(t *testing.T) {
	vm := loadedViewModel(t, &fakeClient{snap: snapshotFixture()})

	require.NoError(t, vm.BeginPay("u1"))
	require.True(t, vm.ApplyPay("u1", nil))

	assert.ErrorIs(t, vm.BeginPay("u1"), domain.ErrAlreadyPaid)
}

func TestApplyPayFailureLeavesStateAndAllowsRetry(t *testing.T) {
	client := &fakeClient{snap: snapshotFixture(), payErr: assert.AnError}
	vm := loadedViewModel(t, client)

	require.NoError(t, vm.BeginPay("u1"))
	err := vm.Pay(context.Background(), "u1")
	require.Error(t, err)
	assert.False(t, vm.ApplyPay("u1", err))

	assert.False(t, vm.Snapshot().Users[0].Paid)
	assert.False(t, vm.Paying("u1"))

	// Retry goes through once the backend recovers.
	client.payErr = nil
	require.NoError(t, vm.BeginPay("u1"))
	require.NoError(t, vm.Pay(context.Background(), "u1"))
	assert.True(t, vm.ApplyPay("u1", nil))
	assert.True(t, vm.Snapshot().Users[0].Paid)
}

func TestApplyPayUserDroppedByRefresh(t *testing.T) {
	client := &fakeClient{snap: snapshotFixture()}
	vm := loadedViewModel(t, client)

	require.NoError(t, vm.BeginPay("u1"))

	// A refresh finishes while the payout is in flight and u1 is gone.
	client.snap = &domain.RosterSnapshot{
		Task:  snapshotFixture().Task,
		Users: []domain.RosterUser{{UserID: "u2", Name: "Carol", DoneCount: 1}},
	}
	gen, err := vm.BeginLoad()
	require.NoError(t, err)
	snap, err := vm.Fetch(context.Background())
	require.NoError(t, err)
	require.True(t, vm.ApplyLoad(gen, snap, nil))

	assert.False(t, vm.ApplyPay("u1", nil))
	assert.False(t, vm.Paying("u1"))
	require.Len(t, vm.Snapshot().Users, 1)
	assert.False(t, vm.Snapshot().Users[0].Paid)
}

func TestApplyPayDoesNotMutatePreviousSnapshot(t *testing.T) {
	vm := loadedViewModel(t, &fakeClient{snap: snapshotFixture()})
	before := vm.Snapshot()

	require.NoError(t, vm.BeginPay("u1"))
	require.True(t, vm.ApplyPay("u1", nil))

	assert.False(t, before.Users[0].Paid)
	assert.True(t, vm.Snapshot().Users[0].Paid)
}

func TestUsersDerivation(t *testing.T) {
	vm := loadedViewModel(t, &fakeClient{snap: snapshotFixture()})

	users := vm.Users("bob", PlatformAll)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].UserID)
	assert.Equal(t, 1, users[0].Total)
}

func TestCountdownBeforeLoad(t *testing.T) {
	vm := New(&fakeClient{}, "t1", "e1")
	assert.Equal(t, PhaseClosed, vm.Countdown(time.Now()).Phase)
}
