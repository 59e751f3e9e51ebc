// Package roster implements the employee roster view-model: loading a
// task's participant snapshot, deriving the filtered display list, and
// driving payouts with optimistic local state.
//
// The view-model is built for a single event loop. Begin*/Apply* methods
// mutate state and must be called from the loop; Fetch and Pay only perform
// the network exchange and are safe to run from a command goroutine.
package roster

import (
	"context"
	"time"

	"github.com/refdesk/refdesk/internal/domain"
)

// Client is the slice of the backend API the view-model needs.
type Client interface {
	TaskByUser(ctx context.Context, taskID, employeeID string) (*domain.RosterSnapshot, error)
	Pay(ctx context.Context, taskID, userID, employeeID string) error
}

type ViewModel struct {
	client     Client
	taskID     string
	employeeID string

	snap    *domain.RosterSnapshot
	loading bool
	gen     uint64
	paying  map[string]bool
}

func New(client Client, taskID, employeeID string) *ViewModel {
	return &ViewModel{
		client:     client,
		taskID:     taskID,
		employeeID: employeeID,
		paying:     make(map[string]bool),
	}
}

// BeginLoad validates identifiers and claims the in-flight slot. Returns the
// generation to tag the fetch with. Re-entrant calls while a load is
// outstanding are dropped, not queued.
func (vm *ViewModel) BeginLoad() (uint64, error) {
	if vm.taskID == "" {
		return 0, domain.ErrMissingTaskID
	}
	if vm.employeeID == "" {
		return 0, domain.ErrMissingEmployeeID
	}
	if vm.loading {
		return 0, domain.ErrLoadInFlight
	}
	vm.loading = true
	vm.gen++
	return vm.gen, nil
}

// Fetch performs the roster request. No view-model state is touched here.
func (vm *ViewModel) Fetch(ctx context.Context) (*domain.RosterSnapshot, error) {
	return vm.client.TaskByUser(ctx, vm.taskID, vm.employeeID)
}

// ApplyLoad resolves a fetch. A stale generation is ignored entirely so a
// late reply can never clobber newer state. On success the snapshot is
// replaced as a whole; on failure the previous snapshot survives. The
// loading flag clears either way. Reports whether the result was applied.
func (vm *ViewModel) ApplyLoad(gen uint64, snap *domain.RosterSnapshot, err error) bool {
	if gen != vm.gen {
		return false
	}
	vm.loading = false
	if err != nil || snap == nil {
		return false
	}
	vm.snap = snap
	return true
}

// BeginPay checks payout preconditions and claims the per-user marker.
// Markers are per user id: a second pay for the same user is rejected while
// one is outstanding, payouts for different users proceed independently.
func (vm *ViewModel) BeginPay(userID string) error {
	if vm.snap == nil {
		return domain.ErrNoTaskLoaded
	}
	user := vm.findUser(userID)
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.Paid {
		return domain.ErrAlreadyPaid
	}
	if vm.paying[userID] {
		return domain.ErrPaymentInFlight
	}
	vm.paying[userID] = true
	return nil
}

// Pay performs the payout request. No view-model state is touched here.
func (vm *ViewModel) Pay(ctx context.Context, userID string) error {
	return vm.client.Pay(ctx, vm.taskID, userID, vm.employeeID)
}

// ApplyPay resolves a payout. Success flips exactly that user's paid flag in
// a fresh snapshot; failure leaves everything as it was and the user may
// retry. Reports whether the flag was advanced, which is also false when a
// refresh that finished mid-payout dropped the user from the roster.
func (vm *ViewModel) ApplyPay(userID string, err error) bool {
	delete(vm.paying, userID)
	if err != nil || vm.snap == nil {
		return false
	}
	next, found := markPaid(*vm.snap, userID)
	if !found {
		return false
	}
	vm.snap = &next
	return true
}

// markPaid returns a copy of the snapshot with the user's paid flag set and
// whether the user was present. The input snapshot and its user slice are
// left untouched.
func markPaid(snap domain.RosterSnapshot, userID string) (domain.RosterSnapshot, bool) {
	users := make([]domain.RosterUser, len(snap.Users))
	copy(users, snap.Users)
	for i := range users {
		if users[i].UserID == userID {
			users[i].Paid = true
			snap.Users = users
			return snap, true
		}
	}
	return snap, false
}

func (vm *ViewModel) findUser(userID string) *domain.RosterUser {
	if vm.snap == nil {
		return nil
	}
	for i := range vm.snap.Users {
		if vm.snap.Users[i].UserID == userID {
			return &vm.snap.Users[i]
		}
	}
	return nil
}

// Snapshot is the current roster state, nil before the first load.
func (vm *ViewModel) Snapshot() *domain.RosterSnapshot { return vm.snap }

// Loading reports whether a load is outstanding.
func (vm *ViewModel) Loading() bool { return vm.loading }

// Paying reports whether a payout for this user is outstanding.
func (vm *ViewModel) Paying(userID string) bool { return vm.paying[userID] }

// Users derives the filtered, sorted display list from the snapshot.
func (vm *ViewModel) Users(query, platform string) []UserMeta {
	if vm.snap == nil {
		return nil
	}
	return FilterSort(vm.snap.Users, query, platform)
}

// Countdown classifies the loaded task's expiry at the given instant.
func (vm *ViewModel) Countdown(now time.Time) Countdown {
	if vm.snap == nil {
		return Countdown{Phase: PhaseClosed}
	}
	return Classify(now, vm.snap.Task)
}
