package domain

import "time"

// Roster user statuses.
const (
	UserCompleted = "completed"
	UserPartial   = "partial"
)

// EmailContact is one submitted contact. Appended server-side, read-only
// here. The email is masked by the backend before it ever reaches us.
type EmailContact struct {
	Email     string    `json:"email"`
	Handle    string    `json:"handle"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
}

// RosterUser is one participant in a task's roster. Paid is the only field
// the client ever changes, and only false to true after the backend confirms
// a payout.
type RosterUser struct {
	UserID    string         `json:"userId"`
	Name      string         `json:"name,omitempty"`
	DoneCount int            `json:"doneCount"`
	Status    string         `json:"status"`
	Emails    []EmailContact `json:"emails"`
	Paid      bool           `json:"paid"`
}

// UserStatus derives completed/partial from the submission count against the
// task's cap.
func UserStatus(doneCount, maxEmails int) string {
	if maxEmails > 0 && doneCount >= maxEmails {
		return UserCompleted
	}
	return UserPartial
}

// Totals summarizes a roster.
type Totals struct {
	Performing int `json:"performing"`
	Completed  int `json:"completed"`
	Partial    int `json:"partial"`
}

// RosterSnapshot is the full state for one task+employee pair as returned by
// the backend. Loaded and replaced as a whole; never shown half-updated.
type RosterSnapshot struct {
	Task   Task         `json:"task"`
	Totals Totals       `json:"totals"`
	Users  []RosterUser `json:"users"`
}
