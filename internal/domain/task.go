package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Task statuses as reported to the rest of the app.
const (
	TaskActive  = "active"
	TaskExpired = "expired"
)

// Task is an email-collection campaign owned by the backend. Immutable on
// the client once loaded.
type Task struct {
	ID          string          `json:"id"`
	Platform    string          `json:"platform"`
	Target      int             `json:"targetPerEmployee"`
	Amount      decimal.Decimal `json:"amountPerPerson"`
	MaxEmails   int             `json:"maxEmails"`
	ExpiryHours int             `json:"expiryHours"`
	CreatedAt   time.Time       `json:"createdAt"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
}

// ExpiryTime returns the effective expiry. An explicit timestamp from the
// backend wins over creation time plus expiry hours.
func (t *Task) ExpiryTime() time.Time {
	if t.ExpiresAt != nil {
		return *t.ExpiresAt
	}
	return t.CreatedAt.Add(time.Duration(t.ExpiryHours) * time.Hour)
}

// Status derives active/expired from the effective expiry.
func (t *Task) Status(now time.Time) string {
	if now.Before(t.ExpiryTime()) {
		return TaskActive
	}
	return TaskExpired
}
