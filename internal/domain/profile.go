package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry statuses as assigned by admin review.
const (
	EntryPending  = "pending"
	EntryApproved = "approved"
	EntryRejected = "rejected"
	EntryPaid     = "paid"
)

// Entry is a recorded submission (link engagement or email contact)
// attributed to a user.
type Entry struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Proof     string          `json:"proof,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Profile is a user's account as seen by the user themselves.
type Profile struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Entries []Entry `json:"entries"`
}
