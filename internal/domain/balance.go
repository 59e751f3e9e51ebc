package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceEntry is one row of an employee's payout ledger.
type BalanceEntry struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"taskId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Reason    string          `json:"reason"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}
