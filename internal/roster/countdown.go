package roster

import (
	"fmt"
	"time"

	"github.com/refdesk/refdesk/internal/config"
	"github.com/refdesk/refdesk/internal/domain"
)

// Countdown phases. Display-only; Task.Status stays independent.
const (
	PhaseClosed = "closed"
	PhaseUrgent = "urgent"
	PhaseActive = "active"
)

// Countdown is the remaining time until a task expires plus its urgency
// classification.
type Countdown struct {
	Remaining time.Duration
	Phase     string
}

// Classify computes the countdown for a task at the given instant. Closed at
// or past expiry, urgent within the urgency window, active beyond it.
func Classify(now time.Time, task domain.Task) Countdown {
	remaining := task.ExpiryTime().Sub(now)
	switch {
	case remaining <= 0:
		return Countdown{Remaining: 0, Phase: PhaseClosed}
	case remaining <= config.UrgencyWindow:
		return Countdown{Remaining: remaining, Phase: PhaseUrgent}
	default:
		return Countdown{Remaining: remaining, Phase: PhaseActive}
	}
}

// String formats the remaining time as hh:mm:ss.
func (c Countdown) String() string {
	if c.Phase == PhaseClosed {
		return "00:00:00"
	}
	total := int(c.Remaining.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}
