package roster

import (
	"testing"
	"time"

	"github.com/refdesk/refdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresIn time.Duration
		phase     string
	}{
		{"already expired", -time.Hour, PhaseClosed},
		{"expires right now", 0, PhaseClosed},
		{"one minute left", time.Minute, PhaseUrgent},
		{"exactly six hours", 6 * time.Hour, PhaseUrgent},
		{"just over six hours", 6*time.Hour + time.Second, PhaseActive},
		{"a day left", 24 * time.Hour, PhaseActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expiry := now.Add(tt.expiresIn)
			task := domain.Task{CreatedAt: now.Add(-time.Hour), ExpiresAt: &expiry}

			c := Classify(now, task)
			assert.Equal(t, tt.phase, c.Phase)
		})
	}
}

func TestClassifyDerivesExpiryFromHours(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	task := domain.Task{CreatedAt: now.Add(-2 * time.Hour), ExpiryHours: 48}

	c := Classify(now, task)

	assert.Equal(t, PhaseActive, c.Phase)
	assert.Equal(t, 46*time.Hour, c.Remaining)
}

func TestClassifyExplicitExpiryWins(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)
	// ExpiryHours alone would leave the task active for two more days.
	task := domain.Task{CreatedAt: now, ExpiryHours: 48, ExpiresAt: &expiry}

	c := Classify(now, task)
	assert.Equal(t, PhaseUrgent, c.Phase)
}

func TestCountdownString(t *testing.T) {
	assert.Equal(t, "00:00:00", Countdown{Phase: PhaseClosed}.String())
	assert.Equal(t, "01:02:03", Countdown{
		Remaining: time.Hour + 2*time.Minute + 3*time.Second,
		Phase:     PhaseUrgent,
	}.String())
	assert.Equal(t, "26:00:00", Countdown{
		Remaining: 26 * time.Hour,
		Phase:     PhaseActive,
	}.String())
}

func TestTaskStatusIndependentOfCountdown(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Minute)
	task := domain.Task{CreatedAt: now.Add(-time.Hour), ExpiresAt: &expiry}

	// Urgent for display, still active for status purposes.
	assert.Equal(t, PhaseUrgent, Classify(now, task).Phase)
	assert.Equal(t, domain.TaskActive, task.Status(now))
}
