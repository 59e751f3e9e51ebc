package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskExpiryTime(t *testing.T) {
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	task := Task{CreatedAt: created, ExpiryHours: 24}
	assert.Equal(t, created.Add(24*time.Hour), task.ExpiryTime())

	explicit := created.Add(3 * time.Hour)
	task.ExpiresAt = &explicit
	assert.Equal(t, explicit, task.ExpiryTime())
}

func TestTaskStatus(t *testing.T) {
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	task := Task{CreatedAt: created, ExpiryHours: 24}

	assert.Equal(t, TaskActive, task.Status(created.Add(time.Hour)))
	assert.Equal(t, TaskExpired, task.Status(created.Add(24*time.Hour)))
	assert.Equal(t, TaskExpired, task.Status(created.Add(48*time.Hour)))
}

func TestUserStatus(t *testing.T) {
	assert.Equal(t, UserCompleted, UserStatus(3, 3))
	assert.Equal(t, UserCompleted, UserStatus(4, 3))
	assert.Equal(t, UserPartial, UserStatus(2, 3))
	assert.Equal(t, UserPartial, UserStatus(0, 3))
	// An unset cap never counts as completed.
	assert.Equal(t, UserPartial, UserStatus(5, 0))
}
