package config

import "time"

const (
	// PageSize is the row count requested per page for paginated lists.
	PageSize = 10

	// CountdownTick is the cadence of the task expiry countdown refresh.
	CountdownTick = time.Second

	// UrgencyWindow is how close to expiry a task counts as urgent.
	UrgencyWindow = 6 * time.Hour
)
