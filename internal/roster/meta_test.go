package roster

import (
	"testing"
	"time"

	"github.com/refdesk/refdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactAt(t *testing.T, ts string, platform string) domain.EmailContact {
	t.Helper()
	created, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
	return domain.EmailContact{
		Email:     "a***@example.com",
		Handle:    "@handle",
		Platform:  platform,
		CreatedAt: created,
	}
}

func sampleRoster(t *testing.T) []domain.RosterUser {
	t.Helper()
	return []domain.RosterUser{
		{
			UserID: "u1",
			Name:   "Alice Smith",
			Emails: []domain.EmailContact{
				contactAt(t, "2024-01-01T00:00:00Z", "youtube"),
				contactAt(t, "2024-01-03T00:00:00Z", "youtube"),
			},
		},
		{
			UserID: "u2",
			Name:   "Bob",
			Emails: []domain.EmailContact{
				contactAt(t, "2024-01-05T00:00:00Z", "instagram"),
			},
		},
		{
			UserID: "u3",
			Name:   "Carol",
			// no contacts yet
		},
	}
}

func TestWithMeta(t *testing.T) {
	meta := WithMeta(sampleRoster(t)[0])

	assert.Equal(t, 2, meta.Total)
	assert.Equal(t, "2024-01-01T00:00:00Z", meta.FirstSavedAt.Format(time.RFC3339))
	assert.Equal(t, "2024-01-03T00:00:00Z", meta.LastSavedAt.Format(time.RFC3339))
}

func TestWithMetaNoContacts(t *testing.T) {
	meta := WithMeta(domain.RosterUser{UserID: "u3"})

	assert.Zero(t, meta.Total)
	assert.True(t, meta.FirstSavedAt.IsZero())
	assert.True(t, meta.LastSavedAt.IsZero())
}

func TestFilterSortOrder(t *testing.T) {
	users := FilterSort(sampleRoster(t), "", PlatformAll)

	require.Len(t, users, 3)
	// Descending by last contact time, contact-less users last.
	assert.Equal(t, "u2", users[0].UserID)
	assert.Equal(t, "u1", users[1].UserID)
	assert.Equal(t, "u3", users[2].UserID)
}

func TestFilterSortSearchCaseInsensitive(t *testing.T) {
	users := FilterSort(sampleRoster(t), "alice", PlatformAll)

	require.Len(t, users, 1)
	assert.Equal(t, "Alice Smith", users[0].Name)
}

func TestFilterSortSearchMatchesHandleAndEmail(t *testing.T) {
	users := FilterSort(sampleRoster(t), "@HANDLE", PlatformAll)
	assert.Len(t, users, 2) // u1 and u2 both have contacts

	users = FilterSort(sampleRoster(t), "a***@", "")
	assert.Len(t, users, 2)
}

func TestFilterSortSearchNoMatch(t *testing.T) {
	users := FilterSort(sampleRoster(t), "zebra", PlatformAll)
	assert.Empty(t, users)
}

func TestFilterSortPlatform(t *testing.T) {
	users := FilterSort(sampleRoster(t), "", "instagram")

	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].UserID)
}

func TestFilterSortIsSubsetAndIdempotent(t *testing.T) {
	source := sampleRoster(t)

	first := FilterSort(source, "o", "youtube")
	second := FilterSort(source, "o", "youtube")

	assert.Equal(t, first, second)
	assert.LessOrEqual(t, len(first), len(source))
}

func TestFilterSortDoesNotMutateSource(t *testing.T) {
	source := sampleRoster(t)

	FilterSort(source, "", PlatformAll)

	assert.Equal(t, sampleRoster(t), source)
}
