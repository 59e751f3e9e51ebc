package roster

import (
	"sort"
	"strings"
	"time"

	"github.com/refdesk/refdesk/internal/domain"
)

// PlatformAll disables platform filtering.
const PlatformAll = "all"

// UserMeta is a roster user with display metadata derived from their
// contacts. Recomputed from the snapshot, never persisted.
type UserMeta struct {
	domain.RosterUser
	FirstSavedAt time.Time
	LastSavedAt  time.Time
	Total        int
}

// WithMeta computes contact timestamp bounds and total for one user. Users
// without contacts keep zero timestamps.
func WithMeta(u domain.RosterUser) UserMeta {
	meta := UserMeta{RosterUser: u, Total: len(u.Emails)}
	for _, contact := range u.Emails {
		if meta.FirstSavedAt.IsZero() || contact.CreatedAt.Before(meta.FirstSavedAt) {
			meta.FirstSavedAt = contact.CreatedAt
		}
		if contact.CreatedAt.After(meta.LastSavedAt) {
			meta.LastSavedAt = contact.CreatedAt
		}
	}
	return meta
}

// FilterSort derives the display list: platform and substring filtering,
// then descending by last contact time with contact-less users last. Pure;
// the source slice is never touched and equal inputs yield equal output.
func FilterSort(users []domain.RosterUser, query, platform string) []UserMeta {
	query = strings.ToLower(strings.TrimSpace(query))

	result := make([]UserMeta, 0, len(users))
	for _, u := range users {
		if !matchesPlatform(u, platform) {
			continue
		}
		if query != "" && !strings.Contains(searchText(u), query) {
			continue
		}
		result = append(result, WithMeta(u))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastSavedAt.After(result[j].LastSavedAt)
	})
	return result
}

func matchesPlatform(u domain.RosterUser, platform string) bool {
	if platform == "" || platform == PlatformAll {
		return true
	}
	for _, contact := range u.Emails {
		if contact.Platform == platform {
			return true
		}
	}
	return false
}

// searchText is the lowercased haystack for substring search: name, user id,
// every masked email and every handle.
func searchText(u domain.RosterUser) string {
	var b strings.Builder
	b.WriteString(u.Name)
	b.WriteString(" ")
	b.WriteString(u.UserID)
	for _, contact := range u.Emails {
		b.WriteString(" ")
		b.WriteString(contact.Email)
		b.WriteString(" ")
		b.WriteString(contact.Handle)
	}
	return strings.ToLower(b.String())
}
