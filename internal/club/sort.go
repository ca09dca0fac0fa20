package club

import (
	"sort"
	"strings"
)

func sortRoster(members []RosterMember) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if la, lb := strings.ToLower(a.LastName), strings.ToLower(b.LastName); la != lb {
			return la < lb
		}
		if fa, fb := strings.ToLower(a.FirstName), strings.ToLower(b.FirstName); fa != fb {
			return fa < fb
		}
		return a.ID < b.ID
	})
}

// Sessions and matches are newest first.
func sortSessions(sessions []TrainingSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		return a.ID > b.ID
	})
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		return a.ID > b.ID
	})
}

func sortRoles(roles []RoleAssignment) {
	sort.SliceStable(roles, func(i, j int) bool {
		a, b := roles[i], roles[j]
		if !a.AssignedAt.Equal(b.AssignedAt) {
			return a.AssignedAt.After(b.AssignedAt)
		}
		return a.ID > b.ID
	})
}

func sortNews(links []NewsLink) {
	sort.SliceStable(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
