package app

import (
	"context"
	"fmt"

	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/stats"
)

// liveSelection keeps the selected ids that still resolve to a roster member.
func liveSelection(v *attendance.View, players []int64) []int64 {
	out := make([]int64, 0, len(players))
	for _, id := range players {
		if _, ok := v.Member(id); ok {
			out = append(out, id)
		}
	}
	return out
}

// Matches lists the matches with deleted members left out of each selection.
func (a *App) Matches() []club.Match {
	v := a.View()
	matches := a.Stores().Matches.List()
	for i := range matches {
		matches[i].SelectedPlayers = liveSelection(v, matches[i].SelectedPlayers)
	}
	return matches
}

func (a *App) Match(id int64) (club.Match, bool) {
	m, ok := a.Stores().Matches.Get(id)
	if !ok {
		return club.Match{}, false
	}
	m.SelectedPlayers = liveSelection(a.View(), m.SelectedPlayers)
	return m, true
}

// SelectPlayer adds memberID to the selection. Selected ids of deleted members
// are dropped first so they never count against the cap.
func (a *App) SelectPlayer(ctx context.Context, matchID, memberID int64) (club.Match, error) {
	matches := a.Stores().Matches
	m, ok := matches.Get(matchID)
	if !ok {
		return matches.SelectPlayer(ctx, matchID, memberID)
	}
	v := a.View()
	if _, ok := v.Member(memberID); !ok {
		return club.Match{}, fmt.Errorf("member %d: %w", memberID, club.ErrNotFound)
	}
	live := liveSelection(v, m.SelectedPlayers)
	if len(live) == len(m.SelectedPlayers) || m.IsSelected(memberID) {
		return matches.SelectPlayer(ctx, matchID, memberID)
	}
	return matches.UpdatePlayers(ctx, matchID, append(live, memberID))
}

// UnselectPlayer removes memberID and prunes deleted members in the same write.
func (a *App) UnselectPlayer(ctx context.Context, matchID, memberID int64) (club.Match, error) {
	matches := a.Stores().Matches
	m, ok := matches.Get(matchID)
	if !ok {
		return matches.UnselectPlayer(ctx, matchID, memberID)
	}
	players := make([]int64, 0, len(m.SelectedPlayers))
	for _, id := range liveSelection(a.View(), m.SelectedPlayers) {
		if id != memberID {
			players = append(players, id)
		}
	}
	return matches.UpdatePlayers(ctx, matchID, players)
}

func (a *App) validRoles(roles []club.RoleAssignment) []club.RoleAssignment {
	return stats.ValidRoles(a.View(), roles, a.Stores().Matches.List())
}

// Roles lists the assignments whose member and match still exist.
func (a *App) Roles() []club.RoleAssignment {
	return a.validRoles(a.Stores().Roles.List())
}

func (a *App) MemberRoles(memberID int64) []club.RoleAssignment {
	return a.validRoles(a.Stores().Roles.ForMember(memberID))
}

func (a *App) MatchRoles(matchID int64) []club.RoleAssignment {
	return a.validRoles(a.Stores().Roles.ForMatch(matchID))
}
