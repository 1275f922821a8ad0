package lobby

import (
	"github.com/DoyleJ11/gamesync/internal/engine"
	"github.com/DoyleJ11/gamesync/pkg/types"
)

// Roster is one lobby-status answer. The backend lists players in join
// order, so the first entry is the player who created the game.
type Roster struct {
	Players []types.LobbyPlayer
	started bool
}

func FromStatus(s types.LobbyStatus) Roster {
	started := s.Started
	switch s.Status {
	case "started", "in_progress", "finished":
		started = true
	}
	return Roster{Players: s.Players, started: started}
}

func (r Roster) Started() bool { return r.started }

// Host returns the user id at roster index 0.
func (r Roster) Host() (int, bool) {
	if len(r.Players) == 0 {
		return 0, false
	}
	return r.Players[0].UserID, true
}

func (r Roster) IsHost(userID int) bool {
	host, ok := r.Host()
	return ok && userID != 0 && host == userID
}

func (r Roster) Has(userID int) bool {
	for _, p := range r.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (r Roster) ReadyCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Ready {
			n++
		}
	}
	return n
}

// Observe reduces the roster to what the phase machine acts on.
func (r Roster) Observe(me, minPlayers int) engine.LobbyObservation {
	return engine.LobbyObservation{
		Players:    len(r.Players),
		Ready:      r.ReadyCount(),
		MinPlayers: minPlayers,
		Started:    r.started,
		IsHost:     r.IsHost(me),
	}
}

// Change lists the players that appeared or vanished between two rosters.
type Change struct {
	Joined []types.LobbyPlayer
	Left   []types.LobbyPlayer
}

func (c Change) Empty() bool { return len(c.Joined) == 0 && len(c.Left) == 0 }

func Diff(prev, next Roster) Change {
	var c Change
	for _, p := range next.Players {
		if !prev.Has(p.UserID) {
			c.Joined = append(c.Joined, p)
		}
	}
	for _, p := range prev.Players {
		if !next.Has(p.UserID) {
			c.Left = append(c.Left, p)
		}
	}
	return c
}
