package session

// Role is decided once, when the player enters the game screen.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// RoleFor maps the navigation parameters onto a role: arriving with a join
// code makes a guest, arriving with a bare game id (right after creating
// the game) makes the host.
func RoleFor(id, code string) Role {
	if code != "" {
		return RoleGuest
	}
	return RoleHost
}

// Entry is how a player reaches a game screen: ?id= for the creator,
// ?code= for everyone who joins.
type Entry struct {
	GameType string `json:"type"`
	ID       string `json:"id,omitempty"`
	Code     string `json:"code,omitempty"`
}

func (e Entry) Role() Role { return RoleFor(e.ID, e.Code) }

// GameSession is the identity of one client's participation in one game.
type GameSession struct {
	GameID      string `json:"gameId"`
	LocalUserID int    `json:"localUserId"`
	Role        Role   `json:"role"`
	GameType    string `json:"gameType"`
}
