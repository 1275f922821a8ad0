// Package games builds sessions for every supported game type.
package games

import (
	"errors"
	"fmt"
	"slices"

	"github.com/DoyleJ11/gamesync/internal/api"
	"github.com/DoyleJ11/gamesync/internal/games/battleship"
	"github.com/DoyleJ11/gamesync/internal/games/loteria"
	"github.com/DoyleJ11/gamesync/internal/games/simon"
	"github.com/DoyleJ11/gamesync/internal/session"
	"github.com/DoyleJ11/gamesync/pkg/types"
)

var ErrUnknownGame = errors.New("unknown game type")

func Types() []string {
	return []string{simon.Type, battleship.Type, loteria.Type}
}

func Known(gameType string) bool { return slices.Contains(Types(), gameType) }

// NewSession wires the game strategy for info.GameType into a session.
func NewSession(info session.GameSession, c *api.Client, deps session.Deps, cfg session.Config) (session.Runner, error) {
	switch info.GameType {
	case simon.Type:
		return session.New[types.SimonStatus](info, simon.New(c), deps, cfg), nil
	case battleship.Type:
		return session.New[types.BattleshipStatus](info, battleship.New(c), deps, cfg), nil
	case loteria.Type:
		return session.New[types.LoteriaStatus](info, loteria.New(c), deps, cfg), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGame, info.GameType)
}
