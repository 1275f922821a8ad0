package battleship

import (
	"context"
	"fmt"

	"github.com/DoyleJ11/gamesync/internal/api"
	"github.com/DoyleJ11/gamesync/internal/engine"
	"github.com/DoyleJ11/gamesync/internal/session"
	"github.com/DoyleJ11/gamesync/internal/store"
	"github.com/DoyleJ11/gamesync/internal/ui"
	"github.com/DoyleJ11/gamesync/pkg/types"
)

const Type = "battleship"

const defaultBoardSize = 10

var (
	ErrOutOfBounds  = fmt.Errorf("%w: cell outside the board", session.ErrInvalidAction)
	ErrAlreadyFired = fmt.Errorf("%w: cell already fired at", session.ErrInvalidAction)
)

// Game keeps no caches: each snapshot carries both boards whole.
type Game struct {
	client *api.Client
}

func New(c *api.Client) *Game { return &Game{client: c} }

func (*Game) Type() string             { return Type }
func (*Game) MinPlayers() int          { return 2 }
func (*Game) Kinds() []store.CacheKind { return nil }

func (g *Game) Status(ctx context.Context, gameID string) (types.BattleshipStatus, error) {
	return api.Status[types.BattleshipStatus](ctx, g.client, gameID)
}

func (*Game) Observe(s types.BattleshipStatus, me int) engine.GameObservation {
	switch s.Status {
	case types.StatusFinished:
		return engine.GameObservation{Status: engine.StatusFinished, WinnerID: s.WinnerID}
	case types.StatusWaiting:
		return engine.GameObservation{Status: engine.StatusWaiting}
	}
	myTurn := me != 0 && s.CurrentTurnUserID == me
	sub := engine.SubOpponentTurn
	if myTurn {
		sub = engine.SubAttack
	}
	return engine.GameObservation{
		Status: engine.StatusInProgress,
		Sub:    sub,
		MyTurn: myTurn,
		// every shot changes one of the boards
		Version: len(s.MyShots) + len(s.OpponentShots),
	}
}

func (*Game) Sequences(types.BattleshipStatus, int) map[store.CacheKind]engine.SequenceView {
	return nil
}

func (*Game) Announce(store.CacheKind, []string) []ui.Notice { return nil }

func (*Game) Attempt(a session.Action) (engine.AttemptKind, error) {
	if a.Kind != session.ActionAttack {
		return 0, session.ErrUnknownAction
	}
	return engine.AttemptPlay, nil
}

func (*Game) Validate(last types.BattleshipStatus, _ int, _ session.Caches, _ int, a session.Action) error {
	size := last.BoardSize
	if size <= 0 {
		size = defaultBoardSize
	}
	if a.Row < 0 || a.Col < 0 || a.Row >= size || a.Col >= size {
		return ErrOutOfBounds
	}
	for _, s := range last.MyShots {
		if s.Row == a.Row && s.Col == a.Col {
			return ErrAlreadyFired
		}
	}
	return nil
}

func (g *Game) Perform(ctx context.Context, gameID string, a session.Action, _ session.Caches, _ int) (session.Outcome, error) {
	if a.Kind != session.ActionAttack {
		return session.Outcome{}, session.ErrUnknownAction
	}
	resp, err := g.client.Attack(ctx, gameID, a.Row, a.Col)
	if err != nil {
		return session.Outcome{}, err
	}
	if !resp.Hit {
		// the turn passes; the next poll shows it
		return session.Outcome{Result: engine.AttemptResult{Outcome: engine.AttemptMismatched, Message: "Miss."}}, nil
	}
	msg := "Hit!"
	if resp.Sunk {
		msg = "Ship sunk!"
	}
	return session.Outcome{Result: engine.AttemptResult{
		Outcome:   engine.AttemptSucceeded,
		AwaitPoll: resp.GameOver,
		Message:   msg,
	}}, nil
}
