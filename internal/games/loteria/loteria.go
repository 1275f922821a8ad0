// Package loteria maps Lotería snapshots and moves onto a session. Every
// player marks at once, so there is no turn: the drawn-card history is the
// only thing reconciled between polls.
package loteria

import (
	"context"
	"fmt"
	"slices"

	"github.com/DoyleJ11/gamesync/internal/api"
	"github.com/DoyleJ11/gamesync/internal/engine"
	"github.com/DoyleJ11/gamesync/internal/session"
	"github.com/DoyleJ11/gamesync/internal/store"
	"github.com/DoyleJ11/gamesync/internal/ui"
	"github.com/DoyleJ11/gamesync/pkg/types"
)

const Type = "loteria"

var (
	ErrNoCard        = fmt.Errorf("%w: no card given", session.ErrInvalidAction)
	ErrNotDrawn      = fmt.Errorf("%w: card has not been drawn", session.ErrInvalidAction)
	ErrNotOnBoard    = fmt.Errorf("%w: card is not on your board", session.ErrInvalidAction)
	ErrAlreadyMarked = fmt.Errorf("%w: card already marked", session.ErrInvalidAction)
)

type Game struct {
	client *api.Client
}

func New(c *api.Client) *Game { return &Game{client: c} }

func (*Game) Type() string    { return Type }
func (*Game) MinPlayers() int { return 2 }

func (*Game) Kinds() []store.CacheKind { return []store.CacheKind{store.KindDrawnCards} }

func (g *Game) Status(ctx context.Context, gameID string) (types.LoteriaStatus, error) {
	return api.Status[types.LoteriaStatus](ctx, g.client, gameID)
}

func (*Game) Observe(s types.LoteriaStatus, _ int) engine.GameObservation {
	switch s.Status {
	case types.StatusFinished:
		return engine.GameObservation{Status: engine.StatusFinished, WinnerID: s.WinnerID}
	case types.StatusWaiting:
		return engine.GameObservation{Status: engine.StatusWaiting}
	case types.StatusVerification:
		return engine.GameObservation{Status: engine.StatusVerification, Version: s.DrawnCount, Banned: s.Banned}
	}
	return engine.GameObservation{
		Status:  engine.StatusInProgress,
		Sub:     engine.SubMarking,
		MyTurn:  !s.Banned,
		Version: s.DrawnCount,
		Banned:  s.Banned,
	}
}

func (*Game) Sequences(s types.LoteriaStatus, _ int) map[store.CacheKind]engine.SequenceView {
	return map[store.CacheKind]engine.SequenceView{
		store.KindDrawnCards: {Length: s.DrawnCount, LastAdded: s.CurrentCard, Full: s.DrawnCards},
	}
}

func (*Game) Announce(kind store.CacheKind, added []string) []ui.Notice {
	if kind != store.KindDrawnCards || len(added) == 0 {
		return nil
	}
	// only the newest card is worth a toast
	return []ui.Notice{{Level: ui.LevelInfo, Title: "Card drawn", Message: added[len(added)-1]}}
}

func (*Game) Attempt(a session.Action) (engine.AttemptKind, error) {
	switch a.Kind {
	case session.ActionMark:
		return engine.AttemptPlay, nil
	case session.ActionClaim:
		return engine.AttemptClaim, nil
	}
	return 0, session.ErrUnknownAction
}

func (*Game) Validate(last types.LoteriaStatus, _ int, caches session.Caches, _ int, a session.Action) error {
	if a.Kind != session.ActionMark {
		return nil
	}
	switch {
	case a.Card == "":
		return ErrNoCard
	case a.Card != last.CurrentCard && !slices.Contains(caches[store.KindDrawnCards], a.Card):
		return ErrNotDrawn
	case !slices.Contains(last.Board, a.Card):
		return ErrNotOnBoard
	case slices.Contains(last.Marked, a.Card):
		return ErrAlreadyMarked
	}
	return nil
}

func (g *Game) Perform(ctx context.Context, gameID string, a session.Action, _ session.Caches, _ int) (session.Outcome, error) {
	switch a.Kind {
	case session.ActionMark:
		resp, err := g.client.MarkCard(ctx, gameID, a.Card)
		if err != nil {
			return session.Outcome{}, err
		}
		switch {
		case !resp.Marked:
			return session.Outcome{Result: engine.AttemptResult{Outcome: engine.AttemptRejected, Message: "The card could not be marked."}}, nil
		case resp.AutoClaimWin:
			return session.Outcome{Result: engine.AttemptResult{
				Outcome:   engine.AttemptSucceeded,
				AwaitPoll: true,
				Message:   "Lotería! Your board is being verified.",
			}}, nil
		}
		return session.Outcome{Result: engine.AttemptResult{Outcome: engine.AttemptSucceeded}}, nil

	case session.ActionClaim:
		resp, err := g.client.ClaimWin(ctx, gameID)
		if err != nil {
			return session.Outcome{}, err
		}
		if !resp.Valid {
			msg := resp.Message
			if msg == "" {
				msg = "That board does not win."
			}
			return session.Outcome{Result: engine.AttemptResult{Outcome: engine.AttemptRejected, Message: msg}}, nil
		}
		msg := resp.Message
		if msg == "" {
			msg = "Claim sent for verification."
		}
		return session.Outcome{Result: engine.AttemptResult{Outcome: engine.AttemptSucceeded, AwaitPoll: true, Message: msg}}, nil
	}
	return session.Outcome{}, session.ErrUnknownAction
}
