// Package simon maps Simon Says snapshots and moves onto a session.
//
// Each player owns the sequence they must repeat ("my") and builds the
// sequence their opponent must repeat ("opponent"). A round is: watch your
// sequence, repeat it colour by colour, then add one colour to the
// opponent's.
package simon

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

const Type = "simonsay"

var Colors = []string{"red", "blue", "green", "yellow"}

var (
	ErrUnknownColor     = fmt.Errorf("%w: unknown colour", session.ErrInvalidAction)
	ErrSequenceComplete = fmt.Errorf("%w: sequence already repeated", session.ErrInvalidAction)
	ErrNotSynced        = fmt.Errorf("%w: sequence still synchronising", engine.ErrInteractionLocked)
)

type Game struct {
	client *api.Client
}

func New(c *api.Client) *Game { return &Game{client: c} }

func (*Game) Type() string    { return Type }
func (*Game) MinPlayers() int { return 2 }

func (*Game) Kinds() []store.CacheKind {
	return []store.CacheKind{store.KindMySequence, store.KindOpponentSequence}
}

func (g *Game) Status(ctx context.Context, gameID string) (types.SimonStatus, error) {
	return api.Status[types.SimonStatus](ctx, g.client, gameID)
}

func (*Game) Observe(s types.SimonStatus, me int) engine.GameObservation {
	switch s.Status {
	case types.StatusFinished:
		return engine.GameObservation{Status: engine.StatusFinished, WinnerID: s.WinnerID}
	case types.StatusWaiting:
		return engine.GameObservation{Status: engine.StatusWaiting}
	}

	var sub engine.Subphase
	switch s.Phase {
	case types.PhaseChooseFirstColor:
		sub = engine.SubChooseFirstColor
	case types.PhaseChooseNextColor:
		sub = engine.SubChooseNextColor
	case types.PhaseRepeatSequence:
		sub = engine.SubRepeatSequence
	default:
		if s.Status == types.StatusWaitingFirstColor {
			sub = engine.SubChooseFirstColor
		}
	}
	return engine.GameObservation{
		Status:  engine.StatusInProgress,
		Sub:     sub,
		MyTurn:  me != 0 && s.CurrentTurnUserID == me,
		Version: s.SequenceVersion,
	}
}

func (*Game) Sequences(s types.SimonStatus, me int) map[store.CacheKind]engine.SequenceView {
	out := make(map[store.CacheKind]engine.SequenceView, 2)
	for _, p := range s.Players {
		view := engine.SequenceView{Length: p.SequenceLength, LastAdded: p.LastAddedColor}
		if p.UserID == me {
			out[store.KindMySequence] = view
		} else {
			out[store.KindOpponentSequence] = view
		}
	}
	return out
}

func (g *Game) Resync(ctx context.Context, gameID string) (session.Caches, error) {
	seqs, err := g.client.SimonSequences(ctx, gameID)
	if err != nil {
		return nil, err
	}
	out := session.Caches{}
	if seqs.MySequence != nil {
		out[store.KindMySequence] = seqs.MySequence
	}
	if seqs.OpponentSequence != nil {
		out[store.KindOpponentSequence] = seqs.OpponentSequence
	}
	return out, nil
}

func (*Game) Announce(kind store.CacheKind, added []string) []ui.Notice {
	if kind != store.KindMySequence {
		return nil
	}
	notices := make([]ui.Notice, 0, len(added))
	for _, c := range added {
		notices = append(notices, ui.Notice{
			Level:   ui.LevelInfo,
			Title:   "New colour",
			Message: fmt.Sprintf("Your opponent added %s to your sequence.", c),
		})
	}
	return notices
}

func (*Game) Attempt(a session.Action) (engine.AttemptKind, error) {
	switch a.Kind {
	case session.ActionChoose:
		return engine.AttemptChoose, nil
	case session.ActionPlay:
		return engine.AttemptPlay, nil
	}
	return 0, session.ErrUnknownAction
}

func (*Game) Validate(last types.SimonStatus, me int, caches session.Caches, progress int, a session.Action) error {
	if !slices.Contains(Colors, a.Color) {
		return ErrUnknownColor
	}
	if a.Kind != session.ActionPlay {
		return nil
	}
	mine := caches[store.KindMySequence]
	for _, p := range last.Players {
		if p.UserID == me && p.SequenceLength > len(mine) {
			// a full fetch is on its way; playing now would use the wrong colours
			return ErrNotSynced
		}
	}
	if progress >= len(mine) {
		return ErrSequenceComplete
	}
	return nil
}

func (g *Game) Perform(ctx context.Context, gameID string, a session.Action, _ session.Caches, progress int) (session.Outcome, error) {
	switch a.Kind {
	case session.ActionChoose:
		resp, err := g.client.SimonChoose(ctx, gameID, a.Color)
		if err != nil {
			return session.Outcome{}, err
		}
		out := session.Outcome{Result: engine.AttemptResult{Outcome: engine.AttemptSucceeded, AwaitPoll: true}}
		if resp.SequenceLength > 0 {
			out.Sequences = map[store.CacheKind]engine.SequenceView{
				store.KindOpponentSequence: {Length: resp.SequenceLength, LastAdded: a.Color},
			}
		}
		return out, nil

	case session.ActionPlay:
		resp, err := g.client.SimonPlay(ctx, gameID, a.Color, progress)
		if err != nil {
			return session.Outcome{}, err
		}
		switch {
		case !resp.Correct:
			return session.Outcome{Result: engine.AttemptResult{Outcome: engine.AttemptMismatched, Message: "Wrong colour!"}}, nil
		case resp.SequenceCompleted || resp.GameOver:
			return session.Outcome{Result: engine.AttemptResult{
				Outcome:   engine.AttemptSucceeded,
				Advance:   true,
				AwaitPoll: true,
				Message:   "Sequence complete!",
			}}, nil
		}
		return session.Outcome{Result: engine.AttemptResult{Outcome: engine.AttemptSucceeded, Advance: true}}, nil
	}
	return session.Outcome{}, session.ErrUnknownAction
}
