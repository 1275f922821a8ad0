package session

import (
	"context"
	"errors"

	"github.com/DoyleJ11/gamesync/internal/engine"
	"github.com/DoyleJ11/gamesync/internal/store"
	"github.com/DoyleJ11/gamesync/internal/ui"
)

var (
	ErrUnknownAction = errors.New("action not supported by this game")
	ErrInvalidAction = errors.New("invalid action")
)

type ActionKind string

const (
	ActionChoose ActionKind = "choose"
	ActionPlay   ActionKind = "play"
	ActionAttack ActionKind = "attack"
	ActionMark   ActionKind = "mark"
	ActionClaim  ActionKind = "claim"
)

// Action is one player interaction; each game reads the fields it needs.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Color string     `json:"color,omitempty"`
	Row   int        `json:"row,omitempty"`
	Col   int        `json:"col,omitempty"`
	Card  string     `json:"card,omitempty"`
}

// Caches holds the reconciled sequences of a session by kind.
type Caches map[store.CacheKind][]string

// Outcome is a game's reading of an action response.
type Outcome struct {
	Result engine.AttemptResult
	// Sequences reports growth the response revealed; it is merged like a poll.
	Sequences map[store.CacheKind]engine.SequenceView
}

// Game is everything a session needs to know about one game type. S is the
// decoded status snapshot.
type Game[S any] interface {
	Type() string
	MinPlayers() int
	// Kinds lists the cached sequences, in merge order.
	Kinds() []store.CacheKind

	Status(ctx context.Context, gameID string) (S, error)
	Observe(s S, me int) engine.GameObservation
	Sequences(s S, me int) map[store.CacheKind]engine.SequenceView
	// Announce turns newly appended tokens into notices.
	Announce(kind store.CacheKind, added []string) []ui.Notice

	Attempt(a Action) (engine.AttemptKind, error)
	Validate(last S, me int, caches Caches, progress int, a Action) error
	Perform(ctx context.Context, gameID string, a Action, caches Caches, progress int) (Outcome, error)
}

// Resyncer is implemented by games that can fetch their complete sequences.
// Without it a cache that cannot be merged is rebuilt from later snapshots.
type Resyncer interface {
	Resync(ctx context.Context, gameID string) (Caches, error)
}
