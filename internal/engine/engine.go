package engine

import (
	"errors"

	"github.com/DoyleJ11/gamesync/internal/ui"
)

var ErrInFlight = errors.New("an attempt is already in flight")
var ErrNotYourTurn = errors.New("not your turn")
var ErrAnimating = errors.New("sequence animation in progress")
var ErrInteractionLocked = errors.New("interaction locked")
var ErrNotInGame = errors.New("game not in progress")
var ErrGameOver = errors.New("game already finished")

type Modal string

const (
	ModalNone              Modal = "none"
	ModalColorPicker       Modal = "colorPicker"
	ModalSequenceAnimation Modal = "sequenceAnimation"
	ModalGameEnd           Modal = "gameEnd"
	ModalVerification      Modal = "verification"
	ModalCheaterNotice     Modal = "cheaterNotice"
)

// Interaction is derived from the last snapshot and never persisted.
// CanInteract is false whenever ActiveModal is not ModalNone.
type Interaction struct {
	CanInteract bool  `json:"canInteract"`
	ActiveModal Modal `json:"activeModal"`
	Progress    int   `json:"progress"`
	InFlight    bool  `json:"inFlight"`
	Frozen      bool  `json:"frozen"`
}

// View is what the presentation adapter renders. Version increments on
// every change so adapters can skip duplicates.
type View struct {
	Version          int      `json:"version"`
	Phase            string   `json:"phase"`
	Subphase         Subphase `json:"subphase,omitempty"`
	MyTurn           bool     `json:"myTurn"`
	Players          int      `json:"players,omitempty"`
	Ready            int      `json:"ready,omitempty"`
	Outcome          Outcome  `json:"outcome,omitempty"`
	WinnerID         int      `json:"winnerId,omitempty"`
	AnimationVersion int      `json:"animationVersion,omitempty"`
	Interaction
}

// Status is the coarse status a game maps its snapshot onto.
type Status string

const (
	StatusWaiting      Status = "waiting"
	StatusInProgress   Status = "in_progress"
	StatusVerification Status = "verification"
	StatusFinished     Status = "finished"
)

// LobbyObservation is one lobby-status poll reduced to what drives phases.
type LobbyObservation struct {
	Players    int
	Ready      int
	MinPlayers int
	Started    bool
	IsHost     bool
}

func (o LobbyObservation) AllReady() bool {
	return o.Players >= o.MinPlayers && o.Ready == o.Players
}

// GameObservation is one game-status poll reduced to what drives phases.
type GameObservation struct {
	Status   Status
	Sub      Subphase
	MyTurn   bool
	Version  int // sequence / board version; keys animations and freezes
	Banned   bool
	WinnerID int
}

// Special reports snapshots that skip the reconciliation merge.
func (o GameObservation) Special() bool {
	return o.Status == StatusFinished || o.Status == StatusVerification || o.Banned
}

type Route string

const (
	RouteGame   Route = "game"
	RouteResult Route = "result"
	RouteHome   Route = "home"
)

// Effects are instructions the machine hands back to its session; the
// machine itself never touches the network, timers or the UI.
type Effect interface{ isEffect() }

type PlayAnimation struct{ Version int }
type StopPolling struct{}
type EnterGame struct{}
type RequestStart struct{}
type Navigate struct{ Route Route }
type Notify struct{ Notice ui.Notice }
type Feedback struct{ Positive bool }
type ScheduleSettle struct{ Gen int }

func (PlayAnimation) isEffect()  {}
func (StopPolling) isEffect()    {}
func (EnterGame) isEffect()      {}
func (RequestStart) isEffect()   {}
func (Navigate) isEffect()       {}
func (Notify) isEffect()         {}
func (Feedback) isEffect()       {}
func (ScheduleSettle) isEffect() {}
