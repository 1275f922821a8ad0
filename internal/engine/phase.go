package engine

type Subphase string

const (
	SubPending          Subphase = "pending"
	SubChooseFirstColor Subphase = "choose_first_color"
	SubChooseNextColor  Subphase = "choose_next_color"
	SubRepeatSequence   Subphase = "repeat_sequence"
	SubOpponentTurn     Subphase = "opponent_turn"
	SubAttack           Subphase = "attack"
	SubMarking          Subphase = "marking"
	SubVerification     Subphase = "verification"
	SubSpectate         Subphase = "spectate"
)

// choosing subphases open the colour picker on the local player's turn
func (s Subphase) choosing() bool {
	return s == SubChooseFirstColor || s == SubChooseNextColor
}

type Outcome string

const (
	OutcomeWon      Outcome = "won"
	OutcomeLost     Outcome = "lost"
	OutcomeFinished Outcome = "finished"
	OutcomeAborted  Outcome = "aborted"
)

// Phase is a closed set; the unexported method keeps other packages from
// adding variants, so every switch over it lives here.
type Phase interface {
	isPhase()
	Name() string
}

type Idle struct{}

type LobbyWaiting struct {
	Players int
}

type LobbyReadyCheck struct {
	Players int
	Ready   int
}

type InProgress struct {
	Sub Subphase
}

type Terminal struct {
	Outcome  Outcome
	WinnerID int
}

func (Idle) isPhase()            {}
func (LobbyWaiting) isPhase()    {}
func (LobbyReadyCheck) isPhase() {}
func (InProgress) isPhase()      {}
func (Terminal) isPhase()        {}

func (Idle) Name() string            { return "idle" }
func (LobbyWaiting) Name() string    { return "lobby_waiting" }
func (LobbyReadyCheck) Name() string { return "lobby_ready_check" }
func (InProgress) Name() string      { return "in_progress" }
func (Terminal) Name() string        { return "terminal" }
