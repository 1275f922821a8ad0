package types

// Game status snapshots (GET /game/{id}/status) and action results.
// A snapshot is immutable once decoded; the next poll supersedes it entirely.

// Coarse statuses seen across games.
const (
	StatusWaiting           = "waiting"
	StatusWaitingFirstColor = "waiting_first_color"
	StatusStarted           = "started"
	StatusInProgress        = "in_progress"
	StatusVerification      = "verification"
	StatusFinished          = "finished"
)

// Simon Says phases.
const (
	PhaseChooseFirstColor = "choose_first_color"
	PhaseChooseNextColor  = "choose_next_color"
	PhaseRepeatSequence   = "repeat_sequence"
)

type SimonPlayer struct {
	UserID         int    `json:"userId"`
	SequenceLength int    `json:"sequenceLength"`
	LastAddedColor string `json:"lastAddedColor,omitempty"`
}

type SimonStatus struct {
	Status            string        `json:"status"`
	Phase             string        `json:"phase"`
	CurrentTurnUserID int           `json:"currentTurnUserId"`
	SequenceVersion   int           `json:"sequenceVersion"`
	Players           []SimonPlayer `json:"players"`
	WinnerID          int           `json:"winnerId,omitempty"`
}

// SimonSequences is the full-resync payload (GET /game/{id}/simonsay/sequence).
type SimonSequences struct {
	MySequence       []string `json:"mySequence"`
	OpponentSequence []string `json:"opponentSequence"`
}

type SimonChooseRequest struct {
	Color string `json:"color"`
}

type SimonChooseResponse struct {
	Message        string `json:"message"`
	SequenceLength int    `json:"sequenceLength"`
}

type SimonPlayRequest struct {
	Color string `json:"color"`
	Index int    `json:"index"`
}

type SimonPlayResponse struct {
	Correct           bool `json:"correct"`
	SequenceCompleted bool `json:"sequenceCompleted"`
	GameOver          bool `json:"gameOver"`
}

type Shot struct {
	Row int  `json:"row"`
	Col int  `json:"col"`
	Hit bool `json:"hit"`
}

type BattleshipStatus struct {
	Status            string  `json:"status"`
	CurrentTurnUserID int     `json:"currentTurnUserId"`
	BoardSize         int     `json:"boardSize"`
	MyBoard           [][]int `json:"myBoard"`
	MyShots           []Shot  `json:"myShots"`
	OpponentShots     []Shot  `json:"opponentShots"`
	WinnerID          int     `json:"winnerId,omitempty"`
}

type AttackRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type AttackResponse struct {
	Hit      bool `json:"hit"`
	Sunk     bool `json:"sunk"`
	GameOver bool `json:"gameOver"`
	WinnerID int  `json:"winnerId,omitempty"`
}

type LoteriaStatus struct {
	Status          string   `json:"status"`
	CurrentCard     string   `json:"currentCard,omitempty"`
	DrawnCount      int      `json:"drawnCount"`
	DrawnCards      []string `json:"drawnCards,omitempty"`
	Board           []string `json:"board"`
	Marked          []string `json:"marked"`
	Banned          bool     `json:"banned"`
	VerifyingUserID int      `json:"verifyingUserId,omitempty"`
	WinnerID        int      `json:"winnerId,omitempty"`
}

type MarkRequest struct {
	Card string `json:"card"`
}

type MarkResponse struct {
	Marked       bool `json:"marked"`
	AutoClaimWin bool `json:"autoClaimWin"`
}

type ClaimResponse struct {
	Valid   bool   `json:"valid"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
