package types

// Lobby and session payloads shared by every game type.
//
// POST /game/{type}/create   -> CreateGameResponse
// POST /game/join {code}     -> JoinGameResponse
// GET  /game/{id}/lobby-status -> LobbyStatus
// POST /game/{id}/start      -> StartGameResponse
// POST /game/{id}/ready, PATCH /game/{id}/heartbeat, POST /game/{id}/leave -> MessageResponse

type CreateGameResponse struct {
	GameID string `json:"gameId"`
	Code   string `json:"code"`
}

type JoinGameRequest struct {
	Code string `json:"code"`
}

type JoinGameResponse struct {
	GameID string `json:"gameId"`
}

type LobbyPlayer struct {
	UserID   int    `json:"userId"`
	Username string `json:"username,omitempty"`
	Ready    bool   `json:"ready"`
}

type LobbyStatus struct {
	Status  string        `json:"status"` // "waiting" | "started" | ...
	Players []LobbyPlayer `json:"players"`
	Started bool          `json:"started"`
}

type StartGameResponse struct {
	GameID            string `json:"gameId"`
	CurrentTurnUserID int    `json:"currentTurnUserId"`
	Status            string `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is what the backend sends alongside a non-2xx status.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
