package types

import (
	"github.com/DoyleJ11/gamesync/internal/engine"
	"github.com/DoyleJ11/gamesync/internal/session"
	"github.com/DoyleJ11/gamesync/internal/ui"
)

// Client message types.
const (
	MsgAction        = "Action"
	MsgAnimationDone = "AnimationDone"
	MsgDismiss       = "Dismiss"
)

// Server message types.
const (
	MsgView     = "View"
	MsgNotice   = "Notice"
	MsgNavigate = "Navigate"
	MsgFeedback = "Feedback"
	MsgError    = "Error"
)

type ClientMessage struct {
	Type    string          `json:"type"`
	Action  *session.Action `json:"action,omitempty"`
	Version int             `json:"version,omitempty"` // AnimationDone
}

type ServerMessage struct {
	Type     string       `json:"type"`
	GameID   string       `json:"gameId,omitempty"`
	View     *engine.View `json:"view,omitempty"`
	Notice   *ui.Notice   `json:"notice,omitempty"`
	Route    string       `json:"route,omitempty"`
	Positive *bool        `json:"positive,omitempty"`
	Error    string       `json:"error,omitempty"`
}
