package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/gamesync/internal/api"
	"github.com/DoyleJ11/gamesync/internal/engine"
	"github.com/DoyleJ11/gamesync/internal/games"
	"github.com/DoyleJ11/gamesync/internal/hub"
	"github.com/DoyleJ11/gamesync/internal/session"
)

// Server carries what the handlers need to open and drive sessions.
type Server struct {
	Hub    *hub.Hub
	Client *api.Client
	Deps   session.Deps
	Config session.Config
	// Identity resolves the local user id, normally from the access token.
	Identity func(ctx context.Context) (int, error)
	Log      *zap.Logger
}

type sessionResponse struct {
	Session session.GameSession `json:"session"`
	Code    string              `json:"code,omitempty"`
	Created bool                `json:"created"`
	View    *engine.View        `json:"view,omitempty"`
}

func CreateGame(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameType := chi.URLParam(r, "type")
		if !games.Known(gameType) {
			http.Error(w, "unknown game type", http.StatusBadRequest)
			return
		}

		created, err := s.Client.CreateGame(r.Context(), gameType)
		if err != nil {
			s.fail(w, "create game", err)
			return
		}

		entry := session.Entry{GameType: gameType, ID: created.GameID}
		rn, fresh, err := s.open(r.Context(), entry, created.GameID)
		if err != nil {
			s.fail(w, "open session", err)
			return
		}
		writeJSON(w, http.StatusCreated, sessionResponse{Session: rn.Info(), Code: created.Code, Created: fresh})
	}
}

// EnterSession is the game screen's entry point: ?id= for the creator,
// ?code= for a player joining.
func EnterSession(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		entry := session.Entry{GameType: q.Get("type"), ID: q.Get("id"), Code: q.Get("code")}
		if !games.Known(entry.GameType) {
			http.Error(w, "unknown game type", http.StatusBadRequest)
			return
		}

		gameID := entry.ID
		switch {
		case entry.Code != "":
			joined, err := s.Client.JoinGame(r.Context(), entry.Code)
			if err != nil {
				s.fail(w, "join game", err)
				return
			}
			gameID = joined.GameID
		case gameID == "":
			http.Error(w, "missing id or code", http.StatusBadRequest)
			return
		}

		rn, fresh, err := s.open(r.Context(), entry, gameID)
		if err != nil {
			s.fail(w, "open session", err)
			return
		}
		status := http.StatusOK
		if fresh {
			status = http.StatusCreated
		}
		writeJSON(w, status, sessionResponse{Session: rn.Info(), Code: entry.Code, Created: fresh})
	}
}

func ListSessions(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.Hub.List(r.Context())
		if err != nil {
			s.fail(w, "list sessions", err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetSession(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rn, ok := s.lookup(w, r)
		if !ok {
			return
		}
		v, err := rn.View(r.Context())
		if err != nil {
			s.fail(w, "view", err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: rn.Info(), View: &v})
	}
}

func Ready(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rn, ok := s.lookup(w, r)
		if !ok {
			return
		}
		if err := rn.Ready(r.Context()); err != nil {
			s.fail(w, "ready", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func SubmitAction(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rn, ok := s.lookup(w, r)
		if !ok {
			return
		}
		var a session.Action
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := rn.Submit(r.Context(), a); err != nil {
			s.fail(w, "submit", err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func LeaveSession(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rn, ok := s.lookup(w, r)
		if !ok {
			return
		}
		err := rn.Leave(r.Context())
		if rerr := s.Hub.Remove(r.Context(), rn.Info().GameID); rerr != nil {
			s.Log.Warn("closing left session", zap.String("game_id", rn.Info().GameID), zap.Error(rerr))
		}
		if err != nil {
			s.fail(w, "leave", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// open returns the session for gameID, starting it if this call created it.
func (s *Server) open(ctx context.Context, entry session.Entry, gameID string) (session.Runner, bool, error) {
	uid, err := s.Identity(ctx)
	if err != nil {
		return nil, false, err
	}
	info := session.GameSession{
		GameID:      gameID,
		LocalUserID: uid,
		Role:        entry.Role(),
		GameType:    entry.GameType,
	}

	e, err := s.Hub.Ensure(ctx, gameID, func() (session.Runner, error) {
		return games.NewSession(info, s.Client, s.Deps, s.Config)
	})
	if err != nil {
		return nil, false, err
	}
	if !e.Created {
		return e.Runner, false, nil
	}
	if err := e.Runner.Start(ctx); err != nil {
		_ = s.Hub.Remove(ctx, gameID)
		return nil, false, err
	}
	s.Log.Info("session opened",
		zap.String("game_id", gameID),
		zap.String("game_type", info.GameType),
		zap.String("role", string(info.Role)),
	)
	return e.Runner, true, nil
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (session.Runner, bool) {
	rn, err := s.Hub.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "lookup", err)
		return nil, false
	}
	if rn == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return rn, true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.Log.Error(op+" failed", zap.Error(err))
	} else {
		s.Log.Debug(op+" refused", zap.Error(err))
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	var se *api.StatusError
	switch {
	case errors.As(err, &se):
		if se.Code >= 400 && se.Code < 500 {
			return se.Code
		}
		return http.StatusBadGateway
	case errors.Is(err, games.ErrUnknownGame),
		errors.Is(err, session.ErrUnknownAction),
		errors.Is(err, session.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrClosed), errors.Is(err, hub.ErrHubClosed):
		return http.StatusGone
	case errors.Is(err, engine.ErrInFlight),
		errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrAnimating),
		errors.Is(err, engine.ErrInteractionLocked),
		errors.Is(err, engine.ErrNotInGame),
		errors.Is(err, engine.ErrGameOver),
		errors.Is(err, session.ErrInactive):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
