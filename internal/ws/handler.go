package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/DoyleJ11/gamesync/internal/hub"
	"github.com/DoyleJ11/gamesync/internal/session"
	"github.com/DoyleJ11/gamesync/internal/types"
)

const writeTimeout = 3 * time.Second

func Handler(h *hub.Hub, relay *Relay, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("id")
		if gameID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		rn, err := h.Get(r.Context(), gameID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if rn == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// the presentation layer is served from another local port
			InsecureSkipVerify: true,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := log.With(zap.String("game_id", gameID), zap.String("client_id", clientID))

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		views, err := rn.Subscribe(ctx, clientID)
		if err != nil {
			conn.Close(websocket.StatusGoingAway, "session closed")
			return
		}
		defer rn.Unsubscribe(clientID)

		notes := relay.Join(gameID, clientID)
		defer relay.Leave(gameID, clientID)

		// Writer goroutine
		go func() {
			defer cancel()
			for {
				var m types.ServerMessage
				select {
				case <-ctx.Done():
					return
				case v, ok := <-views:
					if !ok {
						conn.Close(websocket.StatusGoingAway, "session ended")
						return
					}
					m = types.ServerMessage{Type: types.MsgView, GameID: gameID, View: &v}
				case n, ok := <-notes:
					if !ok {
						return
					}
					m = n
				}
				if err := write(ctx, conn, m); err != nil {
					log.Debug("write failed", zap.Error(err))
					return
				}
			}
		}()

		log.Info("client connected")
		defer log.Info("client disconnected")

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					if ctx.Err() == nil {
						log.Debug("read failed", zap.Error(err))
					}
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(ctx, conn, types.ServerMessage{Type: types.MsgError, GameID: gameID, Error: "bad json"})
				continue
			}
			if err := dispatch(ctx, rn, cm); err != nil {
				_ = write(ctx, conn, types.ServerMessage{Type: types.MsgError, GameID: gameID, Error: err.Error()})
			}
		}
	}
}

var errUnknownType = errors.New("unknown type")

func dispatch(ctx context.Context, rn session.Runner, m types.ClientMessage) error {
	switch m.Type {
	case types.MsgAction:
		if m.Action == nil {
			return errors.New("missing action")
		}
		return rn.Submit(ctx, *m.Action)
	case types.MsgAnimationDone:
		rn.AnimationDone(m.Version)
		return nil
	case types.MsgDismiss:
		rn.Dismiss()
		return nil
	default:
		return errUnknownType
	}
}

func write(ctx context.Context, conn *websocket.Conn, m types.ServerMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, m)
}
