package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/gamesync/pkg/types"
)

type staticToken string

func (s staticToken) AccessToken(context.Context) (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) AccessToken(context.Context) (string, error) { return "", errors.New("logged out") }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				writeJSON(w, http.StatusUnauthorized, types.ErrorResponse{Message: "bad token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Post("/game/{type}/create", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, types.CreateGameResponse{GameID: "g-" + chi.URLParam(r, "type"), Code: "ABC123"})
	})
	r.Post("/game/join", func(w http.ResponseWriter, r *http.Request) {
		var req types.JoinGameRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Code != "ABC123" {
			writeJSON(w, http.StatusNotFound, types.ErrorResponse{Message: "no such code"})
			return
		}
		writeJSON(w, http.StatusOK, types.JoinGameResponse{GameID: "g-1"})
	})
	r.Get("/game/{id}/lobby-status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.LobbyStatus{Status: "waiting", Players: []types.LobbyPlayer{{UserID: 1, Ready: true}}})
	})
	r.Patch("/game/{id}/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.MessageResponse{Message: "ok"})
	})
	r.Get("/game/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "gone" {
			http.Error(w, "missing", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, types.SimonStatus{Status: types.StatusInProgress, Phase: types.PhaseRepeatSequence, CurrentTurnUserID: 1})
	})
	r.Post("/game/{id}/simonsay/play", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Message: "not your turn"})
	})
	r.Get("/game/{id}/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{"))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LobbyFlow(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)
	c := New(srv.URL+"/", staticToken("tok"))

	created, err := c.CreateGame(ctx, "simonsay")
	require.NoError(t, err)
	assert.Equal(t, types.CreateGameResponse{GameID: "g-simonsay", Code: "ABC123"}, created)

	joined, err := c.JoinGame(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "g-1", joined.GameID)

	lobby, err := c.LobbyStatus(ctx, "g-1")
	require.NoError(t, err)
	require.Len(t, lobby.Players, 1)
	assert.True(t, lobby.Players[0].Ready)

	hb, err := c.Heartbeat(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "ok", hb.Message)
}

func TestClient_StatusGeneric(t *testing.T) {
	srv := newBackend(t)
	c := New(srv.URL, staticToken("tok"))

	st, err := Status[types.SimonStatus](context.Background(), c, "g-1")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseRepeatSequence, st.Phase)
}

func TestClient_ErrorClasses(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)

	t.Run("404 is not found and not transient", func(t *testing.T) {
		c := New(srv.URL, staticToken("tok"))
		_, err := Status[types.SimonStatus](ctx, c, "gone")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.False(t, IsTransient(err))
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.Code)
	})

	t.Run("join with unknown code carries backend message", func(t *testing.T) {
		c := New(srv.URL, staticToken("tok"))
		_, err := c.JoinGame(ctx, "NOPE")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "no such code")
	})

	t.Run("400 is a rejection", func(t *testing.T) {
		c := New(srv.URL, staticToken("tok"))
		_, err := c.SimonPlay(ctx, "g-1", "red", 0)
		require.ErrorIs(t, err, ErrRejected)
		assert.False(t, IsNotFound(err))
	})

	t.Run("wrong token is unauthorized", func(t *testing.T) {
		c := New(srv.URL, staticToken("other"))
		_, err := c.LobbyStatus(ctx, "g-1")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("token source failure never reaches the wire", func(t *testing.T) {
		c := New(srv.URL, failingToken{})
		_, err := c.LobbyStatus(ctx, "g-1")
		require.Error(t, err)
		var se *StatusError
		assert.False(t, errors.As(err, &se))
	})

	t.Run("bad json is transient", func(t *testing.T) {
		c := New(srv.URL, staticToken("tok"))
		var out map[string]any
		err := c.Get(ctx, "/game/g-1/broken", &out)
		require.Error(t, err)
		assert.True(t, IsTransient(err))
	})

	t.Run("connection refused is transient", func(t *testing.T) {
		c := New("http://127.0.0.1:1", staticToken("tok"))
		_, err := c.LobbyStatus(ctx, "g-1")
		require.Error(t, err)
		assert.True(t, IsTransient(err))
	})
}
