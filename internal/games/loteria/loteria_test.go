package loteria

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/gamesync/internal/api"
	"github.com/DoyleJ11/gamesync/internal/engine"
	"github.com/DoyleJ11/gamesync/internal/session"
	"github.com/DoyleJ11/gamesync/internal/store"
	"github.com/DoyleJ11/gamesync/pkg/types"
)

type token string

func (t token) AccessToken(context.Context) (string, error) { return string(t), nil }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestObserve(t *testing.T) {
	g := New(nil)

	playing := g.Observe(types.LoteriaStatus{Status: types.StatusStarted, DrawnCount: 4}, 1)
	require.Equal(t, engine.GameObservation{Status: engine.StatusInProgress, Sub: engine.SubMarking, MyTurn: true, Version: 4}, playing)

	banned := g.Observe(types.LoteriaStatus{Status: types.StatusInProgress, DrawnCount: 4, Banned: true}, 1)
	require.True(t, banned.Banned)
	require.False(t, banned.MyTurn)
	require.True(t, banned.Special())

	verifying := g.Observe(types.LoteriaStatus{Status: types.StatusVerification, DrawnCount: 5}, 1)
	require.Equal(t, engine.StatusVerification, verifying.Status)

	done := g.Observe(types.LoteriaStatus{Status: types.StatusFinished, WinnerID: 9}, 1)
	require.Equal(t, engine.GameObservation{Status: engine.StatusFinished, WinnerID: 9}, done)
}

func TestSequences_DrawnHistory(t *testing.T) {
	s := types.LoteriaStatus{DrawnCount: 2, CurrentCard: "La Luna", DrawnCards: []string{"El Gallo", "La Luna"}}
	got := New(nil).Sequences(s, 1)[store.KindDrawnCards]
	require.Equal(t, engine.SequenceView{Length: 2, LastAdded: "La Luna", Full: []string{"El Gallo", "La Luna"}}, got)

	// a history that skips ahead merges wholesale from the full list
	m := engine.MergeSequence([]string{"El Gallo"}, got)
	require.Equal(t, engine.MergeAppended, m.Outcome)
}

func TestValidate(t *testing.T) {
	g := New(nil)
	last := types.LoteriaStatus{
		CurrentCard: "La Luna",
		Board:       []string{"El Gallo", "La Luna", "El Sol"},
		Marked:      []string{"El Gallo"},
	}
	caches := session.Caches{store.KindDrawnCards: {"El Gallo", "El Borracho"}}

	cases := []struct {
		card string
		want error
	}{
		{"La Luna", nil},
		{"", ErrNoCard},
		{"El Sol", ErrNotDrawn},
		{"El Borracho", ErrNotOnBoard},
		{"El Gallo", ErrAlreadyMarked},
	}
	for _, tc := range cases {
		err := g.Validate(last, 1, caches, 0, session.Action{Kind: session.ActionMark, Card: tc.card})
		if tc.want == nil {
			assert.NoError(t, err, tc.card)
		} else {
			assert.ErrorIs(t, err, tc.want, tc.card)
		}
	}
	assert.NoError(t, g.Validate(last, 1, caches, 0, session.Action{Kind: session.ActionClaim}))
}

func TestPerform(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/game/{id}/loteria/mark", func(w http.ResponseWriter, r *http.Request) {
		var req types.MarkRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Card {
		case "El Sol":
			writeJSON(w, types.MarkResponse{Marked: true, AutoClaimWin: true})
		case "La Muerte":
			writeJSON(w, types.MarkResponse{Marked: false})
		default:
			writeJSON(w, types.MarkResponse{Marked: true})
		}
	})
	r.Post("/game/{id}/loteria/claim", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "bad" {
			writeJSON(w, types.ClaimResponse{Valid: false, Status: types.StatusInProgress, Message: "Tramposo"})
			return
		}
		writeJSON(w, types.ClaimResponse{Valid: true, Status: types.StatusVerification})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	g := New(api.New(srv.URL, token("tok")))
	ctx := context.Background()

	out, err := g.Perform(ctx, "1", session.Action{Kind: session.ActionMark, Card: "La Luna"}, nil, 0)
	require.NoError(t, err)
	require.Equal(t, engine.AttemptResult{Outcome: engine.AttemptSucceeded}, out.Result)

	out, err = g.Perform(ctx, "1", session.Action{Kind: session.ActionMark, Card: "El Sol"}, nil, 0)
	require.NoError(t, err)
	require.True(t, out.Result.AwaitPoll)

	out, err = g.Perform(ctx, "1", session.Action{Kind: session.ActionMark, Card: "La Muerte"}, nil, 0)
	require.NoError(t, err)
	require.Equal(t, engine.AttemptRejected, out.Result.Outcome)

	out, err = g.Perform(ctx, "1", session.Action{Kind: session.ActionClaim}, nil, 0)
	require.NoError(t, err)
	require.Equal(t, engine.AttemptSucceeded, out.Result.Outcome)

	out, err = g.Perform(ctx, "bad", session.Action{Kind: session.ActionClaim}, nil, 0)
	require.NoError(t, err)
	require.Equal(t, engine.AttemptRejected, out.Result.Outcome)
	require.Equal(t, "Tramposo", out.Result.Message)
}

func TestGameSatisfiesSession(t *testing.T) {
	var _ session.Game[types.LoteriaStatus] = New(nil)
}
