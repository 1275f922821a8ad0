package lobby

import (
	"testing"

	"github.com/DoyleJ11/gamesync/internal/engine"
	"github.com/DoyleJ11/gamesync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func status(started bool, players ...types.LobbyPlayer) types.LobbyStatus {
	s := types.LobbyStatus{Status: "waiting", Players: players, Started: started}
	if started {
		s.Status = "started"
	}
	return s
}

func TestRoster_HostIsFirstPlayer(t *testing.T) {
	r := FromStatus(status(false,
		types.LobbyPlayer{UserID: 3},
		types.LobbyPlayer{UserID: 9},
	))

	host, ok := r.Host()
	require.True(t, ok)
	require.Equal(t, 3, host)
	assert.True(t, r.IsHost(3))
	assert.False(t, r.IsHost(9))
	assert.False(t, r.IsHost(0), "unknown local user is never host")

	_, ok = FromStatus(status(false)).Host()
	assert.False(t, ok)
}

func TestRoster_Observe(t *testing.T) {
	cases := []struct {
		name string
		in   types.LobbyStatus
		me   int
		want engine.LobbyObservation
	}{
		{
			name: "alone in lobby",
			in:   status(false, types.LobbyPlayer{UserID: 1}),
			me:   1,
			want: engine.LobbyObservation{Players: 1, MinPlayers: 2, IsHost: true},
		},
		{
			name: "guest sees partial readiness",
			in:   status(false, types.LobbyPlayer{UserID: 1, Ready: true}, types.LobbyPlayer{UserID: 2}),
			me:   2,
			want: engine.LobbyObservation{Players: 2, Ready: 1, MinPlayers: 2},
		},
		{
			name: "host with everyone ready",
			in:   status(false, types.LobbyPlayer{UserID: 1, Ready: true}, types.LobbyPlayer{UserID: 2, Ready: true}),
			me:   1,
			want: engine.LobbyObservation{Players: 2, Ready: 2, MinPlayers: 2, IsHost: true},
		},
		{
			name: "started by status string",
			in:   types.LobbyStatus{Status: "in_progress", Players: []types.LobbyPlayer{{UserID: 1}, {UserID: 2}}},
			me:   2,
			want: engine.LobbyObservation{Players: 2, MinPlayers: 2, Started: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromStatus(tc.in).Observe(tc.me, 2)
			if got != tc.want {
				t.Fatalf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestRoster_AllReadyNeedsMinimum(t *testing.T) {
	o := FromStatus(status(false, types.LobbyPlayer{UserID: 1, Ready: true})).Observe(1, 2)
	assert.False(t, o.AllReady())
}

func TestDiff(t *testing.T) {
	prev := FromStatus(status(false, types.LobbyPlayer{UserID: 1}, types.LobbyPlayer{UserID: 2}))
	next := FromStatus(status(false, types.LobbyPlayer{UserID: 1}, types.LobbyPlayer{UserID: 5, Username: "ana"}))

	c := Diff(prev, next)
	require.Len(t, c.Joined, 1)
	require.Len(t, c.Left, 1)
	assert.Equal(t, "ana", c.Joined[0].Username)
	assert.Equal(t, 2, c.Left[0].UserID)

	assert.True(t, Diff(next, next).Empty())
}
