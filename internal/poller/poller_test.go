package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/gamesync/internal/metrics"
)

const interval = 2 * time.Second

var errGone = errors.New("gone")

// helper: receive one result with a timeout so tests never hang
func recvResult(t *testing.T, ch <-chan Result[int], within time.Duration) Result[int] {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(within):
		t.Fatalf("timed out waiting for poll result")
		return Result[int]{}
	}
}

func recvNoResult(t *testing.T, ch <-chan Result[int], within time.Duration) {
	t.Helper()
	select {
	case r := <-ch:
		t.Fatalf("expected no result within %v, got %+v", within, r)
	case <-time.After(within):
	}
}

func TestPoller_ImmediateThenInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	results := make(chan Result[int], 4)
	p := New("game", interval,
		func(context.Context) (int, error) { return int(calls.Add(1)), nil },
		func(r Result[int]) { results <- r },
		WithClock(clock), Immediate(),
	)

	gen := p.Start(ctx)
	require.Equal(t, 1, gen)
	require.True(t, p.Running())

	first := recvResult(t, results, time.Second)
	require.Equal(t, 1, first.Value)
	require.Equal(t, uint64(1), first.Seq)
	require.Equal(t, 1, first.Generation)
	require.Equal(t, "game", first.Poller)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(interval)

	second := recvResult(t, results, time.Second)
	require.Equal(t, 2, second.Value)
	require.Equal(t, uint64(2), second.Seq)

	p.Stop()
}

func TestPoller_SkipsTickWhileInFlight(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	started := make(chan struct{}, 4)
	release := make(chan struct{})
	var calls atomic.Int32
	results := make(chan Result[int], 4)

	p := New("lobby", interval,
		func(context.Context) (int, error) {
			calls.Add(1)
			started <- struct{}{}
			<-release
			return 1, nil
		},
		func(r Result[int]) { results <- r },
		WithClock(clock), WithMetrics(m),
	)
	p.Start(ctx)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(interval)
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatalf("first fetch never started")
	}

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(interval)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.PollsSkipped.WithLabelValues("lobby")) == 1
	}, time.Second, 5*time.Millisecond)

	close(release)
	r := recvResult(t, results, time.Second)
	require.NoError(t, r.Err)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(m.Polls.WithLabelValues("lobby")))

	p.Stop()
}

func TestPoller_TransientErrorKeepsPolling(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	results := make(chan Result[int], 4)
	p := New("game", interval,
		func(context.Context) (int, error) {
			if calls.Add(1) == 1 {
				return 0, errors.New("connection reset")
			}
			return 5, nil
		},
		func(r Result[int]) { results <- r },
		WithClock(clock), Immediate(),
		Terminal(func(err error) bool { return errors.Is(err, errGone) }),
	)
	p.Start(ctx)

	failed := recvResult(t, results, time.Second)
	require.Error(t, failed.Err)
	require.False(t, failed.Terminal)
	require.True(t, p.Running())

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(interval)
	ok := recvResult(t, results, time.Second)
	require.NoError(t, ok.Err)
	require.Equal(t, 5, ok.Value)
}

func TestPoller_TerminalErrorStopsBeforeDelivery(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	results := make(chan Result[int], 4)
	var p *Poller[int]
	p = New("game", interval,
		func(context.Context) (int, error) {
			calls.Add(1)
			return 0, errGone
		},
		func(r Result[int]) {
			// the poller is already stopped when the handler learns about it
			if p.Running() {
				t.Errorf("poller still running during terminal delivery")
			}
			results <- r
		},
		WithClock(clock), Immediate(),
		Terminal(func(err error) bool { return errors.Is(err, errGone) }),
	)
	p.Start(ctx)

	r := recvResult(t, results, time.Second)
	require.True(t, r.Terminal)
	require.ErrorIs(t, r.Err, errGone)
	require.False(t, p.Running())

	clock.Advance(3 * interval)
	recvNoResult(t, results, 100*time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestPoller_RestartDiscardsPreviousGeneration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls atomic.Int32
	results := make(chan Result[int], 4)

	p := New("game", interval,
		func(context.Context) (int, error) {
			n := calls.Add(1)
			if n == 1 {
				started <- struct{}{}
				<-release
			}
			return int(n), nil
		},
		func(r Result[int]) { results <- r },
		WithClock(clock), WithMetrics(m), Immediate(),
	)

	p.Start(ctx)
	<-started
	require.Equal(t, 2, p.Start(ctx))

	// the old fetch is still out, so the new generation waits
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.PollsSkipped.WithLabelValues("game")) == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, int32(1), calls.Load())

	close(release)
	recvNoResult(t, results, 100*time.Millisecond)
	require.Eventually(t, func() bool { return !p.inFlight.Load() }, time.Second, 5*time.Millisecond)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(interval)

	r := recvResult(t, results, time.Second)
	require.Equal(t, 2, r.Generation)
	require.Equal(t, 2, r.Value)
	require.Equal(t, uint64(2), r.Seq)

	p.Stop()
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	results := make(chan Result[int], 4)
	p := New("heartbeat", interval,
		func(context.Context) (int, error) { return int(calls.Add(1)), nil },
		func(r Result[int]) { results <- r },
		WithClock(clock),
	)
	p.Start(ctx)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	p.Stop()
	p.Stop()
	require.False(t, p.Running())

	clock.Advance(interval)
	recvNoResult(t, results, 100*time.Millisecond)
	require.Zero(t, calls.Load())
}
