package hub

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/DoyleJ11/gamesync/internal/engine"
	"github.com/DoyleJ11/gamesync/internal/session"
)

type fakeRunner struct {
	info     session.GameSession
	closed   atomic.Int32
	closeErr error
	done     chan struct{}
}

func newFake(id string, closeErr error) *fakeRunner {
	return &fakeRunner{info: session.GameSession{GameID: id}, closeErr: closeErr, done: make(chan struct{})}
}

func (f *fakeRunner) Info() session.GameSession                    { return f.info }
func (f *fakeRunner) Active() bool                                 { return f.closed.Load() == 0 }
func (f *fakeRunner) Start(context.Context) error                  { return nil }
func (f *fakeRunner) Submit(context.Context, session.Action) error { return nil }
func (f *fakeRunner) AnimationDone(int)                            {}
func (f *fakeRunner) Dismiss()                                     {}
func (f *fakeRunner) Ready(context.Context) error                  { return nil }
func (f *fakeRunner) Leave(context.Context) error                  { return nil }
func (f *fakeRunner) Unsubscribe(string)                           {}
func (f *fakeRunner) View(context.Context) (engine.View, error)    { return engine.View{}, nil }
func (f *fakeRunner) Done() <-chan struct{}                        { return f.done }
func (f *fakeRunner) Subscribe(context.Context, string) (<-chan engine.View, error) {
	return make(chan engine.View), nil
}

func (f *fakeRunner) Close() error {
	if f.closed.Add(1) == 1 {
		close(f.done)
	}
	return f.closeErr
}

func TestHub_Ensure_Get_SamePointer(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx)
	defer h.Shutdown(ctx)

	built := 0
	factory := func() (session.Runner, error) {
		built++
		return newFake("ZED123", nil), nil
	}

	first, err := h.Ensure(ctx, "ZED123", factory)
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := h.Ensure(ctx, "ZED123", factory)
	require.NoError(t, err)
	require.False(t, second.Created)

	got, err := h.Get(ctx, "ZED123")
	require.NoError(t, err)

	if first.Runner == nil || got == nil || first.Runner != second.Runner || got != first.Runner {
		t.Fatalf("expected same session pointer")
	}
	if built != 1 {
		t.Fatalf("factory called %d times, want 1", built)
	}

	missing, err := h.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestHub_FactoryErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx)
	defer h.Shutdown(ctx)

	boom := errors.New("unknown game")
	_, err := h.Ensure(ctx, "g", func() (session.Runner, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	e, err := h.Ensure(ctx, "g", func() (session.Runner, error) { return newFake("g", nil), nil })
	require.NoError(t, err)
	require.True(t, e.Created)
}

func TestHub_RemoveClosesSession(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx)
	defer h.Shutdown(ctx)

	f := newFake("a", nil)
	_, err := h.Ensure(ctx, "a", func() (session.Runner, error) { return f, nil })
	require.NoError(t, err)

	require.NoError(t, h.Remove(ctx, "a"))
	require.Equal(t, int32(1), f.closed.Load())

	list, err := h.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	// removing twice is harmless
	require.NoError(t, h.Remove(ctx, "a"))
}

func TestHub_ShutdownAggregatesCloseErrors(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx)

	errA, errB := errors.New("flush a"), errors.New("flush b")
	for id, e := range map[string]error{"a": errA, "b": errB, "c": nil} {
		r := newFake(id, e)
		_, err := h.Ensure(ctx, id, func() (session.Runner, error) { return r, nil })
		require.NoError(t, err)
	}

	err := h.Shutdown(ctx)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	require.Len(t, multierr.Errors(err), 2)

	_, err = h.Ensure(ctx, "d", func() (session.Runner, error) { return newFake("d", nil), nil })
	require.ErrorIs(t, err, ErrHubClosed)
	require.NoError(t, h.Shutdown(ctx))
}

func TestHub_ClosedSessionIsReplaced(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx)
	defer h.Shutdown(ctx)

	old := newFake("g", nil)
	_, err := h.Ensure(ctx, "g", func() (session.Runner, error) { return old, nil })
	require.NoError(t, err)
	require.NoError(t, old.Close())

	got, err := h.Get(ctx, "g")
	require.NoError(t, err)
	require.Nil(t, got)

	e, err := h.Ensure(ctx, "g", func() (session.Runner, error) { return newFake("g", nil), nil })
	require.NoError(t, err)
	require.True(t, e.Created)
	require.NotSame(t, old, e.Runner)
}
