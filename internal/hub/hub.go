package hub

import (
	"context"
	"errors"

	"go.uber.org/multierr"

	"github.com/DoyleJ11/gamesync/internal/session"
)

var ErrHubClosed = errors.New("hub closed")

type HubMsg interface{ isHubMsg() }

// Factory builds the session for a game id the hub has not seen yet.
type Factory func() (session.Runner, error)

type Ensured struct {
	Runner  session.Runner
	Created bool
	Err     error
}

type EnsureSession struct {
	GameID string
	New    Factory // only called if creation happens
	Reply  chan Ensured
}

type GetSession struct {
	GameID string
	Reply  chan session.Runner
}

type ListSessions struct {
	Reply chan []session.GameSession
}

type RemoveSession struct {
	GameID string
	Reply  chan error // may be nil
}

type ShutdownHub struct {
	Reply chan error // may be nil
}

func (EnsureSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (ListSessions) isHubMsg()  {}
func (RemoveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

// Hub owns every live session of the process, one per game id.
type Hub struct {
	inbox    chan HubMsg
	sessions map[string]session.Runner
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]session.Runner),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			_ = h.closeAll()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureSession:
				if r := h.live(msg.GameID); r != nil {
					msg.Reply <- Ensured{Runner: r}
					break
				}
				r, err := msg.New()
				if err != nil {
					msg.Reply <- Ensured{Err: err}
					break
				}
				h.sessions[msg.GameID] = r
				msg.Reply <- Ensured{Runner: r, Created: true}

			case GetSession:
				msg.Reply <- h.live(msg.GameID) // may be nil

			case ListSessions:
				out := make([]session.GameSession, 0, len(h.sessions))
				for _, r := range h.sessions {
					out = append(out, r.Info())
				}
				msg.Reply <- out

			case RemoveSession:
				var err error
				if r := h.sessions[msg.GameID]; r != nil {
					delete(h.sessions, msg.GameID)
					err = r.Close()
				}
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case ShutdownHub:
				err := h.closeAll()
				if msg.Reply != nil {
					msg.Reply <- err
				}
				h.cancel()
				return
			}
		}
	}
}

// live returns the session for gameID unless it was closed behind our back.
func (h *Hub) live(gameID string) session.Runner {
	r := h.sessions[gameID]
	if r == nil {
		return nil
	}
	select {
	case <-r.Done():
		delete(h.sessions, gameID)
		return nil
	default:
		return r
	}
}

func (h *Hub) closeAll() error {
	var errs error
	for id, r := range h.sessions {
		errs = multierr.Append(errs, r.Close())
		delete(h.sessions, id)
	}
	return errs
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func reply[T any](ctx context.Context, h *Hub, ch <-chan T) (T, error) {
	var zero T
	select {
	case v := <-ch:
		return v, nil
	case <-h.done:
		return zero, ErrHubClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Ensure returns the session for gameID, building it with fn if needed.
func (h *Hub) Ensure(ctx context.Context, gameID string, fn Factory) (Ensured, error) {
	ch := make(chan Ensured, 1)
	if err := h.send(ctx, EnsureSession{GameID: gameID, New: fn, Reply: ch}); err != nil {
		return Ensured{}, err
	}
	e, err := reply(ctx, h, ch)
	if err != nil {
		return Ensured{}, err
	}
	return e, e.Err
}

func (h *Hub) Get(ctx context.Context, gameID string) (session.Runner, error) {
	ch := make(chan session.Runner, 1)
	if err := h.send(ctx, GetSession{GameID: gameID, Reply: ch}); err != nil {
		return nil, err
	}
	return reply(ctx, h, ch)
}

func (h *Hub) List(ctx context.Context) ([]session.GameSession, error) {
	ch := make(chan []session.GameSession, 1)
	if err := h.send(ctx, ListSessions{Reply: ch}); err != nil {
		return nil, err
	}
	return reply(ctx, h, ch)
}

func (h *Hub) Remove(ctx context.Context, gameID string) error {
	ch := make(chan error, 1)
	if err := h.send(ctx, RemoveSession{GameID: gameID, Reply: ch}); err != nil {
		return err
	}
	err, rerr := reply(ctx, h, ch)
	return multierr.Append(err, rerr)
}

// Shutdown closes every session and stops the hub.
func (h *Hub) Shutdown(ctx context.Context) error {
	ch := make(chan error, 1)
	if err := h.send(ctx, ShutdownHub{Reply: ch}); err != nil {
		if errors.Is(err, ErrHubClosed) {
			return nil
		}
		return err
	}
	err, rerr := reply(ctx, h, ch)
	if errors.Is(rerr, ErrHubClosed) {
		// the reply is buffered; a closed hub may still have answered
		select {
		case err = <-ch:
		default:
		}
		rerr = nil
	}
	return multierr.Append(err, rerr)
}
