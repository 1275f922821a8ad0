package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/gamesync/internal/api"
	"github.com/DoyleJ11/gamesync/internal/engine"
	"github.com/DoyleJ11/gamesync/internal/lobby"
	"github.com/DoyleJ11/gamesync/internal/metrics"
	"github.com/DoyleJ11/gamesync/internal/poller"
	"github.com/DoyleJ11/gamesync/internal/store"
	"github.com/DoyleJ11/gamesync/internal/ui"
	"github.com/DoyleJ11/gamesync/pkg/types"
)

var (
	ErrClosed   = errors.New("session closed")
	ErrInactive = errors.New("session not active")
)

const goneMessage = "This game no longer exists."

// Backend is the game-independent half of the remote API.
type Backend interface {
	LobbyStatus(ctx context.Context, gameID string) (types.LobbyStatus, error)
	StartGame(ctx context.Context, gameID string) (types.StartGameResponse, error)
	Ready(ctx context.Context, gameID string) (types.MessageResponse, error)
	Heartbeat(ctx context.Context, gameID string) (types.MessageResponse, error)
	Leave(ctx context.Context, gameID string) (types.MessageResponse, error)
}

type Surface interface {
	ui.Notifier
	ui.Navigator
}

type Config struct {
	LobbyInterval     time.Duration
	GameInterval      time.Duration
	HeartbeatInterval time.Duration
	// SettleDelay keeps interaction off for a moment after a correct move.
	SettleDelay time.Duration
	// AnimationStep > 0 ends sequence playback on its own after one step per
	// colour. Zero waits for AnimationDone from the presentation adapter.
	AnimationStep time.Duration
}

func DefaultConfig() Config {
	return Config{
		LobbyInterval:     1500 * time.Millisecond,
		GameInterval:      2 * time.Second,
		HeartbeatInterval: 5 * time.Second,
		SettleDelay:       600 * time.Millisecond,
	}
}

type Deps struct {
	Backend   Backend
	Sequences *store.Sequences
	UI        Surface
	Clock     clockwork.Clock
	Log       *zap.Logger
	Metrics   *metrics.Metrics
}

// Runner is a session with its snapshot type erased; the hub and the
// transports only see this.
type Runner interface {
	Info() GameSession
	Active() bool
	Start(ctx context.Context) error
	Submit(ctx context.Context, a Action) error
	AnimationDone(version int)
	Dismiss()
	Ready(ctx context.Context) error
	Leave(ctx context.Context) error
	Subscribe(ctx context.Context, id string) (<-chan engine.View, error)
	Unsubscribe(id string)
	View(ctx context.Context) (engine.View, error)
	Close() error
	Done() <-chan struct{}
}

type msg interface{ isSessionMsg() }

type startMsg struct {
	caches Caches
	reply  chan error
}
type lobbyResult struct {
	res poller.Result[types.LobbyStatus]
}
type gameResult[S any] struct{ res poller.Result[S] }
type heartbeatResult struct {
	res poller.Result[types.MessageResponse]
}
type startResult struct{ err error }
type resyncResult struct {
	seqs Caches
	err  error
}
type submitMsg struct {
	action Action
	reply  chan error
}
type actionResult struct {
	out Outcome
	err error
}
type animationDone struct{ version int }
type settleFired struct{ gen int }
type timerFired struct {
	id    int
	inner msg
}
type dismissMsg struct{}
type goneMsg struct{}
type subscribeMsg struct {
	id    string
	reply chan (<-chan engine.View)
}
type unsubscribeMsg struct{ id string }
type viewMsg struct{ reply chan engine.View }
type leaveMsg struct{ reply chan error }

func (startMsg) isSessionMsg()        {}
func (lobbyResult) isSessionMsg()     {}
func (gameResult[S]) isSessionMsg()   {}
func (heartbeatResult) isSessionMsg() {}
func (startResult) isSessionMsg()     {}
func (resyncResult) isSessionMsg()    {}
func (submitMsg) isSessionMsg()       {}
func (actionResult) isSessionMsg()    {}
func (animationDone) isSessionMsg()   {}
func (settleFired) isSessionMsg()     {}
func (timerFired) isSessionMsg()      {}
func (dismissMsg) isSessionMsg()      {}
func (goneMsg) isSessionMsg()         {}
func (subscribeMsg) isSessionMsg()    {}
func (unsubscribeMsg) isSessionMsg()  {}
func (viewMsg) isSessionMsg()         {}
func (leaveMsg) isSessionMsg()        {}

// Session synchronises one client with one remote game. Fields after
// "owned by loop" are only touched by the session goroutine; everything
// else reaches it through the inbox.
type Session[S any] struct {
	info   GameSession
	game   Game[S]
	deps   Deps
	cfg    Config
	log    *zap.Logger
	inbox  chan msg
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	active atomic.Bool
	once   sync.Once

	lobbyPoll *poller.Poller[types.LobbyStatus]
	gamePoll  *poller.Poller[S]
	heartbeat *poller.Poller[types.MessageResponse]

	// owned by loop
	machine    *engine.Machine
	caches     Caches
	last       S
	haveLast   bool
	roster     lobby.Roster
	haveRoster bool
	lastSeq    map[string]uint64
	resyncing  bool
	started    bool
	finished   bool
	counted    bool
	timers     map[int]clockwork.Timer
	timerID    int
	subs       map[string]chan engine.View
	sent       int
	closeErr   error

	// final is the last view of a session that ended on its own.
	final atomic.Pointer[engine.View]
}

func New[S any](info GameSession, game Game[S], deps Deps, cfg Config) *Session[S] {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if info.GameType == "" {
		info.GameType = game.Type()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session[S]{
		info:    info,
		game:    game,
		deps:    deps,
		cfg:     cfg,
		log:     deps.Log.With(zap.String("game_id", info.GameID), zap.String("game_type", info.GameType)),
		inbox:   make(chan msg, 64),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		machine: engine.NewMachine(info.LocalUserID),
		caches:  make(Caches),
		lastSeq: make(map[string]uint64),
		timers:  make(map[int]clockwork.Timer),
		subs:    make(map[string]chan engine.View),
	}

	popts := []poller.Option{
		poller.WithClock(deps.Clock),
		poller.WithLogger(s.log),
		poller.WithMetrics(deps.Metrics),
		poller.Immediate(),
		poller.Terminal(api.IsNotFound),
	}
	id := info.GameID
	s.lobbyPoll = poller.New("lobby", cfg.LobbyInterval,
		func(ctx context.Context) (types.LobbyStatus, error) { return deps.Backend.LobbyStatus(ctx, id) },
		func(r poller.Result[types.LobbyStatus]) { s.post(lobbyResult{res: r}) },
		popts...)
	s.gamePoll = poller.New("game", cfg.GameInterval,
		func(ctx context.Context) (S, error) { return game.Status(ctx, id) },
		func(r poller.Result[S]) { s.post(gameResult[S]{res: r}) },
		popts...)
	s.heartbeat = poller.New("heartbeat", cfg.HeartbeatInterval,
		func(ctx context.Context) (types.MessageResponse, error) { return deps.Backend.Heartbeat(ctx, id) },
		func(r poller.Result[types.MessageResponse]) { s.post(heartbeatResult{res: r}) },
		poller.WithClock(deps.Clock), poller.WithLogger(s.log), poller.WithMetrics(deps.Metrics),
		poller.Terminal(api.IsNotFound))

	go s.loop()
	return s
}

func (s *Session[S]) Info() GameSession { return s.info }

// Active is false before Start and after the session ended, left or closed.
func (s *Session[S]) Active() bool { return s.active.Load() }

// Done is closed once the session goroutine exits: after Close, or after the
// game ended on its own and its last view went out.
func (s *Session[S]) Done() <-chan struct{} { return s.done }

// Start loads the persisted caches and begins polling the lobby. Calling it
// again is a no-op.
func (s *Session[S]) Start(ctx context.Context) error {
	caches := make(Caches)
	for _, kind := range s.game.Kinds() {
		tokens, err := s.deps.Sequences.Load(ctx, s.key(kind))
		if err != nil {
			// unreadable cache: start empty and let the snapshots rebuild it
			s.log.Warn("discarding cached sequence", zap.String("kind", string(kind)), zap.Error(err))
			tokens = []string{}
		}
		caches[kind] = tokens
	}
	reply := make(chan error, 1)
	if err := s.send(ctx, startMsg{caches: caches, reply: reply}); err != nil {
		return err
	}
	return awaitErr(ctx, s.done, reply)
}

// Submit validates an action locally and sends it. A nil error means the
// action went out; its outcome arrives through the view stream.
func (s *Session[S]) Submit(ctx context.Context, a Action) error {
	reply := make(chan error, 1)
	if err := s.send(ctx, submitMsg{action: a, reply: reply}); err != nil {
		return err
	}
	return awaitErr(ctx, s.done, reply)
}

func (s *Session[S]) AnimationDone(version int) { s.post(animationDone{version: version}) }

func (s *Session[S]) Dismiss() { s.post(dismissMsg{}) }

func (s *Session[S]) Ready(ctx context.Context) error {
	_, err := s.deps.Backend.Ready(ctx, s.info.GameID)
	if api.IsNotFound(err) {
		s.post(goneMsg{})
	}
	return err
}

// Leave tells the backend, stops everything and forgets the caches.
func (s *Session[S]) Leave(ctx context.Context) error {
	_, err := s.deps.Backend.Leave(ctx, s.info.GameID)
	if api.IsNotFound(err) {
		err = nil
	}
	reply := make(chan error, 1)
	if serr := s.send(ctx, leaveMsg{reply: reply}); serr != nil {
		return multierr.Append(err, serr)
	}
	return multierr.Append(err, awaitErr(ctx, s.done, reply))
}

// Subscribe registers a view stream; the current view is sent right away.
// A subscriber that falls behind is dropped and its channel closed.
func (s *Session[S]) Subscribe(ctx context.Context, id string) (<-chan engine.View, error) {
	reply := make(chan (<-chan engine.View), 1)
	if err := s.send(ctx, subscribeMsg{id: id, reply: reply}); err != nil {
		return nil, err
	}
	return await(ctx, s.done, reply)
}

func (s *Session[S]) Unsubscribe(id string) { s.post(unsubscribeMsg{id: id}) }

func (s *Session[S]) View(ctx context.Context) (engine.View, error) {
	reply := make(chan engine.View, 1)
	err := s.send(ctx, viewMsg{reply: reply})
	if err == nil {
		var v engine.View
		if v, err = await(ctx, s.done, reply); err == nil {
			return v, nil
		}
	}
	if f := s.final.Load(); f != nil && errors.Is(err, ErrClosed) {
		return *f, nil
	}
	return engine.View{}, err
}

// Close stops the pollers and every pending timer, flushes the caches and
// ends the session goroutine.
func (s *Session[S]) Close() error {
	s.once.Do(s.cancel)
	<-s.done
	return s.closeErr
}

func (s *Session[S]) send(ctx context.Context, m msg) error {
	select {
	case s.inbox <- m:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post is for callbacks that have no caller to report to.
func (s *Session[S]) post(m msg) {
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
	}
}

// awaitErr waits for an error reply; a failed wait is reported the same way.
func awaitErr(ctx context.Context, done <-chan struct{}, reply <-chan error) error {
	err, werr := await(ctx, done, reply)
	if werr != nil {
		return werr
	}
	return err
}

func await[T any](ctx context.Context, done <-chan struct{}, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-done:
		select {
		case v := <-reply:
			return v, nil
		default:
		}
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (s *Session[S]) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.teardown()
			return
		case m := <-s.inbox:
			s.handle(m)
			s.broadcast()
			if s.finished {
				// the result view is out; nothing is left to drive
				s.once.Do(s.cancel)
			}
		}
	}
}

func (s *Session[S]) handle(m msg) {
	switch msg := m.(type) {
	case startMsg:
		if !s.started {
			s.started = true
			s.caches = msg.caches
			s.active.Store(true)
			s.counted = true
			s.deps.Metrics.SessionStarted()
			s.lobbyPoll.Start(s.ctx)
			s.heartbeat.Start(s.ctx)
			s.log.Info("session started", zap.String("role", string(s.info.Role)))
		}
		msg.reply <- nil

	case lobbyResult:
		s.onLobby(msg.res)

	case gameResult[S]:
		s.onGame(msg.res)

	case heartbeatResult:
		if s.active.Load() && msg.res.Terminal {
			s.gone()
		}

	case startResult:
		s.onStart(msg.err)

	case resyncResult:
		s.onResync(msg.seqs, msg.err)

	case submitMsg:
		msg.reply <- s.submit(msg.action)

	case actionResult:
		s.onAction(msg.out, msg.err)

	case timerFired:
		if _, ok := s.timers[msg.id]; !ok {
			return // stopped before it was delivered
		}
		delete(s.timers, msg.id)
		s.handle(msg.inner)

	case animationDone:
		s.machine.AnimationDone(msg.version)

	case settleFired:
		s.machine.Settle(msg.gen)

	case dismissMsg:
		s.machine.Dismiss()

	case goneMsg:
		if s.active.Load() {
			s.gone()
		}

	case subscribeMsg:
		out := make(chan engine.View, 8)
		if old, ok := s.subs[msg.id]; ok {
			close(old)
		}
		s.subs[msg.id] = out
		out <- s.machine.View()
		msg.reply <- out

	case unsubscribeMsg:
		if ch, ok := s.subs[msg.id]; ok {
			close(ch)
			delete(s.subs, msg.id)
		}

	case viewMsg:
		msg.reply <- s.machine.View()

	case leaveMsg:
		s.halt()
		err := s.dropCaches()
		s.deps.UI.Navigate(s.info.GameID, string(engine.RouteHome))
		s.log.Info("left game")
		msg.reply <- err
	}
}

// fresh drops answers older than one already applied from the same poller.
func (s *Session[S]) fresh(name string, seq uint64) bool {
	if seq <= s.lastSeq[name] {
		s.deps.Metrics.Stale(name)
		s.log.Debug("stale poll result dropped", zap.String("poller", name), zap.Uint64("seq", seq))
		return false
	}
	s.lastSeq[name] = seq
	return true
}

func (s *Session[S]) onLobby(res poller.Result[types.LobbyStatus]) {
	if !s.active.Load() || !s.fresh(res.Poller, res.Seq) {
		return
	}
	if res.Err != nil {
		if res.Terminal {
			s.gone()
		}
		return
	}

	roster := lobby.FromStatus(res.Value)
	if s.haveRoster {
		change := lobby.Diff(s.roster, roster)
		for _, p := range change.Joined {
			s.deps.UI.Notify(s.info.GameID, ui.Notice{Level: ui.LevelInfo, Message: playerName(p) + " joined."})
		}
		for _, p := range change.Left {
			s.deps.UI.Notify(s.info.GameID, ui.Notice{Level: ui.LevelInfo, Message: playerName(p) + " left."})
		}
	}
	s.roster, s.haveRoster = roster, true

	s.apply(s.machine.ObserveLobby(roster.Observe(s.info.LocalUserID, s.game.MinPlayers())))
}

func playerName(p types.LobbyPlayer) string {
	if p.Username != "" {
		return p.Username
	}
	return fmt.Sprintf("Player %d", p.UserID)
}

func (s *Session[S]) onGame(res poller.Result[S]) {
	if !s.active.Load() || !s.fresh(res.Poller, res.Seq) {
		return
	}
	if res.Err != nil {
		if res.Terminal {
			s.gone()
		}
		return
	}

	me := s.info.LocalUserID
	obs := s.game.Observe(res.Value, me)
	s.last, s.haveLast = res.Value, true
	if !obs.Special() {
		s.reconcile(s.game.Sequences(res.Value, me))
	}
	s.apply(s.machine.ObserveGame(obs))
	if _, over := s.machine.Phase().(engine.Terminal); over {
		s.finish()
	}
}

func (s *Session[S]) onStart(err error) {
	if err == nil || !s.active.Load() {
		return
	}
	if api.IsNotFound(err) {
		s.gone()
		return
	}
	s.log.Warn("start request failed", zap.Error(err))
	s.machine.StartFailed()
	s.deps.UI.Notify(s.info.GameID, ui.Notice{Level: ui.LevelWarning, Message: "Could not start the game, retrying."})
}

func (s *Session[S]) reconcile(views map[store.CacheKind]engine.SequenceView) {
	need := false
	for _, kind := range s.game.Kinds() {
		view, ok := views[kind]
		if !ok {
			continue
		}
		if s.merge(kind, view) {
			need = true
		}
	}
	if need {
		s.resync()
	}
}

// merge applies one remote view to one cache and reports whether only a
// full fetch can bring it up to date.
func (s *Session[S]) merge(kind store.CacheKind, view engine.SequenceView) bool {
	m := engine.MergeSequence(s.caches[kind], view)
	s.deps.Metrics.Merged(string(kind), string(m.Outcome))

	switch m.Outcome {
	case engine.MergeUnchanged:
		return false
	case engine.MergeResyncRequired:
		s.log.Info("sequence gap, full fetch needed",
			zap.String("kind", string(kind)),
			zap.Int("cached", len(s.caches[kind])),
			zap.Int("remote", view.Length))
		return true
	}

	s.save(kind, m.Tokens)
	if m.Outcome == engine.MergeReset {
		s.log.Info("sequence reset", zap.String("kind", string(kind)), zap.Int("remote", view.Length))
		return len(m.Tokens) < view.Length
	}
	for _, n := range s.game.Announce(kind, m.Added) {
		s.deps.UI.Notify(s.info.GameID, n)
	}
	return false
}

func (s *Session[S]) resync() {
	r, ok := s.game.(Resyncer)
	if !ok || s.resyncing {
		return
	}
	s.resyncing = true
	id := s.info.GameID
	go func() {
		seqs, err := r.Resync(s.ctx, id)
		s.post(resyncResult{seqs: seqs, err: err})
	}()
}

func (s *Session[S]) onResync(seqs Caches, err error) {
	s.resyncing = false
	if !s.active.Load() {
		return
	}
	if err != nil {
		if api.IsNotFound(err) {
			s.gone()
			return
		}
		// the next snapshot that still shows a gap asks again
		s.log.Warn("sequence fetch failed", zap.Error(err))
		return
	}
	for _, kind := range s.game.Kinds() {
		tokens, ok := seqs[kind]
		if !ok || len(tokens) < len(s.caches[kind]) {
			// older than what a snapshot already gave us
			continue
		}
		s.merge(kind, engine.SequenceView{Length: len(tokens), Full: tokens})
	}
}

func (s *Session[S]) submit(a Action) error {
	if !s.active.Load() {
		return ErrInactive
	}
	kind, err := s.game.Attempt(a)
	if err != nil {
		return err
	}
	if err := s.machine.CheckAttempt(kind); err != nil {
		return err
	}
	progress := s.machine.View().Progress
	if s.haveLast {
		if err := s.game.Validate(s.last, s.info.LocalUserID, s.caches, progress, a); err != nil {
			return err
		}
	}
	if err := s.machine.BeginAttempt(kind); err != nil {
		return err
	}

	caches := make(Caches, len(s.caches))
	for k, v := range s.caches {
		caches[k] = append([]string(nil), v...)
	}
	id := s.info.GameID
	go func() {
		out, err := s.game.Perform(s.ctx, id, a, caches, progress)
		s.post(actionResult{out: out, err: err})
	}()
	return nil
}

func (s *Session[S]) onAction(out Outcome, err error) {
	if !s.active.Load() {
		return
	}
	res := out.Result
	if err != nil {
		if api.IsNotFound(err) {
			s.gone()
			return
		}
		s.log.Warn("action failed", zap.Error(err))
		res = engine.AttemptResult{Outcome: engine.AttemptRejected, Message: actionMessage(err)}
	} else if len(out.Sequences) > 0 {
		s.reconcile(out.Sequences)
	}
	s.deps.Metrics.Attempt(s.info.GameType, attemptLabel(res.Outcome))
	s.apply(s.machine.CompleteAttempt(res))
}

func actionMessage(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if errors.Is(err, api.ErrRejected) {
		return "The move was refused."
	}
	return "Could not reach the server, wait for the next update."
}

func attemptLabel(o engine.AttemptOutcome) string {
	switch o {
	case engine.AttemptSucceeded:
		return "succeeded"
	case engine.AttemptMismatched:
		return "mismatched"
	}
	return "rejected"
}

func (s *Session[S]) apply(effects []engine.Effect) {
	id := s.info.GameID
	for _, e := range effects {
		switch e := e.(type) {
		case engine.RequestStart:
			go func() {
				_, err := s.deps.Backend.StartGame(s.ctx, id)
				s.post(startResult{err: err})
			}()
		case engine.EnterGame:
			s.lobbyPoll.Stop()
			s.gamePoll.Start(s.ctx)
			s.log.Info("game started")
		case engine.StopPolling:
			s.stopPolling()
		case engine.PlayAnimation:
			if s.cfg.AnimationStep > 0 {
				n := len(s.caches[store.KindMySequence])
				if n == 0 {
					n = 1
				}
				s.after(time.Duration(n)*s.cfg.AnimationStep, animationDone{version: e.Version})
			}
		case engine.ScheduleSettle:
			s.after(s.cfg.SettleDelay, settleFired{gen: e.Gen})
		case engine.Navigate:
			s.deps.UI.Navigate(id, string(e.Route))
		case engine.Notify:
			s.deps.UI.Notify(id, e.Notice)
		case engine.Feedback:
			if f, ok := s.deps.UI.(ui.FeedbackSink); ok {
				f.Feedback(id, e.Positive)
			}
		}
	}
}

func (s *Session[S]) after(d time.Duration, m msg) {
	s.timerID++
	id := s.timerID
	s.timers[id] = s.deps.Clock.AfterFunc(d, func() { s.post(timerFired{id: id, inner: m}) })
}

func (s *Session[S]) stopTimers() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Session[S]) stopPolling() {
	s.lobbyPoll.Stop()
	s.gamePoll.Stop()
	s.heartbeat.Stop()
}

// gone handles the backend no longer knowing the game: one notice, home,
// nothing left running.
func (s *Session[S]) gone() {
	s.log.Warn("game not found, ending session")
	s.apply(s.machine.Abort(goneMessage))
	s.finish()
}

func (s *Session[S]) finish() {
	if s.finished {
		return
	}
	s.finished = true
	if err := s.dropCaches(); err != nil {
		s.log.Warn("dropping caches", zap.Error(err))
	}
	s.halt()
}

// halt stops all polling and timers; later results are dropped.
func (s *Session[S]) halt() {
	s.active.Store(false)
	s.stopPolling()
	s.stopTimers()
	if s.counted {
		s.counted = false
		s.deps.Metrics.SessionEnded()
	}
}

func (s *Session[S]) teardown() {
	wasActive := s.active.Load()
	s.halt()
	if s.finished {
		v := s.machine.View()
		s.final.Store(&v)
	}
	if wasActive {
		var errs error
		for _, kind := range s.game.Kinds() {
			errs = multierr.Append(errs, s.deps.Sequences.Save(context.Background(), s.key(kind), s.caches[kind]))
		}
		s.closeErr = errs
	}
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.log.Info("session closed")
}

func (s *Session[S]) key(kind store.CacheKind) store.CacheKey {
	return store.CacheKey{GameType: s.info.GameType, GameID: s.info.GameID, Kind: kind}
}

func (s *Session[S]) save(kind store.CacheKind, tokens []string) {
	s.caches[kind] = tokens
	if err := s.deps.Sequences.Save(s.ctx, s.key(kind), tokens); err != nil {
		s.log.Warn("persisting sequence", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (s *Session[S]) dropCaches() error {
	for _, kind := range s.game.Kinds() {
		s.caches[kind] = []string{}
	}
	return s.deps.Sequences.DropAll(s.ctx, s.info.GameType, s.info.GameID, s.game.Kinds()...)
}

// broadcast sends the view to every subscriber if it changed.
func (s *Session[S]) broadcast() {
	v := s.machine.View()
	if v.Version == s.sent {
		return
	}
	s.sent = v.Version
	for id, ch := range s.subs {
		select {
		case ch <- v:
		default:
			// slow subscriber
			close(ch)
			delete(s.subs, id)
		}
	}
}
