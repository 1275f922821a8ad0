// Package poller runs one remote fetch on a fixed interval and hands every
// answer to a callback. A poller never has more than one fetch in flight.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/gamesync/internal/metrics"
)

type Fetch[T any] func(ctx context.Context) (T, error)

type Handler[T any] func(Result[T])

// Result is one fetch outcome. Seq grows across restarts, so a consumer can
// drop answers older than one it already applied.
type Result[T any] struct {
	Poller     string
	Generation int
	Seq        uint64
	Value      T
	Err        error
	// Terminal is set when Err stopped the poller.
	Terminal bool
}

type Option func(*options)

type options struct {
	clock     clockwork.Clock
	log       *zap.Logger
	metrics   *metrics.Metrics
	immediate bool
	terminal  func(error) bool
}

func WithClock(c clockwork.Clock) Option { return func(o *options) { o.clock = c } }

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(o *options) { o.metrics = m } }

// Immediate fetches once right after Start instead of waiting a full interval.
func Immediate() Option { return func(o *options) { o.immediate = true } }

// Terminal classifies errors after which polling must stop.
func Terminal(fn func(error) bool) Option { return func(o *options) { o.terminal = fn } }

type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    Fetch[T]
	handle   Handler[T]
	opts     options

	mu     sync.Mutex
	gen    int
	seq    uint64
	cancel context.CancelFunc

	// shared by all generations: a restart never overlaps an older fetch
	inFlight atomic.Bool
}

func New[T any](name string, interval time.Duration, fetch Fetch[T], handle Handler[T], opts ...Option) *Poller[T] {
	o := options{
		clock:    clockwork.NewRealClock(),
		log:      zap.NewNop(),
		terminal: func(error) bool { return false },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		handle:   handle,
		opts:     o,
	}
}

func (p *Poller[T]) Name() string { return p.name }

// Start begins a new generation, cancelling the previous one (and its
// ticker) first. It returns the new generation.
func (p *Poller[T]) Start(ctx context.Context) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.gen++
	p.cancel = cancel
	gen := p.gen

	go p.run(runCtx, gen)
	return gen
}

// Stop cancels the current generation. It is safe to call repeatedly and
// does not wait for a fetch in flight; its answer is discarded.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller[T]) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller[T]) Generation() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

func (p *Poller[T]) run(ctx context.Context, gen int) {
	ticker := p.opts.clock.NewTicker(p.interval)
	defer ticker.Stop()

	if p.opts.immediate {
		p.tick(ctx, gen)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.tick(ctx, gen)
		}
	}
}

func (p *Poller[T]) tick(ctx context.Context, gen int) {
	if ctx.Err() != nil {
		return
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		p.opts.metrics.PollSkipped(p.name)
		p.opts.log.Debug("tick skipped, fetch in flight", zap.String("poller", p.name))
		return
	}

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.opts.metrics.Poll(p.name)
	go func() {
		defer p.inFlight.Store(false)

		v, err := p.fetch(ctx)
		if ctx.Err() != nil {
			return // stopped or restarted while waiting
		}
		res := Result[T]{Poller: p.name, Generation: gen, Seq: seq, Value: v, Err: err}
		if err != nil {
			p.opts.metrics.PollFailed(p.name)
			if p.opts.terminal(err) {
				res.Terminal = true
				p.stopGen(gen)
				p.opts.log.Info("poller stopped", zap.String("poller", p.name), zap.Error(err))
			} else {
				p.opts.log.Warn("poll failed", zap.String("poller", p.name), zap.Uint64("seq", seq), zap.Error(err))
			}
		}
		p.handle(res)
	}()
}

// stopGen stops the poller only if gen is still current.
func (p *Poller[T]) stopGen(gen int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen == gen {
		p.stopLocked()
	}
}
