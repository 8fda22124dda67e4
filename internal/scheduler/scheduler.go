package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"spikeradar/internal/clock"
)

// DefaultInterval is the refresh cadence when none is configured.
const DefaultInterval = 30 * time.Second

// FetchFunc loads a full snapshot. It must be idempotent: overlapping calls are
// possible and the latest completion wins.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// State is what a consumer renders.
type State[T any] struct {
	Data      T
	HasData   bool
	Loading   bool
	Err       string
	// UpdatedAt is when Data was last replaced by a successful fetch.
	UpdatedAt time.Time
}

// Options tune poller behaviour.
type Options[T any] struct {
	Name     string
	Interval time.Duration
	Clock    clock.Clock
	// OnUpdate receives every applied state change. It is never called once
	// Detach has returned, and must not itself call Attach or Detach.
	OnUpdate func(State[T])
}

// Poller periodically refreshes a snapshot through a FetchFunc.
type Poller[T any] struct {
	opts   Options[T]
	fetch  FetchFunc[T]
	logger zerolog.Logger

	notifyMu sync.Mutex
	mu       sync.Mutex
	state    State[T]
	attached bool
	gen      uint64
	timer    clock.Timer
	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// New constructs a Poller. The initial state is loading.
func New[T any](fetch FetchFunc[T], opts Options[T], logger zerolog.Logger) *Poller[T] {
	if fetch == nil {
		panic("scheduler fetch func must not be nil")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Name == "" {
		opts.Name = "poller"
	}
	return &Poller[T]{
		opts:   opts,
		fetch:  fetch,
		state:  State[T]{Loading: true},
		logger: logger.With().Str("component", "scheduler").Str("poller", opts.Name).Logger(),
	}
}

// Attach starts polling: one fetch immediately, then one per interval.
// Attaching an attached poller is a no-op.
func (p *Poller[T]) Attach(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.attached {
		return
	}
	p.attached = true
	p.gen++
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.state.Loading = true

	p.logger.Debug().Dur("interval", p.opts.Interval).Msg("attached")
	p.startFetchLocked()
	p.armLocked()
}

// Detach cancels the pending timer and the fetch context. Fetches already in
// flight may complete but their results are discarded.
func (p *Poller[T]) Detach() {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.attached {
		return
	}
	p.attached = false
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Debug().Msg("detached")
}

// Refresh issues an out-of-band fetch without touching the timer.
func (p *Poller[T]) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.attached {
		return
	}
	p.startFetchLocked()
}

// Seed installs previously known data without clearing the loading flag.
func (p *Poller[T]) Seed(data T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.HasData {
		return
	}
	p.state.Data = data
	p.state.HasData = true
}

// State returns the current snapshot.
func (p *Poller[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Wait blocks until every issued fetch has returned.
func (p *Poller[T]) Wait() {
	p.inflight.Wait()
}

func (p *Poller[T]) armLocked() {
	gen := p.gen
	p.timer = p.opts.Clock.AfterFunc(p.opts.Interval, func() { p.tick(gen) })
}

func (p *Poller[T]) tick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.attached || gen != p.gen {
		return
	}
	p.startFetchLocked()
	p.armLocked()
}

func (p *Poller[T]) startFetchLocked() {
	gen := p.gen
	ctx := p.ctx
	p.inflight.Add(1)
	go p.run(ctx, gen)
}

func (p *Poller[T]) run(ctx context.Context, gen uint64) {
	defer p.inflight.Done()

	data, err := p.fetch(ctx)

	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	p.mu.Lock()
	if !p.attached || gen != p.gen {
		p.mu.Unlock()
		p.logger.Debug().Msg("discarding result of a detached fetch")
		return
	}
	p.state.Loading = false
	if err != nil {
		p.state.Err = err.Error()
		p.logger.Warn().Err(err).Msg("fetch failed; keeping previous data")
	} else {
		p.state.Data = data
		p.state.HasData = true
		p.state.Err = ""
		p.state.UpdatedAt = p.opts.Clock.Now()
	}
	snapshot := p.state
	notify := p.opts.OnUpdate
	p.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
}
