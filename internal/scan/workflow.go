// Package scan drives the on-demand spike scan: scanning, a result shown for a
// fixed window, then back to ready.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"spikeradar/internal/clock"
	"spikeradar/internal/model"
)

// DefaultResultWindow is how long a finished scan's summary stays visible.
const DefaultResultWindow = 5 * time.Second

// Phase of the workflow.
type Phase int

const (
	PhaseReady Phase = iota
	PhaseScanning
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "scanning"
	case PhaseResult:
		return "result"
	default:
		return "ready"
	}
}

// Func runs one scan against the backend.
type Func func(ctx context.Context) (model.ScanResult, error)

// Snapshot is the renderable workflow state. Result is set only in PhaseResult
// after a successful scan; Failed is set only in PhaseResult after an error.
type Snapshot struct {
	Phase  Phase
	Result *model.ScanResult
	Failed bool
	Err    string
}

// Options tune the workflow.
type Options struct {
	ResultWindow time.Duration
	Clock        clock.Clock
	// OnChange receives every phase change, outside the workflow lock.
	OnChange func(Snapshot)
	// OnComplete runs once per finished scan, before the result is published.
	OnComplete func(model.ScanResult, error)
}

// Workflow allows at most one scan in flight.
type Workflow struct {
	opts   Options
	scan   Func
	logger zerolog.Logger

	mu         sync.Mutex
	snap       Snapshot
	gen        uint64
	clearTimer clock.Timer
	closed     bool
	inflight   sync.WaitGroup
}

// New constructs a Workflow in the ready phase.
func New(fn Func, opts Options, logger zerolog.Logger) *Workflow {
	if fn == nil {
		panic("scan func must not be nil")
	}
	if opts.ResultWindow <= 0 {
		opts.ResultWindow = DefaultResultWindow
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	return &Workflow{
		opts:   opts,
		scan:   fn,
		logger: logger.With().Str("component", "scan").Logger(),
	}
}

// Trigger starts a scan and reports whether it did. A trigger while scanning
// is rejected; a trigger while a result is shown replaces it immediately.
func (w *Workflow) Trigger(ctx context.Context) bool {
	w.mu.Lock()
	if w.closed || w.snap.Phase == PhaseScanning {
		w.mu.Unlock()
		w.logger.Debug().Msg("scan already in progress; trigger ignored")
		return false
	}
	w.stopClearLocked()
	w.gen++
	gen := w.gen
	w.snap = Snapshot{Phase: PhaseScanning}
	snap := w.snap
	w.inflight.Add(1)
	w.mu.Unlock()

	w.publish(snap)
	go w.run(ctx, gen)
	return true
}

// Snapshot returns the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap
}

// Wait blocks until the in-flight scan, if any, has finished.
func (w *Workflow) Wait() {
	w.inflight.Wait()
}

// Close stops the clear timer and rejects further triggers. A scan still in
// flight reports through OnComplete but its result is not published.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.gen++
	w.stopClearLocked()
}

func (w *Workflow) run(ctx context.Context, gen uint64) {
	defer w.inflight.Done()

	started := w.opts.Clock.Now()
	result, err := w.scan(ctx)
	if w.opts.OnComplete != nil {
		w.opts.OnComplete(result, err)
	}

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	if err != nil {
		w.snap = Snapshot{Phase: PhaseResult, Failed: true, Err: err.Error()}
		w.logger.Warn().Err(err).Msg("scan failed")
	} else {
		res := result
		w.snap = Snapshot{Phase: PhaseResult, Result: &res}
		w.logger.Info().
			Int("posts_scanned", result.PostsScanned).
			Int("spikes_detected", result.SpikesDetected).
			Int("alerts_generated", result.AlertsGenerated).
			Dur("took", w.opts.Clock.Now().Sub(started)).
			Msg("scan complete")
	}
	if !w.closed {
		w.clearTimer = w.opts.Clock.AfterFunc(w.opts.ResultWindow, func() { w.clear(gen) })
	}
	snap := w.snap
	w.mu.Unlock()

	w.publish(snap)
}

func (w *Workflow) clear(gen uint64) {
	w.mu.Lock()
	if gen != w.gen || w.snap.Phase != PhaseResult {
		w.mu.Unlock()
		return
	}
	w.snap = Snapshot{Phase: PhaseReady}
	w.clearTimer = nil
	snap := w.snap
	w.mu.Unlock()

	w.publish(snap)
}

func (w *Workflow) stopClearLocked() {
	if w.clearTimer != nil {
		w.clearTimer.Stop()
		w.clearTimer = nil
	}
}

func (w *Workflow) publish(snap Snapshot) {
	if w.opts.OnChange != nil {
		w.opts.OnChange(snap)
	}
}
