package workout

import (
	"context"
	"errors"
	"time"
)

// TickerFunc starts a ticker with period d and returns its channel and a
// stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Runner drives an Engine with a single one-second ticker. The exercise
// countdown and the rest countdown share that ticker, so the two are never
// running at the same time.
type Runner struct {
	engine    *Engine
	observe   func(Snapshot)
	finish    chan struct{}
	newTicker TickerFunc
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTicker replaces the wall-clock ticker.
func WithTicker(f TickerFunc) RunnerOption {
	return func(r *Runner) { r.newTicker = f }
}

// NewRunner creates a Runner for e. observe is called from the Run
// goroutine with the initial snapshot and after every state change; it may
// be nil.
func NewRunner(e *Engine, observe func(Snapshot), opts ...RunnerOption) *Runner {
	if observe == nil {
		observe = func(Snapshot) {}
	}
	r := &Runner{
		engine:    e,
		observe:   observe,
		finish:    make(chan struct{}, 1),
		newTicker: realTicker,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Finish signals that the current rep-based exercise is done. It never
// blocks; a signal sent while one is already pending is dropped.
func (r *Runner) Finish() {
	select {
	case r.finish <- struct{}{}:
	default:
	}
}

// Run blocks until the session completes or ctx is cancelled, returning the
// last snapshot. A cancelled session returns ctx.Err().
func (r *Runner) Run(ctx context.Context) (Snapshot, error) {
	snap := r.engine.Snapshot()
	r.observe(snap)
	if r.engine.Done() {
		return snap, nil
	}

	tick, stop := r.newTicker(time.Second)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return r.engine.Snapshot(), ctx.Err()
		case <-tick:
			next := r.engine.Tick()
			if changed(snap, next) {
				r.observe(next)
			}
			snap = next
		case <-r.finish:
			next, err := r.engine.Finish()
			if errors.Is(err, ErrNotAwaitingFinish) {
				continue
			}
			r.observe(next)
			snap = next
		}
		if r.engine.Done() {
			return snap, nil
		}
	}
}

// changed ignores elapsed time so that idle ticks while waiting for a
// rep-based finish are not reported.
func changed(a, b Snapshot) bool {
	return a.Phase != b.Phase ||
		a.Index != b.Index ||
		a.TimeRemaining != b.TimeRemaining ||
		a.RestRemaining != b.RestRemaining ||
		a.Progress != b.Progress
}
