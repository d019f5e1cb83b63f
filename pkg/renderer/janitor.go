package renderer

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inkfold/diagramprep/pkg/observability"
)

// DefaultPurgeInterval is the sweep cadence of the janitor. The engine's
// stray error nodes appear within a render's lifetime, so a short fixed
// interval is enough.
const DefaultPurgeInterval = 250 * time.Millisecond

// Janitor runs the bounded best-effort cleanup of engine side effects: a
// recurring sweep over the owned surface (and optionally a wider shared
// surface), plus an immediate reaction to mutation notifications.
//
// A janitor is tied to the lifetime of the view that owns the surface:
// Start it when the view appears and Stop it when the view is discarded.
// Sweeps tolerate nodes that are already gone - removal is idempotent.
type Janitor struct {
	surface  *Surface
	shared   *Surface // optional wider document surface, may be nil
	interval time.Duration
	logger   *log.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewJanitor creates a janitor for the given surface. shared may be nil
// when only the diagram's own container needs sweeping. A non-positive
// interval falls back to DefaultPurgeInterval; a nil logger discards.
func NewJanitor(surface, shared *Surface, interval time.Duration, logger *log.Logger) *Janitor {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Janitor{
		surface:  surface,
		shared:   shared,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the sweep loop. It returns immediately; the loop runs
// until Stop is called or ctx is cancelled. Starting an already running
// janitor is a no-op.
func (j *Janitor) Start(ctx context.Context) {
	if j.cancel != nil {
		return
	}
	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})

	go j.run(ctx)
}

// Stop tears the sweep loop down and waits for it to exit. Stopping a
// never-started or already stopped janitor is a no-op.
func (j *Janitor) Stop() {
	if j.cancel == nil {
		return
	}
	j.cancel()
	<-j.done
	j.cancel = nil
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	sharedWatch := make(<-chan struct{})
	if j.shared != nil {
		sharedWatch = j.shared.Watch()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		case <-j.surface.Watch():
			// Mutation watcher: react immediately when new nodes appear.
			j.sweep(ctx)
		case <-sharedWatch:
			j.sweep(ctx)
		}
	}
}

// sweep purges both surfaces. Concurrent purges of the same node are
// harmless; a sweep that finds nothing is silent.
func (j *Janitor) sweep(ctx context.Context) {
	if j.surface.Purge() {
		j.logger.Debug("purged error nodes from diagram surface")
		observability.Pipeline().OnPurge(ctx, "diagram")
	}
	if j.shared != nil && j.shared.Purge() {
		j.logger.Debug("purged error nodes from shared surface")
		observability.Pipeline().OnPurge(ctx, "shared")
	}
}
