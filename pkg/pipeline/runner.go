package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inkfold/diagramprep/pkg/archgraph"
	"github.com/inkfold/diagramprep/pkg/cache"
	"github.com/inkfold/diagramprep/pkg/fallback"
	"github.com/inkfold/diagramprep/pkg/observability"
	"github.com/inkfold/diagramprep/pkg/preprocess"
	"github.com/inkfold/diagramprep/pkg/renderer"
	"github.com/inkfold/diagramprep/pkg/validate"
)

// genericFailure is the validation message for runs that hit an
// unanticipated internal condition. Public entry points convert panics
// into this instead of letting them propagate.
const genericFailure = "Diagram code is empty or not valid diagram notation"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, logger, and engine - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Engine renders prepared text. Nil disables the render phase:
	// Execute then returns a fallback outcome.
	Engine renderer.Engine

	// Surface, when non-nil, receives every successful render so a
	// janitor sweeping it can remove stray nodes the engine injects
	// after the fact. Nil means no shared slot exists (one-shot CLI
	// usage).
	Surface *renderer.Surface
}

// NewRunner creates a runner with the given cache, keyer, and engine.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, engine renderer.Engine) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Engine: engine,
	}
}

// Prepare runs the preparation phase: normalize, optimize (architecture
// family), validate. It never panics - unexpected conditions surface as a
// generic validation failure - and fails with an error only for invalid
// options.
func (r *Runner) Prepare(ctx context.Context, opts Options) (Prepared, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Prepared{}, false, err
	}

	start := time.Now()
	observability.Pipeline().OnPrepareStart(ctx, opts.Family)

	prepared, hit := r.prepare(ctx, opts)

	observability.Pipeline().OnPrepareComplete(ctx, opts.Family, prepared.Validation.Valid, time.Since(start))
	opts.Logger.Debug("prepared notation",
		"family", opts.Family,
		"valid", prepared.Validation.Valid,
		"cache_hit", hit,
		"duration", time.Since(start))

	return prepared, hit, nil
}

// prepare is the recover boundary for the preparation phase.
func (r *Runner) prepare(ctx context.Context, opts Options) (prepared Prepared, hit bool) {
	defer func() {
		if rec := recover(); rec != nil {
			opts.Logger.Error("preparation panicked", "panic", rec)
			prepared = Prepared{Validation: validate.Result{Valid: false, Message: genericFailure}}
			hit = false
		}
	}()

	sourceHash := cache.Hash([]byte(opts.Text))
	key := r.Keyer.PreparedKey(sourceHash, opts.PreparedKeyOpts())

	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			var cached Prepared
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "prepared")
				return cached, true
			}
		}
		observability.Cache().OnCacheMiss(ctx, "prepared")
	}

	text := preprocess.Normalize(opts.Text, opts.family)
	if opts.ShouldOptimize() {
		text = archgraph.Optimize(archgraph.Parse(text))
	}

	v := validate.New(opts.Grammar, opts.Logger)
	prepared = Prepared{
		Text:       text,
		Validation: v.Validate(text, opts.family),
		Hash:       cache.Hash([]byte(text)),
	}

	if data, err := json.Marshal(prepared); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLPrepared)
		observability.Cache().OnCacheSet(ctx, "prepared", len(data))
	}

	return prepared, false
}

// Execute runs the complete prepare → render pipeline with caching.
//
// A validation failure blocks rendering: the result carries the precise
// message plus fallback artwork, and the engine is never invoked. Render
// failures likewise convert into fallback outcomes. Execute returns an
// error only for invalid options.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	prepareStart := time.Now()
	prepared, preparedHit, err := r.Prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Prepared = prepared
	result.Stats.PrepareTime = time.Since(prepareStart)
	result.CacheInfo.PreparedHit = preparedHit

	if !prepared.Validation.Valid {
		result.Outcome = r.fallbackOutcome(prepared.Validation.Message, opts)
		return result, nil
	}

	renderStart := time.Now()
	result.Outcome, result.CacheInfo.ArtifactHit = r.render(ctx, prepared, opts)
	result.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Info("pipeline complete",
		"ok", result.Outcome.OK,
		"prepare", result.Stats.PrepareTime,
		"render", result.Stats.RenderTime)

	return result, nil
}

// render runs the render phase with artifact caching. The controller
// already never panics, so no extra recover boundary is needed here.
func (r *Runner) render(ctx context.Context, prepared Prepared, opts Options) (renderer.Outcome, bool) {
	if r.Engine == nil {
		return r.fallbackOutcome("no rendering engine configured", opts), false
	}

	key := r.Keyer.ArtifactKey(prepared.Hash, cache.ArtifactKeyOpts{Engine: r.Engine.Name()})
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "artifact")
			if r.Surface != nil {
				r.Surface.Replace(string(data))
			}
			return renderer.Outcome{OK: true, SVG: string(data)}, true
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	ctrl := renderer.NewController(r.Engine, r.Surface, opts.Logger)

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, r.Engine.Name(), ctrl.RenderID())
	outcome := ctrl.Render(ctx, prepared.Text, opts.FallbackSVG)
	observability.Pipeline().OnRenderComplete(ctx, r.Engine.Name(), ctrl.RenderID(), outcome.OK, time.Since(start))

	if outcome.OK {
		_ = r.Cache.Set(ctx, key, []byte(outcome.SVG), cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(outcome.SVG))
	}

	return outcome, false
}

// fallbackOutcome builds a failure outcome with the caller's fallback
// artwork, or generated error art.
func (r *Runner) fallbackOutcome(message string, opts Options) renderer.Outcome {
	art := opts.FallbackSVG
	if art == "" {
		art = fallback.SVG(fallback.StateError)
	}
	return renderer.Outcome{OK: false, Message: message, FallbackSVG: art}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
