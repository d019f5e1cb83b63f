// Package pipeline provides the core preparation and render pipeline for
// diagramprep.
//
// This package implements the complete normalize → analyze/optimize →
// validate → render flow that can be used by CLI and API components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of two phases:
//
//  1. Prepare: normalize the raw notation, rewrite overlap-prone
//     connections (architecture family only), and validate the result.
//  2. Render: hand the prepared text to the external rendering engine and
//     recover from its failures with fallback artwork.
//
// Each phase can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger, engine)
//	opts := pipeline.Options{
//	    Text:   source,
//	    Family: "architecture",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Outcome.SVG
//
// Run the preparation phase only:
//
//	prepared, cached, err := runner.Prepare(ctx, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inkfold/diagramprep/pkg/cache"
	"github.com/inkfold/diagramprep/pkg/errors"
	"github.com/inkfold/diagramprep/pkg/notation"
	"github.com/inkfold/diagramprep/pkg/renderer"
	"github.com/inkfold/diagramprep/pkg/validate"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Text is the raw, untrusted notation.
	Text string `json:"text"`

	// Family is the declared diagram family token, or empty when the
	// caller declared none.
	Family string `json:"family,omitempty"`

	// FallbackSVG is shown in place of a failed render. Empty means
	// generated error-state placeholder art.
	FallbackSVG string `json:"fallback_svg,omitempty"`

	// SkipOptimize disables the connection-overlap rewrite for
	// architecture diagrams. Default is to optimize.
	SkipOptimize bool `json:"skip_optimize,omitempty"`

	// Refresh bypasses the cache for this run.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger             `json:"-"`
	Grammar validate.GrammarChecker `json:"-"`

	// family is the parsed Family, set by ValidateAndSetDefaults.
	family notation.Family `json:"-"`
	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks the family token and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	family, err := notation.ParseFamily(o.Family)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFamily, err, "invalid family token %q", o.Family)
	}
	o.family = family

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// ShouldOptimize reports whether the connection optimizer applies: the
// architecture family only, unless explicitly skipped.
func (o *Options) ShouldOptimize() bool {
	return o.family.IsArchitecture() && !o.SkipOptimize
}

// PreparedKeyOpts returns cache key options for the preparation phase.
func (o *Options) PreparedKeyOpts() cache.PreparedKeyOpts {
	return cache.PreparedKeyOpts{
		Family:   string(o.family),
		Optimize: o.ShouldOptimize(),
	}
}

// =============================================================================
// Results
// =============================================================================

// Prepared is the output of the preparation phase: normalized (and
// possibly optimized) text plus its validation verdict.
type Prepared struct {
	// Text is the prepared notation, ready for a rendering engine.
	Text string `json:"text"`

	// Validation is the terminal verdict for Text.
	Validation validate.Result `json:"validation"`

	// Hash is the content hash of Text, used for artifact cache keys.
	Hash string `json:"hash"`
}

// Result contains the outputs of a complete pipeline run.
type Result struct {
	// Prepared is the preparation phase output.
	Prepared Prepared

	// Outcome is the render verdict: sanitized SVG or fallback artwork.
	Outcome renderer.Outcome

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which phases hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PrepareTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline phase.
type CacheInfo struct {
	PreparedHit bool // Whether the prepared text came from cache
	ArtifactHit bool // Whether the rendered artifact came from cache
}
