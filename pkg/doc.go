// Package pkg provides the core libraries for diagramprep notation preparation.
//
// # Overview
//
// Diagramprep takes raw, possibly markdown-wrapped diagram notation and turns
// it into something a rendering engine can draw, recovering gracefully when it
// can't. The pkg directory is organized into four main areas:
//
//  1. [notation], [preprocess], [archgraph] - Notation handling (families,
//     normalization, architecture diagram structure and optimization)
//  2. [validate], [errors] - Validation verdicts and structured errors
//  3. [renderer], [fallback] - Render control, SVG sanitization, recovery art
//  4. [pipeline], [cache], [observability] - Orchestration with caching and hooks
//
// # Architecture
//
// The typical data flow through diagramprep:
//
//	Raw notation text
//	         ↓
//	    [preprocess] package (strip fences, family rewrites)
//	         ↓
//	    [archgraph] package (parse + untangle connections)
//	         ↓
//	    [validate] package (precise failure verdicts)
//	         ↓
//	    [renderer] package (engine, sanitizer, fallback control)
//	         ↓
//	    SVG output (or text-free fallback artwork)
//
// # Quick Start
//
// Prepare and render a diagram:
//
//	import (
//	    "context"
//	    "github.com/inkfold/diagramprep/pkg/pipeline"
//	    "github.com/inkfold/diagramprep/pkg/renderer/dotengine"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil, dotengine.New())
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Text:   source,
//	    Family: "architecture",
//	})
//	if err != nil {
//	    // invalid options
//	}
//	if result.Outcome.OK {
//	    // result.Outcome.SVG holds sanitized markup
//	} else {
//	    // result.Outcome.Message says why; FallbackSVG is safe to show
//	}
package pkg
