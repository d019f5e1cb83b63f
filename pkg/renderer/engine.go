// Package renderer invokes an external diagram rendering engine and
// recovers from its failures.
//
// The engine is treated as an uncooperative collaborator: it may reject,
// it may panic, and it is observed to inject error-indicator nodes into
// shared markup asynchronously, sometimes after its result has already
// been returned. The controller therefore sanitizes every successful
// result, substitutes text-free fallback artwork on failure, and runs a
// bounded best-effort janitor that keeps purging stray error nodes from
// the shared surface for as long as the owning view is alive.
package renderer

import (
	"context"
	"errors"
)

// Engine is the contract with an external rendering engine: given a
// render-scoped unique id and notation text, produce an SVG string or
// fail with a human-readable error. Engines may have side effects on
// shared state beyond the returned value; callers must treat results
// defensively.
type Engine interface {
	// Name identifies the engine for logging and cache keys.
	Name() string

	// Render produces SVG markup for the notation text. The id is unique
	// per render request and prevents collisions between rapid re-renders
	// of the same visual slot.
	Render(ctx context.Context, id, text string) (string, error)
}

// Sentinel errors for engine implementations.
var (
	// ErrEngineUnavailable signals that the engine's backing process or
	// library is not installed or not reachable.
	ErrEngineUnavailable = errors.New("rendering engine unavailable")

	// ErrUnsupportedFamily signals that the engine cannot render the
	// diagram family it was given. Callers may fall back to another
	// engine or to placeholder artwork.
	ErrUnsupportedFamily = errors.New("unsupported diagram family")
)

// EngineFunc adapts a function to the Engine interface for tests and
// small adapters.
type EngineFunc struct {
	ID string
	Fn func(ctx context.Context, id, text string) (string, error)
}

// Name returns the adapter's id.
func (e EngineFunc) Name() string { return e.ID }

// Render calls the wrapped function.
func (e EngineFunc) Render(ctx context.Context, id, text string) (string, error) {
	return e.Fn(ctx, id, text)
}

var _ Engine = EngineFunc{}
