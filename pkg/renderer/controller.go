package renderer

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/inkfold/diagramprep/pkg/fallback"
)

// State is the controller's position in its render lifecycle.
type State int

// Controller states. Rendered and Failed are terminal: a new render
// request always starts a fresh controller, never resumes an old one.
const (
	StateIdle State = iota
	StateRendering
	StateRendered
	StateFailed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateRendered:
		return "rendered"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is the tagged result of one render request: either sanitized
// SVG markup, or a failure description plus text-free fallback artwork.
// The failure message is metadata for the caller and is never embedded in
// the artwork itself.
type Outcome struct {
	OK          bool   `json:"ok"`
	SVG         string `json:"svg,omitempty"`
	Message     string `json:"message,omitempty"`
	FallbackSVG string `json:"fallback_svg,omitempty"`
}

// Controller drives a single render request through the external engine
// and owns the recovery behavior around it. Controllers are single use:
// once Render returns, the controller is terminal.
type Controller struct {
	engine  Engine
	surface *Surface // optional; receives the sanitized result
	logger  *log.Logger

	state    State
	renderID string
}

// NewController creates a fresh controller for one render request.
// surface may be nil when no shared slot exists (CLI usage); logger may
// be nil to discard.
func NewController(engine Engine, surface *Surface, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Controller{
		engine:   engine,
		surface:  surface,
		logger:   logger,
		state:    StateIdle,
		renderID: "diagram-" + uuid.NewString(),
	}
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State { return c.state }

// RenderID returns the render-scoped identifier assigned at
// construction. Each request gets a freshly generated id so a stale
// completion can never collide with a newer request's slot.
func (c *Controller) RenderID() string { return c.renderID }

// Render invokes the engine with the prepared notation text and returns a
// terminal Outcome. fallbackSVG is used for the failure outcome when
// non-empty; otherwise error-state placeholder art is generated.
//
// Render never panics and never propagates an engine panic: any failure
// mode converts into a fallback outcome with the triggering message
// carried as metadata.
func (c *Controller) Render(ctx context.Context, text, fallbackSVG string) (out Outcome) {
	if c.state != StateIdle {
		return c.fail(fmt.Sprintf("controller already %s; start a fresh request", c.state), fallbackSVG)
	}

	c.state = StateRendering

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("rendering engine panicked", "engine", c.engine.Name(), "panic", r)
			out = c.fail(fmt.Sprintf("rendering engine panicked: %v", r), fallbackSVG)
		}
	}()

	c.logger.Debug("rendering", "engine", c.engine.Name(), "render_id", c.renderID)

	svg, err := c.engine.Render(ctx, c.renderID, text)
	if err != nil {
		c.logger.Warn("render failed", "engine", c.engine.Name(), "err", err)
		return c.fail(err.Error(), fallbackSVG)
	}

	sanitized := Sanitize(svg)
	if c.surface != nil {
		c.surface.Replace(sanitized)
	}

	c.state = StateRendered
	return Outcome{OK: true, SVG: sanitized}
}

// fail transitions to the terminal Failed state and builds the fallback
// outcome. The message never enters the artwork.
func (c *Controller) fail(message, fallbackSVG string) Outcome {
	c.state = StateFailed
	if fallbackSVG == "" {
		fallbackSVG = fallback.SVG(fallback.StateError)
	}
	return Outcome{OK: false, Message: message, FallbackSVG: fallbackSVG}
}
