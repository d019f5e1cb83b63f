// Package fallback generates placeholder SVG artwork for diagram slots
// that are loading, processing, or failed to render.
//
// Fallback art is deliberately text free: a failed render must keep the
// diagram surface visually stable, and error details travel out of band
// as metadata, never as visible text inside the artwork.
package fallback

import "fmt"

// State selects the placeholder variant.
type State string

// Placeholder states.
const (
	StateLoading    State = "loading"
	StateProcessing State = "processing"
	StateError      State = "error"
)

// Default placeholder dimensions, matching a typical diagram slot.
const (
	defaultWidth  = 600
	defaultHeight = 360
)

// fills maps each state to its rectangle fill color.
var fills = map[State]string{
	StateLoading:    "#e2e8f0",
	StateProcessing: "#dbeafe",
	StateError:      "#fee2e2",
}

// strokes maps each state to its border color.
var strokes = map[State]string{
	StateLoading:    "#cbd5e1",
	StateProcessing: "#bfdbfe",
	StateError:      "#fecaca",
}

// SVG returns placeholder artwork for the given state at the default size.
func SVG(state State) string {
	return Sized(state, defaultWidth, defaultHeight)
}

// Sized returns placeholder artwork with explicit dimensions. Unknown
// states render with the error palette. The output contains no text
// elements under any input.
func Sized(state State, width, height int) string {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	fill, ok := fills[state]
	if !ok {
		fill = fills[StateError]
	}
	stroke, ok := strokes[state]
	if !ok {
		stroke = strokes[StateError]
	}

	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+
			`<rect x="4" y="4" width="%d" height="%d" rx="12" fill="%s" stroke="%s" stroke-width="2"/>`+
			`</svg>`,
		width, height, width, height, width-8, height-8, fill, stroke)
}
