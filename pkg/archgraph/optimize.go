package archgraph

import (
	"fmt"
	"strings"

	"github.com/inkfold/diagramprep/pkg/notation"
)

// Optimization thresholds. A diagram is routed through junctions only when
// it is busy enough for direct endpoint rewrites to stop helping.
const (
	// hubDegree is the connection count above which a node is a hub.
	hubDegree = 3
	// complexMinConnections is the total connection count a diagram must
	// exceed before junction routing is enabled.
	complexMinConnections = 5
)

// junctionPrefix names generated routing junctions. Numbering is
// sequential within one optimization pass; junctions are regenerated from
// scratch on every run and carry no cross-run identity.
const junctionPrefix = "junction_"

// Optimize rewrites overlap-prone connections and re-emits the diagram as
// text. Two strategies exist:
//
//   - Simple: each overlap-prone connection has its endpoints rewritten
//     directly (same-side top/bottom becomes left-to-right, same-side
//     left/right becomes top-to-bottom, bottom-to-top becomes
//     right-to-left).
//   - Complex: when the diagram has hub nodes or crossing connection
//     pairs and more than complexMinConnections connections in total,
//     every connection in a conflict relationship is split in two through
//     a generated junction; the rest still get the simple rewrite.
//
// Connector kinds survive all rewrites. Optimize cannot fail: lines the
// analyzer did not recognize are emitted unchanged, and stale junction
// declarations from a previous pass are discarded and regenerated.
func Optimize(d *Diagram) string {
	rewritten := make([]Connection, len(d.Connections))
	copy(rewritten, d.Connections)

	var junctions []string

	if isComplex(d) {
		conflicted := conflictSet(d.Connections)
		group := d.FirstOwningGroup()
		next := 1

		// Splitting one connection produces two; collect replacement
		// text per original connection index.
		split := make(map[int][]Connection)
		for i, c := range d.Connections {
			if !conflicted[i] {
				rewritten[i] = simpleRewrite(c)
				continue
			}
			id := fmt.Sprintf("%s%d", junctionPrefix, next)
			next++
			junctions = append(junctions, junctionDecl(id, group))
			split[i] = []Connection{
				{From: c.From, FromSide: c.FromSide, To: id, ToSide: notation.SideLeft, Connector: c.Connector},
				{From: id, FromSide: notation.SideRight, To: c.To, ToSide: c.ToSide, Connector: c.Connector},
			}
		}
		return emit(d, rewritten, split, junctions)
	}

	for i, c := range d.Connections {
		rewritten[i] = simpleRewrite(c)
	}
	return emit(d, rewritten, nil, nil)
}

// simpleRewrite applies the direct endpoint rewrite rules to one
// connection. Same-side patterns are checked before the bottom-to-top
// pattern; connections matching neither pass through untouched.
func simpleRewrite(c Connection) Connection {
	switch {
	case c.SameSide() && !c.FromSide.Horizontal():
		// Top-Top / Bottom-Bottom: route around the sides.
		c.FromSide, c.ToSide = notation.SideLeft, notation.SideRight
	case c.SameSide():
		// Left-Left / Right-Right: route over the top.
		c.FromSide, c.ToSide = notation.SideTop, notation.SideBottom
	case c.BottomToTop():
		c.FromSide, c.ToSide = notation.SideRight, notation.SideLeft
	}
	return c
}

// isComplex decides whether junction routing is warranted: the diagram
// needs hub nodes or a crossing pair, and more total connections than
// complexMinConnections.
func isComplex(d *Diagram) bool {
	if len(d.Connections) <= complexMinConnections {
		return false
	}
	for _, deg := range d.Degrees() {
		if deg > hubDegree {
			return true
		}
	}
	for i := range d.Connections {
		for j := i + 1; j < len(d.Connections); j++ {
			if crossing(d.Connections[i], d.Connections[j]) {
				return true
			}
		}
	}
	return false
}

// crossing reports whether two connections run in directly opposite
// directions (left/right mirrored or top/bottom mirrored), the global
// line-crossing heuristic. The check is intentionally non-geometric: it
// flags mirrored side patterns anywhere in the connection set.
func crossing(a, b Connection) bool {
	return a.FromSide == b.FromSide.Opposite() && a.ToSide == b.ToSide.Opposite()
}

// conflictSet marks every connection that participates in an overlap or
// crossing relationship with at least one other connection. Overlap
// relationships require a shared endpoint; crossing relationships are
// global. Same-side classification is evaluated before crossing.
func conflictSet(conns []Connection) map[int]bool {
	conflicted := make(map[int]bool)
	overlapProne := func(c Connection) bool { return c.SameSide() || c.BottomToTop() }

	for i := range conns {
		for j := i + 1; j < len(conns); j++ {
			a, b := conns[i], conns[j]
			switch {
			case overlapProne(a) && overlapProne(b) && sharesEndpoint(a, b):
				conflicted[i], conflicted[j] = true, true
			case crossing(a, b):
				conflicted[i], conflicted[j] = true, true
			}
		}
	}
	return conflicted
}

// sharesEndpoint reports whether two connections touch a common service.
func sharesEndpoint(a, b Connection) bool {
	return a.From == b.From || a.From == b.To || a.To == b.From || a.To == b.To
}

// junctionDecl renders one junction declaration, scoped to the group that
// owns the diagram's services when one exists.
func junctionDecl(id, group string) string {
	if group == "" {
		return "junction " + id
	}
	return "junction " + id + " in " + group
}

// emit re-renders the diagram: passthrough lines verbatim in original
// order, generated junction declarations immediately after the opening
// keyword, and connection lines (rewritten or split) at their original
// positions. Stale junction declarations from earlier passes are dropped.
func emit(d *Diagram, rewritten []Connection, split map[int][]Connection, junctions []string) string {
	var out []string
	inserted := len(junctions) == 0

	for _, line := range d.Lines {
		switch line.Kind {
		case LineJunction:
			// Regenerated each pass; stale declarations vanish.
			continue

		case LineConnection:
			if !inserted {
				// No opening keyword line seen yet; keep the junction
				// declarations ahead of the first connection.
				out = append(out, junctions...)
				inserted = true
			}
			if parts, ok := split[line.Conn]; ok {
				for _, c := range parts {
					out = append(out, c.String())
				}
				continue
			}
			out = append(out, rewritten[line.Conn].String())

		default:
			out = append(out, line.Text)
			if !inserted && strings.Contains(line.Text, notation.ArchitectureKeyword) {
				out = append(out, junctions...)
				inserted = true
			}
		}
	}

	if !inserted {
		out = append(junctions, out...)
	}

	return strings.Join(out, "\n")
}
