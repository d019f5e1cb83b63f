// Package dotengine renders architecture-family diagrams natively through
// Graphviz, without an external notation engine.
//
// The engine re-analyzes the prepared text with the structural analyzer,
// converts services, groups, and connections to DOT, and renders SVG with
// the embedded Graphviz runtime. It serves as a preview engine for
// deployments where no real notation engine is installed; families other
// than architecture are rejected so the controller can fall back.
package dotengine

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/inkfold/diagramprep/pkg/archgraph"
	"github.com/inkfold/diagramprep/pkg/notation"
	"github.com/inkfold/diagramprep/pkg/renderer"
)

// Engine implements renderer.Engine on top of Graphviz.
type Engine struct{}

// New creates a Graphviz-backed preview engine.
func New() *Engine { return &Engine{} }

// Name identifies the engine in logs and cache keys.
func (e *Engine) Name() string { return "dot-preview" }

// Render converts the architecture notation to DOT and renders SVG.
// Text without the architecture opening keyword is rejected with
// renderer.ErrUnsupportedFamily.
func (e *Engine) Render(ctx context.Context, id, text string) (string, error) {
	if !strings.Contains(text, notation.ArchitectureKeyword) {
		return "", renderer.ErrUnsupportedFamily
	}

	d := archgraph.Parse(text)
	if len(d.Services) == 0 {
		return "", fmt.Errorf("nothing to render: no services declared")
	}

	return renderSVG(ctx, ToDOT(id, d))
}

// ToDOT converts an analyzed architecture diagram to Graphviz DOT.
// Groups become clusters; junctions render as small points so split
// connections read as a single routed line.
func ToDOT(id string, d *archgraph.Diagram) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", id)
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	grouped := make(map[string][]archgraph.Service)
	for _, s := range d.Services {
		grouped[s.Group] = append(grouped[s.Group], s)
	}

	for _, g := range d.Groups {
		fmt.Fprintf(&buf, "  subgraph \"cluster_%s\" {\n", g.ID)
		fmt.Fprintf(&buf, "    label=%q;\n", labelOrID(g.Label, g.ID))
		for _, s := range grouped[g.ID] {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", s.ID, labelOrID(s.Label, s.ID))
		}
		buf.WriteString("  }\n")
	}

	for _, s := range grouped[""] {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", s.ID, labelOrID(s.Label, s.ID))
	}

	for _, line := range d.Lines {
		if line.Kind != archgraph.LineJunction {
			continue
		}
		name := junctionID(line.Text)
		fmt.Fprintf(&buf, "  %q [shape=point, width=0.08];\n", name)
	}

	buf.WriteString("\n")
	for _, c := range d.Connections {
		attrs := connectorAttrs(c.Connector)
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", c.From, c.To, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func labelOrID(label, id string) string {
	if label != "" {
		return label
	}
	return id
}

// junctionID extracts the junction name from its declaration line.
func junctionID(line string) string {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) >= 2 {
		return fields[1]
	}
	return line
}

// connectorAttrs maps connector kinds to DOT edge attributes.
func connectorAttrs(c notation.Connector) string {
	switch c {
	case notation.ConnectorPlain:
		return " [dir=none]"
	case notation.ConnectorDashedArrow:
		return " [style=dashed]"
	}
	return ""
}

// renderSVG runs Graphviz over the DOT text.
func renderSVG(ctx context.Context, dot string) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return "", fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}

var _ renderer.Engine = (*Engine)(nil)
