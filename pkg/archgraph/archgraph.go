// Package archgraph parses architecture-family diagram notation into an
// in-memory graph of services, groups, and connections, and rewrites
// overlap-prone connections so rendered lines stop crossing node labels.
//
// The analyzer is deliberately forgiving: it recognizes the declaration
// forms it needs and treats every other line as opaque passthrough text.
// Malformed lines are never dropped and never cause an error - they simply
// fail to match and are re-emitted verbatim.
package archgraph

import (
	"regexp"

	"github.com/inkfold/diagramprep/pkg/notation"
)

// Service is a declared service node. IDs are unique within a diagram and
// a service belongs to at most one group.
type Service struct {
	ID    string // Unique identifier
	Icon  string // Icon token from the declaration, e.g. "database"
	Label string // Display label
	Group string // Owning group ID, or empty if ungrouped
}

// Group is a declared service group.
type Group struct {
	ID    string
	Icon  string
	Label string
}

// Connection is a directed edge between two service endpoints. The graph
// is a multigraph: several connections may join the same pair.
type Connection struct {
	From      string
	FromSide  notation.Side
	To        string
	ToSide    notation.Side
	Connector notation.Connector
}

// SameSide reports whether both endpoints attach on the same compass side,
// the primary overlap-prone pattern.
func (c Connection) SameSide() bool { return c.FromSide == c.ToSide }

// BottomToTop reports whether the connection runs from a bottom edge to a
// top edge, the secondary overlap-prone pattern.
func (c Connection) BottomToTop() bool {
	return c.FromSide == notation.SideBottom && c.ToSide == notation.SideTop
}

// String renders the connection back into notation form.
func (c Connection) String() string {
	return c.From + ":" + string(c.FromSide) + " " + string(c.Connector) + " " + string(c.ToSide) + ":" + c.To
}

// LineKind classifies a scanned source line.
type LineKind int

const (
	// LineOther is any line the analyzer does not recognize. It is
	// retained verbatim and re-emitted in place.
	LineOther LineKind = iota
	// LineService is a service declaration.
	LineService
	// LineGroup is a group declaration.
	LineGroup
	// LineConnection is a connection statement.
	LineConnection
	// LineJunction is a junction declaration left behind by a previous
	// optimization pass. Junctions are regenerated on every run, so stale
	// declarations are recognized but treated as passthrough.
	LineJunction
)

// Line is one scanned source line together with its classification. For
// LineConnection the Conn index points into Diagram.Connections.
type Line struct {
	Kind LineKind
	Text string // Original text, verbatim
	Conn int    // Connection index, valid only for LineConnection
}

// Diagram is the parse result: the declaration graph plus the ordered line
// list needed to re-emit unrecognized content unchanged.
type Diagram struct {
	Services    []Service
	Groups      []Group
	Connections []Connection
	Lines       []Line
}

// Declaration grammar. Icons and labels may be empty; IDs are word tokens.
var (
	serviceRe    = regexp.MustCompile(`^\s*service\s+(\w+)(?:\(([\w-]*)\))?(?:\[([^\]]*)\])?(?:\s+in\s+(\w+))?\s*$`)
	groupRe      = regexp.MustCompile(`^\s*group\s+(\w+)(?:\(([\w-]*)\))?(?:\[([^\]]*)\])?\s*$`)
	junctionRe   = regexp.MustCompile(`^\s*junction\s+(\w+)(?:\s+in\s+(\w+))?\s*$`)
	connectionRe = regexp.MustCompile(`^\s*(\w+):([TBLR])\s+(--|-->|-\.->)\s+([TBLR]):(\w+)\s*$`)
)

// Parse scans text line by line and builds the architecture graph. It
// performs no validation: unrecognized or malformed lines become LineOther
// entries and survive re-emission untouched. Parse never fails.
func Parse(text string) *Diagram {
	d := &Diagram{}

	for _, raw := range splitLines(text) {
		switch {
		case serviceRe.MatchString(raw):
			m := serviceRe.FindStringSubmatch(raw)
			d.Services = append(d.Services, Service{ID: m[1], Icon: m[2], Label: m[3], Group: m[4]})
			d.Lines = append(d.Lines, Line{Kind: LineService, Text: raw})

		case groupRe.MatchString(raw):
			m := groupRe.FindStringSubmatch(raw)
			d.Groups = append(d.Groups, Group{ID: m[1], Icon: m[2], Label: m[3]})
			d.Lines = append(d.Lines, Line{Kind: LineGroup, Text: raw})

		case junctionRe.MatchString(raw):
			d.Lines = append(d.Lines, Line{Kind: LineJunction, Text: raw})

		case connectionRe.MatchString(raw):
			m := connectionRe.FindStringSubmatch(raw)
			fromSide, _ := notation.ParseSide(m[2])
			toSide, _ := notation.ParseSide(m[4])
			conn, _ := notation.ParseConnector(m[3])
			d.Connections = append(d.Connections, Connection{
				From:      m[1],
				FromSide:  fromSide,
				To:        m[5],
				ToSide:    toSide,
				Connector: conn,
			})
			d.Lines = append(d.Lines, Line{Kind: LineConnection, Text: raw, Conn: len(d.Connections) - 1})

		default:
			d.Lines = append(d.Lines, Line{Kind: LineOther, Text: raw})
		}
	}

	return d
}

// ServiceByID returns the declared service with the given ID, or nil.
func (d *Diagram) ServiceByID(id string) *Service {
	for i := range d.Services {
		if d.Services[i].ID == id {
			return &d.Services[i]
		}
	}
	return nil
}

// FirstOwningGroup returns the ID of the first group that owns any
// declared service, or empty if every service is ungrouped. Generated
// junctions are scoped to this group so they render inside the cluster.
func (d *Diagram) FirstOwningGroup() string {
	for _, s := range d.Services {
		if s.Group != "" {
			return s.Group
		}
	}
	return ""
}

// Degrees returns the connection count per endpoint ID across the whole
// graph. Both endpoints of every connection contribute.
func (d *Diagram) Degrees() map[string]int {
	deg := make(map[string]int)
	for _, c := range d.Connections {
		deg[c.From]++
		deg[c.To]++
	}
	return deg
}

// splitLines splits on newlines without dropping any content. An empty
// input yields no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	return append(lines, text[start:])
}
