// Package notation defines the shared vocabulary of the diagram pipeline:
// diagram families, attachment sides, connector kinds, and the keyword
// tables used by the preprocessor and validator.
//
// All types in this package are plain values. A diagram source is never
// edited in place - each pipeline stage consumes a string and produces a
// new one.
package notation

import (
	"fmt"
	"strings"
)

// =============================================================================
// Family - Diagram Dialects
// =============================================================================

// Family identifies the diagram dialect declared by the caller.
type Family string

// Supported diagram families.
const (
	FamilyFlow         Family = "flowchart"
	FamilySequence     Family = "sequence"
	FamilyClass        Family = "class"
	FamilyState        Family = "state"
	FamilyER           Family = "er"
	FamilyArchitecture Family = "architecture"
	FamilyTimeline     Family = "timeline"
	FamilyGantt        Family = "gantt"
	FamilyPie          Family = "pie"
	FamilyMindmap      Family = "mindmap"
	FamilyJourney      Family = "journey"
	FamilyQuadrant     Family = "quadrant"
)

// ArchitectureKeyword is the opening keyword for architecture diagrams.
const ArchitectureKeyword = "architecture-beta"

// familyKeywords maps each family to its canonical opening keyword.
// When a declared family's keyword is missing from the source text, the
// preprocessor prepends this keyword.
var familyKeywords = map[Family]string{
	FamilyFlow:         "flowchart",
	FamilySequence:     "sequenceDiagram",
	FamilyClass:        "classDiagram",
	FamilyState:        "stateDiagram-v2",
	FamilyER:           "erDiagram",
	FamilyArchitecture: ArchitectureKeyword,
	FamilyTimeline:     "timeline",
	FamilyGantt:        "gantt",
	FamilyPie:          "pie",
	FamilyMindmap:      "mindmap",
	FamilyJourney:      "journey",
	FamilyQuadrant:     "quadrantChart",
}

// recognizedKeywords is the full set of opening keywords the validator
// accepts, including grammar aliases that map to the same family.
var recognizedKeywords = []string{
	"flowchart",
	"graph",
	"sequenceDiagram",
	"classDiagram",
	"stateDiagram-v2",
	"stateDiagram",
	"erDiagram",
	ArchitectureKeyword,
	"timeline",
	"gantt",
	"pie",
	"mindmap",
	"journey",
	"quadrantChart",
}

// familyAliases maps each family to every opening keyword the grammar
// accepts for it, canonical keyword first. Most families have exactly
// one; flow and state carry a legacy alias.
var familyAliases = map[Family][]string{
	FamilyFlow:         {"flowchart", "graph"},
	FamilySequence:     {"sequenceDiagram"},
	FamilyClass:        {"classDiagram"},
	FamilyState:        {"stateDiagram-v2", "stateDiagram"},
	FamilyER:           {"erDiagram"},
	FamilyArchitecture: {ArchitectureKeyword},
	FamilyTimeline:     {"timeline"},
	FamilyGantt:        {"gantt"},
	FamilyPie:          {"pie"},
	FamilyMindmap:      {"mindmap"},
	FamilyJourney:      {"journey"},
	FamilyQuadrant:     {"quadrantChart"},
}

// ValidFamilies is the set of accepted family tokens.
var ValidFamilies = map[Family]bool{
	FamilyFlow:         true,
	FamilySequence:     true,
	FamilyClass:        true,
	FamilyState:        true,
	FamilyER:           true,
	FamilyArchitecture: true,
	FamilyTimeline:     true,
	FamilyGantt:        true,
	FamilyPie:          true,
	FamilyMindmap:      true,
	FamilyJourney:      true,
	FamilyQuadrant:     true,
}

// ParseFamily converts a caller-supplied token into a Family.
// Returns an error if the token is not one of the fixed enumerated set.
// An empty token is valid and means "undeclared".
func ParseFamily(token string) (Family, error) {
	if token == "" {
		return "", nil
	}
	f := Family(strings.ToLower(strings.TrimSpace(token)))
	if !ValidFamilies[f] {
		return "", fmt.Errorf("unknown diagram family: %q", token)
	}
	return f, nil
}

// Keyword returns the canonical opening keyword for the family.
// Returns an empty string for the undeclared family.
func (f Family) Keyword() string {
	return familyKeywords[f]
}

// IsArchitecture reports whether the family uses the architecture dialect,
// which is the only family the structural analyzer and connection
// optimizer operate on.
func (f Family) IsArchitecture() bool { return f == FamilyArchitecture }

// RecognizedKeywords returns the opening keywords accepted by the
// validator, in a stable order. The returned slice must not be modified.
func RecognizedKeywords() []string { return recognizedKeywords }

// MentionsFamilyKeyword reports whether text contains one of the
// family's own opening keywords, aliases included. A keyword belonging
// to a different family does not count. Used by the preprocessor to
// decide whether the canonical keyword must be prepended.
func MentionsFamilyKeyword(text string, family Family) bool {
	for _, kw := range familyAliases[family] {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// =============================================================================
// Side - Connection Attachment Points
// =============================================================================

// Side is a compass attachment point of a connection endpoint.
type Side string

// The four attachment sides, in their single-letter notation form.
const (
	SideTop    Side = "T"
	SideBottom Side = "B"
	SideLeft   Side = "L"
	SideRight  Side = "R"
)

// ParseSide converts a notation token (T/B/L/R) into a Side.
func ParseSide(token string) (Side, bool) {
	switch Side(token) {
	case SideTop, SideBottom, SideLeft, SideRight:
		return Side(token), true
	}
	return "", false
}

// Opposite returns the side directly across from s.
func (s Side) Opposite() Side {
	switch s {
	case SideTop:
		return SideBottom
	case SideBottom:
		return SideTop
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	}
	return s
}

// Horizontal reports whether the side is Left or Right.
func (s Side) Horizontal() bool { return s == SideLeft || s == SideRight }

// =============================================================================
// Connector - Edge Drawing Styles
// =============================================================================

// Connector is the drawing style of a connection between two services.
type Connector string

// Connector kinds, in their notation form.
const (
	ConnectorPlain       Connector = "--"
	ConnectorArrow       Connector = "-->"
	ConnectorDashedArrow Connector = "-.->"
)

// ParseConnector converts a notation token into a Connector.
func ParseConnector(token string) (Connector, bool) {
	switch Connector(token) {
	case ConnectorPlain, ConnectorArrow, ConnectorDashedArrow:
		return Connector(token), true
	}
	return "", false
}

// =============================================================================
// Source - Pipeline Input
// =============================================================================

// Source is one unit of untrusted diagram notation entering the pipeline.
// Sources are immutable: stages return new strings rather than editing the
// text in place.
type Source struct {
	Text   string // Raw notation text (may be garbage)
	Family Family // Declared dialect, or empty if undeclared
}
