// Package preprocess normalizes raw diagram notation before analysis,
// validation, and rendering.
//
// Notation frequently arrives from a language model and carries a small
// set of recurring mistakes: markdown fences around the code, a missing
// layout direction, use of the reserved `end` class name, or missing
// statement terminators. This stage patches those mistakes with targeted
// text rewrites.
//
// The stage is best effort by contract: it never fails, never panics, and
// passes unmatched input through unchanged. Normalize is a fixed point -
// running it on its own output is a no-op.
package preprocess

import (
	"regexp"
	"strings"

	"github.com/inkfold/diagramprep/pkg/notation"
)

var (
	// fenceRe matches markdown code fences with an optional info string,
	// e.g. ```mermaid or a bare closing ```.
	fenceRe = regexp.MustCompile("(?m)^\\s*```[a-zA-Z0-9_-]*\\s*$")

	// flowHeaderRe captures a flowchart/graph opening line so a default
	// direction can be inserted when none is present.
	flowHeaderRe = regexp.MustCompile(`(?m)^(\s*)(flowchart|graph)([ \t]+\S+.*)?[ \t]*$`)

	// flowDirectionRe matches the layout direction tokens of the flow grammar.
	flowDirectionRe = regexp.MustCompile(`^[ \t]+(TD|TB|LR|RL|BT)\b`)

	// Reserved `end` class usages. `end` terminates blocks in the grammar,
	// so a style class with that exact name breaks the parser.
	classDefEndRe    = regexp.MustCompile(`(?m)^(\s*classDef\s+)end(\b)`)
	classAssignEndRe = regexp.MustCompile(`(?m)^(\s*class\s+[\w,\s]+\s)end(\s*;?\s*)$`)
	inlineClassEndRe = regexp.MustCompile(`:::end\b`)

	// styleLineRe matches classDef/style declarations for terminator repair.
	styleLineRe = regexp.MustCompile(`(?m)^(\s*(?:classDef|style)\s+[^\n;]*[^\n;\s])[ \t]*$`)
)

// DefaultFlowDirection is inserted after the flow keyword when the source
// declares no layout direction.
const DefaultFlowDirection = "TD"

// Normalize applies all applicable repairs for the declared family and
// returns the normalized text. Unknown or inapplicable patterns pass
// through unchanged; Normalize never returns an error.
func Normalize(text string, family notation.Family) string {
	out := stripFences(text)

	// Keywords are prepended before the direction rule so a freshly
	// inserted flow keyword still receives its default direction, keeping
	// Normalize a fixed point.
	if family.IsArchitecture() {
		out = ensureArchitectureKeyword(out)
	}
	out = ensureFamilyKeyword(out, family)

	if family == notation.FamilyFlow || family == "" {
		out = ensureFlowDirection(out)
	}

	out = renameEndClass(out)
	out = terminateStyleLines(out)

	return out
}

// stripFences removes markdown code-fence lines wherever they appear.
// Fences are a wrapper artifact, never part of the notation itself.
func stripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	out := fenceRe.ReplaceAllString(text, "")
	// Collapse blank lines left behind at the edges.
	return strings.Trim(out, "\n")
}

// ensureFlowDirection inserts the default direction after a flowchart or
// graph keyword that is not followed by one.
func ensureFlowDirection(text string) string {
	return flowHeaderRe.ReplaceAllStringFunc(text, func(line string) string {
		m := flowHeaderRe.FindStringSubmatch(line)
		rest := m[3]
		if flowDirectionRe.MatchString(rest) {
			return line
		}
		return m[1] + m[2] + " " + DefaultFlowDirection + rest
	})
}

// renameEndClass renames a style class literally called `end` to
// `endClass` at its declaration and usage sites. This is a targeted patch
// for the one reserved word observed to break generated diagrams, not a
// general reserved-word scan.
func renameEndClass(text string) string {
	out := classDefEndRe.ReplaceAllString(text, "${1}endClass${2}")
	out = classAssignEndRe.ReplaceAllString(out, "${1}endClass${2}")
	out = inlineClassEndRe.ReplaceAllString(out, ":::endClass")
	return out
}

// terminateStyleLines appends the terminating semicolon to classDef and
// style declarations that lack one.
func terminateStyleLines(text string) string {
	return styleLineRe.ReplaceAllString(text, "${1};")
}

// ensureArchitectureKeyword prepends the architecture opening keyword when
// the text does not already begin with it.
func ensureArchitectureKeyword(text string) string {
	trimmed := strings.TrimLeft(text, " \t\n")
	if strings.HasPrefix(trimmed, notation.ArchitectureKeyword) {
		return text
	}
	if trimmed == "" {
		return notation.ArchitectureKeyword
	}
	return notation.ArchitectureKeyword + "\n" + text
}

// ensureFamilyKeyword prepends the canonical keyword for a declared family
// whose text mentions none of that family's own opening keywords. Keywords
// belonging to other families do not satisfy the check.
func ensureFamilyKeyword(text string, family notation.Family) string {
	kw := family.Keyword()
	if kw == "" || notation.MentionsFamilyKeyword(text, family) {
		return text
	}
	if strings.TrimSpace(text) == "" {
		return kw
	}
	return kw + "\n" + text
}
