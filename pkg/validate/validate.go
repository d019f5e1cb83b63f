// Package validate decides whether prepared diagram notation is acceptable
// to hand to a rendering engine.
//
// Validation layers, in order:
//
//  1. Family-agnostic checks: bracket balance and a recognized opening
//     keyword. These run for every family.
//  2. Family-specific checks: currently only the architecture family,
//     which must declare at least one service.
//  3. An optional grammar-engine check: when a real notation parser is
//     available it gets the final word, and its first structured error is
//     translated into a user-facing message.
//
// Validate is pure and idempotent: it never mutates its input, and
// identical input always produces an identical Result.
package validate

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/inkfold/diagramprep/pkg/archgraph"
	"github.com/inkfold/diagramprep/pkg/notation"
)

// Result is the terminal outcome of one validation attempt. It is fully
// populated on construction and never modified afterwards.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// GrammarChecker is the optional hook into a real grammar engine for the
// notation. Check returns nil when the text parses, or an error whose
// message may carry a structured "error on line N: detail" pattern.
type GrammarChecker interface {
	Check(text string) error
}

// Validator runs the validation layers. The zero value is usable: no
// grammar engine and a discarded logger.
type Validator struct {
	// Grammar is consulted last when non-nil. Best effort: grammar
	// failures produce precise messages, absence of a grammar engine
	// falls back to the structural checks alone.
	Grammar GrammarChecker

	// Logger receives advisory diagnostics (same-side connections the
	// optimizer should have fixed). Nil means discard.
	Logger *log.Logger
}

// New creates a Validator with the given grammar engine hook (may be nil)
// and logger (may be nil).
func New(grammar GrammarChecker, logger *log.Logger) *Validator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Validator{Grammar: grammar, Logger: logger}
}

// symbol pairs checked by the balance scan, with their user-facing names.
var symbolPairs = []struct {
	open, close byte
	name        string
	symbols     string
}{
	{'(', ')', "parentheses", "()"},
	{'[', ']', "square brackets", "[]"},
	{'{', '}', "curly braces", "{}"},
}

// genericFailure is the message for input the validator cannot reason
// about at all (empty, whitespace, non-text).
const genericFailure = "Diagram code is empty or not valid diagram notation"

// Validate checks text against all applicable layers for the declared
// family and returns a terminal Result. It never panics: unexpected
// conditions are converted into a generic validation failure.
func (v *Validator) Validate(text string, family notation.Family) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Valid: false, Message: genericFailure}
		}
	}()

	if strings.TrimSpace(text) == "" {
		return Result{Valid: false, Message: genericFailure}
	}

	if res, ok := v.checkBalance(text); !ok {
		return res
	}
	if res, ok := v.checkOpeningKeyword(text, family); !ok {
		return res
	}
	if family.IsArchitecture() {
		if res, ok := v.checkArchitecture(text); !ok {
			return res
		}
	}
	if res, ok := v.checkGrammar(text); !ok {
		return res
	}

	return Result{Valid: true}
}

// checkBalance verifies that every bracket class opens and closes an equal
// number of times. The first unbalanced class is reported by name.
func (v *Validator) checkBalance(text string) (Result, bool) {
	for _, p := range symbolPairs {
		opens := strings.Count(text, string(p.open))
		closes := strings.Count(text, string(p.close))
		if opens != closes {
			return Result{
				Valid:   false,
				Message: fmt.Sprintf("Unbalanced %s %s in diagram code", p.name, p.symbols),
			}, false
		}
	}
	return Result{}, true
}

// checkOpeningKeyword verifies that the first non-empty line carries a
// recognized diagram keyword. The failure message names the expected
// keyword when a family was declared.
func (v *Validator) checkOpeningKeyword(text string, family notation.Family) (Result, bool) {
	first := firstNonEmptyLine(text)

	for _, kw := range notation.RecognizedKeywords() {
		if strings.Contains(first, kw) {
			return Result{}, true
		}
	}

	if kw := family.Keyword(); kw != "" {
		return Result{
			Valid:   false,
			Message: fmt.Sprintf("Diagram must start with the %q keyword, found %q", kw, first),
		}, false
	}
	return Result{
		Valid:   false,
		Message: fmt.Sprintf("Diagram does not start with a recognized keyword, found %q", first),
	}, false
}

// checkArchitecture enforces the architecture-family rules: the
// architecture keyword must open the text, and at least one service must
// be declared. Same-side connections are advisory only - the optimizer is
// expected to have rewritten them already.
func (v *Validator) checkArchitecture(text string) (Result, bool) {
	if !strings.HasPrefix(strings.TrimSpace(text), notation.ArchitectureKeyword) {
		return Result{
			Valid:   false,
			Message: fmt.Sprintf("Architecture diagram must start with %q", notation.ArchitectureKeyword),
		}, false
	}

	d := archgraph.Parse(text)
	if len(d.Services) == 0 {
		return Result{
			Valid:   false,
			Message: "Architecture diagram must declare at least one service",
		}, false
	}

	for _, c := range d.Connections {
		if c.SameSide() {
			v.logger().Warn("same-side connection survived optimization", "connection", c.String())
		}
	}

	return Result{}, true
}

// grammarLineErrRe extracts the structured "error on line N: detail"
// pattern emitted by grammar engines.
var grammarLineErrRe = regexp.MustCompile(`(?i)error on line (\d+):\s*(.+)`)

// checkGrammar delegates to the grammar engine when one is configured and
// translates its first structured error. Engines without line information
// fall back to a plain message.
func (v *Validator) checkGrammar(text string) (Result, bool) {
	if v.Grammar == nil {
		return Result{}, true
	}
	err := v.Grammar.Check(text)
	if err == nil {
		return Result{}, true
	}

	if m := grammarLineErrRe.FindStringSubmatch(err.Error()); m != nil {
		return Result{
			Valid:   false,
			Message: fmt.Sprintf("Error on line %s: %s", m[1], strings.TrimSpace(m[2])),
		}, false
	}
	return Result{Valid: false, Message: err.Error()}, false
}

func (v *Validator) logger() *log.Logger {
	if v.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return v.Logger
}

// firstNonEmptyLine returns the first line of text containing a non-space
// character, trimmed.
func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
