// Package mmdc adapts the mermaid command-line renderer (mmdc) to the
// renderer.Engine interface.
//
// The child process is the real grammar and layout engine for every
// diagram family. It is invoked once per render request with the
// render-scoped id as the working file stem, so concurrent requests never
// collide on temp files.
package mmdc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/inkfold/diagramprep/pkg/renderer"
)

// DefaultBinary is the conventional name of the mermaid CLI.
const DefaultBinary = "mmdc"

// Engine shells out to the mermaid CLI.
type Engine struct {
	// Binary is the executable to invoke. Empty means DefaultBinary
	// resolved through PATH.
	Binary string

	// WorkDir is where input/output temp files are staged. Empty means
	// the system temp directory.
	WorkDir string
}

// New creates an engine using the given binary path, or the default when
// empty.
func New(binary string) *Engine {
	return &Engine{Binary: binary}
}

// Name identifies the engine in logs and cache keys.
func (e *Engine) Name() string { return "mmdc" }

// Available reports whether the configured binary can be resolved.
func (e *Engine) Available() bool {
	_, err := exec.LookPath(e.binary())
	return err == nil
}

// Render writes the notation to a temp file, runs the CLI, and reads the
// produced SVG back. The CLI's stderr becomes the rejection message so
// grammar errors surface verbatim to the recovery layer.
func (e *Engine) Render(ctx context.Context, id, text string) (string, error) {
	bin, err := exec.LookPath(e.binary())
	if err != nil {
		return "", fmt.Errorf("%w: %s not found in PATH", renderer.ErrEngineUnavailable, e.binary())
	}

	dir := e.WorkDir
	if dir == "" {
		dir = os.TempDir()
	}
	in := filepath.Join(dir, id+".mmd")
	out := filepath.Join(dir, id+".svg")
	defer os.Remove(in)
	defer os.Remove(out)

	if err := os.WriteFile(in, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("stage notation: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin, "-i", in, "-o", out, "--quiet")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s", msg)
		}
		return "", fmt.Errorf("mmdc: %w", err)
	}

	svg, err := os.ReadFile(out)
	if err != nil {
		return "", fmt.Errorf("read rendered SVG: %w", err)
	}
	return string(svg), nil
}

func (e *Engine) binary() string {
	if e.Binary != "" {
		return e.Binary
	}
	return DefaultBinary
}

var _ renderer.Engine = (*Engine)(nil)
