package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/inkfold/diagramprep/pkg/cache"
	apperrors "github.com/inkfold/diagramprep/pkg/errors"
	"github.com/inkfold/diagramprep/pkg/renderer"
)

const archSource = `architecture-beta
    service api(cloud)[API]
    service db(database)[Database]
    api:R --> L:db
`

func newTestRunner(t *testing.T, engine renderer.Engine) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil, engine)
	t.Cleanup(func() { r.Close() })
	return r
}

func countingEngine(calls *int, svg string) renderer.Engine {
	return renderer.EngineFunc{ID: "test", Fn: func(ctx context.Context, id, text string) (string, error) {
		*calls++
		return svg, nil
	}}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"architecture family", Options{Text: "x", Family: "architecture"}, false},
		{"undeclared family", Options{Text: "x"}, false},
		{"flowchart family", Options{Text: "x", Family: "flowchart"}, false},
		{"unknown family", Options{Text: "x", Family: "blorp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if code := apperrors.GetCode(err); code != apperrors.ErrCodeInvalidFamily {
					t.Errorf("code = %v, want ErrCodeInvalidFamily", code)
				}
				return
			}
			// Second call must not change anything.
			if err := tt.opts.ValidateAndSetDefaults(); err != nil {
				t.Errorf("second call errored: %v", err)
			}
			if tt.opts.Logger == nil {
				t.Error("logger not defaulted")
			}
		})
	}
}

func TestPrepareValidInput(t *testing.T) {
	r := newTestRunner(t, nil)

	prepared, hit, err := r.Prepare(context.Background(), Options{Text: archSource, Family: "architecture"})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if hit {
		t.Error("unexpected cache hit on first run")
	}
	if !prepared.Validation.Valid {
		t.Fatalf("validation failed: %q", prepared.Validation.Message)
	}
	if prepared.Text == "" || prepared.Hash == "" {
		t.Error("prepared text or hash empty")
	}
}

func TestPrepareCachesResult(t *testing.T) {
	r := newTestRunner(t, nil)
	opts := Options{Text: archSource, Family: "architecture"}
	ctx := context.Background()

	first, hit, err := r.Prepare(ctx, opts)
	if err != nil || hit {
		t.Fatalf("first run: hit=%v err=%v", hit, err)
	}

	second, hit, err := r.Prepare(ctx, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !hit {
		t.Error("second run missed the cache")
	}
	if second.Text != first.Text || second.Hash != first.Hash {
		t.Error("cached result differs from computed result")
	}

	// Refresh bypasses the cache.
	opts.Refresh = true
	if _, hit, _ := r.Prepare(ctx, opts); hit {
		t.Error("refresh run reported a cache hit")
	}
}

func TestPrepareNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"complete garbage {{{{",
		"\x00\x01\x02 binary junk",
		strings.Repeat("((((", 500),
		"architecture-beta\n\tjunk [[[",
	}

	r := newTestRunner(t, nil)
	for _, in := range inputs {
		for _, family := range []string{"", "architecture", "flowchart"} {
			if _, _, err := r.Prepare(context.Background(), Options{Text: in, Family: family}); err != nil {
				t.Errorf("Prepare(%q, %q) errored: %v", in, family, err)
			}
		}
	}
}

func TestPrepareInvalidFamily(t *testing.T) {
	r := newTestRunner(t, nil)
	if _, _, err := r.Prepare(context.Background(), Options{Text: "x", Family: "nope"}); err == nil {
		t.Fatal("expected error for unknown family")
	}
}

func TestExecuteSuccess(t *testing.T) {
	calls := 0
	r := newTestRunner(t, countingEngine(&calls, `<svg><g class="node">ok</g></svg>`))

	result, err := r.Execute(context.Background(), Options{Text: archSource, Family: "architecture"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Outcome.OK {
		t.Fatalf("render failed: %q", result.Outcome.Message)
	}
	if !strings.Contains(result.Outcome.SVG, "node") {
		t.Errorf("svg = %q", result.Outcome.SVG)
	}
	if calls != 1 {
		t.Errorf("engine calls = %d, want 1", calls)
	}
}

func TestExecuteValidationFailureBlocksRender(t *testing.T) {
	calls := 0
	r := newTestRunner(t, countingEngine(&calls, "<svg></svg>"))

	// No services declared, so the architecture check fails.
	result, err := r.Execute(context.Background(), Options{Text: "architecture-beta\n", Family: "architecture"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome.OK {
		t.Fatal("invalid diagram rendered")
	}
	if calls != 0 {
		t.Errorf("engine called %d times for invalid input", calls)
	}
	if result.Outcome.Message == "" {
		t.Error("failure outcome carries no message")
	}
	if result.Outcome.FallbackSVG == "" {
		t.Error("failure outcome carries no fallback artwork")
	}
}

func TestExecuteNilEngine(t *testing.T) {
	r := newTestRunner(t, nil)

	result, err := r.Execute(context.Background(), Options{Text: archSource, Family: "architecture"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome.OK {
		t.Fatal("outcome ok without an engine")
	}
	if !strings.Contains(result.Outcome.Message, "no rendering engine") {
		t.Errorf("message = %q", result.Outcome.Message)
	}
	if result.Outcome.FallbackSVG == "" {
		t.Error("no fallback artwork")
	}
}

func TestExecuteEngineFailure(t *testing.T) {
	engine := renderer.EngineFunc{ID: "broken", Fn: func(ctx context.Context, id, text string) (string, error) {
		return "", errors.New("engine exploded")
	}}
	r := newTestRunner(t, engine)

	custom := `<svg width="10" height="10"><rect/></svg>`
	result, err := r.Execute(context.Background(), Options{
		Text:        archSource,
		Family:      "architecture",
		FallbackSVG: custom,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome.OK {
		t.Fatal("outcome ok after engine failure")
	}
	if !strings.Contains(result.Outcome.Message, "engine exploded") {
		t.Errorf("message = %q", result.Outcome.Message)
	}
	if result.Outcome.FallbackSVG != custom {
		t.Errorf("fallback = %q, want caller-supplied artwork", result.Outcome.FallbackSVG)
	}
}

func TestExecuteCachesArtifact(t *testing.T) {
	calls := 0
	r := newTestRunner(t, countingEngine(&calls, "<svg>artifact</svg>"))
	opts := Options{Text: archSource, Family: "architecture"}
	ctx := context.Background()

	first, err := r.Execute(ctx, opts)
	if err != nil || !first.Outcome.OK {
		t.Fatalf("first run: err=%v outcome=%+v", err, first)
	}
	if first.CacheInfo.ArtifactHit {
		t.Error("first run reported an artifact hit")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil || !second.Outcome.OK {
		t.Fatalf("second run: err=%v", err)
	}
	if !second.CacheInfo.ArtifactHit {
		t.Error("second run missed the artifact cache")
	}
	if second.Outcome.SVG != first.Outcome.SVG {
		t.Error("cached artifact differs from rendered artifact")
	}
	if calls != 1 {
		t.Errorf("engine calls = %d, want 1", calls)
	}
}

func TestExecuteWritesSurface(t *testing.T) {
	calls := 0
	svg := `<svg><g class="node">ok</g></svg>`
	r := newTestRunner(t, countingEngine(&calls, svg))
	r.Surface = renderer.NewSurface()
	opts := Options{Text: archSource, Family: "architecture"}
	ctx := context.Background()

	result, err := r.Execute(ctx, opts)
	if err != nil || !result.Outcome.OK {
		t.Fatalf("Execute: err=%v outcome=%+v", err, result)
	}
	if got := r.Surface.Markup(); got != result.Outcome.SVG {
		t.Errorf("surface = %q, want rendered markup %q", got, result.Outcome.SVG)
	}

	// A cache hit replays the artifact onto the surface too, so the
	// shared slot always holds the latest result.
	r.Surface.Replace("")
	second, err := r.Execute(ctx, opts)
	if err != nil || !second.CacheInfo.ArtifactHit {
		t.Fatalf("second run: err=%v hit=%v", err, second.CacheInfo.ArtifactHit)
	}
	if got := r.Surface.Markup(); got != second.Outcome.SVG {
		t.Errorf("surface after cache hit = %q, want %q", got, second.Outcome.SVG)
	}
}

func TestExecuteSkipOptimize(t *testing.T) {
	// Two same-side connections would normally be rewritten. SkipOptimize
	// must leave them untouched.
	source := `architecture-beta
    service a[A]
    service b[B]
    a:T -- T:b
`
	r := newTestRunner(t, nil)

	prepared, _, err := r.Prepare(context.Background(), Options{
		Text:         source,
		Family:       "architecture",
		SkipOptimize: true,
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !strings.Contains(prepared.Text, "a:T -- T:b") {
		t.Errorf("connection rewritten despite SkipOptimize:\n%s", prepared.Text)
	}
}
