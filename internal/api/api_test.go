package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/inkfold/diagramprep/pkg/pipeline"
	"github.com/inkfold/diagramprep/pkg/renderer"
)

const archSource = `architecture-beta
    service api(cloud)[API]
    service db(database)[Database]
    api:R --> L:db
`

func newTestRouter(engine renderer.Engine) http.Handler {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger, engine)
	return NewRouter(NewHandler(runner, logger))
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPrepareEndpoint(t *testing.T) {
	router := newTestRouter(nil)

	rec := postJSON(t, router, "/v1/prepare", prepareRequest{Text: archSource, Family: "architecture"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		pipeline.Prepared
		CacheHit bool `json:"cache_hit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Validation.Valid {
		t.Errorf("validation failed: %q", resp.Validation.Message)
	}
	if resp.Text == "" {
		t.Error("prepared text empty")
	}
}

func TestValidateEndpoint(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name      string
		text      string
		wantValid bool
	}{
		{"valid diagram", archSource, true},
		{"no services", "architecture-beta\n", false},
		{"unbalanced brackets", "architecture-beta\n    service a[A\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/v1/validate", prepareRequest{Text: tt.text, Family: "architecture"})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
			}

			var resp struct {
				Valid   bool   `json:"valid"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v (message %q)", resp.Valid, tt.wantValid, resp.Message)
			}
		})
	}
}

func TestRenderEndpoint(t *testing.T) {
	engine := renderer.EngineFunc{ID: "test", Fn: func(ctx context.Context, id, text string) (string, error) {
		return "<svg>rendered</svg>", nil
	}}
	router := newTestRouter(engine)

	rec := postJSON(t, router, "/v1/render", renderRequest{
		prepareRequest: prepareRequest{Text: archSource, Family: "architecture"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Outcome.OK {
		t.Fatalf("render failed: %q", resp.Outcome.Message)
	}
	if !strings.Contains(resp.Outcome.SVG, "rendered") {
		t.Errorf("svg = %q", resp.Outcome.SVG)
	}
}

func TestRenderEndpointValidationFailure(t *testing.T) {
	router := newTestRouter(nil)

	rec := postJSON(t, router, "/v1/render", renderRequest{
		prepareRequest: prepareRequest{Text: "architecture-beta\n", Family: "architecture"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Outcome.OK {
		t.Fatal("invalid diagram rendered")
	}
	if resp.Outcome.FallbackSVG == "" {
		t.Error("no fallback artwork in failure outcome")
	}
}

func TestBadRequests(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"text": `},
		{"unknown field", `{"text": "x", "bogus": true}`},
		{"unknown family", `{"text": "x", "family": "blorp"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/prepare", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Code == "" || resp.Message == "" {
				t.Errorf("error response incomplete: %+v", resp)
			}
		})
	}
}
