// Package api exposes the preparation pipeline over HTTP.
//
// # Architecture
//
// The package wraps a pipeline.Runner behind a small JSON API:
//
//	POST /v1/prepare   normalize + optimize + validate, returns prepared text
//	POST /v1/validate  validation verdict only
//	POST /v1/render    full pipeline, returns SVG or fallback artwork
//	GET  /healthz      liveness probe
//
// Handlers never surface internal errors to clients: pipeline failures
// arrive as structured verdicts inside a 200 response, and only malformed
// requests or unknown family tokens produce 4xx codes.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/inkfold/diagramprep/pkg/errors"
	"github.com/inkfold/diagramprep/pkg/pipeline"
	"github.com/inkfold/diagramprep/pkg/renderer"
)

// Handler wraps the dependencies shared by all HTTP handlers.
type Handler struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewHandler creates an API handler around the given runner.
func NewHandler(runner *pipeline.Runner, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{runner: runner, logger: logger}
}

// NewRouter builds the HTTP router with all routes registered.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.withLogging)

	r.Get("/healthz", h.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/prepare", h.Prepare)
		r.Post("/validate", h.Validate)
		r.Post("/render", h.Render)
	})

	return r
}

// prepareRequest is the body for /v1/prepare and /v1/validate.
type prepareRequest struct {
	Text         string `json:"text"`
	Family       string `json:"family,omitempty"`
	SkipOptimize bool   `json:"skip_optimize,omitempty"`
	Refresh      bool   `json:"refresh,omitempty"`
}

// renderRequest is the body for /v1/render.
type renderRequest struct {
	prepareRequest
	FallbackSVG string `json:"fallback_svg,omitempty"`
}

// renderResponse is the body for /v1/render.
type renderResponse struct {
	Outcome   renderer.Outcome `json:"outcome"`
	PrepareMS int64            `json:"prepare_ms"`
	RenderMS  int64            `json:"render_ms"`
	CacheHit  bool             `json:"cache_hit"`
}

// errorResponse is the body for all non-2xx responses.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Prepare runs the preparation phase and returns the prepared text with
// its validation verdict.
func (h *Handler) Prepare(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if !decodeBody(w, r, &req) {
		return
	}

	prepared, hit, err := h.runner.Prepare(r.Context(), pipeline.Options{
		Text:         req.Text,
		Family:       req.Family,
		SkipOptimize: req.SkipOptimize,
		Refresh:      req.Refresh,
		Logger:       h.logger,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		pipeline.Prepared
		CacheHit bool `json:"cache_hit"`
	}{prepared, hit})
}

// Validate returns the validation verdict without the prepared text.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if !decodeBody(w, r, &req) {
		return
	}

	prepared, _, err := h.runner.Prepare(r.Context(), pipeline.Options{
		Text:         req.Text,
		Family:       req.Family,
		SkipOptimize: req.SkipOptimize,
		Refresh:      req.Refresh,
		Logger:       h.logger,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prepared.Validation)
}

// Render runs the complete pipeline and returns the render outcome.
// Validation and engine failures still produce a 200: the outcome's
// ok flag and fallback artwork carry the verdict.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.runner.Execute(r.Context(), pipeline.Options{
		Text:         req.Text,
		Family:       req.Family,
		SkipOptimize: req.SkipOptimize,
		Refresh:      req.Refresh,
		FallbackSVG:  req.FallbackSVG,
		Logger:       h.logger,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{
		Outcome:   result.Outcome,
		PrepareMS: result.Stats.PrepareTime.Milliseconds(),
		RenderMS:  result.Stats.RenderTime.Milliseconds(),
		CacheHit:  result.CacheInfo.ArtifactHit,
	})
}

// withLogging logs one line per request.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), "malformed request body: "+err.Error())
		return false
	}
	return true
}

// writeAppError maps structured pipeline errors onto HTTP status codes.
func writeAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeInvalidFamily, apperrors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	}

	writeError(w, status, string(code), apperrors.UserMessage(err))
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
