// Package server exposes the transform tools over HTTP.
//
//	POST /tool    execute a tool call
//	GET  /schema  tool schema for agent registration
//	GET  /health  liveness check
//	GET  /metrics Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	laplace "github.com/njchilds90/golaplace"
	"github.com/njchilds90/golaplace/internal/metrics"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// RequestIDHeader carries the per-request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type contextKeyRequestID struct{}

// Handler serves tool calls against one Transformer.
type Handler struct {
	tr       *laplace.Transformer
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics records tool calls in m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.metrics = m
		h.gatherer = g
	}
}

// NewHandler builds a Handler.
func NewHandler(tr *laplace.Transformer, opts ...Option) *Handler {
	h := &Handler{tr: tr, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router wires all endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Post("/tool", h.handleTool)
	r.Get("/schema", h.handleSchema)
	r.Get("/health", h.handleHealth)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// requestID reuses a valid incoming X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		if err != nil {
			id = uuid.New()
		}
		w.Header().Set(RequestIDHeader, id.String())
		ctx := context.WithValue(r.Context(), contextKeyRequestID{}, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return id
	}
	return ""
}

func (h *Handler) handleTool(w http.ResponseWriter, r *http.Request) {
	id := GetRequestID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req laplace.ToolRequest
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, laplace.ToolResponse{Error: err.Error(), RequestID: id})
		return
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, laplace.ToolResponse{Error: "invalid JSON: trailing data", RequestID: id})
		return
	}

	start := time.Now()
	resp := h.tr.HandleToolCall(r.Context(), req)
	elapsed := time.Since(start)
	resp.RequestID = id

	outcome := "ok"
	switch {
	case resp.ErrorKind != "":
		outcome = resp.ErrorKind
	case resp.Error != "":
		outcome = "bad_request"
	}
	h.metrics.ObserveCall(req.Tool, outcome, elapsed)
	for _, d := range resp.Diagnostics {
		h.metrics.IncrementDiagnostic(string(d.Kind))
	}
	h.logger.Info("tool call",
		slog.String("request_id", id),
		slog.String("tool", req.Tool),
		slog.String("outcome", outcome),
		slog.Duration("elapsed", elapsed),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, laplace.ToolSpec())
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
