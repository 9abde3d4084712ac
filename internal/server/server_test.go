package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	laplace "github.com/njchilds90/golaplace"
	"github.com/njchilds90/golaplace/internal/metrics"
	"github.com/njchilds90/golaplace/sym"
)

type fixture struct {
	router  http.Handler
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(laplace.New(laplace.WithLogger(logger)), WithLogger(logger), WithMetrics(m, reg))
	return fixture{router: h.Router(), metrics: m}
}

func toolBody(t *testing.T, tool string, e sym.Expr, extra string) *bytes.Reader {
	t.Helper()
	js, err := sym.ToJSON(e)
	require.NoError(t, err)
	return bytes.NewReader([]byte(fmt.Sprintf(`{"tool":%q,"params":{"expr":%s%s}}`, tool, js, extra)))
}

func callTool(t *testing.T, f fixture, body io.Reader) (*httptest.ResponseRecorder, laplace.ToolResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/tool", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	var resp laplace.ToolResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestToolInverseLaplace(t *testing.T) {
	f := newFixture(t)
	s := sym.ComplexSym("s")
	F := sym.DivOf(sym.N(1), sym.AddOf(s, sym.N(2)))

	rec, resp := callTool(t, f, toolBody(t, "inverse_laplace", F, `,"causal":true`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Result)
	assert.Contains(t, resp.String, "exp")
	assert.Contains(t, resp.String, "u(t)")

	_, err := uuid.Parse(resp.RequestID)
	assert.NoError(t, err)
	assert.Equal(t, resp.RequestID, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ToolCalls.WithLabelValues("inverse_laplace", "ok")))
}

func TestToolLaplaceOfImpulse(t *testing.T) {
	f := newFixture(t)
	tt := sym.RealSym("t")

	_, resp := callTool(t, f, toolBody(t, "laplace", sym.DeltaOf(tt), ""))
	assert.Empty(t, resp.Error)
	assert.Equal(t, "1", resp.String)
}

func TestToolReportsErrorKind(t *testing.T) {
	f := newFixture(t)
	s := sym.ComplexSym("s")
	F := sym.DivOf(sym.ExpOf(sym.MulOf(sym.N(2), s)), sym.AddOf(s, sym.N(1)))

	rec, resp := callTool(t, f, toolBody(t, "inverse_laplace", F, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "causality_violation", resp.ErrorKind)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ToolCalls.WithLabelValues("inverse_laplace", "causality_violation")))
}

func TestToolKeepsIncomingRequestID(t *testing.T) {
	f := newFixture(t)
	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodPost, "/tool", toolBody(t, "simplify", sym.AddOf(sym.S("x"), sym.S("x")), ""))
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp laplace.ToolResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, id, resp.RequestID)
	assert.Equal(t, "2*x", resp.String)
}

func TestToolRejectsMalformedRequests(t *testing.T) {
	f := newFixture(t)
	cases := map[string]string{
		"unknown field": `{"tool":"laplace","params":{},"extra":1}`,
		"trailing data": `{"tool":"laplace","params":{}} {}`,
		"not json":      `tool=laplace`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec, resp := callTool(t, f, bytes.NewReader([]byte(body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestToolUnknownTool(t *testing.T) {
	f := newFixture(t)
	rec, resp := callTool(t, f, bytes.NewReader([]byte(`{"tool":"fourier","params":{}}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, resp.Error, "unknown tool")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ToolCalls.WithLabelValues("fourier", "bad_request")))
}

func TestToolMethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tool", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSchemaAndHealth(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var schema struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&schema))
	var names []string
	for _, tool := range schema.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "laplace")
	assert.Contains(t, names, "inverse_laplace")
	assert.Contains(t, names, "poles")

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	tt := sym.RealSym("t")
	callTool(t, f, toolBody(t, "laplace", sym.StepOf(tt), ""))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "laplace_tool_calls_total")
}
