package laplace

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golaplace/sym"
)

// toolRequest round-trips the params through JSON so the handler sees
// the same shapes it gets from the wire.
func toolRequest(t *testing.T, tool string, params map[string]interface{}) ToolRequest {
	t.Helper()
	b, err := json.Marshal(ToolRequest{Tool: tool, Params: params})
	require.NoError(t, err)
	var req ToolRequest
	require.NoError(t, json.Unmarshal(b, &req))
	return req
}

func TestHandleToolCall_Laplace(t *testing.T) {
	// t carries no assumption on the wire; the handler makes it real.
	delta := map[string]interface{}{
		"type": "delta",
		"arg":  map[string]interface{}{"type": "sym", "name": "t"},
	}
	params := map[string]interface{}{"expr": delta}
	resp := New().HandleToolCall(ctxBG, toolRequest(t, "laplace", params))
	assert.Empty(t, resp.Error)
	assert.Equal(t, "1", resp.String)
	assert.NotEmpty(t, resp.LaTeX)
}

func TestHandleToolCall_InverseLaplace(t *testing.T) {
	F := sym.DivOf(n(1), sym.AddOf(ss, n(2)))
	params := map[string]interface{}{"expr": sym.ToJSONMap(F), "causal": true}
	resp := New().HandleToolCall(ctxBG, toolRequest(t, "inverse_laplace", params))
	require.Empty(t, resp.Error)

	m, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	e, err := sym.FromJSONAssuming(m, map[string]sym.Assumption{"t": sym.AssumeReal})
	require.NoError(t, err)
	v := evalAt(t, e, map[string]complex128{"t": 0.5})
	assert.InDelta(t, 0.36787944117144233, real(v), tol)
}

func TestHandleToolCall_RepeatedPole(t *testing.T) {
	F := sym.DivOf(n(1), sym.PowOf(sym.AddOf(ss, n(1)), n(2)))
	params := map[string]interface{}{"expr": sym.ToJSONMap(F), "causal": true}
	resp := New().HandleToolCall(ctxBG, toolRequest(t, "inverse_laplace", params))
	require.Empty(t, resp.Error)

	m, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	e, err := sym.FromJSONAssuming(m, map[string]sym.Assumption{"t": sym.AssumeReal})
	require.NoError(t, err)
	v := evalAt(t, e, map[string]complex128{"t": 1.5})
	assert.InDelta(t, 1.5*math.Exp(-1.5), real(v), tol)
}

func TestHandleToolCall_CustomVariables(t *testing.T) {
	x, p := sym.RealSym("x"), sym.ComplexSym("p")
	params := map[string]interface{}{
		"expr": sym.ToJSONMap(sym.ExpOf(sym.Neg(x))),
		"t":    "x",
		"s":    "p",
	}
	resp := New().HandleToolCall(ctxBG, toolRequest(t, "laplace", params))
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.String, p.Name())
}

func TestHandleToolCall_Diagnostics(t *testing.T) {
	F := sym.DivOf(sym.ExpOf(sym.Neg(ss)), ss)
	params := map[string]interface{}{"expr": sym.ToJSONMap(F)}
	resp := New().HandleToolCall(ctxBG, toolRequest(t, "inverse_laplace", params))
	require.Empty(t, resp.Error)
	require.NotEmpty(t, resp.Diagnostics)
	assert.Equal(t, DiagAssumedCausal, resp.Diagnostics[0].Kind)
}

func TestHandleToolCall_ErrorKind(t *testing.T) {
	F := sym.ExpOf(ss)
	params := map[string]interface{}{"expr": sym.ToJSONMap(F)}
	resp := New().HandleToolCall(ctxBG, toolRequest(t, "inverse_laplace", params))
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, KindCausalityViolation.String(), resp.ErrorKind)
}

func TestHandleToolCall_Poles(t *testing.T) {
	F := sym.DivOf(n(1), sym.MulOf(sym.AddOf(ss, n(1)), sym.AddOf(ss, n(2))))
	params := map[string]interface{}{"expr": sym.ToJSONMap(F)}
	resp := New().HandleToolCall(ctxBG, toolRequest(t, "poles", params))
	require.Empty(t, resp.Error)
	infos, ok := resp.Result.([]PoleInfo)
	require.True(t, ok)
	values := []string{}
	for _, p := range infos {
		values = append(values, p.Value)
		assert.Equal(t, 1, p.Multiplicity)
	}
	assert.ElementsMatch(t, []string{"-1", "-2"}, values)
}

func TestHandleToolCall_Simplify(t *testing.T) {
	x := sym.S("x")
	params := map[string]interface{}{"expr": sym.ToJSONMap(sym.AddOf(x, x))}
	resp := New().HandleToolCall(ctxBG, toolRequest(t, "simplify", params))
	require.Empty(t, resp.Error)
	assert.Equal(t, "2*x", resp.String)
}

func TestHandleToolCall_BadParams(t *testing.T) {
	expr := sym.ToJSONMap(ss)
	cases := []struct {
		name   string
		tool   string
		params map[string]interface{}
		want   string
	}{
		{"missing expr", "laplace", map[string]interface{}{}, "missing param: expr"},
		{"expr not object", "laplace", map[string]interface{}{"expr": "s"}, "invalid type for param expr"},
		{"flag not bool", "inverse_laplace", map[string]interface{}{"expr": expr, "causal": "yes"}, "param causal must be a boolean"},
		{"bad damping", "inverse_laplace", map[string]interface{}{"expr": expr, "damping": "very"}, "unknown damping"},
		{"same variables", "laplace", map[string]interface{}{"expr": expr, "t": "s"}, "must differ"},
		{"unknown tool", "fourier", map[string]interface{}{}, "unknown tool: fourier"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := New().HandleToolCall(ctxBG, toolRequest(t, tc.tool, tc.params))
			assert.Contains(t, resp.Error, tc.want)
		})
	}
}

func TestToolSpec(t *testing.T) {
	spec := ToolSpec()
	b, err := json.Marshal(spec)
	require.NoError(t, err)

	var decoded struct {
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Properties map[string]interface{} `json:"properties"`
				Required   []string               `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	byName := map[string][]string{}
	for _, tool := range decoded.Tools {
		var props []string
		for k := range tool.InputSchema.Properties {
			props = append(props, k)
		}
		byName[tool.Name] = props
	}
	assert.Contains(t, byName, "laplace")
	assert.Contains(t, byName["laplace"], "unevaluated")
	assert.NotContains(t, byName["inverse_laplace"], "unevaluated")
	assert.Contains(t, byName["inverse_laplace"], "damped_sin")
	assert.Contains(t, byName, "poles")

	resp := New().HandleToolCall(ctxBG, ToolRequest{Tool: "tool_spec"})
	assert.NotNil(t, resp.Result)
}
