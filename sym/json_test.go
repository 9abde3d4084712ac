package sym_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golaplace/sym"
)

// ============================================================
// JSON tests
// ============================================================

func TestToJSON_Num(t *testing.T) {
	out, err := sym.ToJSON(sym.F(3, 4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"num","value":"3/4"}`, out)
}

func TestToJSON_SymAssumption(t *testing.T) {
	out, err := sym.ToJSON(sym.S("x"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"sym","name":"x"}`, out)

	out, err = sym.ToJSON(sym.ComplexSym("s"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"sym","name":"s","assume":"complex"}`, out)
}

func TestJSON_RoundTrip(t *testing.T) {
	tt := sym.RealSym("t")
	s := sym.ComplexSym("s")
	t0 := sym.NegativeSym("t0")
	cases := []struct {
		name string
		e    sym.Expr
	}{
		{"rational", sym.DivOf(sym.N(1), sym.AddOf(s, sym.N(2)))},
		{"step and exp", sym.MulOf(sym.ExpOf(sym.Neg(tt)), sym.StepOf(sym.SubOf(tt, sym.N(1))))},
		{"impulse derivative", sym.DeltaN(tt, sym.N(2))},
		{"unknown function", sym.Fn("V", s)},
		{"derivative", sym.DerivativeOf(sym.Fn("v", tt), "t", 2)},
		{"integral", sym.IntegralOf(sym.Fn("v", sym.RealSym("tau")), "tau", sym.N(0), tt)},
		{"limit", sym.LimOf(sym.ExpOf(sym.MulOf(s, t0)), "t0", sym.N(0), "+")},
		{"piecewise", sym.PiecewiseOf(
			sym.Piece{Value: sym.ExpOf(sym.Neg(tt)), Cond: sym.Ge(tt, sym.N(0))},
			sym.Piece{Value: sym.N(0), Cond: sym.True},
		)},
		{"constants", sym.MulOf(sym.I, sym.Pi)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := sym.ToJSON(tc.e)
			require.NoError(t, err)
			back, err := sym.ParseJSON([]byte(out))
			require.NoError(t, err)
			assert.True(t, tc.e.Equal(back), "want %s, got %s", tc.e, back)
		})
	}
}

func TestFromJSONAssuming(t *testing.T) {
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"step","arg":{"type":"sym","name":"t"}}`), &m))

	// Without an assumption t is positive and the step folds to one.
	plain, err := sym.FromJSON(m)
	require.NoError(t, err)
	assert.True(t, sym.IsOne(plain))

	gated, err := sym.FromJSONAssuming(m, map[string]sym.Assumption{"t": sym.AssumeReal})
	require.NoError(t, err)
	assert.True(t, sym.StepOf(sym.RealSym("t")).Equal(gated))
}

func TestFromJSON_InProcessMap(t *testing.T) {
	s := sym.ComplexSym("s")
	e := sym.DivOf(sym.N(1), sym.MulOf(sym.AddOf(s, sym.N(1)), sym.AddOf(s, sym.N(2))))
	back, err := sym.FromJSON(sym.ToJSONMap(e))
	require.NoError(t, err)
	assert.True(t, e.Equal(back), "got %s", back)
}

func TestFromJSON_Errors(t *testing.T) {
	cases := map[string]string{
		"missing type":   `{"name":"x"}`,
		"empty type":     `{"type":""}`,
		"bad num":        `{"type":"num","value":"abc"}`,
		"missing arg":    `{"type":"func","name":"sin"}`,
		"negative order": `{"type":"derivative","expr":{"type":"sym","name":"x"},"var":"x","order":-1}`,
		"unknown type":   `{"type":"matrix"}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := sym.ParseJSON([]byte(doc))
			assert.Error(t, err)
		})
	}
	_, err := sym.ParseJSON([]byte(`not json`))
	assert.Error(t, err)
}
