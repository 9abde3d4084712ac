package sym_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golaplace/sym"
)

// ============================================================
// Laplace integral tests
// ============================================================

func TestImproperLaplaceIntegral_ClosedForms(t *testing.T) {
	tt := sym.RealSym("t")
	s := sym.ComplexSym("s")
	a := sym.S("a")
	cases := []struct {
		name string
		f    sym.Expr
		env  map[string]complex128
		want float64
	}{
		{"constant", sym.N(1), map[string]complex128{"s": 2}, 0.5},
		{"ramp", tt, map[string]complex128{"s": 2}, 0.25},
		{"cubic", sym.PowOf(tt, sym.N(3)), map[string]complex128{"s": 2}, 6.0 / 16},
		{"decay", sym.ExpOf(sym.Neg(sym.MulOf(a, tt))), map[string]complex128{"s": 2, "a": 3}, 0.2},
		{"sine", sym.SinOf(sym.MulOf(sym.N(3), tt)), map[string]complex128{"s": 2}, 3.0 / 13},
		{"cosine", sym.CosOf(tt), map[string]complex128{"s": 2}, 0.4},
		{"hyperbolic", sym.SinhOf(tt), map[string]complex128{"s": 2}, 1.0 / 3},
		{"half power", sym.SqrtOf(tt), map[string]complex128{"s": 4}, math.Sqrt(math.Pi) / 2 / 8},
		{"delayed step", sym.StepOf(sym.SubOf(tt, sym.N(1))), map[string]complex128{"s": 2}, math.Exp(-2) / 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			F := sym.ImproperLaplaceIntegral(tc.f, "t", s, sym.N(0))
			_, unevaluated := F.(*sym.Integral)
			require.False(t, unevaluated, "no closed form for %s", tc.f)
			got := evalf(t, F, tc.env)
			assert.InDelta(t, tc.want, real(got), tol)
			assert.InDelta(t, 0, imag(got), tol)
		})
	}
}

func TestImproperLaplaceIntegral_ConvergenceCondition(t *testing.T) {
	tt := sym.RealSym("t")
	s := sym.ComplexSym("s")
	F := sym.ImproperLaplaceIntegral(sym.ExpOf(sym.MulOf(sym.N(2), tt)), "t", s, sym.N(0))
	pw, ok := F.(*sym.Piecewise)
	require.True(t, ok, "got %s", F)
	pieces := pw.Pieces()
	require.Len(t, pieces, 2)
	assert.Equal(t, ">", pieces[0].Cond.Op)
	assert.InDelta(t, 1, real(evalf(t, F, map[string]complex128{"s": 3})), tol)
}

func TestImproperLaplaceIntegral_Impulse(t *testing.T) {
	tt := sym.RealSym("t")
	s := sym.ComplexSym("s")
	t0 := sym.NegativeSym("t0")

	// Strictly inside the range the impulse has full weight.
	inside := sym.ImproperLaplaceIntegral(sym.DeltaOf(tt), "t", s, t0)
	assert.True(t, sym.IsOne(inside), "got %s", inside)

	// On the lower boundary it has half weight.
	edge := sym.ImproperLaplaceIntegral(sym.DeltaOf(tt), "t", s, sym.N(0))
	assert.True(t, sym.F(1, 2).Equal(edge), "got %s", edge)

	// A delayed impulse picks up the delay factor.
	T := sym.S("T")
	delayed := sym.ImproperLaplaceIntegral(sym.DeltaOf(sym.SubOf(tt, T)), "t", s, t0)
	got := evalf(t, delayed, map[string]complex128{"s": 2, "T": 0.5})
	assert.InDelta(t, math.Exp(-1), real(got), tol)

	// delta'(t) transforms to s.
	doublet := sym.ImproperLaplaceIntegral(sym.DeltaN(tt, sym.N(1)), "t", s, t0)
	assert.True(t, s.Equal(doublet), "got %s", doublet)
}

func TestImproperLaplaceIntegral_Unsupported(t *testing.T) {
	tt := sym.RealSym("t")
	s := sym.ComplexSym("s")
	F := sym.ImproperLaplaceIntegral(sym.LnOf(tt), "t", s, sym.N(0))
	_, ok := F.(*sym.Integral)
	assert.True(t, ok, "got %s", F)
}

func TestInverseLaplaceTable(t *testing.T) {
	s := sym.ComplexSym("s")
	tt := sym.RealSym("t")

	// 1/sqrt(s+1) -> t^(-1/2) exp(-t) / gamma(1/2)
	F := sym.PowOf(sym.AddOf(s, sym.N(1)), sym.F(-1, 2))
	f, ok := sym.InverseLaplaceTable(F, "s", tt)
	require.True(t, ok)
	got := evalf(t, f, map[string]complex128{"t": 1})
	assert.InDelta(t, math.Exp(-1)/math.Sqrt(math.Pi), real(got), tol)

	_, ok = sym.InverseLaplaceTable(sym.SinOf(s), "s", tt)
	assert.False(t, ok)
}

// ============================================================
// Limit tests
// ============================================================

func TestLimit_DirectSubstitution(t *testing.T) {
	x := sym.RealSym("x")
	r := sym.Limit(sym.AddOf(sym.PowOf(x, sym.N(2)), sym.N(1)), "x", sym.N(2))
	require.True(t, r.Success, r.Error)
	assert.True(t, sym.N(5).Equal(r.Value))
}

func TestTaylorSeries(t *testing.T) {
	x := sym.RealSym("x")
	series := sym.TaylorSeries(sym.ExpOf(x), "x", sym.N(0), 3)
	got := evalf(t, series, map[string]complex128{"x": 0.1})
	assert.InDelta(t, 1+0.1+0.01/2+0.001/6, real(got), tol)
}

func TestLimit_SymbolicValue(t *testing.T) {
	tt := sym.RealSym("t")
	a := sym.S("a")
	r := sym.Limit(sym.MulOf(a, sym.ExpOf(tt)), "t", sym.N(0))
	require.True(t, r.Success, r.Error)
	assert.True(t, a.Equal(r.Value))
}

func TestLim_Node(t *testing.T) {
	t0 := sym.NegativeSym("t0")
	l := sym.LimOf(sym.ExpOf(t0), "t0", sym.N(0), "+")
	node, ok := l.(*sym.Lim)
	require.True(t, ok)
	assert.Equal(t, "t0", node.VarName())
	assert.Equal(t, "+", node.Dir())
	assert.True(t, sym.IsZero(node.Point()))
}
