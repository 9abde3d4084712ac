package laplace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/njchilds90/golaplace/sym"
)

// ============================================================
// Forward transform
// ============================================================

func TestLT_Table(t *testing.T) {
	a := sym.S("a")
	at := map[string]complex128{"s": 2, "a": 1}
	cases := []struct {
		name string
		f    sym.Expr
		want complex128
	}{
		{"step", sym.StepOf(tt), 0.5},
		{"ramp", tt, 0.25},
		{"ramp gated", sym.MulOf(tt, sym.StepOf(tt)), 0.25},
		{"decay", sym.ExpOf(sym.Neg(sym.MulOf(a, tt))), 1.0 / 3},
		{"sin", sym.SinOf(sym.MulOf(n(3), tt)), 3.0 / 13},
		{"cos", sym.CosOf(sym.MulOf(n(2), tt)), 0.25},
		{"t exp", sym.MulOf(tt, sym.ExpOf(sym.Neg(tt))), 1.0 / 9},
		{"delayed impulse", sym.DeltaOf(sym.SubOf(tt, n(2))), complex(math.Exp(-4), 0)},
		{"delayed step", sym.StepOf(sym.SubOf(tt, n(2))), complex(math.Exp(-4)/2, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := lt(t, tc.f)
			assertNear(t, tc.want, evalAt(t, out.Expr, at), "L{%s} = %s", tc.f, out.Expr)
		})
	}
}

func TestLT_ImpulseAtOriginIsOne(t *testing.T) {
	out := lt(t, sym.DeltaOf(tt))
	assertSameExpr(t, n(1), out.Expr)
}

func TestLT_Linearity(t *testing.T) {
	f := sym.AddOf(sym.MulOf(n(3), sym.StepOf(tt)), sym.MulOf(n(2), sym.ExpOf(sym.Neg(tt))))
	out := lt(t, f)
	assertNear(t, complex(1.5+2.0/3, 0), evalAt(t, out.Expr, map[string]complex128{"s": 2}))
}

func TestLT_SymbolicScaleIsPulledOut(t *testing.T) {
	k := sym.S("k")
	out := lt(t, sym.MulOf(k, sym.StepOf(tt)))
	assertNear(t, 1.5, evalAt(t, out.Expr, map[string]complex128{"s": 2, "k": 3}))
}

func TestLT_FrequencyShift(t *testing.T) {
	f := sym.MulOf(sym.ExpOf(sym.MulOf(n(-2), tt)), sym.SinOf(sym.MulOf(n(3), tt)))
	out := lt(t, f)
	assertNear(t, 3.0/25, evalAt(t, out.Expr, map[string]complex128{"s": 2}))
}

func TestLT_ShiftTheorem(t *testing.T) {
	// sin(t - 1) u(t - 1) -> exp(-s) / (s^2 + 1)
	shifted := sym.SubOf(tt, n(1))
	f := sym.MulOf(sym.SinOf(shifted), sym.StepOf(shifted))
	out := lt(t, f)
	assertNear(t, complex(math.Exp(-2)/5, 0), evalAt(t, out.Expr, map[string]complex128{"s": 2}))
}

func TestLT_UnknownFunction(t *testing.T) {
	out := lt(t, sym.Fn("v", tt))
	assertSameExpr(t, sym.Fn("V", ss), out.Expr)
}

func TestLT_UnknownFunctionScaledAndShifted(t *testing.T) {
	// v(2t - 4) -> V(s/2) exp(-2s) / 2
	out := lt(t, sym.Fn("v", sym.SubOf(sym.MulOf(n(2), tt), n(4))))
	assert.True(t, sym.HasType(out.Expr, "applied"))
	assert.Contains(t, out.Expr.String(), "V(")
	assert.Contains(t, out.Expr.String(), "exp(")
}

func TestLT_DerivativeOmitsInitialValue(t *testing.T) {
	v := sym.Fn("v", tt)
	V := sym.Fn("V", ss)

	out := lt(t, sym.DerivativeOf(v, "t", 1))
	assertSameExpr(t, sym.MulOf(ss, V), out.Expr)

	out = lt(t, sym.DerivativeOf(v, "t", 2))
	assertSameExpr(t, sym.MulOf(sym.PowOf(ss, n(2)), V), out.Expr)
}

func TestLT_RunningIntegral(t *testing.T) {
	tau := sym.RealSym("tau")
	f := sym.IntegralOf(sym.Fn("v", tau), "tau", n(0), tt)
	out := lt(t, f)
	assertSameExpr(t, sym.DivOf(sym.Fn("V", ss), ss), out.Expr)
}

func TestLT_Convolution(t *testing.T) {
	tau := sym.RealSym("tau")
	f := sym.IntegralOf(sym.MulOf(sym.Fn("x", tau), sym.Fn("h", sym.SubOf(tt, tau))), "tau", n(0), tt)
	out := lt(t, f)
	assertSameExpr(t, sym.MulOf(sym.Fn("X", ss), sym.Fn("H", ss)), out.Expr)
}

func TestLT_ExponentialTimesUnknownShiftsFrequency(t *testing.T) {
	out := lt(t, sym.MulOf(sym.ExpOf(sym.MulOf(n(-3), tt)), sym.Fn("v", tt)))
	assertSameExpr(t, sym.Fn("V", sym.AddOf(ss, n(3))), out.Expr)
}

func TestLT_CausalConditionalIsUnwrapped(t *testing.T) {
	f := sym.PiecewiseOf(sym.Piece{Value: sym.ExpOf(sym.Neg(tt)), Cond: sym.Ge(tt, n(0))})
	out := lt(t, f)
	assertNear(t, 1.0/3, evalAt(t, out.Expr, map[string]complex128{"s": 2}))
}

func TestLT_UnknownDelaySign(t *testing.T) {
	T := sym.RealSym("T")
	f := sym.MulOf(sym.CosOf(tt), sym.StepOf(sym.SubOf(tt, T)))
	out := lt(t, f)
	assert.True(t, hasDiagnostic(out, DiagAmbiguousSign), "diagnostics: %v", out.Diagnostics)
}

func TestLT_Unevaluated(t *testing.T) {
	out := lt(t, sym.StepOf(tt), Unevaluated())
	lim, ok := out.Expr.(*sym.Lim)
	if assert.True(t, ok, "want a limit, got %s", out.Expr) {
		assert.Equal(t, "-", lim.Dir())
		assert.True(t, sym.IsZero(lim.Point()))
		assert.True(t, sym.HasType(lim.Expr(), "integral"))
	}
}

func TestLT_RejectsFrequencyVariable(t *testing.T) {
	_, err := New().LT(ctxBG, sym.MulOf(ss, sym.StepOf(tt)), tt, ss)
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}
