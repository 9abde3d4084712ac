package sym_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golaplace/sym"
)

const tol = 1e-9

func evalf(t *testing.T, e sym.Expr, env map[string]complex128) complex128 {
	t.Helper()
	v, err := sym.Evalf(e, env)
	require.NoError(t, err, "evaluating %s", e)
	return v
}

// ============================================================
// Num tests
// ============================================================

func TestNum_String(t *testing.T) {
	assert.Equal(t, "42", sym.N(42).String())
	assert.Equal(t, "1/3", sym.F(1, 3).String())
	assert.Equal(t, `\frac{2}{5}`, sym.F(2, 5).LaTeX())
}

func TestNum_Diff_IsZero(t *testing.T) {
	assert.True(t, sym.IsZero(sym.N(5).Diff("x")))
}

func TestFactorial(t *testing.T) {
	assert.Equal(t, "120", sym.Factorial(5).String())
	assert.Equal(t, "1", sym.Factorial(0).String())
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Assumptions(t *testing.T) {
	assert.Equal(t, sym.AssumePositive, sym.S("x").Assumption())
	assert.Equal(t, sym.AssumeReal, sym.RealSym("t").Assumption())
	assert.Equal(t, sym.AssumeComplex, sym.ComplexSym("s").Assumption())
	assert.Equal(t, sym.AssumeNegative, sym.NegativeSym("t0").Assumption())

	// Symbols with the same name but different assumptions are distinct.
	assert.False(t, sym.S("x").Equal(sym.RealSym("x")))
}

func TestSym_Sub(t *testing.T) {
	x := sym.S("x")
	assert.True(t, sym.N(3).Equal(x.Sub("x", sym.N(3))))
	assert.True(t, x.Equal(x.Sub("y", sym.N(3))))
}

// ============================================================
// Add / Mul / Pow tests
// ============================================================

func TestAdd_LikeTerms(t *testing.T) {
	x := sym.S("x")
	assert.Equal(t, "2*x", sym.AddOf(x, x).String())
	assert.True(t, sym.IsZero(sym.SubOf(x, x)))
}

func TestMul_ZeroAndOne(t *testing.T) {
	x := sym.S("x")
	assert.True(t, sym.IsZero(sym.MulOf(sym.N(0), x)))
	assert.True(t, x.Equal(sym.MulOf(sym.N(1), x)))
}

func TestPow_Folding(t *testing.T) {
	x := sym.S("x")
	assert.True(t, sym.IsOne(sym.PowOf(x, sym.N(0))))
	assert.True(t, x.Equal(sym.PowOf(x, sym.N(1))))
	assert.Equal(t, "x^2", sym.PowOf(x, sym.N(2)).String())

	// (w^2)^(1/2) folds for a positive w.
	w := sym.S("w")
	assert.True(t, w.Equal(sym.SqrtOf(sym.PowOf(w, sym.N(2)))))
}

func TestExpand_Distribution(t *testing.T) {
	s := sym.ComplexSym("s")
	e := sym.Expand(sym.MulOf(sym.AddOf(s, sym.N(1)), sym.AddOf(s, sym.N(2))))
	want := sym.AddOf(sym.PowOf(s, sym.N(2)), sym.MulOf(sym.N(3), s), sym.N(2))
	assert.True(t, want.Equal(e), "got %s", e)
}

func TestExpand_PowerOfSum(t *testing.T) {
	x := sym.S("x")
	sq := sym.Expand(sym.PowOf(sym.AddOf(x, sym.N(1)), sym.N(2)))
	want := sym.AddOf(sym.PowOf(x, sym.N(2)), sym.MulOf(sym.N(2), x), sym.N(1))
	assert.True(t, want.Equal(sq), "got %s", sq)

	cube := sym.Expand(sym.PowOf(sym.AddOf(x, sym.N(1)), sym.N(3)))
	want = sym.AddOf(sym.PowOf(x, sym.N(3)), sym.MulOf(sym.N(3), sym.PowOf(x, sym.N(2))), sym.MulOf(sym.N(3), x), sym.N(1))
	assert.True(t, want.Equal(cube), "got %s", cube)
	assert.Equal(t, 3, sym.Degree(cube, "x"))
}

func TestExpand_ProductWithPowerOfSum(t *testing.T) {
	s, a := sym.ComplexSym("s"), sym.S("a")
	e := sym.Expand(sym.MulOf(sym.PowOf(sym.AddOf(s, a), sym.N(2)), sym.AddOf(s, sym.N(1))))
	p, ok := sym.AsPoly(e, "s")
	require.True(t, ok, "got %s", e)
	assert.Equal(t, 3, p.Degree())
	for _, x := range []complex128{0.5, 2} {
		env := map[string]complex128{"s": x, "a": 3}
		assert.InDelta(t, real((x+3)*(x+3)*(x+1)), real(evalf(t, e, env)), tol)
	}
}

func TestDiff_Chain(t *testing.T) {
	x := sym.RealSym("x")
	d := sym.Diff(sym.SinOf(sym.MulOf(sym.N(2), x)), "x")
	v := evalf(t, d, map[string]complex128{"x": 0.3})
	assert.InDelta(t, 2*math.Cos(0.6), real(v), tol)

	d2 := sym.DiffN(sym.PowOf(x, sym.N(3)), "x", 2)
	assert.InDelta(t, 12, real(evalf(t, d2, map[string]complex128{"x": 2})), tol)
}

func TestFreeSymbols(t *testing.T) {
	e := sym.AddOf(sym.MulOf(sym.S("a"), sym.RealSym("t")), sym.Fn("V", sym.ComplexSym("s")))
	free := sym.FreeSymbols(e)
	assert.Len(t, free, 3)
	for _, name := range []string{"a", "t", "s"} {
		assert.Contains(t, free, name)
	}
}

func TestFactorConst(t *testing.T) {
	tt := sym.RealSym("t")
	a := sym.S("a")
	c, rest := sym.FactorConst(sym.MulOf(sym.N(3), a, sym.ExpOf(tt)), "t")
	assert.True(t, sym.MulOf(sym.N(3), a).Equal(c))
	assert.True(t, sym.ExpOf(tt).Equal(rest))
}

func TestScaleShift(t *testing.T) {
	tt := sym.RealSym("t")
	scale, shift, ok := sym.ScaleShift(sym.SubOf(sym.MulOf(sym.N(2), tt), sym.N(3)), "t")
	require.True(t, ok)
	assert.True(t, sym.N(2).Equal(scale))
	assert.True(t, sym.N(-3).Equal(shift))

	_, _, ok = sym.ScaleShift(sym.PowOf(tt, sym.N(2)), "t")
	assert.False(t, ok)
}

// ============================================================
// Special nodes
// ============================================================

func TestStep_FoldsOnKnownSign(t *testing.T) {
	assert.True(t, sym.IsOne(sym.StepOf(sym.S("x"))))
	assert.True(t, sym.IsZero(sym.StepOf(sym.NegativeSym("x"))))
	_, isStep := sym.StepOf(sym.RealSym("t")).(*sym.Step)
	assert.True(t, isStep)
}

func TestDelta_VanishesOffOrigin(t *testing.T) {
	assert.True(t, sym.IsZero(sym.DeltaOf(sym.S("t"))))
	_, isDelta := sym.DeltaOf(sym.RealSym("t")).(*sym.Delta)
	assert.True(t, isDelta)
}

func TestApplied_LaTeX(t *testing.T) {
	v := sym.Fn("V", sym.ComplexSym("s"))
	assert.Equal(t, "V(s)", v.String())
	assert.Equal(t, `V\left(s\right)`, v.LaTeX())
}

func TestPiecewise_DecidedConditionCollapses(t *testing.T) {
	x := sym.S("x")
	e := sym.PiecewiseOf(sym.Piece{Value: x, Cond: sym.Ge(x, sym.N(0))})
	assert.True(t, x.Equal(e))
}

func TestEquation_Residual(t *testing.T) {
	x := sym.S("x")
	eq := sym.Eq(sym.AddOf(x, sym.N(2)), sym.N(5))
	assert.True(t, sym.SubOf(x, sym.N(3)).Equal(sym.Expand(eq.Residual())))
}

// ============================================================
// Evalf
// ============================================================

func TestEvalf(t *testing.T) {
	tt := sym.RealSym("t")
	cases := []struct {
		name string
		e    sym.Expr
		env  map[string]complex128
		want complex128
	}{
		{"step at origin", sym.StepOf(tt), map[string]complex128{"t": 0}, 0.5},
		{"step after", sym.StepOf(tt), map[string]complex128{"t": 1}, 1},
		{"delta off origin", sym.DeltaOf(tt), map[string]complex128{"t": 1}, 0},
		{"exp", sym.ExpOf(sym.Neg(tt)), map[string]complex128{"t": 1}, complex(math.Exp(-1), 0)},
		{"imaginary unit", sym.MulOf(sym.I, sym.Pi), nil, complex(0, math.Pi)},
		{"gamma", sym.GammaOf(sym.F(1, 2)), nil, complex(math.Sqrt(math.Pi), 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evalf(t, tc.e, tc.env)
			assert.InDelta(t, real(tc.want), real(got), tol)
			assert.InDelta(t, imag(tc.want), imag(got), tol)
		})
	}
}

func TestEvalf_Errors(t *testing.T) {
	_, err := sym.Evalf(sym.S("x"), nil)
	assert.Error(t, err)

	_, err = sym.Evalf(sym.Fn("V", sym.ComplexSym("s")), map[string]complex128{"s": 1})
	assert.Error(t, err)
}
