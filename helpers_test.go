package laplace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golaplace/sym"
)

const tol = 1e-9

var (
	ctxBG = context.Background()

	tt = sym.RealSym("t")
	ss = sym.ComplexSym("s")
)

func n(v int64) sym.Expr { return sym.N(v) }

// evalAt evaluates e numerically and fails the test when it cannot.
func evalAt(t *testing.T, e sym.Expr, env map[string]complex128) complex128 {
	t.Helper()
	v, err := sym.Evalf(e, env)
	require.NoError(t, err, "evaluating %s", e)
	return v
}

func assertNear(t *testing.T, want, got complex128, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, real(want), real(got), tol, msgAndArgs...)
	assert.InDelta(t, imag(want), imag(got), tol, msgAndArgs...)
}

func assertSameExpr(t *testing.T, want, got sym.Expr) {
	t.Helper()
	assert.True(t, want.Equal(got) || want.String() == got.String(), "want %s, got %s", want, got)
}

func lt(t *testing.T, f sym.Expr, opts ...CallOption) Output {
	t.Helper()
	out, err := New().LT(ctxBG, f, tt, ss, opts...)
	require.NoError(t, err, "LT(%s)", f)
	return out
}

func ilt(t *testing.T, F sym.Expr, opts ...CallOption) Output {
	t.Helper()
	out, err := New().ILT(ctxBG, F, ss, tt, opts...)
	require.NoError(t, err, "ILT(%s)", F)
	return out
}

func hasDiagnostic(out Output, kind DiagnosticKind) bool {
	for _, d := range out.Diagnostics {
		if d.Kind == kind {
			return true
		}
	}
	return false
}
