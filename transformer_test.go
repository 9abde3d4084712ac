package laplace

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golaplace/sym"
)

func TestTransformer_Defaults(t *testing.T) {
	tr := New()
	assert.Equal(t, defaultMaxDepth, tr.maxDepth)
	assert.Equal(t, defaultTimeout, tr.timeout)
	assert.True(t, tr.cacheOn)
	assert.NotNil(t, tr.logger)
}

func TestTransformer_OptionsIgnoreInvalidValues(t *testing.T) {
	tr := New(WithMaxDepth(-3), WithTimeout(-time.Second), WithLogger(nil))
	assert.Equal(t, defaultMaxDepth, tr.maxDepth)
	assert.Equal(t, defaultTimeout, tr.timeout)
	assert.NotNil(t, tr.logger)
}

func TestTransformer_CacheReturnsSameResult(t *testing.T) {
	F := sym.DivOf(n(1), sym.AddOf(ss, n(2)))

	tr := New()
	first, err := tr.ILT(ctxBG, F, ss, tt, Causal())
	require.NoError(t, err)
	second, err := tr.ILT(ctxBG, F, ss, tt, Causal())
	require.NoError(t, err)
	assert.Same(t, first.Expr, second.Expr)

	// Different assumptions are cached separately.
	general, err := tr.ILT(ctxBG, F, ss, tt)
	require.NoError(t, err)
	assert.NotSame(t, first.Expr, general.Expr)

	tr.ClearCache()
	third, err := tr.ILT(ctxBG, F, ss, tt, Causal())
	require.NoError(t, err)
	assert.NotSame(t, first.Expr, third.Expr)
	assertSameExpr(t, first.Expr, third.Expr)
}

func TestTransformer_CacheKeySeesAssumptions(t *testing.T) {
	tr := New()
	delayed := func(a *sym.Sym) sym.Expr { return sym.DivOf(sym.ExpOf(sym.Neg(sym.MulOf(a, ss))), ss) }

	known, err := tr.ILT(ctxBG, delayed(sym.S("a")), ss, tt, Causal())
	require.NoError(t, err)
	assert.False(t, hasDiagnostic(known, DiagAmbiguousSign))

	unknown, err := tr.ILT(ctxBG, delayed(sym.RealSym("a")), ss, tt, Causal())
	require.NoError(t, err)
	assert.True(t, hasDiagnostic(unknown, DiagAmbiguousSign))
}

func TestTransformer_CacheDisabled(t *testing.T) {
	F := sym.DivOf(n(1), sym.AddOf(ss, n(2)))
	tr := New(WithCache(false))
	first, err := tr.ILT(ctxBG, F, ss, tt, Causal())
	require.NoError(t, err)
	second, err := tr.ILT(ctxBG, F, ss, tt, Causal())
	require.NoError(t, err)
	assert.NotSame(t, first.Expr, second.Expr)
	assert.Empty(t, tr.cache)
}

func TestTransformer_ConcurrentCalls(t *testing.T) {
	tr := New()
	F := sym.DivOf(ss, sym.AddOf(sym.PowOf(ss, n(2)), n(9)))
	var wg sync.WaitGroup
	results := make([]Output, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = tr.ILT(ctxBG, F, ss, tt, Causal())
		}(i)
	}
	wg.Wait()
	for i, out := range results {
		require.NoError(t, errs[i])
		assertNear(t, complex(math.Cos(3), 0), evalAt(t, out.Expr, map[string]complex128{"t": 1}))
	}
}

func TestTransformer_DepthCap(t *testing.T) {
	tr := New(WithMaxDepth(1))
	_, err := tr.ILT(ctxBG, sym.DivOf(n(1), sym.AddOf(ss, n(2))), ss, tt)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	k, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindTimeout, k)
}

func TestTransformer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(WithCache(false)).LT(ctx, sym.StepOf(tt), tt, ss)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, errors.Is(err, context.Canceled))
}

// cancelOnWarn cancels a context the first time a warning is logged.
type cancelOnWarn struct {
	slog.Handler
	cancel context.CancelFunc
}

func (h cancelOnWarn) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		h.cancel()
	}
	return nil
}

func TestTransformer_SharedCallOutlivesCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := cancelOnWarn{Handler: slog.NewTextHandler(io.Discard, nil), cancel: cancel}
	tr := New(WithLogger(slog.New(handler)))

	// The assumed_causal warning fires mid-computation and ends the caller's context.
	F := sym.DivOf(sym.ExpOf(sym.Neg(ss)), ss)
	_, err := tr.ILT(ctx, F, ss, tt)
	if err != nil {
		assert.ErrorIs(t, err, ErrTimeout)
	}

	assert.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return len(tr.cache) == 1
	}, time.Second, 5*time.Millisecond)

	out, err := tr.ILT(ctxBG, F, ss, tt)
	require.NoError(t, err)
	assert.True(t, hasDiagnostic(out, DiagAssumedCausal))
}

func TestTransformer_RejectsEqualVariables(t *testing.T) {
	_, err := New().LT(ctxBG, sym.StepOf(tt), tt, sym.ComplexSym("t"))
	assert.ErrorIs(t, err, ErrUnsupportedShape)

	_, err = New().LT(ctxBG, nil, tt, ss)
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestTransformer_CustomVariableNames(t *testing.T) {
	x := sym.RealSym("x")
	p := sym.ComplexSym("p")
	out, err := New().LT(ctxBG, sym.ExpOf(sym.Neg(x)), x, p)
	require.NoError(t, err)
	assertNear(t, 1.0/3, evalAt(t, out.Expr, map[string]complex128{"p": 2}))

	back, err := New().ILT(ctxBG, out.Expr, p, x, Causal())
	require.NoError(t, err)
	assertNear(t, complex(math.Exp(-1), 0), evalAt(t, back.Expr, map[string]complex128{"x": 1}))
}

func TestTransformer_TransformEquation(t *testing.T) {
	// y'(t) + 2 y(t) = delta(t)
	y := sym.Fn("y", tt)
	eq := sym.Eq(sym.AddOf(sym.DerivativeOf(y, "t", 1), sym.MulOf(n(2), y)), sym.DeltaOf(tt))

	out, diags, err := New().TransformEquation(ctxBG, eq, Forward, tt, ss)
	require.NoError(t, err)
	assert.Empty(t, diags)
	Y := sym.Fn("Y", ss)
	assertSameExpr(t, sym.AddOf(sym.MulOf(ss, Y), sym.MulOf(n(2), Y)), out.LHS)
	assertSameExpr(t, n(1), out.RHS)
}

func TestTransformer_TransformEquationPropagatesErrors(t *testing.T) {
	eq := sym.Eq(sym.Fn("Y", ss), sym.ExpOf(ss))
	_, _, err := New().TransformEquation(ctxBG, eq, Inverse, tt, ss)
	assert.ErrorIs(t, err, ErrCausalityViolation)
}

func TestTransformer_LogsDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	tr := New(WithLogger(logger))

	F := sym.DivOf(sym.ExpOf(sym.Neg(ss)), ss)
	out, err := tr.ILT(ctxBG, F, ss, tt)
	require.NoError(t, err)
	require.NotEmpty(t, out.Diagnostics)
	assert.Contains(t, buf.String(), "transform diagnostic")
	assert.Contains(t, buf.String(), string(DiagAssumedCausal))
}

func TestTransformer_DiagnosticsAreDeduplicated(t *testing.T) {
	T := sym.RealSym("T")
	delay := sym.ExpOf(sym.Neg(sym.MulOf(T, ss)))
	F := sym.AddOf(sym.DivOf(delay, ss), sym.DivOf(delay, sym.PowOf(ss, n(2))))
	out := ilt(t, F, Causal())
	count := 0
	for _, d := range out.Diagnostics {
		if d.Kind == DiagAmbiguousSign {
			count++
		}
	}
	assert.Equal(t, 1, count, "diagnostics: %v", out.Diagnostics)
}

func TestPoles(t *testing.T) {
	F := sym.DivOf(n(1), sym.MulOf(sym.PowOf(sym.AddOf(ss, n(1)), n(2)), sym.AddOf(ss, n(3))))
	poles, err := Poles(F, ss, sym.DampingUnknown)
	require.NoError(t, err)
	mult := map[string]int{}
	for _, p := range poles {
		mult[p.Value.String()] = p.Multiplicity
	}
	assert.Equal(t, map[string]int{"-1": 2, "-3": 1}, mult)
}

func TestPoles_ComplexPair(t *testing.T) {
	F := sym.DivOf(n(1), sym.AddOf(sym.PowOf(ss, n(2)), sym.MulOf(n(2), ss), n(5)))
	poles, err := Poles(F, ss, sym.DampingUnknown)
	require.NoError(t, err)
	require.Len(t, poles, 2)
	for _, p := range poles {
		require.NotNil(t, p.Conjugate)
		assertSameExpr(t, n(-1), p.Re)
		v := evalAt(t, p.Value, nil)
		assert.InDelta(t, 2, math.Abs(imag(v)), tol)
	}
}
