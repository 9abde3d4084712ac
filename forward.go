package laplace

import (
	"errors"

	"github.com/njchilds90/golaplace/sym"
)

// forward computes the unilateral transform of e with lower limit 0-.
func (c Context) forward(e sym.Expr) (sym.Expr, error) {
	if sym.Has(e, c.FreqVar.Name()) {
		return nil, c.fail(KindUnsupportedShape, e, "expression depends on %s", c.FreqVar)
	}
	return c.forwardExpr(e)
}

func (c Context) forwardExpr(e sym.Expr) (sym.Expr, error) {
	r, err := c.linear(e, expandedTerms, func(c Context, term sym.Expr) (Result, error) {
		F, err := firstMatch(c, removeUnitStep(term, c.TimeVar), forwardRules())
		if err != nil {
			return Result{}, err
		}
		return general(F), nil
	})
	if err != nil {
		return nil, err
	}
	return r.General, nil
}

func forwardRules() []rule[sym.Expr] {
	return []rule[sym.Expr]{
		{name: "integral", match: hasKind("integral"), apply: Context.forwardIntegral},
		{name: "sin_cos", match: hasSinCos, apply: Context.forwardSinCos},
		{name: "derivative", match: hasKind("derivative"), apply: Context.forwardDerivative},
		{name: "function", match: hasKind("applied"), apply: Context.forwardApplied},
		{name: "unit_step", match: hasUnitStep, apply: Context.forwardUnitStep},
		{name: "impulse", match: hasImpulse, apply: Context.forwardZeroMinus},
		{name: "integrate", apply: Context.forwardZero},
	}
}

// removeUnitStep drops bare u(t) factors, which the unilateral transform
// cannot see.
func removeUnitStep(e sym.Expr, t *sym.Sym) sym.Expr {
	fs := sym.Factors(e)
	keep := make([]sym.Expr, 0, len(fs))
	for _, f := range fs {
		if u, ok := f.(*sym.Step); ok && u.Arg().Equal(t) {
			continue
		}
		keep = append(keep, f)
	}
	if len(keep) == len(fs) {
		return e
	}
	return sym.MulOf(keep...)
}

func hasSinCos(_ Context, e sym.Expr) bool { return sym.HasType(e, "sin") || sym.HasType(e, "cos") }

func hasUnitStep(c Context, e sym.Expr) bool {
	return sym.Contains(e, func(x sym.Expr) bool {
		u, ok := x.(*sym.Step)
		return ok && u.Arg().Equal(c.TimeVar)
	})
}

func hasImpulse(_ Context, e sym.Expr) bool { return sym.HasType(e, "delta") || sym.HasType(e, "step") }

// forwardIntegral handles integrals of the time variable: a running
// integral of a shifted function, a running integral of an unknown
// function, and a convolution of two functions.
func (c Context) forwardIntegral(e sym.Expr) (sym.Expr, error) {
	t, s := c.TimeVar, c.FreqVar
	in, ok := e.(*sym.Integral)
	if !ok {
		return nil, c.fail(KindUnsupportedShape, e, "expecting an integral")
	}
	tn := in.VarName()
	tau, ok := sym.FindSymbol(in.Integrand(), tn)
	if !ok {
		tau = sym.RealSym(tn)
	}
	lo, hi := in.Lower(), in.Upper()
	k, f := sym.FactorConst(in.Integrand(), tn)
	shifted := sym.SubOf(t, tau)

	// integral of f(t - tau) for tau from 0 to oo
	if arg, ok := singleArg(f); ok && sameExpr(arg, shifted) && sym.IsZero(lo) && isInf(hi) {
		F, err := c.forwardExpr(f.Sub(tn, sym.N(0)))
		if err != nil {
			return nil, err
		}
		return sym.DivOf(sym.MulOf(k, F), s), nil
	}

	// integral of v(tau) for tau up to t
	if a, ok := f.(*sym.Applied); ok && hi.Equal(t) && sym.SignOf(lo) != sym.SignPositive && a.Arg().Equal(tau) {
		F, err := c.forwardFunc(sym.Fn(a.Name(), t).(*sym.Applied))
		if err != nil {
			return nil, err
		}
		return sym.DivOf(sym.MulOf(k, F), s), nil
	}

	if sym.SignOf(lo) == sym.SignPositive {
		return nil, c.fail(KindUnsupportedShape, e, "cannot handle lower limit %s", lo)
	}
	if sym.SignOf(sym.SubOf(hi, t)) == sym.SignNegative {
		return nil, c.fail(KindUnsupportedShape, e, "cannot handle upper limit %s", hi)
	}
	fs := sym.Factors(f)
	if len(fs) != 2 {
		return nil, c.fail(KindUnsupportedShape, e, "need integral of product of two functions")
	}
	a1, ok1 := singleArg(fs[0])
	a2, ok2 := singleArg(fs[1])
	if !ok1 || !ok2 {
		return nil, c.fail(KindUnsupportedShape, e, "need integral of product of two functions")
	}
	var x, y sym.Expr
	switch {
	case sameExpr(a1, tau) && sameExpr(a2, shifted):
		x, y = fs[0], fs[1]
	case sameExpr(a2, tau) && sameExpr(a1, shifted):
		x, y = fs[1], fs[0]
	default:
		return nil, c.fail(KindUnsupportedShape, e, "cannot recognise convolution")
	}
	F1, err := c.forwardExpr(x.Sub(tn, t))
	if err != nil {
		return nil, err
	}
	F2, err := c.forwardExpr(y.Sub(tn, sym.N(0)))
	if err != nil {
		return nil, err
	}
	return sym.MulOf(k, F1, F2), nil
}

// forwardSinCos transforms exp(alpha*t + beta) * sin(omega*t + phi) * u(t - tau)
// where the exponential and the step are optional; cos is sin with phi
// advanced by pi/2.
func (c Context) forwardSinCos(e sym.Expr) (sym.Expr, error) {
	tn, s := c.TimeVar.Name(), c.FreqVar
	fs := sym.Factors(e)
	if len(fs) > 3 {
		return nil, c.fail(KindUnsupportedShape, e, "too many factors for a damped sinusoid")
	}
	var env, trig *sym.Func
	var step *sym.Step
	for _, f := range fs {
		switch v := f.(type) {
		case *sym.Func:
			switch {
			case v.FuncName() == "exp" && env == nil:
				env = v
			case (v.FuncName() == "sin" || v.FuncName() == "cos") && trig == nil:
				trig = v
			default:
				return nil, c.fail(KindUnsupportedShape, e, "not a damped sinusoid")
			}
		case *sym.Step:
			if step != nil {
				return nil, c.fail(KindUnsupportedShape, e, "not a damped sinusoid")
			}
			step = v
		default:
			return nil, c.fail(KindUnsupportedShape, e, "not a damped sinusoid")
		}
	}
	if trig == nil {
		return nil, c.fail(KindUnsupportedShape, e, "no sin or cos factor")
	}

	alpha, beta := sym.Expr(sym.N(0)), sym.Expr(sym.N(0))
	if env != nil {
		a, b, ok := sym.ScaleShift(env.Arg(), tn)
		if !ok {
			return nil, c.fail(KindUnsupportedShape, e, "exponent not linear in %s", tn)
		}
		alpha, beta = a, b
	}
	omega, phi, ok := sym.ScaleShift(trig.Arg(), tn)
	if !ok {
		return nil, c.fail(KindUnsupportedShape, e, "phase not linear in %s", tn)
	}
	if trig.FuncName() == "cos" {
		phi = sym.AddOf(phi, sym.DivOf(sym.Pi, sym.N(2)))
	}

	tau := sym.Expr(sym.N(0))
	if step != nil {
		eta, zeta, ok := sym.ScaleShift(step.Arg(), tn)
		if !ok || !sym.IsOne(eta) {
			return nil, c.fail(KindUnsupportedShape, e, "step needs the similarity theorem")
		}
		tau = sym.Neg(zeta)
		switch sym.SignOf(tau) {
		case sym.SignNegative:
			tau = sym.N(0)
		case sym.SignUnknown:
			c.note(DiagAmbiguousSign, tau, "assuming %s is non-negative", tau)
		}
	}
	if !sym.IsZero(tau) {
		phi = sym.AddOf(phi, sym.MulOf(omega, tau))
	}

	sa := sym.SubOf(s, alpha)
	num := sym.Expand(sym.AddOf(sym.MulOf(omega, sym.CosOf(phi)), sym.MulOf(sa, sym.SinOf(phi))))
	den := sym.Expand(sym.AddOf(sym.PowOf(omega, sym.N(2)), sym.PowOf(sa, sym.N(2))))
	E := sym.DivOf(num, den)
	if !sym.IsZero(tau) {
		E = sym.MulOf(E, sym.ExpOf(sym.Neg(sym.MulOf(tau, s))))
		if !sym.IsZero(alpha) {
			E = sym.MulOf(E, sym.ExpOf(sym.MulOf(alpha, tau)))
		}
	}
	if !sym.IsZero(beta) {
		E = sym.MulOf(sym.ExpOf(beta), E)
	}
	return E, nil
}

// forwardDerivative maps d^n/dt^n v(t) to s^n V(s). The initial values
// v(0-), v'(0-), ... are not subtracted.
func (c Context) forwardDerivative(e sym.Expr) (sym.Expr, error) {
	d, ok := e.(*sym.Derivative)
	if !ok {
		return nil, c.fail(KindUnsupportedShape, e, "expecting a derivative")
	}
	a, ok := d.Expr().(*sym.Applied)
	if !ok || d.VarName() != c.TimeVar.Name() || !a.Arg().Equal(c.TimeVar) {
		return nil, c.fail(KindUnsupportedShape, e, "expecting a derivative of an unknown function of %s", c.TimeVar)
	}
	V := sym.Fn(flipCase(a.Name(), true), c.FreqVar)
	return sym.MulOf(sym.PowOf(c.FreqVar, sym.N(int64(d.Order()))), V), nil
}

// forwardApplied handles v(a*t + b) alone or multiplied by exp(c*t).
func (c Context) forwardApplied(e sym.Expr) (sym.Expr, error) {
	tn, s := c.TimeVar.Name(), c.FreqVar
	fs := sym.Factors(e)
	switch len(fs) {
	case 1:
		if a, ok := fs[0].(*sym.Applied); ok {
			return c.forwardFunc(a)
		}
	case 2:
		for i := range fs {
			a, ok := fs[i].(*sym.Applied)
			if !ok {
				continue
			}
			ex, ok := fs[1-i].(*sym.Func)
			if !ok || ex.FuncName() != "exp" {
				continue
			}
			scale, shift, ok := sym.ScaleShift(ex.Arg(), tn)
			if !ok || !sym.IsZero(shift) {
				continue
			}
			V, err := c.forwardFunc(a)
			if err != nil {
				return nil, err
			}
			return V.Sub(s.Name(), sym.SubOf(s, scale)).Simplify(), nil
		}
	}
	return nil, c.fail(KindUnsupportedShape, e, "cannot handle product with unknown function")
}

// forwardFunc maps v(a*t + b) to V(s/a) * exp(s*b/a) / |a|.
func (c Context) forwardFunc(a *sym.Applied) (sym.Expr, error) {
	s := c.FreqVar
	scale, shift, ok := sym.ScaleShift(a.Arg(), c.TimeVar.Name())
	if !ok || sym.IsZero(scale) {
		return nil, c.fail(KindUnsupportedShape, a, "argument not linear in %s", c.TimeVar)
	}
	V := sym.Fn(flipCase(a.Name(), true), sym.DivOf(s, scale))
	out := sym.DivOf(V, sym.AbsOf(scale))
	if !sym.IsZero(shift) {
		out = sym.MulOf(out, sym.ExpOf(sym.DivOf(sym.MulOf(s, shift), scale)))
	}
	return out, nil
}

// forwardUnitStep absorbs u(t) into the limits and integrates from 0.
func (c Context) forwardUnitStep(e sym.Expr) (sym.Expr, error) {
	rest := sym.Map(e, func(x sym.Expr) sym.Expr {
		if u, ok := x.(*sym.Step); ok && u.Arg().Equal(c.TimeVar) {
			return sym.N(1)
		}
		return x
	})
	return c.integrate(rest, sym.N(0))
}

// forwardZeroMinus integrates from t0 < 0 and lets t0 approach 0, so that
// an impulse at the origin is counted in full.
func (c Context) forwardZeroMinus(e sym.Expr) (sym.Expr, error) {
	name, err := c.freshName(e, "t0", 0)
	if err != nil {
		return nil, err
	}
	t0 := sym.NegativeSym(name)
	F, err := c.integrate(e, t0)
	if err != nil {
		return nil, err
	}
	lim := sym.Limit(F, name, sym.N(0))
	if !lim.Success {
		return nil, c.substrate(e, errors.New(lim.Error))
	}
	return lim.Value, nil
}

func (c Context) forwardZero(e sym.Expr) (sym.Expr, error) { return c.integrate(e, sym.N(0)) }

// integrate evaluates the improper transform integral from lower. An
// answer guarded by a convergence condition yields its closed-form branch.
func (c Context) integrate(e, lower sym.Expr) (sym.Expr, error) {
	F := sym.ImproperLaplaceIntegral(e, c.TimeVar.Name(), c.FreqVar, lower)
	if !sym.HasType(F, "integral") {
		return F, nil
	}
	pw, ok := F.(*sym.Piecewise)
	if !ok {
		return nil, c.fail(KindUnsupportedShape, e, "integral has no closed form")
	}
	v := pw.Pieces()[0].Value
	if sym.HasType(v, "integral") {
		return nil, c.fail(KindUnsupportedShape, e, "integral has no closed form")
	}
	return v, nil
}

// unevaluated returns the defining limit of the transform integral.
func (c Context) unevaluated(e sym.Expr) (sym.Expr, error) {
	name, err := c.freshName(e, "t0", 0)
	if err != nil {
		return nil, err
	}
	t0 := sym.NegativeSym(name)
	t, s := c.TimeVar, c.FreqVar
	in := sym.IntegralOf(sym.MulOf(e, sym.ExpOf(sym.Neg(sym.MulOf(s, t)))), t.Name(), t0, sym.Inf)
	return sym.LimOf(in, name, sym.N(0), "-"), nil
}
