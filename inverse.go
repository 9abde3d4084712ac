package laplace

import (
	"github.com/njchilds90/golaplace/sym"
)

// inverse computes the causal and general parts of the inverse transform
// of e, before the final assumptions are applied.
func (c Context) inverse(e sym.Expr) (Result, error) {
	if sym.Has(e, c.TimeVar.Name()) {
		return Result{}, c.fail(KindUnsupportedShape, e, "expression depends on %s", c.TimeVar)
	}
	return c.linear(e, sym.Terms, Context.inverseTerm)
}

func inverseRules() []rule[Result] {
	return []rule[Result]{
		{name: "function", match: isApplied, apply: func(c Context, e sym.Expr) (Result, error) {
			v, err := c.inverseFunc(e.(*sym.Applied), c.TimeVar)
			return causal(v), err
		}},
		{name: "product", match: hasKind("applied"), apply: func(c Context, e sym.Expr) (Result, error) {
			v, err := c.inverseProduct(e)
			return causal(v), err
		}},
		{name: "ratfun", apply: Context.ratfun},
		{name: "power", match: isPowerOf, apply: func(c Context, e sym.Expr) (Result, error) {
			v, err := c.inversePower(e)
			return general(v), err
		}},
	}
}

func isApplied(_ Context, e sym.Expr) bool {
	_, ok := e.(*sym.Applied)
	return ok
}

func isPowerOf(c Context, e sym.Expr) bool {
	p, ok := e.(*sym.Pow)
	return ok && p.Base().Equal(c.FreqVar)
}

// inverseTerm transforms one term: the delay exp(-T*s) is split off, the
// rest is transformed directly or through the fallbacks, and the delay is
// applied to the result.
func (c Context) inverseTerm(e sym.Expr) (Result, error) {
	c, err := c.enter(e)
	if err != nil {
		return Result{}, err
	}
	sn := c.FreqVar.Name()
	rest, delay := delayFactor(e, sn)
	if sym.IsZero(delay) && hasExpIn(rest, sn) {
		if r2, d2, ok := recombineDelay(rest, sn); ok {
			rest, delay = r2, d2
		}
	}
	if err := c.checkDelay(e, delay); err != nil {
		return Result{}, err
	}
	r, err := c.inverseTerm1(rest)
	if err != nil {
		if !recoverable(err) {
			return Result{}, err
		}
		if r, err = c.inverseFallback(rest, err); err != nil {
			return Result{}, err
		}
	}
	return c.applyDelay(e, r, delay)
}

// inverseTerm1 pulls out the factor free of s and tries the direct rules.
func (c Context) inverseTerm1(e sym.Expr) (Result, error) {
	k, rest := sym.FactorConst(e, c.FreqVar.Name())
	r, err := firstMatch(c, rest, inverseRules())
	if err != nil {
		return Result{}, err
	}
	return r.scale(k), nil
}

// inverseFallback expands a term the direct rules could not handle. A sum
// is read as a product of convolutions if possible and otherwise split;
// a single term is brought over a common denominator, then handed to the
// algebra layer's inverse table.
func (c Context) inverseFallback(e sym.Expr, cause error) (Result, error) {
	terms := sym.Terms(sym.Expand(e))
	if len(terms) > 1 {
		p, err := c.inverseProduct(e)
		if err == nil {
			return causal(p), nil
		}
		if !recoverable(err) {
			return Result{}, err
		}
		acc := zeroResult()
		for _, t := range terms {
			r, err := c.inverseTerm(t)
			if err != nil {
				return Result{}, err
			}
			acc = acc.add(r)
		}
		return acc, nil
	}
	tog := sym.Together(e)
	if !tog.Equal(e) {
		r, err := c.inverseTerm1(tog)
		if err == nil {
			return r, nil
		}
		if !recoverable(err) {
			return Result{}, err
		}
	}
	if h, ok := sym.InverseLaplaceTable(tog, c.FreqVar.Name(), c.TimeVar); ok {
		return general(h), nil
	}
	return Result{}, &Error{Kind: KindUnsupportedShape, Direction: Inverse, Expr: e,
		Msg: "cannot determine inverse Laplace transform", Err: cause}
}

// inverseFunc maps V(a*s + b) to v(t/a) * exp(-b*t/a) / |a|.
func (c Context) inverseFunc(a *sym.Applied, t sym.Expr) (sym.Expr, error) {
	scale, shift, ok := sym.ScaleShift(a.Arg(), c.FreqVar.Name())
	if !ok || sym.IsZero(scale) {
		return nil, c.fail(KindUnsupportedShape, a, "argument not linear in %s", c.FreqVar)
	}
	v := sym.Fn(flipCase(a.Name(), false), sym.DivOf(t, scale))
	out := sym.DivOf(v, sym.AbsOf(scale))
	if !sym.IsZero(shift) {
		out = sym.MulOf(out, sym.ExpOf(sym.Neg(sym.DivOf(sym.MulOf(t, shift), scale))))
	}
	return out, nil
}

// inverseProduct reads a product holding unknown functions as time-domain
// operators: s*V is a derivative, s^n*V the n-th derivative, V/s a running
// integral and any other product a convolution.
func (c Context) inverseProduct(e sym.Expr) (sym.Expr, error) {
	t, tn, sn := c.TimeVar, c.TimeVar.Name(), c.FreqVar.Name()
	lo, hi := sym.Expr(sym.Neg(sym.Inf)), sym.Expr(sym.Inf)
	if c.Causal {
		lo, hi = sym.N(0), t
	}
	k, rest := sym.FactorConst(e, sn)
	fs := sym.Factors(rest)
	if len(fs) < 2 {
		r, err := c.inverseTerm1(rest)
		if err != nil {
			return nil, err
		}
		return sym.MulOf(k, r.Sum()), nil
	}

	var applied, others []sym.Expr
	for _, f := range fs {
		if _, ok := f.(*sym.Applied); ok {
			applied = append(applied, f)
		} else {
			others = append(others, f)
		}
	}
	ordered := fs
	if len(applied) > 0 && len(others) > 0 {
		ordered = append([]sym.Expr{sym.MulOf(others...)}, applied...)
	}

	if _, ok := ordered[1].(*sym.Applied); ok {
		if _, lead := ordered[0].(*sym.Applied); !lead {
			// (R + L*s)*V(s) splits into R*V(s) + L*s*V(s).
			if terms := sym.Terms(sym.Expand(ordered[0])); len(terms) >= 2 {
				parts := make([]sym.Expr, 0, len(terms))
				for _, term := range terms {
					p, err := c.inverseProduct(sym.MulOf(append([]sym.Expr{term}, ordered[1:]...)...))
					if err != nil {
						return nil, err
					}
					parts = append(parts, p)
				}
				return sym.MulOf(k, sym.AddOf(parts...)), nil
			}
		}
	}

	intnum := 0
	var result sym.Expr
	next := ordered[1:]
	if a, ok := ordered[1].(*sym.Applied); ok {
		r, handled, err := c.operatorForm(rest, ordered[0], a, lo, &intnum)
		if err != nil {
			return nil, err
		}
		if handled {
			result, next = r, ordered[2:]
		}
	}
	if result == nil {
		r, err := c.inverseTerm1(ordered[0])
		if err != nil {
			return nil, err
		}
		result = r.Sum()
	}
	for _, f := range next {
		tau, err := c.dummy(rest, "tau", intnum)
		if err != nil {
			return nil, err
		}
		intnum++
		r, err := c.inverseTerm1(f)
		if err != nil {
			return nil, err
		}
		integrand := sym.MulOf(result.Sub(tn, sym.SubOf(t, tau)), r.Sum().Sub(tn, tau))
		result = sym.IntegralOf(integrand, tau.Name(), lo, hi)
	}
	return sym.MulOf(k, result), nil
}

// operatorForm recognises s*V, s^n*V and V/s.
func (c Context) operatorForm(e, lead sym.Expr, a *sym.Applied, lo sym.Expr, intnum *int) (sym.Expr, bool, error) {
	s, t, tn := c.FreqVar, c.TimeVar, c.TimeVar.Name()
	n := 0
	switch {
	case lead.Equal(s):
		n = 1
	default:
		p, ok := lead.(*sym.Pow)
		if !ok || !p.Base().Equal(s) {
			return nil, false, nil
		}
		k, ok := p.ExpExpr().(*sym.Num)
		if !ok || !k.IsInteger() {
			return nil, false, nil
		}
		kk, _ := k.Int64()
		n = int(kk)
	}
	switch {
	case n > 0:
		v, err := c.inverseFunc(a, t)
		if err != nil {
			return nil, false, err
		}
		return sym.DerivativeOf(v, tn, n), true, nil
	case n == -1:
		tau, err := c.dummy(e, "tau", *intnum)
		if err != nil {
			return nil, false, err
		}
		*intnum++
		v, err := c.inverseFunc(a, tau)
		if err != nil {
			return nil, false, err
		}
		return sym.IntegralOf(v, tau.Name(), lo, t), true, nil
	}
	return nil, false, nil
}

// inversePower maps s^a to the a-th derivative of the impulse for a > 0
// and to t^(-a-1)/gamma(-a) for a < 0.
func (c Context) inversePower(e sym.Expr) (sym.Expr, error) {
	p := e.(*sym.Pow)
	a := p.ExpExpr()
	t := c.TimeVar
	switch sym.SignOf(a) {
	case sym.SignPositive:
		return sym.DeltaN(t, a), nil
	case sym.SignNegative:
		return sym.DivOf(sym.PowOf(t, sym.SubOf(sym.Neg(a), sym.N(1))), sym.GammaOf(sym.Neg(a))), nil
	}
	return nil, c.fail(KindAmbiguousSign, e, "cannot determine sign of exponent %s", a)
}

// delayFactor splits e into rest * exp(-delay*s), collecting every
// exponential factor whose argument is linear in s.
func delayFactor(e sym.Expr, sn string) (rest, delay sym.Expr) {
	delay = sym.N(0)
	var keep []sym.Expr
	for _, f := range sym.Factors(e) {
		arg, ok := expArg(f)
		if ok {
			if p, isPoly := sym.AsPoly(arg, sn); isPoly && p.Degree() == 1 {
				delay = sym.SubOf(delay, p.Coeff(1))
				if c0 := p.Coeff(0); !sym.IsZero(c0) {
					keep = append(keep, sym.ExpOf(c0))
				}
				continue
			}
		}
		keep = append(keep, f)
	}
	return sym.MulOf(keep...), delay
}

// expArg returns x for a factor exp(x) or exp(y)^n with x = n*y.
func expArg(f sym.Expr) (sym.Expr, bool) {
	switch v := f.(type) {
	case *sym.Func:
		if v.FuncName() == "exp" {
			return v.Arg(), true
		}
	case *sym.Pow:
		if b, ok := v.Base().(*sym.Func); ok && b.FuncName() == "exp" {
			if _, num := v.ExpExpr().(*sym.Num); num {
				return sym.MulOf(v.ExpExpr(), b.Arg()), true
			}
		}
	}
	return nil, false
}

func hasExpIn(e sym.Expr, sn string) bool {
	return sym.Contains(e, func(x sym.Expr) bool {
		f, ok := x.(*sym.Func)
		return ok && f.FuncName() == "exp" && sym.Has(f.Arg(), sn)
	})
}

// recombineDelay handles terms such as 1/(s^2*exp(5*s) + s*exp(5*s)): the
// term is brought over a common denominator, the exponential of the
// denominator's first term is cancelled from both sides, and the delay is
// extracted again. It reports false when an exponential in s remains.
func recombineDelay(e sym.Expr, sn string) (rest, delay sym.Expr, ok bool) {
	num, den := sym.NumerDenom(e)
	den = sym.Expand(den)
	var arg sym.Expr
	for _, f := range sym.Factors(sym.Terms(den)[0]) {
		if a, isExp := expArg(f); isExp && sym.Has(a, sn) {
			arg = a
			break
		}
	}
	if arg != nil {
		inv := sym.ExpOf(sym.Neg(arg))
		num = sym.Expand(sym.MulOf(num, inv))
		den = sym.Expand(sym.MulOf(den, inv))
	}
	rest, delay = delayFactor(sym.DivOf(num, den), sn)
	if hasExpIn(rest, sn) {
		return nil, nil, false
	}
	return rest, delay, true
}
