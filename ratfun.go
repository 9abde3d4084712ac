package laplace

import (
	"math/big"

	"github.com/njchilds90/golaplace/sym"
)

// ratfun inverts a ratio of polynomials in s. The polynomial part of the
// quotient becomes impulses and their derivatives; the proper remainder is
// synthesised from its poles and residues.
func (c Context) ratfun(e sym.Expr) (Result, error) {
	sn := c.FreqVar.Name()
	if unbounded(e) {
		c.note(DiagDegenerate, e, "unbounded response treated as zero")
		return zeroResult(), nil
	}
	num, den := sym.NumerDenom(e)
	np, ok := sym.AsPoly(num, sn)
	if !ok {
		return Result{}, c.fail(KindUnsupportedShape, e, "numerator is not a polynomial in %s", sn)
	}
	dp, ok := sym.AsPoly(den, sn)
	if !ok {
		return Result{}, c.fail(KindUnsupportedShape, e, "denominator is not a polynomial in %s", sn)
	}
	if dp.IsZero() {
		c.note(DiagDegenerate, e, "zero denominator treated as zero response")
		return zeroResult(), nil
	}

	if c.DampedSin && dp.Degree() == 2 {
		r, err := c.dampedSin(e, np, dp)
		if err == nil {
			return r, nil
		}
		if !recoverable(err) {
			return Result{}, err
		}
	}

	q, m := np.Div(dp)
	res := zeroResult()
	res.Causal = impulses(q, c.TimeVar)
	if m.IsZero() {
		return res, nil
	}
	u, err := c.residues(e, m, dp, den)
	if err != nil {
		return Result{}, err
	}
	res.General = u
	return res, nil
}

func unbounded(e sym.Expr) bool {
	for _, f := range sym.Factors(e) {
		if f.Equal(sym.Inf) {
			return true
		}
	}
	return false
}

// impulses maps the quotient c_0 s^k + ... + c_k to
// c_0 delta^(k)(t) + ... + c_k delta(t).
func impulses(q *sym.Poly, t *sym.Sym) sym.Expr {
	if q.IsZero() {
		return sym.N(0)
	}
	k := q.Degree()
	cs := q.Coeffs()
	terms := make([]sym.Expr, 0, len(cs))
	for i, ci := range cs {
		if sym.IsZero(ci) {
			continue
		}
		terms = append(terms, sym.MulOf(ci, sym.DeltaN(t, sym.N(int64(k-i)))))
	}
	return sym.AddOf(terms...)
}

// residues synthesises the time response of the proper fraction m/dp from
// the roots of den, folding conjugate pairs into real sinusoids.
func (c Context) residues(e sym.Expr, m, dp *sym.Poly, den sym.Expr) (sym.Expr, error) {
	s, t, sn := c.FreqVar, c.TimeVar, c.FreqVar.Name()
	roots, err := sym.Roots(den, sn, c.Damping)
	if err != nil {
		return nil, c.substrate(e, err)
	}
	remaining := make(map[string]int, len(roots))
	for _, r := range roots {
		remaining[r.Value.String()] += r.Mult
		if r.Ambiguous {
			c.note(DiagAmbiguousPoles, den, "cannot tell whether the poles are real or complex; set a damping hint")
		}
	}

	var terms []sym.Expr
	for _, r := range roots {
		p := poleFromRoot(r)
		key := p.Value.String()
		o := remaining[key]
		if o == 0 {
			continue
		}
		conjKey := ""
		if p.Conjugate != nil {
			if ck := p.Conjugate.String(); ck != key && remaining[ck] > 0 {
				conjKey = ck
			}
		}
		ept := sym.ExpOf(sym.MulOf(p.Value, t))

		if o == 1 {
			res := tidy(sym.DivOf(m.Eval(p.Value), dp.Diff().Eval(p.Value)))
			if conjKey != "" {
				remaining[conjKey]--
				terms = append(terms, conjugatePair(res, p, t))
			} else {
				terms = append(terms, sym.MulOf(res, ept))
			}
			remaining[key] = 0
			continue
		}

		// Repeated pole: r_n = d^(o-n)/ds^(o-n) [(s-p)^o m/dp] at p, / (o-n)!
		factor := sym.NewPoly([]sym.Expr{sym.N(1), sym.Neg(p.Value)}, s)
		div := sym.NewPoly([]sym.Expr{sym.N(1)}, s)
		for i := 0; i < o; i++ {
			div = div.Mul(factor)
		}
		qp, _ := dp.Div(div)
		g := sym.DivOf(m.Expr(), qp.Expr())
		for n := 1; n <= o; n++ {
			k := o - n
			rn := sym.DiffN(g, sn, k).Sub(sn, p.Value).Simplify()
			rn = tidy(sym.DivOf(rn, sym.Factorial(k)))
			if sym.IsZero(rn) {
				continue
			}
			w := sym.DivOf(sym.PowOf(t, sym.N(int64(n-1))), sym.Factorial(n-1))
			if conjKey != "" {
				terms = append(terms, sym.MulOf(w, conjugatePair(rn, p, t)))
			} else {
				terms = append(terms, sym.MulOf(rn, w, ept))
			}
		}
		if conjKey != "" {
			remaining[conjKey] -= o
		}
		remaining[key] = 0
	}
	return sym.AddOf(terms...), nil
}

// conjugatePair is the real response of the residue r at p together with
// the conjugate residue at conj(p).
func conjugatePair(r sym.Expr, p Pole, t *sym.Sym) sym.Expr {
	re, im, ok := sym.ReIm(r)
	if !ok {
		re, im = sym.ReOf(r), sym.ImOf(r)
	}
	et := sym.ExpOf(sym.MulOf(p.Re, t))
	wt := sym.MulOf(p.Im, t)
	return sym.SubOf(
		sym.MulOf(sym.N(2), re, et, sym.CosOf(wt)),
		sym.MulOf(sym.N(2), im, et, sym.SinOf(wt)),
	)
}

// tidy writes a constant as re + i*im with both parts over a common,
// expanded denominator.
func tidy(e sym.Expr) sym.Expr {
	re, im, ok := sym.ReIm(e)
	if !ok {
		return flatten(e)
	}
	return sym.AddOf(flatten(re), sym.MulOf(sym.I, flatten(im)))
}

func flatten(e sym.Expr) sym.Expr {
	n, d := sym.NumerDenom(e)
	return sym.DivOf(sym.Expand(n), sym.Expand(d))
}

// dampedSin inverts a second-order response directly as an exponentially
// decaying sinusoid, or a hyperbolic one when overdamped.
func (c Context) dampedSin(e sym.Expr, np, dp *sym.Poly) (Result, error) {
	t := c.TimeVar
	nc, dc := np.Coeffs(), dp.Coeffs()
	if len(nc) > 3 || len(dc) != 3 {
		return Result{}, c.fail(KindNotExpectedDegree, e, "not a second-order response")
	}
	K := sym.DivOf(nc[0], dc[0])
	for i := len(nc) - 1; i >= 0; i-- {
		nc[i] = sym.DivOf(nc[i], nc[0])
	}
	d1, d2 := sym.DivOf(dc[1], dc[0]), sym.DivOf(dc[2], dc[0])
	if sym.IsZero(d2) {
		return Result{}, c.fail(KindNotExpectedDegree, e, "pole at the origin")
	}

	omega0 := sym.SqrtOf(d2)
	zeta := sym.DivOf(d1, sym.MulOf(sym.N(2), omega0))
	overdamped := false
	if z, ok := zeta.Eval(); ok {
		switch z.Rat().Cmp(big.NewRat(1, 1)) {
		case 1:
			overdamped = true
		case 0:
			return Result{}, c.fail(KindNotExpectedDegree, e, "critically damped response")
		}
	}
	sigma1 := sym.MulOf(zeta, omega0)

	// Above critical damping omega1 is imaginary; sin and cos of i*w*t
	// become sinh and cosh of w*t and the sign of omega1^2 flips.
	var omega1, S, C, omegaSq sym.Expr
	if overdamped {
		omega1 = sym.MulOf(omega0, sym.SqrtOf(sym.SubOf(sym.PowOf(zeta, sym.N(2)), sym.N(1))))
		S = sym.SinhOf(sym.MulOf(omega1, t))
		C = sym.CoshOf(sym.MulOf(omega1, t))
		omegaSq = sym.PowOf(omega1, sym.N(2))
	} else {
		omega1 = sym.MulOf(omega0, sym.SqrtOf(sym.SubOf(sym.N(1), sym.PowOf(zeta, sym.N(2)))))
		S = sym.SinOf(sym.MulOf(omega1, t))
		C = sym.CosOf(sym.MulOf(omega1, t))
		omegaSq = sym.Neg(sym.PowOf(omega1, sym.N(2)))
	}
	if sym.IsZero(omega1) {
		return Result{}, c.fail(KindNotExpectedDegree, e, "critically damped response")
	}
	if overdamped {
		c.note(DiagOverdamped, e, "expression is overdamped")
	}
	K0 := K
	K = sym.DivOf(K, omega1)
	E := sym.ExpOf(sym.Neg(sym.MulOf(sigma1, t)))

	switch len(nc) {
	case 1:
		return general(sym.MulOf(K, E, S)), nil
	case 2:
		n1 := nc[1]
		return general(sym.MulOf(K, E, sym.AddOf(
			sym.MulOf(omega1, C),
			sym.MulOf(sym.SubOf(n1, sigma1), S),
		))), nil
	}
	n1, n2 := nc[1], nc[2]
	kC := sym.AddOf(sym.MulOf(sym.N(-2), omega1, sigma1), sym.MulOf(n1, omega1))
	kS := sym.AddOf(
		sym.PowOf(sigma1, sym.N(2)),
		omegaSq,
		sym.Neg(sym.MulOf(n1, sigma1)),
		n2,
	)
	G := sym.MulOf(K, E, sym.AddOf(sym.MulOf(kC, C), sym.MulOf(kS, S)))
	return Result{Causal: sym.MulOf(K0, sym.DeltaOf(t)), General: G}, nil
}
