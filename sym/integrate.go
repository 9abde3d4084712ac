package sym

import "errors"

// ============================================================
// Laplace integrals
// ============================================================

var errIntegrand = errors.New("sym: unsupported integrand")

// ImproperLaplaceIntegral evaluates the integral of f(t)*exp(-s*t) for t
// from lower to infinity. Supported integrands are sums of terms
//
//	c * t^n * exp(a*t + b) * u(...) * delta^(k)(...)
//
// after sin, cos, sinh and cosh are rewritten as exponentials. A Dirac
// impulse strictly inside the range has full weight and one on its
// boundary has half weight. Unit steps narrow the range.
//
// When the result needs Re(s) above an abscissa the answer is a Piecewise
// holding the closed form and the unevaluated integral as otherwise
// branch. Unsupported integrands come back as an unevaluated Integral.
func ImproperLaplaceIntegral(f Expr, tName string, s Expr, lower Expr) Expr {
	t, ok := FindSymbol(f, tName)
	if !ok {
		t = RealSym(tName)
	}
	unevaluated := IntegralOf(MulOf(f, ExpOf(Neg(MulOf(s, t)))), tName, lower, Inf)
	g := rewriteExponential(f, tName)
	if SignOf(lower) == SignPositive || SignOf(lower) == SignZero {
		g = absOnPositive(g, tName)
	}
	li := &laplaceIntegrator{t: t, s: s, lower: lower.Simplify()}
	var parts []Expr
	for _, term := range Terms(Expand(g)) {
		v, err := li.term(term)
		if err != nil {
			return unevaluated
		}
		parts = append(parts, v)
	}
	out := Cancel(AddOf(parts...), li.s.String())
	if li.sigma == nil {
		return out
	}
	return PiecewiseOf(
		Piece{Value: out, Cond: Gt(ReOf(s), li.sigma)},
		Piece{Value: unevaluated, Cond: True},
	)
}

// rewriteExponential writes trigonometric and hyperbolic functions of t
// as sums of exponentials.
func rewriteExponential(e Expr, tName string) Expr {
	return Map(e, func(x Expr) Expr {
		f, ok := x.(*Func)
		if !ok || !Has(f.arg, tName) {
			return x
		}
		ix := MulOf(I, f.arg)
		switch f.name {
		case "sin":
			return MulOf(F(-1, 2), I, SubOf(ExpOf(ix), ExpOf(Neg(ix))))
		case "cos":
			return MulOf(F(1, 2), AddOf(ExpOf(ix), ExpOf(Neg(ix))))
		case "sinh":
			return MulOf(F(1, 2), SubOf(ExpOf(f.arg), ExpOf(Neg(f.arg))))
		case "cosh":
			return MulOf(F(1, 2), AddOf(ExpOf(f.arg), ExpOf(Neg(f.arg))))
		}
		return x
	})
}

// absOnPositive replaces |t| by t and sign(t) by 1, valid for t >= 0.
func absOnPositive(e Expr, tName string) Expr {
	return Map(e, func(x Expr) Expr {
		f, ok := x.(*Func)
		if !ok {
			return x
		}
		if s, isSym := f.arg.(*Sym); isSym && s.name == tName {
			switch f.name {
			case "abs":
				return s
			case "sign":
				return N(1)
			}
		}
		return x
	})
}

type laplaceIntegrator struct {
	t     *Sym
	s     Expr
	lower Expr
	sigma Expr
}

// laplaceTerm is one integrand term split into its parts.
type laplaceTerm struct {
	coeff  Expr
	power  Expr
	alpha  Expr
	lo, hi Expr
	delta  *Delta
	dScale Expr
	dAt    Expr
}

func (li *laplaceIntegrator) split(term Expr) (*laplaceTerm, error) {
	tn := li.t.name
	lt := &laplaceTerm{power: N(0), alpha: N(0), lo: li.lower}
	var coeff []Expr
	for _, f := range Factors(term) {
		if !Has(f, tn) {
			coeff = append(coeff, f)
			continue
		}
		switch v := f.(type) {
		case *Sym:
			lt.power = AddOf(lt.power, N(1))
		case *Pow:
			bs, ok := v.base.(*Sym)
			if !ok || bs.name != tn || Has(v.exp, tn) {
				return nil, errIntegrand
			}
			lt.power = AddOf(lt.power, v.exp)
		case *Func:
			if v.name != "exp" {
				return nil, errIntegrand
			}
			a, b, ok := ScaleShift(v.arg, tn)
			if !ok {
				return nil, errIntegrand
			}
			lt.alpha = AddOf(lt.alpha, a)
			coeff = append(coeff, ExpOf(b))
		case *Step:
			a, b, ok := ScaleShift(v.arg, tn)
			if !ok {
				return nil, errIntegrand
			}
			edge := Neg(DivOf(b, a))
			switch SignOf(a) {
			case SignPositive:
				lo, err := maxBound(lt.lo, edge)
				if err != nil {
					return nil, err
				}
				lt.lo = lo
			case SignNegative:
				if lt.hi == nil {
					lt.hi = edge
					break
				}
				hi, err := minBound(lt.hi, edge)
				if err != nil {
					return nil, err
				}
				lt.hi = hi
			default:
				return nil, errIntegrand
			}
		case *Delta:
			if lt.delta != nil {
				return nil, errIntegrand
			}
			order, ok := v.OrderInt()
			if !ok {
				return nil, errIntegrand
			}
			a, b, ok := ScaleShift(v.arg, tn)
			if !ok || SignOf(a) == SignUnknown {
				return nil, errIntegrand
			}
			// delta^(n)(a*t+b) = delta^(n)(t-tau) / (|a| * a^n)
			lt.delta = v
			lt.dAt = Neg(DivOf(b, a))
			lt.dScale = PowOf(MulOf(AbsOf(a), PowOf(a, N(int64(order)))), N(-1))
		default:
			return nil, errIntegrand
		}
	}
	lt.coeff = MulOf(coeff...)
	return lt, nil
}

// maxBound returns the larger of two bounds when their order is known.
func maxBound(a, b Expr) (Expr, error) {
	switch SignOf(SubOf(a, b)) {
	case SignPositive, SignZero:
		return a, nil
	case SignNegative:
		return b, nil
	}
	return nil, errIntegrand
}

func minBound(a, b Expr) (Expr, error) {
	m, err := maxBound(a, b)
	if err != nil {
		return nil, err
	}
	if m == a {
		return b, nil
	}
	return a, nil
}

func (li *laplaceIntegrator) term(term Expr) (Expr, error) {
	lt, err := li.split(term)
	if err != nil {
		return nil, err
	}
	if lt.hi != nil {
		switch SignOf(SubOf(lt.hi, lt.lo)) {
		case SignNegative, SignZero:
			return N(0), nil
		case SignUnknown:
			return nil, errIntegrand
		}
	}
	if lt.delta != nil {
		return li.impulse(lt)
	}
	p := SubOf(lt.alpha, li.s)
	if lt.hi == nil {
		li.noteAbscissa(lt.alpha)
	}
	n, ok := lt.power.(*Num)
	if !ok || !n.IsInteger() || n.IsNegative() {
		// t^a over [0, oo) gives gamma(a+1)/(s-alpha)^(a+1).
		if lt.hi != nil || !IsZero(lt.lo) || SignOf(AddOf(lt.power, N(1))) != SignPositive {
			return nil, errIntegrand
		}
		a1 := AddOf(lt.power, N(1))
		return MulOf(lt.coeff, GammaOf(a1), PowOf(Neg(p), Neg(a1))), nil
	}
	m, _ := n.Int64()
	at := func(x Expr) Expr { return antiderivative(int(m), p, x) }
	upper := Expr(N(0))
	if lt.hi != nil {
		upper = at(lt.hi)
	}
	return MulOf(lt.coeff, SubOf(upper, at(lt.lo))), nil
}

// antiderivative evaluates the antiderivative of t^m*exp(p*t) at x:
// exp(p*x) * sum_k (-1)^k m!/(m-k)! x^(m-k) / p^(k+1).
func antiderivative(m int, p, x Expr) Expr {
	terms := make([]Expr, 0, m+1)
	ratio := N(1)
	for k := 0; k <= m; k++ {
		if k > 0 {
			ratio = numMul(ratio, N(int64(m-k+1)))
		}
		c := ratio
		if k%2 == 1 {
			c = numNeg(ratio)
		}
		terms = append(terms, MulOf(c, PowOf(x, N(int64(m-k))), PowOf(p, N(int64(-k-1)))))
	}
	return MulOf(ExpOf(MulOf(p, x)), AddOf(terms...))
}

// impulse integrates a term holding a Dirac impulse or its derivative
// using the sifting property.
func (li *laplaceIntegrator) impulse(lt *laplaceTerm) (Expr, error) {
	weight, err := impulseWeight(lt.dAt, lt.lo, lt.hi)
	if err != nil {
		return nil, err
	}
	if IsZero(weight) {
		return N(0), nil
	}
	order, _ := lt.delta.OrderInt()
	g := MulOf(PowOf(li.t, lt.power), ExpOf(MulOf(SubOf(lt.alpha, li.s), li.t)))
	dg := DiffN(g, li.t.name, order)
	sign := N(1)
	if order%2 == 1 {
		sign = N(-1)
	}
	return MulOf(weight, sign, lt.coeff, lt.dScale, dg.Sub(li.t.name, lt.dAt)), nil
}

// impulseWeight is 1 for an impulse strictly inside (lo, hi), 1/2 on a
// boundary and 0 outside.
func impulseWeight(at, lo, hi Expr) (Expr, error) {
	w := Expr(N(1))
	switch SignOf(SubOf(at, lo)) {
	case SignNegative:
		return N(0), nil
	case SignZero:
		w = F(1, 2)
	case SignUnknown:
		return nil, errIntegrand
	}
	if hi == nil {
		return w, nil
	}
	switch SignOf(SubOf(hi, at)) {
	case SignNegative:
		return N(0), nil
	case SignZero:
		w = MulOf(w, F(1, 2))
	case SignUnknown:
		return nil, errIntegrand
	}
	return w, nil
}

// noteAbscissa raises the convergence abscissa to Re(alpha).
func (li *laplaceIntegrator) noteAbscissa(alpha Expr) {
	re, _, ok := ReIm(alpha)
	if !ok {
		re = ReOf(alpha)
	}
	if li.sigma == nil {
		li.sigma = re
		return
	}
	if SignOf(SubOf(re, li.sigma)) == SignPositive {
		li.sigma = re
	}
}

// ============================================================
// Inverse Laplace table
// ============================================================

// InverseLaplaceTable inverts c*(s-alpha)^k for a k that is negative or
// of unknown sign but not a negative integer handled by partial
// fractions: the result is c*t^(-k-1)*exp(alpha*t)/gamma(-k). It reports
// false when F has another shape.
func InverseLaplaceTable(F Expr, sName string, t Expr) (Expr, bool) {
	c, rest := FactorConst(F, sName)
	p, ok := rest.(*Pow)
	if !ok {
		return nil, false
	}
	scale, shift, ok := ScaleShift(p.base, sName)
	if !ok || !IsOne(scale) {
		return nil, false
	}
	k := p.exp
	if SignOf(k) != SignNegative {
		return nil, false
	}
	alpha := Neg(shift)
	return MulOf(c, PowOf(t, SubOf(Neg(k), N(1))), ExpOf(MulOf(alpha, t)), PowOf(GammaOf(Neg(k)), N(-1))), true
}
