package sym

import "math/big"

// ============================================================
// Rational form
// ============================================================

// denomFactor is one base of a denominator with its exponent.
type denomFactor struct {
	base Expr
	exp  *Num
}

// denomMap is a denominator written as an integer times a product of
// powers, keyed by the canonical string of each base.
type denomMap struct {
	scale   *big.Int
	factors map[string]denomFactor
	order   []string
}

func newDenomMap() *denomMap {
	return &denomMap{scale: big.NewInt(1), factors: map[string]denomFactor{}}
}

func (d *denomMap) put(base Expr, exp *Num) {
	if n, ok := base.(*Num); ok && exp.IsOne() && n.IsInteger() {
		d.scale.Mul(d.scale, n.val.Num())
		return
	}
	key := base.String()
	if f, ok := d.factors[key]; ok {
		d.factors[key] = denomFactor{base: base, exp: numAdd(f.exp, exp)}
		return
	}
	d.factors[key] = denomFactor{base: base, exp: exp}
	d.order = append(d.order, key)
}

// denomOf splits e into its denominator map, treating every non-power
// factor as exponent one.
func denomOf(e Expr) *denomMap {
	d := newDenomMap()
	for _, f := range Factors(e) {
		switch v := f.(type) {
		case *Num:
			d.scale.Mul(d.scale, new(big.Int).Abs(v.val.Num()))
		case *Pow:
			if n, ok := v.exp.(*Num); ok {
				d.put(v.base, n)
				continue
			}
			d.put(v, N(1))
		default:
			d.put(v, N(1))
		}
	}
	return d
}

func (d *denomMap) expr() Expr {
	fs := []Expr{&Num{val: new(big.Rat).SetInt(d.scale)}}
	for _, k := range d.order {
		f := d.factors[k]
		fs = append(fs, PowOf(f.base, f.exp))
	}
	return MulOf(fs...)
}

// lcm merges two denominator maps, keeping the larger exponent per base.
func (d *denomMap) lcm(o *denomMap) *denomMap {
	out := newDenomMap()
	g := new(big.Int).GCD(nil, nil, d.scale, o.scale)
	out.scale = new(big.Int).Mul(d.scale, o.scale)
	out.scale.Quo(out.scale, g)
	for _, src := range []*denomMap{d, o} {
		for _, k := range src.order {
			f := src.factors[k]
			if cur, ok := out.factors[k]; ok {
				if numCmp(f.exp, cur.exp) > 0 {
					out.factors[k] = f
				}
				continue
			}
			out.factors[k] = f
			out.order = append(out.order, k)
		}
	}
	return out
}

// quo returns the cofactor d / o for an o that divides d.
func (d *denomMap) quo(o *denomMap) Expr {
	s := new(big.Int).Quo(d.scale, o.scale)
	fs := []Expr{&Num{val: new(big.Rat).SetInt(s)}}
	for _, k := range d.order {
		f := d.factors[k]
		e := f.exp
		if of, ok := o.factors[k]; ok {
			e = numSub(e, of.exp)
		}
		if !e.IsZero() {
			fs = append(fs, PowOf(f.base, e))
		}
	}
	return MulOf(fs...)
}

// NumerDenom writes e as a single fraction num/den. Sums are brought over
// the least common denominator of their terms; nothing is expanded.
func NumerDenom(e Expr) (num, den Expr) {
	switch v := e.Simplify().(type) {
	case *Num:
		return &Num{val: new(big.Rat).SetInt(v.val.Num())}, &Num{val: new(big.Rat).SetInt(v.val.Denom())}
	case *Pow:
		n, ok := v.exp.(*Num)
		if !ok {
			return v, N(1)
		}
		if n.IsNegative() {
			bn, bd := NumerDenom(v.base)
			pos := numNeg(n)
			if n.IsInteger() {
				return PowOf(bd, pos), PowOf(bn, pos)
			}
			return N(1), PowOf(v.base, pos)
		}
		if n.IsInteger() {
			bn, bd := NumerDenom(v.base)
			return PowOf(bn, n), PowOf(bd, n)
		}
		return v, N(1)
	case *Mul:
		ns := make([]Expr, 0, len(v.factors))
		ds := make([]Expr, 0, len(v.factors))
		for _, f := range v.factors {
			fn, fd := NumerDenom(f)
			ns = append(ns, fn)
			ds = append(ds, fd)
		}
		return MulOf(ns...), MulOf(ds...)
	case *Add:
		type frac struct {
			num Expr
			den *denomMap
		}
		parts := make([]frac, len(v.terms))
		lcd := newDenomMap()
		for i, t := range v.terms {
			tn, td := NumerDenom(t)
			dm := denomOf(td)
			if c, ok := leadingCoeff(td); ok && c.IsNegative() {
				tn = Neg(tn)
			}
			parts[i] = frac{num: tn, den: dm}
			lcd = lcd.lcm(dm)
		}
		terms := make([]Expr, len(parts))
		for i, p := range parts {
			terms[i] = MulOf(p.num, lcd.quo(p.den))
		}
		return AddOf(terms...), lcd.expr()
	default:
		return v, N(1)
	}
}

// Together combines a sum of fractions into one fraction.
func Together(e Expr) Expr {
	n, d := NumerDenom(e)
	if IsOne(d) {
		return n
	}
	return MulOf(n, PowOf(d, N(-1)))
}

// Cancel writes e as num/den with both sides expanded and the common
// polynomial factor in varName removed.
func Cancel(e Expr, varName string) Expr {
	n, d := NumerDenom(e)
	np, ok1 := AsPoly(n, varName)
	dp, ok2 := AsPoly(d, varName)
	if !ok1 || !ok2 || dp.IsZero() {
		return fraction(Expand(n), Expand(d))
	}
	g := polyGCD(np, dp)
	if g.Degree() > 0 {
		np, _ = np.Div(g)
		dp, _ = dp.Div(g)
	}
	return fraction(np.Expr(), dp.Expr())
}

// fraction builds n/d with the sign moved out of the denominator.
func fraction(n, d Expr) Expr {
	if c, ok := leadingCoeff(Terms(d)[0]); ok && c.IsNegative() {
		n, d = Expand(Neg(n)), Expand(Neg(d))
	}
	return DivOf(n, d)
}

// polyGCD is the Euclidean gcd over the rationals. Polynomials with
// symbolic coefficients report gcd 1.
func polyGCD(a, b *Poly) *Poly {
	if !isRationalPoly(a) || !isRationalPoly(b) {
		return NewPoly([]Expr{N(1)}, a.x)
	}
	for i := 0; i < 64 && !b.IsZero(); i++ {
		_, r := a.Div(b)
		a, b = b, r
	}
	if a.Degree() == 0 {
		return NewPoly([]Expr{N(1)}, a.x)
	}
	return a.Monic()
}
