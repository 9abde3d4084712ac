package sym

import (
	"math"
	"math/big"
)

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct {
	base, exp Expr
	done      bool
}

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	if p.done {
		return p
	}
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	// 0^0 is indeterminate and 0^negative is a division by zero.
	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if expIsNum && !en.IsPositive() {
			return &Pow{base: base, exp: exp, done: true}
		}
		return N(0)
	}
	if IsOne(base) {
		return N(1)
	}

	if bn, ok := base.(*Num); ok && expIsNum {
		if e, ok := en.Int64(); ok && e >= -256 && e <= 256 {
			return numPowInt(bn, e)
		}
		if !en.IsInteger() {
			if r := numRoot(bn, en); r != nil {
				return r
			}
		}
	}

	if c, ok := base.(*Const); ok && c.name == I.name && expIsNum {
		if e, ok := en.Int64(); ok {
			switch ((e % 4) + 4) % 4 {
			case 0:
				return N(1)
			case 1:
				return I
			case 2:
				return N(-1)
			default:
				return &Mul{factors: []Expr{N(-1), I}, done: true}
			}
		}
	}

	switch b := base.(type) {
	case *Pow:
		if foldablePow(b, exp) {
			return PowOf(b.base, MulOf(b.exp, exp))
		}
	case *Mul:
		if expIsNum && en.IsInteger() {
			fs := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				fs[i] = PowOf(f, exp)
			}
			return MulOf(fs...)
		}
		var pos, rest []Expr
		for _, f := range b.factors {
			if SignOf(f) == SignPositive {
				pos = append(pos, f)
			} else {
				rest = append(rest, f)
			}
		}
		if len(pos) > 0 {
			fs := make([]Expr, 0, len(pos)+1)
			for _, f := range pos {
				fs = append(fs, PowOf(f, exp))
			}
			if len(rest) > 0 {
				fs = append(fs, PowOf(MulOf(rest...), exp))
			}
			return MulOf(fs...)
		}
	case *Func:
		if b.name == "exp" && ((expIsNum && en.IsInteger()) || IsReal(b.arg)) {
			return ExpOf(MulOf(exp, b.arg))
		}
	}
	return &Pow{base: base, exp: exp, done: true}
}

// foldablePow reports whether (x^a)^b may be rewritten as x^(a*b) on the
// principal branch.
func foldablePow(inner *Pow, b Expr) bool {
	if bn, ok := b.(*Num); ok && bn.IsInteger() {
		return true
	}
	if SignOf(inner.base) == SignPositive {
		return true
	}
	if an, ok := inner.exp.(*Num); ok {
		return numCmp(numAbs(an), N(1)) <= 0
	}
	return false
}

// numRoot evaluates base^(p/q) exactly where possible. Perfect powers are
// extracted and the denominator is rationalised, so 8^(1/2) becomes
// 2*2^(1/2) and (1/2)^(1/2) becomes 2^(1/2)/2. Square roots of negative
// numbers pick up the imaginary unit.
func numRoot(base, exp *Num) Expr {
	p := exp.val.Num()
	q := exp.val.Denom()
	if !p.IsInt64() || !q.IsInt64() {
		return nil
	}
	pi, qi := p.Int64(), q.Int64()
	if base.IsNegative() {
		if qi != 2 {
			return nil
		}
		r := numRoot(numNeg(base), exp)
		if r == nil {
			r = &Pow{base: numNeg(base), exp: exp, done: true}
		}
		return MulOf(PowOf(I, N(pi)), r)
	}
	// base^(p/q) = base^k * base^(r/q) with 0 <= r < q.
	k := floorDiv(pi, qi)
	r := pi - k*qi
	whole := numPowInt(base, k)
	if r == 0 {
		return whole
	}
	x := numPowInt(base, r)
	// x^(1/q) = (A*B^(q-1))^(1/q) / B for x = A/B.
	a := new(big.Int).Set(x.val.Num())
	b := new(big.Int).Set(x.val.Denom())
	c := new(big.Int).Mul(a, new(big.Int).Exp(b, big.NewInt(qi-1), nil))
	d, m, ok := extractPower(c, qi)
	if !ok {
		return nil
	}
	outer := numMul(whole, &Num{val: new(big.Rat).SetFrac(d, b)})
	if m.Cmp(big.NewInt(1)) == 0 {
		return outer
	}
	root := &Pow{base: &Num{val: new(big.Rat).SetInt(m)}, exp: F(1, qi), done: true}
	if outer.IsOne() {
		return root
	}
	return &Mul{factors: []Expr{outer, root}, done: true}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// extractPower writes c = d^q * m with m free of q-th powers, by trial
// division. Large inputs are rejected.
func extractPower(c *big.Int, q int64) (d, m *big.Int, ok bool) {
	if c.Sign() <= 0 || c.BitLen() > 62 {
		return nil, nil, false
	}
	n := c.Int64()
	dv, mv := int64(1), int64(1)
	for f := int64(2); f*f <= n; f++ {
		count := int64(0)
		for n%f == 0 {
			n /= f
			count++
		}
		for i := int64(0); i < count/q; i++ {
			dv *= f
		}
		for i := int64(0); i < count%q; i++ {
			mv *= f
		}
	}
	mv *= n
	return big.NewInt(dv), big.NewInt(mv), true
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	expStr := p.exp.String()
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	case *Num:
		if b.IsNegative() || !b.IsInteger() {
			baseStr = "(" + baseStr + ")"
		}
	}
	switch e := p.exp.(type) {
	case *Num:
		if !e.IsInteger() {
			expStr = "(" + expStr + ")"
		}
	case *Sym, *Const:
	default:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if e, ok := p.exp.(*Num); ok && e.Equal(F(1, 2)) {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	expStr := p.exp.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + expStr + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if IsZero(dv) {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if IsZero(du) {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if ok1 && ok2 {
		bf, _ := b.val.Float64()
		ef, _ := e.val.Float64()
		pf := math.Pow(bf, ef)
		if math.IsNaN(pf) || math.IsInf(pf, 0) {
			return nil, false
		}
		return NFloat(pf), true
	}
	return nil, false
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }
