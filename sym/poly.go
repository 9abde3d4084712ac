package sym

import "sort"

// ============================================================
// Polynomial utilities
// ============================================================

// Poly is a univariate polynomial with symbolic coefficients free of
// the variable. Coefficients are stored from the leading term down.
type Poly struct {
	coeffs []Expr
	x      *Sym
}

// NewPoly builds a polynomial from descending coefficients. Leading
// zeros are dropped.
func NewPoly(coeffs []Expr, x *Sym) *Poly {
	cs := make([]Expr, 0, len(coeffs))
	lead := true
	for _, c := range coeffs {
		c = c.Simplify()
		if lead && IsZero(c) {
			continue
		}
		lead = false
		cs = append(cs, c)
	}
	if len(cs) == 0 {
		cs = []Expr{N(0)}
	}
	return &Poly{coeffs: cs, x: x}
}

// AsPoly reads e as a polynomial in varName. It fails when e has a
// negative or non-integer power of the variable, or when the variable
// appears inside a function.
func AsPoly(e Expr, varName string) (*Poly, bool) {
	byDeg := map[int][]Expr{}
	maxDeg := 0
	for _, t := range Terms(Expand(e)) {
		deg := 0
		var cs []Expr
		for _, f := range Factors(t) {
			d, ok := monomialDegree(f, varName)
			if !ok {
				return nil, false
			}
			if d == 0 {
				cs = append(cs, f)
			}
			deg += d
		}
		byDeg[deg] = append(byDeg[deg], MulOf(cs...))
		if deg > maxDeg {
			maxDeg = deg
		}
	}
	coeffs := make([]Expr, maxDeg+1)
	for d := 0; d <= maxDeg; d++ {
		coeffs[maxDeg-d] = AddOf(byDeg[d]...)
	}
	x, ok := FindSymbol(e, varName)
	if !ok {
		x = ComplexSym(varName)
	}
	return NewPoly(coeffs, x), true
}

func monomialDegree(f Expr, varName string) (int, bool) {
	switch v := f.(type) {
	case *Sym:
		if v.name == varName {
			return 1, true
		}
		return 0, true
	case *Pow:
		if s, ok := v.base.(*Sym); ok && s.name == varName {
			n, ok := v.exp.(*Num)
			if !ok || !n.IsInteger() || n.IsNegative() {
				return 0, false
			}
			k, ok := n.Int64()
			if !ok || k > 1<<16 {
				return 0, false
			}
			return int(k), true
		}
	}
	if Has(f, varName) {
		return 0, false
	}
	return 0, true
}

func (p *Poly) Degree() int     { return len(p.coeffs) - 1 }
func (p *Poly) VarName() string { return p.x.name }
func (p *Poly) Var() *Sym       { return p.x }
func (p *Poly) IsZero() bool    { return len(p.coeffs) == 1 && IsZero(p.coeffs[0]) }

// LC returns the leading coefficient.
func (p *Poly) LC() Expr { return p.coeffs[0] }

// Coeff returns the coefficient of var^i.
func (p *Poly) Coeff(i int) Expr {
	d := p.Degree()
	if i < 0 || i > d {
		return N(0)
	}
	return p.coeffs[d-i]
}

// Coeffs returns the coefficients from the leading term down.
func (p *Poly) Coeffs() []Expr { return append([]Expr(nil), p.coeffs...) }

// Expr rebuilds the polynomial as an expression.
func (p *Poly) Expr() Expr {
	x := p.x
	d := p.Degree()
	terms := make([]Expr, 0, len(p.coeffs))
	for i, c := range p.coeffs {
		terms = append(terms, MulOf(c, PowOf(x, N(int64(d-i)))))
	}
	return AddOf(terms...)
}

func (p *Poly) String() string { return p.Expr().String() }

// Eval evaluates the polynomial at x with Horner's scheme.
func (p *Poly) Eval(x Expr) Expr {
	acc := Expr(N(0))
	for _, c := range p.coeffs {
		acc = AddOf(MulOf(acc, x), c)
	}
	return Expand(acc)
}

// Diff returns the derivative polynomial.
func (p *Poly) Diff() *Poly {
	d := p.Degree()
	if d == 0 {
		return NewPoly([]Expr{N(0)}, p.x)
	}
	out := make([]Expr, d)
	for i := 0; i < d; i++ {
		out[i] = MulOf(N(int64(d-i)), p.coeffs[i])
	}
	return NewPoly(out, p.x)
}

// Scale multiplies every coefficient by c.
func (p *Poly) Scale(c Expr) *Poly {
	out := make([]Expr, len(p.coeffs))
	for i, x := range p.coeffs {
		out[i] = Expand(MulOf(c, x))
	}
	return NewPoly(out, p.x)
}

// Monic divides through by the leading coefficient.
func (p *Poly) Monic() *Poly { return p.Scale(PowOf(p.LC(), N(-1))) }

// Mul multiplies two polynomials in the same variable.
func (p *Poly) Mul(q *Poly) *Poly {
	out := make([]Expr, len(p.coeffs)+len(q.coeffs)-1)
	for i := range out {
		out[i] = N(0)
	}
	for i, a := range p.coeffs {
		for j, b := range q.coeffs {
			out[i+j] = AddOf(out[i+j], MulOf(a, b))
		}
	}
	for i := range out {
		out[i] = Expand(out[i])
	}
	return NewPoly(out, p.x)
}

// Div divides p by q, returning quotient and remainder with
// deg(rem) < deg(q). Coefficients are expanded after every step so that
// symbolic cancellation is exact.
func (p *Poly) Div(q *Poly) (quo, rem *Poly) {
	if q.IsZero() {
		panic("sym: polynomial division by zero")
	}
	r := append([]Expr(nil), p.coeffs...)
	dq := q.Degree()
	if len(r)-1 < dq {
		return NewPoly([]Expr{N(0)}, p.x), NewPoly(r, p.x)
	}
	lcInv := PowOf(q.LC(), N(-1))
	out := make([]Expr, len(r)-dq)
	for i := range out {
		c := Expand(MulOf(r[i], lcInv))
		out[i] = c
		if IsZero(c) {
			continue
		}
		for j, qc := range q.coeffs {
			r[i+j] = Expand(SubOf(r[i+j], MulOf(c, qc)))
		}
	}
	return NewPoly(out, p.x), NewPoly(r[len(out):], p.x)
}

// Degree returns the degree of expr in varName, or -1 when expr is not a
// polynomial in it.
func Degree(expr Expr, varName string) int {
	p, ok := AsPoly(expr, varName)
	if !ok {
		return -1
	}
	if p.IsZero() {
		return 0
	}
	return p.Degree()
}

type PolyCoeffsResult map[int]Expr

// PolyCoeffs maps each power of varName to its coefficient. Zero
// coefficients are omitted.
func PolyCoeffs(expr Expr, varName string) PolyCoeffsResult {
	result := PolyCoeffsResult{}
	p, ok := AsPoly(expr, varName)
	if !ok {
		return result
	}
	for i := 0; i <= p.Degree(); i++ {
		if c := p.Coeff(i); !IsZero(c) {
			result[i] = c
		}
	}
	return result
}

// Collect groups terms by powers of varName.
func Collect(expr Expr, varName string) Expr {
	coeffs := PolyCoeffs(expr, varName)
	if len(coeffs) == 0 {
		return expr.Simplify()
	}
	degrees := make([]int, 0, len(coeffs))
	for d := range coeffs {
		degrees = append(degrees, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degrees)))
	x, ok := FindSymbol(expr, varName)
	if !ok {
		return expr.Simplify()
	}
	terms := make([]Expr, 0, len(degrees))
	for _, d := range degrees {
		terms = append(terms, MulOf(coeffs[d], PowOf(x, N(int64(d)))))
	}
	return AddOf(terms...)
}
