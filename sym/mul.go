package sym

import (
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct {
	factors []Expr
	done    bool
}

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// DivOf returns a / b.
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// Simplify flattens nested products, folds the rational coefficient,
// merges powers of equal bases, merges exponentials and reduces powers
// of the imaginary unit. Merging can expose new foldable factors, so the
// pass repeats until nothing changes.
func (m *Mul) Simplify() Expr {
	if m.done {
		return m
	}
	factors := m.factors
	for pass := 0; ; pass++ {
		out, changed := mulPass(factors)
		if IsZero(out[0]) {
			return N(0)
		}
		if !changed || pass >= 8 {
			return finishMul(out)
		}
		factors = out
	}
}

type powGroup struct {
	base  Expr
	exps  []Expr
	first Expr
}

// mulPass returns the coefficient followed by the merged factors.
func mulPass(factors []Expr) ([]Expr, bool) {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	iPow := int64(0)
	var expArgs []Expr
	var firstExp Expr
	groups := map[string]*powGroup{}
	order := []string{}
	addGroup := func(base, exp, orig Expr) {
		key := base.String()
		g, ok := groups[key]
		if !ok {
			g = &powGroup{base: base, first: orig}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	for _, f := range flat {
		switch v := f.(type) {
		case *Num:
			if v.IsZero() {
				return []Expr{N(0)}, false
			}
			coeff = numMul(coeff, v)
		case *Const:
			if v.name == I.name {
				iPow++
				continue
			}
			addGroup(v, N(1), v)
		case *Func:
			if v.name == "exp" {
				expArgs = append(expArgs, v.arg)
				firstExp = v
				continue
			}
			addGroup(v, N(1), v)
		case *Pow:
			if c, ok := v.base.(*Const); ok && c.name == I.name {
				if n, ok := v.exp.(*Num); ok {
					if k, ok := n.Int64(); ok {
						iPow += k
						continue
					}
				}
			}
			addGroup(v.base, v.exp, v)
		default:
			addGroup(f, N(1), f)
		}
	}
	changed := false
	out := []Expr{coeff}
	for _, key := range order {
		g := groups[key]
		if len(g.exps) == 1 {
			out = append(out, g.first)
			continue
		}
		changed = true
		out = append(out, PowOf(g.base, AddOf(g.exps...)))
	}
	switch len(expArgs) {
	case 0:
	case 1:
		out = append(out, firstExp)
	default:
		changed = true
		out = append(out, ExpOf(AddOf(expArgs...)))
	}
	switch ((iPow % 4) + 4) % 4 {
	case 1:
		out = append(out, I)
	case 2:
		out[0] = numNeg(coeff)
	case 3:
		out[0] = numNeg(coeff)
		out = append(out, I)
	}
	for _, f := range out[1:] {
		switch f.(type) {
		case *Num, *Mul:
			changed = true
		}
	}
	return out, changed
}

func finishMul(out []Expr) Expr {
	coeff := out[0].(*Num)
	others := make([]Expr, 0, len(out)-1)
	for _, f := range out[1:] {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		others = append(others, f)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, 0, len(ks)+1)
	if !coeff.IsOne() {
		sorted = append(sorted, coeff)
	}
	for i := range ks {
		sorted = append(sorted, ks[i].e)
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	return &Mul{factors: sorted, done: true}
}

// splitFraction separates factors with negative numeric exponents so a
// product prints as a fraction.
func (m *Mul) splitFraction() (neg bool, num, den []Expr) {
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			r := v.Rat()
			if r.Sign() < 0 {
				neg = true
				r.Neg(r)
			}
			if r.Num().Cmp(big.NewInt(1)) != 0 {
				num = append(num, &Num{val: new(big.Rat).SetInt(r.Num())})
			}
			if !r.IsInt() {
				den = append(den, &Num{val: new(big.Rat).SetInt(r.Denom())})
			}
			continue
		case *Pow:
			if e, ok := v.exp.(*Num); ok && e.IsNegative() {
				den = append(den, PowOf(v.base, numNeg(e)))
				continue
			}
		}
		num = append(num, f)
	}
	return neg, num, den
}

func wrapFactor(f Expr, s string) string {
	switch f.(type) {
	case *Add:
		return "(" + s + ")"
	}
	return s
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	neg, num, den := m.splitFraction()
	join := func(fs []Expr) string {
		parts := make([]string, len(fs))
		for i, f := range fs {
			parts[i] = wrapFactor(f, f.String())
		}
		return strings.Join(parts, "*")
	}
	out := "1"
	if len(num) > 0 {
		out = join(num)
	}
	if len(den) > 0 {
		d := join(den)
		if len(den) > 1 {
			d = "(" + d + ")"
		}
		out += "/" + d
	}
	if neg {
		out = "-" + out
	}
	return out
}

func (m *Mul) LaTeX() string {
	neg, num, den := m.splitFraction()
	join := func(fs []Expr) string {
		parts := make([]string, len(fs))
		for i, f := range fs {
			if _, isAdd := f.(*Add); isAdd && len(fs) > 1 {
				parts[i] = "\\left(" + f.LaTeX() + "\\right)"
			} else {
				parts[i] = f.LaTeX()
			}
		}
		return strings.Join(parts, " ")
	}
	out := "1"
	if len(num) > 0 {
		out = join(num)
	}
	if len(den) > 0 {
		out = "\\frac{" + out + "}{" + join(den) + "}"
	}
	if neg {
		out = "-" + out
	}
	return out
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }
