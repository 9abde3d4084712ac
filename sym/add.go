package sym

import (
	"sort"
	"strings"
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct {
	terms []Expr
	done  bool
}

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// SubOf returns a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

func (a *Add) Simplify() Expr {
	if a.done {
		return a
	}
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	type group struct {
		coeff *Num
		rest  Expr
	}
	numAccum := N(0)
	groups := map[string]*group{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		c, rest := splitCoeff(t)
		key := rest.String()
		g, seen := groups[key]
		if !seen {
			g = &group{coeff: N(0), rest: rest}
			groups[key] = g
			order = append(order, key)
		}
		g.coeff = numAdd(g.coeff, c)
	}
	if g, ok := groups[Inf.name]; ok && !g.coeff.IsZero() {
		if g.coeff.IsPositive() {
			return Inf
		}
		return &Mul{factors: []Expr{N(-1), Inf}, done: true}
	}
	sort.Slice(order, func(i, j int) bool { return termLess(order[i], order[j]) })
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		if g.coeff.IsZero() {
			continue
		}
		result = append(result, scaled(g.coeff, g.rest))
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result, done: true}
}

// termLess orders sum terms so that higher powers print first and the
// output is stable across runs.
func termLess(a, b string) bool {
	da, db := strings.Count(a, "^"), strings.Count(b, "^")
	if da != db {
		return da > db
	}
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a < b
}

// splitCoeff separates the rational coefficient from a canonical term.
func splitCoeff(e Expr) (*Num, Expr) {
	switch v := e.(type) {
	case *Num:
		return v, N(1)
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			rest := v.factors[1:]
			if len(rest) == 1 {
				return c, rest[0]
			}
			return c, &Mul{factors: rest, done: true}
		}
	}
	return N(1), e
}

// scaled rebuilds c*rest for an already canonical rest.
func scaled(c *Num, rest Expr) Expr {
	if c.IsOne() {
		return rest
	}
	if IsOne(rest) {
		return c
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...), done: true}
	}
	return &Mul{factors: []Expr{c, rest}, done: true}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range a.terms {
		c, rest := splitCoeff(t)
		if i > 0 {
			if c.IsNegative() {
				b.WriteString(" - ")
				b.WriteString(scaled(numNeg(c), rest).String())
				continue
			}
			b.WriteString(" + ")
		}
		b.WriteString(t.String())
	}
	return b.String()
}

func (a *Add) LaTeX() string {
	var b strings.Builder
	for i, t := range a.terms {
		c, rest := splitCoeff(t)
		if i > 0 {
			if c.IsNegative() {
				b.WriteString(" - ")
				b.WriteString(scaled(numNeg(c), rest).LaTeX())
				continue
			}
			b.WriteString(" + ")
		}
		b.WriteString(t.LaTeX())
	}
	return b.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }
