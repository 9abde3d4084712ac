package sym

// ============================================================
// Top-level helpers
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

// ============================================================
// Traversal
// ============================================================

// Children returns the direct sub-expressions of e.
func Children(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return v.terms
	case *Mul:
		return v.factors
	case *Pow:
		return []Expr{v.base, v.exp}
	case *Func:
		return []Expr{v.arg}
	case *Step:
		return []Expr{v.arg}
	case *Delta:
		return []Expr{v.arg, v.order}
	case *Applied:
		return []Expr{v.arg}
	case *Derivative:
		return []Expr{v.expr}
	case *Integral:
		return []Expr{v.integrand, v.lower, v.upper}
	case *Lim:
		return []Expr{v.expr, v.point}
	case *Piecewise:
		out := []Expr{}
		for _, pc := range v.pieces {
			out = append(out, pc.Value)
			if pc.Cond.Op != "true" {
				out = append(out, pc.Cond.Lhs, pc.Cond.Rhs)
			}
		}
		return out
	}
	return nil
}

// Walk visits e and its sub-expressions in pre-order. Returning false
// from fn skips the children of the visited node.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// Contains reports whether any sub-expression satisfies pred.
func Contains(e Expr, pred func(Expr) bool) bool {
	found := false
	Walk(e, func(x Expr) bool {
		if found {
			return false
		}
		if pred(x) {
			found = true
			return false
		}
		return true
	})
	return found
}

// Map rebuilds e bottom-up, replacing every node with fn(node).
func Map(e Expr, fn func(Expr) Expr) Expr {
	var out Expr
	switch v := e.(type) {
	case *Add:
		ts := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			ts[i] = Map(t, fn)
		}
		out = AddOf(ts...)
	case *Mul:
		fs := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			fs[i] = Map(f, fn)
		}
		out = MulOf(fs...)
	case *Pow:
		out = PowOf(Map(v.base, fn), Map(v.exp, fn))
	case *Func:
		out = FuncOf(v.name, Map(v.arg, fn))
	case *Step:
		out = StepOf(Map(v.arg, fn))
	case *Delta:
		out = DeltaN(Map(v.arg, fn), Map(v.order, fn))
	case *Applied:
		out = Fn(v.name, Map(v.arg, fn))
	case *Derivative:
		out = DerivativeOf(Map(v.expr, fn), v.varName, v.order)
	case *Integral:
		out = IntegralOf(Map(v.integrand, fn), v.varName, Map(v.lower, fn), Map(v.upper, fn))
	case *Lim:
		out = LimOf(Map(v.expr, fn), v.varName, Map(v.point, fn), v.dir)
	case *Piecewise:
		ps := make([]Piece, len(v.pieces))
		for i, pc := range v.pieces {
			c := pc.Cond
			if c.Op != "true" {
				c = Cond{Lhs: Map(c.Lhs, fn), Op: c.Op, Rhs: Map(c.Rhs, fn)}
			}
			ps[i] = Piece{Value: Map(pc.Value, fn), Cond: c}
		}
		out = PiecewiseOf(ps...)
	default:
		out = e
	}
	return fn(out)
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Integral:
		inner := map[string]struct{}{}
		collectSymbols(v.integrand, inner)
		delete(inner, v.varName)
		for k := range inner {
			out[k] = struct{}{}
		}
		collectSymbols(v.lower, out)
		collectSymbols(v.upper, out)
	case *Lim:
		inner := map[string]struct{}{}
		collectSymbols(v.expr, inner)
		delete(inner, v.varName)
		for k := range inner {
			out[k] = struct{}{}
		}
		collectSymbols(v.point, out)
	default:
		for _, c := range Children(e) {
			collectSymbols(c, out)
		}
	}
}

// Has reports whether varName occurs free in e.
func Has(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// HasType reports whether e contains a node of the given kind, one of
// "step", "delta", "applied", "derivative", "integral", "limit", "piecewise", or
// a function name such as "exp" or "sin".
func HasType(e Expr, kind string) bool {
	return Contains(e, func(x Expr) bool {
		if x.exprType() == kind {
			return true
		}
		f, ok := x.(*Func)
		return ok && f.name == kind
	})
}

// FindSymbol returns the symbol named name in e, if any.
func FindSymbol(e Expr, name string) (*Sym, bool) {
	var found *Sym
	Walk(e, func(x Expr) bool {
		if s, ok := x.(*Sym); ok && s.name == name && found == nil {
			found = s
		}
		return found == nil
	})
	return found, found != nil
}

// ============================================================
// Structure
// ============================================================

// Terms returns the summands of e.
func Terms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.Terms()
	}
	return []Expr{e}
}

// Factors returns the multiplicands of e.
func Factors(e Expr) []Expr {
	if m, ok := e.(*Mul); ok {
		return m.Factors()
	}
	return []Expr{e}
}

// FactorConst splits e into the product of factors free of varName and
// the remaining factors.
func FactorConst(e Expr, varName string) (c, rest Expr) {
	var cs, rs []Expr
	for _, f := range Factors(e) {
		if Has(f, varName) {
			rs = append(rs, f)
		} else {
			cs = append(cs, f)
		}
	}
	return MulOf(cs...), MulOf(rs...)
}

// ScaleShift writes e as scale*var + shift. It fails when e is not
// linear in varName.
func ScaleShift(e Expr, varName string) (scale, shift Expr, ok bool) {
	if s, isSym := e.(*Sym); isSym && s.name == varName {
		return N(1), N(0), true
	}
	p, ok := AsPoly(e, varName)
	if !ok || p.Degree() > 1 {
		return nil, nil, false
	}
	return p.Coeff(1), p.Coeff(0), true
}

// ============================================================
// Expansion
// ============================================================

// Expand distributes products over sums and multiplies out small integer
// powers of sums. Function arguments are left untouched.
func Expand(e Expr) Expr { return expandExpr(e.Simplify()).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		var acc Expr = N(1)
		for _, f := range v.factors {
			acc = distribute(acc, expandExpr(f))
		}
		return acc
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			exp, _ := n.Int64()
			if exp >= 2 && exp <= 12 {
				if _, isAdd := base.(*Add); isAdd {
					result := base
					for i := int64(1); i < exp; i++ {
						result = distribute(result, base)
					}
					return result
				}
			}
		}
		return PowOf(base, v.exp)
	}
	return e
}

// distribute multiplies two expanded expressions term by term. Products
// of two sums must not go through MulOf, which folds them into a power.
func distribute(a, b Expr) Expr {
	as, bs := expandTerms(a), expandTerms(b)
	products := make([]Expr, 0, len(as)*len(bs))
	for _, x := range as {
		for _, y := range bs {
			products = append(products, MulOf(x, y))
		}
	}
	return AddOf(products...)
}

func expandTerms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Deep Simplification and Trig Identities
// ============================================================

// TrigSimplify applies sin²+cos²=1 on top of the canonical rules.
func TrigSimplify(e Expr) Expr {
	return Map(e.Simplify(), trigFindPythagorean)
}

func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	type trigTerm struct {
		funcName string
		argStr   string
		coeff    *Num
		idx      int
	}
	var trigTerms []trigTerm
	for idx, t := range add.terms {
		coeff, inner := splitCoeff(t)
		if p, ok2 := inner.(*Pow); ok2 {
			if fn, ok3 := p.base.(*Func); ok3 && isNumEqual(p.exp, 2) {
				if fn.name == "sin" || fn.name == "cos" {
					trigTerms = append(trigTerms, trigTerm{fn.name, fn.arg.String(), coeff, idx})
				}
			}
		}
	}
	for i := 0; i < len(trigTerms); i++ {
		for j := i + 1; j < len(trigTerms); j++ {
			ti, tj := trigTerms[i], trigTerms[j]
			if ti.argStr == tj.argStr && ti.funcName != tj.funcName && numCmp(ti.coeff, tj.coeff) == 0 {
				newTerms := []Expr{}
				for idx, t := range add.terms {
					if idx != ti.idx && idx != tj.idx {
						newTerms = append(newTerms, t)
					}
				}
				newTerms = append(newTerms, ti.coeff)
				return trigFindPythagorean(AddOf(newTerms...))
			}
		}
	}
	return e
}

// DeepSimplify applies repeated simplification and trig passes until
// the output is stable.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		str := curr.String()
		if str == prev {
			break
		}
		prev = str
		curr = TrigSimplify(curr)
	}
	return curr
}
