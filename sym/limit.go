package sym

import "math"

// ============================================================
// Limits
// ============================================================

// LimitResult holds the result of a limit computation.
type LimitResult struct {
	Value   Expr
	Success bool
	Error   string
}

// Limit computes lim_{varName -> point} expr.
// Tries direct substitution, L'Hôpital (0/0), then Taylor expansion.
func Limit(expr Expr, varName string, point Expr) LimitResult {
	return limitRecursive(expr, varName, point, 5)
}

func limitRecursive(expr Expr, varName string, point Expr, maxLhopital int) LimitResult {
	expr = expr.Simplify()
	subbed := expr.Sub(varName, point).Simplify()
	if isFinite(subbed) {
		if v, ok := subbed.Eval(); ok {
			f, _ := v.val.Float64()
			if !math.IsNaN(f) && !math.IsInf(f, 0) {
				return LimitResult{Value: subbed, Success: true}
			}
		}
		if !Has(subbed, varName) {
			return LimitResult{Value: subbed, Success: true}
		}
	}
	if maxLhopital > 0 {
		num, denom := NumerDenom(expr)
		if !IsOne(denom) {
			numAtPoint := Expand(num.Sub(varName, point))
			denAtPoint := Expand(denom.Sub(varName, point))
			if IsZero(numAtPoint) && IsZero(denAtPoint) {
				dNum := Diff(num, varName)
				dDen := Diff(denom, varName)
				return limitRecursive(DivOf(dNum, dDen), varName, point, maxLhopital-1)
			}
			if !IsZero(denAtPoint) && isFinite(numAtPoint) && isFinite(denAtPoint) {
				return LimitResult{Value: DivOf(numAtPoint, denAtPoint), Success: true}
			}
		}
	}
	if _, ok := point.Eval(); ok {
		series := TaylorSeries(expr, varName, point, 4)
		subSeries := series.Sub(varName, point).Simplify()
		if isFinite(subSeries) {
			if v, ok2 := subSeries.Eval(); ok2 {
				f, _ := v.val.Float64()
				if !math.IsNaN(f) && !math.IsInf(f, 0) {
					return LimitResult{Value: subSeries, Success: true}
				}
			}
		}
	}
	return LimitResult{
		Error:   "limit could not be determined: " + expr.String() + " as " + varName + " -> " + point.String(),
		Success: false,
	}
}

// isFinite reports whether e is free of infinities and divisions by zero.
func isFinite(e Expr) bool {
	return !Contains(e, func(x Expr) bool {
		if c, ok := x.(*Const); ok && c.name == Inf.name {
			return true
		}
		p, ok := x.(*Pow)
		if !ok || !IsZero(p.base) {
			return false
		}
		n, isNum := p.exp.(*Num)
		return !isNum || !n.IsPositive()
	})
}

// ============================================================
// Taylor series
// ============================================================

func TaylorSeries(expr Expr, varName string, a Expr, order int) Expr {
	x, ok := FindSymbol(expr, varName)
	if !ok {
		return expr.Simplify()
	}
	terms := []Expr{}
	current := expr
	fact := N(1)
	for k := 0; k <= order; k++ {
		if k > 0 {
			fact = numMul(fact, N(int64(k)))
		}
		coeff := MulOf(current.Sub(varName, a), PowOf(fact, N(-1)))
		if IsZero(coeff) {
			current = Diff(current, varName)
			continue
		}
		terms = append(terms, MulOf(coeff, PowOf(SubOf(x, a), N(int64(k)))))
		current = Diff(current, varName)
	}
	return AddOf(terms...)
}
