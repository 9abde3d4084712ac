package laplace

import (
	"github.com/njchilds90/golaplace/sym"
)

// checkDelay rejects a time advance, which no causal signal can have.
func (c Context) checkDelay(e, delay sym.Expr) error {
	if sym.SignOf(delay) == sym.SignNegative {
		return c.fail(KindCausalityViolation, e, "time advance %s", sym.Neg(delay))
	}
	return nil
}

// applyDelay shifts a term's response by its delay T and gates it with
// u(t - T). The response is only known for t >= T, so a delayed term is
// treated as causal. Without a delay a causal context gates the general
// part with u(t).
func (c Context) applyDelay(e sym.Expr, r Result, delay sym.Expr) (Result, error) {
	t, tn := c.TimeVar, c.TimeVar.Name()
	if sym.IsZero(delay) {
		if c.Causal {
			return causal(sym.AddOf(r.Causal, sym.MulOf(r.General, sym.StepOf(t)))), nil
		}
		return r, nil
	}
	if err := c.checkDelay(e, delay); err != nil {
		return Result{}, err
	}
	if !c.Causal {
		c.note(DiagAssumedCausal, e, "assuming causal expression")
	}
	if sym.SignOf(delay) == sym.SignUnknown {
		c.note(DiagAmbiguousSign, delay, "assuming %s is non-negative", delay)
	}
	shifted := sym.SubOf(t, delay)
	cr := r.Causal.Sub(tn, shifted).Simplify()
	ur := r.General.Sub(tn, shifted).Simplify()
	return causal(sym.AddOf(cr, sym.MulOf(ur, sym.StepOf(shifted)))), nil
}

// finish applies the caller's assumptions to a complete inverse result.
// A dc result must not depend on t and an ac result must hold no
// impulses; otherwise, unless the signal is known to be causal, the
// result only holds for t >= 0.
func (c Context) finish(e sym.Expr, r Result) (sym.Expr, error) {
	t := c.TimeVar
	result := r.Sum()
	switch {
	case c.DC:
		if sym.Has(result, t.Name()) {
			return nil, c.fail(KindUnsupportedShape, e, "expecting a dc result, got %s", result)
		}
	case c.AC:
		if !sym.IsZero(r.Causal) {
			return nil, c.fail(KindUnsupportedShape, e, "expecting an ac result, got impulses %s", r.Causal)
		}
	case !c.Causal:
		result = sym.PiecewiseOf(sym.Piece{Value: result, Cond: sym.Ge(t, sym.N(0))})
	}
	return result, nil
}
