package laplace

import (
	"log/slog"

	"github.com/njchilds90/golaplace/sym"
)

// rule is one entry of a direction's ordered rule list. A nil match
// accepts every term.
type rule[T any] struct {
	name  string
	match func(Context, sym.Expr) bool
	apply func(Context, sym.Expr) (T, error)
}

// firstMatch tries the rules in order. A rule failing with a recoverable
// error hands over to the next matching rule; any other error ends the
// search. When every rule fails the first failure is reported, since it
// came from the most specific rule.
func firstMatch[T any](c Context, e sym.Expr, rules []rule[T]) (T, error) {
	var zero T
	var first error
	for _, r := range rules {
		if r.match != nil && !r.match(c, e) {
			continue
		}
		out, err := r.apply(c, e)
		if err == nil {
			return out, nil
		}
		if !recoverable(err) {
			return zero, err
		}
		c.call.logger.Debug("rule fell through",
			slog.String("direction", c.dir.String()),
			slog.String("rule", r.name),
			slog.String("expr", e.String()),
			slog.String("error", err.Error()),
		)
		if first == nil {
			first = err
		}
	}
	if first == nil {
		first = c.fail(KindUnsupportedShape, e, "no rule applies")
	}
	return zero, first
}

// linear is the classifier skeleton shared by both directions: a
// conditional gated on v >= 0 is replaced by its branch, the factor free
// of v is pulled out, and sums are transformed term by term.
func (c Context) linear(e sym.Expr, split func(sym.Expr) []sym.Expr, term func(Context, sym.Expr) (Result, error)) (Result, error) {
	c, err := c.enter(e)
	if err != nil {
		return Result{}, err
	}
	v := c.variable()
	e = stripCausalPiecewise(e, v)
	k, rest := sym.FactorConst(e, v.Name())
	if sym.IsZero(k) {
		return zeroResult(), nil
	}
	terms := split(rest)
	if len(terms) == 1 {
		r, err := term(c, rest)
		if err != nil {
			return Result{}, err
		}
		return r.scale(k), nil
	}
	acc := zeroResult()
	for _, t := range terms {
		r, err := c.linear(t, split, term)
		if err != nil {
			return Result{}, err
		}
		acc = acc.add(r)
	}
	return acc.scale(k), nil
}

// expandedTerms splits e into the terms of its structural expansion.
func expandedTerms(e sym.Expr) []sym.Expr { return sym.Terms(sym.Expand(e)) }

// stripCausalPiecewise returns the first branch of a conditional whose
// first condition is v >= 0.
func stripCausalPiecewise(e sym.Expr, v *sym.Sym) sym.Expr {
	pw, ok := e.(*sym.Piecewise)
	if !ok {
		return e
	}
	pieces := pw.Pieces()
	if len(pieces) == 0 || len(pieces) > 2 {
		return e
	}
	c := pieces[0].Cond
	switch {
	case c.Op == ">=" && c.Lhs.Equal(v) && sym.IsZero(c.Rhs):
		return pieces[0].Value
	case c.Op == "<=" && c.Rhs.Equal(v) && sym.IsZero(c.Lhs):
		return pieces[0].Value
	}
	return e
}

// hasKind matches terms containing a node of the given kind.
func hasKind(kind string) func(Context, sym.Expr) bool {
	return func(_ Context, e sym.Expr) bool { return sym.HasType(e, kind) }
}

// singleArg returns the argument of a one-argument node.
func singleArg(e sym.Expr) (sym.Expr, bool) {
	switch v := e.(type) {
	case *sym.Applied:
		return v.Arg(), true
	case *sym.Func:
		return v.Arg(), true
	case *sym.Step:
		return v.Arg(), true
	case *sym.Delta:
		return v.Arg(), true
	}
	return nil, false
}

// sameExpr compares two expressions up to expansion.
func sameExpr(a, b sym.Expr) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equal(b) || sym.IsZero(sym.Expand(sym.SubOf(a, b)))
}

func isInf(e sym.Expr) bool { return e.Equal(sym.Inf) }
