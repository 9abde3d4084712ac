package laplace

import "github.com/njchilds90/golaplace/sym"

// Result is an inverse-transform response split by what is known about
// it for t < 0. Causal holds impulses, their derivatives and step-gated
// components; General holds the part whose behaviour before the origin
// is undetermined. Forward transforms only use General.
type Result struct {
	Causal  sym.Expr
	General sym.Expr
}

func zeroResult() Result { return Result{Causal: sym.N(0), General: sym.N(0)} }

func general(e sym.Expr) Result { return Result{Causal: sym.N(0), General: e} }

func causal(e sym.Expr) Result { return Result{Causal: e, General: sym.N(0)} }

func (r Result) add(o Result) Result {
	return Result{Causal: sym.AddOf(r.Causal, o.Causal), General: sym.AddOf(r.General, o.General)}
}

func (r Result) scale(k sym.Expr) Result {
	return Result{Causal: sym.MulOf(k, r.Causal), General: sym.MulOf(k, r.General)}
}

// Sum returns Causal + General.
func (r Result) Sum() sym.Expr { return sym.AddOf(r.Causal, r.General) }

// Pole is a root of a response denominator.
type Pole struct {
	Value        sym.Expr `json:"-"`
	Re, Im       sym.Expr `json:"-"`
	Multiplicity int      `json:"multiplicity"`
	Conjugate    sym.Expr `json:"-"`
	Ambiguous    bool     `json:"ambiguous,omitempty"`
}

func poleFromRoot(r sym.Root) Pole {
	return Pole{Value: r.Value, Re: r.Re, Im: r.Im, Multiplicity: r.Mult, Conjugate: r.Conj, Ambiguous: r.Ambiguous}
}

// Poles returns the poles of the rational function F in the variable s.
func Poles(F sym.Expr, s *sym.Sym, hint sym.Damping) ([]Pole, error) {
	_, den := sym.NumerDenom(F)
	roots, err := sym.Roots(den, s.Name(), hint)
	if err != nil {
		return nil, &Error{Kind: KindSubstrate, Direction: Inverse, Expr: F, Err: err}
	}
	out := make([]Pole, len(roots))
	for i, r := range roots {
		out[i] = poleFromRoot(r)
	}
	return out, nil
}
