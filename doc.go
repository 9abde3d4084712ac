// Package laplace computes unilateral Laplace transforms and their
// inverses over the expression trees of package sym.
//
// The forward transform uses the lower limit 0-, so an impulse at the
// origin maps to 1, and unknown functions v(t) map to V(s). The inverse
// transform synthesises rational functions from their poles and
// residues, applies the time-shift theorem to exp(-T*s) factors and
// reads products of unknown functions as derivatives, running integrals
// or convolutions.
//
// Basic usage:
//
//	t, s := sym.RealSym("t"), sym.ComplexSym("s")
//	tr := laplace.New()
//	out, err := tr.ILT(ctx, sym.DivOf(sym.N(1), sym.AddOf(s, sym.N(2))), s, t, laplace.Causal())
//	// out.Expr: exp(-2*t)*u(t)
//
// Failures are *Error values matching one of the Err* sentinels through
// errors.Is. Non-fatal assumptions made along the way are returned in
// Output.Diagnostics.
package laplace
