package laplace

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/njchilds90/golaplace/sym"
)

// RoundTripSuite checks that ILT(LT(f)) reproduces f for causal signals.
type RoundTripSuite struct {
	suite.Suite
	tr *Transformer
}

func (s *RoundTripSuite) SetupTest() {
	s.tr = New()
}

// roundTrip transforms f forward and back and returns both images.
func (s *RoundTripSuite) roundTrip(f sym.Expr) (F, back sym.Expr) {
	fwd, err := s.tr.LT(ctxBG, f, tt, ss)
	s.Require().NoError(err, "LT(%s)", f)
	inv, err := s.tr.ILT(ctxBG, fwd.Expr, ss, tt, Causal())
	s.Require().NoError(err, "ILT(%s)", fwd.Expr)
	return fwd.Expr, inv.Expr
}

// requireSameSignal compares f and g at a few instants on both sides of
// the origin.
func (s *RoundTripSuite) requireSameSignal(f, g sym.Expr, env map[string]complex128) {
	for _, x := range []float64{-1, 0.5, 1.5, 3} {
		at := map[string]complex128{"t": complex(x, 0)}
		for k, v := range env {
			at[k] = v
		}
		want, err := sym.Evalf(f, at)
		s.Require().NoError(err)
		got, err := sym.Evalf(g, at)
		s.Require().NoError(err, "evaluating %s", g)
		s.InDelta(real(want), real(got), tol, "%s vs %s at t=%v", f, g, x)
		s.InDelta(imag(want), imag(got), tol, "%s vs %s at t=%v", f, g, x)
	}
}

func (s *RoundTripSuite) TestStep() {
	u := sym.StepOf(tt)
	_, back := s.roundTrip(u)
	s.requireSameSignal(u, back, nil)
}

func (s *RoundTripSuite) TestRamp() {
	f := sym.MulOf(tt, sym.StepOf(tt))
	_, back := s.roundTrip(f)
	s.requireSameSignal(f, back, nil)
}

func (s *RoundTripSuite) TestDecay() {
	a := sym.S("a")
	f := sym.MulOf(sym.ExpOf(sym.Neg(sym.MulOf(a, tt))), sym.StepOf(tt))
	_, back := s.roundTrip(f)
	s.requireSameSignal(f, back, map[string]complex128{"a": 1.5})
}

func (s *RoundTripSuite) TestCosine() {
	f := sym.MulOf(sym.CosOf(sym.MulOf(n(2), tt)), sym.StepOf(tt))
	_, back := s.roundTrip(f)
	s.requireSameSignal(f, back, nil)
}

func (s *RoundTripSuite) TestImpulse() {
	F, back := s.roundTrip(sym.DeltaOf(tt))
	s.True(sym.IsOne(F), "got %s", F)
	s.True(sym.DeltaOf(tt).Equal(back), "got %s", back)
}

func (s *RoundTripSuite) TestDelayedImpulse() {
	f := sym.DeltaOf(sym.SubOf(tt, n(2)))
	_, back := s.roundTrip(f)
	s.True(f.Equal(back) || f.String() == back.String(), "want %s, got %s", f, back)
}

func (s *RoundTripSuite) TestSymbolicDelayedImpulse() {
	tau := sym.S("tau")
	f := sym.DeltaOf(sym.SubOf(tt, tau))
	F, back := s.roundTrip(f)
	s.True(sym.Has(F, "tau"), "got %s", F)
	s.True(f.Equal(back) || f.String() == back.String(), "want %s, got %s", f, back)
}

func TestRoundTripSuite(t *testing.T) {
	suite.Run(t, new(RoundTripSuite))
}
