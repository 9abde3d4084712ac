package sym

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"sort"
	"strconv"
)

// ============================================================
// Polynomial roots
// ============================================================

// ErrRoots is returned when the roots of a polynomial cannot be found.
var ErrRoots = errors.New("sym: cannot find polynomial roots")

// Damping tells Roots how to read a quadratic whose discriminant sign is
// unknown.
type Damping string

const (
	DampingUnknown  Damping = ""
	Underdamped     Damping = "under"
	CriticalDamping Damping = "critical"
	Overdamped      Damping = "over"
)

// ParseDamping accepts "", "under", "critical" and "over".
func ParseDamping(s string) (Damping, error) {
	switch d := Damping(s); d {
	case DampingUnknown, Underdamped, CriticalDamping, Overdamped:
		return d, nil
	}
	return DampingUnknown, fmt.Errorf("sym: unknown damping %q", s)
}

// Root is a polynomial root with its multiplicity. Re and Im are set when
// the root separates into real and imaginary parts; Conj is set for
// members of a complex conjugate pair. Ambiguous marks a quadratic pair
// whose discriminant sign could not be decided.
type Root struct {
	Value     Expr
	Re, Im    Expr
	Conj      Expr
	Mult      int
	Ambiguous bool
	Numeric   bool
}

// Roots finds the roots of the polynomial den in varName. Products and
// powers are factored structurally before any expansion, so that
// (s+a)^2*(s^2+w^2) is solved factor by factor.
func Roots(den Expr, varName string, hint Damping) ([]Root, error) {
	var out []Root
	for _, f := range Factors(den.Simplify()) {
		if !Has(f, varName) {
			continue
		}
		base, k := f, 1
		if p, ok := f.(*Pow); ok {
			n, isNum := p.exp.(*Num)
			if !isNum || !n.IsInteger() || !n.IsPositive() {
				return nil, fmt.Errorf("%w: %s is not a polynomial factor", ErrRoots, f)
			}
			kk, _ := n.Int64()
			base, k = p.base, int(kk)
		}
		poly, ok := AsPoly(base, varName)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not polynomial in %s", ErrRoots, base, varName)
		}
		rs, err := PolyRoots(poly, hint)
		if err != nil {
			return nil, err
		}
		for _, r := range rs {
			r.Mult *= k
			out = append(out, r)
		}
	}
	return mergeRoots(out), nil
}

func mergeRoots(rs []Root) []Root {
	idx := map[string]int{}
	var out []Root
	for _, r := range rs {
		key := r.Value.String()
		if i, ok := idx[key]; ok {
			out[i].Mult += r.Mult
			continue
		}
		idx[key] = len(out)
		out = append(out, r)
	}
	return out
}

// PolyRoots solves p exactly where it can: zero roots, rational roots,
// then the quadratic formula. Left-over numeric factors of higher degree
// are solved numerically.
func PolyRoots(p *Poly, hint Damping) ([]Root, error) {
	var out []Root
	cs := p.Coeffs()
	zeros := 0
	for len(cs) > 1 && IsZero(cs[len(cs)-1]) {
		cs = cs[:len(cs)-1]
		zeros++
	}
	if zeros > 0 {
		out = append(out, realRoot(N(0), zeros))
	}
	p = NewPoly(cs, p.x)
	if isRationalPoly(p) {
		var rs []Root
		rs, p = rationalRoots(p)
		out = append(out, rs...)
	}
	switch d := p.Degree(); {
	case d <= 0:
	case d == 1:
		out = append(out, linearRoot(p))
	case d == 2:
		out = append(out, quadraticRoots(p, hint)...)
	default:
		rs, err := numericRoots(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return mergeRoots(out), nil
}

func realRoot(v Expr, mult int) Root {
	return Root{Value: v, Re: v, Im: N(0), Mult: mult}
}

func linearRoot(p *Poly) Root {
	v := Expand(Neg(DivOf(p.Coeff(0), p.Coeff(1))))
	r := Root{Value: v, Mult: 1}
	if re, im, ok := ReIm(v); ok {
		r.Re, r.Im = re, im
	}
	return r
}

// quadraticRoots applies the quadratic formula. The discriminant sign
// decides between a real pair, a double root and a conjugate pair; when
// it is unknown the damping hint decides, else the pair is left in
// square-root form and marked ambiguous.
func quadraticRoots(p *Poly, hint Damping) []Root {
	a, b, c := p.Coeff(2), p.Coeff(1), p.Coeff(0)
	disc := Expand(SubOf(PowOf(b, N(2)), MulOf(N(4), a, c)))
	center := Expand(Neg(DivOf(b, MulOf(N(2), a))))
	sg := SignOf(disc)
	if sg == SignUnknown {
		switch hint {
		case Underdamped:
			sg = SignNegative
		case Overdamped:
			sg = SignPositive
		case CriticalDamping:
			sg = SignZero
		}
	}
	switch sg {
	case SignZero:
		return []Root{realRoot(center, 2)}
	case SignPositive:
		w := DivOf(SqrtOf(disc), MulOf(N(2), a))
		return []Root{realRoot(AddOf(center, w), 1), realRoot(SubOf(center, w), 1)}
	case SignNegative:
		w := DivOf(SqrtOf(Neg(disc)), MulOf(N(2), a))
		if SignOf(a) == SignNegative {
			w = Neg(w)
		}
		if _, _, ok := ReIm(center); !ok || !IsReal(center) {
			break
		}
		up := AddOf(center, MulOf(I, w))
		down := SubOf(center, MulOf(I, w))
		return []Root{
			{Value: up, Re: center, Im: w, Conj: down, Mult: 1},
			{Value: down, Re: center, Im: Neg(w), Conj: up, Mult: 1},
		}
	}
	w := DivOf(SqrtOf(disc), MulOf(N(2), a))
	r1 := Root{Value: AddOf(center, w), Mult: 1, Ambiguous: true}
	r2 := Root{Value: SubOf(center, w), Mult: 1, Ambiguous: true}
	return []Root{r1, r2}
}

func isRationalPoly(p *Poly) bool {
	for _, c := range p.coeffs {
		if _, ok := c.(*Num); !ok {
			return false
		}
	}
	return true
}

// rationalRoots finds the rational roots of a polynomial with rational
// coefficients by testing every candidate p/q, and returns them with the
// deflated remainder.
func rationalRoots(p *Poly) ([]Root, *Poly) {
	ints := integerCoeffs(p)
	if ints == nil {
		return nil, p
	}
	lead, trail := ints[0], ints[len(ints)-1]
	if trail.Sign() == 0 {
		return nil, p
	}
	ps := divisors(new(big.Int).Abs(trail))
	qs := divisors(new(big.Int).Abs(lead))
	if ps == nil || qs == nil {
		return nil, p
	}
	var out []Root
	seen := map[string]bool{}
	for _, pp := range ps {
		for _, qq := range qs {
			for _, sgn := range []int64{1, -1} {
				cand := &Num{val: new(big.Rat).SetFrac(new(big.Int).Mul(big.NewInt(sgn), pp), qq)}
				if seen[cand.String()] {
					continue
				}
				seen[cand.String()] = true
				mult := 0
				for p.Degree() > 0 && IsZero(p.Eval(cand)) {
					p, _ = p.Div(NewPoly([]Expr{N(1), numNeg(cand)}, p.x))
					mult++
				}
				if mult > 0 {
					out = append(out, realRoot(cand, mult))
				}
			}
		}
	}
	return out, p
}

// integerCoeffs scales rational coefficients to integers.
func integerCoeffs(p *Poly) []*big.Int {
	l := big.NewInt(1)
	for _, c := range p.coeffs {
		d := c.(*Num).val.Denom()
		g := new(big.Int).GCD(nil, nil, l, d)
		l.Mul(l, d)
		l.Quo(l, g)
	}
	out := make([]*big.Int, len(p.coeffs))
	for i, c := range p.coeffs {
		r := new(big.Rat).Mul(c.(*Num).val, new(big.Rat).SetInt(l))
		if !r.IsInt() {
			return nil
		}
		out[i] = new(big.Int).Set(r.Num())
	}
	return out
}

// divisors lists the positive divisors of n, giving up on large inputs.
func divisors(n *big.Int) []*big.Int {
	if !n.IsInt64() || n.Int64() > 1_000_000 {
		return nil
	}
	v := n.Int64()
	var out []*big.Int
	for d := int64(1); d*d <= v; d++ {
		if v%d == 0 {
			out = append(out, big.NewInt(d))
			if d*d != v {
				out = append(out, big.NewInt(v/d))
			}
		}
	}
	return out
}

// numericRoots runs Durand-Kerner on a polynomial whose coefficients
// evaluate to numbers. Roots within tolerance are merged into one with
// the combined multiplicity.
func numericRoots(p *Poly) ([]Root, error) {
	n := p.Degree()
	cs := make([]complex128, n+1)
	for i, c := range p.coeffs {
		v, err := Evalf(c, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: degree %d with symbolic coefficients", ErrRoots, n)
		}
		cs[i] = v
	}
	for i := range cs {
		cs[i] /= cs[0]
	}
	z := make([]complex128, n)
	seed := complex(0.4, 0.9)
	for i := range z {
		z[i] = cmplx.Pow(seed, complex(float64(i), 0))
	}
	eval := func(x complex128) complex128 {
		acc := complex(0, 0)
		for _, c := range cs {
			acc = acc*x + c
		}
		return acc
	}
	for iter := 0; iter < 2000; iter++ {
		moved := 0.0
		for i := range z {
			den := complex(1, 0)
			for j := range z {
				if j != i {
					den *= z[i] - z[j]
				}
			}
			if den == 0 {
				den = complex(1e-12, 0)
			}
			step := eval(z[i]) / den
			z[i] -= step
			moved = math.Max(moved, cmplx.Abs(step))
		}
		if moved < 1e-14 {
			break
		}
	}
	sort.Slice(z, func(i, j int) bool {
		if real(z[i]) != real(z[j]) {
			return real(z[i]) < real(z[j])
		}
		return imag(z[i]) < imag(z[j])
	})
	type cluster struct {
		sum  complex128
		mult int
	}
	var cl []cluster
	for _, r := range z {
		merged := false
		for i := range cl {
			c := cl[i].sum / complex(float64(cl[i].mult), 0)
			if cmplx.Abs(c-r) < 1e-6*math.Max(1, cmplx.Abs(r)) {
				cl[i].sum += r
				cl[i].mult++
				merged = true
				break
			}
		}
		if !merged {
			cl = append(cl, cluster{sum: r, mult: 1})
		}
	}
	out := make([]Root, 0, len(cl))
	for _, c := range cl {
		v := c.sum / complex(float64(c.mult), 0)
		re, im := roundFloat(real(v)), roundFloat(imag(v))
		if im.IsZero() {
			r := realRoot(re, c.mult)
			r.Numeric = true
			out = append(out, r)
			continue
		}
		val := AddOf(re, MulOf(im, I))
		conj := AddOf(re, MulOf(numNeg(im), I))
		out = append(out, Root{Value: val, Re: re, Im: im, Conj: conj, Mult: c.mult, Numeric: true})
	}
	return out, nil
}

// roundFloat keeps twelve significant digits so that numeric roots print
// as short decimals.
func roundFloat(f float64) *Num {
	if math.Abs(f) < 1e-10 {
		return N(0)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', 12, 64))
	if !ok {
		return NFloat(f)
	}
	return &Num{val: r}
}
