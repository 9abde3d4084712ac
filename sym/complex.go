package sym

// ReIm splits e into real and imaginary parts. It succeeds when every
// symbol in e is real, so that I is the only source of imaginary values.
func ReIm(e Expr) (re, im Expr, ok bool) {
	if IsReal(e) {
		return e, N(0), true
	}
	switch v := e.(type) {
	case *Const:
		if v.name == I.name {
			return N(0), N(1), true
		}
	case *Add:
		rs := make([]Expr, 0, len(v.terms))
		is := make([]Expr, 0, len(v.terms))
		for _, t := range v.terms {
			r, i, ok := ReIm(t)
			if !ok {
				return nil, nil, false
			}
			rs = append(rs, r)
			is = append(is, i)
		}
		return AddOf(rs...), AddOf(is...), true
	case *Mul:
		re, im = N(1), N(0)
		for _, f := range v.factors {
			r, i, ok := ReIm(f)
			if !ok {
				return nil, nil, false
			}
			// (a + ib)(c + id) = (ac - bd) + i(ad + bc)
			re, im = SubOf(MulOf(re, r), MulOf(im, i)), AddOf(MulOf(re, i), MulOf(im, r))
		}
		return Expand(re), Expand(im), true
	case *Pow:
		n, isNum := v.exp.(*Num)
		if !isNum || !n.IsInteger() {
			return nil, nil, false
		}
		k, fits := n.Int64()
		if !fits || k > 32 || k < -32 {
			return nil, nil, false
		}
		a, b, ok := ReIm(v.base)
		if !ok {
			return nil, nil, false
		}
		if k < 0 {
			// 1/(a+ib) = (a-ib)/(a^2+b^2)
			den := AddOf(PowOf(a, N(2)), PowOf(b, N(2)))
			a, b = DivOf(a, den), Neg(DivOf(b, den))
			k = -k
		}
		re, im = N(1), N(0)
		for j := int64(0); j < k; j++ {
			re, im = SubOf(MulOf(re, a), MulOf(im, b)), AddOf(MulOf(re, b), MulOf(im, a))
		}
		return Expand(re), Expand(im), true
	case *Func:
		if v.name != "exp" {
			return nil, nil, false
		}
		x, y, ok := ReIm(v.arg)
		if !ok {
			return nil, nil, false
		}
		mag := ExpOf(x)
		return MulOf(mag, CosOf(y)), MulOf(mag, SinOf(y)), true
	}
	return nil, nil, false
}

// Conjugate returns the complex conjugate of e when its real and
// imaginary parts can be separated.
func Conjugate(e Expr) (Expr, bool) {
	re, im, ok := ReIm(e)
	if !ok {
		return nil, false
	}
	return SubOf(re, MulOf(I, im)), true
}
