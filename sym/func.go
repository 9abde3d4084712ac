package sym

import (
	"math"
	"math/big"
)

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
	done bool
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

// FuncOf applies a named elementary function. Unknown names are kept as
// opaque applications.
func FuncOf(name string, arg Expr) Expr { return funcOf(name, arg).Simplify() }

func SinOf(arg Expr) Expr   { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr   { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr   { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr   { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr    { return funcOf("ln", arg).Simplify() }
func AbsOf(arg Expr) Expr   { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr  { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr  { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr  { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr  { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr  { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr  { return funcOf("tanh", arg).Simplify() }
func SgnOf(arg Expr) Expr   { return funcOf("sign", arg).Simplify() }
func GammaOf(arg Expr) Expr { return funcOf("gamma", arg).Simplify() }
func ReOf(arg Expr) Expr    { return funcOf("re", arg).Simplify() }
func ImOf(arg Expr) Expr    { return funcOf("im", arg).Simplify() }

var oddFuncs = map[string]bool{"sin": true, "tan": true, "sinh": true, "tanh": true, "asin": true, "atan": true, "sign": true}
var evenFuncs = map[string]bool{"cos": true, "cosh": true, "abs": true}

func (f *Func) Simplify() Expr {
	if f.done {
		return f
	}
	arg := f.arg.Simplify()
	if c, ok := leadingCoeff(arg); ok && c.IsNegative() {
		switch {
		case oddFuncs[f.name]:
			return Neg(FuncOf(f.name, Neg(arg)))
		case evenFuncs[f.name]:
			return FuncOf(f.name, Neg(arg))
		}
	}
	switch f.name {
	case "sin", "cos":
		if v := exactTrig(f.name, arg); v != nil {
			return v
		}
	case "tan", "sinh", "tanh", "asin", "atan":
		if IsZero(arg) {
			return N(0)
		}
	case "cosh":
		if IsZero(arg) {
			return N(1)
		}
	case "ln":
		if IsOne(arg) {
			return N(0)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" && IsReal(inner.arg) {
			return inner.arg
		}
	case "exp":
		if IsZero(arg) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		switch SignOf(arg) {
		case SignPositive, SignZero:
			return arg
		case SignNegative:
			return Neg(arg)
		}
		if m, ok := arg.(*Mul); ok {
			if c, ok := m.factors[0].(*Num); ok {
				return MulOf(numAbs(c), AbsOf(MulOf(m.factors[1:]...)))
			}
		}
	case "sign":
		switch SignOf(arg) {
		case SignPositive:
			return N(1)
		case SignNegative:
			return N(-1)
		case SignZero:
			return N(0)
		}
	case "gamma":
		if n, ok := arg.(*Num); ok {
			if v := exactGamma(n); v != nil {
				return v
			}
		}
	case "re", "im":
		if IsReal(arg) {
			if f.name == "re" {
				return arg
			}
			return N(0)
		}
		if !hasComplexSymbol(arg) {
			if re, im, ok := ReIm(arg); ok {
				if f.name == "re" {
					return re
				}
				return im
			}
		}
	}
	return &Func{name: f.name, arg: arg, done: true}
}

// leadingCoeff returns the numeric coefficient that decides the parity
// rewrite of odd and even functions.
func leadingCoeff(e Expr) (*Num, bool) {
	switch v := e.(type) {
	case *Num:
		return v, true
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			return c, true
		}
	}
	return nil, false
}

// piMultiple reports e as c*pi.
func piMultiple(e Expr) (*Num, bool) {
	if e.Equal(Pi) {
		return N(1), true
	}
	if m, ok := e.(*Mul); ok && len(m.factors) == 2 {
		if c, ok := m.factors[0].(*Num); ok && m.factors[1].Equal(Pi) {
			return c, true
		}
	}
	return nil, false
}

// exactTrig evaluates sin and cos at rational multiples of pi with small
// denominators and removes quarter-turn shifts from sums.
func exactTrig(name string, arg Expr) Expr {
	if IsZero(arg) {
		if name == "sin" {
			return N(0)
		}
		return N(1)
	}
	if c, ok := piMultiple(arg); ok {
		if name == "cos" {
			c = numSub(F(1, 2), c)
		}
		return sinPi(c)
	}
	a, ok := arg.(*Add)
	if !ok {
		return nil
	}
	for i, t := range a.terms {
		c, ok := piMultiple(t)
		if !ok {
			continue
		}
		k2 := numMul(c, N(2))
		if !k2.IsInteger() {
			return nil
		}
		k, _ := k2.Int64()
		rest := make([]Expr, 0, len(a.terms)-1)
		rest = append(rest, a.terms[:i]...)
		rest = append(rest, a.terms[i+1:]...)
		x := AddOf(rest...)
		q := ((k % 4) + 4) % 4
		if name == "cos" {
			q = (q + 1) % 4
		}
		switch q {
		case 0:
			return SinOf(x)
		case 1:
			return CosOf(x)
		case 2:
			return Neg(SinOf(x))
		default:
			return Neg(CosOf(x))
		}
	}
	return nil
}

// sinPi returns sin(c*pi) when it has a closed form.
func sinPi(c *Num) Expr {
	two := N(2)
	// Reduce c into [0, 2).
	q := new(big.Rat).Quo(c.val, two.val)
	fl := ratFloor(q)
	c = numSub(c, numMul(two, fl))
	sign := int64(1)
	if numCmp(c, N(1)) >= 0 {
		c = numSub(c, N(1))
		sign = -1
	}
	if numCmp(c, F(1, 2)) > 0 {
		c = numSub(N(1), c)
	}
	var v Expr
	switch {
	case c.IsZero():
		v = N(0)
	case c.Equal(F(1, 6)):
		v = F(1, 2)
	case c.Equal(F(1, 4)):
		v = MulOf(F(1, 2), SqrtOf(N(2)))
	case c.Equal(F(1, 3)):
		v = MulOf(F(1, 2), SqrtOf(N(3)))
	case c.Equal(F(1, 2)):
		v = N(1)
	default:
		return nil
	}
	return MulOf(N(sign), v)
}

// exactGamma evaluates the gamma function at integers and half integers.
func exactGamma(n *Num) Expr {
	if n.IsInteger() {
		k, ok := n.Int64()
		if !ok || k <= 0 || k > 170 {
			return nil
		}
		return factorial(k - 1)
	}
	twice := numMul(n, N(2))
	if !twice.IsInteger() {
		return nil
	}
	m2, ok := twice.Int64()
	if !ok || m2 > 341 || m2 < -341 {
		return nil
	}
	rootPi := SqrtOf(Pi)
	if m2 > 0 {
		// gamma(m + 1/2) = (2m)! / (4^m m!) * sqrt(pi)
		m := (m2 - 1) / 2
		c := numDiv(factorial(2*m), numMul(numPowInt(N(4), m), factorial(m)))
		return MulOf(c, rootPi)
	}
	// gamma(1/2 - m) = (-4)^m m! / (2m)! * sqrt(pi)
	m := (1 - m2) / 2
	c := numDiv(numMul(numPowInt(N(-4), m), factorial(m)), factorial(2*m))
	return MulOf(c, rootPi)
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "exp":
		return "e^{" + f.arg.LaTeX() + "}"
	case "ln":
		return "\\ln\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "sign":
		return "\\operatorname{sign}\\left(" + f.arg.LaTeX() + "\\right)"
	case "gamma":
		return "\\Gamma\\left(" + f.arg.LaTeX() + "\\right)"
	case "re":
		return "\\operatorname{Re}\\left(" + f.arg.LaTeX() + "\\right)"
	case "im":
		return "\\operatorname{Im}\\left(" + f.arg.LaTeX() + "\\right)"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	if IsZero(du) {
		return N(0)
	}
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	case "abs":
		outer = SgnOf(f.arg)
	case "sign":
		// Zero away from the origin; the impulse at the origin is not tracked.
		return N(0)
	default:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du).Simplify()
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	v, _ := n.val.Float64()
	switch f.name {
	case "sin":
		return floatResult(math.Sin(v))
	case "cos":
		return floatResult(math.Cos(v))
	case "tan":
		return floatResult(math.Tan(v))
	case "exp":
		return floatResult(math.Exp(v))
	case "ln":
		if v <= 0 {
			return nil, false
		}
		return floatResult(math.Log(v))
	case "abs":
		return numAbs(n), true
	case "asin":
		return floatResult(math.Asin(v))
	case "acos":
		return floatResult(math.Acos(v))
	case "atan":
		return floatResult(math.Atan(v))
	case "sinh":
		return floatResult(math.Sinh(v))
	case "cosh":
		return floatResult(math.Cosh(v))
	case "tanh":
		return floatResult(math.Tanh(v))
	case "gamma":
		g := math.Gamma(v)
		if math.IsInf(g, 0) || math.IsNaN(g) {
			return nil, false
		}
		return NFloat(g), true
	case "sign":
		return N(int64(n.val.Sign())), true
	case "re":
		return n, true
	case "im":
		return N(0), true
	}
	return nil, false
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }
