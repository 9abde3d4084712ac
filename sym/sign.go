package sym

// Sign is the tri-state answer to "what is the sign of this expression".
// SignUnknown means the assumptions on the free symbols do not decide it.
type Sign int

const (
	SignUnknown Sign = iota
	SignPositive
	SignNegative
	SignZero
)

func (s Sign) String() string {
	switch s {
	case SignPositive:
		return "positive"
	case SignNegative:
		return "negative"
	case SignZero:
		return "zero"
	}
	return "unknown"
}

func (s Sign) negate() Sign {
	switch s {
	case SignPositive:
		return SignNegative
	case SignNegative:
		return SignPositive
	}
	return s
}

// SignOf decides the sign of a real expression from symbol assumptions.
// Expressions that are not provably real report SignUnknown.
func SignOf(e Expr) Sign {
	switch v := e.(type) {
	case *Num:
		switch v.val.Sign() {
		case 1:
			return SignPositive
		case -1:
			return SignNegative
		}
		return SignZero
	case *Sym:
		switch v.assume {
		case AssumePositive:
			return SignPositive
		case AssumeNegative:
			return SignNegative
		}
		return SignUnknown
	case *Const:
		if v.name == Pi.name || v.name == Inf.name {
			return SignPositive
		}
		return SignUnknown
	case *Mul:
		out := SignPositive
		for _, f := range v.factors {
			switch SignOf(f) {
			case SignZero:
				return SignZero
			case SignNegative:
				out = out.negate()
			case SignUnknown:
				return evalSign(e)
			}
		}
		return out
	case *Add:
		pos, neg, zero := 0, 0, 0
		for _, t := range v.terms {
			switch SignOf(t) {
			case SignPositive:
				pos++
			case SignNegative:
				neg++
			case SignZero:
				zero++
			default:
				return evalSign(e)
			}
		}
		switch {
		case neg == 0 && pos > 0:
			return SignPositive
		case pos == 0 && neg > 0:
			return SignNegative
		case pos == 0 && neg == 0:
			return SignZero
		}
		return evalSign(e)
	case *Pow:
		bs := SignOf(v.base)
		switch bs {
		case SignPositive:
			if IsReal(v.exp) {
				return SignPositive
			}
		case SignNegative:
			if n, ok := v.exp.(*Num); ok && n.IsInteger() {
				k, _ := n.Int64()
				if k%2 == 0 {
					return SignPositive
				}
				return SignNegative
			}
		case SignZero:
			if n, ok := v.exp.(*Num); ok && n.IsPositive() {
				return SignZero
			}
		}
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && IsReal(v.base) {
			if k, _ := n.Int64(); k%2 == 0 && isNonZero(v.base) {
				return SignPositive
			}
		}
		return evalSign(e)
	case *Func:
		switch v.name {
		case "exp":
			if IsReal(v.arg) {
				return SignPositive
			}
		case "abs":
			if isNonZero(v.arg) {
				return SignPositive
			}
		case "gamma":
			if SignOf(v.arg) == SignPositive {
				return SignPositive
			}
		case "sign":
			return SignOf(v.arg)
		case "ln":
			if SignOf(AddOf(v.arg, N(-1))) != SignUnknown {
				return SignOf(AddOf(v.arg, N(-1)))
			}
		}
		return evalSign(e)
	}
	return SignUnknown
}

func evalSign(e Expr) Sign {
	if hasComplexSymbol(e) || Contains(e, func(x Expr) bool { return x == I || x.Equal(I) }) {
		return SignUnknown
	}
	n, ok := e.Eval()
	if !ok {
		return SignUnknown
	}
	return SignOf(n)
}

func isNonZero(e Expr) bool {
	s := SignOf(e)
	return s == SignPositive || s == SignNegative
}

// IsReal reports whether e is provably real.
func IsReal(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return true
	case *Sym:
		return v.assume != AssumeComplex
	case *Const:
		return v.name == Pi.name
	case *Add:
		for _, t := range v.terms {
			if !IsReal(t) {
				return false
			}
		}
		return true
	case *Mul:
		for _, f := range v.factors {
			if !IsReal(f) {
				return false
			}
		}
		return true
	case *Pow:
		if !IsReal(v.base) || !IsReal(v.exp) {
			return false
		}
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			return true
		}
		s := SignOf(v.base)
		return s == SignPositive || s == SignZero
	case *Func:
		switch v.name {
		case "re", "im", "abs":
			return true
		case "ln":
			return SignOf(v.arg) == SignPositive
		case "asin", "acos":
			return false
		}
		return IsReal(v.arg)
	case *Step, *Delta:
		return IsReal(Children(e)[0])
	}
	return false
}

func hasComplexSymbol(e Expr) bool {
	return Contains(e, func(x Expr) bool {
		s, ok := x.(*Sym)
		return ok && s.assume == AssumeComplex
	})
}

// IsImaginaryUnit reports whether e is the constant I.
func IsImaginaryUnit(e Expr) bool {
	c, ok := e.(*Const)
	return ok && c.name == I.name
}
