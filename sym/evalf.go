package sym

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Evalf evaluates e numerically with the symbols bound in env.
func Evalf(e Expr, env map[string]complex128) (complex128, error) {
	switch v := e.(type) {
	case *Num:
		f, _ := v.val.Float64()
		return complex(f, 0), nil
	case *Sym:
		x, ok := env[v.name]
		if !ok {
			return 0, fmt.Errorf("evalf: unbound symbol %s", v.name)
		}
		return x, nil
	case *Const:
		switch v.name {
		case Pi.name:
			return complex(math.Pi, 0), nil
		case I.name:
			return complex(0, 1), nil
		}
		return 0, fmt.Errorf("evalf: %s is not finite", v.name)
	case *Add:
		acc := complex(0, 0)
		for _, t := range v.terms {
			x, err := Evalf(t, env)
			if err != nil {
				return 0, err
			}
			acc += x
		}
		return acc, nil
	case *Mul:
		acc := complex(1, 0)
		for _, f := range v.factors {
			x, err := Evalf(f, env)
			if err != nil {
				return 0, err
			}
			acc *= x
		}
		return acc, nil
	case *Pow:
		b, err := Evalf(v.base, env)
		if err != nil {
			return 0, err
		}
		x, err := Evalf(v.exp, env)
		if err != nil {
			return 0, err
		}
		if b == 0 && real(x) < 0 {
			return 0, fmt.Errorf("evalf: division by zero in %s", v)
		}
		if imag(x) == 0 && real(x) == math.Trunc(real(x)) && math.Abs(real(x)) <= 64 {
			return intPow(b, int(real(x))), nil
		}
		return cmplx.Pow(b, x), nil
	case *Func:
		return evalfFunc(v, env)
	case *Step:
		x, err := realArg(v.arg, env)
		if err != nil {
			return 0, err
		}
		switch {
		case x > 0:
			return 1, nil
		case x < 0:
			return 0, nil
		}
		return 0.5, nil
	case *Delta:
		x, err := realArg(v.arg, env)
		if err != nil {
			return 0, err
		}
		if x != 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("evalf: impulse at its origin")
	case *Piecewise:
		for _, pc := range v.pieces {
			if pc.Cond.Op == "true" {
				return Evalf(pc.Value, env)
			}
			l, err := realArg(pc.Cond.Lhs, env)
			if err != nil {
				return 0, err
			}
			r, err := realArg(pc.Cond.Rhs, env)
			if err != nil {
				return 0, err
			}
			if compare(l, pc.Cond.Op, r) {
				return Evalf(pc.Value, env)
			}
		}
		return 0, fmt.Errorf("evalf: no piece of %s holds", v)
	}
	return 0, fmt.Errorf("evalf: cannot evaluate %s", e)
}

func intPow(b complex128, n int) complex128 {
	if n < 0 {
		return 1 / intPow(b, -n)
	}
	acc := complex(1, 0)
	for i := 0; i < n; i++ {
		acc *= b
	}
	return acc
}

func compare(l float64, op string, r float64) bool {
	switch op {
	case ">=":
		return l >= r
	case ">":
		return l > r
	case "<=":
		return l <= r
	case "<":
		return l < r
	case "==":
		return l == r
	}
	return false
}

func realArg(e Expr, env map[string]complex128) (float64, error) {
	x, err := Evalf(e, env)
	if err != nil {
		return 0, err
	}
	if math.Abs(imag(x)) > 1e-12*math.Max(1, math.Abs(real(x))) {
		return 0, fmt.Errorf("evalf: %s is not real", e)
	}
	return real(x), nil
}

func evalfFunc(f *Func, env map[string]complex128) (complex128, error) {
	x, err := Evalf(f.arg, env)
	if err != nil {
		return 0, err
	}
	switch f.name {
	case "sin":
		return cmplx.Sin(x), nil
	case "cos":
		return cmplx.Cos(x), nil
	case "tan":
		return cmplx.Tan(x), nil
	case "exp":
		return cmplx.Exp(x), nil
	case "ln":
		return cmplx.Log(x), nil
	case "abs":
		return complex(cmplx.Abs(x), 0), nil
	case "asin":
		return cmplx.Asin(x), nil
	case "acos":
		return cmplx.Acos(x), nil
	case "atan":
		return cmplx.Atan(x), nil
	case "sinh":
		return cmplx.Sinh(x), nil
	case "cosh":
		return cmplx.Cosh(x), nil
	case "tanh":
		return cmplx.Tanh(x), nil
	case "re":
		return complex(real(x), 0), nil
	case "im":
		return complex(imag(x), 0), nil
	case "sign":
		switch {
		case real(x) > 0:
			return 1, nil
		case real(x) < 0:
			return -1, nil
		}
		return 0, nil
	case "gamma":
		if imag(x) != 0 {
			return 0, fmt.Errorf("evalf: gamma of complex argument")
		}
		return complex(math.Gamma(real(x)), 0), nil
	}
	return 0, fmt.Errorf("evalf: unknown function %s", f.name)
}
