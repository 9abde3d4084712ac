// Package sym is the algebra kernel behind the Laplace transformer.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Deterministic simplification and stable output
//   - Tri-state sign reasoning driven by symbol assumptions
//   - JSON and LaTeX rendering for tool and HTTP callers
package sym

import (
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("sym: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }
func NRat(r *big.Rat) *Num  { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(new(big.Rat).SetInt64(1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(new(big.Rat).SetInt64(-1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

// Int64 reports the value as an int64 when it is an integer that fits.
func (n *Num) Int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("sym: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// numPowInt raises a to an integer power exactly.
func numPowInt(a *Num, e int64) *Num {
	if e < 0 {
		return numRecip(numPowInt(a, -e))
	}
	num := new(big.Int).Exp(a.val.Num(), big.NewInt(e), nil)
	den := new(big.Int).Exp(a.val.Denom(), big.NewInt(e), nil)
	return &Num{val: new(big.Rat).SetFrac(num, den)}
}

func factorial(n int64) *Num {
	r := big.NewInt(1)
	for i := int64(2); i <= n; i++ {
		r.Mul(r, big.NewInt(i))
	}
	return &Num{val: new(big.Rat).SetInt(r)}
}

// ratFloor returns the largest integer not greater than r.
func ratFloor(r *big.Rat) *Num {
	q, m := new(big.Int), new(big.Int)
	q.DivMod(r.Num(), r.Denom(), m)
	return &Num{val: new(big.Rat).SetInt(q)}
}

// Factorial returns n! as an exact number.
func Factorial(n int) *Num { return factorial(int64(n)) }

// ============================================================
// Sym: symbolic variable with a sign assumption
// ============================================================

// Assumption records what is known about the values a symbol may take.
type Assumption int

const (
	AssumePositive Assumption = iota
	AssumeNegative
	AssumeReal
	AssumeComplex
)

func (a Assumption) String() string {
	switch a {
	case AssumePositive:
		return "positive"
	case AssumeNegative:
		return "negative"
	case AssumeReal:
		return "real"
	}
	return "complex"
}

func parseAssumption(s string) Assumption {
	switch s {
	case "negative":
		return AssumeNegative
	case "real":
		return AssumeReal
	case "complex":
		return AssumeComplex
	}
	return AssumePositive
}

type Sym struct {
	name   string
	assume Assumption
}

// S creates a positive symbol. Circuit parameters such as R, C and omega
// are positive, so this is the default.
func S(name string) *Sym { return &Sym{name: name} }

func NewSym(name string, a Assumption) *Sym { return &Sym{name: name, assume: a} }
func RealSym(name string) *Sym              { return NewSym(name, AssumeReal) }
func ComplexSym(name string) *Sym           { return NewSym(name, AssumeComplex) }
func NegativeSym(name string) *Sym          { return NewSym(name, AssumeNegative) }

func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return latexName(s.name) }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name && s.assume == o.assume
}
func (s *Sym) exprType() string       { return "sym" }
func (s *Sym) Name() string           { return s.name }
func (s *Sym) Assumption() Assumption { return s.assume }
func (s *Sym) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "sym", "name": s.name}
	if s.assume != AssumePositive {
		m["assume"] = s.assume.String()
	}
	return m
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

var greek = map[string]string{
	"alpha": `\alpha`, "beta": `\beta`, "gamma": `\gamma`, "delta": `\delta`,
	"zeta": `\zeta`, "eta": `\eta`, "theta": `\theta`, "lambda": `\lambda`,
	"mu": `\mu`, "sigma": `\sigma`, "tau": `\tau`, "phi": `\phi`, "omega": `\omega`,
}

func latexName(name string) string {
	base, sub := name, ""
	for i := 0; i < len(name); i++ {
		if name[i] == '_' {
			base, sub = name[:i], name[i+1:]
			break
		}
	}
	if g, ok := greek[base]; ok {
		base = g
	}
	if sub != "" {
		return base + "_{" + sub + "}"
	}
	return base
}

// ============================================================
// Const: pi, infinity and the imaginary unit
// ============================================================

type Const struct{ name string }

var (
	Pi  = &Const{name: "pi"}
	Inf = &Const{name: "oo"}
	I   = &Const{name: "I"}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}
func (c *Const) LaTeX() string {
	switch c.name {
	case "pi":
		return `\pi`
	case "oo":
		return `\infty`
	}
	return "j"
}
func (c *Const) Eval() (*Num, bool) {
	if c == Pi || c.name == "pi" {
		return NFloat(math.Pi), true
	}
	return nil, false
}

func constByName(name string) (*Const, bool) {
	switch name {
	case "pi":
		return Pi, true
	case "oo", "inf":
		return Inf, true
	case "I", "j":
		return I, true
	}
	return nil, false
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// IsZero reports whether e is the exact number zero.
func IsZero(e Expr) bool { return isNumEqual(e, 0) }

// IsOne reports whether e is the exact number one.
func IsOne(e Expr) bool { return isNumEqual(e, 1) }

// floatResult wraps a float evaluation, rejecting NaN and infinities.
func floatResult(f float64) (*Num, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return NFloat(f), true
}
