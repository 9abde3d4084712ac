package sym

import (
	"fmt"
	"strings"
)

// ============================================================
// Step: Heaviside unit step u(arg)
// ============================================================

type Step struct{ arg Expr }

func StepOf(arg Expr) Expr { return (&Step{arg: arg}).Simplify() }

func (u *Step) Simplify() Expr {
	arg := u.arg.Simplify()
	switch SignOf(arg) {
	case SignPositive:
		return N(1)
	case SignNegative:
		return N(0)
	case SignZero:
		return F(1, 2)
	}
	return &Step{arg: arg}
}

func (u *Step) String() string                  { return "u(" + u.arg.String() + ")" }
func (u *Step) LaTeX() string                   { return "u\\left(" + u.arg.LaTeX() + "\\right)" }
func (u *Step) Sub(varName string, v Expr) Expr { return StepOf(u.arg.Sub(varName, v)) }
func (u *Step) Diff(varName string) Expr {
	return MulOf(DeltaOf(u.arg), u.arg.Diff(varName))
}
func (u *Step) Eval() (*Num, bool) {
	n, ok := u.arg.Eval()
	if !ok {
		return nil, false
	}
	switch n.val.Sign() {
	case 1:
		return N(1), true
	case -1:
		return N(0), true
	}
	return F(1, 2), true
}
func (u *Step) Equal(other Expr) bool { o, ok := other.(*Step); return ok && u.arg.Equal(o.arg) }
func (u *Step) exprType() string      { return "step" }
func (u *Step) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "step", "arg": u.arg.toJSON()}
}
func (u *Step) Arg() Expr { return u.arg }

// ============================================================
// Delta: Dirac impulse and its derivatives
// ============================================================

// Delta is the order-th derivative of the Dirac impulse. The order is an
// expression so that fractional derivatives can be written down even
// though they cannot be integrated.
type Delta struct {
	arg   Expr
	order Expr
}

func DeltaOf(arg Expr) Expr { return (&Delta{arg: arg, order: N(0)}).Simplify() }

func DeltaN(arg Expr, order Expr) Expr { return (&Delta{arg: arg, order: order}).Simplify() }

func (d *Delta) Simplify() Expr {
	arg := d.arg.Simplify()
	order := d.order.Simplify()
	switch SignOf(arg) {
	case SignPositive, SignNegative:
		return N(0)
	}
	return &Delta{arg: arg, order: order}
}

func (d *Delta) String() string {
	if IsZero(d.order) {
		return "delta(" + d.arg.String() + ")"
	}
	return "delta(" + d.arg.String() + ", " + d.order.String() + ")"
}

func (d *Delta) LaTeX() string {
	if IsZero(d.order) {
		return "\\delta\\left(" + d.arg.LaTeX() + "\\right)"
	}
	return "\\delta^{\\left(" + d.order.LaTeX() + "\\right)}\\left(" + d.arg.LaTeX() + "\\right)"
}

func (d *Delta) Sub(varName string, v Expr) Expr {
	return DeltaN(d.arg.Sub(varName, v), d.order.Sub(varName, v))
}

func (d *Delta) Diff(varName string) Expr {
	du := d.arg.Diff(varName)
	if IsZero(du) {
		return N(0)
	}
	return MulOf(DeltaN(d.arg, AddOf(d.order, N(1))), du)
}

func (d *Delta) Eval() (*Num, bool) {
	n, ok := d.arg.Eval()
	if ok && !n.IsZero() {
		return N(0), true
	}
	return nil, false
}

func (d *Delta) Equal(other Expr) bool {
	o, ok := other.(*Delta)
	return ok && d.arg.Equal(o.arg) && d.order.Equal(o.order)
}
func (d *Delta) exprType() string { return "delta" }
func (d *Delta) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "delta", "arg": d.arg.toJSON(), "order": d.order.toJSON()}
}
func (d *Delta) Arg() Expr   { return d.arg }
func (d *Delta) Order() Expr { return d.order }

// OrderInt reports the derivative order when it is a non-negative integer.
func (d *Delta) OrderInt() (int, bool) {
	n, ok := d.order.(*Num)
	if !ok {
		return 0, false
	}
	k, ok := n.Int64()
	if !ok || k < 0 {
		return 0, false
	}
	return int(k), true
}

// ============================================================
// Applied: unknown function such as v(t) or V(s)
// ============================================================

type Applied struct {
	name string
	arg  Expr
}

func Fn(name string, arg Expr) Expr { return &Applied{name: name, arg: arg.Simplify()} }

func (a *Applied) Simplify() Expr                  { return &Applied{name: a.name, arg: a.arg.Simplify()} }
func (a *Applied) String() string                  { return a.name + "(" + a.arg.String() + ")" }
func (a *Applied) LaTeX() string                   { return latexName(a.name) + "\\left(" + a.arg.LaTeX() + "\\right)" }
func (a *Applied) Sub(varName string, v Expr) Expr { return Fn(a.name, a.arg.Sub(varName, v)) }
func (a *Applied) Eval() (*Num, bool)              { return nil, false }
func (a *Applied) Diff(varName string) Expr {
	if !Has(a.arg, varName) {
		return N(0)
	}
	return &Derivative{expr: a, varName: varName, order: 1}
}
func (a *Applied) Equal(other Expr) bool {
	o, ok := other.(*Applied)
	return ok && a.name == o.name && a.arg.Equal(o.arg)
}
func (a *Applied) exprType() string { return "applied" }
func (a *Applied) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "applied", "name": a.name, "arg": a.arg.toJSON()}
}
func (a *Applied) Name() string { return a.name }
func (a *Applied) Arg() Expr    { return a.arg }

// ============================================================
// Derivative: unevaluated derivative of an unknown function
// ============================================================

type Derivative struct {
	expr    Expr
	varName string
	order   int
}

// DerivativeOf differentiates e n times, keeping the result unevaluated
// only when e involves unknown functions.
func DerivativeOf(e Expr, varName string, n int) Expr {
	return (&Derivative{expr: e, varName: varName, order: n}).Simplify()
}

func (d *Derivative) Simplify() Expr {
	e := d.expr.Simplify()
	if d.order == 0 {
		return e
	}
	if inner, ok := e.(*Derivative); ok && inner.varName == d.varName {
		return &Derivative{expr: inner.expr, varName: d.varName, order: inner.order + d.order}
	}
	if _, ok := e.(*Applied); !ok {
		return DiffN(e, d.varName, d.order)
	}
	return &Derivative{expr: e, varName: d.varName, order: d.order}
}

func (d *Derivative) String() string {
	if d.order == 1 {
		return "Derivative(" + d.expr.String() + ", " + d.varName + ")"
	}
	return fmt.Sprintf("Derivative(%s, (%s, %d))", d.expr.String(), d.varName, d.order)
}

func (d *Derivative) LaTeX() string {
	v := latexName(d.varName)
	if d.order == 1 {
		return "\\frac{d}{d " + v + "} " + d.expr.LaTeX()
	}
	return fmt.Sprintf("\\frac{d^{%d}}{d %s^{%d}} %s", d.order, v, d.order, d.expr.LaTeX())
}

// Sub handles the common case of a linear change of variable, where
// d/dt v(a*t+b) = a * v'(a*t+b), and the renaming of the variable.
func (d *Derivative) Sub(varName string, value Expr) Expr {
	if varName != d.varName {
		return &Derivative{expr: d.expr.Sub(varName, value), varName: d.varName, order: d.order}
	}
	if s, ok := value.(*Sym); ok {
		return &Derivative{expr: d.expr.Sub(varName, s), varName: s.name, order: d.order}
	}
	scale, _, ok := ScaleShift(value, varName)
	if !ok || IsZero(scale) {
		return &Derivative{expr: d.expr.Sub(varName, value), varName: d.varName, order: d.order}
	}
	return MulOf(PowOf(scale, N(int64(-d.order))),
		&Derivative{expr: d.expr.Sub(varName, value), varName: d.varName, order: d.order})
}

func (d *Derivative) Diff(varName string) Expr {
	if varName == d.varName {
		return &Derivative{expr: d.expr, varName: d.varName, order: d.order + 1}
	}
	if !Has(d.expr, varName) {
		return N(0)
	}
	return &Derivative{expr: d, varName: varName, order: 1}
}

func (d *Derivative) Eval() (*Num, bool) { return nil, false }
func (d *Derivative) Equal(other Expr) bool {
	o, ok := other.(*Derivative)
	return ok && d.varName == o.varName && d.order == o.order && d.expr.Equal(o.expr)
}
func (d *Derivative) exprType() string { return "derivative" }
func (d *Derivative) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "derivative", "expr": d.expr.toJSON(), "var": d.varName, "order": d.order}
}
func (d *Derivative) Expr() Expr      { return d.expr }
func (d *Derivative) VarName() string { return d.varName }
func (d *Derivative) Order() int      { return d.order }

// ============================================================
// Integral: unevaluated definite integral
// ============================================================

type Integral struct {
	integrand    Expr
	varName      string
	lower, upper Expr
}

func IntegralOf(integrand Expr, varName string, lower, upper Expr) Expr {
	return (&Integral{integrand: integrand, varName: varName, lower: lower, upper: upper}).Simplify()
}

func (in *Integral) Simplify() Expr {
	f := in.integrand.Simplify()
	lo := in.lower.Simplify()
	hi := in.upper.Simplify()
	if IsZero(f) || lo.Equal(hi) {
		return N(0)
	}
	return &Integral{integrand: f, varName: in.varName, lower: lo, upper: hi}
}

func (in *Integral) String() string {
	return fmt.Sprintf("Integral(%s, (%s, %s, %s))", in.integrand, in.varName, in.lower, in.upper)
}

func (in *Integral) LaTeX() string {
	return fmt.Sprintf("\\int\\limits_{%s}^{%s} %s\\, d%s",
		in.lower.LaTeX(), in.upper.LaTeX(), in.integrand.LaTeX(), latexName(in.varName))
}

// Sub leaves the bound variable alone.
func (in *Integral) Sub(varName string, value Expr) Expr {
	f := in.integrand
	if varName != in.varName {
		f = f.Sub(varName, value)
	}
	return IntegralOf(f, in.varName, in.lower.Sub(varName, value), in.upper.Sub(varName, value))
}

// Diff applies the Leibniz rule.
func (in *Integral) Diff(varName string) Expr {
	terms := []Expr{}
	if varName != in.varName {
		if d := in.integrand.Diff(varName); !IsZero(d) {
			terms = append(terms, IntegralOf(d, in.varName, in.lower, in.upper))
		}
	}
	if du := in.upper.Diff(varName); !IsZero(du) {
		terms = append(terms, MulOf(in.integrand.Sub(in.varName, in.upper), du))
	}
	if dl := in.lower.Diff(varName); !IsZero(dl) {
		terms = append(terms, Neg(MulOf(in.integrand.Sub(in.varName, in.lower), dl)))
	}
	return AddOf(terms...)
}

func (in *Integral) Eval() (*Num, bool) { return nil, false }
func (in *Integral) Equal(other Expr) bool {
	o, ok := other.(*Integral)
	return ok && in.varName == o.varName && in.integrand.Equal(o.integrand) &&
		in.lower.Equal(o.lower) && in.upper.Equal(o.upper)
}
func (in *Integral) exprType() string { return "integral" }
func (in *Integral) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type": "integral", "integrand": in.integrand.toJSON(), "var": in.varName,
		"lower": in.lower.toJSON(), "upper": in.upper.toJSON(),
	}
}
func (in *Integral) Integrand() Expr { return in.integrand }
func (in *Integral) VarName() string { return in.varName }
func (in *Integral) Lower() Expr     { return in.lower }
func (in *Integral) Upper() Expr     { return in.upper }

// ============================================================
// Piecewise: conditional expression
// ============================================================

// Cond is the relation Lhs Op Rhs. Op "true" always holds.
type Cond struct {
	Lhs Expr
	Op  string
	Rhs Expr
}

// True is the catch-all condition.
var True = Cond{Op: "true"}

func Ge(lhs, rhs Expr) Cond { return Cond{Lhs: lhs, Op: ">=", Rhs: rhs} }
func Gt(lhs, rhs Expr) Cond { return Cond{Lhs: lhs, Op: ">", Rhs: rhs} }

func (c Cond) String() string {
	if c.Op == "true" {
		return "True"
	}
	return c.Lhs.String() + " " + c.Op + " " + c.Rhs.String()
}

func (c Cond) LaTeX() string {
	if c.Op == "true" {
		return "\\text{otherwise}"
	}
	op := map[string]string{">=": "\\geq", ">": ">", "<": "<", "<=": "\\leq", "==": "="}[c.Op]
	return c.Lhs.LaTeX() + " " + op + " " + c.Rhs.LaTeX()
}

func (c Cond) sub(varName string, v Expr) Cond {
	if c.Op == "true" {
		return c
	}
	return Cond{Lhs: c.Lhs.Sub(varName, v), Op: c.Op, Rhs: c.Rhs.Sub(varName, v)}
}

// Decide reports the truth of the condition as +1, -1 or 0 when unknown.
func (c Cond) Decide() int {
	if c.Op == "true" {
		return 1
	}
	sg := SignOf(SubOf(c.Lhs, c.Rhs))
	if sg == SignUnknown {
		return 0
	}
	holds := false
	switch c.Op {
	case ">=":
		holds = sg != SignNegative
	case ">":
		holds = sg == SignPositive
	case "<=":
		holds = sg != SignPositive
	case "<":
		holds = sg == SignNegative
	case "==":
		holds = sg == SignZero
	}
	if holds {
		return 1
	}
	return -1
}

// Has reports whether the condition mentions varName.
func (c Cond) Has(varName string) bool {
	return c.Op != "true" && (Has(c.Lhs, varName) || Has(c.Rhs, varName))
}

type Piece struct {
	Value Expr
	Cond  Cond
}

type Piecewise struct{ pieces []Piece }

func PiecewiseOf(pieces ...Piece) Expr { return (&Piecewise{pieces: pieces}).Simplify() }

func (p *Piecewise) Simplify() Expr {
	out := make([]Piece, 0, len(p.pieces))
	for _, pc := range p.pieces {
		c := pc.Cond
		if c.Op != "true" {
			c = Cond{Lhs: c.Lhs.Simplify(), Op: c.Op, Rhs: c.Rhs.Simplify()}
		}
		switch c.Decide() {
		case -1:
			continue
		case 1:
			if len(out) == 0 {
				return pc.Value.Simplify()
			}
			out = append(out, Piece{Value: pc.Value.Simplify(), Cond: True})
			return &Piecewise{pieces: out}
		}
		out = append(out, Piece{Value: pc.Value.Simplify(), Cond: c})
	}
	return &Piecewise{pieces: out}
}

func (p *Piecewise) String() string {
	parts := make([]string, len(p.pieces))
	for i, pc := range p.pieces {
		parts[i] = "(" + pc.Value.String() + ", " + pc.Cond.String() + ")"
	}
	return "Piecewise(" + strings.Join(parts, ", ") + ")"
}

func (p *Piecewise) LaTeX() string {
	parts := make([]string, len(p.pieces))
	for i, pc := range p.pieces {
		parts[i] = pc.Value.LaTeX() + " & \\text{for}\\: " + pc.Cond.LaTeX()
	}
	return "\\begin{cases} " + strings.Join(parts, " \\\\ ") + " \\end{cases}"
}

func (p *Piecewise) Sub(varName string, v Expr) Expr {
	out := make([]Piece, len(p.pieces))
	for i, pc := range p.pieces {
		out[i] = Piece{Value: pc.Value.Sub(varName, v), Cond: pc.Cond.sub(varName, v)}
	}
	return PiecewiseOf(out...)
}

func (p *Piecewise) Diff(varName string) Expr {
	out := make([]Piece, len(p.pieces))
	for i, pc := range p.pieces {
		out[i] = Piece{Value: pc.Value.Diff(varName), Cond: pc.Cond}
	}
	return PiecewiseOf(out...)
}

func (p *Piecewise) Eval() (*Num, bool) { return nil, false }

func (p *Piecewise) Equal(other Expr) bool {
	o, ok := other.(*Piecewise)
	if !ok || len(p.pieces) != len(o.pieces) {
		return false
	}
	for i := range p.pieces {
		if !p.pieces[i].Value.Equal(o.pieces[i].Value) || p.pieces[i].Cond.String() != o.pieces[i].Cond.String() {
			return false
		}
	}
	return true
}

func (p *Piecewise) exprType() string { return "piecewise" }
func (p *Piecewise) toJSON() map[string]interface{} {
	ps := make([]map[string]interface{}, len(p.pieces))
	for i, pc := range p.pieces {
		cond := map[string]interface{}{"op": pc.Cond.Op}
		if pc.Cond.Op != "true" {
			cond["lhs"] = pc.Cond.Lhs.toJSON()
			cond["rhs"] = pc.Cond.Rhs.toJSON()
		}
		ps[i] = map[string]interface{}{"value": pc.Value.toJSON(), "cond": cond}
	}
	return map[string]interface{}{"type": "piecewise", "pieces": ps}
}
func (p *Piecewise) Pieces() []Piece { return append([]Piece(nil), p.pieces...) }

// ============================================================
// Lim: unevaluated one-sided limit
// ============================================================

// Lim is the unevaluated limit of expr as varName approaches point. Dir
// is "-" or "+" for a one-sided limit and "" otherwise.
type Lim struct {
	expr    Expr
	varName string
	point   Expr
	dir     string
}

func LimOf(e Expr, varName string, point Expr, dir string) Expr {
	return (&Lim{expr: e, varName: varName, point: point, dir: dir}).Simplify()
}

func (l *Lim) Simplify() Expr {
	e := l.expr.Simplify()
	if !Has(e, l.varName) {
		return e
	}
	return &Lim{expr: e, varName: l.varName, point: l.point.Simplify(), dir: l.dir}
}

func (l *Lim) String() string {
	if l.dir == "" {
		return fmt.Sprintf("Limit(%s, %s, %s)", l.expr, l.varName, l.point)
	}
	return fmt.Sprintf("Limit(%s, %s, %s, %s)", l.expr, l.varName, l.point, l.dir)
}

func (l *Lim) LaTeX() string {
	return fmt.Sprintf("\\lim_{%s \\to %s^{%s}} %s", latexName(l.varName), l.point.LaTeX(), l.dir, l.expr.LaTeX())
}

// Sub leaves the limit variable alone.
func (l *Lim) Sub(varName string, value Expr) Expr {
	if varName == l.varName {
		return l
	}
	return LimOf(l.expr.Sub(varName, value), l.varName, l.point.Sub(varName, value), l.dir)
}

func (l *Lim) Diff(varName string) Expr {
	if varName == l.varName {
		return N(0)
	}
	return LimOf(l.expr.Diff(varName), l.varName, l.point, l.dir)
}

func (l *Lim) Eval() (*Num, bool) { return nil, false }
func (l *Lim) Equal(other Expr) bool {
	o, ok := other.(*Lim)
	return ok && l.varName == o.varName && l.dir == o.dir && l.expr.Equal(o.expr) && l.point.Equal(o.point)
}
func (l *Lim) exprType() string { return "limit" }
func (l *Lim) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type": "limit", "expr": l.expr.toJSON(), "var": l.varName,
		"point": l.point.toJSON(), "dir": l.dir,
	}
}
func (l *Lim) Expr() Expr      { return l.expr }
func (l *Lim) VarName() string { return l.varName }
func (l *Lim) Point() Expr     { return l.point }
func (l *Lim) Dir() string     { return l.dir }

// ============================================================
// Equation
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }
func (e *Equation) String() string {
	return e.LHS.String() + " = " + e.RHS.String()
}
func (e *Equation) LaTeX() string { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }
func (e *Equation) Residual() Expr {
	return AddOf(e.LHS, MulOf(N(-1), e.RHS)).Simplify()
}
