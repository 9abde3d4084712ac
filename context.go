package laplace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/njchilds90/golaplace/sym"
)

// Context carries the variables and assumptions of one transform call.
// It is passed by value through every recursive step and never mutated;
// the per-call diagnostics sink and dummy-variable table are shared by
// all copies made during the call.
type Context struct {
	TimeVar   *sym.Sym
	FreqVar   *sym.Sym
	Causal    bool
	DampedSin bool
	Damping   sym.Damping
	DC        bool
	AC        bool

	dir   Direction
	depth int
	call  *callState
}

// callState is the mutable state scoped to one top-level call.
type callState struct {
	ctx      context.Context
	maxDepth int
	logger   *slog.Logger
	diags    *diagnostics
	dummies  map[string]bool
}

func newContext(ctx context.Context, dir Direction, t, s *sym.Sym, cfg callConfig, maxDepth int, logger *slog.Logger) Context {
	return Context{
		TimeVar:   t,
		FreqVar:   s,
		Causal:    cfg.causal,
		DampedSin: cfg.dampedSin,
		Damping:   cfg.damping,
		DC:        cfg.dc,
		AC:        cfg.ac,
		dir:       dir,
		call: &callState{
			ctx:      ctx,
			maxDepth: maxDepth,
			logger:   logger,
			diags:    newDiagnostics(),
			dummies:  map[string]bool{},
		},
	}
}

// enter returns the context for one level deeper, failing once the depth
// cap is reached or the call's deadline has passed.
func (c Context) enter(e sym.Expr) (Context, error) {
	if err := c.call.ctx.Err(); err != nil {
		return c, &Error{Kind: KindTimeout, Direction: c.dir, Expr: e, Err: err}
	}
	if c.depth >= c.call.maxDepth {
		return c, &Error{Kind: KindTimeout, Direction: c.dir, Expr: e,
			Msg: fmt.Sprintf("recursion depth %d exceeded", c.call.maxDepth)}
	}
	c.depth++
	return c, nil
}

// variable is the variable the current direction transforms from.
func (c Context) variable() *sym.Sym {
	if c.dir == Inverse {
		return c.FreqVar
	}
	return c.TimeVar
}

func (c Context) fail(kind Kind, e sym.Expr, format string, args ...interface{}) error {
	return &Error{Kind: kind, Direction: c.dir, Expr: e, Msg: fmt.Sprintf(format, args...)}
}

func (c Context) substrate(e sym.Expr, err error) error {
	return &Error{Kind: KindSubstrate, Direction: c.dir, Expr: e, Err: err}
}

func (c Context) note(kind DiagnosticKind, e sym.Expr, format string, args ...interface{}) {
	d, fresh := c.call.diags.add(kind, e, format, args...)
	if fresh {
		c.call.logger.Warn("transform diagnostic",
			slog.String("direction", c.dir.String()),
			slog.String("kind", string(d.Kind)),
			slog.String("message", d.Message),
			slog.String("expr", d.Expr),
		)
	}
}

// dummy returns a fresh real symbol for a bound variable.
func (c Context) dummy(e sym.Expr, base string, level int) (*sym.Sym, error) {
	name, err := c.freshName(e, base, level)
	if err != nil {
		return nil, err
	}
	c.call.dummies[name] = true
	return sym.RealSym(name), nil
}

// freshName picks base, or one of the spare names m, p, q, o, so that it
// occurs neither in e nor among the dummies already handed out during the
// call. Level n > 0 appends "_n".
func (c Context) freshName(e sym.Expr, base string, level int) (string, error) {
	used := sym.FreeSymbols(e)
	for _, name := range []string{base, "m", "p", "q", "o"} {
		if level > 0 {
			name = fmt.Sprintf("%s_%d", name, level)
		}
		if _, clash := used[name]; clash || c.call.dummies[name] {
			continue
		}
		if name == c.TimeVar.Name() || name == c.FreqVar.Name() {
			continue
		}
		return name, nil
	}
	return "", c.fail(KindUnsupportedShape, e, "dummy variable conflict with symbols %s, m, p, q, o", base)
}

// flipCase upper-cases (or lower-cases) the first letter of an unknown
// function's name, mapping v(t) to V(s) and back.
func flipCase(name string, upper bool) string {
	if name == "" {
		return name
	}
	if upper {
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return strings.ToLower(name[:1]) + name[1:]
}
