package laplace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/njchilds90/golaplace/sym"
)

const (
	defaultMaxDepth = 64
	defaultTimeout  = 10 * time.Second
)

// Transformer computes Laplace transforms and their inverses. It is safe
// for concurrent use; results are memoised per expression, variables and
// assumptions, and concurrent identical calls share one computation.
type Transformer struct {
	logger   *slog.Logger
	maxDepth int
	timeout  time.Duration
	cacheOn  bool

	mu    sync.Mutex
	cache map[string]Output
	group singleflight.Group
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the logger for rule fallbacks (Debug) and diagnostics
// (Warn). The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(tr *Transformer) {
		if logger != nil {
			tr.logger = logger
		}
	}
}

// WithMaxDepth caps the recursion depth of one call.
func WithMaxDepth(n int) Option {
	return func(tr *Transformer) {
		if n > 0 {
			tr.maxDepth = n
		}
	}
}

// WithTimeout bounds the duration of one call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(tr *Transformer) {
		if d >= 0 {
			tr.timeout = d
		}
	}
}

// WithCache turns memoisation on or off. It is on by default.
func WithCache(on bool) Option {
	return func(tr *Transformer) { tr.cacheOn = on }
}

// New constructs a Transformer.
func New(opts ...Option) *Transformer {
	tr := &Transformer{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: defaultMaxDepth,
		timeout:  defaultTimeout,
		cacheOn:  true,
		cache:    map[string]Output{},
	}
	for _, opt := range opts {
		opt(tr)
	}
	return tr
}

// CallOption sets an assumption for one call.
type CallOption func(*callConfig)

type callConfig struct {
	causal      bool
	dampedSin   bool
	damping     sym.Damping
	dc          bool
	ac          bool
	unevaluated bool
}

func (cfg callConfig) key() string {
	return fmt.Sprintf("c=%t,d=%t,h=%s,dc=%t,ac=%t,u=%t",
		cfg.causal, cfg.dampedSin, cfg.damping, cfg.dc, cfg.ac, cfg.unevaluated)
}

// Causal asserts the time-domain signal is zero for t < 0.
func Causal() CallOption { return func(cfg *callConfig) { cfg.causal = true } }

// DampedSin inverts second-order responses directly as damped sinusoids.
func DampedSin() CallOption { return func(cfg *callConfig) { cfg.dampedSin = true } }

// WithDamping decides quadratic poles whose discriminant sign is unknown.
func WithDamping(d sym.Damping) CallOption { return func(cfg *callConfig) { cfg.damping = d } }

// DC asserts the time-domain signal is constant.
func DC() CallOption { return func(cfg *callConfig) { cfg.dc = true } }

// AC asserts the time-domain signal is a sum of sinusoids.
func AC() CallOption { return func(cfg *callConfig) { cfg.ac = true } }

// Unevaluated returns the defining limit of the forward integral instead
// of computing it.
func Unevaluated() CallOption { return func(cfg *callConfig) { cfg.unevaluated = true } }

// Output is the result of one transform together with the diagnostics
// raised while computing it.
type Output struct {
	Expr        sym.Expr
	Diagnostics []Diagnostic
}

// LT computes the unilateral Laplace transform of f(t) with lower limit
// 0-, so that an impulse at the origin transforms to 1. Unknown functions
// v(t) map to V(s).
func (tr *Transformer) LT(ctx context.Context, f sym.Expr, t, s *sym.Sym, opts ...CallOption) (Output, error) {
	return tr.run(ctx, Forward, f, t, s, opts)
}

// ILT computes the inverse unilateral Laplace transform of F(s). Unless
// Causal, DC or AC is given the result is only known for t >= 0 and is
// returned as a conditional.
func (tr *Transformer) ILT(ctx context.Context, F sym.Expr, s, t *sym.Sym, opts ...CallOption) (Output, error) {
	return tr.run(ctx, Inverse, F, t, s, opts)
}

// TransformEquation transforms both sides of an equation in the given
// direction.
func (tr *Transformer) TransformEquation(ctx context.Context, eq *sym.Equation, dir Direction, t, s *sym.Sym, opts ...CallOption) (*sym.Equation, []Diagnostic, error) {
	var sides [2]Output
	for i, side := range []sym.Expr{eq.LHS, eq.RHS} {
		out, err := tr.run(ctx, dir, side, t, s, opts)
		if err != nil {
			return nil, nil, err
		}
		sides[i] = out
	}
	diags := append(sides[0].Diagnostics, sides[1].Diagnostics...)
	return sym.Eq(sides[0].Expr, sides[1].Expr), diags, nil
}

// ClearCache drops every memoised result.
func (tr *Transformer) ClearCache() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.cache = map[string]Output{}
}

func (tr *Transformer) run(ctx context.Context, dir Direction, e sym.Expr, t, s *sym.Sym, opts []CallOption) (Output, error) {
	if e == nil || t == nil || s == nil {
		return Output{}, &Error{Kind: KindUnsupportedShape, Direction: dir, Msg: "missing expression or variable"}
	}
	if t.Name() == s.Name() {
		return Output{}, &Error{Kind: KindUnsupportedShape, Direction: dir, Expr: e,
			Msg: "time and frequency variables must differ"}
	}
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	// Symbols named like the variables take the variables' assumptions.
	e = sym.Sub(sym.Sub(e, t.Name(), t), s.Name(), s)

	// The JSON form carries symbol assumptions; the string form does not.
	repr, err := sym.ToJSON(e)
	if err != nil {
		repr = e.String()
	}
	key := strings.Join([]string{dir.String(), t.Name(), s.Name(), cfg.key(), repr}, "|")
	if tr.cacheOn {
		tr.mu.Lock()
		out, ok := tr.cache[key]
		tr.mu.Unlock()
		if ok {
			return out, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return Output{}, &Error{Kind: KindTimeout, Direction: dir, Expr: e, Err: err}
	}
	// The shared computation runs detached from any one caller; each
	// caller still stops waiting when its own context ends.
	detached := context.WithoutCancel(ctx)
	ch := tr.group.DoChan(key, func() (interface{}, error) {
		out, err := tr.compute(detached, dir, e, t, s, cfg)
		if err == nil && tr.cacheOn {
			tr.mu.Lock()
			tr.cache[key] = out
			tr.mu.Unlock()
		}
		return out, err
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return Output{}, &Error{Kind: KindTimeout, Direction: dir, Expr: e, Err: ctx.Err()}
	}
	if res.Err != nil {
		return Output{}, res.Err
	}
	return res.Val.(Output), nil
}

func (tr *Transformer) compute(ctx context.Context, dir Direction, e sym.Expr, t, s *sym.Sym, cfg callConfig) (Output, error) {
	if tr.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tr.timeout)
		defer cancel()
	}
	c := newContext(ctx, dir, t, s, cfg, tr.maxDepth, tr.logger)
	start := time.Now()

	var result sym.Expr
	var err error
	switch {
	case dir == Forward && cfg.unevaluated:
		result, err = c.unevaluated(e)
	case dir == Forward:
		result, err = c.forward(e)
	default:
		var r Result
		if r, err = c.inverse(e); err == nil {
			result, err = c.finish(e, r)
		}
	}
	if err != nil {
		err = tr.classify(ctx, dir, e, err)
		tr.logger.Debug("transform failed",
			slog.String("direction", dir.String()),
			slog.String("expr", e.String()),
			slog.String("error", err.Error()),
		)
		return Output{}, err
	}
	tr.logger.Debug("transform done",
		slog.String("direction", dir.String()),
		slog.String("expr", e.String()),
		slog.String("result", result.String()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return Output{Expr: result, Diagnostics: c.call.diags.list()}, nil
}

// classify makes sure every failure leaving the transformer is an *Error
// naming the top-level expression.
func (tr *Transformer) classify(ctx context.Context, dir Direction, e sym.Expr, err error) error {
	var te *Error
	if errors.As(err, &te) {
		if te.Expr == nil || te.Expr.String() == e.String() {
			return te
		}
		return &Error{Kind: te.Kind, Direction: dir, Expr: e, Msg: "unresolved term " + te.Expr.String(), Err: te}
	}
	if ctx.Err() != nil {
		return &Error{Kind: KindTimeout, Direction: dir, Expr: e, Err: err}
	}
	return &Error{Kind: KindSubstrate, Direction: dir, Expr: e, Err: err}
}
