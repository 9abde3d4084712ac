package laplace

import (
	"fmt"

	"github.com/njchilds90/golaplace/sym"
)

// DiagnosticKind classifies a non-fatal note raised during a transform.
type DiagnosticKind string

const (
	// DiagAmbiguousSign records a sign that was assumed non-negative.
	DiagAmbiguousSign DiagnosticKind = "ambiguous_sign"
	// DiagOverdamped records a second-order denominator with zeta > 1.
	DiagOverdamped DiagnosticKind = "overdamped"
	// DiagDegenerate records a zero or unbounded denominator.
	DiagDegenerate DiagnosticKind = "degenerate"
	// DiagAssumedCausal records a delayed term gated as if causal.
	DiagAssumedCausal DiagnosticKind = "assumed_causal"
	// DiagAmbiguousPoles records quadratic poles left in square-root form.
	DiagAmbiguousPoles DiagnosticKind = "ambiguous_poles"
)

// Diagnostic is a structured note returned alongside a result.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
	Expr    string         `json:"expr,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Expr == "" {
		return string(d.Kind) + ": " + d.Message
	}
	return string(d.Kind) + ": " + d.Message + " (" + d.Expr + ")"
}

// diagnostics collects the notes of one call, dropping repeats.
type diagnostics struct {
	items []Diagnostic
	seen  map[string]bool
}

func newDiagnostics() *diagnostics { return &diagnostics{seen: map[string]bool{}} }

func (d *diagnostics) add(kind DiagnosticKind, e sym.Expr, format string, args ...interface{}) (Diagnostic, bool) {
	diag := Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if e != nil {
		diag.Expr = e.String()
	}
	key := diag.String()
	if d.seen[key] {
		return diag, false
	}
	d.seen[key] = true
	d.items = append(d.items, diag)
	return diag, true
}

func (d *diagnostics) list() []Diagnostic {
	return append([]Diagnostic(nil), d.items...)
}
