package laplace

import (
	"errors"
	"fmt"

	"github.com/njchilds90/golaplace/sym"
)

// Sentinel errors. Every failure returned by the transformer is an *Error
// whose Kind matches exactly one of these through errors.Is.
var (
	// ErrUnsupportedShape indicates no rule recognises the expression.
	ErrUnsupportedShape = errors.New("laplace: unsupported expression shape")
	// ErrCausalityViolation indicates a time advance exp(+T*s) with T > 0.
	ErrCausalityViolation = errors.New("laplace: causality violated")
	// ErrAmbiguousSign indicates a sign that must be known stayed undecided.
	ErrAmbiguousSign = errors.New("laplace: ambiguous sign")
	// ErrNotExpectedDegree indicates a fast path met the wrong polynomial degree.
	ErrNotExpectedDegree = errors.New("laplace: not expected degree")
	// ErrSubstrate indicates the algebra layer failed.
	ErrSubstrate = errors.New("laplace: algebra failure")
	// ErrTimeout indicates the depth cap or the deadline was exceeded.
	ErrTimeout = errors.New("laplace: timeout")
)

// Kind classifies an Error.
type Kind int

const (
	KindUnsupportedShape Kind = iota
	KindCausalityViolation
	KindAmbiguousSign
	KindNotExpectedDegree
	KindSubstrate
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedShape:
		return "unsupported_shape"
	case KindCausalityViolation:
		return "causality_violation"
	case KindAmbiguousSign:
		return "ambiguous_sign"
	case KindNotExpectedDegree:
		return "not_expected_degree"
	case KindSubstrate:
		return "substrate_failure"
	case KindTimeout:
		return "timeout"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnsupportedShape:
		return ErrUnsupportedShape
	case KindCausalityViolation:
		return ErrCausalityViolation
	case KindAmbiguousSign:
		return ErrAmbiguousSign
	case KindNotExpectedDegree:
		return ErrNotExpectedDegree
	case KindSubstrate:
		return ErrSubstrate
	case KindTimeout:
		return ErrTimeout
	}
	return nil
}

// Direction names the transform being computed.
type Direction int

const (
	Forward Direction = iota
	Inverse
)

func (d Direction) String() string {
	if d == Inverse {
		return "inverse Laplace transform"
	}
	return "Laplace transform"
}

// Error is a classified transform failure naming the expression that
// could not be handled.
type Error struct {
	Kind      Kind
	Direction Direction
	Expr      sym.Expr
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("laplace: could not compute %s", e.Direction)
	if e.Expr != nil {
		msg += " of " + e.Expr.String()
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind.sentinel() }

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a transform error.
func KindOf(err error) (Kind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}

// recoverable reports whether the dispatcher may try the next rule after
// err. Causality violations, timeouts and foreign errors always propagate.
func recoverable(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	switch k {
	case KindUnsupportedShape, KindNotExpectedDegree, KindSubstrate:
		return true
	}
	return false
}
