// Package errs defines the error taxonomy shared across the solver, built
// on github.com/pkg/errors so call sites can attach a stack trace at the
// point a domain error first occurs rather than only at the point it is
// logged, matching the ambient error-handling style adopted from the
// examples that depend on pkg/errors.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind tags one of the error categories the solver's design assigns
// distinct propagation behavior to.
type Kind int

const (
	// NumericDomain marks a primitive argument leaving its real domain at
	// evaluation time (log/sqrt of a negative, asin/acos outside [-1,1],
	// pow(negative, non-integer), division by zero).
	NumericDomain Kind = iota
	// NumericNaN marks a NaN cell encountered in symbolic computation.
	NumericNaN
	// MissingBinding marks a free variable absent from the evaluation
	// environment.
	MissingBinding
	// NonDifferentiable marks Differentiate reaching Abs/Min/Max/IfThenElse/
	// UninterpretedFunction while the differentiation variable is free in it.
	NonDifferentiable
	// Unsupported marks IfThenElse/UninterpretedFunction reached by a
	// context that cannot evaluate them (the interval evaluator).
	Unsupported
	// Interrupted marks cooperative cancellation of a running search.
	Interrupted
	// InvariantViolated marks a programming error: a Mt slot queried before
	// its owning worker initialised it, a FwdBwd built over a universally
	// quantified formula, or similar assertion failures. Callers should
	// treat this as fatal rather than attempt recovery.
	InvariantViolated
)

func (k Kind) String() string {
	switch k {
	case NumericDomain:
		return "NumericDomain"
	case NumericNaN:
		return "NumericNaN"
	case MissingBinding:
		return "MissingBinding"
	case NonDifferentiable:
		return "NonDifferentiable"
	case Unsupported:
		return "Unsupported"
	case Interrupted:
		return "Interrupted"
	case InvariantViolated:
		return "InvariantViolated"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with a human-readable message and, via pkg/errors, a
// stack trace captured at construction.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the pkg/errors-wrapped cause so errors.Is/As and stack
// formatting ("%+v") keep working through this type.
func (e *Error) Unwrap() error { return e.err }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg, err: errors.New(msg)}
}

// New constructs an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return newError(kind, fmt.Sprintf("%s: %s", kind, fmt.Sprintf(format, args...)))
}

// Is reports whether err is an *Error of the given kind, for use with the
// standard errors.Is.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
