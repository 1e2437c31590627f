package evaluator

import (
	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/errs"
	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

// ResultType classifies a formula's status over a box.
type ResultType int

const (
	// Unsat means the formula is false for every point in the box.
	Unsat ResultType = iota
	// Valid means the formula is true for every point in the box.
	Valid
	// Unknown means the box contains both satisfying and falsifying
	// points, or the evaluator could not decide either way.
	Unknown
)

func (t ResultType) String() string {
	switch t {
	case Unsat:
		return "UNSAT"
	case Valid:
		return "VALID"
	case Unknown:
		return "UNKNOWN"
	default:
		return "?"
	}
}

// Result is the outcome of evaluating a formula over a box: its
// satisfiability status, plus (for relational atoms) the interval
// enclosure of the atom's defining expression that justified it.
type Result struct {
	Type       ResultType
	Evaluation interval.Interval
}

// EvaluateFormula decides f's status over b using interval enclosures of
// its relational atoms, propagated through And/Or/Not the way three-valued
// logic requires (UNKNOWN is absorbing under negation only in the sense
// that NOT UNKNOWN is UNKNOWN; UNSAT/VALID flip). Forall formulas are
// outside this evaluator's contract, matching Formula.Evaluate.
func EvaluateFormula(f *symbolic.Formula, b *box.Box) (Result, error) {
	switch f.Kind() {
	case symbolic.FormulaTrue:
		return Result{Type: Valid}, nil
	case symbolic.FormulaFalse:
		return Result{Type: Unsat}, nil
	case symbolic.FormulaEq, symbolic.FormulaNeq, symbolic.FormulaLeq, symbolic.FormulaLt, symbolic.FormulaGeq, symbolic.FormulaGt:
		return evaluateAtom(f, b)
	case symbolic.FormulaAnd:
		return evaluateAnd(f.Conjuncts(), b)
	case symbolic.FormulaOr:
		return evaluateOr(f.Conjuncts(), b)
	case symbolic.FormulaNot:
		inner, err := EvaluateFormula(f.Negand(), b)
		if err != nil {
			return Result{}, err
		}
		switch inner.Type {
		case Valid:
			return Result{Type: Unsat}, nil
		case Unsat:
			return Result{Type: Valid}, nil
		default:
			return Result{Type: Unknown, Evaluation: inner.Evaluation}, nil
		}
	case symbolic.FormulaForall:
		return Result{}, errs.New(errs.Unsupported, "quantified formula has no direct interval evaluation in this context")
	default:
		return Result{}, errs.New(errs.InvariantViolated, "EvaluateFormula: unhandled formula kind %s", f.Kind())
	}
}

func evaluateAtom(f *symbolic.Formula, b *box.Box) (Result, error) {
	iv, err := Evaluate(f.AtomExpr(), b)
	if err != nil {
		return Result{}, err
	}
	if iv.IsEmpty() {
		return Result{Type: Unknown, Evaluation: iv}, nil
	}
	a, c := iv.Lo, iv.Hi
	var t ResultType
	switch f.Kind() {
	case symbolic.FormulaLeq: // expr <= 0
		switch {
		case a > 0:
			t = Unsat
		case c <= 0:
			t = Valid
		default:
			t = Unknown
		}
	case symbolic.FormulaLt: // expr < 0
		switch {
		case a >= 0:
			t = Unsat
		case c < 0:
			t = Valid
		default:
			t = Unknown
		}
	case symbolic.FormulaGeq: // expr >= 0
		switch {
		case c < 0:
			t = Unsat
		case a >= 0:
			t = Valid
		default:
			t = Unknown
		}
	case symbolic.FormulaGt: // expr > 0
		switch {
		case c <= 0:
			t = Unsat
		case a > 0:
			t = Valid
		default:
			t = Unknown
		}
	case symbolic.FormulaEq: // expr = 0
		switch {
		case a == 0 && c == 0:
			t = Valid
		case !iv.Contains(0):
			t = Unsat
		default:
			t = Unknown
		}
	case symbolic.FormulaNeq: // expr != 0
		switch {
		case a == 0 && c == 0:
			t = Unsat
		case !iv.Contains(0):
			t = Valid
		default:
			t = Unknown
		}
	default:
		return Result{}, errs.New(errs.InvariantViolated, "evaluateAtom: unhandled relation %s", f.Kind())
	}
	return Result{Type: t, Evaluation: iv}, nil
}

func evaluateAnd(conjuncts []*symbolic.Formula, b *box.Box) (Result, error) {
	allValid := true
	for _, c := range conjuncts {
		r, err := EvaluateFormula(c, b)
		if err != nil {
			return Result{}, err
		}
		if r.Type == Unsat {
			return Result{Type: Unsat}, nil
		}
		if r.Type != Valid {
			allValid = false
		}
	}
	if allValid {
		return Result{Type: Valid}, nil
	}
	return Result{Type: Unknown}, nil
}

func evaluateOr(conjuncts []*symbolic.Formula, b *box.Box) (Result, error) {
	allUnsat := true
	for _, c := range conjuncts {
		r, err := EvaluateFormula(c, b)
		if err != nil {
			return Result{}, err
		}
		if r.Type == Valid {
			return Result{Type: Valid}, nil
		}
		if r.Type != Unsat {
			allUnsat = false
		}
	}
	if allUnsat {
		return Result{Type: Unsat}, nil
	}
	return Result{Type: Unknown}, nil
}
