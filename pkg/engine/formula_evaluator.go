package engine

import (
	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/evaluator"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

// FormulaEvaluator is the "formula evaluator interface" of spec.md §6:
// evaluate(&box) -> {type, evaluation}, variables() -> Set<Variable>,
// formula() -> Formula. The engine holds a slice of these, one per
// conjunct of the formula under search, so it can decide per-box whether
// every conjunct is already VALID (delta-sat), some conjunct is UNSAT
// (prune), or some remain UNKNOWN (branch).
type FormulaEvaluator struct {
	formula *symbolic.Formula
	vars    symbolic.VariableSet
}

// NewFormulaEvaluator wraps f, caching its free-variable set.
func NewFormulaEvaluator(f *symbolic.Formula) *FormulaEvaluator {
	return &FormulaEvaluator{formula: f, vars: f.GetFreeVariables()}
}

// Evaluate decides f's status over b.
func (e *FormulaEvaluator) Evaluate(b *box.Box) (evaluator.Result, error) {
	return evaluator.EvaluateFormula(e.formula, b)
}

// Variables returns the free variables of the wrapped formula.
func (e *FormulaEvaluator) Variables() symbolic.VariableSet { return e.vars }

// Formula returns the wrapped formula.
func (e *FormulaEvaluator) Formula() *symbolic.Formula { return e.formula }
