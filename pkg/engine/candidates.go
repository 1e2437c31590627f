package engine

import (
	"github.com/dreal-go/dicp/pkg/bitset"
	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/evaluator"
)

// candidateDims is the "bitset of candidate dimensions" spec.md §4.5 feeds
// to the branching step: bisectable dimensions wider than precision that
// are free in at least one formula still UNKNOWN on b. A formula already
// VALID or UNSAT contributes nothing further to narrow, so its variables
// are excluded even if they happen to be wide.
func candidateDims(b *box.Box, unknown []*FormulaEvaluator, precision float64) *bitset.BitSet {
	out := bitset.New(b.Size())
	for i := 0; i < b.Size(); i++ {
		iv := b.Interval(i)
		if !iv.IsBisectable() || iv.Diam() <= precision {
			continue
		}
		v := b.Variable(i)
		for _, fe := range unknown {
			if fe.Variables().Contains(v) {
				out.Set(i)
				break
			}
		}
	}
	return out
}

// evaluateAll evaluates every formula evaluator against b. It reports unsat
// as soon as any formula is definitely violated (short-circuiting the
// rest), otherwise returns the candidate bitset derived from every formula
// that remained UNKNOWN, plus those UNKNOWN formulas themselves (for
// branching strategies, like GradientDescent, that weight dimensions by the
// still-unresolved constraints' gradients).
func evaluateAll(b *box.Box, fes []*FormulaEvaluator, precision float64) (unsat bool, candidates *bitset.BitSet, unknown []*FormulaEvaluator, err error) {
	for _, fe := range fes {
		res, evalErr := fe.Evaluate(b)
		if evalErr != nil {
			return false, nil, nil, evalErr
		}
		switch res.Type {
		case evaluator.Unsat:
			return true, nil, nil, nil
		case evaluator.Unknown:
			unknown = append(unknown, fe)
		}
	}
	return false, candidateDims(b, unknown, precision), unknown, nil
}
