// Package evaluator computes sound interval enclosures for symbolic
// expressions and formulas over a box, and the two bounded-Taylor
// enclosures (first and second order) the contractors use to build tighter
// linear relaxations than plain interval evaluation gives on its own. It is
// grounded on dReal's ExpressionEvaluator visitor, generalized from that
// visitor's single fixed box to the cache-per-call shape of a recursive
// evaluate-with-memoization pass (mirroring the identity-keyed visitor
// cache pattern used by borzacchiello-gosmt's expression evaluator).
package evaluator

import (
	"math"

	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/errs"
	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

// Evaluate computes a sound interval enclosure of e's value as each free
// variable ranges over its bound in b. Cells shared through hash-consing
// are visited once per call via an identity-keyed cache, so a DAG with
// heavy sharing costs no more than its unique-cell count.
func Evaluate(e *symbolic.Expr, b *box.Box) (interval.Interval, error) {
	return EvaluateWithCache(e, b, make(map[*symbolic.Expr]interval.Interval))
}

// EvaluateWithCache is Evaluate with a caller-supplied identity cache,
// letting a contractor's forward pass reuse the same per-node interval
// values a later backward pass needs without recomputing them.
func EvaluateWithCache(e *symbolic.Expr, b *box.Box, cache map[*symbolic.Expr]interval.Interval) (interval.Interval, error) {
	v := &visitor{box: b, cache: cache}
	return v.eval(e)
}

type visitor struct {
	box   *box.Box
	cache map[*symbolic.Expr]interval.Interval
}

func (v *visitor) eval(e *symbolic.Expr) (interval.Interval, error) {
	if iv, ok := v.cache[e]; ok {
		return iv, nil
	}
	iv, err := v.evalUncached(e)
	if err != nil {
		return interval.Empty(), err
	}
	v.cache[e] = iv
	return iv, nil
}

func (v *visitor) evalUncached(e *symbolic.Expr) (interval.Interval, error) {
	switch e.Kind() {
	case symbolic.KindVariable:
		va, _ := e.AsVariable()
		iv, ok := v.box.Get(va)
		if !ok {
			return interval.Empty(), errs.New(errs.MissingBinding, "no box dimension for variable %s", va)
		}
		return iv, nil
	case symbolic.KindConstant:
		c, _ := e.AsConstant()
		return interval.Point(c), nil
	case symbolic.KindRealConstant:
		lo, hi, _, _ := e.AsRealConstant()
		return interval.FromBounds(lo, hi), nil
	case symbolic.KindNaN:
		return interval.Empty(), errs.New(errs.NumericNaN, "NaN cell reached during interval evaluation")
	case symbolic.KindAdd:
		result := interval.Point(e.AddConstant())
		for _, t := range e.AddTerms() {
			ti, err := v.eval(t.Term)
			if err != nil {
				return interval.Empty(), err
			}
			result = interval.Add(result, interval.MulScalar(ti, t.Coeff))
		}
		return result, nil
	case symbolic.KindMul:
		result := interval.Point(e.MulConstant())
		for _, t := range e.MulTerms() {
			bi, err := v.eval(t.Base)
			if err != nil {
				return interval.Empty(), err
			}
			result = interval.Mul(result, applyExponent(bi, interval.Point(t.Exp)))
		}
		return result, nil
	case symbolic.KindDiv:
		a, b, err := v.evalBinary(e)
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Div(a, b), nil
	case symbolic.KindLog:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Log(a), nil
	case symbolic.KindAbs:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Abs(a), nil
	case symbolic.KindExp:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Exp(a), nil
	case symbolic.KindSqrt:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Sqrt(a), nil
	case symbolic.KindPow:
		base, exp, err := v.evalBinary(e)
		if err != nil {
			return interval.Empty(), err
		}
		return applyExponent(base, exp), nil
	case symbolic.KindSin:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Sin(a), nil
	case symbolic.KindCos:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Cos(a), nil
	case symbolic.KindTan:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Tan(a), nil
	case symbolic.KindAsin:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Asin(a), nil
	case symbolic.KindAcos:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Acos(a), nil
	case symbolic.KindAtan:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Atan(a), nil
	case symbolic.KindAtan2:
		y, x, err := v.evalBinary(e)
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Atan2(y, x), nil
	case symbolic.KindSinh:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Sinh(a), nil
	case symbolic.KindCosh:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Cosh(a), nil
	case symbolic.KindTanh:
		a, err := v.eval(e.Child1())
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Tanh(a), nil
	case symbolic.KindMin:
		a, b, err := v.evalBinary(e)
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Min(a, b), nil
	case symbolic.KindMax:
		a, b, err := v.evalBinary(e)
		if err != nil {
			return interval.Empty(), err
		}
		return interval.Max(a, b), nil
	case symbolic.KindIfThenElse, symbolic.KindUninterpretedFunction:
		return interval.Empty(), errs.New(errs.Unsupported, "%s has no interval evaluation in this context", e.Kind())
	default:
		return interval.Empty(), errs.New(errs.InvariantViolated, "Evaluate: unhandled kind %s", e.Kind())
	}
}

func (v *visitor) evalBinary(e *symbolic.Expr) (interval.Interval, interval.Interval, error) {
	a, err := v.eval(e.Child1())
	if err != nil {
		return interval.Empty(), interval.Empty(), err
	}
	b, err := v.eval(e.Child2())
	if err != nil {
		return interval.Empty(), interval.Empty(), err
	}
	return a, b, nil
}

// applyExponent raises base to a real exponent that may itself be an
// interval, picking the tightest available primitive: Sqr for the square,
// PowInt for any other degenerate integer exponent, Pow for a degenerate
// real exponent, and the exp(exponent*log(base)) identity for a genuinely
// interval-valued exponent.
func applyExponent(base, exp interval.Interval) interval.Interval {
	if exp.IsDegenerate() {
		p := exp.Lo
		if p == math.Trunc(p) && math.Abs(p) < 1<<31 {
			n := int(p)
			if n == 2 {
				return interval.Sqr(base)
			}
			return interval.PowInt(base, n)
		}
		return interval.Pow(base, p)
	}
	return interval.PowGeneral(base, exp)
}
