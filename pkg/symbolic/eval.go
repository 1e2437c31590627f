package symbolic

import (
	"math"

	"github.com/dreal-go/dicp/pkg/errs"
)

func checkNaN(v float64) error {
	if math.IsNaN(v) {
		return errs.New(errs.NumericNaN, "NaN produced during evaluation")
	}
	return nil
}

// Evaluate computes the expression's value under a total real-valued
// environment. It fails with MissingBinding for a free variable absent
// from env, NumericDomain when a primitive's argument leaves its real
// domain, and NumericNaN when a NaN cell is reached or one is produced.
func (e *Expr) Evaluate(env map[Variable]float64) (float64, error) {
	switch e.kind {
	case KindVariable:
		v, ok := env[e.variable]
		if !ok {
			return 0, errs.New(errs.MissingBinding, "no binding for variable %s", e.variable)
		}
		return v, nil
	case KindConstant:
		return e.constant, nil
	case KindRealConstant:
		if e.rcUseLb {
			return e.rcLo, nil
		}
		return e.rcHi, nil
	case KindNaN:
		return 0, errs.New(errs.NumericNaN, "NaN cell evaluated")
	case KindAdd:
		sum := e.addConstant
		for _, t := range e.addTerms {
			v, err := t.term.Evaluate(env)
			if err != nil {
				return 0, err
			}
			sum += t.coeff * v
		}
		return sum, checkNaN(sum)
	case KindMul:
		prod := e.mulConstant
		for _, t := range e.mulTerms {
			v, err := t.base.Evaluate(env)
			if err != nil {
				return 0, err
			}
			if v < 0 && t.exp != math.Trunc(t.exp) {
				return 0, errs.New(errs.NumericDomain, "pow(%v, %v): negative base with non-integer exponent", v, t.exp)
			}
			if v == 0 && t.exp < 0 {
				return 0, errs.New(errs.NumericDomain, "pow(0, %v): division by zero", t.exp)
			}
			prod *= math.Pow(v, t.exp)
		}
		return prod, checkNaN(prod)
	case KindDiv:
		a, b, err := evalBinary(e, env)
		if err != nil {
			return 0, err
		}
		if b == 0 {
			return 0, errs.New(errs.NumericDomain, "division by zero")
		}
		return a / b, checkNaN(a / b)
	case KindLog:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		if a <= 0 {
			return 0, errs.New(errs.NumericDomain, "log(%v): argument not positive", a)
		}
		return math.Log(a), nil
	case KindAbs:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		return math.Abs(a), nil
	case KindExp:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		return math.Exp(a), checkNaN(math.Exp(a))
	case KindSqrt:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		if a < 0 {
			return 0, errs.New(errs.NumericDomain, "sqrt(%v): negative argument", a)
		}
		return math.Sqrt(a), nil
	case KindPow:
		base, exp, err := evalBinary(e, env)
		if err != nil {
			return 0, err
		}
		if base < 0 && exp != math.Trunc(exp) {
			return 0, errs.New(errs.NumericDomain, "pow(%v, %v): negative base with non-integer exponent", base, exp)
		}
		if base == 0 && exp < 0 {
			return 0, errs.New(errs.NumericDomain, "pow(0, %v): division by zero", exp)
		}
		result := math.Pow(base, exp)
		return result, checkNaN(result)
	case KindSin:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		return math.Sin(a), nil
	case KindCos:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		return math.Cos(a), nil
	case KindTan:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		return math.Tan(a), nil
	case KindAsin:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		if a < -1 || a > 1 {
			return 0, errs.New(errs.NumericDomain, "asin(%v): argument outside [-1,1]", a)
		}
		return math.Asin(a), nil
	case KindAcos:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		if a < -1 || a > 1 {
			return 0, errs.New(errs.NumericDomain, "acos(%v): argument outside [-1,1]", a)
		}
		return math.Acos(a), nil
	case KindAtan:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		return math.Atan(a), nil
	case KindAtan2:
		y, x, err := evalBinary(e, env)
		if err != nil {
			return 0, err
		}
		return math.Atan2(y, x), nil
	case KindSinh:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		return math.Sinh(a), checkNaN(math.Sinh(a))
	case KindCosh:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		return math.Cosh(a), checkNaN(math.Cosh(a))
	case KindTanh:
		a, err := e.child1.Evaluate(env)
		if err != nil {
			return 0, err
		}
		return math.Tanh(a), nil
	case KindMin:
		a, b, err := evalBinary(e, env)
		if err != nil {
			return 0, err
		}
		return math.Min(a, b), nil
	case KindMax:
		a, b, err := evalBinary(e, env)
		if err != nil {
			return 0, err
		}
		return math.Max(a, b), nil
	case KindIfThenElse:
		cond, err := e.cond.Evaluate(env)
		if err != nil {
			return 0, err
		}
		if cond {
			return e.then.Evaluate(env)
		}
		return e.els_.Evaluate(env)
	case KindUninterpretedFunction:
		return 0, errs.New(errs.Unsupported, "uninterpreted function %s has no scalar evaluation", e.ufName)
	default:
		return 0, errs.New(errs.InvariantViolated, "Evaluate: unhandled kind %s", e.kind)
	}
}

func evalBinary(e *Expr, env map[Variable]float64) (float64, float64, error) {
	a, err := e.child1.Evaluate(env)
	if err != nil {
		return 0, 0, err
	}
	b, err := e.child2.Evaluate(env)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
