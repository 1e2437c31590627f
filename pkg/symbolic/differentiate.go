package symbolic

import (
	"github.com/dreal-go/dicp/pkg/errs"
)

// Differentiate returns d(e)/dx using the standard chain/product/quotient
// rules. Abs, Min, Max, IfThenElse, and UninterpretedFunction are
// non-differentiable whenever x is free in them, matching the points where
// the corresponding real function fails to be smooth.
func (e *Expr) Differentiate(x Variable) (*Expr, error) {
	switch e.kind {
	case KindVariable:
		if e.variable == x {
			return NewConstant(1), nil
		}
		return NewConstant(0), nil
	case KindConstant, KindRealConstant:
		return NewConstant(0), nil
	case KindNaN:
		return nil, errs.New(errs.NumericNaN, "cannot differentiate NaN")
	case KindAdd:
		terms := make([]*Expr, 0, len(e.addTerms))
		for _, t := range e.addTerms {
			dt, err := t.term.Differentiate(x)
			if err != nil {
				return nil, err
			}
			terms = append(terms, ScaleExpr(t.coeff, dt))
		}
		return Sum(terms...), nil
	case KindMul:
		return differentiateProduct(e.mulConstant, e.mulTerms, x)
	case KindDiv:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		dg, err := e.child2.Differentiate(x)
		if err != nil {
			return nil, err
		}
		num := SubExpr(MulExpr(df, e.child2), MulExpr(e.child1, dg))
		return DivExpr(num, productPow(e.child2, 2)), nil
	case KindLog:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return DivExpr(df, e.child1), nil
	case KindAbs:
		return nonDifferentiableIfFree(e, x, "abs")
	case KindExp:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return MulExpr(e, df), nil
	case KindSqrt:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return DivExpr(df, ScaleExpr(2, e)), nil
	case KindPow:
		dbase, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		dexp, err := e.child2.Differentiate(x)
		if err != nil {
			return nil, err
		}
		term1 := MulExpr(e.child2, DivExpr(dbase, e.child1))
		term2 := MulExpr(LogExpr(e.child1), dexp)
		return MulExpr(e, Sum(term1, term2)), nil
	case KindSin:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return MulExpr(CosExpr(e.child1), df), nil
	case KindCos:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return NegExpr(MulExpr(SinExpr(e.child1), df)), nil
	case KindTan:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return DivExpr(df, productPow(CosExpr(e.child1), 2)), nil
	case KindAsin:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return DivExpr(df, SqrtExpr(SubExpr(NewConstant(1), productPow(e.child1, 2)))), nil
	case KindAcos:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return NegExpr(DivExpr(df, SqrtExpr(SubExpr(NewConstant(1), productPow(e.child1, 2))))), nil
	case KindAtan:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return DivExpr(df, AddExpr(NewConstant(1), productPow(e.child1, 2))), nil
	case KindAtan2:
		y, xe := e.child1, e.child2
		dy, err := y.Differentiate(x)
		if err != nil {
			return nil, err
		}
		dxe, err := xe.Differentiate(x)
		if err != nil {
			return nil, err
		}
		num := SubExpr(MulExpr(xe, dy), MulExpr(y, dxe))
		den := AddExpr(productPow(xe, 2), productPow(y, 2))
		return DivExpr(num, den), nil
	case KindSinh:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return MulExpr(CoshExpr(e.child1), df), nil
	case KindCosh:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return MulExpr(SinhExpr(e.child1), df), nil
	case KindTanh:
		df, err := e.child1.Differentiate(x)
		if err != nil {
			return nil, err
		}
		return DivExpr(df, productPow(CoshExpr(e.child1), 2)), nil
	case KindMin:
		return nonDifferentiableIfFree(e, x, "min")
	case KindMax:
		return nonDifferentiableIfFree(e, x, "max")
	case KindIfThenElse:
		return nonDifferentiableIfFree(e, x, "if-then-else")
	case KindUninterpretedFunction:
		return nonDifferentiableIfFree(e, x, "uninterpreted function "+e.ufName)
	default:
		return nil, errs.New(errs.InvariantViolated, "Differentiate: unhandled kind %s", e.kind)
	}
}

func nonDifferentiableIfFree(e *Expr, x Variable, what string) (*Expr, error) {
	if e.GetVariables().Contains(x) {
		return nil, errs.New(errs.NonDifferentiable, "%s is not differentiable at %s", what, x)
	}
	return NewConstant(0), nil
}

// differentiateProduct applies the product rule to an n-ary Mul cell:
// d(c * Pi f_i^e_i)/dx = c * Sum_i (e_i * f_i^(e_i-1) * f_i' * Pi_{j!=i} f_j^e_j).
func differentiateProduct(constant float64, terms []mulTerm, x Variable) (*Expr, error) {
	if len(terms) == 0 {
		return NewConstant(0), nil
	}
	summands := make([]*Expr, 0, len(terms))
	for i, t := range terms {
		if t.exp == 0 {
			continue
		}
		dbase, err := t.base.Differentiate(x)
		if err != nil {
			return nil, err
		}
		factors := []*Expr{NewConstant(t.exp), productPow(t.base, t.exp-1), dbase}
		for j, other := range terms {
			if j == i {
				continue
			}
			factors = append(factors, productPow(other.base, other.exp))
		}
		summands = append(summands, Product(factors...))
	}
	return ScaleExpr(constant, Sum(summands...)), nil
}
