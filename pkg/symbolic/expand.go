package symbolic

import (
	"math"

	"github.com/dreal-go/dicp/pkg/errs"
)

// Expand pushes multiplication through addition and realizes integer
// powers by repeated squaring, producing a sum-of-products normal form
// useful to contractors that want a polynomial view of a constraint.
func (e *Expr) Expand() (*Expr, error) {
	switch e.kind {
	case KindNaN:
		return nil, errs.New(errs.NumericNaN, "cannot expand NaN")
	case KindVariable, KindConstant, KindRealConstant:
		return e, nil
	case KindAdd:
		operands := make([]*Expr, 0, len(e.addTerms)+1)
		if e.addConstant != 0 {
			operands = append(operands, NewConstant(e.addConstant))
		}
		for _, t := range e.addTerms {
			exp, err := t.term.Expand()
			if err != nil {
				return nil, err
			}
			operands = append(operands, ScaleExpr(t.coeff, exp))
		}
		return Sum(operands...), nil
	case KindMul:
		factors := make([]*Expr, 0, len(e.mulTerms))
		for _, t := range e.mulTerms {
			base, err := t.base.Expand()
			if err != nil {
				return nil, err
			}
			if t.exp == math.Trunc(t.exp) && t.exp >= 1 {
				factors = append(factors, expandIntPow(base, int(t.exp)))
				continue
			}
			factors = append(factors, productPow(base, t.exp))
		}
		return distributeProduct(e.mulConstant, factors), nil
	case KindDiv:
		num, err := e.child1.Expand()
		if err != nil {
			return nil, err
		}
		if e.child2.kind == KindConstant && e.child2.constant != 0 {
			return ScaleExpr(1/e.child2.constant, num), nil
		}
		den, err := e.child2.Expand()
		if err != nil {
			return nil, err
		}
		return DivExpr(num, den), nil
	case KindPow:
		base, err := e.child1.Expand()
		if err != nil {
			return nil, err
		}
		if e.child2.kind == KindConstant && e.child2.constant == math.Trunc(e.child2.constant) && e.child2.constant >= 1 {
			return expandIntPow(base, int(e.child2.constant)), nil
		}
		exp, err := e.child2.Expand()
		if err != nil {
			return nil, err
		}
		return PowExpr(base, exp), nil
	case KindIfThenElse:
		then, err := e.then.Expand()
		if err != nil {
			return nil, err
		}
		els, err := e.els_.Expand()
		if err != nil {
			return nil, err
		}
		return IfThenElseExpr(e.cond, then, els), nil
	case KindUninterpretedFunction:
		return e, nil
	default:
		c1, err := e.child1.Expand()
		if err != nil {
			return nil, err
		}
		var c2 *Expr
		if e.child2 != nil {
			c2, err = e.child2.Expand()
			if err != nil {
				return nil, err
			}
		}
		return rebuildUnaryOrBinary(e.kind, c1, c2), nil
	}
}

// expandIntPow realizes base^n (n >= 1) by repeated squaring, distributing
// each squaring step through any addition in base: pow(base,1) = base;
// otherwise pow(base, n/2)^2, times base again when n is odd.
func expandIntPow(base *Expr, n int) *Expr {
	if n == 1 {
		return base
	}
	half := expandIntPow(base, n/2)
	sq := distributeProduct(1, []*Expr{half, half})
	if n%2 == 1 {
		return distributeProduct(1, []*Expr{sq, base})
	}
	return sq
}

type expandTerm struct {
	coeff   float64
	factors []*Expr
}

// distributeProduct multiplies out a constant and a list of factors,
// expanding any Add factor into a sum of products (full polynomial
// distribution), mirroring the dedicated division/multiplication
// distribution visitor the expand contract calls for.
func distributeProduct(constant float64, factors []*Expr) *Expr {
	terms := []expandTerm{{coeff: constant}}
	for _, f := range factors {
		if f.kind != KindAdd {
			for i := range terms {
				terms[i].factors = append(terms[i].factors, f)
			}
			continue
		}
		next := make([]expandTerm, 0, len(terms)*(len(f.addTerms)+1))
		for _, term := range terms {
			if f.addConstant != 0 {
				next = append(next, expandTerm{coeff: term.coeff * f.addConstant, factors: term.factors})
			}
			for _, t := range f.addTerms {
				nf := make([]*Expr, len(term.factors)+1)
				copy(nf, term.factors)
				nf[len(term.factors)] = t.term
				next = append(next, expandTerm{coeff: term.coeff * t.coeff, factors: nf})
			}
		}
		terms = next
	}
	summands := make([]*Expr, 0, len(terms))
	for _, t := range terms {
		if len(t.factors) == 0 {
			summands = append(summands, NewConstant(t.coeff))
			continue
		}
		summands = append(summands, ScaleExpr(t.coeff, Product(t.factors...)))
	}
	return Sum(summands...)
}
