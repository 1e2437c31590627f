package symbolic

// Substitute replaces every free occurrence of a mapped variable with its
// image and returns the resulting expression. When no descendant actually
// changes, Substitute returns the original cell identity rather than a
// freshly interned (but structurally identical) one, so callers can use
// pointer equality to detect a no-op substitution cheaply.
func (e *Expr) Substitute(subst map[Variable]*Expr) *Expr {
	switch e.kind {
	case KindVariable:
		if r, ok := subst[e.variable]; ok {
			return r
		}
		return e
	case KindConstant, KindRealConstant, KindNaN:
		return e
	case KindAdd:
		changed := false
		operands := make([]*Expr, 0, len(e.addTerms)+1)
		if e.addConstant != 0 {
			operands = append(operands, NewConstant(e.addConstant))
		}
		for _, t := range e.addTerms {
			s := t.term.Substitute(subst)
			if s != t.term {
				changed = true
			}
			operands = append(operands, ScaleExpr(t.coeff, s))
		}
		if !changed {
			return e
		}
		return Sum(operands...)
	case KindMul:
		changed := false
		operands := make([]*Expr, 0, len(e.mulTerms)+1)
		if e.mulConstant != 1 {
			operands = append(operands, NewConstant(e.mulConstant))
		}
		for _, t := range e.mulTerms {
			s := t.base.Substitute(subst)
			if s != t.base {
				changed = true
			}
			operands = append(operands, productPow(s, t.exp))
		}
		if !changed {
			return e
		}
		return Product(operands...)
	case KindIfThenElse:
		cond := e.cond.Substitute(subst)
		then := e.then.Substitute(subst)
		els := e.els_.Substitute(subst)
		if cond == e.cond && then == e.then && els == e.els_ {
			return e
		}
		return IfThenElseExpr(cond, then, els)
	case KindUninterpretedFunction:
		return e
	default:
		c1 := e.child1.Substitute(subst)
		var c2 *Expr
		if e.child2 != nil {
			c2 = e.child2.Substitute(subst)
		}
		if c1 == e.child1 && (e.child2 == nil || c2 == e.child2) {
			return e
		}
		return rebuildUnaryOrBinary(e.kind, c1, c2)
	}
}

func rebuildUnaryOrBinary(kind Kind, c1, c2 *Expr) *Expr {
	switch kind {
	case KindDiv:
		return DivExpr(c1, c2)
	case KindLog:
		return LogExpr(c1)
	case KindAbs:
		return AbsExpr(c1)
	case KindExp:
		return ExpExpr(c1)
	case KindSqrt:
		return SqrtExpr(c1)
	case KindPow:
		return PowExpr(c1, c2)
	case KindSin:
		return SinExpr(c1)
	case KindCos:
		return CosExpr(c1)
	case KindTan:
		return TanExpr(c1)
	case KindAsin:
		return AsinExpr(c1)
	case KindAcos:
		return AcosExpr(c1)
	case KindAtan:
		return AtanExpr(c1)
	case KindAtan2:
		return Atan2Expr(c1, c2)
	case KindSinh:
		return SinhExpr(c1)
	case KindCosh:
		return CoshExpr(c1)
	case KindTanh:
		return TanhExpr(c1)
	case KindMin:
		return MinExpr(c1, c2)
	case KindMax:
		return MaxExpr(c1, c2)
	default:
		return buildUnary(kind, c1, false)
	}
}
