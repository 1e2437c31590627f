package symbolic

import (
	"fmt"
	"strconv"
	"strings"
)

// EqualTo reports structural equality. Hash-consing guarantees this is
// exactly pointer equality: no two distinct *Expr values are ever
// structurally equal.
func (e *Expr) EqualTo(other *Expr) bool { return e == other }

// Less gives expressions a strict total order, used to canonicalize
// commutative Add/Mul term lists and as a map/set ordering for the
// interval evaluator's caches.
func (e *Expr) Less(other *Expr) bool {
	if e == other {
		return false
	}
	if e.kind != other.kind {
		return e.kind < other.kind
	}
	switch e.kind {
	case KindVariable:
		return e.variable.Less(other.variable)
	case KindConstant:
		if e.constant != other.constant {
			return e.constant < other.constant
		}
	case KindRealConstant:
		if e.rcLo != other.rcLo {
			return e.rcLo < other.rcLo
		}
		if e.rcHi != other.rcHi {
			return e.rcHi < other.rcHi
		}
		if e.rcUseLb != other.rcUseLb {
			return !e.rcUseLb
		}
	case KindNaN:
	case KindAdd:
		if e.addConstant != other.addConstant {
			return e.addConstant < other.addConstant
		}
		n := len(e.addTerms)
		if len(other.addTerms) < n {
			n = len(other.addTerms)
		}
		for i := 0; i < n; i++ {
			a, b := e.addTerms[i], other.addTerms[i]
			if a.term != b.term {
				return a.term.Less(b.term)
			}
			if a.coeff != b.coeff {
				return a.coeff < b.coeff
			}
		}
		if len(e.addTerms) != len(other.addTerms) {
			return len(e.addTerms) < len(other.addTerms)
		}
	case KindMul:
		if e.mulConstant != other.mulConstant {
			return e.mulConstant < other.mulConstant
		}
		n := len(e.mulTerms)
		if len(other.mulTerms) < n {
			n = len(other.mulTerms)
		}
		for i := 0; i < n; i++ {
			a, b := e.mulTerms[i], other.mulTerms[i]
			if a.base != b.base {
				return a.base.Less(b.base)
			}
			if a.exp != b.exp {
				return a.exp < b.exp
			}
		}
		if len(e.mulTerms) != len(other.mulTerms) {
			return len(e.mulTerms) < len(other.mulTerms)
		}
	case KindIfThenElse:
		if e.then != other.then {
			return e.then.Less(other.then)
		}
		if e.els_ != other.els_ {
			return e.els_.Less(other.els_)
		}
	case KindUninterpretedFunction:
		if e.ufName != other.ufName {
			return e.ufName < other.ufName
		}
		n := len(e.ufVars)
		if len(other.ufVars) < n {
			n = len(other.ufVars)
		}
		for i := 0; i < n; i++ {
			if e.ufVars[i] != other.ufVars[i] {
				return e.ufVars[i].Less(other.ufVars[i])
			}
		}
		if len(e.ufVars) != len(other.ufVars) {
			return len(e.ufVars) < len(other.ufVars)
		}
	default:
		if e.child1 != other.child1 {
			return e.child1.Less(other.child1)
		}
		if e.child2 != other.child2 {
			return e.child2.Less(other.child2)
		}
	}
	return e.seq < other.seq
}

func (e *Expr) String() string {
	switch e.kind {
	case KindVariable:
		return e.variable.Name()
	case KindConstant:
		return strconv.FormatFloat(e.constant, 'g', -1, 64)
	case KindRealConstant:
		return fmt.Sprintf("[%s, %s]", strconv.FormatFloat(e.rcLo, 'g', -1, 64), strconv.FormatFloat(e.rcHi, 'g', -1, 64))
	case KindNaN:
		return "NaN"
	case KindAdd:
		var b strings.Builder
		b.WriteString("(")
		b.WriteString(strconv.FormatFloat(e.addConstant, 'g', -1, 64))
		for _, t := range e.addTerms {
			fmt.Fprintf(&b, " + %s*%s", strconv.FormatFloat(t.coeff, 'g', -1, 64), t.term)
		}
		b.WriteString(")")
		return b.String()
	case KindMul:
		var b strings.Builder
		b.WriteString("(")
		b.WriteString(strconv.FormatFloat(e.mulConstant, 'g', -1, 64))
		for _, t := range e.mulTerms {
			fmt.Fprintf(&b, " * %s^%s", t.base, strconv.FormatFloat(t.exp, 'g', -1, 64))
		}
		b.WriteString(")")
		return b.String()
	case KindDiv:
		return fmt.Sprintf("(%s / %s)", e.child1, e.child2)
	case KindPow:
		return fmt.Sprintf("pow(%s, %s)", e.child1, e.child2)
	case KindAtan2:
		return fmt.Sprintf("atan2(%s, %s)", e.child1, e.child2)
	case KindMin:
		return fmt.Sprintf("min(%s, %s)", e.child1, e.child2)
	case KindMax:
		return fmt.Sprintf("max(%s, %s)", e.child1, e.child2)
	case KindIfThenElse:
		return fmt.Sprintf("if (%s) then %s else %s", e.cond, e.then, e.els_)
	case KindUninterpretedFunction:
		return fmt.Sprintf("%s(%v)", e.ufName, e.ufVars)
	default:
		return fmt.Sprintf("%s(%s)", e.kind, e.child1)
	}
}
