package symbolic

// This file exposes read-only structural accessors so external packages
// (the interval evaluator, contractors) can visit a cell's shape without
// reaching into its unexported fields, while EqualTo/Less/Evaluate/
// Substitute/Differentiate/Expand stay the primary, safer API for code
// that just wants to transform an expression rather than walk it.

// AddTerm is one coefficient*expression summand of an Add cell.
type AddTerm struct {
	Coeff float64
	Term  *Expr
}

// MulTerm is one base^exponent factor of a Mul cell.
type MulTerm struct {
	Base *Expr
	Exp  float64
}

// AsVariable returns the underlying Variable for a KindVariable cell.
func (e *Expr) AsVariable() (Variable, bool) {
	if e.kind != KindVariable {
		return Variable{}, false
	}
	return e.variable, true
}

// AsConstant returns the underlying value for a KindConstant cell.
func (e *Expr) AsConstant() (float64, bool) {
	if e.kind != KindConstant {
		return 0, false
	}
	return e.constant, true
}

// AsRealConstant returns the underlying bounds for a KindRealConstant cell.
func (e *Expr) AsRealConstant() (lo, hi float64, useLb, ok bool) {
	if e.kind != KindRealConstant {
		return 0, 0, false, false
	}
	return e.rcLo, e.rcHi, e.rcUseLb, true
}

// AddConstant returns an Add cell's constant offset.
func (e *Expr) AddConstant() float64 { return e.addConstant }

// AddTerms returns an Add cell's summands in canonical order.
func (e *Expr) AddTerms() []AddTerm {
	out := make([]AddTerm, len(e.addTerms))
	for i, t := range e.addTerms {
		out[i] = AddTerm{Coeff: t.coeff, Term: t.term}
	}
	return out
}

// MulConstant returns a Mul cell's constant factor.
func (e *Expr) MulConstant() float64 { return e.mulConstant }

// MulTerms returns a Mul cell's base^exponent factors in canonical order.
func (e *Expr) MulTerms() []MulTerm {
	out := make([]MulTerm, len(e.mulTerms))
	for i, t := range e.mulTerms {
		out[i] = MulTerm{Base: t.base, Exp: t.exp}
	}
	return out
}

// Child1 returns a unary or binary composite's first operand.
func (e *Expr) Child1() *Expr { return e.child1 }

// Child2 returns a binary composite's second operand.
func (e *Expr) Child2() *Expr { return e.child2 }

// IfThenElseParts returns an IfThenElse cell's condition and branches.
func (e *Expr) IfThenElseParts() (*Formula, *Expr, *Expr) { return e.cond, e.then, e.els_ }

// UninterpretedFunctionParts returns the function name and argument
// variables of an UninterpretedFunction cell.
func (e *Expr) UninterpretedFunctionParts() (string, []Variable) { return e.ufName, e.ufVars }

// AtomExpr returns the normalized "expr" side of a relational formula atom
// (the formula holds iff expr ⋈ 0 for the formula's relation).
func (f *Formula) AtomExpr() *Expr { return f.expr }

// Conjuncts returns an And/Or formula's operands in canonical order.
func (f *Formula) Conjuncts() []*Formula { return f.conjuncts }

// Negand returns a Not formula's operand.
func (f *Formula) Negand() *Formula { return f.negand }

// ForallParts returns a Forall formula's quantified variables and body.
func (f *Formula) ForallParts() (VariableSet, *Formula) { return f.quantified, f.body }
