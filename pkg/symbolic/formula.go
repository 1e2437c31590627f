package symbolic

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/dreal-go/dicp/pkg/errs"
)

// FormulaKind tags a Formula cell's variant.
type FormulaKind int

const (
	FormulaTrue FormulaKind = iota
	FormulaFalse
	FormulaEq  // expr = 0
	FormulaNeq // expr != 0
	FormulaLeq // expr <= 0
	FormulaLt  // expr < 0
	FormulaGeq // expr >= 0
	FormulaGt  // expr > 0
	FormulaAnd
	FormulaOr
	FormulaNot
	FormulaForall
)

func (k FormulaKind) String() string {
	names := [...]string{"True", "False", "Eq", "Neq", "Leq", "Lt", "Geq", "Gt", "And", "Or", "Not", "Forall"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Formula is a hash-consed, immutable node of the relational/Boolean DAG
// layered over expressions. Every atomic relational constraint is
// normalized to the form "expr ⋈ 0".
type Formula struct {
	kind FormulaKind
	hash uint64
	seq  uint64

	expr *Expr // relational atoms

	conjuncts []*Formula // And/Or, canonically sorted
	negand    *Formula   // Not

	quantified VariableSet // Forall
	body       *Formula    // Forall
}

var formulaTrue = &Formula{kind: FormulaTrue, hash: hashCombine(uint64(FormulaTrue))}
var formulaFalse = &Formula{kind: FormulaFalse, hash: hashCombine(uint64(FormulaFalse))}

// True returns the formula that is always satisfied.
func True() *Formula { return formulaTrue }

// False returns the formula that is never satisfied.
func False() *Formula { return formulaFalse }

// Kind reports the formula's variant.
func (f *Formula) Kind() FormulaKind { return f.kind }

// IsForall reports whether f is a universally quantified formula. The ICP
// core never evaluates a Forall formula itself; it only uses this flag to
// exclude such formulas from FwdBwd/Polytope contractor construction.
func (f *Formula) IsForall() bool { return f.kind == FormulaForall }

type formulaInterner struct {
	mu      sync.Mutex
	buckets map[uint64][]*Formula
}

var fInterner = &formulaInterner{buckets: make(map[uint64][]*Formula)}

func (in *formulaInterner) intern(c *Formula) *Formula {
	in.mu.Lock()
	defer in.mu.Unlock()
	bucket := in.buckets[c.hash]
	for _, existing := range bucket {
		if existing.shallowEqual(c) {
			return existing
		}
	}
	c.seq = exprSeqCounter.Add(1)
	in.buckets[c.hash] = append(bucket, c)
	runtime.SetFinalizer(c, in.evict)
	return c
}

func (in *formulaInterner) evict(c *Formula) {
	in.mu.Lock()
	defer in.mu.Unlock()
	bucket := in.buckets[c.hash]
	for i, e := range bucket {
		if e == c {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(in.buckets, c.hash)
	} else {
		in.buckets[c.hash] = bucket
	}
}

func (a *Formula) shallowEqual(b *Formula) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case FormulaTrue, FormulaFalse:
		return true
	case FormulaEq, FormulaNeq, FormulaLeq, FormulaLt, FormulaGeq, FormulaGt:
		return a.expr == b.expr
	case FormulaAnd, FormulaOr:
		if len(a.conjuncts) != len(b.conjuncts) {
			return false
		}
		for i := range a.conjuncts {
			if a.conjuncts[i] != b.conjuncts[i] {
				return false
			}
		}
		return true
	case FormulaNot:
		return a.negand == b.negand
	case FormulaForall:
		if a.body != b.body || len(a.quantified) != len(b.quantified) {
			return false
		}
		for v := range a.quantified {
			if !b.quantified.Contains(v) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func relational(kind FormulaKind, lhs, rhs *Expr) *Formula {
	e := SubExpr(lhs, rhs)
	if e.kind == KindConstant {
		if relationalHoldsForConstant(kind, e.constant) {
			return True()
		}
		return False()
	}
	c := &Formula{kind: kind, expr: e, hash: hashCombine(uint64(kind), e.hash)}
	return fInterner.intern(c)
}

func relationalHoldsForConstant(kind FormulaKind, v float64) bool {
	switch kind {
	case FormulaEq:
		return v == 0
	case FormulaNeq:
		return v != 0
	case FormulaLeq:
		return v <= 0
	case FormulaLt:
		return v < 0
	case FormulaGeq:
		return v >= 0
	case FormulaGt:
		return v > 0
	default:
		return false
	}
}

// Eq returns the formula "lhs = rhs".
func Eq(lhs, rhs *Expr) *Formula { return relational(FormulaEq, lhs, rhs) }

// Neq returns the formula "lhs != rhs".
func Neq(lhs, rhs *Expr) *Formula { return relational(FormulaNeq, lhs, rhs) }

// Leq returns the formula "lhs <= rhs".
func Leq(lhs, rhs *Expr) *Formula { return relational(FormulaLeq, lhs, rhs) }

// Lt returns the formula "lhs < rhs".
func Lt(lhs, rhs *Expr) *Formula { return relational(FormulaLt, lhs, rhs) }

// Geq returns the formula "lhs >= rhs".
func Geq(lhs, rhs *Expr) *Formula { return relational(FormulaGeq, lhs, rhs) }

// Gt returns the formula "lhs > rhs".
func Gt(lhs, rhs *Expr) *Formula { return relational(FormulaGt, lhs, rhs) }

// And returns the conjunction of fs, flattening nested conjunctions and
// short-circuiting on a False conjunct.
func And(fs ...*Formula) *Formula { return buildConnective(FormulaAnd, True(), False(), fs) }

// Or returns the disjunction of fs, flattening nested disjunctions and
// short-circuiting on a True disjunct.
func Or(fs ...*Formula) *Formula { return buildConnective(FormulaOr, False(), True(), fs) }

func buildConnective(kind FormulaKind, identity, annihilator *Formula, fs []*Formula) *Formula {
	seen := map[*Formula]struct{}{}
	var order []*Formula
	hitAnnihilator := false
	var flatten func(f *Formula)
	flatten = func(f *Formula) {
		if hitAnnihilator || f == identity {
			return
		}
		if f == annihilator {
			hitAnnihilator = true
			return
		}
		if f.kind == kind {
			for _, c := range f.conjuncts {
				flatten(c)
			}
			return
		}
		if _, ok := seen[f]; !ok {
			seen[f] = struct{}{}
			order = append(order, f)
		}
	}
	for _, f := range fs {
		flatten(f)
	}
	if hitAnnihilator {
		return annihilator
	}
	if len(order) == 0 {
		return identity
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Less(order[j]) })
	if len(order) == 1 {
		return order[0]
	}
	c := &Formula{kind: kind, conjuncts: order}
	c.hash = hashCombine(uint64(kind))
	for _, f := range order {
		c.hash = hashCombine(c.hash, f.hash)
	}
	return fInterner.intern(c)
}

// Not returns the negation of f, collapsing double negation and the
// constants directly.
func Not(f *Formula) *Formula {
	switch f.kind {
	case FormulaTrue:
		return False()
	case FormulaFalse:
		return True()
	case FormulaNot:
		return f.negand
	}
	c := &Formula{kind: FormulaNot, negand: f, hash: hashCombine(uint64(FormulaNot), f.hash)}
	return fInterner.intern(c)
}

// ForallFormula returns "for all v in vars, body" — used only as an opaque
// marker the ICP core checks with IsForall; it is never evaluated here.
func ForallFormula(vars VariableSet, body *Formula) *Formula {
	c := &Formula{kind: FormulaForall, quantified: vars, body: body}
	h := hashCombine(uint64(FormulaForall), body.hash)
	for _, v := range vars.ToSlice() {
		h = hashCombine(h, v.id)
	}
	c.hash = h
	return fInterner.intern(c)
}

// GetFreeVariables returns every variable free in f.
func (f *Formula) GetFreeVariables() VariableSet {
	switch f.kind {
	case FormulaTrue, FormulaFalse:
		return VariableSet{}
	case FormulaEq, FormulaNeq, FormulaLeq, FormulaLt, FormulaGeq, FormulaGt:
		return f.expr.GetVariables()
	case FormulaAnd, FormulaOr:
		out := VariableSet{}
		for _, c := range f.conjuncts {
			out = out.Union(c.GetFreeVariables())
		}
		return out
	case FormulaNot:
		return f.negand.GetFreeVariables()
	case FormulaForall:
		out := VariableSet{}
		for v := range f.body.GetFreeVariables() {
			if !f.quantified.Contains(v) {
				out.Add(v)
			}
		}
		return out
	default:
		return VariableSet{}
	}
}

// Substitute applies an expression substitution to every relational atom
// in f, returning f unchanged (by identity) when nothing changes.
func (f *Formula) Substitute(subst map[Variable]*Expr) *Formula {
	switch f.kind {
	case FormulaTrue, FormulaFalse:
		return f
	case FormulaEq, FormulaNeq, FormulaLeq, FormulaLt, FormulaGeq, FormulaGt:
		e := f.expr.Substitute(subst)
		if e == f.expr {
			return f
		}
		return relational(f.kind, e, NewConstant(0))
	case FormulaAnd, FormulaOr:
		changed := false
		next := make([]*Formula, len(f.conjuncts))
		for i, c := range f.conjuncts {
			next[i] = c.Substitute(subst)
			if next[i] != c {
				changed = true
			}
		}
		if !changed {
			return f
		}
		if f.kind == FormulaAnd {
			return And(next...)
		}
		return Or(next...)
	case FormulaNot:
		n := f.negand.Substitute(subst)
		if n == f.negand {
			return f
		}
		return Not(n)
	case FormulaForall:
		restricted := map[Variable]*Expr{}
		for v, e := range subst {
			if !f.quantified.Contains(v) {
				restricted[v] = e
			}
		}
		b := f.body.Substitute(restricted)
		if b == f.body {
			return f
		}
		return ForallFormula(f.quantified, b)
	default:
		return f
	}
}

// Evaluate decides whether f holds under env. Forall formulas are outside
// the core's evaluation contract (quantifier handling is an external
// collaborator's job) and fail with Unsupported.
func (f *Formula) Evaluate(env map[Variable]float64) (bool, error) {
	switch f.kind {
	case FormulaTrue:
		return true, nil
	case FormulaFalse:
		return false, nil
	case FormulaEq:
		v, err := f.expr.Evaluate(env)
		return v == 0, err
	case FormulaNeq:
		v, err := f.expr.Evaluate(env)
		return v != 0, err
	case FormulaLeq:
		v, err := f.expr.Evaluate(env)
		return v <= 0, err
	case FormulaLt:
		v, err := f.expr.Evaluate(env)
		return v < 0, err
	case FormulaGeq:
		v, err := f.expr.Evaluate(env)
		return v >= 0, err
	case FormulaGt:
		v, err := f.expr.Evaluate(env)
		return v > 0, err
	case FormulaAnd:
		for _, c := range f.conjuncts {
			v, err := c.Evaluate(env)
			if err != nil {
				return false, err
			}
			if !v {
				return false, nil
			}
		}
		return true, nil
	case FormulaOr:
		for _, c := range f.conjuncts {
			v, err := c.Evaluate(env)
			if err != nil {
				return false, err
			}
			if v {
				return true, nil
			}
		}
		return false, nil
	case FormulaNot:
		v, err := f.negand.Evaluate(env)
		return !v, err
	case FormulaForall:
		return false, errs.New(errs.Unsupported, "quantified formula has no direct evaluation in this context")
	default:
		return false, errs.New(errs.InvariantViolated, "Evaluate: unhandled formula kind %s", f.kind)
	}
}

// EqualTo reports structural equality; hash-consing makes this pointer
// equality.
func (f *Formula) EqualTo(other *Formula) bool { return f == other }

// Less gives formulas a strict total order for canonicalizing And/Or
// conjunct lists.
func (f *Formula) Less(other *Formula) bool {
	if f == other {
		return false
	}
	if f.kind != other.kind {
		return f.kind < other.kind
	}
	switch f.kind {
	case FormulaEq, FormulaNeq, FormulaLeq, FormulaLt, FormulaGeq, FormulaGt:
		if f.expr != other.expr {
			return f.expr.Less(other.expr)
		}
	case FormulaAnd, FormulaOr:
		n := len(f.conjuncts)
		if len(other.conjuncts) < n {
			n = len(other.conjuncts)
		}
		for i := 0; i < n; i++ {
			if f.conjuncts[i] != other.conjuncts[i] {
				return f.conjuncts[i].Less(other.conjuncts[i])
			}
		}
		if len(f.conjuncts) != len(other.conjuncts) {
			return len(f.conjuncts) < len(other.conjuncts)
		}
	case FormulaNot:
		if f.negand != other.negand {
			return f.negand.Less(other.negand)
		}
	case FormulaForall:
		if f.body != other.body {
			return f.body.Less(other.body)
		}
	}
	return f.seq < other.seq
}

func (f *Formula) String() string {
	switch f.kind {
	case FormulaTrue:
		return "true"
	case FormulaFalse:
		return "false"
	case FormulaEq:
		return fmt.Sprintf("(%s = 0)", f.expr)
	case FormulaNeq:
		return fmt.Sprintf("(%s != 0)", f.expr)
	case FormulaLeq:
		return fmt.Sprintf("(%s <= 0)", f.expr)
	case FormulaLt:
		return fmt.Sprintf("(%s < 0)", f.expr)
	case FormulaGeq:
		return fmt.Sprintf("(%s >= 0)", f.expr)
	case FormulaGt:
		return fmt.Sprintf("(%s > 0)", f.expr)
	case FormulaAnd:
		parts := make([]string, len(f.conjuncts))
		for i, c := range f.conjuncts {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " AND ") + ")"
	case FormulaOr:
		parts := make([]string, len(f.conjuncts))
		for i, c := range f.conjuncts {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	case FormulaNot:
		return fmt.Sprintf("NOT %s", f.negand)
	case FormulaForall:
		return fmt.Sprintf("forall %v. %s", f.quantified, f.body)
	default:
		return "?"
	}
}
