package symbolic

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
)

// addTerm is one coefficient*expression summand of an n-ary Add cell,
// mirroring dReal's ExpressionAddFactory term map collapsed into a sorted
// slice so hash-consing can compare two Add cells structurally.
type addTerm struct {
	coeff float64
	term  *Expr
}

// mulTerm is one base^exponent factor of an n-ary Mul cell, mirroring
// dReal's ExpressionMulFactory.
type mulTerm struct {
	base *Expr
	exp  float64
}

// Expr is a hash-consed, immutable symbolic expression cell. Two
// structurally equal expressions are always the same *Expr, so EqualTo is
// pointer equality and map/set keys on *Expr behave correctly without a
// custom comparator.
type Expr struct {
	kind Kind
	hash uint64
	seq  uint64 // intern-time creation order, used only to break Less ties

	isPolynomial bool

	variable Variable // KindVariable
	constant float64  // KindConstant

	rcLo, rcHi float64 // KindRealConstant: [rcLo, rcHi], rcHi = nextafter(rcLo, +inf)
	rcUseLb    bool

	addConstant float64
	addTerms    []addTerm // KindAdd, canonically sorted

	mulConstant float64
	mulTerms    []mulTerm // KindMul, canonically sorted

	child1, child2 *Expr // unary/binary composites (Div, Log, ..., Pow, Atan2, Min, Max)

	cond       *Formula // KindIfThenElse
	then, els_ *Expr    // KindIfThenElse branches

	ufName string     // KindUninterpretedFunction
	ufVars []Variable // sorted by id
}

// Kind reports the cell's variant.
func (e *Expr) Kind() Kind { return e.kind }

// IsPolynomial reports whether the expression is a polynomial over its free
// variables (no transcendentals, non-integer powers, or non-arithmetic
// constructs).
func (e *Expr) IsPolynomial() bool { return e.isPolynomial }

var nanSingleton = &Expr{kind: KindNaN, hash: hashCombine(uint64(KindNaN))}

// NaN returns the distinguished not-a-number expression.
func NaN() *Expr { return nanSingleton }

var interner = &exprInterner{buckets: make(map[uint64][]*Expr)}

type exprInterner struct {
	mu      sync.Mutex
	buckets map[uint64][]*Expr
}

// intern deduplicates a freshly built, not-yet-published cell against the
// global table; the caller must not retain any reference to c other than
// the one returned. Cells drop out of the table via a finalizer once their
// last strong reference is collected, so the interner never prevents
// reclamation — it only prevents the same structural expression from
// existing twice at once.
func (in *exprInterner) intern(c *Expr) *Expr {
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

var exprSeqCounter atomic.Uint64

func (in *exprInterner) evict(c *Expr) {
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

// shallowEqual compares two not-yet-interned cells of matching hash for
// structural equality. Children are already interned *Expr pointers, so
// comparing them is pointer equality.
func (a *Expr) shallowEqual(b *Expr) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindVariable:
		return a.variable == b.variable
	case KindConstant:
		return a.constant == b.constant
	case KindRealConstant:
		return a.rcLo == b.rcLo && a.rcHi == b.rcHi && a.rcUseLb == b.rcUseLb
	case KindNaN:
		return true
	case KindAdd:
		if a.addConstant != b.addConstant || len(a.addTerms) != len(b.addTerms) {
			return false
		}
		for i := range a.addTerms {
			if a.addTerms[i].term != b.addTerms[i].term || a.addTerms[i].coeff != b.addTerms[i].coeff {
				return false
			}
		}
		return true
	case KindMul:
		if a.mulConstant != b.mulConstant || len(a.mulTerms) != len(b.mulTerms) {
			return false
		}
		for i := range a.mulTerms {
			if a.mulTerms[i].base != b.mulTerms[i].base || a.mulTerms[i].exp != b.mulTerms[i].exp {
				return false
			}
		}
		return true
	case KindIfThenElse:
		return a.cond == b.cond && a.then == b.then && a.els_ == b.els_
	case KindUninterpretedFunction:
		if a.ufName != b.ufName || len(a.ufVars) != len(b.ufVars) {
			return false
		}
		for i := range a.ufVars {
			if a.ufVars[i] != b.ufVars[i] {
				return false
			}
		}
		return true
	default:
		return a.child1 == b.child1 && a.child2 == b.child2
	}
}

// hashCombine folds a value into a running FNV-1a-style hash.
func hashCombine(seed uint64, more ...uint64) uint64 {
	h := seed*1099511628211 + 14695981039346656037
	for _, m := range more {
		h = (h^m)*1099511628211 + 14695981039346656037
	}
	return h
}

func hashFloat(f float64) uint64 { return math.Float64bits(f) }

// GetVariables returns every free variable appearing in the expression.
func (e *Expr) GetVariables() VariableSet {
	out := VariableSet{}
	e.collectVariables(out)
	return out
}

func (e *Expr) collectVariables(out VariableSet) {
	switch e.kind {
	case KindVariable:
		out.Add(e.variable)
	case KindConstant, KindRealConstant, KindNaN:
	case KindAdd:
		for _, t := range e.addTerms {
			t.term.collectVariables(out)
		}
	case KindMul:
		for _, t := range e.mulTerms {
			t.base.collectVariables(out)
		}
	case KindIfThenElse:
		for v := range e.cond.GetFreeVariables() {
			out.Add(v)
		}
		e.then.collectVariables(out)
		e.els_.collectVariables(out)
	case KindUninterpretedFunction:
		for _, v := range e.ufVars {
			out.Add(v)
		}
	default:
		if e.child1 != nil {
			e.child1.collectVariables(out)
		}
		if e.child2 != nil {
			e.child2.collectVariables(out)
		}
	}
}

func sortAddTerms(terms []addTerm) {
	sort.Slice(terms, func(i, j int) bool { return terms[i].term.Less(terms[j].term) })
}

func sortMulTerms(terms []mulTerm) {
	sort.Slice(terms, func(i, j int) bool { return terms[i].base.Less(terms[j].base) })
}
