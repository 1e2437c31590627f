package contractor

import (
	"fmt"
	"math"

	"github.com/dreal-go/dicp/pkg/bitset"
	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/evaluator"
	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

// FwdBwd narrows a box against a single relational atom by a forward
// interval evaluation followed by a backward (HC4-revise-style) pass that
// pushes the atom's target range back down through the expression DAG to
// each variable leaf. It is grounded on contractor_ibex_fwdbwd.cc's
// fwd_/bwd_ pair of ibex functions, reimplemented directly over package
// symbolic/evaluator instead of delegating to ibex.
//
// The backward pass has exact inverses for Add, Mul, Div, Log, Exp, Sqrt,
// Abs, Pow whose exponent evaluates to a single point (integer or not), and
// Sin/Cos/Asin/Acos/Atan/Tan. Min, Max, Atan2, Sinh/Cosh/Tanh, Pow whose
// exponent interval is not a single point, IfThenElse, and UninterpretedFunction
// have no implemented inverse and are treated as opaque: their children
// keep their forward-pass intervals, which is sound (it just forgoes
// additional contraction through that subexpression).
type FwdBwd struct {
	formula *symbolic.Formula
	input   *bitset.BitSet
}

// NewFwdBwd builds a FwdBwd contractor for a single relational atom f,
// whose Input bitset is computed against b's dimension ordering.
func NewFwdBwd(f *symbolic.Formula, b *box.Box) *FwdBwd {
	input := bitset.New(b.Size())
	for v := range f.GetFreeVariables() {
		if i, ok := b.IndexOf(v); ok {
			input.Set(i)
		}
	}
	return &FwdBwd{formula: f, input: input}
}

func (c *FwdBwd) Input() *bitset.BitSet { return c.input }

func (c *FwdBwd) IsDummy() bool {
	return c.formula.Kind() == symbolic.FormulaTrue || c.formula.IsForall()
}

func (c *FwdBwd) String() string { return fmt.Sprintf("FwdBwd(%s)", c.formula) }

func (c *FwdBwd) Prune(status *ContractorStatus) error {
	if c.IsDummy() {
		return nil
	}
	b := status.Box
	switch c.formula.Kind() {
	case symbolic.FormulaFalse:
		b.SetEmpty()
		markAll(status)
		return nil
	}

	target := targetRangeFor(c.formula.Kind())
	if target == nil {
		// Neq has no single-interval target (a hole at 0); skip narrowing.
		return nil
	}

	expr := c.formula.AtomExpr()
	cache := make(map[*symbolic.Expr]interval.Interval)
	rootFwd, err := evaluator.EvaluateWithCache(expr, b, cache)
	if err != nil {
		return err
	}
	narrowedRoot := interval.Intersect(rootFwd, *target)
	if narrowedRoot.IsEmpty() {
		b.SetEmpty()
		markAll(status)
		return nil
	}

	changed := bitset.New(b.Size())
	if err := reviseNode(expr, narrowedRoot, cache, b, changed); err != nil {
		return err
	}
	if b.IsEmpty() {
		markAll(status)
		return nil
	}
	status.Output.Union(changed)
	if changed.Any() {
		status.UsedConstraints = append(status.UsedConstraints, c.formula)
	}
	return nil
}

func markAll(status *ContractorStatus) {
	status.Output.SetAll()
}

// targetRangeFor returns the interval an atom's defining expression must
// land in for the atom to hold, or nil when no single interval can express
// it (Neq's target is the real line minus {0}).
func targetRangeFor(kind symbolic.FormulaKind) *interval.Interval {
	var iv interval.Interval
	switch kind {
	case symbolic.FormulaLeq, symbolic.FormulaLt:
		iv = interval.FromBounds(math.Inf(-1), 0)
	case symbolic.FormulaGeq, symbolic.FormulaGt:
		iv = interval.FromBounds(0, math.Inf(1))
	case symbolic.FormulaEq:
		iv = interval.Point(0)
	default:
		return nil
	}
	return &iv
}

// reviseNode narrows e's descendants so that e's value lies within target,
// given the forward intervals already recorded in cache. It writes
// narrowed variable bounds directly into b and flags the changed
// dimensions in changed.
func reviseNode(e *symbolic.Expr, target interval.Interval, cache map[*symbolic.Expr]interval.Interval, b *box.Box, changed *bitset.BitSet) error {
	current := cache[e]
	narrowed := interval.Intersect(current, target)
	if !narrowed.Equal(current) {
		cache[e] = narrowed
	}
	if narrowed.IsEmpty() {
		b.SetEmpty()
		changed.SetAll()
		return nil
	}

	switch e.Kind() {
	case symbolic.KindVariable:
		v, _ := e.AsVariable()
		i, ok := b.IndexOf(v)
		if !ok {
			return nil
		}
		old := b.Interval(i)
		next := interval.Intersect(old, narrowed)
		if next.IsEmpty() {
			b.SetEmpty()
			changed.SetAll()
			return nil
		}
		if !next.Equal(old) {
			b.SetInterval(i, next)
			changed.Set(i)
		}
		return nil
	case symbolic.KindConstant, symbolic.KindRealConstant, symbolic.KindNaN:
		return nil
	case symbolic.KindAdd:
		return reviseAdd(e, narrowed, cache, b, changed)
	case symbolic.KindMul:
		return reviseMul(e, narrowed, cache, b, changed)
	case symbolic.KindDiv:
		return reviseDiv(e, narrowed, cache, b, changed)
	case symbolic.KindLog:
		return reviseUnary(e, interval.Exp(narrowed), cache, b, changed)
	case symbolic.KindExp:
		return reviseUnary(e, interval.Log(narrowed), cache, b, changed)
	case symbolic.KindSqrt:
		return reviseUnary(e, interval.Sqr(narrowed), cache, b, changed)
	case symbolic.KindAbs:
		return reviseUnary(e, interval.Hull(narrowed, interval.Neg(narrowed)), cache, b, changed)
	case symbolic.KindSin:
		principal := interval.Asin(narrowed)
		reflected := interval.Sub(interval.Point(math.Pi), principal)
		return reviseTrig(e, principal, &reflected, 2*math.Pi, cache, b, changed)
	case symbolic.KindAsin:
		return reviseUnary(e, interval.Sin(narrowed), cache, b, changed)
	case symbolic.KindCos:
		principal := interval.Acos(narrowed)
		reflected := interval.Neg(principal)
		return reviseTrig(e, principal, &reflected, 2*math.Pi, cache, b, changed)
	case symbolic.KindAcos:
		return reviseUnary(e, interval.Cos(narrowed), cache, b, changed)
	case symbolic.KindTan:
		return reviseTrig(e, interval.Atan(narrowed), nil, math.Pi, cache, b, changed)
	case symbolic.KindAtan:
		return reviseUnary(e, interval.Tan(narrowed), cache, b, changed)
	case symbolic.KindPow:
		return revisePow(e, narrowed, cache, b, changed)
	default:
		// Opaque node (Sinh/Cosh/Tanh/Atan2/Min/Max/IfThenElse/
		// UninterpretedFunction): no implemented inverse, leave children
		// at their forward-pass intervals.
		return nil
	}
}

func reviseUnary(e *symbolic.Expr, childTarget interval.Interval, cache map[*symbolic.Expr]interval.Interval, b *box.Box, changed *bitset.BitSet) error {
	return reviseNode(e.Child1(), childTarget, cache, b, changed)
}

// maxTrigBranchSpan bounds how wide a child's current forward interval may
// be before reviseTrig gives up enumerating periods and passes the domain
// through unchanged: past this width every period already overlaps the
// domain, so enumerating buys no contraction and only costs cycles.
const maxTrigBranchSpan = 1 << 16

// reviseTrig inverts a periodic trig node (Sin/Cos/Tan) against the child's
// current forward interval, unioning every period-shifted copy of the
// principal-branch pre-image (and, for Sin/Cos, its in-period reflection)
// that overlaps the child's domain — not the principal branch alone. A
// target like sin(x)=0 has solutions at every multiple of π; keeping only
// asin's principal branch [-π/2,π/2] would discard a solution like x=π
// that sits in the child's current range, wrongly pruning it to empty.
// reflected is the node's second solution family within one period (sin's
// π-principal reflection, cos's negation); tan has none, so callers pass
// nil.
func reviseTrig(e *symbolic.Expr, principal interval.Interval, reflected *interval.Interval, period float64, cache map[*symbolic.Expr]interval.Interval, b *box.Box, changed *bitset.BitSet) error {
	child := e.Child1()
	childTarget := trigBranchUnion(principal, reflected, cache[child], period)
	return reviseNode(child, childTarget, cache, b, changed)
}

func trigBranchUnion(principal interval.Interval, reflected *interval.Interval, domain interval.Interval, period float64) interval.Interval {
	if principal.IsEmpty() || domain.IsEmpty() {
		return interval.Empty()
	}
	if domain.Diam() > maxTrigBranchSpan || math.IsInf(domain.Lo, 0) || math.IsInf(domain.Hi, 0) {
		return domain
	}
	result := interval.Empty()
	kLo := int(math.Floor((domain.Lo-principal.Hi)/period)) - 1
	kHi := int(math.Ceil((domain.Hi-principal.Lo)/period)) + 1
	for k := kLo; k <= kHi; k++ {
		shift := float64(k) * period
		if cand := interval.Intersect(interval.AddScalar(principal, shift), domain); !cand.IsEmpty() {
			result = interval.Hull(result, cand)
		}
		if reflected != nil {
			if cand := interval.Intersect(interval.AddScalar(*reflected, shift), domain); !cand.IsEmpty() {
				result = interval.Hull(result, cand)
			}
		}
	}
	return result
}

func reviseAdd(e *symbolic.Expr, target interval.Interval, cache map[*symbolic.Expr]interval.Interval, b *box.Box, changed *bitset.BitSet) error {
	terms := e.AddTerms()
	s := interval.AddScalar(target, -e.AddConstant())
	contrib := make([]interval.Interval, len(terms))
	for i, t := range terms {
		contrib[i] = interval.MulScalar(cache[t.Term], t.Coeff)
	}
	for i, t := range terms {
		// Sum every OTHER term's forward contribution directly, rather
		// than subtracting contrib[i] out of a precomputed total: the
		// latter re-adds and re-subtracts the same correlated quantity,
		// which interval arithmetic cannot cancel and only widens the
		// result (the classic interval "dependency problem").
		others := interval.Point(0)
		for j, c := range contrib {
			if j != i {
				others = interval.Add(others, c)
			}
		}
		candidate := interval.Div(interval.Sub(s, others), interval.Point(t.Coeff))
		if err := reviseNode(t.Term, candidate, cache, b, changed); err != nil {
			return err
		}
		if b.IsEmpty() {
			return nil
		}
	}
	return nil
}

func reviseMul(e *symbolic.Expr, target interval.Interval, cache map[*symbolic.Expr]interval.Interval, b *box.Box, changed *bitset.BitSet) error {
	terms := e.MulTerms()
	r := interval.Div(target, interval.Point(e.MulConstant()))
	factors := make([]interval.Interval, len(terms))
	for i, t := range terms {
		factors[i] = applyExponent(cache[t.Base], interval.Point(t.Exp))
	}
	for i, t := range terms {
		// As in reviseAdd: multiply every OTHER factor's forward value
		// directly rather than dividing a precomputed total by factors[i],
		// to avoid the same correlated-quantity over-widening.
		others := interval.Point(1)
		for j, f := range factors {
			if j != i {
				others = interval.Mul(others, f)
			}
		}
		rest := interval.Div(r, others)
		candidate := invertExponent(rest, t.Exp)
		if err := reviseNode(t.Base, candidate, cache, b, changed); err != nil {
			return err
		}
		if b.IsEmpty() {
			return nil
		}
	}
	return nil
}

func reviseDiv(e *symbolic.Expr, target interval.Interval, cache map[*symbolic.Expr]interval.Interval, b *box.Box, changed *bitset.BitSet) error {
	a, bi := cache[e.Child1()], cache[e.Child2()]
	aCandidate := interval.Intersect(a, interval.Mul(target, bi))
	if err := reviseNode(e.Child1(), aCandidate, cache, b, changed); err != nil {
		return err
	}
	if b.IsEmpty() {
		return nil
	}
	if !target.Contains(0) {
		bCandidate := interval.Intersect(bi, interval.Div(a, target))
		if err := reviseNode(e.Child2(), bCandidate, cache, b, changed); err != nil {
			return err
		}
	}
	return nil
}

func revisePow(e *symbolic.Expr, target interval.Interval, cache map[*symbolic.Expr]interval.Interval, b *box.Box, changed *bitset.BitSet) error {
	expIv := cache[e.Child2()]
	if !expIv.IsDegenerate() {
		return nil
	}
	candidate := invertExponent(target, expIv.Lo)
	return reviseNode(e.Child1(), candidate, cache, b, changed)
}

// invertExponent returns the set of bases x such that x^exp lies in r, for
// an integer or simple real exponent. Even integer exponents are
// two-valued (+/- the positive root), so the result is the hull of both
// branches, matching the same soundness-over-tightness tradeoff Abs uses.
func invertExponent(r interval.Interval, exp float64) interval.Interval {
	if exp == 0 {
		return interval.Whole()
	}
	if exp == math.Trunc(exp) && math.Abs(exp) < 1<<31 {
		n := int(exp)
		if n%2 == 0 {
			positiveRoot := interval.Pow(intersectNonNegative(r), 1/float64(n))
			return interval.Hull(positiveRoot, interval.Neg(positiveRoot))
		}
		return interval.Pow(r, 1/float64(n))
	}
	return interval.Pow(intersectNonNegative(r), 1/exp)
}

func intersectNonNegative(a interval.Interval) interval.Interval {
	return interval.Intersect(a, interval.FromBounds(0, math.Inf(1)))
}

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
