package symbolic

import (
	"math"
	"sort"
)

// NewVariableExpr lifts a Variable into an expression cell.
func NewVariableExpr(v Variable) *Expr {
	c := &Expr{kind: KindVariable, variable: v, isPolynomial: true}
	c.hash = hashCombine(uint64(KindVariable), v.id)
	return interner.intern(c)
}

// NewConstant builds a numeric literal. NaN collapses to the singleton NaN
// cell rather than a degenerate Constant, so downstream code only ever
// checks Kind() == KindNaN once.
func NewConstant(v float64) *Expr {
	if math.IsNaN(v) {
		return NaN()
	}
	c := &Expr{kind: KindConstant, constant: v, isPolynomial: true}
	c.hash = hashCombine(uint64(KindConstant), hashFloat(v))
	return interner.intern(c)
}

// NewRealConstant models a real value not exactly representable in binary
// floating point by the tightest enclosing pair of adjacent doubles
// [lo, nextafter(lo, +inf)]. useLb selects which bound scalar Evaluate
// treats as the representative value.
func NewRealConstant(lo float64, useLb bool) *Expr {
	hi := math.Nextafter(lo, math.Inf(1))
	c := &Expr{kind: KindRealConstant, rcLo: lo, rcHi: hi, rcUseLb: useLb, isPolynomial: true}
	c.hash = hashCombine(uint64(KindRealConstant), hashFloat(lo), hashFloat(hi), boolHash(useLb))
	return interner.intern(c)
}

func boolHash(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func buildUnary(kind Kind, child *Expr, poly bool) *Expr {
	c := &Expr{kind: kind, child1: child, isPolynomial: poly}
	c.hash = hashCombine(uint64(kind), child.hash)
	return interner.intern(c)
}

func buildBinary(kind Kind, a, b *Expr, poly bool) *Expr {
	c := &Expr{kind: kind, child1: a, child2: b, isPolynomial: poly}
	c.hash = hashCombine(uint64(kind), a.hash, b.hash)
	return interner.intern(c)
}

// Sum flattens and constant-folds a set of addends into a single canonical
// Add cell (or a simpler cell when the sum collapses), mirroring
// ExpressionAddFactory's term accumulation.
func Sum(exprs ...*Expr) *Expr {
	constant := 0.0
	coeffs := map[*Expr]float64{}
	order := make([]*Expr, 0, len(exprs))

	var flatten func(coeff float64, ex *Expr)
	flatten = func(coeff float64, ex *Expr) {
		switch ex.kind {
		case KindConstant:
			constant += coeff * ex.constant
		case KindAdd:
			constant += coeff * ex.addConstant
			for _, t := range ex.addTerms {
				flatten(coeff*t.coeff, t.term)
			}
		case KindMul:
			if len(ex.mulTerms) == 1 && ex.mulTerms[0].exp == 1 {
				flatten(coeff*ex.mulConstant, ex.mulTerms[0].base)
				return
			}
			addTermTo(&order, coeffs, coeff, ex)
		default:
			addTermTo(&order, coeffs, coeff, ex)
		}
	}
	for _, e := range exprs {
		flatten(1, e)
	}

	terms := make([]addTerm, 0, len(order))
	for _, ex := range order {
		if c := coeffs[ex]; c != 0 {
			terms = append(terms, addTerm{coeff: c, term: ex})
		}
	}
	sortAddTerms(terms)

	if len(terms) == 0 {
		return NewConstant(constant)
	}
	if len(terms) == 1 && terms[0].coeff == 1 && constant == 0 {
		return terms[0].term
	}

	poly := true
	for _, t := range terms {
		if !t.term.isPolynomial {
			poly = false
			break
		}
	}
	c := &Expr{kind: KindAdd, addConstant: constant, addTerms: terms, isPolynomial: poly}
	c.hash = hashCombine(uint64(KindAdd), hashFloat(constant))
	for _, t := range terms {
		c.hash = hashCombine(c.hash, hashFloat(t.coeff), t.term.hash)
	}
	return interner.intern(c)
}

func addTermTo(order *[]*Expr, coeffs map[*Expr]float64, coeff float64, ex *Expr) {
	if _, ok := coeffs[ex]; !ok {
		*order = append(*order, ex)
	}
	coeffs[ex] += coeff
}

// AddExpr returns a+b.
func AddExpr(a, b *Expr) *Expr { return Sum(a, b) }

// ScaleExpr returns c*a, folding into existing Mul/Constant structure
// without distributing through Add (distribution is Expand's job).
func ScaleExpr(c float64, a *Expr) *Expr { return Product(NewConstant(c), a) }

// NegExpr returns -a.
func NegExpr(a *Expr) *Expr { return ScaleExpr(-1, a) }

// SubExpr returns a-b.
func SubExpr(a, b *Expr) *Expr { return Sum(a, NegExpr(b)) }

// Product flattens and constant-folds a set of factors into a single
// canonical Mul cell, mirroring ExpressionMulFactory's base/exponent map.
func Product(exprs ...*Expr) *Expr {
	constant := 1.0
	exps := map[*Expr]float64{}
	order := make([]*Expr, 0, len(exprs))

	var flatten func(exp float64, ex *Expr)
	flatten = func(exp float64, ex *Expr) {
		switch ex.kind {
		case KindConstant:
			constant *= math.Pow(ex.constant, exp)
		case KindMul:
			constant *= math.Pow(ex.mulConstant, exp)
			for _, t := range ex.mulTerms {
				flatten(exp*t.exp, t.base)
			}
		default:
			if _, ok := exps[ex]; !ok {
				order = append(order, ex)
			}
			exps[ex] += exp
		}
	}
	for _, e := range exprs {
		flatten(1, e)
	}

	if constant == 0 {
		return NewConstant(0)
	}

	terms := make([]mulTerm, 0, len(order))
	for _, base := range order {
		if e := exps[base]; e != 0 {
			terms = append(terms, mulTerm{base: base, exp: e})
		}
	}
	sortMulTerms(terms)

	if len(terms) == 0 {
		return NewConstant(constant)
	}
	if len(terms) == 1 && terms[0].exp == 1 && constant == 1 {
		return terms[0].base
	}

	poly := true
	for _, t := range terms {
		if !t.base.isPolynomial || t.exp != math.Trunc(t.exp) || t.exp < 0 {
			poly = false
			break
		}
	}
	c := &Expr{kind: KindMul, mulConstant: constant, mulTerms: terms, isPolynomial: poly}
	c.hash = hashCombine(uint64(KindMul), hashFloat(constant))
	for _, t := range terms {
		c.hash = hashCombine(c.hash, hashFloat(t.exp), t.base.hash)
	}
	return interner.intern(c)
}

// MulExpr returns a*b.
func MulExpr(a, b *Expr) *Expr { return Product(a, b) }

// DivExpr returns a/b.
func DivExpr(a, b *Expr) *Expr {
	if b.kind == KindConstant && b.constant != 0 {
		return ScaleExpr(1/b.constant, a)
	}
	return buildBinary(KindDiv, a, b, false)
}

// LogExpr returns log(a).
func LogExpr(a *Expr) *Expr { return buildUnary(KindLog, a, false) }

// AbsExpr returns |a|.
func AbsExpr(a *Expr) *Expr { return buildUnary(KindAbs, a, false) }

// ExpExpr returns exp(a).
func ExpExpr(a *Expr) *Expr { return buildUnary(KindExp, a, false) }

// SqrtExpr returns sqrt(a).
func SqrtExpr(a *Expr) *Expr { return buildUnary(KindSqrt, a, false) }

// SinExpr returns sin(a).
func SinExpr(a *Expr) *Expr { return buildUnary(KindSin, a, false) }

// CosExpr returns cos(a).
func CosExpr(a *Expr) *Expr { return buildUnary(KindCos, a, false) }

// TanExpr returns tan(a).
func TanExpr(a *Expr) *Expr { return buildUnary(KindTan, a, false) }

// AsinExpr returns asin(a).
func AsinExpr(a *Expr) *Expr { return buildUnary(KindAsin, a, false) }

// AcosExpr returns acos(a).
func AcosExpr(a *Expr) *Expr { return buildUnary(KindAcos, a, false) }

// AtanExpr returns atan(a).
func AtanExpr(a *Expr) *Expr { return buildUnary(KindAtan, a, false) }

// SinhExpr returns sinh(a).
func SinhExpr(a *Expr) *Expr { return buildUnary(KindSinh, a, false) }

// CoshExpr returns cosh(a).
func CoshExpr(a *Expr) *Expr { return buildUnary(KindCosh, a, false) }

// TanhExpr returns tanh(a).
func TanhExpr(a *Expr) *Expr { return buildUnary(KindTanh, a, false) }

// PowExpr returns base^exp. Non-negative integer exponents keep the
// expression polynomial.
func PowExpr(base, exp *Expr) *Expr {
	if exp.kind == KindConstant && exp.constant == math.Trunc(exp.constant) && exp.constant >= 0 {
		return Product(repeatUnit(base, exp.constant)...)
	}
	poly := false
	c := &Expr{kind: KindPow, child1: base, child2: exp, isPolynomial: poly}
	c.hash = hashCombine(uint64(KindPow), base.hash, exp.hash)
	return interner.intern(c)
}

// repeatUnit builds a single-factor expression list representing
// base^n for use with Product's flattening (so PowExpr with a constant
// non-negative integer exponent is represented as a Mul term, matching
// the evaluator contract's "Mul -> Pi base^exp").
func repeatUnit(base *Expr, n float64) []*Expr {
	return []*Expr{productPow(base, n)}
}

func productPow(base *Expr, n float64) *Expr {
	c := &Expr{kind: KindMul, mulConstant: 1, mulTerms: []mulTerm{{base: base, exp: n}}}
	c.isPolynomial = base.isPolynomial && n == math.Trunc(n) && n >= 0
	c.hash = hashCombine(uint64(KindMul), hashFloat(1), hashFloat(n), base.hash)
	return interner.intern(c)
}

// Atan2Expr returns atan2(y, x).
func Atan2Expr(y, x *Expr) *Expr { return buildBinary(KindAtan2, y, x, false) }

// MinExpr returns min(a, b).
func MinExpr(a, b *Expr) *Expr {
	if a.Less(b) {
		return buildBinary(KindMin, a, b, false)
	}
	return buildBinary(KindMin, b, a, false)
}

// MaxExpr returns max(a, b).
func MaxExpr(a, b *Expr) *Expr {
	if a.Less(b) {
		return buildBinary(KindMax, a, b, false)
	}
	return buildBinary(KindMax, b, a, false)
}

// IfThenElseExpr returns the expression-valued conditional "if cond then
// thenE else elseE".
func IfThenElseExpr(cond *Formula, thenE, elseE *Expr) *Expr {
	c := &Expr{kind: KindIfThenElse, cond: cond, then: thenE, els_: elseE, isPolynomial: false}
	c.hash = hashCombine(uint64(KindIfThenElse), cond.hash, thenE.hash, elseE.hash)
	return interner.intern(c)
}

// UninterpretedFunctionExpr returns an opaque function application over the
// given free variables.
func UninterpretedFunctionExpr(name string, vars ...Variable) *Expr {
	sorted := append([]Variable(nil), vars...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	c := &Expr{kind: KindUninterpretedFunction, ufName: name, ufVars: sorted, isPolynomial: false}
	h := hashCombine(uint64(KindUninterpretedFunction), stringHash(name))
	for _, v := range sorted {
		h = hashCombine(h, v.id)
	}
	c.hash = h
	return interner.intern(c)
}

func stringHash(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h = (h ^ uint64(s[i])) * 1099511628211
	}
	return h
}
