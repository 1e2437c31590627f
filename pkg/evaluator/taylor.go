package evaluator

import (
	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

// Taylor1Eval computes the first-order bounded-Taylor enclosure of f over
// b around the box's midpoint x0:
//
//	f(x0) + Σ ∂f/∂xi(b) * (b_i - x0_i)
//
// The zeroth-order term is evaluated at the point box x0, but every partial
// derivative is evaluated over the *full* box b, not at x0: that asymmetry
// is deliberate (the same one dReal's Taylor1Eval and Taylor2Eval implement)
// because bounding the derivative over the whole box is what makes the
// result a validated enclosure rather than a plain point approximation.
func Taylor1Eval(f *symbolic.Expr, b *box.Box) (interval.Interval, error) {
	x0 := b.Mid()
	ret, err := Evaluate(f, x0)
	if err != nil {
		return interval.Empty(), err
	}
	for i := 0; i < b.Size(); i++ {
		df, err := f.Differentiate(b.Variable(i))
		if err != nil {
			return interval.Empty(), err
		}
		dfOverBox, err := Evaluate(df, b)
		if err != nil {
			return interval.Empty(), err
		}
		delta := interval.Sub(b.Interval(i), x0.Interval(i))
		ret = interval.Add(ret, interval.Mul(dfOverBox, delta))
	}
	return ret, nil
}

// LinearizeTaylor1 returns the same first-order bounded-Taylor form
// Taylor1Eval sums, but unsummed: the constant term f(x0) and, per
// dimension, the partial derivative interval ∂f/∂xi evaluated over the
// full box b. A Polytope-style contractor uses these coefficients to build
// one linear inequality per constraint and tighten several dimensions at
// once from it, the way XNewton's linear relaxation does without needing
// an actual LP solver.
func LinearizeTaylor1(f *symbolic.Expr, b *box.Box) (constant interval.Interval, coeffs []interval.Interval, x0 *box.Box, err error) {
	x0 = b.Mid()
	constant, err = Evaluate(f, x0)
	if err != nil {
		return interval.Empty(), nil, nil, err
	}
	coeffs = make([]interval.Interval, b.Size())
	for i := 0; i < b.Size(); i++ {
		df, err := f.Differentiate(b.Variable(i))
		if err != nil {
			return interval.Empty(), nil, nil, err
		}
		coeffs[i], err = Evaluate(df, b)
		if err != nil {
			return interval.Empty(), nil, nil, err
		}
	}
	return constant, coeffs, x0, nil
}

// Taylor2Eval computes the second-order bounded-Taylor enclosure of f over
// b around x0:
//
//	f(x0) + Σ ∂f/∂xi(x0) * (b_i - x0_i)
//	      + Σ_{i<=j} w_ij * ∂²f/∂xi∂xj(b) * (b_i - x0_i)(b_j - x0_j)
//
// where w_ii = 1/2 and w_ij = 1 for i != j. Mirroring Taylor1Eval's
// asymmetry, the first-order partials are evaluated at the point box x0
// while the second-order partials are evaluated over the full box b; only
// the remainder term needs the conservative full-box bound.
func Taylor2Eval(f *symbolic.Expr, b *box.Box) (interval.Interval, error) {
	x0 := b.Mid()
	ret, err := Evaluate(f, x0)
	if err != nil {
		return interval.Empty(), err
	}
	n := b.Size()
	partials := make([]*symbolic.Expr, n)
	for i := 0; i < n; i++ {
		df, err := f.Differentiate(b.Variable(i))
		if err != nil {
			return interval.Empty(), err
		}
		partials[i] = df
		dfAtX0, err := Evaluate(df, x0)
		if err != nil {
			return interval.Empty(), err
		}
		delta := interval.Sub(b.Interval(i), x0.Interval(i))
		ret = interval.Add(ret, interval.Mul(dfAtX0, delta))
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dfij, err := partials[i].Differentiate(b.Variable(j))
			if err != nil {
				return interval.Empty(), err
			}
			dfijOverBox, err := Evaluate(dfij, b)
			if err != nil {
				return interval.Empty(), err
			}
			deltaI := interval.Sub(b.Interval(i), x0.Interval(i))
			deltaJ := interval.Sub(b.Interval(j), x0.Interval(j))
			weight := 1.0
			if i == j {
				weight = 0.5
			}
			term := interval.MulScalar(interval.Mul(dfijOverBox, interval.Mul(deltaI, deltaJ)), weight)
			ret = interval.Add(ret, term)
		}
	}
	return ret, nil
}
