package symbolic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// finiteDifference approximates f'(x0) by a centered difference, for
// cross-checking Differentiate's symbolic result against a numerical one.
func finiteDifference(t *testing.T, f *Expr, x Variable, env map[Variable]float64, x0 float64) float64 {
	t.Helper()
	const h = 1e-6
	plus := map[Variable]float64{}
	minus := map[Variable]float64{}
	for v, val := range env {
		plus[v] = val
		minus[v] = val
	}
	plus[x] = x0 + h
	minus[x] = x0 - h
	fp, err := f.Evaluate(plus)
	require.NoError(t, err)
	fm, err := f.Evaluate(minus)
	require.NoError(t, err)
	return (fp - fm) / (2 * h)
}

// TestDifferentiateMatchesFiniteDifference exercises spec.md's testable
// property #6: symbolic Differentiate should match numerical finite
// differences within tolerance, for non-non-differentiable expression
// shapes. testify's require.InDelta expresses the tolerance comparison
// more directly than a hand-rolled math.Abs(got-want) check.
func TestDifferentiateMatchesFiniteDifference(t *testing.T) {
	x, y := NewVariable("x"), NewVariable("y")
	xe, ye := NewVariableExpr(x), NewVariableExpr(y)

	cases := []struct {
		name string
		f    *Expr
		wrt  Variable
		env  map[Variable]float64
		x0   float64
	}{
		{"polynomial", AddExpr(PowExpr(xe, NewConstant(3)), ScaleExpr(2, xe)), x, map[Variable]float64{x: 1.7}, 1.7},
		// S5: f = sin(x)*exp(y); df/dx = cos(x)*exp(y).
		{"sin_times_exp", MulExpr(SinExpr(xe), ExpExpr(ye)), x, map[Variable]float64{x: 0.6, y: 1.3}, 0.6},
		{"div", DivExpr(xe, AddExpr(ye, NewConstant(2))), x, map[Variable]float64{x: 0.4, y: 0.9}, 0.4},
		{"sqrt", SqrtExpr(AddExpr(PowExpr(xe, NewConstant(2)), NewConstant(1))), x, map[Variable]float64{x: 0.8}, 0.8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			df, err := tc.f.Differentiate(tc.wrt)
			require.NoError(t, err)

			got, err := df.Evaluate(tc.env)
			require.NoError(t, err)

			want := finiteDifference(t, tc.f, tc.wrt, tc.env, tc.x0)
			require.InDelta(t, want, got, 1e-4)
		})
	}
}

// TestDifferentiateSinTimesExpMatchesStructurally checks S5's structural
// claim directly: d(sin(x)*exp(y))/dx canonicalises to cos(x)*exp(y), not
// merely an equal-valued expression.
func TestDifferentiateSinTimesExpMatchesStructurally(t *testing.T) {
	x, y := NewVariable("x"), NewVariable("y")
	xe, ye := NewVariableExpr(x), NewVariableExpr(y)

	f := MulExpr(SinExpr(xe), ExpExpr(ye))
	df, err := f.Differentiate(x)
	require.NoError(t, err)

	want := MulExpr(CosExpr(xe), ExpExpr(ye))
	require.True(t, df.EqualTo(want), "d(sin(x)*exp(y))/dx = %v, want structurally %v", df, want)
}
