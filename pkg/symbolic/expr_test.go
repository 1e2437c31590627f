package symbolic

import (
	"testing"

	"github.com/dreal-go/dicp/pkg/errs"
)

func TestHashConsingDeduplicatesStructurallyEqualExpressions(t *testing.T) {
	x := NewVariable("x")
	a := AddExpr(NewVariableExpr(x), NewConstant(1))
	b := AddExpr(NewVariableExpr(x), NewConstant(1))
	if a != b {
		t.Error("structurally equal expressions should intern to the same cell")
	}
}

func TestSumFlattensAndCombinesLikeTerms(t *testing.T) {
	x := NewVariable("x")
	xe := NewVariableExpr(x)
	got := Sum(ScaleExpr(2, xe), ScaleExpr(3, xe), NewConstant(5))
	if got.kind != KindAdd {
		t.Fatalf("expected an Add cell, got %s", got.kind)
	}
	if len(got.addTerms) != 1 || got.addTerms[0].coeff != 5 {
		t.Errorf("expected a single term with coefficient 5, got %v", got.addTerms)
	}
	if got.addConstant != 5 {
		t.Errorf("addConstant = %v, want 5", got.addConstant)
	}
}

func TestSumOfSingleUnitTermCollapsesToTheTermItself(t *testing.T) {
	x := NewVariable("x")
	xe := NewVariableExpr(x)
	got := Sum(xe)
	if got != xe {
		t.Errorf("Sum(x) should collapse to x itself, got %v", got)
	}
}

func TestProductFlattensNestedMulAndFoldsConstants(t *testing.T) {
	x := NewVariable("x")
	xe := NewVariableExpr(x)
	got := Product(ScaleExpr(2, xe), NewConstant(3))
	if got.kind != KindMul {
		t.Fatalf("expected a Mul cell, got %s", got.kind)
	}
	if got.mulConstant != 6 {
		t.Errorf("mulConstant = %v, want 6", got.mulConstant)
	}
}

func TestGetVariablesCollectsFreeVariablesOnly(t *testing.T) {
	x, y := NewVariable("x"), NewVariable("y")
	e := AddExpr(MulExpr(NewVariableExpr(x), NewVariableExpr(x)), NewVariableExpr(y))
	vars := e.GetVariables()
	if !vars.Contains(x) || !vars.Contains(y) || len(vars) != 2 {
		t.Errorf("GetVariables() = %v, want {x, y}", vars)
	}
}

func TestEvaluateMissingBinding(t *testing.T) {
	x := NewVariable("x")
	_, err := NewVariableExpr(x).Evaluate(map[Variable]float64{})
	if !errs.Is(err, errs.MissingBinding) {
		t.Errorf("expected a MissingBinding error, got %v", err)
	}
}

func TestEvaluateNumericDomainOnLogOfNegative(t *testing.T) {
	_, err := LogExpr(NewConstant(-1)).Evaluate(nil)
	if !errs.Is(err, errs.NumericDomain) {
		t.Errorf("expected a NumericDomain error, got %v", err)
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	x := NewVariable("x")
	e := AddExpr(MulExpr(NewConstant(2), NewVariableExpr(x)), NewConstant(1))
	got, err := e.Evaluate(map[Variable]float64{x: 3})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if got != 7 {
		t.Errorf("Evaluate(2x+1, x=3) = %v, want 7", got)
	}
}

func TestDifferentiatePolynomial(t *testing.T) {
	x := NewVariable("x")
	xe := NewVariableExpr(x)
	// f = x^3, f' should evaluate to 3*x^2
	f := PowExpr(xe, NewConstant(3))
	df, err := f.Differentiate(x)
	if err != nil {
		t.Fatalf("Differentiate returned error: %v", err)
	}
	got, err := df.Evaluate(map[Variable]float64{x: 2})
	if err != nil {
		t.Fatalf("Evaluate(f') returned error: %v", err)
	}
	if got != 12 {
		t.Errorf("d(x^3)/dx at x=2 = %v, want 12", got)
	}
}

func TestDifferentiateAbsFailsWhenVariableIsFree(t *testing.T) {
	x := NewVariable("x")
	_, err := AbsExpr(NewVariableExpr(x)).Differentiate(x)
	if !errs.Is(err, errs.NonDifferentiable) {
		t.Errorf("expected NonDifferentiable, got %v", err)
	}
}

func TestDifferentiateAbsSucceedsWhenVariableIsNotFree(t *testing.T) {
	x, y := NewVariable("x"), NewVariable("y")
	df, err := AbsExpr(NewVariableExpr(y)).Differentiate(x)
	if err != nil {
		t.Fatalf("Differentiate returned error: %v", err)
	}
	v, err := df.Evaluate(nil)
	if err != nil || v != 0 {
		t.Errorf("d(|y|)/dx = %v, want constant 0", df)
	}
}

func TestSubstituteReturnsIdentityWhenUnchanged(t *testing.T) {
	x, y := NewVariable("x"), NewVariable("y")
	e := AddExpr(NewVariableExpr(x), NewConstant(1))
	got := e.Substitute(map[Variable]*Expr{y: NewConstant(5)})
	if got != e {
		t.Error("Substitute with no matching variable should return the original cell identity")
	}
}

func TestSubstituteReplacesFreeVariable(t *testing.T) {
	x := NewVariable("x")
	e := AddExpr(NewVariableExpr(x), NewConstant(1))
	got := e.Substitute(map[Variable]*Expr{x: NewConstant(4)})
	v, err := got.Evaluate(nil)
	if err != nil || v != 5 {
		t.Errorf("Substitute(x->4)(x+1) evaluated to %v, want 5", v)
	}
}

func TestExpandDistributesMultiplicationOverAddition(t *testing.T) {
	x, y := NewVariable("x"), NewVariable("y")
	xe, ye := NewVariableExpr(x), NewVariableExpr(y)
	// (x+1)*(y+1) expanded should evaluate the same as the un-expanded form.
	f := MulExpr(AddExpr(xe, NewConstant(1)), AddExpr(ye, NewConstant(1)))
	expanded, err := f.Expand()
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	env := map[Variable]float64{x: 2, y: 3}
	want, _ := f.Evaluate(env)
	got, err := expanded.Evaluate(env)
	if err != nil {
		t.Fatalf("Evaluate(expanded) returned error: %v", err)
	}
	if got != want {
		t.Errorf("Expand((x+1)(y+1)) evaluated to %v, want %v", got, want)
	}
}

func TestExpandRealizesIntegerPowerByRepeatedSquaring(t *testing.T) {
	x := NewVariable("x")
	xe := NewVariableExpr(x)
	f := PowExpr(AddExpr(xe, NewConstant(1)), NewConstant(4))
	expanded, err := f.Expand()
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	env := map[Variable]float64{x: 2}
	want, _ := f.Evaluate(env)
	got, err := expanded.Evaluate(env)
	if err != nil {
		t.Fatalf("Evaluate(expanded) returned error: %v", err)
	}
	if got != want {
		t.Errorf("Expand((x+1)^4) evaluated to %v, want %v", got, want)
	}
}

func TestOrderingIsStrictTotalOrder(t *testing.T) {
	x, y := NewVariable("x"), NewVariable("y")
	xe, ye := NewVariableExpr(x), NewVariableExpr(y)
	if xe.Less(xe) {
		t.Error("Less should be irreflexive")
	}
	if xe.Less(ye) == ye.Less(xe) {
		t.Error("Less should be asymmetric for distinct expressions")
	}
}
