package contractor

import (
	"testing"

	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

func TestFwdBwdNarrowsLinearEquality(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	// x + y = 0, y fixed to [3,3] -> x must narrow to [-3,-3].
	f := symbolic.Eq(symbolic.AddExpr(symbolic.NewVariableExpr(x), symbolic.NewVariableExpr(y)), symbolic.NewConstant(0))
	b := box.New([]symbolic.Variable{x, y}, []interval.Interval{
		interval.FromBounds(-100, 100),
		interval.Point(3),
	})
	c := NewFwdBwd(f, b)
	status := NewStatus(b)
	if err := c.Prune(status); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	got := b.Interval(0)
	if got.Lo != -3 || got.Hi != -3 {
		t.Errorf("x narrowed to %v, want [-3,-3]", got)
	}
	if !status.Output.Test(0) {
		t.Error("expected dimension 0 to be flagged as changed")
	}
}

func TestFwdBwdDetectsInfeasibleLeq(t *testing.T) {
	x := symbolic.NewVariable("x")
	f := symbolic.Leq(symbolic.NewVariableExpr(x), symbolic.NewConstant(0))
	b := box.New([]symbolic.Variable{x}, []interval.Interval{interval.FromBounds(1, 2)})
	c := NewFwdBwd(f, b)
	status := NewStatus(b)
	if err := c.Prune(status); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if !b.IsEmpty() {
		t.Error("x<=0 over [1,2] should have pruned to the empty box")
	}
}

func TestFwdBwdOnTrueFormulaIsDummyAndNoOp(t *testing.T) {
	x := symbolic.NewVariable("x")
	b := box.New([]symbolic.Variable{x}, []interval.Interval{interval.FromBounds(0, 1)})
	c := NewFwdBwd(symbolic.True(), b)
	if !c.IsDummy() {
		t.Error("True() should be a dummy contractor")
	}
	status := NewStatus(b)
	if err := c.Prune(status); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if status.Output.Any() {
		t.Error("a dummy contractor's Prune should not flag any dimension")
	}
}

func TestFwdBwdNarrowsThroughMultiplication(t *testing.T) {
	x := symbolic.NewVariable("x")
	// 2*x = 10 narrows x to [5,5].
	f := symbolic.Eq(symbolic.ScaleExpr(2, symbolic.NewVariableExpr(x)), symbolic.NewConstant(10))
	b := box.New([]symbolic.Variable{x}, []interval.Interval{interval.FromBounds(-100, 100)})
	c := NewFwdBwd(f, b)
	status := NewStatus(b)
	if err := c.Prune(status); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	got := b.Interval(0)
	if got.Lo != 5 || got.Hi != 5 {
		t.Errorf("x narrowed to %v, want [5,5]", got)
	}
}

func TestFwdBwdNarrowsSinEqualsZeroToPiNotPrincipalBranch(t *testing.T) {
	x := symbolic.NewVariable("x")
	// sin(x) = 0 over x in [3,3.2]: the only solution in range is pi, which
	// lies outside asin's principal branch [-pi/2,pi/2]. A revise that
	// returns only the principal branch's pre-image would intersect
	// [0,0] against [3,3.2] and wrongly empty the box.
	f := symbolic.Eq(symbolic.SinExpr(symbolic.NewVariableExpr(x)), symbolic.NewConstant(0))
	b := box.New([]symbolic.Variable{x}, []interval.Interval{interval.FromBounds(3, 3.2)})
	c := NewFwdBwd(f, b)
	status := NewStatus(b)
	if err := c.Prune(status); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if b.IsEmpty() {
		t.Fatal("sin(x)=0 over [3,3.2] should narrow to pi, not empty")
	}
	got := b.Interval(0)
	const pi = 3.14159265358979323846
	if got.Lo > pi || got.Hi < pi {
		t.Errorf("x narrowed to %v, want an interval containing pi", got)
	}
}

func TestFwdBwdNarrowsCosEqualsZeroUsingReflectedBranch(t *testing.T) {
	x := symbolic.NewVariable("x")
	// cos(x) = 0 over x in [-1.6,-1.5]: the only solution in range is
	// -pi/2, which is acos's reflected (negated) branch, not its
	// principal branch [0,pi].
	f := symbolic.Eq(symbolic.CosExpr(symbolic.NewVariableExpr(x)), symbolic.NewConstant(0))
	b := box.New([]symbolic.Variable{x}, []interval.Interval{interval.FromBounds(-1.6, -1.5)})
	c := NewFwdBwd(f, b)
	status := NewStatus(b)
	if err := c.Prune(status); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if b.IsEmpty() {
		t.Fatal("cos(x)=0 over [-1.6,-1.5] should narrow to -pi/2, not empty")
	}
	got := b.Interval(0)
	const negHalfPi = -1.57079632679489661923
	if got.Lo > negHalfPi || got.Hi < negHalfPi {
		t.Errorf("x narrowed to %v, want an interval containing -pi/2", got)
	}
}

func TestJoinMergesIndependentContractors(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	fx := symbolic.Eq(symbolic.NewVariableExpr(x), symbolic.NewConstant(1))
	fy := symbolic.Eq(symbolic.NewVariableExpr(y), symbolic.NewConstant(2))
	b := box.New([]symbolic.Variable{x, y}, []interval.Interval{
		interval.FromBounds(-10, 10),
		interval.FromBounds(-10, 10),
	})
	j := NewJoin([]Contractor{NewFwdBwd(fx, b), NewFwdBwd(fy, b)}, b.Size())
	status := NewStatus(b)
	if err := j.Prune(status); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if b.Interval(0).Lo != 1 || b.Interval(1).Lo != 2 {
		t.Errorf("Join should have narrowed both dimensions, got %v", b)
	}
}

func TestJoinIntersectsSameDimensionRatherThanChaining(t *testing.T) {
	x := symbolic.NewVariable("x")
	xe := symbolic.NewVariableExpr(x)
	b := box.New([]symbolic.Variable{x}, []interval.Interval{interval.FromBounds(-10, 10)})
	// c1 narrows x to [-10,5], c2 narrows x to [3,10]. Join(c1,c2)(B) must be
	// their intersection [3,5], not [3,10] (c2 run against c1's already-
	// narrowed box) nor [-10,5] (c1 run last against c2's narrowed box).
	c1 := NewFwdBwd(symbolic.Leq(xe, symbolic.NewConstant(5)), b)
	c2 := NewFwdBwd(symbolic.Geq(xe, symbolic.NewConstant(3)), b)
	j := NewJoin([]Contractor{c1, c2}, b.Size())
	status := NewStatus(b)
	if err := j.Prune(status); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	got := b.Interval(0)
	if got.Lo != 3 || got.Hi != 5 {
		t.Errorf("Join should intersect to [3,5], got %v", got)
	}
}

func TestFixpointPropagatesAcrossConstraints(t *testing.T) {
	x, y, z := symbolic.NewVariable("x"), symbolic.NewVariable("y"), symbolic.NewVariable("z")
	xe, ye, ze := symbolic.NewVariableExpr(x), symbolic.NewVariableExpr(y), symbolic.NewVariableExpr(z)
	// x = 1, y = x + 1, z = y + 1: a single Fixpoint pass should chain all
	// three all the way down to point intervals.
	f1 := symbolic.Eq(xe, symbolic.NewConstant(1))
	f2 := symbolic.Eq(ye, symbolic.AddExpr(xe, symbolic.NewConstant(1)))
	f3 := symbolic.Eq(ze, symbolic.AddExpr(ye, symbolic.NewConstant(1)))
	b := box.New([]symbolic.Variable{x, y, z}, []interval.Interval{
		interval.FromBounds(-100, 100),
		interval.FromBounds(-100, 100),
		interval.FromBounds(-100, 100),
	})
	fp := NewFixpoint([]Contractor{NewFwdBwd(f1, b), NewFwdBwd(f2, b), NewFwdBwd(f3, b)}, b.Size(), 0)
	status := NewStatus(b)
	if err := fp.Prune(status); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if b.Interval(2).Lo != 3 || b.Interval(2).Hi != 3 {
		t.Errorf("z should have narrowed to [3,3] by chained propagation, got %v", b.Interval(2))
	}
}

func TestPolytopeIsDummyOnEmptyConstraintSet(t *testing.T) {
	x := symbolic.NewVariable("x")
	b := box.New([]symbolic.Variable{x}, []interval.Interval{interval.FromBounds(0, 1)})
	p := NewPolytope(nil, b)
	if !p.IsDummy() {
		t.Error("Polytope over zero constraints should report IsDummy() == true")
	}
	status := NewStatus(b)
	if err := p.Prune(status); err != nil {
		t.Fatalf("Prune on a dummy Polytope should not error: %v", err)
	}
}

func TestPolytopeTightensLinearConstraint(t *testing.T) {
	x := symbolic.NewVariable("x")
	f := symbolic.Leq(symbolic.NewVariableExpr(x), symbolic.NewConstant(0))
	b := box.New([]symbolic.Variable{x}, []interval.Interval{interval.FromBounds(-10, 10)})
	p := NewPolytope([]*symbolic.Formula{f}, b)
	status := NewStatus(b)
	if err := p.Prune(status); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	got := b.Interval(0)
	if got.Hi > 0 {
		t.Errorf("x<=0 should have tightened the upper bound to <=0, got %v", got)
	}
}
