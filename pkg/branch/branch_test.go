package branch

import (
	"testing"

	"github.com/dreal-go/dicp/pkg/bitset"
	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

func TestMaxDiamPicksWidestDimension(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	b := box.New([]symbolic.Variable{x, y}, []interval.Interval{
		interval.FromBounds(0, 1),
		interval.FromBounds(0, 100),
	})
	got, err := MaxDiam{}.Branch(b, nil, nil)
	if err != nil {
		t.Fatalf("Branch returned error: %v", err)
	}
	if got != 1 {
		t.Errorf("Branch() = %d, want 1", got)
	}
}

func TestMaxDiamIsMinusOneOnDegenerateBox(t *testing.T) {
	x := symbolic.NewVariable("x")
	b := box.New([]symbolic.Variable{x}, []interval.Interval{interval.Point(5)})
	got, err := MaxDiam{}.Branch(b, nil, nil)
	if err != nil {
		t.Fatalf("Branch returned error: %v", err)
	}
	if got != -1 {
		t.Errorf("Branch() = %d, want -1 for a fully degenerate box", got)
	}
}

func TestGradientDescentPrefersSteeperDimension(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	xe, ye := symbolic.NewVariableExpr(x), symbolic.NewVariableExpr(y)
	// f = 10*x + y: the constraint is far more sensitive to x.
	f := symbolic.Eq(symbolic.AddExpr(symbolic.ScaleExpr(10, xe), ye), symbolic.NewConstant(0))
	b := box.New([]symbolic.Variable{x, y}, []interval.Interval{
		interval.FromBounds(0, 10),
		interval.FromBounds(0, 10),
	})
	got, err := GradientDescent{}.Branch(b, []*symbolic.Formula{f}, nil)
	if err != nil {
		t.Fatalf("Branch returned error: %v", err)
	}
	if got != 0 {
		t.Errorf("Branch() = %d, want 0 (x has the larger coefficient)", got)
	}
}

func TestMaxDiamHonorsCandidateRestriction(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	b := box.New([]symbolic.Variable{x, y}, []interval.Interval{
		interval.FromBounds(0, 1),
		interval.FromBounds(0, 100),
	})
	candidates := bitset.New(2)
	candidates.Set(0) // exclude dimension 1 even though it is wider
	got, err := MaxDiam{}.Branch(b, nil, candidates)
	if err != nil {
		t.Fatalf("Branch returned error: %v", err)
	}
	if got != 0 {
		t.Errorf("Branch() = %d, want 0 (the only candidate dimension)", got)
	}
}

func TestGradientDescentFallsBackToMaxDiamWithNoConstraints(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	b := box.New([]symbolic.Variable{x, y}, []interval.Interval{
		interval.FromBounds(0, 1),
		interval.FromBounds(0, 100),
	})
	got, err := GradientDescent{}.Branch(b, nil, nil)
	if err != nil {
		t.Fatalf("Branch returned error: %v", err)
	}
	if got != 1 {
		t.Errorf("Branch() = %d, want 1 (MaxDiam fallback)", got)
	}
}
