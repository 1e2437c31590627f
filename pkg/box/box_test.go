package box

import (
	"testing"

	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

func newTestBox() (*Box, symbolic.Variable, symbolic.Variable) {
	x := symbolic.NewVariable("x")
	y := symbolic.NewVariable("y")
	b := New([]symbolic.Variable{x, y}, []interval.Interval{
		interval.FromBounds(0, 10),
		interval.FromBounds(-5, 5),
	})
	return b, x, y
}

func TestIndexOfIsTotalAndBijective(t *testing.T) {
	b, x, y := newTestBox()
	ix, ok := b.IndexOf(x)
	if !ok || ix != 0 {
		t.Errorf("IndexOf(x) = (%d, %v), want (0, true)", ix, ok)
	}
	iy, ok := b.IndexOf(y)
	if !ok || iy != 1 {
		t.Errorf("IndexOf(y) = (%d, %v), want (1, true)", iy, ok)
	}
	if ix == iy {
		t.Error("distinct variables must map to distinct indices")
	}
}

func TestSetEmptyCanonicalizesWholeBox(t *testing.T) {
	b, _, _ := newTestBox()
	b.SetInterval(0, interval.Empty())
	if !b.IsEmpty() {
		t.Fatal("expected box to be empty once one dimension is empty")
	}
	b.SetEmpty()
	for i := 0; i < b.Size(); i++ {
		if !b.Interval(i).IsEmpty() {
			t.Errorf("dimension %d not canonicalized to empty", i)
		}
	}
}

func TestBisectProducesSubBoxesCoveringOriginal(t *testing.T) {
	b, _, _ := newTestBox()
	left, right := b.Bisect(0)
	for i := 1; i < b.Size(); i++ {
		if !left.Interval(i).Equal(b.Interval(i)) || !right.Interval(i).Equal(b.Interval(i)) {
			t.Errorf("Bisect should only change dimension 0, dimension %d differs", i)
		}
	}
	hull := interval.Hull(left.Interval(0), right.Interval(0))
	if !hull.Equal(b.Interval(0)) {
		t.Errorf("the union of the two halves should reconstruct the original interval, got %v want %v", hull, b.Interval(0))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b, x, _ := newTestBox()
	c := b.Clone()
	c.Set(x, interval.Point(1))
	if b.Interval(0).Equal(c.Interval(0)) {
		t.Error("mutating a clone should not affect the original box")
	}
}

func TestMaxDiamIndexPicksWidestBisectableDimension(t *testing.T) {
	x := symbolic.NewVariable("x")
	y := symbolic.NewVariable("y")
	b := New([]symbolic.Variable{x, y}, []interval.Interval{
		interval.FromBounds(0, 1),
		interval.FromBounds(0, 100),
	})
	if got := b.MaxDiamIndex(); got != 1 {
		t.Errorf("MaxDiamIndex() = %d, want 1", got)
	}
}

func TestMaxDiamIndexIsMinusOneWhenNoneBisectable(t *testing.T) {
	x := symbolic.NewVariable("x")
	b := New([]symbolic.Variable{x}, []interval.Interval{interval.Point(5)})
	if got := b.MaxDiamIndex(); got != -1 {
		t.Errorf("MaxDiamIndex() = %d, want -1 for an all-degenerate box", got)
	}
}
