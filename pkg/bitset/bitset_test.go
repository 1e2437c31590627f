package bitset

import "testing"

func TestNewIsEmpty(t *testing.T) {
	b := New(10)
	if b.Any() {
		t.Error("New(10) should have no flagged indices")
	}
	if b.Count() != 0 {
		t.Errorf("Count() = %d, want 0", b.Count())
	}
}

func TestFullFlagsEveryIndex(t *testing.T) {
	b := Full(5)
	if b.Count() != 5 {
		t.Errorf("Count() = %d, want 5", b.Count())
	}
	for i := 0; i < 5; i++ {
		if !b.Test(i) {
			t.Errorf("Full(5) should flag index %d", i)
		}
	}
}

func TestSetClearTest(t *testing.T) {
	b := New(130) // spans three words
	b.Set(0)
	b.Set(64)
	b.Set(129)
	for _, i := range []int{0, 64, 129} {
		if !b.Test(i) {
			t.Errorf("expected index %d to be set", i)
		}
	}
	if b.Count() != 3 {
		t.Errorf("Count() = %d, want 3", b.Count())
	}
	b.Clear(64)
	if b.Test(64) {
		t.Error("expected index 64 to be cleared")
	}
	if b.Count() != 2 {
		t.Errorf("Count() = %d, want 2", b.Count())
	}
}

func TestForEachVisitsInAscendingOrder(t *testing.T) {
	b := New(200)
	b.Set(199)
	b.Set(5)
	b.Set(70)
	var got []int
	b.ForEach(func(i int) { got = append(got, i) })
	want := []int{5, 70, 199}
	if len(got) != len(want) {
		t.Fatalf("ForEach visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ForEach()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestUnionAndIntersect(t *testing.T) {
	a := New(10)
	a.Set(1)
	a.Set(2)
	b := New(10)
	b.Set(2)
	b.Set(3)

	u := a.Clone()
	u.Union(b)
	if u.Count() != 3 {
		t.Errorf("Union count = %d, want 3", u.Count())
	}

	i := a.Clone()
	i.Intersect(b)
	if i.Count() != 1 || !i.Test(2) {
		t.Errorf("Intersect should contain only index 2, got %v", i.ToSlice())
	}
}

func TestFullTailMaskingDoesNotLeakAboveN(t *testing.T) {
	b := Full(70) // spans two words, tail word only partially used
	if b.Count() != 70 {
		t.Errorf("Count() = %d, want 70", b.Count())
	}
	b.Union(Full(70))
	if b.Count() != 70 {
		t.Errorf("Count() after self-union = %d, want 70 (no leakage past N)", b.Count())
	}
}

func TestEqual(t *testing.T) {
	a := New(10)
	a.Set(3)
	b := New(10)
	b.Set(3)
	if !a.Equal(b) {
		t.Error("expected equal bitsets to compare equal")
	}
	b.Set(4)
	if a.Equal(b) {
		t.Error("expected differing bitsets to compare unequal")
	}
}
