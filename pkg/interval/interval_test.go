package interval

import (
	"math"
	"testing"
)

func TestFromBoundsNormalizesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  float64
		wantEmp bool
	}{
		{"normal", 1, 2, false},
		{"degenerate", 3, 3, false},
		{"inverted", 5, 2, true},
		{"nan lo", math.NaN(), 2, true},
		{"nan hi", 1, math.NaN(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromBounds(tt.lo, tt.hi)
			if got.IsEmpty() != tt.wantEmp {
				t.Errorf("FromBounds(%v, %v).IsEmpty() = %v, want %v", tt.lo, tt.hi, got.IsEmpty(), tt.wantEmp)
			}
		})
	}
}

func TestAddEnclosesTrueSum(t *testing.T) {
	a := FromBounds(1, 2)
	b := FromBounds(3, 4)
	got := Add(a, b)
	if got.Lo > 4 || got.Hi < 6 {
		t.Errorf("Add([1,2],[3,4]) = %v, want an enclosure of [4,6]", got)
	}
}

func TestMulSignCases(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Interval
		lo, hi float64
	}{
		{"pos*pos", FromBounds(1, 2), FromBounds(3, 4), 3, 8},
		{"neg*pos", FromBounds(-2, -1), FromBounds(3, 4), -8, -3},
		{"straddle*pos", FromBounds(-1, 2), FromBounds(2, 3), -3, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mul(tt.a, tt.b)
			if got.Lo > tt.lo || got.Hi < tt.hi {
				t.Errorf("Mul(%v, %v) = %v, want an enclosure of [%v,%v]", tt.a, tt.b, got, tt.lo, tt.hi)
			}
		})
	}
}

func TestDivByStraddlingZeroWidensToWhole(t *testing.T) {
	a := FromBounds(1, 2)
	b := FromBounds(-1, 1)
	got := Div(a, b)
	if !math.IsInf(got.Lo, -1) || !math.IsInf(got.Hi, 1) {
		t.Errorf("Div(%v, %v) = %v, want the whole real line", a, b, got)
	}
}

func TestDivByZeroPointIsEmpty(t *testing.T) {
	got := Div(FromBounds(1, 2), Point(0))
	if !got.IsEmpty() {
		t.Errorf("Div([1,2], [0,0]) = %v, want empty", got)
	}
}

func TestSqrtDomainRestriction(t *testing.T) {
	tests := []struct {
		name    string
		a       Interval
		wantEmp bool
	}{
		{"all negative", FromBounds(-4, -1), true},
		{"straddles zero", FromBounds(-4, 9), false},
		{"all positive", FromBounds(4, 9), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sqrt(tt.a)
			if got.IsEmpty() != tt.wantEmp {
				t.Errorf("Sqrt(%v) = %v, wantEmpty %v", tt.a, got, tt.wantEmp)
			}
		})
	}
}

func TestLogDomainRestriction(t *testing.T) {
	if got := Log(FromBounds(-2, -1)); !got.IsEmpty() {
		t.Errorf("Log of a negative interval should be empty, got %v", got)
	}
	got := Log(FromBounds(1, math.E))
	if got.Lo > 0 || got.Hi < 1 {
		t.Errorf("Log([1,e]) = %v, want an enclosure of [0,1]", got)
	}
}

func TestAsinAcosDomainClamp(t *testing.T) {
	// The float64 values of pi/2 and pi lie below the true values, so a
	// sound enclosure reaches one ULP past them; anything wider means the
	// argument was not clamped to [-1,1].
	halfPiUp := math.Nextafter(math.Pi/2, math.Inf(1))
	got := Asin(FromBounds(-5, 5))
	if got.Lo < -halfPiUp || got.Hi > halfPiUp {
		t.Errorf("Asin([-5,5]) = %v, want bounds within one ULP outside [-pi/2, pi/2]", got)
	}
	got = Acos(FromBounds(-5, 5))
	if got.Lo < math.Nextafter(0, math.Inf(-1)) || got.Hi > math.Nextafter(math.Pi, math.Inf(1)) {
		t.Errorf("Acos([-5,5]) = %v, want bounds within one ULP outside [0, pi]", got)
	}
}

func TestBisectCoversOriginalInterval(t *testing.T) {
	a := FromBounds(0, 10)
	left, right := a.Bisect()
	if left.Lo != a.Lo || right.Hi != a.Hi || left.Hi != right.Lo {
		t.Errorf("Bisect(%v) = %v, %v; halves should share a midpoint and cover the original", a, left, right)
	}
}

func TestIsBisectableFalseForDegenerateAndUnbounded(t *testing.T) {
	tests := []struct {
		name string
		a    Interval
		want bool
	}{
		{"degenerate", Point(5), false},
		{"unbounded above", FromBounds(0, math.Inf(1)), false},
		{"normal", FromBounds(0, 1), true},
		{"empty", Empty(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.IsBisectable(); got != tt.want {
				t.Errorf("%v.IsBisectable() = %v, want %v", tt.a, got, tt.want)
			}
		})
	}
}

func TestSqrIsTighterThanMulOnStraddlingInterval(t *testing.T) {
	a := FromBounds(-2, 1)
	sqr := Sqr(a)
	mul := Mul(a, a)
	if sqr.Lo != 0 {
		t.Errorf("Sqr(%v).Lo = %v, want 0", a, sqr.Lo)
	}
	if mul.Lo > sqr.Lo {
		t.Errorf("Mul(a,a) should never be tighter than Sqr(a): Mul=%v Sqr=%v", mul, sqr)
	}
}

func TestIntersectAndHull(t *testing.T) {
	a := FromBounds(0, 5)
	b := FromBounds(3, 8)
	if got := Intersect(a, b); got.Lo != 3 || got.Hi != 5 {
		t.Errorf("Intersect(%v, %v) = %v, want [3,5]", a, b, got)
	}
	if got := Hull(a, b); got.Lo != 0 || got.Hi != 8 {
		t.Errorf("Hull(%v, %v) = %v, want [0,8]", a, b, got)
	}
}
