// Package box implements the ordered vector of named interval dimensions
// that contractors prune and the search engine branches over, generalizing
// the teacher's finite discrete Domain vector (pkg/minikanren/domain.go) to
// a continuous, real-valued dimension indexed by a stable variable map.
package box

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

// Box is an ordered sequence of (Variable, Interval) pairs with a stable,
// total, bijective index map over its variable set.
type Box struct {
	vars   []symbolic.Variable
	bounds []interval.Interval
	index  map[symbolic.Variable]int
}

// New builds a box over vars, each initialized to the matching interval in
// bounds. Both slices must share the same length.
func New(vars []symbolic.Variable, bounds []interval.Interval) *Box {
	b := &Box{
		vars:   append([]symbolic.Variable(nil), vars...),
		bounds: append([]interval.Interval(nil), bounds...),
		index:  make(map[symbolic.Variable]int, len(vars)),
	}
	for i, v := range vars {
		b.index[v] = i
	}
	return b
}

// Size returns the number of dimensions.
func (b *Box) Size() int { return len(b.vars) }

// Variable returns the variable at dimension i.
func (b *Box) Variable(i int) symbolic.Variable { return b.vars[i] }

// Interval returns the interval at dimension i.
func (b *Box) Interval(i int) interval.Interval { return b.bounds[i] }

// SetInterval replaces the interval at dimension i.
func (b *Box) SetInterval(i int, v interval.Interval) { b.bounds[i] = v }

// IndexOf returns the dimension index of v and whether v is a member of
// this box's variable set.
func (b *Box) IndexOf(v symbolic.Variable) (int, bool) {
	i, ok := b.index[v]
	return i, ok
}

// Get returns the interval bound to v.
func (b *Box) Get(v symbolic.Variable) (interval.Interval, bool) {
	i, ok := b.index[v]
	if !ok {
		return interval.Empty(), false
	}
	return b.bounds[i], true
}

// Set assigns the interval bound to v, if v is one of this box's
// dimensions.
func (b *Box) Set(v symbolic.Variable, iv interval.Interval) bool {
	i, ok := b.index[v]
	if !ok {
		return false
	}
	b.bounds[i] = iv
	return true
}

// IsEmpty reports whether any dimension's interval is empty, which by
// construction means every dimension is canonicalized to empty as well
// (see SetEmpty).
func (b *Box) IsEmpty() bool {
	for _, iv := range b.bounds {
		if iv.IsEmpty() {
			return true
		}
	}
	return false
}

// SetEmpty canonicalizes the whole box to the empty state: every dimension
// becomes an empty interval, so IsEmpty is stable regardless of which
// dimension was responsible.
func (b *Box) SetEmpty() {
	for i := range b.bounds {
		b.bounds[i] = interval.Empty()
	}
}

// Clone returns an independent deep copy.
func (b *Box) Clone() *Box {
	c := &Box{
		vars:   b.vars, // immutable after construction; safe to share
		bounds: append([]interval.Interval(nil), b.bounds...),
		index:  b.index, // immutable after construction; safe to share
	}
	return c
}

// MaxDiamIndex returns the index of the widest bisectable dimension, or -1
// if no dimension is bisectable.
func (b *Box) MaxDiamIndex() int {
	best := -1
	bestDiam := 0.0
	for i, iv := range b.bounds {
		if !iv.IsBisectable() {
			continue
		}
		if d := iv.Diam(); best == -1 || d > bestDiam {
			best = i
			bestDiam = d
		}
	}
	return best
}

// Bisect splits the box at dimension i into two sub-boxes differing only in
// that dimension; their union is the original box.
func (b *Box) Bisect(i int) (*Box, *Box) {
	left, right := b.Clone(), b.Clone()
	lo, hi := b.bounds[i].Bisect()
	left.bounds[i] = lo
	right.bounds[i] = hi
	return left, right
}

// Mid returns the box whose every dimension is the degenerate interval at
// that dimension's midpoint.
func (b *Box) Mid() *Box {
	m := b.Clone()
	for i, iv := range b.bounds {
		m.bounds[i] = interval.Point(iv.Mid())
	}
	return m
}

// MaxDiam returns the largest diameter across all dimensions.
func (b *Box) MaxDiam() float64 {
	max := 0.0
	for _, iv := range b.bounds {
		if d := iv.Diam(); d > max {
			max = d
		}
	}
	return max
}

// Variables returns the box's variables in index order.
func (b *Box) Variables() []symbolic.Variable {
	return append([]symbolic.Variable(nil), b.vars...)
}

// ToEnv returns a scalar evaluation environment using each dimension's
// midpoint, for use with symbolic.Expr.Evaluate.
func (b *Box) ToEnv() map[symbolic.Variable]float64 {
	env := make(map[symbolic.Variable]float64, len(b.vars))
	for i, v := range b.vars {
		env[v] = b.bounds[i].Mid()
	}
	return env
}

func (b *Box) String() string {
	names := make([]string, len(b.vars))
	type entry struct {
		name string
		iv   interval.Interval
	}
	entries := make([]entry, len(b.vars))
	for i, v := range b.vars {
		entries[i] = entry{name: v.Name(), iv: b.bounds[i]}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	for i, e := range entries {
		names[i] = fmt.Sprintf("%s: %s", e.name, e.iv)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Intersect returns the dimension-by-dimension interval.Intersect of b and
// other, which must share the same variable ordering (every caller passes
// two boxes derived from the same root by independent Clone()s). Used by
// Join.Prune to combine several contractors' independently-narrowed copies
// of a box into their true intersection.
func (b *Box) Intersect(other *Box) *Box {
	bounds := make([]interval.Interval, len(b.bounds))
	for i := range b.bounds {
		bounds[i] = interval.Intersect(b.bounds[i], other.bounds[i])
	}
	return &Box{vars: b.vars, bounds: bounds, index: b.index}
}

// Diff renders only the dimensions where before and after differ, as
// "name: [lo,hi] -> [lo,hi]" pairs, for trace-level contraction logging.
// before and after must share the same variable ordering (every caller
// passes a box and its own contracted copy). Grounded on
// contractor_ibex_polytope.cc's trace-level diff of the interval vector
// before and after a contraction pass.
func (after *Box) Diff(before *Box) string {
	var parts []string
	for i, v := range after.vars {
		b, a := before.bounds[i], after.bounds[i]
		if b == a {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", v.Name(), b, a))
	}
	if len(parts) == 0 {
		return "(unchanged)"
	}
	return strings.Join(parts, ", ")
}
