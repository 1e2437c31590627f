package contractor

import (
	"fmt"

	"github.com/dreal-go/dicp/pkg/bitset"
)

// Join runs every inner contractor against the same incoming box and
// merges their effects, mirroring dreal's ContractorJoin: useful when
// several independent contractors each narrow disjoint-ish dimensions and
// their combined effect is wanted in one Prune call.
type Join struct {
	inner []Contractor
	input *bitset.BitSet
}

// NewJoin builds a Join over inner, whose Input is the union of each
// inner contractor's Input.
func NewJoin(inner []Contractor, dims int) *Join {
	input := bitset.New(dims)
	for _, c := range inner {
		input.Union(c.Input())
	}
	return &Join{inner: inner, input: input}
}

func (j *Join) Input() *bitset.BitSet { return j.input }

func (j *Join) IsDummy() bool {
	for _, c := range j.inner {
		if !c.IsDummy() {
			return false
		}
	}
	return true
}

func (j *Join) String() string { return fmt.Sprintf("Join(%d contractors)", len(j.inner)) }

// Prune runs every inner contractor on its own clone of status.Box and
// intersects the results dimension-by-dimension, matching the Join
// contract Join(c1,...,ck)(B) = ⋂ᵢ cᵢ(B): each child sees the same
// incoming box, not whichever child ran immediately before it.
func (j *Join) Prune(status *ContractorStatus) error {
	root := status.Box
	result := root.Clone()
	for _, c := range j.inner {
		sub := &ContractorStatus{Box: root.Clone(), Output: bitset.New(root.Size()), BranchingPoint: -1}
		if err := c.Prune(sub); err != nil {
			return err
		}
		result = result.Intersect(sub.Box)
		status.Output.Union(sub.Output)
		if sub.Output.Any() {
			status.UsedConstraints = append(status.UsedConstraints, sub.UsedConstraints...)
		}
		if result.IsEmpty() {
			break
		}
	}
	for i := 0; i < root.Size(); i++ {
		root.SetInterval(i, result.Interval(i))
	}
	return nil
}

// Fixpoint repeatedly runs inner until a full pass leaves the box
// unchanged (or it becomes empty), mirroring dreal's ContractorFixpoint.
// This is what turns a single-constraint FwdBwd pass into true constraint
// propagation across a conjunction of constraints.
type Fixpoint struct {
	inner    []Contractor
	input    *bitset.BitSet
	maxPasses int
}

// NewFixpoint builds a Fixpoint over inner, capped at maxPasses sweeps to
// guarantee termination even on a pathological constraint set that keeps
// making arbitrarily small progress.
func NewFixpoint(inner []Contractor, dims int, maxPasses int) *Fixpoint {
	input := bitset.New(dims)
	for _, c := range inner {
		input.Union(c.Input())
	}
	if maxPasses <= 0 {
		maxPasses = 50
	}
	return &Fixpoint{inner: inner, input: input, maxPasses: maxPasses}
}

func (f *Fixpoint) Input() *bitset.BitSet { return f.input }

func (f *Fixpoint) IsDummy() bool {
	for _, c := range f.inner {
		if !c.IsDummy() {
			return false
		}
	}
	return true
}

func (f *Fixpoint) String() string { return fmt.Sprintf("Fixpoint(%d contractors)", len(f.inner)) }

func (f *Fixpoint) Prune(status *ContractorStatus) error {
	for pass := 0; pass < f.maxPasses; pass++ {
		anyChange := false
		for _, c := range f.inner {
			sub := &ContractorStatus{Box: status.Box, Output: bitset.New(status.Box.Size()), BranchingPoint: -1}
			if err := c.Prune(sub); err != nil {
				return err
			}
			status.InplaceJoin(sub)
			if sub.Output.Any() {
				anyChange = true
			}
			if status.Box.IsEmpty() {
				return nil
			}
		}
		if !anyChange {
			break
		}
	}
	return nil
}
