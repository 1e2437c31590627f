// Package contractor implements the pruning operators the ICP engine
// applies to a box: FwdBwd (forward/backward constraint propagation over a
// single relational atom), Polytope (a linear-relaxation tightening pass
// over several atoms at once), and the Join/Fixpoint/Mt combinators that
// assemble them into the per-formula contractor graph the engine drives.
// Grounded on dreal's contractor.h/contractor_*.cc family (Contractor base
// class, ContractorJoin, ContractorFixpoint, ContractorIbexFwdbwd[Mt],
// ContractorIbexPolytope), translated to a small Go interface plus
// concrete structs instead of a virtual class hierarchy.
package contractor

import (
	"github.com/dreal-go/dicp/pkg/bitset"
	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

// Contractor narrows (prunes) a box in place, reporting which dimensions it
// touched through the status's Output bitset.
type Contractor interface {
	// Prune narrows status.Box in place and records the dimensions it
	// changed in status.Output. It returns an error only for a genuine
	// evaluation failure (NumericNaN, Interrupted, ...); an empty result
	// box is reported via status.Box.IsEmpty(), not an error.
	Prune(status *ContractorStatus) error
	// Input reports which box dimensions this contractor reads, sized to
	// the box's dimension count.
	Input() *bitset.BitSet
	// IsDummy reports whether Prune is a guaranteed no-op (an empty
	// constraint set, or a constraint that degenerated to True/False
	// before this contractor was built).
	IsDummy() bool
	String() string
}

// ContractorStatus is the mutable per-search-path state threaded through a
// sequence of Prune calls: the box being narrowed, which dimensions the most
// recent Prune touched, the branching point the last split used (if any),
// and which constraints have actually fired so far along this path.
type ContractorStatus struct {
	Box            *box.Box
	Output         *bitset.BitSet
	BranchingPoint int
	UsedConstraints []*symbolic.Formula
}

// NewStatus returns a status over b with a fresh, all-clear output bitset
// sized to b's dimension count.
func NewStatus(b *box.Box) *ContractorStatus {
	return &ContractorStatus{
		Box:            b,
		Output:         bitset.New(b.Size()),
		BranchingPoint: -1,
	}
}

// InplaceJoin merges other into status: the box becomes other's box (the
// caller is expected to have already narrowed it further), the output
// bitset accumulates every dimension either touched, and the used-constraint
// list is appended to, matching dreal's ContractorStatus::InplaceUnion.
func (s *ContractorStatus) InplaceJoin(other *ContractorStatus) {
	s.Box = other.Box
	s.Output.Union(other.Output)
	if other.BranchingPoint >= 0 {
		s.BranchingPoint = other.BranchingPoint
	}
	s.UsedConstraints = append(s.UsedConstraints, other.UsedConstraints...)
}
