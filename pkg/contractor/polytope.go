package contractor

import (
	"fmt"

	"github.com/dreal-go/dicp/internal/dlog"
	"github.com/dreal-go/dicp/pkg/bitset"
	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/evaluator"
	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

// Polytope tightens a box against several relational atoms at once by
// linearizing each one (evaluator.LinearizeTaylor1) into a single linear
// inequality over all dimensions and Gauss-Seidel-sweeping those
// inequalities a bounded number of times, the way XNewton's linear
// relaxation tightens several variables per LP solve. No LP solver exists
// anywhere in the retrieval pack, so this is a direct interval Gauss-Seidel
// sweep over the linearized constraints rather than an actual simplex
// pass — weaker than true polytope tightening but sound, and it exercises
// the same coefficients an LP-based version would feed to a solver.
//
// Grounded on contractor_ibex_polytope.cc's shape (build once from a
// constraint set, Prune tightens the box, an empty/all-dummy constraint
// set reports IsDummy instead of aborting).
type Polytope struct {
	atoms []*symbolic.Formula
	input *bitset.BitSet
	sweeps int
}

// NewPolytope builds a Polytope contractor over atoms (non-Forall
// relational formulas only; callers are expected to have already excluded
// quantified formulas per Formula.IsForall). An empty or all-True/False
// atom list yields a dummy contractor: per the resolved Open Question, this
// reports IsDummy() == true and Prune is a no-op, instead of the original
// dReal behavior of aborting the process.
func NewPolytope(atoms []*symbolic.Formula, b *box.Box) *Polytope {
	input := bitset.New(b.Size())
	var kept []*symbolic.Formula
	for _, f := range atoms {
		switch f.Kind() {
		case symbolic.FormulaTrue, symbolic.FormulaFalse:
			continue
		}
		if f.IsForall() {
			continue
		}
		kept = append(kept, f)
		for v := range f.GetFreeVariables() {
			if i, ok := b.IndexOf(v); ok {
				input.Set(i)
			}
		}
	}
	return &Polytope{atoms: kept, input: input, sweeps: 3}
}

func (c *Polytope) Input() *bitset.BitSet { return c.input }

func (c *Polytope) IsDummy() bool { return len(c.atoms) == 0 }

func (c *Polytope) String() string { return fmt.Sprintf("Polytope(%d constraints)", len(c.atoms)) }

func (c *Polytope) Prune(status *ContractorStatus) error {
	if c.IsDummy() {
		return nil
	}
	b := status.Box
	before := b.Clone()
	changed := bitset.New(b.Size())
	for sweep := 0; sweep < c.sweeps; sweep++ {
		anyChangeThisSweep := false
		for _, f := range c.atoms {
			touched, err := c.pruneOne(f, b)
			if err != nil {
				return err
			}
			if b.IsEmpty() {
				markAll(status)
				return nil
			}
			if touched.Any() {
				changed.Union(touched)
				anyChangeThisSweep = true
			}
		}
		if !anyChangeThisSweep {
			break
		}
	}
	status.Output.Union(changed)
	if changed.Any() {
		status.UsedConstraints = append(status.UsedConstraints, c.atoms...)
	}
	dlog.Log.WithField("contractor", "polytope").Tracef("diff: %s", b.Diff(before))
	return nil
}

// pruneOne linearizes f around the box's midpoint and tightens every
// dimension with a nonzero, non-degenerate-at-zero coefficient using the
// same isolate-one-term-of-a-sum arithmetic FwdBwd's Add revise uses.
func (c *Polytope) pruneOne(f *symbolic.Formula, b *box.Box) (*bitset.BitSet, error) {
	touched := bitset.New(b.Size())
	target := targetRangeFor(f.Kind())
	if target == nil {
		return touched, nil
	}
	constant, coeffs, x0, err := evaluator.LinearizeTaylor1(f.AtomExpr(), b)
	if err != nil {
		return touched, err
	}
	s := interval.Sub(*target, constant)
	contrib := make([]interval.Interval, len(coeffs))
	for i, ci := range coeffs {
		delta := interval.Sub(b.Interval(i), x0.Interval(i))
		contrib[i] = interval.Mul(ci, delta)
	}
	for i, ci := range coeffs {
		if ci.Contains(0) && !ci.IsDegenerate() {
			// Coefficient interval straddles zero: dividing by it would
			// only widen the candidate, so skip tightening this dimension
			// from this constraint.
			continue
		}
		if ci.IsDegenerate() && ci.Lo == 0 {
			continue
		}
		// Sum every OTHER dimension's contribution directly, rather than
		// subtracting contrib[i] out of a precomputed total: see
		// reviseAdd's identical dependency-problem note.
		others := interval.Point(0)
		for j, c := range contrib {
			if j != i {
				others = interval.Add(others, c)
			}
		}
		candidateDelta := interval.Div(interval.Sub(s, others), ci)
		candidate := interval.Add(x0.Interval(i), candidateDelta)
		old := b.Interval(i)
		next := interval.Intersect(old, candidate)
		if next.IsEmpty() {
			b.SetEmpty()
			touched.SetAll()
			return touched, nil
		}
		if !next.Equal(old) {
			b.SetInterval(i, next)
			touched.Set(i)
		}
	}
	return touched, nil
}
