package main

import (
	"context"
	"fmt"

	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/contractor"
	"github.com/dreal-go/dicp/pkg/engine"
	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/stats"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

// system is one of the bundled toy problems from spec.md §8 (S1-S3): a
// formula, its variables' initial box, and a human-readable expectation
// used only for the printed summary, not asserted against.
type system struct {
	name     string
	describe string
	expect   string
	formula  *symbolic.Formula
	box      *box.Box
}

func toySystems() []system {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")

	s1 := symbolic.And(
		symbolic.Eq(
			symbolic.AddExpr(
				symbolic.PowExpr(symbolic.NewVariableExpr(x), symbolic.NewConstant(2)),
				symbolic.PowExpr(symbolic.NewVariableExpr(y), symbolic.NewConstant(2)),
			),
			symbolic.NewConstant(1),
		),
		symbolic.Geq(symbolic.NewVariableExpr(x), symbolic.NewConstant(0.9)),
	)

	s2 := symbolic.Eq(
		symbolic.PowExpr(symbolic.NewVariableExpr(x), symbolic.NewConstant(2)),
		symbolic.NewConstant(-1),
	)

	s3 := symbolic.Eq(symbolic.SinExpr(symbolic.NewVariableExpr(x)), symbolic.NewConstant(0))

	return []system{
		{
			name:     "S1",
			describe: "x^2+y^2=1 AND x>=0.9, over x,y in [-1,1]",
			expect:   "SAT, x in [0.9,1]",
			formula:  s1,
			box: box.New([]symbolic.Variable{x, y}, []interval.Interval{
				interval.FromBounds(-1, 1),
				interval.FromBounds(-1, 1),
			}),
		},
		{
			name:     "S2",
			describe: "x^2=-1, over x in [-10,10]",
			expect:   "UNSAT",
			formula:  s2,
			box: box.New([]symbolic.Variable{x}, []interval.Interval{
				interval.FromBounds(-10, 10),
			}),
		},
		{
			name:     "S3",
			describe: "sin(x)=0, over x in [3,3.2]",
			expect:   "SAT, box contains pi",
			formula:  s3,
			box: box.New([]symbolic.Variable{x}, []interval.Interval{
				interval.FromBounds(3, 3.2),
			}),
		},
	}
}

// buildContractor assembles the contractor graph for f's top-level
// conjuncts: one FwdBwd per relational atom plus a Polytope pass over all
// of them, run to a fixpoint, mirroring icp.cc's top-level construction of
// the contractor vector from the formula's conjuncts. f is expected to be
// either And(atom...) or a single relational atom, which covers every
// bundled toy system and any conjunctive formula a caller constructs the
// same way.
func buildContractor(f *symbolic.Formula, b *box.Box) contractor.Contractor {
	atoms := []*symbolic.Formula{f}
	if f.Kind() == symbolic.FormulaAnd {
		atoms = f.Conjuncts()
	}

	inner := make([]contractor.Contractor, 0, len(atoms)+1)
	for _, atom := range atoms {
		inner = append(inner, contractor.NewFwdBwd(atom, b))
	}
	inner = append(inner, contractor.NewPolytope(atoms, b))

	return contractor.NewFixpoint(inner, b.Size(), 50)
}

// runSystem executes one toy system with the given engine config and
// prints a one-line SAT/UNSAT report plus the witness box on SAT.
func runSystem(ctx context.Context, s system, cfg engine.Config) error {
	c := buildContractor(s.formula, s.box)
	fe := engine.NewFormulaEvaluator(s.formula)
	status := contractor.NewStatus(s.box.Clone())

	var sat bool
	var stat *stats.Stats
	var err error

	if cfg.NumberOfJobs > 1 {
		e := engine.NewIcpParallel(cfg)
		sat, err = e.CheckSat(ctx, c, []*engine.FormulaEvaluator{fe}, status)
		stat = e.Stats()
	} else {
		e := engine.NewIcp(cfg)
		sat, err = e.CheckSat(ctx, c, []*engine.FormulaEvaluator{fe}, status)
		stat = e.Stats()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}

	result := "UNSAT"
	if sat {
		result = fmt.Sprintf("SAT %s", status.Box)
	}
	snap := stat.Snapshot()
	fmt.Printf("%s (%s) expect[%s] -> %s  [branch=%d prune=%d eval=%d]\n",
		s.name, s.describe, s.expect, result, snap.NumBranch, snap.NumPrune, snap.NumEval)
	return nil
}
