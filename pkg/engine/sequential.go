package engine

import (
	"context"

	"github.com/dreal-go/dicp/internal/dlog"
	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/contractor"
	"github.com/dreal-go/dicp/pkg/errs"
	"github.com/dreal-go/dicp/pkg/stats"
	"github.com/dreal-go/dicp/pkg/symbolic"
)

// workItem is the (Box, branching_point) pair spec.md §4.6 says the
// sequential engine's stack holds.
type workItem struct {
	box            *box.Box
	branchingPoint int
}

// Icp is the sequential branch-and-prune driver, ported from icp.cc's Icp
// class: pop a box, prune it, evaluate residual feasibility, drop it if
// infeasible, report delta-sat if every candidate dimension has narrowed
// below precision, otherwise bisect and push the children.
type Icp struct {
	config Config
	stats  *stats.Stats
}

// NewIcp builds a sequential engine with the given config.
func NewIcp(config Config) *Icp {
	return &Icp{config: config, stats: stats.New(0)}
}

// Stats returns the engine's accumulated branch/prune/evaluate counters.
func (e *Icp) Stats() *stats.Stats { return e.stats }

// CheckSat searches for a delta-sat box for the conjunction of fes, pruning
// at every step with c, starting from status.Box. Returns true with the
// witnessing box left in status.Box on success; false with status.Box set
// empty on UNSAT. ctx is polled at the top of each iteration for
// cooperative cancellation.
func (e *Icp) CheckSat(ctx context.Context, c contractor.Contractor, fes []*FormulaEvaluator, status *contractor.ContractorStatus) (bool, error) {
	stack := []workItem{{box: status.Box, branchingPoint: -1}}
	leftFirst := e.config.StackLeftBoxFirst

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return false, errs.New(errs.Interrupted, "CheckSat interrupted: %v", err)
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		local := contractor.NewStatus(top.box)
		local.BranchingPoint = top.branchingPoint

		pruneTimer := stats.NewPruneTimer(e.stats)
		err := c.Prune(local)
		pruneTimer.Stop()
		if err != nil {
			return false, err
		}
		if local.Box.IsEmpty() {
			dlog.Log.WithField("box", top.box.String()).Trace("icp: pruned to empty, dropping")
			continue
		}

		evalTimer := stats.NewEvalTimer(e.stats)
		unsat, candidates, unknown, err := evaluateAll(local.Box, fes, e.config.Precision)
		evalTimer.Stop()
		if err != nil {
			return false, err
		}
		if unsat {
			dlog.Log.WithField("box", local.Box.String()).Trace("icp: UNSAT, dropping")
			continue
		}
		if !candidates.Any() {
			status.InplaceJoin(local)
			return true, nil
		}

		branchTimer := stats.NewBranchTimer(e.stats)
		idx, err := e.config.strategy().Branch(local.Box, unknownFormulas(unknown), candidates)
		branchTimer.Stop()
		if err != nil {
			return false, err
		}
		if idx < 0 {
			// No bisectable dimension among the candidates: treat the box
			// as a delta-sat leaf, matching icp_parallel.cc's identical
			// edge case.
			status.InplaceJoin(local)
			return true, nil
		}

		left, right := local.Box.Bisect(idx)
		first, second := left, right
		if !leftFirst {
			first, second = right, left
		}
		// Push "second" before "first" so "first" lands on top of the LIFO
		// stack and is popped next, matching the stacking polarity
		// contract; the polarity flips on every branch.
		stack = append(stack,
			workItem{box: second, branchingPoint: idx},
			workItem{box: first, branchingPoint: idx},
		)
		leftFirst = !leftFirst
	}

	status.Box.SetEmpty()
	return false, nil
}

func unknownFormulas(fes []*FormulaEvaluator) []*symbolic.Formula {
	fs := make([]*symbolic.Formula, len(fes))
	for i, fe := range fes {
		fs[i] = fe.Formula()
	}
	return fs
}
