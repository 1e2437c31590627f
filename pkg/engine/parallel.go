package engine

import (
	"context"
	"runtime"
	"sync"

	"github.com/dreal-go/dicp/internal/dlog"
	"github.com/dreal-go/dicp/internal/parallel"
	"github.com/dreal-go/dicp/internal/workqueue"
	"github.com/dreal-go/dicp/pkg/box"
	"github.com/dreal-go/dicp/pkg/contractor"
	"github.com/dreal-go/dicp/pkg/errs"
	"github.com/dreal-go/dicp/pkg/interval"
	"github.com/dreal-go/dicp/pkg/stats"
)

// workerAwarePruner is implemented by contractors that need a distinct
// inner instance per worker (contractor.Mt); the parallel engine detects it
// and calls PruneWorker instead of Prune so each goroutine gets its own
// lazily-built slot, matching contractor_ibex_fwdbwd_mt.cc's per-thread
// dispatch. Contractors that don't implement it (FwdBwd, Polytope, Join,
// Fixpoint all hold no mutable state after construction) are safe to share
// across workers' Prune calls directly.
type workerAwarePruner interface {
	PruneWorker(status *contractor.ContractorStatus, workerID int) error
}

func pruneFor(c contractor.Contractor, status *contractor.ContractorStatus, workerID int) error {
	if wa, ok := c.(workerAwarePruner); ok {
		return wa.PruneWorker(status, workerID)
	}
	return c.Prune(status)
}

// IcpParallel is the parallel branch-and-prune driver, ported from
// icp_parallel.cc: a fixed pool of N symmetric workers, launched through
// internal/parallel.Launch, draining a shared LIFO stack synchronized
// through workqueue.Stack/Progress and cooperative context cancellation.
type IcpParallel struct {
	config Config
	stats  *stats.Stats
}

// NewIcpParallel builds a parallel engine with the given config.
func NewIcpParallel(config Config) *IcpParallel {
	if config.NumberOfJobs < 1 {
		config.NumberOfJobs = 1
	}
	return &IcpParallel{config: config, stats: stats.New(-1)}
}

// Stats returns the aggregate of every worker's branch/prune/evaluate
// counters, merged after the search completes.
func (e *IcpParallel) Stats() *stats.Stats { return e.stats }

// CheckSat mirrors Icp.CheckSat's contract but searches with
// config.NumberOfJobs workers sharing one stack. On success status.Box
// holds the winning worker's witness box; on failure status.Box is empty.
func (e *IcpParallel) CheckSat(ctx context.Context, c contractor.Contractor, fes []*FormulaEvaluator, status *contractor.ContractorStatus) (bool, error) {
	root := contractor.NewStatus(status.Box)
	if err := pruneFor(c, root, 0); err != nil {
		return false, err
	}
	if root.Box.IsEmpty() {
		status.Box.SetEmpty()
		return false, nil
	}

	n := e.config.NumberOfJobs
	initial := fillUp(root.Box, n)

	stack := workqueue.NewStack()
	progress := workqueue.NewProgress()
	for _, b := range initial {
		stack.Push(b)
	}
	progress.AddBoxes(int64(len(initial)))

	var winnerMu sync.Mutex
	var winnerBox *box.Box

	workerStatuses := make([]*contractor.ContractorStatus, n)
	workerStats := make([]*stats.Stats, n)
	workerErrs := make([]error, n)
	for w := 0; w < n; w++ {
		workerStats[w] = stats.New(w)
	}

	pool := parallel.Launch(n, func(workerID int) {
		st, werr := e.runWorker(ctx, workerID, c, fes, stack, progress, workerStats[workerID])
		workerStatuses[workerID] = st
		if werr != nil {
			workerErrs[workerID] = werr
			return
		}
		if st != nil && progress.WinnerID() == workerID {
			winnerMu.Lock()
			winnerBox = st.Box
			winnerMu.Unlock()
		}
	})
	pool.Wait()

	for _, st := range workerStatuses {
		if st == nil {
			continue
		}
		status.Output.Union(st.Output)
		status.UsedConstraints = append(status.UsedConstraints, st.UsedConstraints...)
	}
	for _, ws := range workerStats {
		if ws != nil {
			e.stats.Add(ws)
		}
	}
	for _, werr := range workerErrs {
		if werr != nil {
			return false, werr
		}
	}

	if progress.FoundDeltaSat() {
		status.Box = winnerBox
		return true, nil
	}
	status.Box.SetEmpty()
	return false, nil
}

func (e *IcpParallel) runWorker(ctx context.Context, workerID int, c contractor.Contractor, fes []*FormulaEvaluator, stack *workqueue.Stack, progress *workqueue.Progress, ws *stats.Stats) (*contractor.ContractorStatus, error) {
	rg := interval.NewRoundingGuard()
	defer rg.Release()

	needToPop := true
	leftFirst := e.config.StackLeftBoxFirst
	var local *contractor.ContractorStatus

	for {
		if err := ctx.Err(); err != nil {
			return local, errs.New(errs.Interrupted, "worker %d interrupted: %v", workerID, err)
		}
		if progress.FoundDeltaSat() || progress.NumberOfBoxes() == 0 {
			return local, nil
		}

		if needToPop {
			b, ok := stack.TryPop()
			if !ok {
				runtime.Gosched()
				continue
			}
			local = contractor.NewStatus(b)
			needToPop = false
		}

		pruneTimer := stats.NewPruneTimer(ws)
		err := pruneFor(c, local, workerID)
		pruneTimer.Stop()
		if err != nil {
			return local, err
		}
		if local.Box.IsEmpty() {
			progress.AddBoxes(-1)
			dlog.Log.WithField("worker", workerID).Trace("icp_parallel: pruned to empty")
			needToPop = true
			continue
		}

		evalTimer := stats.NewEvalTimer(ws)
		unsat, candidates, unknown, err := evaluateAll(local.Box, fes, e.config.Precision)
		evalTimer.Stop()
		if err != nil {
			return local, err
		}
		if unsat {
			progress.AddBoxes(-1)
			needToPop = true
			continue
		}
		if !candidates.Any() {
			if progress.MarkDeltaSat(workerID) {
				dlog.Log.WithField("worker", workerID).Info("icp_parallel: delta-sat")
			}
			return local, nil
		}

		branchTimer := stats.NewBranchTimer(ws)
		idx, err := e.config.strategy().Branch(local.Box, unknownFormulas(unknown), candidates)
		branchTimer.Stop()
		if err != nil {
			return local, err
		}
		if idx < 0 {
			// No bisectable candidate dimension: same delta-sat leaf
			// fallback as the sequential engine.
			progress.MarkDeltaSat(workerID)
			return local, nil
		}

		left, right := local.Box.Bisect(idx)
		first, second := left, right
		if !leftFirst {
			first, second = right, left
		}
		stack.Push(second)
		// One in-hand box became two (first kept locally, second pushed);
		// net effect on live-box count is +1.
		progress.AddBoxes(1)
		local = contractor.NewStatus(first)
		leftFirst = !leftFirst
	}
}

// fillUp produces an initial pool of up to n boxes by bisecting only as
// many boxes each round as are needed to reach n, passing the remainder of
// the current set through unchanged, matching icp_parallel.cc's DoubleUp:
// the set grows by exactly the amount still needed each round, so it never
// overshoots n and never needs to truncate (truncating after a full-set
// doubling pass would silently drop whichever boxes fell past the cut,
// including ones holding the only satisfying witness). The loop stops once
// len(boxes) reaches n or a round bisects nothing (every box in the set has
// become non-bisectable).
func fillUp(root *box.Box, n int) []*box.Box {
	boxes := []*box.Box{root}
	for len(boxes) < n {
		need := n - len(boxes)
		splitCount := need
		if splitCount > len(boxes) {
			splitCount = len(boxes)
		}
		next := make([]*box.Box, 0, len(boxes)+splitCount)
		grew := false
		for i, b := range boxes {
			if i >= splitCount {
				next = append(next, b)
				continue
			}
			idx := b.MaxDiamIndex()
			if idx < 0 {
				next = append(next, b)
				continue
			}
			left, right := b.Bisect(idx)
			next = append(next, left, right)
			grew = true
		}
		boxes = next
		if !grew {
			break
		}
	}
	return boxes
}
