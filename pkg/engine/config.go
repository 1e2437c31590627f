// Package engine implements the sequential and parallel branch-and-prune
// search drivers that sit on top of pkg/contractor and pkg/branch: Icp pops
// a box, prunes it, evaluates its residual feasibility, and either drops it,
// reports it delta-sat, or bisects it and pushes the children; IcpParallel
// runs the same loop across a worker pool sharing one stack. Grounded on
// dreal's icp.cc (sequential) and icp_parallel.cc (parallel).
package engine

import "github.com/dreal-go/dicp/pkg/branch"

// Config holds the engine knobs spec.md §6 lists as recognised options.
type Config struct {
	// NumberOfJobs is the parallel engine's worker count (>= 1). The
	// sequential engine ignores it.
	NumberOfJobs int
	// Precision is the delta threshold: a box is delta-sat once every
	// candidate dimension's width is at or below this value.
	Precision float64
	// StackLeftBoxFirst sets the initial branching polarity: when true the
	// "left" (lower) half of a bisection is processed before the "right"
	// half.
	StackLeftBoxFirst bool
	// BranchingStrategy picks which dimension to bisect on each branch.
	// Defaults to MaxDiam{} when nil.
	BranchingStrategy branch.Strategy
	// UsePolytopeInForall is a consumer-side flag (spec.md §6): whether the
	// caller assembled a Polytope contractor that also considers
	// universally-quantified constraints. The engine itself does not branch
	// on it; it is threaded through Config purely so callers building the
	// contractor graph from one Config value see it alongside the other
	// knobs.
	UsePolytopeInForall bool
}

// DefaultConfig returns the engine's defaults: a single worker, MaxDiam
// branching, 1e-3 precision, left-box-first polarity.
func DefaultConfig() Config {
	return Config{
		NumberOfJobs:      1,
		Precision:         1e-3,
		StackLeftBoxFirst: true,
		BranchingStrategy: branch.MaxDiam{},
	}
}

func (c Config) strategy() branch.Strategy {
	if c.BranchingStrategy == nil {
		return branch.MaxDiam{}
	}
	return c.BranchingStrategy
}
