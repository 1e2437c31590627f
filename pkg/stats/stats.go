// Package stats ports dReal's IcpStat bookkeeping: branch/prune/evaluate
// counters and cumulative durations, one aggregate for the sequential
// engine and one per worker for the parallel engine. Grounded on icp.cc's
// IcpStat fields (num_branch_, num_prune_, timer_branch_, timer_prune_,
// timer_eval_) and icp_parallel.cc's per-worker thread_local IcpStat{..., id}.
package stats

import (
	"sync"
	"time"
)

// Stats accumulates one engine (or worker)'s branch/prune/evaluate activity.
type Stats struct {
	mu sync.Mutex

	WorkerID int

	NumBranch   int64
	NumPrune    int64
	NumEval     int64
	TimeBranch  time.Duration
	TimePrune   time.Duration
	TimeEval    time.Duration
}

// New returns a zeroed Stats for the given worker id (0 for the sequential
// engine, which has exactly one worker).
func New(workerID int) *Stats { return &Stats{WorkerID: workerID} }

// AddBranch records one branching step and the time it took.
func (s *Stats) AddBranch(d time.Duration) {
	s.mu.Lock()
	s.NumBranch++
	s.TimeBranch += d
	s.mu.Unlock()
}

// AddPrune records one contractor invocation and the time it took.
func (s *Stats) AddPrune(d time.Duration) {
	s.mu.Lock()
	s.NumPrune++
	s.TimePrune += d
	s.mu.Unlock()
}

// AddEval records one formula evaluation and the time it took.
func (s *Stats) AddEval(d time.Duration) {
	s.mu.Lock()
	s.NumEval++
	s.TimeEval += d
	s.mu.Unlock()
}

// Add merges other's counters into s, for combining per-worker stats into
// one aggregate at the end of a parallel run.
func (s *Stats) Add(other *Stats) {
	other.mu.Lock()
	nb, np, ne := other.NumBranch, other.NumPrune, other.NumEval
	tb, tp, te := other.TimeBranch, other.TimePrune, other.TimeEval
	other.mu.Unlock()

	s.mu.Lock()
	s.NumBranch += nb
	s.NumPrune += np
	s.NumEval += ne
	s.TimeBranch += tb
	s.TimePrune += tp
	s.TimeEval += te
	s.mu.Unlock()
}

// Snapshot returns a copy of s's counters safe to read without holding s's
// lock any longer.
func (s *Stats) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		WorkerID:   s.WorkerID,
		NumBranch:  s.NumBranch,
		NumPrune:   s.NumPrune,
		NumEval:    s.NumEval,
		TimeBranch: s.TimeBranch,
		TimePrune:  s.TimePrune,
		TimeEval:   s.TimeEval,
	}
}

// TimerGuard is a RAII-style scoped timer ported from icp.cc's TimerGuard:
// construct it at the start of a scope with defer, and the elapsed time is
// added to the matching counter when the guard goes out of scope.
type TimerGuard struct {
	start time.Time
	add   func(time.Duration)
}

// NewBranchTimer starts a timer that will record to s.AddBranch on Stop.
func NewBranchTimer(s *Stats) *TimerGuard { return &TimerGuard{start: time.Now(), add: s.AddBranch} }

// NewPruneTimer starts a timer that will record to s.AddPrune on Stop.
func NewPruneTimer(s *Stats) *TimerGuard { return &TimerGuard{start: time.Now(), add: s.AddPrune} }

// NewEvalTimer starts a timer that will record to s.AddEval on Stop.
func NewEvalTimer(s *Stats) *TimerGuard { return &TimerGuard{start: time.Now(), add: s.AddEval} }

// Stop records the elapsed time since the timer started. Safe to call via
// defer.
func (g *TimerGuard) Stop() { g.add(time.Since(g.start)) }
