// Package workqueue implements the shared work stack the parallel ICP
// engine's workers push sub-boxes onto and pop from, plus the atomic
// progress counters the engine uses to decide when every worker has run dry.
// The contract only needs "any linearizable push/try-pop container"; no pack
// repo ships a lock-free concurrent stack, so this is a small
// sync.Mutex-guarded slice, grounded on the teacher's own
// sync.Mutex-protected pool/bus types (pkg/minikanren's
// GlobalConstraintBusPool, ConstraintBus) and on internal/parallel/pool.go's
// channel-free, mutex-first style for shared mutable state.
package workqueue

import (
	"sync"
	"sync/atomic"

	"github.com/dreal-go/dicp/pkg/box"
)

// Stack is a LIFO stack of boxes safe for concurrent push/try-pop.
type Stack struct {
	mu    sync.Mutex
	items []*box.Box
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

// Push adds b to the top of the stack.
func (s *Stack) Push(b *box.Box) {
	s.mu.Lock()
	s.items = append(s.items, b)
	s.mu.Unlock()
}

// TryPop removes and returns the top box, or (nil, false) if the stack is
// empty.
func (s *Stack) TryPop() (*box.Box, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	if n == 0 {
		return nil, false
	}
	b := s.items[n-1]
	s.items = s.items[:n-1]
	return b, true
}

// Len reports the current number of queued boxes.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Progress tracks the counters the parallel engine uses to decide
// termination: how many boxes are currently live anywhere in the system
// (on the stack or being processed by a worker) and whether a δ-sat box has
// been found, mirroring the teacher's parallel_search.go use of
// atomic.Int64 for activeWorkers/solutionsFound/pending.
type Progress struct {
	numberOfBoxes atomic.Int64
	foundDeltaSat atomic.Bool
	winnerID      atomic.Int64
}

// NewProgress returns a zeroed progress tracker, its winner id defaulted to
// -1 (no winner) exactly as icp_parallel.cc initializes found_delta_sat_.
func NewProgress() *Progress {
	p := &Progress{}
	p.winnerID.Store(-1)
	return p
}

// AddBoxes adjusts the live box count by delta (positive when a box is
// pushed or split into two, negative when one is fully resolved).
func (p *Progress) AddBoxes(delta int64) int64 { return p.numberOfBoxes.Add(delta) }

// NumberOfBoxes returns the current live box count.
func (p *Progress) NumberOfBoxes() int64 { return p.numberOfBoxes.Load() }

// MarkDeltaSat records that workerID found a δ-satisfying box, under a
// single-writer discipline: the first caller wins and records its id,
// subsequent callers observe they lost and get false back.
func (p *Progress) MarkDeltaSat(workerID int) bool {
	if p.foundDeltaSat.CompareAndSwap(false, true) {
		p.winnerID.Store(int64(workerID))
		return true
	}
	return false
}

// FoundDeltaSat reports whether any worker has found a δ-satisfying box.
func (p *Progress) FoundDeltaSat() bool { return p.foundDeltaSat.Load() }

// WinnerID returns the id of the worker that found the δ-satisfying box, or
// -1 if none has been recorded yet.
func (p *Progress) WinnerID() int { return int(p.winnerID.Load()) }
