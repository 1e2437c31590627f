package contractor

import (
	"fmt"
	"sync"

	"github.com/dreal-go/dicp/pkg/bitset"
)

// Mt fronts a contractor whose Prune is not safe to call concurrently from
// two goroutines sharing inner state (for this module, that would be a
// Contractor implementation with a private scratch cache; FwdBwd and
// Polytope above happen to be stateless and thread-safe on their own, but
// Mt exists so future stateful contractors have the same per-worker
// isolation dReal's ContractorIbexFwdbwdMt gives them). Slot 0 is built
// eagerly in NewMt; every other worker's instance is built lazily on its
// first PruneWorker call, matching contractor_ibex_fwdbwd_mt.cc's
// ctcs_[0] eager-build + GetCtc() lazy-by-thread pattern. Where the
// original keys that lazy slot by a thread_local id, this translates it to
// an explicit workerID parameter per the REDESIGN FLAGS note to drop
// thread-local state.
type Mt struct {
	factory func() Contractor

	mu    sync.Mutex
	slots map[int]Contractor
}

// NewMt builds an Mt wrapper around factory, eagerly constructing the
// worker-0 instance.
func NewMt(factory func() Contractor) *Mt {
	m := &Mt{factory: factory, slots: make(map[int]Contractor)}
	m.slots[0] = factory()
	return m
}

func (m *Mt) instance(workerID int) Contractor {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.slots[workerID]
	if !ok {
		c = m.factory()
		m.slots[workerID] = c
	}
	return c
}

func (m *Mt) Input() *bitset.BitSet { return m.instance(0).Input() }

func (m *Mt) IsDummy() bool { return m.instance(0).IsDummy() }

func (m *Mt) String() string { return fmt.Sprintf("Mt(%s)", m.instance(0)) }

// Prune runs the worker-0 instance, for callers (the sequential engine)
// that only ever have one worker.
func (m *Mt) Prune(status *ContractorStatus) error { return m.PruneWorker(status, 0) }

// PruneWorker runs the instance private to workerID, building it on first
// use.
func (m *Mt) PruneWorker(status *ContractorStatus, workerID int) error {
	return m.instance(workerID).Prune(status)
}
