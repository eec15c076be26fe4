package scheduler

import (
	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/platform"
)

// pool is the fixed-size backing store for event records plus the free
// list that draws from it. The free list and any access to len(storage)
// are the only state shared between task context and ISR context, so
// every mutation goes through cs, the critical-section guard.
type pool struct {
	cs      platform.CriticalSection
	storage []Event
	free    []*Event
}

func newPool(size int) *pool {
	p := &pool{
		storage: make([]Event, size),
		free:    make([]*Event, 0, size),
	}
	for i := range p.storage {
		p.free = append(p.free, &p.storage[i])
	}
	return p
}

func (p *pool) size() int {
	return len(p.storage)
}

// alloc pops a record off the free list under the critical section. It is
// safe to call from both task and ISR context.
func (p *pool) alloc(op string) (*Event, error) {
	g := p.cs.Enter()
	defer g.Exit()
	return p.allocLocked(op)
}

// allocLocked assumes the caller already holds the critical section (used
// by the ISR submission path, which must pop the free list and push to
// the ISR FIFO within a single masked window).
func (p *pool) allocLocked(op string) (*Event, error) {
	n := len(p.free)
	if n == 0 {
		return nil, fwkerr.New(op, fwkerr.NoMemError, nil)
	}
	rec := p.free[n-1]
	p.free = p.free[:n-1]
	rec.reset()
	return rec, nil
}

// release returns a record to the free list under the critical section.
func (p *pool) release(e *Event) {
	g := p.cs.Enter()
	defer g.Exit()
	p.free = append(p.free, e)
}

// freeCount reports the number of records currently on the free list, for
// metrics and the pool-conservation invariant tests.
func (p *pool) freeCount() int {
	g := p.cs.Enter()
	defer g.Exit()
	return len(p.free)
}

// enter/exit helpers so the ISR submission path can hold the section
// across both the pool pop and the ISR FIFO push.
func (p *pool) enterCritical() platform.Guard {
	return p.cs.Enter()
}
