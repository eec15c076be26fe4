package scheduler

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	log "github.com/cuemby/scpfw/internal/log"
	"github.com/cuemby/scpfw/pkg/platform"
)

// Config controls the fixed resources a Scheduler is built with. All of
// them are sized once at construction: nothing in this package allocates
// an Event after NewScheduler returns.
type Config struct {
	// PoolSize is the number of event records available for the life of
	// the scheduler. Every in-flight event — queued, dispatched, or
	// parked as a delayed response — draws from this one pool.
	PoolSize int

	// TaskFIFOCapacity bounds the task-context queue. Zero means
	// unbounded (backed by a growable slice); queue depth is already
	// bounded in practice by the pool size.
	TaskFIFOCapacity int

	// ISRFIFOCapacity bounds the interrupt-context queue the same way.
	ISRFIFOCapacity int

	// Interrupts is the platform interrupt controller, when the product
	// has one. With it set, Submit called from inside an ISR is routed
	// onto the interrupt FIFO automatically, and SubmitAndWait refuses to
	// block from interrupt context. Nil disables the routing; callers in
	// interrupt context must then call SubmitFromISR themselves.
	Interrupts *platform.InterruptController
}

// DefaultConfig returns reasonable defaults for a small product: enough
// pool headroom for a handful of modules exchanging requests and
// responses without exhausting NoMemError in ordinary operation.
func DefaultConfig() Config {
	return Config{
		PoolSize:         64,
		TaskFIFOCapacity: 0,
		ISRFIFOCapacity:  0,
	}
}

// fifo is a minimal, optionally capacity-checked queue of *Event.
type fifo struct {
	items []*Event
	cap   int
}

func (f *fifo) push(e *Event) bool {
	if f.cap > 0 && len(f.items) >= f.cap {
		return false
	}
	f.items = append(f.items, e)
	return true
}

func (f *fifo) pop() (*Event, bool) {
	if len(f.items) == 0 {
		return nil, false
	}
	e := f.items[0]
	f.items = f.items[1:]
	return e, true
}

func (f *fifo) len() int {
	return len(f.items)
}

// Scheduler is the single event and notification dispatcher for a
// process. Exactly one is expected per Registry; see pkg/module.
//
// taskFIFO is task-context-only and needs no locking. isrFIFO is shared
// between ISR context (push, via SubmitFromISR) and task context (drain,
// via Drain), so every access to it goes through the pool's critical
// section — the same masked window that protects the free list, since
// SubmitFromISR must pop a record and push it to isrFIFO atomically.
type Scheduler struct {
	cfg Config
	log zerolog.Logger

	pool *pool

	taskFIFO fifo
	isrFIFO  fifo

	cookie atomic.Uint64

	// current is the event whose handler is running right now, or nil
	// when the dispatch loop is between events. It routes two things: the
	// source-id auto-stamp on Submit (a handler submitting with SourceID
	// unset is taken to speak as the entity the current event targets),
	// and the save/restore around the nested dispatch loop inside
	// SubmitAndWait.
	current *Event

	// parked holds the prepared response record of every outstanding
	// delayed response, keyed by the request's cookie, from the moment a
	// handler defers its answer until the producer finally submits it.
	// Each entry is a live pool record — a parked response occupies a
	// pool slot for as long as it is parked, so the conservation
	// invariant (free + queued + parked + current == pool size) stays
	// observable. Task-context only: entries are only ever added and
	// removed from dispatch and Submit, never from ISR context.
	parked map[uint64]*Event

	// waiting is non-nil while a SubmitAndWait call is in progress. Only
	// one is ever in flight at a time — a second call while one is
	// already waiting is refused, matching the deprecated blocking-wait
	// primitive's documented restriction against nested waits.
	waiting *waitState
}

// waitState tracks the single in-flight SubmitAndWait call, if any.
type waitState struct {
	cookie uint64
	result Event
	done   bool
}

// NewScheduler constructs a Scheduler with its pool and queues sized per
// cfg.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultConfig().PoolSize
	}
	s := &Scheduler{
		cfg:    cfg,
		log:    log.WithComponent("scheduler"),
		pool:   newPool(cfg.PoolSize),
		parked: make(map[uint64]*Event),
	}
	s.taskFIFO.cap = cfg.TaskFIFOCapacity
	s.isrFIFO.cap = cfg.ISRFIFOCapacity
	return s
}

// nextCookie issues a fresh, unique-for-the-run cookie. Lock-free so it
// can be called from both task and ISR context.
func (s *Scheduler) nextCookie() uint64 {
	return s.cookie.Add(1)
}

// inISR reports whether the caller is in interrupt context, when the
// product wired an interrupt controller in. Without one the answer is
// always false and routing is the caller's responsibility.
func (s *Scheduler) inISR() bool {
	return s.cfg.Interrupts != nil && s.cfg.Interrupts.InInterrupt()
}

// PoolSize returns the configured pool size, used by tests asserting the
// pool-conservation invariant.
func (s *Scheduler) PoolSize() int {
	return s.cfg.PoolSize
}

// FreeCount returns the number of currently-unused pool records.
func (s *Scheduler) FreeCount() int {
	return s.pool.freeCount()
}

// TaskQueueLen and ISRQueueLen report queue depths, used by metrics and
// tests; ISRQueueLen takes the critical section since isrFIFO is shared.
func (s *Scheduler) TaskQueueLen() int {
	return s.taskFIFO.len()
}

func (s *Scheduler) ISRQueueLen() int {
	g := s.pool.enterCritical()
	defer g.Exit()
	return s.isrFIFO.len()
}

// ParkedCount reports the number of delayed responses currently parked.
func (s *Scheduler) ParkedCount() int {
	return len(s.parked)
}
