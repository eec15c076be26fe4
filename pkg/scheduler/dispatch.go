package scheduler

import (
	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/metrics"
)

const (
	opPark    = "scheduler.park"
	opRespond = "scheduler.respond"
)

// Targets resolves an event's target id to its owning module and hands
// the record over. The scheduler never imports pkg/module: it only knows
// the shape of the thing it needs to call, not who implements it.
// pkg/module's Registry satisfies this interface, which is how scheduler,
// notify, and module avoid an import cycle while module composes both of
// the lower packages. Every record Drain pops off a FIFO — event or
// notification alike — already carries a valid TargetID; Deliver is the
// one place that decides, based on IsNotification, whether to call the
// target's ProcessEvent or ProcessNotification callback.
//
// resp is the response record the dispatch loop prepared for this
// delivery: source and target swapped, same id and cookie, IsResponse
// set, params zeroed. When the dispatched event asked for a response the
// handler answers through it — populate resp.Params and return nil to
// have the loop enqueue it immediately, or set resp.IsDelayedResponse to
// promise the answer later via a Submit with IsDelayedResponse and the
// same cookie. When no response was requested, resp is scratch space the
// loop throws away.
type Targets interface {
	Deliver(e *Event, resp *Event) error
}

// drainISR moves at most one event per call from isrFIFO to taskFIFO,
// matching the rule that ISR-originated events are folded into the task
// queue one at a time at a defined point in the loop, so ISR ingress can
// never starve events already queued from task context.
func (s *Scheduler) drainISR() {
	g := s.pool.enterCritical()
	e, ok := s.isrFIFO.pop()
	g.Exit()
	if !ok {
		return
	}
	s.taskFIFO.push(e)
}

// Drain runs the dispatch loop until the task FIFO is empty, folding in
// at most one pending ISR-originated event per iteration. It returns the
// number of events dispatched. Drain never blocks: calling it on an idle
// scheduler returns 0 immediately. A handler failure is logged and the
// event dropped; it never aborts the loop or tears the process down.
func (s *Scheduler) Drain(t Targets) int {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DispatchDuration)

	dispatched := 0
	for {
		s.drainISR()

		e, ok := s.taskFIFO.pop()
		if !ok {
			return dispatched
		}
		s.dispatch(t, e)
		dispatched++
	}
}

// dispatch delivers a single event to its target and then retires the
// record. This is the only place a queued record returns to the pool free
// list — Submit/SubmitFromISR move a record from the pool into a FIFO and
// hand it back to the pool only when that FIFO push fails.
func (s *Scheduler) dispatch(t Targets, e *Event) {
	defer s.pool.release(e)

	if e.IsResponse && s.waiting != nil && e.Cookie == s.waiting.cookie {
		s.waiting.result = *e
		s.waiting.done = true
		return
	}

	kind := "event"
	if e.IsNotification {
		kind = "notification"
	}
	metrics.DispatchTotal.WithLabelValues(kind).Inc()

	prev := s.current
	s.current = e
	defer func() { s.current = prev }()

	// The response is prepared before the handler runs: source and target
	// swapped, id and cookie carried over, params zeroed. A notification's
	// acknowledgement keeps IsNotification so it routes back to the
	// publisher's ProcessNotification callback rather than ProcessEvent.
	resp := Event{
		SourceID:       e.TargetID,
		TargetID:       e.SourceID,
		ID:             e.ID,
		IsNotification: e.IsNotification,
		IsResponse:     true,
		Cookie:         e.Cookie,
	}

	if err := t.Deliver(e, &resp); err != nil && !isPending(err) {
		s.log.Error().
			Err(err).
			Stringer("source_id", e.SourceID).
			Stringer("target_id", e.TargetID).
			Uint64("cookie", e.Cookie).
			Msg("handler failed, event dropped")
		return
	}

	if !e.ResponseRequested || e.IsResponse {
		return
	}

	if resp.IsDelayedResponse {
		s.park(e.Cookie, resp)
		return
	}

	resp.ResponseRequested = false
	if _, err := s.submit(opRespond, resp); err != nil {
		s.log.Error().
			Err(err).
			Stringer("target_id", resp.TargetID).
			Uint64("cookie", resp.Cookie).
			Msg("response could not be enqueued")
	}
}

// park moves a promised delayed response onto the parked list, occupying
// a pool slot until the producer submits the real answer with the same
// cookie. The parked record already carries its final routing (source,
// target, id, cookie, IsResponse); only its params remain to be filled.
func (s *Scheduler) park(cookie uint64, resp Event) {
	rec, err := s.pool.alloc(opPark)
	if err != nil {
		s.log.Error().
			Err(err).
			Stringer("target_id", resp.TargetID).
			Uint64("cookie", cookie).
			Msg("delayed response could not be parked")
		return
	}
	*rec = resp
	s.parked[cookie] = rec
}

func isPending(err error) bool {
	fe, ok := err.(*fwkerr.Error)
	return ok && fe.Status == fwkerr.Pending
}
