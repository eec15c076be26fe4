package scheduler

import "github.com/cuemby/scpfw/pkg/fwkerr"

const opSubmit = "scheduler.Submit"
const opSubmitLight = "scheduler.SubmitLight"
const opSubmitFromISR = "scheduler.SubmitFromISR"

// Submit enqueues e from task context. A fresh record is drawn from the
// pool and e is copied into it field by field — the scheduler never
// keeps a reference to the caller's Event. Called from inside an ISR
// (with an interrupt controller wired in), the submission is routed onto
// the interrupt FIFO as if through SubmitFromISR.
//
// Cookie handling: a plain request (IsResponse and IsDelayedResponse both
// false) is assigned a fresh cookie here, overwriting whatever the caller
// set, and the assigned cookie is stamped back into e.Cookie so the
// caller can recognize the eventual response. A response — including a
// delayed one — keeps the cookie the caller supplied, since a response's
// cookie must equal the cookie of the request that elicited it, and only
// the caller (the handler that received the original request) knows what
// that was.
//
// If e.IsDelayedResponse is set, the response record parked when the
// original request's handler deferred its answer is looked up by
// e.Cookie, e's params are copied into it in place, and that same record
// — routing and cookie untouched — is enqueued on the task FIFO. An
// unknown cookie is a ParamError; so is a SourceID that contradicts the
// parked record's responder.
func (s *Scheduler) Submit(e *Event) error {
	if e == nil {
		return fwkerr.New(opSubmit, fwkerr.ParamError, nil)
	}
	if s.inISR() {
		return s.SubmitFromISR(*e)
	}
	cookie, err := s.submit(opSubmit, *e)
	if err != nil {
		return err
	}
	e.Cookie = cookie
	return nil
}

// SubmitLight is the light-event entry point: identical to Submit except
// that the caller's params are ignored and the widened pool record's
// params area is cleared, matching the light variant's
// identification-fields-only shape. The assigned cookie is stamped back
// the same way.
func (s *Scheduler) SubmitLight(e *Event) error {
	if e == nil {
		return fwkerr.New(opSubmitLight, fwkerr.ParamError, nil)
	}
	widened := *e
	widened.Params = [ParamsSize]byte{}
	if s.inISR() {
		return s.SubmitFromISR(widened)
	}
	cookie, err := s.submit(opSubmitLight, widened)
	if err != nil {
		return err
	}
	e.Cookie = cookie
	return nil
}

// submit is the shared implementation behind Submit, SubmitLight, and
// the dispatch loop's own response enqueue. It returns the cookie the
// event was (or already was, for a response) assigned, which
// SubmitAndWait needs to recognize its own reply.
func (s *Scheduler) submit(op string, e Event) (uint64, error) {
	if e.SourceID.IsNone() && s.current != nil {
		e.SourceID = s.current.TargetID
	}

	if e.IsDelayedResponse {
		return s.submitDelayed(op, e)
	}

	if !e.IsResponse {
		e.Cookie = s.nextCookie()
	}

	rec, err := s.pool.alloc(op)
	if err != nil {
		return 0, err
	}
	*rec = e

	if !s.taskFIFO.push(rec) {
		s.pool.release(rec)
		return 0, fwkerr.New(op, fwkerr.BusyError, nil)
	}
	return e.Cookie, nil
}

// submitDelayed produces a previously-parked delayed response: the parked
// record is updated in place with the producer's params and moved from
// the parked list to the task FIFO, preserving the routing and cookie it
// was parked with.
func (s *Scheduler) submitDelayed(op string, e Event) (uint64, error) {
	rec, ok := s.parked[e.Cookie]
	if !ok {
		return 0, fwkerr.New(op, fwkerr.ParamError, nil)
	}
	if !e.SourceID.IsNone() && e.SourceID != rec.SourceID {
		return 0, fwkerr.New(op, fwkerr.ParamError, nil)
	}

	rec.Params = e.Params
	rec.IsDelayedResponse = false

	if !s.taskFIFO.push(rec) {
		return 0, fwkerr.New(op, fwkerr.BusyError, nil)
	}
	delete(s.parked, e.Cookie)
	return rec.Cookie, nil
}

// SubmitFromISR enqueues e from interrupt context. Unlike Submit, the
// pool allocation and the ISR FIFO push happen inside a single masked
// critical section, so an ISR handler's submission is atomic with
// respect to both the main task loop and any other interrupt source.
// ISR-originated events are always
// fresh requests in practice (an ISR does not itself hold a parked
// cookie to answer), so SubmitFromISR always assigns a new cookie.
func (s *Scheduler) SubmitFromISR(e Event) error {
	e.Cookie = s.nextCookie()
	e.IsResponse = false
	e.IsDelayedResponse = false

	g := s.pool.enterCritical()
	defer g.Exit()

	rec, err := s.pool.allocLocked(opSubmitFromISR)
	if err != nil {
		return err
	}
	*rec = e

	if !s.isrFIFO.push(rec) {
		s.pool.free = append(s.pool.free, rec)
		return fwkerr.New(opSubmitFromISR, fwkerr.BusyError, nil)
	}
	return nil
}
